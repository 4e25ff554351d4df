package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"

	"chatly-service/internal/client"
	"chatly-service/internal/models"
)

type app struct {
	session *client.Session
	socket  *client.Socket
}

func main() {
	godotenv.Load()

	token := os.Getenv("CHATLY_TOKEN")
	if token == "" {
		log.Fatal("CHATLY_TOKEN is required (bearer token from the identity service)")
	}
	selfID, err := subjectOf(token)
	if err != nil {
		log.Fatalf("could not read user id from token: %v", err)
	}

	baseURL := envOr("CHATLY_URL", "http://localhost:8083")
	wsURL := envOr("CHATLY_WS_URL", "ws://localhost:8083/ws")

	session := client.NewSession(client.NewAPI(baseURL, token), selfID)
	if err := session.Load(context.Background()); err != nil {
		log.Fatalf("initial load failed: %v", err)
	}

	socket, err := client.DialSocket(wsURL, token)
	if err != nil {
		log.Fatalf("websocket connect failed: %v", err)
	}
	defer socket.Close()
	if err := socket.Join(selfID); err != nil {
		log.Fatalf("room join failed: %v", err)
	}

	a := &app{session: session, socket: socket}
	go func() {
		if err := socket.Listen(context.Background(), session, nil); err != nil {
			fmt.Printf("\nconnection lost: %v\n", err)
		}
	}()

	fmt.Println("Connected. Type 'help' for commands.")
	p := prompt.New(
		a.execute,
		noCompleter,
		prompt.OptionPrefix("> "),
		prompt.OptionTitle("chatly"),
	)
	p.Run()
}

func (a *app) execute(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}
	fields := strings.Fields(input)
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	ctx := context.Background()

	switch cmd {
	case "list":
		a.printSidebar()
	case "open":
		if len(args) < 1 {
			fmt.Println("usage: open <user-id|self>")
			return
		}
		a.open(ctx, a.resolve(args[0]))
	case "send":
		if len(args) < 2 {
			fmt.Println("usage: send <user-id|self> <message>")
			return
		}
		if err := a.session.SendMessage(ctx, a.resolve(args[0]), strings.Join(args[1:], " ")); err != nil {
			fmt.Println(err)
			return
		}
		a.printThread(a.resolve(args[0]))
	case "request":
		if len(args) < 2 {
			fmt.Println("usage: request <user-id> <message>")
			return
		}
		if err := a.session.SendRequest(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("request sent, waiting for the other side to accept")
	case "pending":
		a.printPending(ctx)
	case "accept", "reject":
		if len(args) < 1 {
			fmt.Printf("usage: %s <request-id>\n", cmd)
			return
		}
		a.respond(ctx, cmd, args[0])
	case "reset":
		if len(args) < 1 {
			fmt.Println("usage: reset <user-id>")
			return
		}
		if args[0] == a.session.SelfID() {
			fmt.Println("cannot reset the self chat")
			return
		}
		if err := a.session.ResetChat(ctx, args[0]); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("chat reset; the pair is back to square one")
	case "refresh":
		if err := a.session.RefreshPeers(ctx); err != nil {
			fmt.Println(err)
			return
		}
		a.printSidebar()
	case "help":
		printHelp()
	case "exit":
		os.Exit(0)
	default:
		fmt.Println("unknown command, try 'help'")
	}
}

func (a *app) resolve(arg string) string {
	if arg == "self" {
		return a.session.SelfID()
	}
	return arg
}

func (a *app) open(ctx context.Context, peerID string) {
	relation, err := a.session.SelectPeer(ctx, peerID)
	if err != nil {
		fmt.Println(err)
		return
	}

	switch relation {
	case models.RelationAccepted:
		a.printThread(peerID)
	case models.RelationPendingSent:
		fmt.Println("waiting for this user to accept your request")
	case models.RelationPendingReceived:
		fmt.Println("this user sent you a request; use 'pending' then 'accept <request-id>'")
	default:
		fmt.Println("no relationship yet; use 'request <user-id> <message>' to start")
	}
}

func (a *app) printSidebar() {
	fmt.Printf("  %s  (you, saved messages)\n", a.session.SelfID())
	for _, peer := range a.session.Peers() {
		var badges []string
		if a.session.HasUnread(peer.ID) {
			badges = append(badges, "unread")
		}
		if a.session.HasNewRequest(peer.ID) {
			badges = append(badges, "NEW")
		}
		marker := " "
		if peer.Friend {
			marker = "*"
		}
		suffix := ""
		if len(badges) > 0 {
			suffix = " [" + strings.Join(badges, ",") + "]"
		}
		fmt.Printf("%s %s  %s %s (@%s)%s\n", marker, peer.ID, peer.FirstName, peer.LastName, peer.Username, suffix)
	}
}

func (a *app) printThread(peerID string) {
	lines := a.session.Messages(peerID)
	if len(lines) == 0 {
		fmt.Println("no messages yet")
		return
	}
	for _, line := range lines {
		who := "them"
		if line.Mine {
			who = "you"
		}
		fmt.Printf("[%s] %s: %s\n", line.Time, who, line.Body)
	}
}

func (a *app) printPending(ctx context.Context) {
	requests, err := a.session.PendingRequests(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	if len(requests) == 0 {
		fmt.Println("no pending requests")
		return
	}
	for _, r := range requests {
		fmt.Printf("%s  from %s %s (@%s): %q\n", r.ID, r.SenderFirstName, r.SenderLastName, r.SenderUsername, r.FirstMessage)
	}
}

func (a *app) respond(ctx context.Context, action, requestID string) {
	requests, err := a.session.PendingRequests(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	peerID := ""
	for _, r := range requests {
		if r.ID == requestID {
			peerID = r.SenderID
		}
	}
	if peerID == "" {
		fmt.Println("no such pending request")
		return
	}

	if action == "accept" {
		err = a.session.AcceptRequest(ctx, requestID, peerID)
	} else {
		err = a.session.RejectRequest(ctx, requestID, peerID)
	}
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("request %sed\n", action)
}

func printHelp() {
	fmt.Println("commands:")
	fmt.Printf("  %-28s %s\n", "list", "show peers with unread/NEW indicators")
	fmt.Printf("  %-28s %s\n", "open <user-id|self>", "open a conversation")
	fmt.Printf("  %-28s %s\n", "send <user-id|self> <text>", "send a message")
	fmt.Printf("  %-28s %s\n", "request <user-id> <text>", "send a chat request")
	fmt.Printf("  %-28s %s\n", "pending", "list requests waiting on you")
	fmt.Printf("  %-28s %s\n", "accept <request-id>", "accept a request")
	fmt.Printf("  %-28s %s\n", "reject <request-id>", "reject a request")
	fmt.Printf("  %-28s %s\n", "reset <user-id>", "erase the conversation for both sides")
	fmt.Printf("  %-28s %s\n", "refresh", "refetch the peer list")
	fmt.Printf("  %-28s %s\n", "exit", "quit")
}

func noCompleter(d prompt.Document) []prompt.Suggest {
	return []prompt.Suggest{}
}

// subjectOf reads the user id from the token without verifying it; the
// server does the real verification.
func subjectOf(token string) (string, error) {
	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", err
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
