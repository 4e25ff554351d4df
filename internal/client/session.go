package client

import (
	"context"
	"sync"
	"time"

	"chatly-service/internal/models"
)

// ChatLine is one rendered message in the session's cache.
type ChatLine struct {
	Mine bool
	Body string
	Time string
}

// Peer is a sidebar entry as the session sees it.
type Peer struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Friend    bool
}

// Session reconciles inbound room events and fetch responses into the
// indicator sets and relationship map a sidebar renders from. Everything is
// per-session state, rehydrated from server truth on every full fetch; the
// indicator sets are hints, never the source of truth.
type Session struct {
	mu sync.Mutex

	api    Backend
	selfID string

	peers         []Peer
	relationships map[string]string
	unread        map[string]struct{}
	newRequests   map[string]struct{}
	messages      map[string][]ChatLine
	selected      string
}

// NewSession builds an empty session for a user.
func NewSession(api Backend, selfID string) *Session {
	return &Session{
		api:           api,
		selfID:        selfID,
		relationships: make(map[string]string),
		unread:        make(map[string]struct{}),
		newRequests:   make(map[string]struct{}),
		messages:      make(map[string][]ChatLine),
	}
}

// Load rehydrates the peer list and opens the self-chat, mirroring what a
// fresh app load does.
func (s *Session) Load(ctx context.Context) error {
	if err := s.RefreshPeers(ctx); err != nil {
		return err
	}
	_, err := s.SelectPeer(ctx, s.selfID)
	return err
}

// RefreshPeers refetches the full profile listing. This is the consistency
// backstop: indicator state survives, ordering resets to server order.
func (s *Session) RefreshPeers(ctx context.Context) error {
	users, err := s.api.Users(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPeersLocked(users)
	return nil
}

func (s *Session) setPeersLocked(users []models.UserProfile) {
	var friends map[string]bool
	for _, u := range users {
		if u.ID == s.selfID {
			friends = make(map[string]bool, len(u.Friends))
			for _, f := range u.Friends {
				friends[f] = true
			}
		}
	}

	peers := make([]Peer, 0, len(users))
	for _, u := range users {
		if u.ID == s.selfID {
			continue
		}
		peers = append(peers, Peer{
			ID:        u.ID,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Friend:    friends[u.ID],
		})
	}
	s.peers = peers
}

// SelectPeer opens a conversation: both indicators clear optimistically,
// then a history fetch restores exact relationship state. Returns the
// resolved relationship so the caller knows whether to render the thread or
// the request flow.
func (s *Session) SelectPeer(ctx context.Context, peerID string) (string, error) {
	s.mu.Lock()
	s.selected = peerID
	if peerID != s.selfID {
		delete(s.unread, peerID)
	}
	delete(s.newRequests, peerID)
	s.mu.Unlock()

	history, err := s.api.History(ctx, s.selfID, peerID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	relation := resolveRelation(history, peerID == s.selfID)
	s.relationships[peerID] = relation

	if relation == models.RelationAccepted {
		lines := make([]ChatLine, 0, len(history.Messages))
		for _, m := range history.Messages {
			lines = append(lines, ChatLine{
				Mine: m.SenderID == s.selfID,
				Body: m.Body,
				Time: clockFormat(m.CreatedAt),
			})
		}
		s.messages[peerID] = lines
		delete(s.unread, peerID)
	}
	return relation, nil
}

func resolveRelation(history models.History, self bool) string {
	if self {
		return models.RelationAccepted
	}
	switch history.Relationship {
	case models.RequestPending:
		if history.IsSender {
			return models.RelationPendingSent
		}
		return models.RelationPendingReceived
	case "":
		return models.RelationNone
	default:
		return history.Relationship
	}
}

func clockFormat(t time.Time) string {
	return t.Format("3:04 PM")
}

// OnMessage handles an inbound receive_message event.
func (s *Session) OnMessage(ctx context.Context, ev models.MessageEvent) {
	peerID := ev.SenderID
	if peerID == s.selfID {
		peerID = ev.ReceiverID
	}

	s.mu.Lock()
	if peerID == s.selfID {
		// Self-chat never carries indicators; merge if it is on screen.
		if s.selected == s.selfID {
			s.messages[s.selfID] = append(s.messages[s.selfID], ChatLine{Mine: true, Body: ev.Body, Time: ev.Time})
		}
		s.mu.Unlock()
		return
	}

	if s.selected == peerID {
		s.messages[peerID] = append(s.messages[peerID], ChatLine{
			Mine: ev.SenderID == s.selfID,
			Body: ev.Body,
			Time: ev.Time,
		})
		delete(s.unread, peerID)
		s.mu.Unlock()
		return
	}

	s.unread[peerID] = struct{}{}
	known := s.knownLocked(peerID)
	if known {
		s.moveToTopLocked(peerID)
	}
	s.mu.Unlock()

	if !known {
		// Indicators attach only to known peer records.
		if err := s.RefreshPeers(ctx); err == nil {
			s.mu.Lock()
			s.moveToTopLocked(peerID)
			s.mu.Unlock()
		}
	}
}

// OnNewRequest handles an inbound new_request event.
func (s *Session) OnNewRequest(ctx context.Context, ev models.NewRequestEvent) {
	if ev.SenderID == s.selfID {
		return
	}

	s.mu.Lock()
	s.newRequests[ev.SenderID] = struct{}{}
	s.relationships[ev.SenderID] = models.RelationPendingReceived
	known := s.knownLocked(ev.SenderID)
	if known {
		s.moveToTopLocked(ev.SenderID)
	}
	s.mu.Unlock()

	if !known {
		if err := s.RefreshPeers(ctx); err == nil {
			s.mu.Lock()
			s.moveToTopLocked(ev.SenderID)
			s.mu.Unlock()
		}
	}
}

// OnRequestAccepted handles an inbound request_accepted event; the friend
// sets changed server-side, so the peer list is refetched.
func (s *Session) OnRequestAccepted(ctx context.Context, ev models.RequestAcceptedEvent) {
	other := ev.SenderID
	if other == s.selfID {
		other = ev.ReceiverID
	}

	s.mu.Lock()
	if other != s.selfID {
		delete(s.newRequests, other)
		s.relationships[other] = models.RelationAccepted
	}
	s.mu.Unlock()

	_ = s.RefreshPeers(ctx)
}

// OnRequestRejected handles an inbound request_rejected event. The record is
// gone server-side; the pair is back to none.
func (s *Session) OnRequestRejected(ctx context.Context, ev models.RequestRejectedEvent) {
	s.mu.Lock()
	for peerID, relation := range s.relationships {
		if relation == models.RelationPendingSent || relation == models.RelationPendingReceived {
			s.relationships[peerID] = models.RelationNone
			delete(s.newRequests, peerID)
		}
	}
	s.mu.Unlock()

	_ = s.RefreshPeers(ctx)
}

// OnChatReset handles an inbound chat_reset event: history is gone, the
// relationship is none, and the peer must re-request, so the new-request
// indicator lights up preemptively.
func (s *Session) OnChatReset(ctx context.Context, ev models.ChatResetEvent) {
	if ev.OtherUserID == "" {
		return
	}

	s.mu.Lock()
	delete(s.messages, ev.OtherUserID)
	s.relationships[ev.OtherUserID] = models.RelationNone
	s.newRequests[ev.OtherUserID] = struct{}{}
	delete(s.unread, ev.OtherUserID)
	known := s.knownLocked(ev.OtherUserID)
	s.mu.Unlock()

	if !known {
		_ = s.RefreshPeers(ctx)
	}
}

// SendMessage posts to the open conversation and refreshes it, like the UI's
// post-action refetch.
func (s *Session) SendMessage(ctx context.Context, peerID, body string) error {
	if _, err := s.api.SendMessage(ctx, peerID, body); err != nil {
		return err
	}
	_, err := s.SelectPeer(ctx, peerID)
	return err
}

// SendRequest opens a request toward a peer and refreshes state.
func (s *Session) SendRequest(ctx context.Context, peerID, message string) error {
	if _, err := s.api.SendRequest(ctx, peerID, message); err != nil {
		return err
	}
	if err := s.RefreshPeers(ctx); err != nil {
		return err
	}
	_, err := s.SelectPeer(ctx, peerID)
	return err
}

// AcceptRequest accepts a pending request and refetches.
func (s *Session) AcceptRequest(ctx context.Context, requestID, peerID string) error {
	if err := s.api.Accept(ctx, requestID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.newRequests, peerID)
	s.mu.Unlock()
	if err := s.RefreshPeers(ctx); err != nil {
		return err
	}
	_, err := s.SelectPeer(ctx, peerID)
	return err
}

// RejectRequest rejects a pending request and refetches.
func (s *Session) RejectRequest(ctx context.Context, requestID, peerID string) error {
	if err := s.api.Reject(ctx, requestID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.newRequests, peerID)
	s.mu.Unlock()
	if err := s.RefreshPeers(ctx); err != nil {
		return err
	}
	_, err := s.SelectPeer(ctx, peerID)
	return err
}

// ResetChat erases the conversation with a peer and primes the local state
// the way the other side's chat_reset event does.
func (s *Session) ResetChat(ctx context.Context, peerID string) error {
	if err := s.api.Reset(ctx, s.selfID, peerID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.messages, peerID)
	s.relationships[peerID] = models.RelationNone
	delete(s.unread, peerID)
	s.newRequests[peerID] = struct{}{}
	s.mu.Unlock()

	if err := s.RefreshPeers(ctx); err != nil {
		return err
	}
	_, err := s.SelectPeer(ctx, peerID)
	return err
}

// PendingRequests lists requests waiting on this user.
func (s *Session) PendingRequests(ctx context.Context) ([]models.PendingRequest, error) {
	return s.api.PendingRequests(ctx)
}

func (s *Session) knownLocked(peerID string) bool {
	for _, p := range s.peers {
		if p.ID == peerID {
			return true
		}
	}
	return false
}

func (s *Session) moveToTopLocked(peerID string) {
	if peerID == s.selfID {
		return
	}
	for i, p := range s.peers {
		if p.ID == peerID {
			if i == 0 {
				return
			}
			copy(s.peers[1:i+1], s.peers[:i])
			s.peers[0] = p
			return
		}
	}
}

// SelfID returns the session owner's user id.
func (s *Session) SelfID() string { return s.selfID }

// Selected reports the open conversation, if any.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Peers snapshots the sidebar ordering, most recently active first.
func (s *Session) Peers() []Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Peer, len(s.peers))
	copy(out, s.peers)
	return out
}

// Relationship reports the derived relationship with a peer.
func (s *Session) Relationship(peerID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if relation, ok := s.relationships[peerID]; ok {
		return relation
	}
	return models.RelationNone
}

// HasUnread reports the unread indicator for a peer.
func (s *Session) HasUnread(peerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.unread[peerID]
	return ok
}

// HasNewRequest reports the new-request indicator for a peer.
func (s *Session) HasNewRequest(peerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.newRequests[peerID]
	return ok
}

// Messages snapshots the cached conversation with a peer.
func (s *Session) Messages(peerID string) []ChatLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.messages[peerID]
	out := make([]ChatLine, len(lines))
	copy(out, lines)
	return out
}
