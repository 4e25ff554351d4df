package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"chatly-service/internal/models"
)

// Backend is the server surface a session needs. Satisfied by API; mocked in
// tests.
type Backend interface {
	Users(ctx context.Context) ([]models.UserProfile, error)
	History(ctx context.Context, userID, otherID string) (models.History, error)
	SendMessage(ctx context.Context, receiverID, body string) (models.MessageEvent, error)
	SendRequest(ctx context.Context, receiverID, message string) (models.ChatRequest, error)
	PendingRequests(ctx context.Context) ([]models.PendingRequest, error)
	Accept(ctx context.Context, requestID string) error
	Reject(ctx context.Context, requestID string) error
	Reset(ctx context.Context, userID, otherID string) error
}

// API is the resty-backed HTTP client for the service.
type API struct {
	http *resty.Client
}

// NewAPI constructs an API client with the bearer token applied to every
// request.
func NewAPI(baseURL, token string) *API {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token)
	return &API{http: httpClient}
}

type errorBody struct {
	Error string `json:"error"`
}

func apiError(resp *resty.Response, action string) error {
	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		return fmt.Errorf("%s: %s", action, body.Error)
	}
	return fmt.Errorf("%s: %s", action, resp.Status())
}

// Users fetches all profiles with friend id lists.
func (a *API) Users(ctx context.Context) ([]models.UserProfile, error) {
	var out struct {
		Users []models.UserProfile `json:"users"`
	}
	resp, err := a.http.R().SetContext(ctx).SetResult(&out).Get("/users")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp, "list users")
	}
	return out.Users, nil
}

// History fetches a conversation together with the pair's relationship state.
func (a *API) History(ctx context.Context, userID, otherID string) (models.History, error) {
	var out models.History
	resp, err := a.http.R().SetContext(ctx).SetResult(&out).
		Get(fmt.Sprintf("/messages/%s/%s", userID, otherID))
	if err != nil {
		return models.History{}, err
	}
	if resp.IsError() {
		return models.History{}, apiError(resp, "fetch history")
	}
	return out, nil
}

// SendMessage posts a message to a peer.
func (a *API) SendMessage(ctx context.Context, receiverID, body string) (models.MessageEvent, error) {
	var out struct {
		Message models.MessageEvent `json:"message"`
	}
	resp, err := a.http.R().SetContext(ctx).
		SetBody(map[string]string{"receiver_id": receiverID, "body": body}).
		SetResult(&out).
		Post("/messages")
	if err != nil {
		return models.MessageEvent{}, err
	}
	if resp.IsError() {
		return models.MessageEvent{}, apiError(resp, "send message")
	}
	return out.Message, nil
}

// SendRequest opens a chat request toward a peer.
func (a *API) SendRequest(ctx context.Context, receiverID, message string) (models.ChatRequest, error) {
	var out struct {
		Request models.ChatRequest `json:"request"`
	}
	resp, err := a.http.R().SetContext(ctx).
		SetBody(map[string]string{"receiver_id": receiverID, "message": message}).
		SetResult(&out).
		Post("/requests")
	if err != nil {
		return models.ChatRequest{}, err
	}
	if resp.IsError() {
		return models.ChatRequest{}, apiError(resp, "send request")
	}
	return out.Request, nil
}

// PendingRequests lists requests waiting on the caller.
func (a *API) PendingRequests(ctx context.Context) ([]models.PendingRequest, error) {
	var out struct {
		Requests []models.PendingRequest `json:"requests"`
	}
	resp, err := a.http.R().SetContext(ctx).SetResult(&out).Get("/requests/pending")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp, "list pending requests")
	}
	return out.Requests, nil
}

// Accept accepts a pending request addressed to the caller.
func (a *API) Accept(ctx context.Context, requestID string) error {
	resp, err := a.http.R().SetContext(ctx).Post(fmt.Sprintf("/requests/%s/accept", requestID))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp, "accept request")
	}
	return nil
}

// Reject rejects a pending request addressed to the caller.
func (a *API) Reject(ctx context.Context, requestID string) error {
	resp, err := a.http.R().SetContext(ctx).Post(fmt.Sprintf("/requests/%s/reject", requestID))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp, "reject request")
	}
	return nil
}

// Reset erases the conversation with a peer on both sides.
func (a *API) Reset(ctx context.Context, userID, otherID string) error {
	resp, err := a.http.R().SetContext(ctx).Post(fmt.Sprintf("/messages/reset/%s/%s", userID, otherID))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp, "reset chat")
	}
	return nil
}

var _ Backend = (*API)(nil)
