package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatly-service/internal/mocks"
	"chatly-service/internal/models"
	"chatly-service/internal/repositories"
	"chatly-service/internal/ws"
)

func setupRequestRouter(handler *RequestHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "alice")
		c.Next()
	})
	r.POST("/requests", handler.SendRequest)
	r.POST("/requests/:request_id/accept", handler.Accept)
	r.POST("/requests/:request_id/reject", handler.Reject)
	r.GET("/requests/pending", handler.ListPending)
	return r
}

func TestSendRequestSuccess(t *testing.T) {
	requestRepo := new(mocks.RequestRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewRequestHandler(requestRepo, new(mocks.MessageRepositoryMock), userRepo, ws.NewHub())
	router := setupRequestRouter(handler)

	userRepo.On("GetUser", mock.Anything, "bob").Return(models.User{ID: "bob"}, nil).Once()
	requestRepo.On("FindByPair", mock.Anything, "alice", "bob").
		Return(models.ChatRequest{}, repositories.ErrRequestNotFound).Once()
	requestRepo.On("Create", mock.Anything, "alice", "bob", "hi").
		Return(models.ChatRequest{ID: "r1", SenderID: "alice", ReceiverID: "bob", Status: models.RequestPending}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(`{"receiver_id":"bob","message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	userRepo.AssertExpectations(t)
	requestRepo.AssertExpectations(t)
}

func TestSendRequestSelfPair(t *testing.T) {
	handler := NewRequestHandler(new(mocks.RequestRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), ws.NewHub())
	router := setupRequestRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(`{"receiver_id":"alice","message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendRequestReceiverUnknown(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewRequestHandler(new(mocks.RequestRepositoryMock), new(mocks.MessageRepositoryMock), userRepo, ws.NewHub())
	router := setupRequestRouter(handler)

	userRepo.On("GetUser", mock.Anything, "ghost").Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(`{"receiver_id":"ghost","message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestSendRequestDuplicateCarriesStatus(t *testing.T) {
	requestRepo := new(mocks.RequestRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewRequestHandler(requestRepo, new(mocks.MessageRepositoryMock), userRepo, ws.NewHub())
	router := setupRequestRouter(handler)

	userRepo.On("GetUser", mock.Anything, "bob").Return(models.User{ID: "bob"}, nil).Once()
	requestRepo.On("FindByPair", mock.Anything, "alice", "bob").
		Return(models.ChatRequest{ID: "r1", SenderID: "bob", ReceiverID: "alice", Status: models.RequestAccepted}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(`{"receiver_id":"bob","message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.RequestAccepted, resp["status"])
	requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	requestRepo.AssertExpectations(t)
}

func TestSendRequestConcurrentConflict(t *testing.T) {
	requestRepo := new(mocks.RequestRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewRequestHandler(requestRepo, new(mocks.MessageRepositoryMock), userRepo, ws.NewHub())
	router := setupRequestRouter(handler)

	userRepo.On("GetUser", mock.Anything, "bob").Return(models.User{ID: "bob"}, nil).Once()
	requestRepo.On("FindByPair", mock.Anything, "alice", "bob").
		Return(models.ChatRequest{}, repositories.ErrRequestNotFound).Once()
	requestRepo.On("Create", mock.Anything, "alice", "bob", "hi").
		Return(models.ChatRequest{}, repositories.ErrRequestConflict).Once()

	req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(`{"receiver_id":"bob","message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	requestRepo.AssertExpectations(t)
}

func TestAcceptSuccess(t *testing.T) {
	requestRepo := new(mocks.RequestRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewRequestHandler(requestRepo, messageRepo, userRepo, ws.NewHub())
	router := setupRequestRouter(handler)

	requestRepo.On("GetByID", mock.Anything, "r1").
		Return(models.ChatRequest{ID: "r1", SenderID: "bob", ReceiverID: "alice", FirstMessage: "hi", Status: models.RequestPending}, nil).Once()
	requestRepo.On("MarkAccepted", mock.Anything, "r1").Return(nil).Once()
	messageRepo.On("Create", mock.Anything, "bob", "alice", "hi").
		Return(models.Message{ID: "m1", SenderID: "bob", ReceiverID: "alice", Body: "hi"}, nil).Once()
	userRepo.On("AddFriendship", mock.Anything, "bob", "alice").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/requests/r1/accept", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	requestRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestAcceptWrongActor(t *testing.T) {
	requestRepo := new(mocks.RequestRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewRequestHandler(requestRepo, messageRepo, new(mocks.UserRepositoryMock), ws.NewHub())
	router := setupRequestRouter(handler)

	requestRepo.On("GetByID", mock.Anything, "r1").
		Return(models.ChatRequest{ID: "r1", SenderID: "alice", ReceiverID: "carol", Status: models.RequestPending}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/requests/r1/accept", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	requestRepo.AssertNotCalled(t, "MarkAccepted", mock.Anything, mock.Anything)
	messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptMissingRequest(t *testing.T) {
	requestRepo := new(mocks.RequestRepositoryMock)
	handler := NewRequestHandler(requestRepo, new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), ws.NewHub())
	router := setupRequestRouter(handler)

	requestRepo.On("GetByID", mock.Anything, "nope").
		Return(models.ChatRequest{}, repositories.ErrRequestNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/requests/nope/accept", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	requestRepo.AssertExpectations(t)
}

func TestRejectDeletesRequest(t *testing.T) {
	requestRepo := new(mocks.RequestRepositoryMock)
	handler := NewRequestHandler(requestRepo, new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), ws.NewHub())
	router := setupRequestRouter(handler)

	requestRepo.On("GetByID", mock.Anything, "r1").
		Return(models.ChatRequest{ID: "r1", SenderID: "bob", ReceiverID: "alice", Status: models.RequestPending}, nil).Once()
	requestRepo.On("Delete", mock.Anything, "r1").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/requests/r1/reject", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	requestRepo.AssertExpectations(t)
}

func TestListPendingSuccess(t *testing.T) {
	requestRepo := new(mocks.RequestRepositoryMock)
	handler := NewRequestHandler(requestRepo, new(mocks.MessageRepositoryMock), new(mocks.UserRepositoryMock), ws.NewHub())
	router := setupRequestRouter(handler)

	requestRepo.On("ListPending", mock.Anything, "alice").
		Return([]models.PendingRequest{{ID: "r1", SenderID: "bob", SenderUsername: "bob99"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/requests/pending", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	requestRepo.AssertExpectations(t)
}
