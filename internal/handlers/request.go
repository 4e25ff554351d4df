package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatly-service/internal/models"
	"chatly-service/internal/repositories"
	"chatly-service/internal/ws"
)

// RequestHandler owns the chat request lifecycle: send, accept, reject and
// the pending listing.
type RequestHandler struct {
	requestRepo repositories.RequestRepository
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	hub         *ws.Hub
}

// NewRequestHandler builds a RequestHandler.
func NewRequestHandler(requestRepo repositories.RequestRepository, messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, hub *ws.Hub) *RequestHandler {
	return &RequestHandler{
		requestRepo: requestRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		hub:         hub,
	}
}

// SendRequest creates a pending chat request toward another user.
func (h *RequestHandler) SendRequest(c *gin.Context) {
	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
		Message    string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	if userID == req.ReceiverID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "use the messages endpoint for self-chat"})
		return
	}

	if _, err := h.userRepo.GetUser(c.Request.Context(), req.ReceiverID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "receiver not found"})
		return
	}

	if existing, err := h.requestRepo.FindByPair(c.Request.Context(), userID, req.ReceiverID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "request already exists", "status": existing.Status})
		return
	} else if !errors.Is(err, repositories.ErrRequestNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check existing request"})
		return
	}

	request, err := h.requestRepo.Create(c.Request.Context(), userID, req.ReceiverID, req.Message)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestConflict) {
			// Lost the race with a concurrent send for the same pair; the
			// unique pair index kept a single row.
			c.JSON(http.StatusConflict, gin.H{"error": "request already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create request"})
		return
	}

	h.hub.Emit(request.ReceiverID, models.EventNewRequest, models.NewRequestEvent{
		RequestID: request.ID,
		SenderID:  request.SenderID,
	})
	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// Accept flips a pending request to accepted, materializes its first message
// and makes the two users friends.
func (h *RequestHandler) Accept(c *gin.Context) {
	requestID := c.Param("request_id")
	userID := c.GetString("userID")

	request, err := h.requestRepo.GetByID(c.Request.Context(), requestID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRequestNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "request not found"})
		return
	}
	if request.ReceiverID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the receiver can accept"})
		return
	}

	if err := h.requestRepo.MarkAccepted(c.Request.Context(), requestID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not accept request"})
		return
	}

	msg, err := h.messageRepo.Create(c.Request.Context(), request.SenderID, request.ReceiverID, request.FirstMessage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store first message"})
		return
	}

	if err := h.userRepo.AddFriendship(c.Request.Context(), request.SenderID, request.ReceiverID); err != nil {
		log.Printf("friend set update failed: %v", err)
	}

	accepted := models.RequestAcceptedEvent{
		RequestID:  request.ID,
		SenderID:   request.SenderID,
		ReceiverID: request.ReceiverID,
	}
	h.hub.Emit(request.SenderID, models.EventRequestAccepted, accepted)
	h.hub.Emit(request.ReceiverID, models.EventRequestAccepted, accepted)

	c.JSON(http.StatusOK, gin.H{"initial_message": msg})
}

// Reject deletes the request outright so the pair can start over.
func (h *RequestHandler) Reject(c *gin.Context) {
	requestID := c.Param("request_id")
	userID := c.GetString("userID")

	request, err := h.requestRepo.GetByID(c.Request.Context(), requestID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRequestNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "request not found"})
		return
	}
	if request.ReceiverID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the receiver can reject"})
		return
	}

	if err := h.requestRepo.Delete(c.Request.Context(), requestID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reject request"})
		return
	}

	h.hub.Emit(request.SenderID, models.EventRequestRejected, models.RequestRejectedEvent{RequestID: request.ID})
	c.JSON(http.StatusOK, gin.H{"message": "request rejected"})
}

// ListPending returns the pending requests addressed to the caller.
func (h *RequestHandler) ListPending(c *gin.Context) {
	userID := c.GetString("userID")

	requests, err := h.requestRepo.ListPending(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pending requests"})
		return
	}
	if requests == nil {
		requests = []models.PendingRequest{}
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
