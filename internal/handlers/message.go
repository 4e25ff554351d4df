package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chatly-service/internal/models"
	"chatly-service/internal/repositories"
	"chatly-service/internal/ws"
)

// MessageHandler owns message exchange: send, history and conversation reset.
type MessageHandler struct {
	requestRepo repositories.RequestRepository
	messageRepo repositories.MessageRepository
	hub         *ws.Hub
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(requestRepo repositories.RequestRepository, messageRepo repositories.MessageRepository, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{requestRepo: requestRepo, messageRepo: messageRepo, hub: hub}
}

// clockFormat is the h:mm AM/PM rendering clients show next to a bubble.
func clockFormat(t time.Time) string {
	return t.Format("3:04 PM")
}

// Send persists a message and notifies the receiver's room. Self-chat is
// always allowed; anything else requires an accepted relationship.
func (h *MessageHandler) Send(c *gin.Context) {
	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
		Body       string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")

	if userID != req.ReceiverID {
		rel, err := h.requestRepo.FindByPair(c.Request.Context(), userID, req.ReceiverID)
		if err != nil && !errors.Is(err, repositories.ErrRequestNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check relationship"})
			return
		}
		if err != nil || rel.Status != models.RequestAccepted {
			c.JSON(http.StatusForbidden, gin.H{"error": "chat request not accepted yet"})
			return
		}
	}

	msg, err := h.messageRepo.Create(c.Request.Context(), userID, req.ReceiverID, req.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	event := models.MessageEvent{
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
		Time:       clockFormat(msg.CreatedAt),
	}
	// For self-chat sender and receiver rooms coincide, so this still lands
	// in the sender's own room exactly once.
	h.hub.Emit(msg.ReceiverID, models.EventReceiveMessage, event)

	c.JSON(http.StatusCreated, gin.H{"message": event})
}

// History returns a pair's conversation, or enough relationship state to
// render the request flow when the pair has none.
func (h *MessageHandler) History(c *gin.Context) {
	userID := c.Param("user_id")
	otherID := c.Param("other_id")

	if c.GetString("userID") != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your conversation"})
		return
	}

	if userID == otherID {
		msgs, err := h.messageRepo.ListSelf(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
			return
		}
		c.JSON(http.StatusOK, historyResponse(msgs, models.RelationAccepted, false, ""))
		return
	}

	rel, err := h.requestRepo.FindByPair(c.Request.Context(), userID, otherID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			c.JSON(http.StatusOK, historyResponse(nil, models.RelationNone, false, ""))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load relationship"})
		return
	}

	isSender := rel.SenderID == userID
	if rel.Status != models.RequestAccepted {
		c.JSON(http.StatusOK, historyResponse(nil, rel.Status, isSender, rel.ID))
		return
	}

	msgs, err := h.messageRepo.ListBetween(c.Request.Context(), userID, otherID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, historyResponse(msgs, models.RelationAccepted, isSender, rel.ID))
}

// Reset erases the pair's request and message history. The two deletions are
// independent; a failure in between can leave orphaned messages.
func (h *MessageHandler) Reset(c *gin.Context) {
	userID := c.Param("user_id")
	otherID := c.Param("other_id")

	caller := c.GetString("userID")
	if caller != userID && caller != otherID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your conversation"})
		return
	}

	if err := h.requestRepo.DeleteByPair(c.Request.Context(), userID, otherID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset request"})
		return
	}
	if err := h.messageRepo.DeleteBetween(c.Request.Context(), userID, otherID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset messages"})
		return
	}

	h.hub.Emit(userID, models.EventChatReset, models.ChatResetEvent{OtherUserID: otherID})
	h.hub.Emit(otherID, models.EventChatReset, models.ChatResetEvent{OtherUserID: userID})

	c.JSON(http.StatusOK, gin.H{"message": "chat reset"})
}

func historyResponse(msgs []models.Message, relationship string, isSender bool, requestID string) models.History {
	if msgs == nil {
		msgs = []models.Message{}
	}
	return models.History{
		Messages:     msgs,
		Relationship: relationship,
		IsSender:     isSender,
		RequestID:    requestID,
	}
}
