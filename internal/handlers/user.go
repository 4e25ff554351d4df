package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatly-service/internal/models"
	"chatly-service/internal/repositories"
)

// UserHandler serves the profile listing clients use as their refetch
// backstop.
type UserHandler struct {
	userRepo repositories.UserRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// ListUsers returns every profile with friend id lists, newest first. The
// caller filters itself out.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	if users == nil {
		users = []models.UserProfile{}
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
