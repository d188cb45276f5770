package api

import (
	"net/http"
	"strconv"

	"virtual-therapy-demo/backend/internal/models"
	"virtual-therapy-demo/backend/internal/service"
	"virtual-therapy-demo/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SessionHandler handles therapy session endpoints
type SessionHandler struct {
	sessions *service.SessionService
	logger   *logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService, logger *logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Create starts a new therapy session
func (h *SessionHandler) Create(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	session, err := h.sessions.CreateSession(req.UserID, req.Title)
	if err != nil {
		h.logger.Error("Error creating session", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, session.ToResponse(0))
}

// ListForUser returns all sessions for a user, most recently active first
func (h *SessionHandler) ListForUser(c *gin.Context) {
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID must be a number"})
		return
	}

	sessions, err := h.sessions.ListUserSessions(userID)
	if err != nil {
		h.logger.Error("Error listing sessions", "error", err.Error(), "userID", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// Get returns a single session with its message count
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, err := parseUintParam(c, "sessionId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID must be a number"})
		return
	}

	session, count, err := h.sessions.GetSession(sessionID)
	if err != nil {
		switch err {
		case service.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		default:
			h.logger.Error("Error getting session", "error", err.Error(), "sessionID", sessionID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session"})
		}
		return
	}

	c.JSON(http.StatusOK, session.ToResponse(count))
}

// Rename updates a session's title
func (h *SessionHandler) Rename(c *gin.Context) {
	sessionID, err := parseUintParam(c, "sessionId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID must be a number"})
		return
	}

	var req models.RenameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.sessions.RenameSession(sessionID, req.Title); err != nil {
		switch err {
		case service.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		default:
			h.logger.Error("Error renaming session", "error", err.Error(), "sessionID", sessionID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename session"})
		}
		return
	}

	session, count, err := h.sessions.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session.ToResponse(count),
	})
}

// parseUintParam reads a numeric path parameter.
func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
