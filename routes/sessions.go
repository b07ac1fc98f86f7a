package routes

import (
	"errors"
	"net/http"
	"strconv"

	"pdf-rag-chatbot/models"
	"pdf-rag-chatbot/services"
	"pdf-rag-chatbot/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultMessageLimit = 100
	maxMessageLimit     = 1000
)

// GetSession reports the lifecycle state of a session.
func GetSession(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if invalidSessionID(c, id) {
			return
		}
		c.Set("session_id", id)

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		state, snap, err := svc.State(ctx, id)
		if err != nil {
			utils.RespondWithInternalError(c, "session_lookup_failed", err.Error())
			return
		}

		info := models.SessionInfo{SessionID: id, State: string(state)}
		if snap != nil {
			created := snap.CreatedAt
			info.Filename = snap.Filename
			info.ChunkCount = len(snap.Chunks)
			info.CreatedAt = &created
		}
		c.JSON(http.StatusOK, info)
	}
}

// ResetSession drops the session's document and transcript.
func ResetSession(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if invalidSessionID(c, id) {
			return
		}
		c.Set("session_id", id)

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		if err := svc.Reset(ctx, id); err != nil {
			if errors.Is(err, services.ErrSessionNotFound) {
				utils.RespondWithNotFound(c, "Session not found")
				return
			}
			utils.RespondWithInternalError(c, "session_reset_failed", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "success",
			"session_id": id,
			"message":    "Session reset.",
		})
	}
}

// ListMessages returns the session transcript, oldest first.
func ListMessages(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if invalidSessionID(c, id) {
			return
		}
		c.Set("session_id", id)

		limit, err := strconv.ParseInt(c.DefaultQuery("limit", strconv.Itoa(defaultMessageLimit)), 10, 64)
		if err != nil || limit <= 0 {
			utils.RespondWithBadRequest(c, "invalid_limit", "limit must be a positive integer")
			return
		}
		if limit > maxMessageLimit {
			limit = maxMessageLimit
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		msgs, err := svc.Messages(ctx, id, limit)
		if err != nil {
			utils.RespondWithInternalError(c, "transcript_failed", err.Error())
			return
		}
		c.JSON(http.StatusOK, models.MessagesResponse{SessionID: id, Messages: msgs})
	}
}
