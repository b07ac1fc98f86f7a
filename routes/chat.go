package routes

import (
	"errors"
	"net/http"
	"strings"

	"pdf-rag-chatbot/internal/logger"
	"pdf-rag-chatbot/middleware"
	"pdf-rag-chatbot/models"
	"pdf-rag-chatbot/services"

	"github.com/gin-gonic/gin"
)

// HandleChat answers a question from the session's processed document.
func HandleChat(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
			c.JSON(http.StatusBadRequest, models.ChatResponse{
				Response:  "No question provided.",
				ErrorCode: "missing_question",
			})
			return
		}

		sessionID := sessionIDFrom(c, req.SessionID)
		if sessionID != "" {
			if err := services.ValidateSessionID(sessionID); err != nil {
				c.JSON(http.StatusBadRequest, models.ChatResponse{
					Response:  "Error: " + err.Error(),
					ErrorCode: "invalid_session_id",
				})
				return
			}
		}
		if sessionID != "" {
			c.Set("session_id", sessionID)
		}

		answer, err := svc.Ask(c.Request.Context(), sessionID, req.Message)
		if err != nil {
			if errors.Is(err, services.ErrInvalidInput) {
				c.JSON(http.StatusBadRequest, models.ChatResponse{
					Response:  "No question provided.",
					ErrorCode: "missing_question",
				})
				return
			}
			logger.ErrorContext(c.Request.Context(), "chat retrieval failed", "session_id", sessionID, "error", err)
			c.JSON(http.StatusInternalServerError, models.ChatResponse{
				Response:  "Error: " + err.Error(),
				SessionID: sessionID,
				ErrorCode: "retrieval_failed",
			})
			return
		}

		if sessionID != "" {
			c.Header(middleware.SessionIDHeader, sessionID)
		}
		c.JSON(http.StatusOK, models.ChatResponse{Response: answer, SessionID: sessionID})
	}
}
