package routes

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pdf-rag-chatbot/internal/config"
	"pdf-rag-chatbot/internal/logger"
	"pdf-rag-chatbot/middleware"
	"pdf-rag-chatbot/models"
	"pdf-rag-chatbot/services"
	"pdf-rag-chatbot/utils"

	"github.com/gin-gonic/gin"
)

// sessionIDFrom prefers an explicit value, then the X-Session-ID header.
func sessionIDFrom(c *gin.Context, explicit string) string {
	if sid := strings.TrimSpace(explicit); sid != "" {
		return sid
	}
	return strings.TrimSpace(c.GetHeader(middleware.SessionIDHeader))
}

// invalidSessionID writes a 400 and reports true when a non-empty id fails
// validation.
func invalidSessionID(c *gin.Context, id string) bool {
	if id == "" {
		return false
	}
	if err := services.ValidateSessionID(id); err != nil {
		utils.RespondWithBadRequest(c, "invalid_session_id", err.Error())
		return true
	}
	return false
}

// HandlePDFUpload processes a multipart PDF upload into the caller's session.
func HandlePDFUpload(cfg *config.Config, svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				utils.RespondWithError(c, http.StatusRequestEntityTooLarge, "file_too_large",
					"File size exceeds maximum limit", gin.H{"max_size": cfg.MaxFileSize})
				return
			}
			utils.RespondWithBadRequest(c, "no_file", "No file uploaded.")
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "no_file", "No file uploaded.")
			return
		}
		defer file.Close()

		if err := services.ValidateFilename(header.Filename); err != nil {
			utils.RespondWithBadRequest(c, "invalid_file_type", "Only PDF files are supported.")
			return
		}

		sessionID := sessionIDFrom(c, c.PostForm("session_id"))
		if invalidSessionID(c, sessionID) {
			return
		}
		result, err := svc.Upload(c.Request.Context(), sessionID, header.Filename, file)
		if err != nil {
			respondUploadError(c, err)
			return
		}

		c.Set("session_id", result.SessionID)
		c.Header(middleware.SessionIDHeader, result.SessionID)

		message := "PDF processed successfully. You can now ask questions about it."
		if result.Reused {
			message = "PDF already processed for this session."
		}
		c.JSON(http.StatusOK, models.UploadResponse{
			Status:     "success",
			SessionID:  result.SessionID,
			Filename:   result.Filename,
			ChunkCount: result.ChunkCount,
			Reused:     result.Reused,
			Message:    message,
		})
	}
}

func respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.WarnContext(c.Request.Context(), "PDF processing interrupted", "error", err)
		utils.RespondWithError(c, http.StatusRequestTimeout, "request_cancelled", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidSessionID):
		utils.RespondWithBadRequest(c, "invalid_session_id", err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		utils.RespondWithBadRequest(c, "invalid_file", err.Error())
	case errors.Is(err, services.ErrTooLarge):
		utils.RespondWithError(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), nil)
	case errors.Is(err, services.ErrExtraction):
		logger.WarnContext(c.Request.Context(), "PDF extraction failed", "error", err)
		utils.RespondWithInternalError(c, "extraction_failed", err.Error())
	default:
		logger.ErrorContext(c.Request.Context(), "PDF indexing failed", "error", err)
		utils.RespondWithInternalError(c, "indexing_failed", err.Error())
	}
}
