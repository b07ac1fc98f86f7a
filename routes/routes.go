package routes

import (
	"context"
	"net/http"
	"time"

	"pdf-rag-chatbot/internal/config"
	"pdf-rag-chatbot/middleware"
	"pdf-rag-chatbot/services"
	"pdf-rag-chatbot/utils"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the optional backing stores checked by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// SetupAPIRoutes registers the upload, chat and session endpoints.
func SetupAPIRoutes(router *gin.Engine, cfg *config.Config, svc *services.ChatService) {
	api := router.Group("/api")

	api.POST("/upload_pdf", middleware.RequestSizeLimit(cfg.MaxFileSize+1<<20), HandlePDFUpload(cfg, svc))
	api.POST("/chat", HandleChat(svc))

	sessions := api.Group("/sessions")
	sessions.GET("/:id", GetSession(svc))
	sessions.DELETE("/:id", ResetSession(svc))
	sessions.GET("/:id/messages", ListMessages(svc))
}

// SetupHealthRoutes registers GET /health. Each named dependency is pinged.
func SetupHealthRoutes(router *gin.Engine, deps map[string]Pinger) {
	router.GET("/health", func(c *gin.Context) {
		checks := gin.H{}
		healthy := true
		for name, p := range deps {
			ctx, cancel := utils.WithShortTimeout(c.Request.Context())
			err := p.Ping(ctx)
			cancel()
			if err != nil {
				checks[name] = err.Error()
				healthy = false
				continue
			}
			checks[name] = "ok"
		}

		status := http.StatusOK
		state := "healthy"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(status, gin.H{
			"status":    state,
			"checks":    checks,
			"timestamp": time.Now().UTC(),
		})
	})
}
