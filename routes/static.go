package routes

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

var staticAllowList = map[string]bool{
	"style.css":       true,
	"script.js":       true,
	"contact_us.html": true,
}

// SetupStaticRoutes serves the chat page at "/" and a fixed set of assets.
// Every other unmatched path gets a plain-text 404.
func SetupStaticRoutes(router *gin.Engine, staticDir string) {
	router.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(staticDir, "index.html"))
	})

	router.NoRoute(func(c *gin.Context) {
		name := c.Request.URL.Path
		if len(name) > 0 && name[0] == '/' {
			name = name[1:]
		}
		if c.Request.Method == http.MethodGet && staticAllowList[name] {
			c.File(filepath.Join(staticDir, name))
			return
		}
		c.String(http.StatusNotFound, "File not found")
	})
}
