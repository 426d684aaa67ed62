package middleware

import (
	"time"

	"github.com/alfred/backend/internal/infrastructure/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultCORSHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader, "Cache-Control"}

// CORS builds the gin-contrib/cors middleware from the http config.
// An empty origin list allows no cross-origin browser access.
func CORS(cfg config.HTTPConfig) gin.HandlerFunc {
	methods := cfg.CORSAllowMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	headers := cfg.CORSAllowHeaders
	if len(headers) == 0 {
		headers = defaultCORSHeaders
	}

	c := cors.Config{
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	switch {
	case len(cfg.CORSAllowOrigins) == 0:
		c.AllowOriginFunc = func(string) bool { return false }
	case len(cfg.CORSAllowOrigins) == 1 && cfg.CORSAllowOrigins[0] == "*":
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	default:
		c.AllowOrigins = cfg.CORSAllowOrigins
	}
	return cors.New(c)
}
