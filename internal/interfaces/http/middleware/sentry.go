package middleware

import (
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// Sentry attaches a request-scoped hub and reports panics. Panics are
// re-raised so the outer Recovery middleware still writes the 500 envelope.
func Sentry() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// SentryScope tags the request hub with the request id and caller.
// Place it after the JWT middleware.
func SentryScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("request_id", GetRequestID(c))
				if id := c.GetString(UserIDKey); id != "" {
					scope.SetUser(sentry.User{ID: id})
				}
			})
		}
		c.Next()
	}
}
