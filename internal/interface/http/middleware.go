package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/billing-dashboard/internal/domain/auth"
	"github.com/yanqian/billing-dashboard/internal/domain/billing"
)

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		} else {
			logger.Warn("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}

// accessTokenMiddleware forwards a bearer token to the request context. It
// never rejects: callers without a session simply see an empty dashboard.
func accessTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			c.Request = c.Request.WithContext(auth.WithAccessToken(c.Request.Context(), token))
		}
		c.Next()
	}
}

const maxViewIDLen = 64

// viewIDMiddleware forwards the client's X-View-ID so re-activations of one
// view can be told apart from other open views of the same user.
func viewIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if viewID := strings.TrimSpace(c.GetHeader("X-View-ID")); viewID != "" && len(viewID) <= maxViewIDLen {
			c.Request = c.Request.WithContext(billing.WithViewID(c.Request.Context(), viewID))
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
