package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into a 500 JSON response. The panic value
// is only exposed to the client in debug mode.
func Recovery(log *slog.Logger, debug bool, message string) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Error("handler panicked",
			"path", c.Request.URL.Path,
			"request_id", GetRequestID(c),
			"panic", fmt.Sprint(recovered),
		)

		msg := message
		if debug {
			msg = fmt.Sprintf("%s: %v", message, recovered)
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": msg,
		})
	})
}
