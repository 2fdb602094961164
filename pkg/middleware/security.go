package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/enrolhq/enrolment-relay/pkg/errors"
)

// SecurityHeaders sets defensive response headers on every request
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

// RequestSizeLimit rejects bodies larger than maxBytes with 413. Form
// payloads are small; anything bigger is not a webhook we want to buffer.
func RequestSizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			errors.ErrorResponse(c, http.StatusRequestEntityTooLarge,
				"Request Entity Too Large",
				"request body exceeds the allowed size",
			)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
