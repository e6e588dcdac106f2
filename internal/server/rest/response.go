package rest

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the common response contract.
type Envelope struct {
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// JSON sends a success envelope. Token responses must never be cached.
func JSON(c *gin.Context, status int, data any) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{Data: data})
}

// Error sends an error envelope and records err on the context for the
// access log.
func Error(c *gin.Context, err error) {
	apiErr := FromError(err)
	_ = c.Error(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(apiErr.Status, Envelope{Error: apiErr})
}
