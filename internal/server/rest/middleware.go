package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey = "request_id"
	claimsKey    = "claims"
)

// TokenValidator checks bearer access tokens.
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// RequestID reuses an incoming X-Request-ID or generates a new one. The id
// is put on the request context so every log line of the request carries it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Writer.Header().Set(common.RequestIDHeaderName, id)
		c.Next()
	}
}

// AccessLog writes one line per request.
func AccessLog(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error(c.Request.Context(), "http request", args...)
		case status >= http.StatusBadRequest:
			logger.Warn(c.Request.Context(), "http request", args...)
		default:
			logger.Info(c.Request.Context(), "http request", args...)
		}
	}
}

// Metrics records request count and latency by route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// BearerAuth requires a valid access token and stores its claims.
func BearerAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			abort(c, &APIError{Code: CodeUnauthorized, Message: "missing bearer token", Status: http.StatusUnauthorized})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
		if token == "" {
			abort(c, &APIError{Code: CodeUnauthorized, Message: "missing bearer token", Status: http.StatusUnauthorized})
			return
		}

		claims, err := v.ValidateAccessToken(token)
		if err != nil {
			abort(c, accessTokenError(err))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func accessTokenError(err error) *APIError {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return &APIError{Code: CodeTokenExpired, Message: "access token expired", Status: http.StatusUnauthorized, Err: err}
	case errors.Is(err, common.ErrWrongTokenType):
		return &APIError{Code: CodeWrongTokenType, Message: "access token required", Status: http.StatusUnauthorized, Err: err}
	default:
		return &APIError{Code: CodeInvalidToken, Message: "invalid access token", Status: http.StatusUnauthorized, Err: err}
	}
}

func abort(c *gin.Context, err *APIError) {
	Error(c, err)
	c.Abort()
}

// ClaimsFrom returns the claims stored by BearerAuth.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
