package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthService is the lifecycle engine as seen by the HTTP layer.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) (*models.LogoutResult, error)
	Profile(ctx context.Context, username string) (*models.Profile, error)
}

// Handler serves the auth and user endpoints.
type Handler struct {
	auth AuthService
}

func NewHandler(auth AuthService) *Handler {
	return &Handler{auth: auth}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 200 {object} Envelope{data=models.AuthResponse}
// @Failure 400 {object} Envelope
// @Failure 409 {object} Envelope
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bind(c, &req) {
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), req.model())
	if err != nil {
		Error(c, err)
		return
	}
	JSON(c, http.StatusOK, resp)
}

// Login godoc
// @Summary Authenticate with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} Envelope{data=models.AuthResponse}
// @Failure 400 {object} Envelope
// @Failure 401 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req.model())
	if err != nil {
		Error(c, err)
		return
	}
	JSON(c, http.StatusOK, resp)
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} Envelope{data=models.AuthResponse}
// @Failure 400 {object} Envelope
// @Failure 401 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /api/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if !bind(c, &req) {
		return
	}

	resp, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Error(c, err)
		return
	}
	JSON(c, http.StatusOK, resp)
}

// Logout godoc
// @Summary End the user's session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} Envelope{data=models.LogoutResult}
// @Failure 400 {object} Envelope
// @Failure 401 {object} Envelope
// @Router /api/auth/logout [delete]
func (h *Handler) Logout(c *gin.Context) {
	var req RefreshTokenRequest
	if !bind(c, &req) {
		return
	}

	res, err := h.auth.Logout(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Error(c, err)
		return
	}
	JSON(c, http.StatusOK, res)
}

// Profile godoc
// @Summary Current user profile
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=models.Profile}
// @Failure 401 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /api/user/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		Error(c, &APIError{Code: CodeUnauthorized, Message: "missing bearer token", Status: http.StatusUnauthorized})
		return
	}

	profile, err := h.auth.Profile(c.Request.Context(), claims.Subject)
	if err != nil {
		Error(c, err)
		return
	}
	JSON(c, http.StatusOK, profile)
}

// Health godoc
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} Envelope
// @Router /health [get]
func Health(c *gin.Context) {
	JSON(c, http.StatusOK, gin.H{"status": "ok"})
}

func bind(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	apiErr := &APIError{Code: CodeValidation, Message: "malformed request body", Status: http.StatusBadRequest, Err: err}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		apiErr.Message = "request validation failed"
		for _, fe := range verrs {
			apiErr.Details = append(apiErr.Details, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
	}

	Error(c, apiErr)
	return false
}
