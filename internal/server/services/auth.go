// Package services contains the server-side business logic. AuthService runs
// the token lifecycle (register, login, refresh, logout, sweep) on top of the
// identity directory, the token codec and the refresh token store.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Lifecycle operation names used in logs and metrics.
const (
	OpRegister = "register"
	OpLogin    = "login"
	OpRefresh  = "refresh"
	OpLogout   = "logout"
	OpSweep    = "sweep"
)

// Logout messages.
const (
	LogoutMessageTerminated = "Successfully logged out"
	LogoutMessageNoSession  = "User was already logged out"
	LogoutDetailsTerminated = "All active sessions have been terminated"
	LogoutDetailsNoSession  = "No active sessions found for this user"
)

// Recorder receives one observation per lifecycle call.
type Recorder interface {
	ObserveLifecycle(operation, outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLifecycle(string, string, time.Duration) {}

// AuthService is the token lifecycle engine. It holds no per-request state
// and is safe for concurrent use.
type AuthService struct {
	gateway identity.Gateway
	codec   *auth.Codec
	tokens  *RefreshTokenService
	logger  logging.Logger
	metrics Recorder
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithRecorder installs a metrics recorder.
func WithRecorder(r Recorder) AuthOption {
	return func(s *AuthService) { s.metrics = r }
}

// NewAuthService wires the engine.
func NewAuthService(gateway identity.Gateway, codec *auth.Codec, tokens *RefreshTokenService, logger logging.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		gateway: gateway,
		codec:   codec,
		tokens:  tokens,
		logger:  logger.With("module", "auth"),
		metrics: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a directory identity and signs it in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (resp *models.AuthResponse, err error) {
	defer s.observe(ctx, OpRegister, req.Username, time.Now(), &err)

	_, err = s.gateway.FindByUsername(ctx, req.Username)
	switch {
	case err == nil:
		return nil, common.ErrUserAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	created, err := s.gateway.Create(ctx, models.NewIdentity{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Role:        models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, common.ErrUserAlreadyExists) {
			return nil, common.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("%w: %w", common.ErrIdentityCreationFailed, err)
	}

	ident, err := s.gateway.FindByUsername(ctx, req.Username)
	if err != nil {
		s.logger.Warn(ctx, "re-resolving created identity failed, using create reply",
			"username", req.Username, "error", err)
		ident = created
	}

	return s.issuePair(ctx, ident)
}

// Login checks credentials against the directory and signs the user in.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (resp *models.AuthResponse, err error) {
	defer s.observe(ctx, OpLogin, req.Username, time.Now(), &err)

	ok, err := s.gateway.VerifyPassword(ctx, req.Username, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	ident, err := s.gateway.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return s.issuePair(ctx, ident)
}

// Refresh exchanges a refresh token for a new pair. The presented token's
// row is replaced, so the old token stops working immediately.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (resp *models.AuthResponse, err error) {
	var username string
	defer func(start time.Time) { s.observe(ctx, OpRefresh, username, start, &err) }(time.Now())

	claims, row, ident, err := s.resolveRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	username = claims.Subject

	if _, err := s.tokens.VerifyNotExpired(ctx, row); err != nil {
		return nil, err
	}
	if s.codec.Expired(claims) {
		if err := s.tokens.Revoke(ctx, row); err != nil {
			s.logger.Warn(ctx, "revoking refresh token with expired wrapper failed", "username", username, "error", err)
		}
		return nil, common.ErrTokenExpired
	}

	if !ident.Active {
		if _, err := s.tokens.DeleteForUser(ctx, ident.ID); err != nil {
			s.logger.Warn(ctx, "dropping session of disabled account failed", "username", username, "error", err)
		}
		return nil, common.ErrAccountDisabled
	}

	next, err := s.tokens.Rotate(ctx, row)
	if err != nil {
		return nil, err
	}
	return s.mintPair(ident, next)
}

// Logout ends the session bound to refreshToken. Logging out an already
// terminated session is a success with WasActiveSession=false.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (res *models.LogoutResult, err error) {
	var username string
	defer func(start time.Time) { s.observe(ctx, OpLogout, username, start, &err) }(time.Now())

	claims, row, ident, err := s.resolveRefreshToken(ctx, refreshToken)
	if claims != nil {
		username = claims.Subject
	}
	if err != nil {
		if errors.Is(err, common.ErrTokenNotFound) && claims != nil {
			return logoutResult(username, false), nil
		}
		return nil, err
	}

	existed, err := s.tokens.DeleteForUser(ctx, row.UserID)
	if err != nil {
		return nil, err
	}
	if existed {
		s.logger.Info(ctx, "session terminated", "username", username, "user_id", ident.ID)
	}
	return logoutResult(username, existed), nil
}

func logoutResult(username string, existed bool) *models.LogoutResult {
	if existed {
		return &models.LogoutResult{
			Username:         username,
			Message:          LogoutMessageTerminated,
			Details:          LogoutDetailsTerminated,
			WasActiveSession: true,
		}
	}
	return &models.LogoutResult{
		Username: username,
		Message:  LogoutMessageNoSession,
		Details:  LogoutDetailsNoSession,
	}
}

// SweepExpiredTokens deletes every expired refresh token row.
func (s *AuthService) SweepExpiredTokens(ctx context.Context) (n int64, err error) {
	defer s.observe(ctx, OpSweep, "", time.Now(), &err)

	n, err = s.tokens.SweepExpired(ctx, s.tokens.Now())
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "expired refresh tokens swept", "count", n)
	return n, nil
}

// Profile returns the public view of username's identity.
func (s *AuthService) Profile(ctx context.Context, username string) (*models.Profile, error) {
	ident, err := s.gateway.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	p := ident.Profile()
	return &p, nil
}

// resolveRefreshToken runs the checks shared by refresh and logout: signature,
// type, identifier lookup and the user cross-check. claims is returned as soon
// as the signature is verified.
func (s *AuthService) resolveRefreshToken(ctx context.Context, token string) (*auth.Claims, *models.RefreshToken, *models.Identity, error) {
	claims, err := s.codec.Parse(token)
	if err != nil {
		return nil, nil, nil, err
	}
	if claims.Kind() != auth.TokenTypeRefresh {
		return nil, nil, nil, common.ErrWrongTokenType
	}
	identifier, ok := claims.Identifier()
	if !ok {
		return claims, nil, nil, common.ErrTokenNotFound
	}

	row, err := s.tokens.FindByIdentifier(ctx, identifier)
	if err != nil {
		return claims, nil, nil, err
	}

	ident, err := s.gateway.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return claims, nil, nil, common.ErrTokenUserMismatch
		}
		return claims, nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	if row.UserID != ident.ID {
		return claims, nil, nil, common.ErrTokenUserMismatch
	}
	return claims, row, ident, nil
}

// issuePair stores a fresh refresh row for ident and mints both tokens.
func (s *AuthService) issuePair(ctx context.Context, ident *models.Identity) (*models.AuthResponse, error) {
	row, err := s.tokens.Create(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	return s.mintPair(ident, row)
}

func (s *AuthService) mintPair(ident *models.Identity, row *models.RefreshToken) (*models.AuthResponse, error) {
	access, err := s.codec.IssueAccessToken(ident.Username, ident.Authorities())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.IssueRefreshToken(ident.Username, row.TokenIdentifier)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &models.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Username:     ident.Username,
		Email:        ident.Email,
	}, nil
}

func (s *AuthService) observe(ctx context.Context, op, username string, start time.Time, errp *error) {
	outcome := Outcome(*errp)
	elapsed := time.Since(start)
	s.metrics.ObserveLifecycle(op, outcome, elapsed)

	switch {
	case *errp == nil:
		s.logger.Info(ctx, op+" succeeded", "username", username, "duration", elapsed)
	case outcome == OutcomeError:
		s.logger.Error(ctx, op+" failed", "username", username, "error", *errp)
	default:
		s.logger.Warn(ctx, op+" rejected", "username", username, "reason", outcome)
	}
}
