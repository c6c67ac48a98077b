package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pesio-ai/be-plt-login/internal/logger"
	"github.com/pesio-ai/be-plt-login/internal/metrics"
	"github.com/pesio-ai/be-plt-login/internal/repository"
	"github.com/pesio-ai/be-plt-login/internal/session"
	jwtpkg "github.com/pesio-ai/be-plt-login/pkg/jwt"
)

// UserStore reads login accounts
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*repository.User, error)
}

// CredentialVerifier compares a raw password with a stored hash
type CredentialVerifier interface {
	Verify(raw, hash string) bool
}

// TokenIssuer mints and decodes session tokens
type TokenIssuer interface {
	Mint(userID, username, roleName string) (string, error)
	Decode(token string) (*jwtpkg.Claims, error)
	IsExpired(claims *jwtpkg.Claims) bool
}

// TrailRecorder writes login trail entries
type TrailRecorder interface {
	Record(ctx context.Context, trail *repository.LoginTrail) (*repository.LoginTrail, error)
	RecordAsync(trail *repository.LoginTrail)
}

// LogoutResult is the outcome of a logout that did not fail
type LogoutResult int

const (
	// LoggedOut means a live session was found and removed
	LoggedOut LogoutResult = iota + 1
	// SessionAlreadyExpired means no live session existed for the token
	SessionAlreadyExpired
)

func (r LogoutResult) String() string {
	switch r {
	case LoggedOut:
		return "logged_out"
	case SessionAlreadyExpired:
		return "session_already_expired"
	default:
		return "unknown"
	}
}

// LoginRequest is a login attempt
type LoginRequest struct {
	Username string
	Password string
	SourceIP string
}

// Institution is the institution part of a login response
type Institution struct {
	ID            string
	Name          string
	LicenseNumber string
}

// Branch is the branch part of a login response
type Branch struct {
	ID   string
	Code string
	Name string
}

// LoginResponse is returned on a successful login. Institution and Branch
// are nil when the user has no such association.
type LoginResponse struct {
	Token                 string
	Username              string
	PasswordResetRequired string
	FullName              string
	RoleName              string
	Email                 string
	MobileNumber          string
	Designation           string
	Institution           *Institution
	Branch                *Branch
}

// LoginService runs the login and logout flows
type LoginService struct {
	users      UserStore
	aggregator *Aggregator
	verifier   CredentialVerifier
	tokens     TokenIssuer
	cache      session.Cache
	trails     TrailRecorder
	sessionTTL time.Duration
	metrics    *metrics.Metrics
	log        *logger.Logger
	now        func() time.Time
}

// NewLoginService creates a new login service. A non-positive sessionTTL
// falls back to session.DefaultTTL.
func NewLoginService(
	users UserStore,
	aggregator *Aggregator,
	verifier CredentialVerifier,
	tokens TokenIssuer,
	cache session.Cache,
	trails TrailRecorder,
	sessionTTL time.Duration,
	m *metrics.Metrics,
	log *logger.Logger,
) *LoginService {
	if sessionTTL <= 0 {
		sessionTTL = session.DefaultTTL
	}
	return &LoginService{
		users:      users,
		aggregator: aggregator,
		verifier:   verifier,
		tokens:     tokens,
		cache:      cache,
		trails:     trails,
		sessionTTL: sessionTTL,
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

// Login authenticates a user, caches the session and returns a token
func (s *LoginService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	resp, err := s.login(ctx, req)
	if err != nil {
		s.metrics.ObserveLogin(string(KindOf(err)))
		return nil, err
	}
	s.metrics.ObserveLogin("success")
	return resp, nil
}

func (s *LoginService) login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	s.log.Info().
		Str("username", req.Username).
		Str("source_ip", req.SourceIP).
		Msg("Login attempt")

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn().Str("username", req.Username).Msg("User not found")
			return nil, newError(NotFound, fmt.Sprintf("User not found with username: %s", req.Username), nil)
		}
		s.log.Error().Err(err).Str("username", req.Username).Msg("Failed to load user")
		return nil, newError(Unexpected, "Failed to load user", err)
	}

	if !s.verifier.Verify(req.Password, user.PasswordHash) {
		s.log.Warn().Str("user_id", user.ID).Msg("Invalid password")
		return nil, newError(Forbidden, fmt.Sprintf("Invalid password for username: %s", req.Username), nil)
	}

	if user.Status != repository.StatusActive {
		s.log.Warn().Str("user_id", user.ID).Str("status", user.Status).Msg("User is not active")
		return nil, newError(Forbidden, fmt.Sprintf("User %s is not active", req.Username), nil)
	}

	authCtx, err := s.aggregator.Resolve(ctx, user)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to resolve authorization context")
		return nil, err
	}
	p := authCtx.Base()

	token, err := s.tokens.Mint(user.ID, user.Username, p.Role.Name)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to mint token")
		return nil, newError(Unexpected, "Failed to issue token", err)
	}

	if err := s.cache.Put(ctx, user.ID, newSnapshot(authCtx, token), s.sessionTTL); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to cache session")
		return nil, newError(Unexpected, "Failed to create session", err)
	}

	s.trails.RecordAsync(&repository.LoginTrail{
		UserID:    user.ID,
		Type:      repository.TrailSignIn,
		SourceIP:  req.SourceIP,
		InOutTime: s.now(),
	})

	s.log.Info().
		Str("user_id", user.ID).
		Str("role", p.Role.Name).
		Msg("Login successful")

	return newLoginResponse(authCtx, token), nil
}

func newLoginResponse(ac AuthContext, token string) *LoginResponse {
	p := ac.Base()
	resp := &LoginResponse{
		Token:                 token,
		Username:              p.User.Username,
		PasswordResetRequired: p.User.PasswordResetRequired,
		FullName:              p.Employee.FullName,
		RoleName:              p.Role.Name,
		Email:                 p.Employee.Email,
		MobileNumber:          p.Employee.MobileNumber,
		Designation:           p.Employee.Designation,
	}

	mfi, branch := institutionOf(ac)
	if mfi != nil {
		resp.Institution = &Institution{ID: mfi.ID, Name: mfi.Name, LicenseNumber: mfi.LicenseNumber}
	}
	if branch != nil {
		resp.Branch = &Branch{ID: branch.ID, Code: branch.Code, Name: branch.Name}
	}

	return resp
}

// Logout ends the session the token belongs to. A token whose session is
// already gone is not an error.
func (s *LoginService) Logout(ctx context.Context, token, sourceIP string) (LogoutResult, error) {
	result, err := s.logout(ctx, token, sourceIP)
	if err != nil {
		s.metrics.ObserveLogout(string(KindOf(err)))
		return 0, err
	}
	s.metrics.ObserveLogout(result.String())
	return result, nil
}

func (s *LoginService) logout(ctx context.Context, token, sourceIP string) (LogoutResult, error) {
	if token == "" {
		return 0, newError(InvalidToken, "Missing auth token", nil)
	}

	claims, err := s.tokens.Decode(token)
	if err != nil {
		s.log.Warn().Err(err).Str("source_ip", sourceIP).Msg("Invalid logout token")
		return 0, newError(InvalidToken, "Invalid auth token", err)
	}

	if s.tokens.IsExpired(claims) {
		s.log.Info().Str("user_id", claims.UserID).Msg("Logout with expired token")
		return 0, newError(TokenExpired, "Token is expired", nil)
	}

	if _, err := s.cache.Get(ctx, claims.UserID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			s.log.Info().Str("user_id", claims.UserID).Msg("No live session on logout")
			return SessionAlreadyExpired, nil
		}
		s.log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to read session")
		return 0, newError(Unexpected, "Failed to read session", err)
	}

	_, err = s.trails.Record(ctx, &repository.LoginTrail{
		UserID:    claims.UserID,
		Type:      repository.TrailSignOut,
		SourceIP:  sourceIP,
		InOutTime: s.now(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to write sign out trail")
		return 0, newError(Unexpected, "Failed to record logout", err)
	}

	if err := s.cache.Delete(ctx, claims.UserID); err != nil {
		s.log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to delete session")
		return 0, newError(Unexpected, "Failed to delete session", err)
	}

	s.log.Info().Str("user_id", claims.UserID).Msg("Logout successful")

	return LoggedOut, nil
}
