package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tilp-connect/internal/domain"
	"tilp-connect/internal/repository"
	"tilp-connect/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix = "tilp:session:"
	// DefaultSessionTTL applies when the configured TTL is not positive.
	DefaultSessionTTL = 12 * time.Hour
)

// AuthService login sessions.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	// Resolve returns the identity bound to token, or domain.ErrUnauthorized.
	Resolve(ctx context.Context, token string) (domain.Identity, error)
	Logout(ctx context.Context, token string) error
	// RevokeUser ends every session of username so a changed role or child
	// link applies from the next login.
	RevokeUser(ctx context.Context, username string) error
}

type authService struct {
	users  repository.UsersRepository
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

// NewAuthService creates the session-backed AuthService.
func NewAuthService(users repository.UsersRepository, kv store.KV, ttl time.Duration, logger *zap.Logger) AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &authService{users: users, kv: kv, ttl: ttl, logger: logger}
}

// LoginRequest login form.
type LoginRequest struct {
	Username  string
	Password  string
	IPAddress string // for logs
}

// LoginResponse issued session.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Identity  domain.Identity `json:"identity"`
	HomePath  string          `json:"home_path"`
}

// Login checks credentials and opens a session.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		s.logger.Warn("User login failed: missing credentials",
			zap.String("ip_address", req.IPAddress),
			zap.String("reason", "missing_credentials"),
		)
		return nil, fmt.Errorf("missing credentials: %w", domain.ErrUnauthorized)
	}

	user, err := s.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("User login failed: invalid credentials",
				zap.String("username", req.Username),
				zap.String("ip_address", req.IPAddress),
				zap.String("reason", "invalid_credentials"),
			)
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	identity := user.Identity()
	payload, err := json.Marshal(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	token := uuid.NewString()
	if err := s.kv.Set(ctx, sessionKeyPrefix+token, string(payload), s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w: %w", domain.ErrStoreUnavailable, err)
	}

	s.logger.Info("User logged in",
		zap.String("username", identity.Username),
		zap.String("role", identity.Role),
		zap.String("ip_address", req.IPAddress),
	)
	return &LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.ttl),
		Identity:  identity,
		HomePath:  homePath(identity),
	}, nil
}

// homePath is the first page the client should open for identity.
func homePath(identity domain.Identity) string {
	if identity.Role == domain.RoleParent {
		return "/dashboard"
	}
	return "/tracker"
}

// validToken keeps caller text out of KV patterns: only UUIDs are accepted.
func validToken(token string) bool {
	_, err := uuid.Parse(token)
	return err == nil && !strings.ContainsAny(token, "*?[]{}")
}

func (s *authService) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	if !validToken(token) {
		return domain.Identity{}, fmt.Errorf("invalid session token: %w", domain.ErrUnauthorized)
	}
	raw, err := s.kv.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return domain.Identity{}, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
		}
		return domain.Identity{}, fmt.Errorf("failed to read session: %w: %w", domain.ErrStoreUnavailable, err)
	}
	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil || identity.Username == "" {
		s.logger.Warn("Dropping corrupt session", zap.Error(err))
		_ = s.kv.Delete(ctx, sessionKeyPrefix+token)
		return domain.Identity{}, fmt.Errorf("corrupt session: %w", domain.ErrUnauthorized)
	}
	return identity, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if !validToken(token) {
		return nil
	}
	if err := s.kv.Delete(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("failed to delete session: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *authService) RevokeUser(ctx context.Context, username string) error {
	keys, err := s.kv.ScanKeys(ctx, sessionKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to scan sessions: %w: %w", domain.ErrStoreUnavailable, err)
	}

	var stale []string
	for _, key := range keys {
		raw, err := s.kv.Get(ctx, key)
		if err != nil {
			continue // expired between scan and get
		}
		var identity domain.Identity
		if err := json.Unmarshal([]byte(raw), &identity); err != nil || identity.Username == username {
			stale = append(stale, key)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	if err := s.kv.Delete(ctx, stale...); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w: %w", domain.ErrStoreUnavailable, err)
	}
	s.logger.Info("Revoked user sessions", zap.String("username", username), zap.Int("sessions", len(stale)))
	return nil
}
