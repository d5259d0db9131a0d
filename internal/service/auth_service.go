package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/ratelimit"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/validation"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const msgInvalidCredentials = "Invalid email or password"

// Session is the result of a successful register or login.
type Session struct {
	User  *domain.User
	Token domain.Token
}

// RegisterRequest carries raw registration fields.
type RegisterRequest struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword *string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users       repository.UserRepository
	hasher      auth.PasswordHasher
	tokens      *auth.TokenManager
	limiter     ratelimit.Limiter
	loginLimit  int
	dummyDigest string
	logger      *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Hasher   auth.PasswordHasher
	Limiter  ratelimit.Limiter
	Logger   *zap.Logger
}

// NewAuthService builds the service. The dummy digest used for unknown emails is hashed
// once here at the configured cost.
func NewAuthService(cfg config.Config, deps AuthDependencies) (*AuthService, error) {
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.NewInMemory(cfg.RateLimit.LoginWindow())
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dummy, err := hasher.Hash("complaint-service-dummy-password")
	if err != nil {
		return nil, err
	}

	return &AuthService{
		users:       deps.UserRepo,
		hasher:      hasher,
		tokens:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		limiter:     limiter,
		loginLimit:  cfg.RateLimit.LoginAttempts,
		dummyDigest: dummy,
		logger:      logger,
	}, nil
}

// Tokens exposes the codec used by the session middleware.
func (s *AuthService) Tokens() *auth.TokenManager {
	return s.tokens
}

// Register creates a user account and signs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	in, err := validation.NewRegisterInput(req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		return nil, translate(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("User with this email already exists")
		}
		return nil, translate(err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.issue(user)
}

// Login verifies credentials. clientIP narrows the rate limit key.
func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (*Session, error) {
	in, err := validation.NewLoginInput(email, password)
	if err != nil {
		return nil, translate(err)
	}

	key := "login:" + in.Email + ":" + clientIP
	decision := s.limiter.Allow(ctx, key, s.loginLimit)
	if !decision.Allowed {
		retry := decision.RetryAfter(time.Now())
		s.logger.Warn("login rate limited", zap.String("email", in.Email), zap.String("ip", clientIP))
		return nil, apperrors.NewDomainError(apperrors.CodeRateLimited,
			"Too many login attempts, try again later", http.StatusTooManyRequests,
			map[string]any{"retryAfterSeconds": int(retry / time.Second)})
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Matches(in.Password, s.dummyDigest)
			return nil, apperrors.NewUnauthenticated(msgInvalidCredentials)
		}
		return nil, translate(err)
	}
	if !s.hasher.Matches(in.Password, user.PasswordHash) {
		return nil, apperrors.NewUnauthenticated(msgInvalidCredentials)
	}

	s.limiter.Reset(ctx, key)
	return s.issue(user)
}

// EnsureAdmin creates the configured administrator when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Email == "" {
		return nil
	}
	existing, err := s.users.GetByEmail(ctx, cfg.Email)
	switch {
	case err == nil:
		if !existing.Role.IsAdmin() {
			s.logger.Warn("configured admin email belongs to a non-admin account", zap.String("email", cfg.Email))
		}
		return nil
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	hash, err := s.hasher.Hash(cfg.Password)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Name:         cfg.Name,
		Email:        cfg.Email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	s.logger.Info("admin account seeded", zap.String("email", cfg.Email))
	return nil
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(user.Identity())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token}, nil
}
