package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/events"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util/errorutil"
)

const (
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgRegisterFailed     = "Failed to create account"
	msgLoginFailed        = "Login failed"
)

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	User  *domain.User
	Token domain.IssuedToken
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int

	// dummyHash is compared against on unknown emails so both login
	// failures spend one bcrypt comparison.
	dummyHash string
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service. A nil Tokens falls back to a manager
// built from cfg.Auth.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dummyHash, err := auth.HashPassword(uuid.NewString(), cfg.Auth.BcryptCost)
	if err != nil {
		logger.Warn("placeholder hash generation failed", zap.Error(err))
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   tokens,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		dummyHash:  dummyHash,
	}
}

// Register creates a new account and issues its first session token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict(msgUserExists, nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalErrorWithMessage(msgRegisterFailed, err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalErrorWithMessage(msgRegisterFailed, err)
	}

	role := domain.RoleUser
	if in.Role != nil {
		role = *in.Role
	}
	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Phone:        normalizePhone(in.Phone),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// a concurrent registration won the unique index
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict(msgUserExists, nil)
		}
		return nil, apperrors.NewInternalErrorWithMessage(msgRegisterFailed, err)
	}

	token, err := s.tokenMgr.GenerateToken(identityOf(user))
	if err != nil {
		return nil, apperrors.NewInternalErrorWithMessage(msgRegisterFailed, err)
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = auth.ComparePassword(s.dummyHash, in.Password)
			return nil, apperrors.NewUnauthorized(msgInvalidCredentials)
		}
		return nil, apperrors.NewInternalErrorWithMessage(msgLoginFailed, err)
	}

	if err := auth.ComparePassword(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperrors.NewUnauthorized(msgInvalidCredentials)
		}
		return nil, apperrors.NewInternalErrorWithMessage(msgLoginFailed, err)
	}

	token, err := s.tokenMgr.GenerateToken(identityOf(user))
	if err != nil {
		return nil, apperrors.NewInternalErrorWithMessage(msgLoginFailed, err)
	}

	s.publish(ctx, events.EventUserLoggedIn, user.ID, events.UserLoggedInPayload{
		Email:     user.Email,
		ExpiresAt: token.ExpiresAt,
	})
	return &AuthResult{User: user, Token: token}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func identityOf(u *domain.User) domain.Identity {
	return domain.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*phone)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
