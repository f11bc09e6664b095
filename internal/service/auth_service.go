package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/solicitud-service/internal/auth"
	"github.com/spec-kit/solicitud-service/internal/config"
	"github.com/spec-kit/solicitud-service/internal/domain"
	"github.com/spec-kit/solicitud-service/internal/repository"
	apperrors "github.com/spec-kit/solicitud-service/pkg/util"
)

// errInvalidCredentials is returned for both unknown email and wrong
// password so the two causes stay indistinguishable to the caller.
var errInvalidCredentials = apperrors.NewDomainError("INVALID_CREDENTIALS", "invalid credentials", http.StatusBadRequest)

// AuthService coordinates registration, login and profile flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new helper account and issues a token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("name, email and password are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// a concurrent register can slip past the lookup; the unique
		// index on email is the real arbiter
		if isUniqueViolation(err) {
			return nil, "", time.Time{}, apperrors.NewConflict("email already registered")
		}
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates a helper and issues a fresh token. Prior tokens stay
// valid until they expire.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, errInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errInvalidCredentials
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Profile loads the user row behind a verified identity.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid or expired token")
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes name and email for the authenticated user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email are required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid or expired token")
		}
		return nil, err
	}

	if email != user.Email {
		if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing.ID != userID {
			return nil, apperrors.NewConflict("email already registered")
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	user.Name = name
	user.Email = email
	if err := s.users.Update(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered")
		}
		return nil, err
	}
	return user, nil
}

// isUniqueViolation reports the Postgres unique_violation error (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// TokenManager exposes the underlying token manager for the session gate.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
