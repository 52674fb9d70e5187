// File: internal/usecase/auth_uc.go
package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
	"ghostwriter/internal/infra/logging"
	"ghostwriter/internal/infra/metrics"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

const MinPasswordLength = 6

type AuthUseCase interface {
	Register(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	Me(ctx context.Context, userID string) (*model.User, error)
}

type authUC struct {
	users repository.UserRepository
	cost  int
	log   *zerolog.Logger
}

// NewAuthUseCase uses bcrypt.DefaultCost when cost is 0.
func NewAuthUseCase(users repository.UserRepository, cost int, logger *zerolog.Logger) *authUC {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	l := logger.With().Str("component", "auth_uc").Logger()
	return &authUC{users: users, cost: cost, log: &l}
}

func (a *authUC) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidArgument
	}
	if len(password) < MinPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	if existing, err := a.users.FindByEmail(ctx, repository.NoTX, email); err == nil && !existing.IsZero() {
		metrics.IncAuthAttempt("register", "duplicate")
		return nil, domain.ErrAlreadyExists
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, err
	}
	u, err := model.NewUser(email, string(hash))
	if err != nil {
		return nil, err
	}
	if err := a.users.Create(ctx, repository.NoTX, u); err != nil {
		return nil, err
	}
	metrics.IncAuthAttempt("register", "ok")
	logging.With(ctx, a.log).Info().Str("new_user_id", u.ID).Msg("user registered")
	return u, nil
}

func (a *authUC) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}
	u, err := a.users.FindByEmail(ctx, repository.NoTX, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncAuthAttempt("login", "failed")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		metrics.IncAuthAttempt("login", "failed")
		return nil, domain.ErrInvalidCredentials
	}
	metrics.IncAuthAttempt("login", "ok")
	return u, nil
}

func (a *authUC) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return a.users.FindByID(ctx, repository.NoTX, userID)
}
