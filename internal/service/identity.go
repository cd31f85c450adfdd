package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/localbazaar/market-service/internal/entities"
)

type UserRepo interface {
	GetByID(ctx context.Context, userID string) (entities.User, error)
}

// IdentityService resolves an opaque principal token to a user. Credential
// verification is the external auth collaborator's job; the token we receive
// is already authenticated.
type IdentityService struct {
	logger *slog.Logger
	users  UserRepo
}

func NewIdentityService(logger *slog.Logger, users UserRepo) *IdentityService {
	return &IdentityService{
		logger: logger.With(slog.String("service", "identity")),
		users:  users,
	}
}

func (s *IdentityService) Resolve(ctx context.Context, principalToken string) (entities.User, error) {
	if principalToken == "" {
		return entities.User{}, fmt.Errorf("%w: empty principal token", entities.ErrUserNotFound)
	}
	return s.users.GetByID(ctx, principalToken)
}
