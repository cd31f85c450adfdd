package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/localbazaar/market-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type UsersRepo struct {
	executor
}

func NewUsersRepo(db *sqlx.DB) *UsersRepo {
	return &UsersRepo{executor: newExecutor(db)}
}

func (r *UsersRepo) GetByID(ctx context.Context, userID string) (entities.User, error) {
	query, args := r.qb.Select("id", "name", "email", "role").
		From("users").
		Where(sq.Eq{"id": userID}).
		MustSql()

	var user User
	err := r.getContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.User{}, entities.ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return UserToEntity(user), nil
}
