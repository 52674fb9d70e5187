package repository

import (
	"context"

	"ghostwriter/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	AddUsage(ctx context.Context, tx Tx, id string, messages, tokens int) error
}
