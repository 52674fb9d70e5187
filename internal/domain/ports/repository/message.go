package repository

import (
	"context"

	"ghostwriter/internal/domain/model"
)

type MessageRepository interface {
	Save(ctx context.Context, tx Tx, m *model.Message) error
	// ListByUser returns messages newest first.
	ListByUser(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.Message, error)
	Delete(ctx context.Context, tx Tx, userID, id string) error
}
