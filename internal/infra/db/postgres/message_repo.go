package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
)

var _ repository.MessageRepository = (*MessageRepo)(nil)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Save(ctx context.Context, tx repository.Tx, m *model.Message) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO messages (id, user_id, original_message, tone, suggestions, selected_suggestion, tokens_used, cached, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	suggestions := m.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	_, err = ex.Exec(ctx, q, m.ID, m.UserID, m.OriginalMessage, m.Tone, suggestions,
		m.SelectedSuggestion, m.TokensUsed, m.Cached, m.CreatedAt)
	return mapErr("message_save", err)
}

func (r *MessageRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Message, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT id, user_id::text, original_message, tone, suggestions, selected_suggestion, tokens_used, cached, created_at
  FROM messages
 WHERE user_id::text = $1
 ORDER BY created_at DESC, id DESC
 OFFSET $2 LIMIT $3;`
	rows, err := ex.Query(ctx, q, userID, offset, limit)
	if err != nil {
		return nil, mapErr("message_list", err)
	}
	defer rows.Close()

	out := make([]*model.Message, 0, limit)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.OriginalMessage, &m.Tone, &m.Suggestions,
			&m.SelectedSuggestion, &m.TokensUsed, &m.Cached, &m.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &m)
	}
	return out, mapErr("message_list", rows.Err())
}

func (r *MessageRepo) Delete(ctx context.Context, tx repository.Tx, userID, id string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM messages WHERE id=$1 AND user_id::text=$2;`, id, userID)
	if err != nil {
		return mapErr("message_delete", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
