package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
)

var _ repository.MessageRepository = (*MessageRepo)(nil)

type MessageRepo struct {
	db *sql.DB
}

func (r *MessageRepo) Save(ctx context.Context, tx repository.Tx, m *model.Message) error {
	ex, err := getExecutor(r.db, tx)
	if err != nil {
		return err
	}
	suggestions := m.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	raw, err := json.Marshal(suggestions)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
INSERT INTO messages (id, user_id, original_message, tone, suggestions, selected_suggestion, tokens_used, cached, created_at)
VALUES (?,?,?,?,?,?,?,?,?)`,
		m.ID, m.UserID, m.OriginalMessage, m.Tone, string(raw), m.SelectedSuggestion, m.TokensUsed, m.Cached, formatTime(m.CreatedAt))
	return mapErr("message_save", err)
}

// ListByUser orders by ULID as the tiebreak, which is creation order.
func (r *MessageRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Message, error) {
	ex, err := getExecutor(r.db, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.QueryContext(ctx, `
SELECT id, user_id, original_message, tone, suggestions, selected_suggestion, tokens_used, cached, created_at
  FROM messages
 WHERE user_id = ?
 ORDER BY created_at DESC, id DESC
 LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, mapErr("message_list", err)
	}
	defer rows.Close()

	out := make([]*model.Message, 0, limit)
	for rows.Next() {
		var (
			m              model.Message
			raw, createdAt string
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.OriginalMessage, &m.Tone, &raw,
			&m.SelectedSuggestion, &m.TokensUsed, &m.Cached, &createdAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if err := json.Unmarshal([]byte(raw), &m.Suggestions); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		m.CreatedAt = parseTime(createdAt)
		out = append(out, &m)
	}
	return out, mapErr("message_list", rows.Err())
}

func (r *MessageRepo) Delete(ctx context.Context, tx repository.Tx, userID, id string) error {
	ex, err := getExecutor(r.db, tx)
	if err != nil {
		return err
	}
	res, err := ex.ExecContext(ctx, `DELETE FROM messages WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return mapErr("message_delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
