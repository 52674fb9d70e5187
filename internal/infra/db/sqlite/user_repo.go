package sqlite

import (
	"context"
	"database/sql"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	db *sql.DB
}

const userColumns = `id, email, display_name, password_hash, total_messages, total_tokens_used, subscription_tier, created_at, updated_at`

func (r *UserRepo) Create(ctx context.Context, tx repository.Tx, u *model.User) error {
	ex, err := getExecutor(r.db, tx)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, u.TotalMessages, u.TotalTokensUsed,
		string(u.SubscriptionTier), formatTime(u.CreatedAt), formatTime(u.UpdatedAt))
	return mapErr("user_create", err)
}

func (r *UserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.findOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return r.findOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepo) findOne(ctx context.Context, tx repository.Tx, q, arg string) (*model.User, error) {
	ex, err := getExecutor(r.db, tx)
	if err != nil {
		return nil, err
	}
	var (
		u                  model.User
		tier, created, upd string
	)
	err = ex.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash,
		&u.TotalMessages, &u.TotalTokensUsed, &tier, &created, &upd)
	if err != nil {
		return nil, mapErr("user_find", err)
	}
	u.SubscriptionTier = model.SubscriptionTier(tier)
	u.CreatedAt, u.UpdatedAt = parseTime(created), parseTime(upd)
	return &u, nil
}

func (r *UserRepo) AddUsage(ctx context.Context, tx repository.Tx, id string, messages, tokens int) error {
	ex, err := getExecutor(r.db, tx)
	if err != nil {
		return err
	}
	res, err := ex.ExecContext(ctx, `
UPDATE users
   SET total_messages = total_messages + ?,
       total_tokens_used = total_tokens_used + ?,
       updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
 WHERE id = ?`, messages, tokens, id)
	if err != nil {
		return mapErr("user_add_usage", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
