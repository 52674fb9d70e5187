package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const (
	userColumns = `id, email, display_name, password_hash, total_messages, total_tokens_used,
       subscription_tier, created_at, updated_at`
	selectUserColumns = `id::text, email, display_name, password_hash, total_messages, total_tokens_used,
       subscription_tier, created_at, updated_at`
)

func (r *UserRepo) Create(ctx context.Context, tx repository.Tx, u *model.User) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (` + userColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	_, err = ex.Exec(ctx, q, u.ID, u.Email, u.DisplayName, u.PasswordHash, u.TotalMessages,
		u.TotalTokensUsed, string(u.SubscriptionTier), u.CreatedAt, u.UpdatedAt)
	return mapErr("user_create", err)
}

func (r *UserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.findOne(ctx, tx, `SELECT `+selectUserColumns+` FROM users WHERE id::text=$1;`, id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return r.findOne(ctx, tx, `SELECT `+selectUserColumns+` FROM users WHERE email=$1;`, email)
}

func (r *UserRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg string) (*model.User, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var (
		u    model.User
		tier string
	)
	err = ex.QueryRow(ctx, q, arg).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash,
		&u.TotalMessages, &u.TotalTokensUsed, &tier, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr("user_find", err)
	}
	u.SubscriptionTier = model.SubscriptionTier(tier)
	return &u, nil
}

func (r *UserRepo) AddUsage(ctx context.Context, tx repository.Tx, id string, messages, tokens int) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
UPDATE users
   SET total_messages = total_messages + $2,
       total_tokens_used = total_tokens_used + $3,
       updated_at = now()
 WHERE id::text = $1;`
	tag, err := ex.Exec(ctx, q, id, messages, tokens)
	if err != nil {
		return mapErr("user_add_usage", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
