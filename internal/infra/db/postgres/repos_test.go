//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
)

func seedUser(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := model.NewUser(email, "hash")
	if err != nil {
		t.Fatal(err)
	}
	if err := NewUserRepo(testPool).Create(context.Background(), nil, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestUserRepo_Integration(t *testing.T) {
	cleanup(t)
	repo := NewUserRepo(testPool)
	ctx := context.Background()
	u := seedUser(t, "ana@example.com")

	dup, _ := model.NewUser("ana@example.com", "other")
	if err := repo.Create(ctx, nil, dup); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("duplicate email: %v", err)
	}

	byEmail, err := repo.FindByEmail(ctx, nil, "ana@example.com")
	if err != nil || byEmail.ID != u.ID || byEmail.PasswordHash != "hash" {
		t.Fatalf("find by email = %+v, %v", byEmail, err)
	}
	if err := repo.AddUsage(ctx, nil, u.ID, 2, 300); err != nil {
		t.Fatal(err)
	}
	byID, err := repo.FindByID(ctx, nil, u.ID)
	if err != nil || byID.TotalMessages != 2 || byID.TotalTokensUsed != 300 || byID.SubscriptionTier != model.TierFree {
		t.Fatalf("find by id = %+v, %v", byID, err)
	}
	if _, err := repo.FindByEmail(ctx, nil, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing user: %v", err)
	}
}

func TestMessageRepo_Integration(t *testing.T) {
	cleanup(t)
	repo := NewMessageRepo(testPool)
	tm := NewTxManager(testPool)
	ctx := context.Background()
	u := seedUser(t, "ana@example.com")

	var ids []string
	for _, text := range []string{"first", "second", "third"} {
		m, err := model.NewMessage(u.ID, text, "casual", []string{"a", "b", "c"}, "a", 10, false)
		if err != nil {
			t.Fatal(err)
		}
		err = tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			if err := repo.Save(ctx, tx, m); err != nil {
				return err
			}
			return NewUserRepo(testPool).AddUsage(ctx, tx, u.ID, 1, m.TokensUsed)
		})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		ids = append(ids, m.ID)
		time.Sleep(2 * time.Millisecond)
	}

	page, err := repo.ListByUser(ctx, nil, u.ID, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].OriginalMessage != "third" || len(page[0].Suggestions) != 3 {
		t.Fatalf("page = %+v", page)
	}

	if err := repo.Delete(ctx, nil, "00000000-0000-0000-0000-000000000000", ids[0]); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign delete: %v", err)
	}
	if err := repo.Delete(ctx, nil, u.ID, ids[0]); err != nil {
		t.Fatal(err)
	}
	rest, _ := repo.ListByUser(ctx, nil, u.ID, 0, 10)
	if len(rest) != 2 {
		t.Fatalf("after delete: %d rows", len(rest))
	}
}

func TestTxManagerRollback_Integration(t *testing.T) {
	cleanup(t)
	repo := NewMessageRepo(testPool)
	ctx := context.Background()
	u := seedUser(t, "ana@example.com")

	m, _ := model.NewMessage(u.ID, "doomed", "casual", nil, "", 0, false)
	boom := errors.New("boom")
	err := NewTxManager(testPool).WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := repo.Save(ctx, tx, m); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
	if rows, _ := repo.ListByUser(ctx, nil, u.ID, 0, 10); len(rows) != 0 {
		t.Fatal("rolled back message is visible")
	}
}

func TestUsageRepo_Integration(t *testing.T) {
	cleanup(t)
	repo := NewUsageRepo(testPool)
	ctx := context.Background()
	u := seedUser(t, "ana@example.com")
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, tone := range []string{"casual", "casual", "professional"} {
		ev := model.UsageEvent{UserID: u.ID, Tone: tone, TokensUsed: 100, ResponseTimeMs: 500, At: day}
		if err := repo.Increment(ctx, nil, ev); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.Increment(ctx, nil, model.UsageEvent{UserID: u.ID, Tone: "casual", At: day.AddDate(0, 0, -10)}); err != nil {
		t.Fatal(err)
	}

	rows, err := repo.ListDaily(ctx, nil, u.ID, "2026-03-04")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %+v", rows)
	}
	d := rows[0]
	if d.Day != "2026-03-10" || d.TotalRequests != 3 || d.TotalTokensUsed != 300 || d.TotalResponseTimeMs != 1500 {
		t.Fatalf("day = %+v", d)
	}
	if d.ToneBreakdown["casual"] != 2 || d.ToneBreakdown["professional"] != 1 {
		t.Fatalf("tones = %v", d.ToneBreakdown)
	}
}
