package model

import (
	"strings"
	"time"

	"ghostwriter/internal/domain"

	"github.com/google/uuid"
)

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
	TierPro     SubscriptionTier = "pro"
)

// User is an account of the mobile app. PasswordHash is never serialized.
type User struct {
	ID               string           `json:"uid"`
	Email            string           `json:"email"`
	DisplayName      string           `json:"displayName"`
	PasswordHash     string           `json:"-"`
	TotalMessages    int              `json:"totalMessages"`
	TotalTokensUsed  int              `json:"totalTokensUsed"`
	SubscriptionTier SubscriptionTier `json:"subscriptionTier"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func NewUser(email, passwordHash string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	display := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		display = email[:i]
	}
	now := time.Now().UTC()
	return &User{
		ID:               uuid.NewString(),
		Email:            email,
		DisplayName:      display,
		PasswordHash:     passwordHash,
		SubscriptionTier: TierFree,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
