package model

import (
	"crypto/rand"
	"strings"
	"time"

	"ghostwriter/internal/domain"

	"github.com/oklog/ulid/v2"
)

// Message is a generated reply set the user chose to keep in their history.
type Message struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	OriginalMessage    string    `json:"originalMessage"`
	Tone               string    `json:"tone"`
	Suggestions        []string  `json:"suggestions"`
	SelectedSuggestion string    `json:"selectedSuggestion,omitempty"`
	TokensUsed         int       `json:"tokensUsed"`
	Cached             bool      `json:"cached"`
	CreatedAt          time.Time `json:"createdAt"`
}

// NewMessage validates input and assigns a time-ordered ULID.
func NewMessage(userID, original, tone string, suggestions []string, selected string, tokens int, cached bool) (*Message, error) {
	original = strings.TrimSpace(original)
	if userID == "" || original == "" || tone == "" {
		return nil, domain.ErrInvalidArgument
	}
	if tokens < 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	return &Message{
		ID:                 ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		UserID:             userID,
		OriginalMessage:    original,
		Tone:               tone,
		Suggestions:        suggestions,
		SelectedSuggestion: selected,
		TokensUsed:         tokens,
		Cached:             cached,
		CreatedAt:          now,
	}, nil
}

// Matches reports whether query (case-insensitive) appears in the original
// message or any suggestion, and tone matches when given.
func (m *Message) Matches(query, tone string) bool {
	if tone != "" && m.Tone != tone {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(m.OriginalMessage), q) {
		return true
	}
	for _, s := range m.Suggestions {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(m.SelectedSuggestion), q)
}
