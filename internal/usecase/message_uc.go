// File: internal/usecase/message_uc.go
package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
	"ghostwriter/internal/infra/logging"
)

// Compile-time check
var _ MessageUseCase = (*messageUC)(nil)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
	// searchScanLimit bounds how much history a search decrypts.
	searchScanLimit = 500
)

type MessageUseCase interface {
	Save(ctx context.Context, userID string, in SaveMessageInput) (*model.Message, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*model.Message, error)
	Search(ctx context.Context, userID, query, tone string) ([]*model.Message, error)
	Delete(ctx context.Context, userID, messageID string) error
}

type SaveMessageInput struct {
	OriginalMessage    string   `json:"originalMessage"`
	Tone               string   `json:"tone"`
	Suggestions        []string `json:"suggestions"`
	SelectedSuggestion string   `json:"selectedSuggestion"`
	TokensUsed         int      `json:"tokensUsed"`
	Cached             bool     `json:"cached"`
}

// Cipher protects message text at rest. A nil Cipher stores plaintext.
type Cipher interface {
	Encrypt(plain string) (string, error)
	Decrypt(enc string) (string, error)
}

type messageUC struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	tm       repository.TransactionManager
	cipher   Cipher
	log      *zerolog.Logger
}

func NewMessageUseCase(messages repository.MessageRepository, users repository.UserRepository, tm repository.TransactionManager, cipher Cipher, logger *zerolog.Logger) *messageUC {
	l := logger.With().Str("component", "message_uc").Logger()
	return &messageUC{messages: messages, users: users, tm: tm, cipher: cipher, log: &l}
}

// Save stores the message and bumps the owner's totals atomically.
func (m *messageUC) Save(ctx context.Context, userID string, in SaveMessageInput) (*model.Message, error) {
	msg, err := model.NewMessage(userID, in.OriginalMessage, strings.ToLower(strings.TrimSpace(in.Tone)),
		in.Suggestions, in.SelectedSuggestion, in.TokensUsed, in.Cached)
	if err != nil {
		return nil, err
	}
	stored, err := m.seal(msg)
	if err != nil {
		return nil, err
	}

	err = m.tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := m.messages.Save(ctx, tx, stored); err != nil {
			return err
		}
		return m.users.AddUsage(ctx, tx, userID, 1, msg.TokensUsed)
	})
	if err != nil {
		return nil, err
	}
	logging.With(ctx, m.log).Debug().Str("message_id", msg.ID).Msg("message saved")
	return msg, nil
}

func (m *messageUC) List(ctx context.Context, userID string, limit, offset int) ([]*model.Message, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := m.messages.ListByUser(ctx, repository.NoTX, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return m.openAll(rows)
}

// Search matches case-insensitively over the decrypted text.
func (m *messageUC) Search(ctx context.Context, userID, query, tone string) ([]*model.Message, error) {
	query = strings.TrimSpace(query)
	tone = strings.ToLower(strings.TrimSpace(tone))
	if query == "" && tone == "" {
		return nil, domain.ErrInvalidArgument
	}
	rows, err := m.messages.ListByUser(ctx, repository.NoTX, userID, 0, searchScanLimit)
	if err != nil {
		return nil, err
	}
	all, err := m.openAll(rows)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Message, 0)
	for _, msg := range all {
		if msg.Matches(query, tone) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *messageUC) Delete(ctx context.Context, userID, messageID string) error {
	if messageID == "" {
		return domain.ErrInvalidArgument
	}
	return m.messages.Delete(ctx, repository.NoTX, userID, messageID)
}

func (m *messageUC) seal(msg *model.Message) (*model.Message, error) {
	if m.cipher == nil {
		return msg, nil
	}
	cp := *msg
	enc, err := m.cipher.Encrypt(msg.OriginalMessage)
	if err != nil {
		return nil, err
	}
	cp.OriginalMessage = enc
	return &cp, nil
}

func (m *messageUC) openAll(rows []*model.Message) ([]*model.Message, error) {
	if m.cipher == nil {
		return rows, nil
	}
	for _, r := range rows {
		plain, err := m.cipher.Decrypt(r.OriginalMessage)
		if err != nil {
			return nil, err
		}
		r.OriginalMessage = plain
	}
	return rows, nil
}
