package repository

import (
	"context"
	"encoding/json"

	"safecommute/internal/common"
	"safecommute/internal/platform/docstore"
)

// VerificationRepository maps a full marked verification token to the
// username awaiting verification. Entries are single-use: Consume nulls the
// username rather than deleting the document, after which Find reports the
// token as unknown.
type VerificationRepository interface {
	Create(ctx context.Context, token, username string) error
	Find(ctx context.Context, token string) (string, error)
	Consume(ctx context.Context, token string) error
}

type docVerificationRepository struct {
	store docstore.Store
}

func NewDocVerificationRepository(store docstore.Store) VerificationRepository {
	return &docVerificationRepository{store: store}
}

func (r *docVerificationRepository) Create(ctx context.Context, token, username string) error {
	err := r.store.Set(ctx, verificationPath(token), map[string]any{"user": username})
	if err != nil {
		return common.Errorf("docVerificationRepository.Create: %w", err)
	}
	return nil
}

func (r *docVerificationRepository) Find(ctx context.Context, token string) (string, error) {
	raw, err := r.store.Get(ctx, verificationPath(token))
	if err != nil {
		return "", common.Errorf("docVerificationRepository.Find: %w", err)
	}
	var entry struct {
		User *string `json:"user"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return "", common.Errorf("docVerificationRepository.Find: %w", err)
	}
	if entry.User == nil || *entry.User == "" {
		// Consumed entry: behaves exactly like an unknown token.
		return "", common.Errorf("docVerificationRepository.Find: consumed entry: %w", common.ErrNotFound)
	}
	return *entry.User, nil
}

func (r *docVerificationRepository) Consume(ctx context.Context, token string) error {
	err := r.store.Set(ctx, verificationPath(token), map[string]any{"user": nil})
	if err != nil {
		return common.Errorf("docVerificationRepository.Consume: %w", err)
	}
	return nil
}

func verificationPath(token string) string { return "vlist/" + token }
