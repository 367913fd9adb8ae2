package repository

import (
	"context"
	"encoding/json"
	"strings"

	"safecommute/internal/common"
	"safecommute/internal/platform/docstore"
)

// emailDotSentinel stands in for "." in email-index keys; dots are unsafe
// key characters in store paths.
const emailDotSentinel = "@@@"

func NormalizeEmail(email string) string {
	return strings.ReplaceAll(email, ".", emailDotSentinel)
}

func DenormalizeEmail(email string) string {
	return strings.ReplaceAll(email, emailDotSentinel, ".")
}

// EmailIndexRepository is the secondary mapping normalized-email -> username,
// used only for uniqueness checks at registration.
type EmailIndexRepository interface {
	Reserve(ctx context.Context, email, username string) error
	Lookup(ctx context.Context, email string) (string, error)
}

type docEmailIndexRepository struct {
	store docstore.Store
}

func NewDocEmailIndexRepository(store docstore.Store) EmailIndexRepository {
	return &docEmailIndexRepository{store: store}
}

func (r *docEmailIndexRepository) Reserve(ctx context.Context, email, username string) error {
	err := r.store.Set(ctx, emailPath(email), map[string]any{"user": username})
	if err != nil {
		return common.Errorf("docEmailIndexRepository.Reserve: %w", err)
	}
	return nil
}

func (r *docEmailIndexRepository) Lookup(ctx context.Context, email string) (string, error) {
	raw, err := r.store.Get(ctx, emailPath(email))
	if err != nil {
		return "", common.Errorf("docEmailIndexRepository.Lookup: %w", err)
	}
	var entry struct {
		User string `json:"user"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return "", common.Errorf("docEmailIndexRepository.Lookup: %w", err)
	}
	return entry.User, nil
}

func emailPath(email string) string { return "emails/" + NormalizeEmail(email) }
