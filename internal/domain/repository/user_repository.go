package repository

import (
	"context"
	"encoding/json"

	"safecommute/internal/common"
	"safecommute/internal/domain/model"
	"safecommute/internal/platform/docstore"
)

type UserRepository interface {
	Create(ctx context.Context, username string, user *model.User) error
	Find(ctx context.Context, username string) (*model.User, error)
	UpdateToken(ctx context.Context, username, token string) error
}

type docUserRepository struct {
	store docstore.Store
}

func NewDocUserRepository(store docstore.Store) UserRepository {
	return &docUserRepository{store: store}
}

func (r *docUserRepository) Create(ctx context.Context, username string, user *model.User) error {
	if err := r.store.Set(ctx, userPath(username), user); err != nil {
		return common.Errorf("docUserRepository.Create: %w", err)
	}
	return nil
}

func (r *docUserRepository) Find(ctx context.Context, username string) (*model.User, error) {
	raw, err := r.store.Get(ctx, userPath(username))
	if err != nil {
		return nil, common.Errorf("docUserRepository.Find: %w", err)
	}
	user := &model.User{}
	if err := json.Unmarshal(raw, user); err != nil {
		return nil, common.Errorf("docUserRepository.Find: %w", err)
	}
	return user, nil
}

func (r *docUserRepository) UpdateToken(ctx context.Context, username, token string) error {
	if err := r.store.Update(ctx, userPath(username), map[string]any{"token": token}); err != nil {
		return common.Errorf("docUserRepository.UpdateToken: %w", err)
	}
	return nil
}

func userPath(username string) string { return "users/" + username }
