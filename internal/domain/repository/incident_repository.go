package repository

import (
	"context"
	"encoding/json"

	"safecommute/internal/common"
	"safecommute/internal/domain/model"
	"safecommute/internal/platform/docstore"
)

type IncidentRepository interface {
	Create(ctx context.Context, id string, incident *model.Incident) error
	Find(ctx context.Context, id string) (*model.Incident, error)
	All(ctx context.Context) (map[string]*model.Incident, error)

	// ApplyTransition writes status, updatedBy and updatedAt in a single
	// merge. There is no compare-and-swap: two concurrent transitions on the
	// same incident are last-write-wins.
	ApplyTransition(ctx context.Context, id, status, updatedBy, updatedAt string) error
}

type docIncidentRepository struct {
	store docstore.Store
}

func NewDocIncidentRepository(store docstore.Store) IncidentRepository {
	return &docIncidentRepository{store: store}
}

func (r *docIncidentRepository) Create(ctx context.Context, id string, incident *model.Incident) error {
	if err := r.store.Set(ctx, incidentPath(id), incident); err != nil {
		return common.Errorf("docIncidentRepository.Create: %w", err)
	}
	return nil
}

func (r *docIncidentRepository) Find(ctx context.Context, id string) (*model.Incident, error) {
	raw, err := r.store.Get(ctx, incidentPath(id))
	if err != nil {
		return nil, common.Errorf("docIncidentRepository.Find: %w", err)
	}
	incident := &model.Incident{}
	if err := json.Unmarshal(raw, incident); err != nil {
		return nil, common.Errorf("docIncidentRepository.Find: %w", err)
	}
	return incident, nil
}

func (r *docIncidentRepository) All(ctx context.Context) (map[string]*model.Incident, error) {
	docs, err := r.store.List(ctx, "incidents")
	if err != nil {
		return nil, common.Errorf("docIncidentRepository.All: %w", err)
	}
	out := make(map[string]*model.Incident, len(docs))
	for id, raw := range docs {
		incident := &model.Incident{}
		if err := json.Unmarshal(raw, incident); err != nil {
			return nil, common.Errorf("docIncidentRepository.All %s: %w", id, err)
		}
		out[id] = incident
	}
	return out, nil
}

func (r *docIncidentRepository) ApplyTransition(ctx context.Context, id, status, updatedBy, updatedAt string) error {
	err := r.store.Update(ctx, incidentPath(id), map[string]any{
		"status":    status,
		"updatedBy": updatedBy,
		"updatedAt": updatedAt,
	})
	if err != nil {
		return common.Errorf("docIncidentRepository.ApplyTransition: %w", err)
	}
	return nil
}

func incidentPath(id string) string { return "incidents/" + id }
