// Package docstore provides the mapping-based document store the services
// persist through. Documents live at slash-separated paths
// ("users/<username>", "incidents/<id>"); a collection is the parent path and
// its direct children are the mapping entries.
package docstore

import (
	"context"
	"encoding/json"
	"strings"

	"safecommute/internal/common"
)

// ErrNoDocument is returned by Get when nothing is stored at the path.
var ErrNoDocument = common.Errorf("document does not exist: %w", common.ErrNotFound)

type Store interface {
	// Get returns the current value at path, or ErrNoDocument.
	Get(ctx context.Context, path string) (json.RawMessage, error)

	// Set fully overwrites the value at path.
	Set(ctx context.Context, path string, value any) error

	// Update merges the given fields into the object at path, creating the
	// document when absent. The merge is read-modify-write: concurrent
	// updates to the same path are last-write-wins.
	Update(ctx context.Context, path string, fields map[string]any) error

	// Push appends value under a generated child key and returns that key.
	Push(ctx context.Context, path string, value any) (string, error)

	// List returns every direct child of the collection at path, keyed by
	// child key. An empty collection yields an empty map, not an error.
	List(ctx context.Context, path string) (map[string]json.RawMessage, error)
}

func splitPath(path string) (parent, child string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

func mergeDocument(existing json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	doc := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &doc); err != nil {
			return nil, common.Errorf("docstore: cannot merge into non-object document: %w", err)
		}
	}
	for k, v := range fields {
		doc[k] = v
	}
	return json.Marshal(doc)
}
