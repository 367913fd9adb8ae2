package docstore

import (
	"context"
	"encoding/json"
	"sync"

	"safecommute/internal/common"
	"safecommute/internal/common/token"
)

// MemoryStore is a process-local Store used by tests and STORE_DRIVER=memory.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string]json.RawMessage
	children map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]json.RawMessage),
		children: make(map[string]map[string]struct{}),
	}
}

func (m *MemoryStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[path]
	if !ok {
		return nil, ErrNoDocument
	}
	out := make(json.RawMessage, len(doc))
	copy(out, doc)
	return out, nil
}

func (m *MemoryStore) Set(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return common.Errorf("MemoryStore.Set %s: %w", path, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(path, raw)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, path string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	merged, err := mergeDocument(m.docs[path], fields)
	if err != nil {
		return common.Errorf("MemoryStore.Update %s: %w", path, err)
	}
	m.put(path, merged)
	return nil
}

func (m *MemoryStore) Push(ctx context.Context, path string, value any) (string, error) {
	child := token.New()
	if err := m.Set(ctx, path+"/"+child, value); err != nil {
		return "", err
	}
	return child, nil
}

func (m *MemoryStore) List(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(m.children[path]))
	for child := range m.children[path] {
		if doc, ok := m.docs[path+"/"+child]; ok {
			cp := make(json.RawMessage, len(doc))
			copy(cp, doc)
			out[child] = cp
		}
	}
	return out, nil
}

// put assumes m.mu is held for writing.
func (m *MemoryStore) put(path string, raw json.RawMessage) {
	m.docs[path] = raw
	parent, child := splitPath(path)
	if parent == "" {
		return
	}
	if m.children[parent] == nil {
		m.children[parent] = make(map[string]struct{})
	}
	m.children[parent][child] = struct{}{}
}
