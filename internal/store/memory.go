package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// MemoryCollection is an in-memory Collection used in tests and local
// development. It mirrors the PostgresCollection semantics: insertion order
// is preserved, unique fields reject duplicates, and conditional mutations
// report the matched count.
type MemoryCollection struct {
	mu     sync.Mutex
	unique []string
	docs   []map[string]any
}

func NewMemoryCollection(uniqueFields ...string) *MemoryCollection {
	return &MemoryCollection{unique: uniqueFields}
}

func (c *MemoryCollection) Insert(_ context.Context, doc any) (string, error) {
	m, err := toDocument(doc)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, field := range c.unique {
		for _, existing := range c.docs {
			if existing[field] == m[field] {
				return "", ErrDuplicateKey
			}
		}
	}

	id := uuid.NewString()
	m["id"] = id
	c.docs = append(c.docs, m)
	return id, nil
}

func (c *MemoryCollection) FindOne(_ context.Context, f Filter) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range c.docs {
		if matches(doc, f) {
			return json.Marshal(doc)
		}
	}
	return nil, ErrNoDocuments
}

func (c *MemoryCollection) FindMany(_ context.Context, f Filter) ([]json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []json.RawMessage
	for _, doc := range c.docs {
		if !matches(doc, f) {
			continue
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func (c *MemoryCollection) UpdateConditional(_ context.Context, f Filter, p Patch) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var affected int64
	for _, doc := range c.docs {
		if !matches(doc, f) {
			continue
		}
		if err := applyPatch(doc, p); err != nil {
			return affected, err
		}
		affected++
	}
	return affected, nil
}

func (c *MemoryCollection) DeleteConditional(_ context.Context, f Filter) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var kept []map[string]any
	var affected int64
	for _, doc := range c.docs {
		if matches(doc, f) {
			affected++
			continue
		}
		kept = append(kept, doc)
	}
	c.docs = kept
	return affected, nil
}

func matches(doc map[string]any, f Filter) bool {
	if f.ID != "" && doc["id"] != f.ID {
		return false
	}
	for k, v := range f.Eq {
		if doc[k] != v {
			return false
		}
	}
	if f.Elem != nil {
		elems, _ := doc[f.Elem.Field].([]any)
		found := false
		for _, e := range elems {
			if m, ok := e.(map[string]any); ok && m[f.Elem.Key] == f.Elem.Value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func applyPatch(doc map[string]any, p Patch) error {
	if p.Set != nil {
		set, err := toDocument(p.Set)
		if err != nil {
			return err
		}
		for k, v := range set {
			doc[k] = v
		}
	}
	if p.Push != nil {
		value, err := toValue(p.Push.Value)
		if err != nil {
			return err
		}
		elems, _ := doc[p.Push.Field].([]any)
		doc[p.Push.Field] = append(elems, value)
	}
	if p.Pull != nil {
		elems, _ := doc[p.Pull.Field].([]any)
		kept := make([]any, 0, len(elems))
		for _, e := range elems {
			if m, ok := e.(map[string]any); ok && m[p.Pull.Key] == p.Pull.Value {
				continue
			}
			kept = append(kept, e)
		}
		doc[p.Pull.Field] = kept
	}
	return nil
}

// toDocument normalizes a value through JSON so stored documents have the
// same shape regardless of the Go type they came from.
func toDocument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func toValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
