package core

import "fmt"

// registry is one keyed entity mapping. Iteration order is irrelevant;
// callers that need stable listings sort after collecting values.
//
// Registries are unexported on purpose: the Service is the only component
// allowed to mutate them, and cross-registry invariants are enforced there.
type registry[V any] struct {
	name  string
	items map[string]V
}

func newRegistry[V any](name string) *registry[V] {
	return &registry[V]{name: name, items: make(map[string]V)}
}

// insert adds a new entry, failing on id collision.
func (r *registry[V]) insert(id string, v V) error {
	if _, exists := r.items[id]; exists {
		return fmt.Errorf("%w: %s %s", ErrDuplicateID, r.name, id)
	}
	r.items[id] = v
	return nil
}

// lookup returns not-found as a boolean rather than an error; read paths
// that tolerate absence check ok themselves.
func (r *registry[V]) lookup(id string) (V, bool) {
	v, ok := r.items[id]
	return v, ok
}

// put replaces an existing entry (or inserts blindly during reload).
func (r *registry[V]) put(id string, v V) {
	r.items[id] = v
}

func (r *registry[V]) remove(id string) {
	delete(r.items, id)
}

func (r *registry[V]) size() int {
	return len(r.items)
}

func (r *registry[V]) values() []V {
	out := make([]V, 0, len(r.items))
	for _, v := range r.items {
		out = append(out, v)
	}
	return out
}
