package overlay

import (
	"sort"
	"sync"
)

// Registry records which pin ids have an overlay and the attachment each
// overlay shows. Claim is an atomic check-and-set, so at most one caller wins
// each id.
type Registry struct {
	mu  sync.Mutex
	ids map[string]AttachmentHandle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]AttachmentHandle)}
}

// Claim marks id registered. It returns false if id was already registered.
func (r *Registry) Claim(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[id]; ok {
		return false
	}
	r.ids[id] = ""
	return true
}

// Bind records the attachment shown for a claimed id and returns the one it
// replaces. Unclaimed ids are ignored.
func (r *Registry) Bind(id string, h AttachmentHandle) (old AttachmentHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.ids[id]
	if ok {
		r.ids[id] = h
	}
	return old
}

// Forget releases id so it can be claimed again. It returns the attachment
// that was bound to id.
func (r *Registry) Forget(id string) AttachmentHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.ids[id]
	delete(r.ids, id)
	return h
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok
}

// Len returns the number of registered ids.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

// IDs returns the registered ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.ids))
	for id := range r.ids {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	sort.Strings(ids)
	return ids
}
