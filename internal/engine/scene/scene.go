// Package scene provides the scene-graph container the renderer draws from.
package scene

import (
	"sync"

	"github.com/Faultbox/panoview/internal/engine"
)

// Scene is an ordered set of meshes. Meshes are drawn in insertion order.
// Thread-safe for concurrent access.
type Scene struct {
	mu     sync.RWMutex
	meshes []engine.Mesh
}

var _ engine.Scene = (*Scene)(nil)

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add appends m. Adding a mesh that is already present is a no-op.
func (s *Scene) Add(m engine.Mesh) {
	if m == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(m) >= 0 {
		return
	}
	s.meshes = append(s.meshes, m)
}

// Remove drops m if present.
func (s *Scene) Remove(m engine.Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(m)
	if i < 0 {
		return
	}
	s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
}

// Contains reports whether m is in the scene.
func (s *Scene) Contains(m engine.Mesh) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(m) >= 0
}

// Meshes returns a snapshot of the scene contents.
func (s *Scene) Meshes() []engine.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]engine.Mesh, len(s.meshes))
	copy(out, s.meshes)
	return out
}

// Len returns the number of meshes.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshes)
}

// indexOf compares handles by identity. Caller must hold the lock.
func (s *Scene) indexOf(m engine.Mesh) int {
	for i, existing := range s.meshes {
		if existing == m {
			return i
		}
	}
	return -1
}
