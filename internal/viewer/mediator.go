package viewer

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/engine"
)

// Mediator forwards mesh changes to the active scene. It never owns meshes.
// Every operation is a silent no-op while no scene is attached.
type Mediator struct {
	mu    sync.RWMutex
	scene engine.Scene
	log   *zap.Logger
}

// NewMediator creates a mediator with no active scene.
func NewMediator(log *zap.Logger) *Mediator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mediator{log: log}
}

// SetScene attaches s as the active scene. nil detaches.
func (m *Mediator) SetScene(s engine.Scene) {
	m.mu.Lock()
	m.scene = s
	m.mu.Unlock()
}

// Scene returns the active scene, or nil.
func (m *Mediator) Scene() engine.Scene {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scene
}

// AddMesh inserts mesh into the active scene.
func (m *Mediator) AddMesh(mesh engine.Mesh) {
	s := m.active("add")
	if s == nil || mesh == nil {
		return
	}
	s.Add(mesh)
}

// ReplaceMesh removes old, then adds mesh.
//
// The two steps are not atomic: a frame rendered between them shows neither
// mesh. Adding first would instead risk a frame with both panoramas drawn
// over each other.
func (m *Mediator) ReplaceMesh(old, mesh engine.Mesh) {
	s := m.active("replace")
	if s == nil {
		return
	}
	if old != nil {
		s.Remove(old)
	}
	if mesh != nil {
		s.Add(mesh)
	}
}

// RemoveMesh removes mesh if present.
func (m *Mediator) RemoveMesh(mesh engine.Mesh) {
	s := m.active("remove")
	if s == nil || mesh == nil {
		return
	}
	s.Remove(mesh)
}

func (m *Mediator) active(op string) engine.Scene {
	s := m.Scene()
	if s == nil {
		m.log.Debug("no active scene, mesh operation skipped", zap.String("op", op))
	}
	return s
}
