package scene

import (
	"sync"
	"testing"
)

type fakeMesh struct{ name string }

func (m *fakeMesh) Name() string { return m.name }

func TestAddRemove(t *testing.T) {
	s := New()
	a := &fakeMesh{"a"}
	b := &fakeMesh{"b"}

	s.Add(a)
	s.Add(b)
	s.Add(a) // duplicate

	if s.Len() != 2 {
		t.Fatalf("expected 2 meshes, got %d", s.Len())
	}
	if !s.Contains(a) || !s.Contains(b) {
		t.Error("expected both meshes present")
	}

	s.Remove(a)
	if s.Contains(a) {
		t.Error("expected a removed")
	}
	if got := s.Meshes(); len(got) != 1 || got[0] != b {
		t.Errorf("expected [b], got %v", got)
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	s := New()
	a := &fakeMesh{"a"}
	s.Add(a)

	s.Remove(&fakeMesh{"a"}) // same name, different handle
	if !s.Contains(a) {
		t.Error("removing an unknown handle should not touch the scene")
	}
}

func TestAddNil(t *testing.T) {
	s := New()
	s.Add(nil)
	if s.Len() != 0 {
		t.Errorf("expected nil mesh to be ignored, got %d meshes", s.Len())
	}
}

func TestMeshesSnapshot(t *testing.T) {
	s := New()
	s.Add(&fakeMesh{"a"})

	snap := s.Meshes()
	s.Add(&fakeMesh{"b"})
	if len(snap) != 1 {
		t.Errorf("snapshot should not observe later adds, got %d", len(snap))
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m := &fakeMesh{"m"}
				s.Add(m)
				_ = s.Meshes()
				s.Remove(m)
			}
		}()
	}
	wg.Wait()

	if s.Len() != 0 {
		t.Errorf("expected empty scene, got %d", s.Len())
	}
}
