package overlay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Faultbox/panoview/internal/viewer"
	"github.com/Faultbox/panoview/pkg/math"
)

var errBoom = errors.New("boom")

type fakeStore struct {
	pins  map[string][]Pin
	err   error
	calls atomic.Int32
}

func (s *fakeStore) Pins(ctx context.Context, modelID string) ([]Pin, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	pins, ok := s.pins[modelID]
	if !ok {
		return nil, fmt.Errorf("model %q not found", modelID)
	}
	return pins, nil
}

// fakeSandbox returns "h:<content>" handles. Content listed in delays is held
// back so results arrive out of order; content in fail errors out; block
// waits for cancellation.
type fakeSandbox struct {
	delays map[string]time.Duration
	fail   map[string]bool
	block  map[string]bool

	mu       sync.Mutex
	requests []string
	live     map[AttachmentHandle]int
}

func (s *fakeSandbox) Register(ctx context.Context, content string) (AttachmentHandle, error) {
	s.mu.Lock()
	s.requests = append(s.requests, content)
	s.mu.Unlock()

	if s.block[content] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if d := s.delays[content]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.fail[content] {
		return "", errBoom
	}

	h := AttachmentHandle("h:" + content)
	s.mu.Lock()
	if s.live == nil {
		s.live = make(map[AttachmentHandle]int)
	}
	s.live[h]++
	s.mu.Unlock()
	return h, nil
}

func (s *fakeSandbox) Release(h AttachmentHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live[h]--; s.live[h] <= 0 {
		delete(s.live, h)
	}
}

// held returns the handles registered and not yet released.
func (s *fakeSandbox) held() map[AttachmentHandle]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[AttachmentHandle]int, len(s.live))
	for h, n := range s.live {
		out[h] = n
	}
	return out
}

func (s *fakeSandbox) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

type fakeOverlays struct {
	fail map[string]bool

	mu      sync.Mutex
	added   []Overlay
	updated []Overlay
	removed []string
}

func (h *fakeOverlays) AddOverlay(ctx context.Context, o Overlay) error {
	if h.fail[o.PinID] {
		return errBoom
	}
	h.mu.Lock()
	h.added = append(h.added, o)
	h.mu.Unlock()
	return nil
}

func (h *fakeOverlays) UpdateOverlay(ctx context.Context, o Overlay) error {
	h.mu.Lock()
	h.updated = append(h.updated, o)
	h.mu.Unlock()
	return nil
}

func (h *fakeOverlays) RemoveOverlay(ctx context.Context, pinID string) error {
	h.mu.Lock()
	h.removed = append(h.removed, pinID)
	h.mu.Unlock()
	return nil
}

func (h *fakeOverlays) addsFor(id string) []Overlay {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Overlay
	for _, o := range h.added {
		if o.PinID == id {
			out = append(out, o)
		}
	}
	return out
}

func (h *fakeOverlays) ids() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, len(h.added))
	for i, o := range h.added {
		ids[i] = o.PinID
	}
	return ids
}

type fakeNavigator struct {
	positions []math.Vec3
	pins      []string
}

func (n *fakeNavigator) MoveTo(ctx context.Context, pos math.Vec3) error {
	n.positions = append(n.positions, pos)
	return nil
}

func (n *fakeNavigator) MoveToPin(ctx context.Context, id string) error {
	n.pins = append(n.pins, id)
	return nil
}

type fakeCamera struct {
	pose viewer.Pose
	ok   bool
}

func (c *fakeCamera) Pose() (viewer.Pose, bool) { return c.pose, c.ok }

func (c *fakeCamera) Project(p math.Vec3, width, height int) (math.Vec2, bool) {
	if p.X < 0 {
		return math.Vec2{}, false
	}
	return math.Vec2{X: float32(width) / 2, Y: float32(height) / 2}, true
}

func pin(id, content string) Pin {
	return Pin{
		ID:         id,
		Anchor:     math.Vec3{X: 100, Y: 10, Z: 5},
		Stem:       math.Vec3{Y: 20},
		Opacity:    1,
		Attachment: content,
	}
}

type fixture struct {
	store    *fakeStore
	sandbox  *fakeSandbox
	overlays *fakeOverlays
	nav      *fakeNavigator
	camera   *fakeCamera
}

func newFixture() *fixture {
	return &fixture{
		store:    &fakeStore{pins: map[string][]Pin{}},
		sandbox:  &fakeSandbox{},
		overlays: &fakeOverlays{},
		nav:      &fakeNavigator{},
		camera:   &fakeCamera{},
	}
}

func (f *fixture) platform() Platform {
	return Platform{
		Store:     f.store,
		Sandbox:   f.sandbox,
		Overlays:  f.overlays,
		Navigator: f.nav,
		Camera:    f.camera,
		Projector: f.camera,
	}
}
