package host

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/logger"
	"github.com/Faultbox/panoview/internal/overlay"
)

var (
	// ErrOverlayExists is returned when adding a pin id twice.
	ErrOverlayExists = errors.New("host: overlay already exists")
	// ErrNoOverlay is returned when updating or removing an unknown pin id.
	ErrNoOverlay = errors.New("host: no such overlay")
)

// Overlays is the list of overlays shown over the panorama, in insertion
// order. Listeners get a fresh snapshot after every change.
type Overlays struct {
	mu        sync.Mutex
	items     map[string]overlay.Overlay
	order     []string
	listeners []func([]overlay.Overlay)
	log       *zap.Logger
}

var _ overlay.OverlayHost = (*Overlays)(nil)

// NewOverlays creates an empty overlay list.
func NewOverlays() *Overlays {
	return &Overlays{
		items: make(map[string]overlay.Overlay),
		log:   logger.Named("overlays"),
	}
}

// OnChange registers fn to receive the overlay list after each change. fn
// runs on the goroutine that made the change.
func (o *Overlays) OnChange(fn func([]overlay.Overlay)) {
	o.mu.Lock()
	o.listeners = append(o.listeners, fn)
	o.mu.Unlock()
}

// AddOverlay shows ov.
func (o *Overlays) AddOverlay(ctx context.Context, ov overlay.Overlay) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := ParseColor(ov.Color); err != nil {
		return err
	}

	o.mu.Lock()
	if _, ok := o.items[ov.PinID]; ok {
		o.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrOverlayExists, ov.PinID)
	}
	o.items[ov.PinID] = ov
	o.order = append(o.order, ov.PinID)
	snapshot, listeners := o.snapshotLocked()
	o.mu.Unlock()

	o.log.Debug("overlay added", zap.String("pin", ov.PinID), zap.String("color", ov.Color))
	notify(listeners, snapshot)
	return nil
}

// UpdateOverlay replaces the overlay for ov.PinID.
func (o *Overlays) UpdateOverlay(ctx context.Context, ov overlay.Overlay) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := ParseColor(ov.Color); err != nil {
		return err
	}

	o.mu.Lock()
	if _, ok := o.items[ov.PinID]; !ok {
		o.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNoOverlay, ov.PinID)
	}
	o.items[ov.PinID] = ov
	snapshot, listeners := o.snapshotLocked()
	o.mu.Unlock()

	notify(listeners, snapshot)
	return nil
}

// RemoveOverlay hides the overlay for pinID.
func (o *Overlays) RemoveOverlay(ctx context.Context, pinID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.Lock()
	if _, ok := o.items[pinID]; !ok {
		o.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNoOverlay, pinID)
	}
	delete(o.items, pinID)
	for i, id := range o.order {
		if id == pinID {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	snapshot, listeners := o.snapshotLocked()
	o.mu.Unlock()

	o.log.Debug("overlay removed", zap.String("pin", pinID))
	notify(listeners, snapshot)
	return nil
}

// Get returns the overlay for pinID.
func (o *Overlays) Get(pinID string) (overlay.Overlay, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ov, ok := o.items[pinID]
	return ov, ok
}

// List returns the overlays in insertion order.
func (o *Overlays) List() []overlay.Overlay {
	o.mu.Lock()
	defer o.mu.Unlock()
	list, _ := o.snapshotLocked()
	return list
}

func (o *Overlays) snapshotLocked() ([]overlay.Overlay, []func([]overlay.Overlay)) {
	list := make([]overlay.Overlay, len(o.order))
	for i, id := range o.order {
		list[i] = o.items[id]
	}
	return list, slices.Clone(o.listeners)
}

func notify(listeners []func([]overlay.Overlay), list []overlay.Overlay) {
	for _, fn := range listeners {
		fn(list)
	}
}
