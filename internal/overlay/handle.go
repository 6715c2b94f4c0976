package overlay

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/panoview/internal/logger"
	"github.com/Faultbox/panoview/pkg/math"
)

// Handle is the caller-facing side of an overlay setup. Its registry lives as
// long as the handle, so pins stay deduplicated across AddPins calls.
type Handle struct {
	platform Platform
	registry *Registry
	orch     *Orchestrator
	log      *zap.Logger

	pins    []Pin
	modelID string
}

// Setup validates the platform and returns a handle. pins and modelID are the
// defaults AddPins uses; either may be empty.
func Setup(p Platform, pins []Pin, modelID string, opts ...Option) (*Handle, error) {
	switch {
	case p.Sandbox == nil:
		return nil, fmt.Errorf("%w: no attachment sandbox", ErrIncompletePlatform)
	case p.Overlays == nil:
		return nil, fmt.Errorf("%w: no overlay host", ErrIncompletePlatform)
	case modelID != "" && p.Store == nil:
		return nil, fmt.Errorf("%w: model %q needs a pin store", ErrIncompletePlatform, modelID)
	}

	log := logger.Named("overlay")
	reg := NewRegistry()
	opts = append([]Option{WithLogger(log)}, opts...)

	return &Handle{
		platform: p,
		registry: reg,
		orch:     NewOrchestrator(p, reg, opts...),
		log:      log,
		pins:     append([]Pin(nil), pins...),
		modelID:  modelID,
	}, nil
}

// AddPins registers pins, or the pins given to Setup when none are passed,
// plus the stored pins of the setup model.
//
// Any failure fails the whole call unless the handle was set up with
// WithIsolatedFailures. Overlays added before a failure are not rolled back.
func (h *Handle) AddPins(ctx context.Context, pins ...Pin) error {
	if len(pins) == 0 {
		pins = h.pins
	}
	return h.orch.Register(ctx, pins, h.modelID)
}

// UpdatePin re-renders the attachment of a registered pin and updates its
// overlay. The previous attachment is released once the overlay shows the new
// one.
func (h *Handle) UpdatePin(ctx context.Context, p Pin) error {
	if !h.registry.Has(p.ID) {
		return fmt.Errorf("%w: %q", ErrUnknownPin, p.ID)
	}
	sandbox := h.platform.Sandbox
	handle, err := sandbox.Register(ctx, p.Attachment)
	if err != nil {
		return &PinError{PinID: p.ID, Op: "register attachment", Err: err}
	}
	if err := h.platform.Overlays.UpdateOverlay(ctx, overlayFor(p, handle)); err != nil {
		releaseAttachment(sandbox, handle)
		return &PinError{PinID: p.ID, Op: "update overlay", Err: err}
	}
	releaseAttachment(sandbox, h.registry.Bind(p.ID, handle))
	return nil
}

// RemovePin removes the overlay of a registered pin. The id can be added
// again afterwards.
func (h *Handle) RemovePin(ctx context.Context, id string) error {
	if !h.registry.Has(id) {
		return fmt.Errorf("%w: %q", ErrUnknownPin, id)
	}
	if err := h.platform.Overlays.RemoveOverlay(ctx, id); err != nil {
		return &PinError{PinID: id, Op: "remove overlay", Err: err}
	}
	releaseAttachment(h.platform.Sandbox, h.registry.Forget(id))
	return nil
}

// Registered returns the ids with an overlay, sorted.
func (h *Handle) Registered() []string {
	return h.registry.IDs()
}

// GetPosition returns the camera pose of the last rendered frame.
func (h *Handle) GetPosition(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if h.platform.Camera == nil {
		return Position{}, ErrNoPosition
	}
	pose, ok := h.platform.Camera.Pose()
	if !ok {
		return Position{}, ErrNoPosition
	}
	return Position{
		Position:    pose.Position,
		Target:      pose.Target,
		Lon:         pose.Lon,
		Lat:         pose.Lat,
		FieldOfView: pose.FieldOfView,
		Timestamp:   pose.Time,
	}, nil
}

// MoveTo turns the camera toward pos.
func (h *Handle) MoveTo(ctx context.Context, pos math.Vec3) error {
	if h.platform.Navigator == nil {
		return fmt.Errorf("move to %v: %w", pos, errors.ErrUnsupported)
	}
	return h.platform.Navigator.MoveTo(ctx, pos)
}

// MoveToPin turns the camera toward a registered pin.
func (h *Handle) MoveToPin(ctx context.Context, id string) error {
	if !h.registry.Has(id) {
		return fmt.Errorf("%w: %q", ErrUnknownPin, id)
	}
	if h.platform.Navigator == nil {
		return fmt.Errorf("move to pin %q: %w", id, errors.ErrUnsupported)
	}
	return h.platform.Navigator.MoveToPin(ctx, id)
}

// PositionToScreenCoords projects pos into a width x height viewport. ok is
// false when pos is behind the camera or nothing can project.
func (h *Handle) PositionToScreenCoords(pos math.Vec3, width, height int) (screen math.Vec2, ok bool) {
	if h.platform.Projector == nil || width <= 0 || height <= 0 {
		return math.Vec2{}, false
	}
	return h.platform.Projector.Project(pos, width, height)
}
