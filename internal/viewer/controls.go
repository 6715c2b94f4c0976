package viewer

import (
	"github.com/Faultbox/panoview/internal/engine/camera"
	"github.com/Faultbox/panoview/internal/engine/input"
)

// DefaultDragSensitivity is degrees of rotation per dragged pixel.
const DefaultDragSensitivity = 0.2

// State is the interaction state of the controls.
type State int

const (
	StateIdle State = iota
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	}
	return "unknown"
}

// Effect tells the caller which engine state an event invalidated.
type Effect uint8

const (
	EffectNone       Effect = 0
	EffectProjection Effect = 1 << iota // Field of view changed
	EffectResize                        // Viewport size changed
)

// Has reports whether e includes f.
func (e Effect) Has(f Effect) bool {
	return e&f != 0
}

// DragSession is the anchor of an active drag. It exists only while the
// primary pointer is down.
type DragSession struct {
	PointerID            int
	OriginX, OriginY     float32
	OriginLon, OriginLat float32
}

// Controls is the drag/zoom state machine. It reads and writes the targets
// and field of view of an Orientation; damping happens in the frame loop.
type Controls struct {
	SensitivityX    float32
	SensitivityY    float32
	ZoomSensitivity float32

	drag *DragSession
}

// NewControls creates controls with default sensitivities.
func NewControls() *Controls {
	return &Controls{
		SensitivityX:    DefaultDragSensitivity,
		SensitivityY:    DefaultDragSensitivity,
		ZoomSensitivity: camera.DefaultZoomSensitivity,
	}
}

// State returns the current interaction state.
func (c *Controls) State() State {
	if c.drag != nil {
		return StateDragging
	}
	return StateIdle
}

// Drag returns a copy of the active drag session, or nil when idle.
func (c *Controls) Drag() *DragSession {
	if c.drag == nil {
		return nil
	}
	d := *c.drag
	return &d
}

// Handle applies one input event to o and returns what it invalidated.
func (c *Controls) Handle(o *camera.Orientation, e input.Event) Effect {
	switch e.Type {
	case input.EventPointerDown:
		c.pointerDown(o, e)
	case input.EventPointerMove:
		c.pointerMove(o, e)
	case input.EventPointerUp:
		c.pointerUp(e)
	case input.EventWheel:
		fov := camera.ApplyZoom(o.FieldOfView, e.DeltaY, c.ZoomSensitivity)
		if fov != o.FieldOfView {
			o.FieldOfView = fov
			return EffectProjection
		}
	case input.EventResize:
		return EffectResize
	}
	return EffectNone
}

func (c *Controls) pointerDown(o *camera.Orientation, e input.Event) {
	if !e.Primary || c.drag != nil {
		return
	}
	c.drag = &DragSession{
		PointerID: e.PointerID,
		OriginX:   e.X,
		OriginY:   e.Y,
		OriginLon: o.Lon,
		OriginLat: o.Lat,
	}
}

func (c *Controls) pointerMove(o *camera.Orientation, e input.Event) {
	d := c.drag
	if d == nil || !e.Primary || e.PointerID != d.PointerID {
		return
	}
	o.TargetLon = (d.OriginX-e.X)*c.SensitivityX + d.OriginLon
	o.TargetLat = (e.Y-d.OriginY)*c.SensitivityY + d.OriginLat
}

func (c *Controls) pointerUp(e input.Event) {
	if c.drag == nil || !e.Primary || e.PointerID != c.drag.PointerID {
		return
	}
	c.drag = nil
}
