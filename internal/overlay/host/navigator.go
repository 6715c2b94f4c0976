package host

import (
	"context"
	"fmt"

	"github.com/Faultbox/panoview/internal/overlay"
	"github.com/Faultbox/panoview/internal/viewer"
	"github.com/Faultbox/panoview/pkg/math"
)

// Looker turns a camera toward a world position.
type Looker interface {
	LookToward(p math.Vec3)
}

// Navigator moves the viewer camera toward positions and overlay anchors.
type Navigator struct {
	view     Looker
	overlays *Overlays
}

var _ overlay.SceneNavigator = (*Navigator)(nil)

// NewNavigator creates a navigator over view and the overlays it shows.
func NewNavigator(view Looker, overlays *Overlays) *Navigator {
	return &Navigator{view: view, overlays: overlays}
}

// MoveTo turns the camera toward pos.
func (n *Navigator) MoveTo(ctx context.Context, pos math.Vec3) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.view.LookToward(pos)
	return nil
}

// MoveToPin turns the camera toward the anchor of a shown pin.
func (n *Navigator) MoveToPin(ctx context.Context, pinID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ov, ok := n.overlays.Get(pinID)
	if !ok {
		return fmt.Errorf("%w: %q", overlay.ErrUnknownPin, pinID)
	}
	n.view.LookToward(ov.Anchor)
	return nil
}

// Local bundles the in-process platform pieces around one viewer.
type Local struct {
	Sandbox   *Sandbox
	Overlays  *Overlays
	Navigator *Navigator

	view *viewer.Viewer
}

// NewLocal creates the platform for v.
func NewLocal(v *viewer.Viewer) *Local {
	overlays := NewOverlays()
	return &Local{
		Sandbox:   NewSandbox(),
		Overlays:  overlays,
		Navigator: NewNavigator(v, overlays),
		view:      v,
	}
}

// Platform returns the capabilities for overlay.Setup. store may be nil when
// no model pins are used.
func (l *Local) Platform(store overlay.PinStore) overlay.Platform {
	return overlay.Platform{
		Store:     store,
		Sandbox:   l.Sandbox,
		Overlays:  l.Overlays,
		Navigator: l.Navigator,
		Camera:    l.view,
		Projector: l.view,
	}
}
