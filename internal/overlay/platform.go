package overlay

import (
	"context"

	"github.com/Faultbox/panoview/internal/viewer"
	"github.com/Faultbox/panoview/pkg/math"
)

// PinStore returns the pins of a model, in display order.
type PinStore interface {
	Pins(ctx context.Context, modelID string) ([]Pin, error)
}

// AttachmentSandbox renders untrusted attachment markup in isolation.
type AttachmentSandbox interface {
	Register(ctx context.Context, content string) (AttachmentHandle, error)
}

// AttachmentReleaser is implemented by sandboxes that hold rendered content
// until told to drop it. Handles that end up without an overlay, and the
// handles of updated or removed pins, are released through it.
type AttachmentReleaser interface {
	Release(h AttachmentHandle)
}

func releaseAttachment(s AttachmentSandbox, h AttachmentHandle) {
	if r, ok := s.(AttachmentReleaser); ok && h != "" {
		r.Release(h)
	}
}

// OverlayHost shows overlays, keyed by pin id.
type OverlayHost interface {
	AddOverlay(ctx context.Context, o Overlay) error
	UpdateOverlay(ctx context.Context, o Overlay) error
	RemoveOverlay(ctx context.Context, pinID string) error
}

// SceneNavigator turns the camera toward a position or a pin.
type SceneNavigator interface {
	MoveTo(ctx context.Context, pos math.Vec3) error
	MoveToPin(ctx context.Context, pinID string) error
}

// PoseSource reports the camera pose of the last rendered frame.
type PoseSource interface {
	Pose() (viewer.Pose, bool)
}

// Projector maps world positions to viewport pixels.
type Projector interface {
	Project(p math.Vec3, width, height int) (math.Vec2, bool)
}

// Platform bundles the content-platform capabilities. Sandbox and Overlays
// are required; the rest may be nil when the caller does not need them.
type Platform struct {
	Store     PinStore
	Sandbox   AttachmentSandbox
	Overlays  OverlayHost
	Navigator SceneNavigator
	Camera    PoseSource
	Projector Projector
}
