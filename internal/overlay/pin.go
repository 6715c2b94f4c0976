// Package overlay registers pins as overlays on a panorama and exposes the
// handle callers use to add pins, query the camera and navigate.
package overlay

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/panoview/pkg/math"
)

const (
	// DefaultColor is used for pins without a color.
	DefaultColor   = "#000"
	// DefaultOpacity is used for decoded pins without an opacity.
	DefaultOpacity = 1
)

var (
	// ErrNoPinSource is returned when neither pins nor a model id are given.
	ErrNoPinSource = errors.New("overlay: no pins and no model id")
	// ErrNoPosition is returned before the camera has rendered a frame.
	ErrNoPosition = errors.New("overlay: camera position not computed yet")
	// ErrUnknownPin is returned for navigation to a pin that is not registered.
	ErrUnknownPin = errors.New("overlay: unknown pin")
	// ErrIncompletePlatform is returned by Setup when a required capability
	// is missing.
	ErrIncompletePlatform = errors.New("overlay: incomplete platform")
)

// Pin is a point of interest anchored on the panorama sphere. ID is the
// deduplication key.
type Pin struct {
	ID          string    `yaml:"id"`
	Anchor      math.Vec3 `yaml:"anchor"`
	Stem        math.Vec3 `yaml:"stem"`
	Opacity     float32   `yaml:"opacity"`
	StemVisible bool      `yaml:"stem_visible"`
	Color       string    `yaml:"color,omitempty"`
	IconID      string    `yaml:"icon_id,omitempty"`
	Attachment  string    `yaml:"attachment"`
}

// UnmarshalYAML decodes a pin, leaving Opacity at DefaultOpacity when the
// document omits it.
func (p *Pin) UnmarshalYAML(value *yaml.Node) error {
	type plain Pin
	decoded := plain{Opacity: DefaultOpacity}
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*p = Pin(decoded)
	return nil
}

// AttachmentHandle is the opaque reference a sandbox returns for rendered
// attachment content.
type AttachmentHandle string

// Overlay is the add/update request sent to the overlay host.
type Overlay struct {
	PinID       string
	Anchor      math.Vec3
	Stem        math.Vec3
	Attachment  AttachmentHandle
	Opacity     float32
	StemVisible bool
	Color       string
	IconID      string // Empty means no icon
}

func overlayFor(p Pin, h AttachmentHandle) Overlay {
	color := p.Color
	if color == "" {
		color = DefaultColor
	}
	return Overlay{
		PinID:       p.ID,
		Anchor:      p.Anchor,
		Stem:        p.Stem,
		Attachment:  h,
		Opacity:     p.Opacity,
		StemVisible: p.StemVisible,
		Color:       color,
		IconID:      p.IconID,
	}
}

// Position is the camera pose reported by Handle.GetPosition.
type Position struct {
	Position    math.Vec3 // Camera position
	Target      math.Vec3 // Point on the sphere the camera faces
	Lon, Lat    float32
	FieldOfView float32
	Timestamp   time.Time
}

// PinError ties a registration failure to its pin.
type PinError struct {
	PinID string
	Op    string
	Err   error
}

func (e *PinError) Error() string {
	return fmt.Sprintf("pin %q: %s: %v", e.PinID, e.Op, e.Err)
}

func (e *PinError) Unwrap() error {
	return e.Err
}
