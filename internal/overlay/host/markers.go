package host

import (
	"github.com/Faultbox/panoview/internal/overlay"
	"github.com/Faultbox/panoview/pkg/math"
)

// Marker is the drawable head of an overlay: the anchor moved along the stem,
// in the overlay color scaled by its opacity.
type Marker struct {
	Position math.Vec3
	Color    [4]float32
}

// Markers converts overlays to markers. Overlays with an unparseable color
// fall back to DefaultColor.
func Markers(list []overlay.Overlay) []Marker {
	fallback, _ := ParseColor(overlay.DefaultColor)

	markers := make([]Marker, 0, len(list))
	for _, o := range list {
		c, err := ParseColor(o.Color)
		if err != nil {
			c = fallback
		}
		c[3] *= math.Clamp(o.Opacity, 0, 1)

		markers = append(markers, Marker{
			Position: o.Anchor.Add(o.Stem),
			Color:    c,
		})
	}
	return markers
}
