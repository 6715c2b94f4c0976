// Package camera provides the spherical orientation model used to look around
// a panorama, and a perspective camera that renders it.
package camera

import (
	gomath "math"

	"github.com/Faultbox/panoview/pkg/math"
)

// Sphere and orientation limits.
const (
	SphereRadius = 500.0

	MinLatitude = -85.0
	MaxLatitude = 85.0

	MinFieldOfView     = 10.0
	MaxFieldOfView     = 75.0
	DefaultFieldOfView = 75.0

	DefaultDamping         = 0.1
	DefaultZoomSensitivity = 0.05
)

// Orientation is the damped spherical state of a viewer camera.
//
// Lon/Lat are what is displayed, TargetLon/TargetLat are where input wants the
// camera to go. Step moves the former toward the latter.
type Orientation struct {
	Lon, Lat             float32 // Degrees
	TargetLon, TargetLat float32 // Degrees, may leave the latitude range while dragging
	Phi, Theta           float32 // Radians, derived in Step
	FieldOfView          float32 // Degrees, [MinFieldOfView, MaxFieldOfView]
}

// NewOrientation creates an orientation looking at the horizon along +X.
func NewOrientation() *Orientation {
	o := &Orientation{FieldOfView: DefaultFieldOfView}
	o.updateAngles()
	return o
}

// Step applies one frame of damping with factor k, clamps latitude and
// recomputes phi/theta.
//
// Damping is exponential smoothing: the displayed values approach the targets
// geometrically and never overshoot them.
func (o *Orientation) Step(k float32) {
	o.Lon = math.Lerp(o.Lon, o.TargetLon, k)
	o.Lat = math.Lerp(o.Lat, o.TargetLat, k)
	o.Lat = math.Clamp(o.Lat, MinLatitude, MaxLatitude)
	o.updateAngles()
}

// SetTarget retargets the camera. The displayed orientation follows on the
// next Step calls.
func (o *Orientation) SetTarget(lon, lat float32) {
	o.TargetLon = lon
	o.TargetLat = lat
}

func (o *Orientation) updateAngles() {
	o.Phi = math.Radians(90 - o.Lat)
	o.Theta = math.Radians(o.Lon)
}

// LookAt returns the point on the panorama sphere the orientation faces.
// Longitude is unbounded; it wraps through the trig functions.
func LookAt(o Orientation) math.Vec3 {
	sinPhi, cosPhi := gomath.Sincos(float64(o.Phi))
	sinTheta, cosTheta := gomath.Sincos(float64(o.Theta))

	return math.Vec3{
		X: float32(SphereRadius * sinPhi * cosTheta),
		Y: float32(SphereRadius * cosPhi),
		Z: float32(SphereRadius * sinPhi * sinTheta),
	}
}

// OrientationFor returns the longitude and latitude (degrees) that make LookAt
// face pos. The zero vector maps to the horizon at lon 0.
func OrientationFor(pos math.Vec3) (lon, lat float32) {
	r := pos.Length()
	if r == 0 {
		return 0, 0
	}
	phi := gomath.Acos(float64(math.Clamp(pos.Y/r, -1, 1)))
	theta := gomath.Atan2(float64(pos.Z), float64(pos.X))

	return math.Degrees(float32(theta)), 90 - math.Degrees(float32(phi))
}

// ApplyZoom returns the field of view after a wheel movement. Positive deltaY
// widens the view. The result stays within [MinFieldOfView, MaxFieldOfView].
func ApplyZoom(fov, deltaY, sensitivity float32) float32 {
	return math.Clamp(fov+deltaY*sensitivity, MinFieldOfView, MaxFieldOfView)
}
