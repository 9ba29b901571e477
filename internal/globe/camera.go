package globe

import (
	"math"
	"time"

	"github.com/litescript/ls-globe/internal/geo"
)

// inertiaFloor is the angular speed (rad/s) below which inertia stops.
const inertiaFloor = 1e-3

// CameraState is the orbit camera's position around the globe.
type CameraState struct {
	Azimuth      float64 // radians, [0, 2π)
	Elevation    float64 // radians, within ±MaxElevation
	Distance     float64 // world units from the globe center
	AutoRotating bool
}

// Eye returns the camera position in world space. Azimuth 0, elevation 0
// puts the camera on +Z looking at the origin.
func (s CameraState) Eye() geo.Vec3 {
	ce := math.Cos(s.Elevation)
	return geo.Vec3{
		X: s.Distance * ce * math.Sin(s.Azimuth),
		Y: s.Distance * math.Sin(s.Elevation),
		Z: s.Distance * ce * math.Cos(s.Azimuth),
	}
}

// CameraConfig holds the orbit limits and rates.
type CameraConfig struct {
	MinDistance     float64
	MaxDistance     float64
	InitialDistance float64
	MaxElevation    float64 // radians
	RotateSpeed     float64 // radians per pointer unit dragged
	AutoRotate      bool
	AutoRotateSpeed float64 // radians per second
	ResumeDelay     time.Duration
	Damping         float64 // inertia decay rate per second, 0 disables inertia
	FOV             float64 // vertical field of view, radians
}

// DefaultCameraConfig returns the stock orbit: distance 3..8 starting at 5,
// one revolution every two minutes, 45° field of view.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		MinDistance:     3,
		MaxDistance:     8,
		InitialDistance: 5,
		MaxElevation:    geo.DegToRad(89),
		RotateSpeed:     0.02,
		AutoRotate:      true,
		AutoRotateSpeed: 2 * math.Pi / 120,
		ResumeDelay:     1500 * time.Millisecond,
		Damping:         4,
		FOV:             geo.DegToRad(45),
	}
}

// normalize repairs inverted or out-of-range settings instead of failing.
func (c CameraConfig) normalize() CameraConfig {
	def := DefaultCameraConfig()
	if !finite(c.MinDistance) || c.MinDistance <= 0 {
		c.MinDistance = def.MinDistance
	}
	if !finite(c.MaxDistance) || c.MaxDistance <= 0 {
		c.MaxDistance = def.MaxDistance
	}
	if c.MinDistance > c.MaxDistance {
		c.MinDistance, c.MaxDistance = c.MaxDistance, c.MinDistance
	}
	if !finite(c.InitialDistance) {
		c.InitialDistance = def.InitialDistance
	}
	c.InitialDistance = geo.Clamp(c.InitialDistance, c.MinDistance, c.MaxDistance)
	if !finite(c.MaxElevation) || c.MaxElevation <= 0 || c.MaxElevation >= math.Pi/2 {
		c.MaxElevation = def.MaxElevation
	}
	if !finite(c.RotateSpeed) {
		c.RotateSpeed = def.RotateSpeed
	}
	if !finite(c.AutoRotateSpeed) {
		c.AutoRotateSpeed = def.AutoRotateSpeed
	}
	if c.ResumeDelay < 0 {
		c.ResumeDelay = 0
	}
	if !finite(c.Damping) || c.Damping < 0 {
		c.Damping = 0
	}
	if !finite(c.FOV) || c.FOV <= 0 || c.FOV >= math.Pi {
		c.FOV = def.FOV
	}
	return c
}

// CameraRig is the orbit controller. It is not safe for concurrent use.
type CameraRig struct {
	cfg   CameraConfig
	state CameraState

	autoRotate bool // user toggle; state.AutoRotating is the live flag
	dragging   bool
	resumeIn   time.Duration

	// Rotation accumulated by Drag since the last Tick, and the angular
	// velocity it implies once the drag ends.
	pendingAz, pendingEl float64
	velAz, velEl         float64
}

// NewCameraRig creates a rig at the configured initial distance.
func NewCameraRig(cfg CameraConfig) *CameraRig {
	r := &CameraRig{cfg: cfg.normalize()}
	r.Reset()
	return r
}

// Config returns the normalized configuration.
func (r *CameraRig) Config() CameraConfig {
	return r.cfg
}

// State returns a copy of the current camera state.
func (r *CameraRig) State() CameraState {
	return r.state
}

// Dragging reports whether a drag is in progress.
func (r *CameraRig) Dragging() bool {
	return r.dragging
}

// AutoRotateEnabled reports the user toggle, independent of whether the
// rig is currently rotating.
func (r *CameraRig) AutoRotateEnabled() bool {
	return r.autoRotate
}

// Reset returns the camera to its initial orbit.
func (r *CameraRig) Reset() {
	r.autoRotate = r.cfg.AutoRotate
	r.dragging = false
	r.resumeIn = 0
	r.pendingAz, r.pendingEl = 0, 0
	r.velAz, r.velEl = 0, 0
	r.state = CameraState{
		Distance:     r.cfg.InitialDistance,
		AutoRotating: r.autoRotate,
	}
}

// SetAutoRotate turns idle rotation on or off.
func (r *CameraRig) SetAutoRotate(on bool) {
	r.autoRotate = on
	if !on {
		r.state.AutoRotating = false
		r.resumeIn = 0
		return
	}
	if !r.dragging && r.resumeIn == 0 {
		r.state.AutoRotating = true
	}
}

// BeginDrag suspends auto-rotation for the interaction and stops inertia.
func (r *CameraRig) BeginDrag() {
	r.dragging = true
	r.state.AutoRotating = false
	r.resumeIn = 0
	r.pendingAz, r.pendingEl = 0, 0
	r.velAz, r.velEl = 0, 0
}

// Drag rotates the camera by a pointer delta.
func (r *CameraRig) Drag(dx, dy float64) {
	if !finite(dx) || !finite(dy) {
		return
	}
	dAz := -dx * r.cfg.RotateSpeed
	dEl := dy * r.cfg.RotateSpeed
	r.rotate(dAz, dEl)
	if r.dragging {
		r.pendingAz += dAz
		r.pendingEl += dEl
	}
}

// EndDrag finishes the interaction and starts the resume grace period.
func (r *CameraRig) EndDrag() {
	if !r.dragging {
		return
	}
	r.dragging = false
	r.pendingAz, r.pendingEl = 0, 0
	if r.cfg.Damping == 0 {
		r.velAz, r.velEl = 0, 0
	}
	if !r.autoRotate {
		return
	}
	r.resumeIn = r.cfg.ResumeDelay
	if r.resumeIn == 0 {
		r.state.AutoRotating = true
	}
}

// Scroll zooms by delta world units, clamped to the distance range.
func (r *CameraRig) Scroll(delta float64) {
	if !finite(delta) {
		return
	}
	r.state.Distance = geo.Clamp(r.state.Distance+delta, r.cfg.MinDistance, r.cfg.MaxDistance)
}

// Tick advances time-based motion: inertia, the resume countdown and
// auto-rotation. Non-positive dt is ignored.
func (r *CameraRig) Tick(dt time.Duration) {
	if dt <= 0 {
		return
	}
	sec := dt.Seconds()

	if r.dragging {
		// The rotation dragged during this frame becomes the release velocity.
		r.velAz = r.pendingAz / sec
		r.velEl = r.pendingEl / sec
		r.pendingAz, r.pendingEl = 0, 0
		return
	}

	r.applyInertia(sec)

	if r.resumeIn > 0 {
		r.resumeIn -= dt
		if r.resumeIn <= 0 {
			r.resumeIn = 0
			r.state.AutoRotating = r.autoRotate
		}
		return
	}

	if r.state.AutoRotating {
		r.state.Azimuth = geo.WrapTwoPi(r.state.Azimuth + r.cfg.AutoRotateSpeed*sec)
	}
}

func (r *CameraRig) applyInertia(sec float64) {
	if r.velAz == 0 && r.velEl == 0 {
		return
	}
	r.rotate(r.velAz*sec, r.velEl*sec)

	decay := math.Exp(-r.cfg.Damping * sec)
	r.velAz *= decay
	r.velEl *= decay
	if math.Hypot(r.velAz, r.velEl) < inertiaFloor {
		r.velAz, r.velEl = 0, 0
	}
}

func (r *CameraRig) rotate(dAz, dEl float64) {
	r.state.Azimuth = geo.WrapTwoPi(r.state.Azimuth + dAz)
	r.state.Elevation = geo.Clamp(r.state.Elevation+dEl, -r.cfg.MaxElevation, r.cfg.MaxElevation)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
