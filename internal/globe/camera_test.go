package globe

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/litescript/ls-globe/internal/geo"
)

func TestCameraRig_ScrollNeverLeavesRange(t *testing.T) {
	r := NewCameraRig(DefaultCameraConfig())

	deltas := []float64{-100, 1e308, -1e308, 0.5, math.Inf(1), math.NaN(), -2.5, 7, math.Inf(-1), -0.01}
	for _, d := range deltas {
		r.Scroll(d)
		dist := r.State().Distance
		assert.GreaterOrEqual(t, dist, 3.0, "after Scroll(%v)", d)
		assert.LessOrEqual(t, dist, 8.0, "after Scroll(%v)", d)
	}

	r.Scroll(-100)
	assert.Equal(t, 3.0, r.State().Distance)
	r.Scroll(100)
	assert.Equal(t, 8.0, r.State().Distance)
}

func TestCameraRig_DragWrapsAndClamps(t *testing.T) {
	cfg := DefaultCameraConfig()
	cfg.RotateSpeed = 0.01
	r := NewCameraRig(cfg)

	r.BeginDrag()
	r.Drag(10, 0) // azimuth -= 0.1, wraps below zero
	assert.InDelta(t, 2*math.Pi-0.1, r.State().Azimuth, 1e-12)

	r.Drag(0, 1e6)
	assert.InDelta(t, geo.DegToRad(89), r.State().Elevation, 1e-12)
	r.Drag(0, -1e7)
	assert.InDelta(t, -geo.DegToRad(89), r.State().Elevation, 1e-12)

	before := r.State()
	r.Drag(math.NaN(), 1)
	assert.Equal(t, before, r.State())
}

func TestCameraRig_AutoRotate(t *testing.T) {
	r := NewCameraRig(DefaultCameraConfig())
	assert.True(t, r.State().AutoRotating)

	r.Tick(time.Second)
	assert.InDelta(t, 2*math.Pi/120, r.State().Azimuth, 1e-12)

	r.Tick(-time.Second)
	assert.InDelta(t, 2*math.Pi/120, r.State().Azimuth, 1e-12)

	r.SetAutoRotate(false)
	r.Tick(time.Second)
	assert.False(t, r.State().AutoRotating)
	assert.InDelta(t, 2*math.Pi/120, r.State().Azimuth, 1e-12)
}

func TestCameraRig_DragSuspendsAndResumesAfterGrace(t *testing.T) {
	cfg := DefaultCameraConfig()
	cfg.Damping = 0
	r := NewCameraRig(cfg)

	r.BeginDrag()
	assert.False(t, r.State().AutoRotating)
	az := r.State().Azimuth
	r.Tick(time.Second)
	assert.Equal(t, az, r.State().Azimuth, "no auto-rotation while dragging")

	r.EndDrag()
	r.Tick(time.Second)
	assert.False(t, r.State().AutoRotating, "still inside the grace period")
	assert.Equal(t, az, r.State().Azimuth)

	r.Tick(time.Second)
	assert.True(t, r.State().AutoRotating)

	r.Tick(time.Second)
	assert.InDelta(t, az+2*math.Pi/120, r.State().Azimuth, 1e-12)
}

func TestCameraRig_EndDragWithAutoRotateOff(t *testing.T) {
	r := NewCameraRig(DefaultCameraConfig())
	r.SetAutoRotate(false)

	r.BeginDrag()
	r.EndDrag()
	r.Tick(5 * time.Second)
	assert.False(t, r.State().AutoRotating)
}

func TestCameraRig_Inertia(t *testing.T) {
	cfg := DefaultCameraConfig()
	cfg.RotateSpeed = 0.01
	cfg.AutoRotate = false
	r := NewCameraRig(cfg)

	r.BeginDrag()
	r.Drag(-10, 0) // azimuth += 0.1
	r.Tick(100 * time.Millisecond)
	r.EndDrag()
	released := r.State().Azimuth
	assert.InDelta(t, 0.1, released, 1e-12)

	r.Tick(100 * time.Millisecond)
	coasted := r.State().Azimuth
	assert.Greater(t, coasted, released, "keeps turning in the drag direction")

	for i := 0; i < 200; i++ {
		r.Tick(100 * time.Millisecond)
	}
	settled := r.State().Azimuth
	r.Tick(100 * time.Millisecond)
	assert.Equal(t, settled, r.State().Azimuth, "inertia dies out")
}

func TestCameraRig_HoldStillBeforeReleaseHasNoInertia(t *testing.T) {
	cfg := DefaultCameraConfig()
	cfg.AutoRotate = false
	r := NewCameraRig(cfg)

	r.BeginDrag()
	r.Drag(-20, 0)
	r.Tick(16 * time.Millisecond)
	r.Tick(16 * time.Millisecond) // no movement this frame
	r.EndDrag()

	az := r.State().Azimuth
	r.Tick(time.Second)
	assert.Equal(t, az, r.State().Azimuth)
}

func TestCameraConfig_Normalize(t *testing.T) {
	cfg := DefaultCameraConfig()
	cfg.MinDistance, cfg.MaxDistance = 8, 3
	cfg.InitialDistance = 20
	cfg.MaxElevation = math.Pi
	cfg.FOV = -1

	r := NewCameraRig(cfg)
	got := r.Config()
	assert.Equal(t, 3.0, got.MinDistance)
	assert.Equal(t, 8.0, got.MaxDistance)
	assert.Equal(t, 8.0, r.State().Distance)
	assert.InDelta(t, geo.DegToRad(89), got.MaxElevation, 1e-12)
	assert.InDelta(t, geo.DegToRad(45), got.FOV, 1e-12)
}

func TestCameraRig_Reset(t *testing.T) {
	r := NewCameraRig(DefaultCameraConfig())
	r.Scroll(2)
	r.BeginDrag()
	r.Drag(30, 30)
	r.EndDrag()

	r.Reset()
	assert.Equal(t, CameraState{Distance: 5, AutoRotating: true}, r.State())
	assert.False(t, r.Dragging())
}

func TestCameraState_Eye(t *testing.T) {
	tests := []struct {
		name string
		s    CameraState
		want geo.Vec3
	}{
		{"front", CameraState{Distance: 5}, geo.Vec3{Z: 5}},
		{"quarter turn", CameraState{Azimuth: math.Pi / 2, Distance: 5}, geo.Vec3{X: 5}},
		{"overhead-ish", CameraState{Elevation: math.Pi / 2, Distance: 3}, geo.Vec3{Y: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.s.Eye()
			assert.InDelta(t, tt.want.X, got.X, 1e-12)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-12)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-12)
		})
	}
}
