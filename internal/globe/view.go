package globe

import (
	"math"

	"github.com/litescript/ls-globe/internal/geo"
)

// NDC is a normalized device coordinate: X and Y in [-1, 1], +Y up.
type NDC struct {
	X, Y float64
}

// Viewport describes the host surface. Width and Height are in host units
// (pixels, terminal cells). CellAspect is the height/width ratio of one unit;
// terminal cells are roughly twice as tall as they are wide.
type Viewport struct {
	Width      float64
	Height     float64
	CellAspect float64
}

// Valid reports whether the viewport has a usable area.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// Aspect returns the physical width/height ratio of the surface.
func (v Viewport) Aspect() float64 {
	if !v.Valid() {
		return 1
	}
	ca := v.CellAspect
	if ca <= 0 {
		ca = 1
	}
	return v.Width / (v.Height * ca)
}

// ToNDC converts a host position to NDC. (0, 0) is the top-left corner.
func (v Viewport) ToNDC(x, y float64) NDC {
	if !v.Valid() {
		return NDC{}
	}
	return NDC{
		X: 2*x/v.Width - 1,
		Y: 1 - 2*y/v.Height,
	}
}

// FromNDC converts NDC back to a host position.
func (v Viewport) FromNDC(n NDC) (x, y float64) {
	return (n.X + 1) / 2 * v.Width, (1 - n.Y) / 2 * v.Height
}

// Contains reports whether the host position lies on the surface.
func (v Viewport) Contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x < v.Width && y < v.Height
}

// Ray is a half-line in world space. Dir is unit length.
type Ray struct {
	Origin geo.Vec3
	Dir    geo.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) geo.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// View is everything needed to go between world space and the screen for
// one frame: a perspective camera at the orbit position looking at the
// globe center with +Y up.
type View struct {
	Camera   CameraState
	FOV      float64 // vertical, radians
	Viewport Viewport
}

var worldUp = geo.Vec3{Y: 1}

// basis returns the camera's forward, right and up unit vectors.
func (v View) basis() (forward, right, up geo.Vec3) {
	eye := v.Camera.Eye()
	forward = eye.Scale(-1).Normalized()
	right = forward.Cross(worldUp).Normalized()
	if right.Norm() == 0 {
		// Looking straight down an axis parallel to up; elevation is clamped
		// below the pole so this only happens for a zero-distance camera.
		right = geo.Vec3{X: 1}
	}
	up = right.Cross(forward)
	return forward, right, up
}

func (v View) tanHalfFOV() float64 {
	return math.Tan(v.FOV / 2)
}

// Ray returns the world-space ray through an NDC point.
func (v View) Ray(n NDC) Ray {
	forward, right, up := v.basis()
	th := v.tanHalfFOV()
	dir := forward.
		Add(right.Scale(n.X * th * v.Viewport.Aspect())).
		Add(up.Scale(n.Y * th))
	return Ray{Origin: v.Camera.Eye(), Dir: dir.Normalized()}
}

// Project maps a world point to NDC. ok is false for points at or behind
// the camera plane. depth is the distance along the view axis.
func (v View) Project(p geo.Vec3) (n NDC, depth float64, ok bool) {
	forward, right, up := v.basis()
	rel := p.Sub(v.Camera.Eye())
	depth = rel.Dot(forward)
	if depth <= 1e-9 {
		return NDC{}, depth, false
	}
	th := v.tanHalfFOV()
	n = NDC{
		X: rel.Dot(right) / (depth * th * v.Viewport.Aspect()),
		Y: rel.Dot(up) / (depth * th),
	}
	return n, depth, true
}

// ProjectToScreen maps a world point to host coordinates.
func (v View) ProjectToScreen(p geo.Vec3) (x, y float64, ok bool) {
	n, _, ok := v.Project(p)
	if !ok {
		return 0, 0, false
	}
	x, y = v.Viewport.FromNDC(n)
	return x, y, true
}

// Occluded reports whether the globe sphere of the given radius hides p
// from the camera.
func (v View) Occluded(p geo.Vec3, globeRadius float64) bool {
	eye := v.Camera.Eye()
	toP := p.Sub(eye)
	dist := toP.Norm()
	if dist == 0 || globeRadius <= 0 {
		return false
	}
	t, ok := intersectSphere(Ray{Origin: eye, Dir: toP.Scale(1 / dist)}, geo.Vec3{}, globeRadius)
	return ok && t < dist-1e-9
}

// intersectSphere returns the nearest non-negative ray parameter at which
// the ray meets the sphere.
func intersectSphere(r Ray, center geo.Vec3, radius float64) (float64, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
