package scene

import (
	"math"

	"github.com/ppiankov/slangspace/internal/model"
)

// Ray is a half-line used for picking
type Ray struct {
	Origin Vec3
	Dir    Vec3 // unit length
}

// At returns the point at distance t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Camera is an orbiting perspective camera looking at Target
type Camera struct {
	Position Vec3
	Target   Vec3
	FOV      float64 // vertical, degrees
	Aspect   float64

	minDistance, maxDistance float64
}

// NewCamera places the camera on +Z at the configured distance
func NewCamera(cfg model.CameraConfig) *Camera {
	aspect := cfg.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	fov := cfg.FOV
	if fov <= 0 || fov >= 180 {
		fov = 60
	}
	return &Camera{
		Position:    Vec3{0, 0, cfg.Distance},
		FOV:         fov,
		Aspect:      aspect,
		minDistance: cfg.MinDistance,
		maxDistance: cfg.MaxDistance,
	}
}

func (c *Camera) frame() (forward, right, up Vec3) {
	forward = c.Target.Sub(c.Position).Norm()
	right = forward.Cross(worldUp)
	if right.Len() < 1e-9 {
		right = Vec3{1, 0, 0}
	}
	right = right.Norm()
	up = right.Cross(forward)
	return forward, right, up
}

// Ray returns the pick ray through normalized device coordinates,
// x and y in [-1, 1] with +y up.
func (c *Camera) Ray(x, y float64) Ray {
	forward, right, up := c.frame()
	tanHalf := math.Tan(c.FOV * math.Pi / 360)

	dir := forward.
		Add(right.Scale(x * tanHalf * c.Aspect)).
		Add(up.Scale(y * tanHalf))

	return Ray{Origin: c.Position, Dir: dir.Norm()}
}

// Project maps a point to normalized device coordinates. ok is false when
// the point is behind the camera.
func (c *Camera) Project(p Vec3) (x, y float64, ok bool) {
	forward, right, up := c.frame()
	tanHalf := math.Tan(c.FOV * math.Pi / 360)

	d := p.Sub(c.Position)
	depth := d.Dot(forward)
	if depth <= 0 {
		return 0, 0, false
	}

	x = d.Dot(right) / (depth * tanHalf * c.Aspect)
	y = d.Dot(up) / (depth * tanHalf)
	return x, y, true
}

// Distance returns how far the camera is from its target
func (c *Camera) Distance() float64 {
	return c.Position.Sub(c.Target).Len()
}

// Orbit moves the camera around the target by azimuth and polar deltas in
// radians. The polar angle stays short of the poles.
func (c *Camera) Orbit(dAzimuth, dPolar float64) {
	offset := c.Position.Sub(c.Target)
	r := offset.Len()
	if r == 0 {
		return
	}

	azimuth := math.Atan2(offset.X, offset.Z) + dAzimuth
	polar := math.Acos(clamp(offset.Y/r, -1, 1)) + dPolar
	polar = clamp(polar, 1e-3, math.Pi-1e-3)

	c.Position = c.Target.Add(Vec3{
		X: r * math.Sin(polar) * math.Sin(azimuth),
		Y: r * math.Cos(polar),
		Z: r * math.Sin(polar) * math.Cos(azimuth),
	})
}

// Zoom scales the distance to the target, clamped to the configured range
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	offset := c.Position.Sub(c.Target)
	r := offset.Len()
	if r == 0 {
		return
	}

	next := r * factor
	if c.minDistance > 0 && next < c.minDistance {
		next = c.minDistance
	}
	if c.maxDistance > 0 && next > c.maxDistance {
		next = c.maxDistance
	}
	c.Position = c.Target.Add(offset.Scale(next / r))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
