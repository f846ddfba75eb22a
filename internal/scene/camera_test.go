package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/slangspace/internal/model"
)

func TestCameraCenterRay(t *testing.T) {
	cam := NewCamera(model.DefaultConfig().Camera)
	r := cam.Ray(0, 0)

	assert.Equal(t, Vec3{0, 0, 400}, r.Origin)
	assert.InDelta(t, -1, r.Dir.Z, 1e-9)
}

func TestCameraProjectRoundTrip(t *testing.T) {
	cam := NewCamera(model.DefaultConfig().Camera)
	cam.Orbit(0.4, -0.2)

	points := []Vec3{{0, 0, 0}, {30, -20, 10}, {-100, 50, -60}}
	for _, p := range points {
		x, y, ok := cam.Project(p)
		require.True(t, ok)

		r := cam.Ray(x, y)
		toPoint := p.Sub(r.Origin).Norm()
		assert.InDelta(t, 1, r.Dir.Dot(toPoint), 1e-9)
	}

	_, _, ok := cam.Project(cam.Position.Add(cam.Position.Sub(cam.Target)))
	assert.False(t, ok)
}

func TestCameraOrbitKeepsDistance(t *testing.T) {
	cam := NewCamera(model.DefaultConfig().Camera)
	cam.Orbit(1.2, 0.5)
	assert.InDelta(t, 400, cam.Distance(), 1e-6)

	// polar angle stays off the pole
	cam.Orbit(0, -10)
	assert.Less(t, cam.Position.Y, 400.0)
}

func TestCameraZoomClamped(t *testing.T) {
	cam := NewCamera(model.DefaultConfig().Camera)

	cam.Zoom(0.5)
	assert.InDelta(t, 200, cam.Distance(), 1e-6)

	cam.Zoom(0.01)
	assert.InDelta(t, 80, cam.Distance(), 1e-6)

	cam.Zoom(100)
	assert.InDelta(t, 400, cam.Distance(), 1e-6)
}
