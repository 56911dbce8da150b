package render

import (
	"math"
	"sync"

	"github.com/decker502/cmdscene/pkg/linear"
)

// Default perspective camera parameters.
const (
	DefaultFOV  = 75.0 // 垂直视角（度）
	DefaultNear = 0.1
	DefaultFar  = 1000.0
)

// Camera is a perspective camera at the origin looking down -Z.
type Camera struct {
	mu     sync.RWMutex
	fov    float64
	aspect float64
	near   float64
	far    float64
	proj   linear.M4
}

// NewPerspectiveCamera creates a camera.
//
// Parameters:
//   - fov: vertical field of view in degrees
//   - aspect: width / height of the render surface
//   - near, far: clip plane distances
func NewPerspectiveCamera(fov, aspect, near, far float64) *Camera {
	c := &Camera{fov: fov, aspect: aspect, near: near, far: far}
	c.updateProjection()
	return c
}

// SetAspect changes the aspect ratio and recomputes the projection.
// Non-positive ratios are ignored.
func (c *Camera) SetAspect(aspect float64) {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return
	}
	c.mu.Lock()
	c.aspect = aspect
	c.updateProjection()
	c.mu.Unlock()
}

// Aspect returns the current aspect ratio.
func (c *Camera) Aspect() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.aspect
}

// FOV returns the vertical field of view in degrees.
func (c *Camera) FOV() float64 { return c.fov }

// Near returns the near clip distance.
func (c *Camera) Near() float64 { return c.near }

// Far returns the far clip distance.
func (c *Camera) Far() float64 { return c.far }

// Projection returns the projection matrix.
func (c *Camera) Projection() linear.M4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.proj
}

// updateProjection must be called with mu held (or before c is shared).
func (c *Camera) updateProjection() {
	c.proj.Perspective(c.fov*math.Pi/180, c.aspect, c.near, c.far)
}
