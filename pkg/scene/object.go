package scene

import (
	"image/color"
	"sync"

	"github.com/decker502/cmdscene/pkg/linear"
)

// ObjectID 是场景对象的唯一标识符，0 表示尚未加入任何场景
type ObjectID uint64

// Object is a renderable mesh. Its geometry, color and position are
// fixed at construction; its rotation can be mutated every frame.
type Object struct {
	name     string
	geometry Geometry
	color    color.RGBA
	position linear.V3

	mu       sync.RWMutex
	id       ObjectID
	rotation linear.V3
}

// NewMesh creates a renderable object with zero rotation.
func NewMesh(name string, geometry Geometry, clr color.RGBA, position linear.V3) *Object {
	return &Object{
		name:     name,
		geometry: geometry,
		color:    clr,
		position: position,
	}
}

// Name returns the object's display name.
func (o *Object) Name() string { return o.name }

// Geometry returns the object's wireframe geometry.
func (o *Object) Geometry() Geometry { return o.geometry }

// Color returns the object's color.
func (o *Object) Color() color.RGBA { return o.color }

// Position returns the object's position in world space.
func (o *Object) Position() linear.V3 { return o.position }

// ID returns the identifier assigned by the first scene the object
// was added to.
func (o *Object) ID() ObjectID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.id
}

// Rotation returns the object's Euler rotation in radians (XYZ order).
func (o *Object) Rotation() linear.V3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.rotation
}

// SetRotation replaces the object's Euler rotation.
func (o *Object) SetRotation(r linear.V3) {
	o.mu.Lock()
	o.rotation = r
	o.mu.Unlock()
}

// Rotate adds the given increments to the object's rotation.
func (o *Object) Rotate(dx, dy, dz float64) {
	o.mu.Lock()
	o.rotation[0] += dx
	o.rotation[1] += dy
	o.rotation[2] += dz
	o.mu.Unlock()
}
