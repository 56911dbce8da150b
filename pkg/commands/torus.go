package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/decker502/cmdscene/pkg/command"
	"github.com/decker502/cmdscene/pkg/linear"
	"github.com/decker502/cmdscene/pkg/scene"
)

// TorusAttributes describes the ring an AddTorusCommand creates.
type TorusAttributes struct {
	Position        [3]float64 `yaml:"position"`
	Radius          float64    `yaml:"radius"`
	Tube            float64    `yaml:"tube"`
	RadialSegments  int        `yaml:"radialSegments"`
	TubularSegments int        `yaml:"tubularSegments"`
	Color           string     `yaml:"color"`
}

// DefaultTorusAttributes returns a red ring (0.6 radius, 0.2 tube)
// five units in front of the camera.
func DefaultTorusAttributes() TorusAttributes {
	return TorusAttributes{
		Position:        [3]float64{0, 0, -5},
		Radius:          0.6,
		Tube:            0.2,
		RadialSegments:  16,
		TubularSegments: 100,
		Color:           "#ff0000",
	}
}

// AddTorusCommand adds a rotating ring to the scene.
type AddTorusCommand struct {
	meshSlot
	provider DataProvider[TorusAttributes]
}

var _ command.Command = (*AddTorusCommand)(nil)

// NewAddTorusCommand creates a torus command fed by provider.
func NewAddTorusCommand(provider DataProvider[TorusAttributes]) *AddTorusCommand {
	return &AddTorusCommand{
		meshSlot: meshSlot{speed: DefaultRotationSpeed},
		provider: provider,
	}
}

func (c *AddTorusCommand) String() string { return "torus" }

// Execute fetches the torus attributes, builds the mesh and adds it to
// target. Executing a command that already owns its torus does nothing.
func (c *AddTorusCommand) Execute(ctx context.Context, target command.Target) error {
	if c.applied() {
		return nil
	}
	if c.provider == nil {
		return ErrNoProvider
	}

	attrs, err := c.provider.FetchData(ctx)
	if err != nil {
		return fmt.Errorf("fetch torus data: %w", err)
	}
	obj, err := NewTorus(attrs)
	if err != nil {
		return err
	}

	c.attach(target, obj)
	log.Printf("[AddTorusCommand] Added torus #%d at %v (radius=%.2f, tube=%.2f)",
		obj.ID(), attrs.Position, attrs.Radius, attrs.Tube)
	return nil
}

// NewTorus builds a torus mesh with zero rotation.
func NewTorus(attrs TorusAttributes) (*scene.Object, error) {
	if attrs.Radius <= 0 || attrs.Tube <= 0 {
		return nil, fmt.Errorf("invalid torus dimensions radius=%v tube=%v", attrs.Radius, attrs.Tube)
	}
	clr, err := ParseColor(attrs.Color)
	if err != nil {
		return nil, fmt.Errorf("torus color: %w", err)
	}
	geometry := scene.NewTorusGeometry(attrs.Radius, attrs.Tube, attrs.RadialSegments, attrs.TubularSegments)
	return scene.NewMesh("torus", geometry, clr, linear.V3(attrs.Position)), nil
}
