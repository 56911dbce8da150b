// Package commands provides the concrete scene commands: one variant
// per object kind, each fed by a DataProvider.
package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/decker502/cmdscene/pkg/command"
	"github.com/decker502/cmdscene/pkg/linear"
	"github.com/decker502/cmdscene/pkg/scene"
)

// CubeAttributes describes the cube an AddCubeCommand creates.
type CubeAttributes struct {
	Position [3]float64 `yaml:"position"`
	Size     float64    `yaml:"size"`
	Color    string     `yaml:"color"`
}

// DefaultCubeAttributes returns a 2-unit blue cube five units in front of the camera.
func DefaultCubeAttributes() CubeAttributes {
	return CubeAttributes{
		Position: [3]float64{0, 0, -5},
		Size:     2,
		Color:    "blue",
	}
}

// AddCubeCommand adds a rotating cube to the scene.
type AddCubeCommand struct {
	meshSlot
	provider DataProvider[CubeAttributes]
}

var _ command.Command = (*AddCubeCommand)(nil)

// NewAddCubeCommand creates a cube command fed by provider.
func NewAddCubeCommand(provider DataProvider[CubeAttributes]) *AddCubeCommand {
	return &AddCubeCommand{
		meshSlot: meshSlot{speed: DefaultRotationSpeed},
		provider: provider,
	}
}

func (c *AddCubeCommand) String() string { return "cube" }

// Execute fetches the cube attributes, builds the mesh and adds it to
// target. Executing a command that already owns its cube does nothing.
func (c *AddCubeCommand) Execute(ctx context.Context, target command.Target) error {
	if c.applied() {
		return nil
	}
	if c.provider == nil {
		return ErrNoProvider
	}

	attrs, err := c.provider.FetchData(ctx)
	if err != nil {
		return fmt.Errorf("fetch cube data: %w", err)
	}
	obj, err := NewCube(attrs)
	if err != nil {
		return err
	}

	c.attach(target, obj)
	log.Printf("[AddCubeCommand] Added cube #%d at %v (size=%.2f, color=%s)",
		obj.ID(), attrs.Position, attrs.Size, attrs.Color)
	return nil
}

// NewCube builds a cube mesh with zero rotation.
func NewCube(attrs CubeAttributes) (*scene.Object, error) {
	if attrs.Size <= 0 {
		return nil, fmt.Errorf("invalid cube size %v", attrs.Size)
	}
	clr, err := ParseColor(attrs.Color)
	if err != nil {
		return nil, fmt.Errorf("cube color: %w", err)
	}
	geometry := scene.NewBoxGeometry(attrs.Size, attrs.Size, attrs.Size)
	return scene.NewMesh("cube", geometry, clr, linear.V3(attrs.Position)), nil
}
