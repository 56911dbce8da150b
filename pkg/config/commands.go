package config

import (
	"fmt"
	"io/fs"

	"github.com/decker502/cmdscene/pkg/command"
	"github.com/decker502/cmdscene/pkg/commands"
)

// BuildCommands 根据对象配置创建命令
//
// 返回的命令顺序与 config.Objects 一致，尚未执行。
func (c *SceneConfig) BuildCommands() ([]command.Command, error) {
	result := make([]command.Command, 0, len(c.Objects))
	for i, obj := range c.Objects {
		speed := obj.RotationSpeed
		if speed == 0 {
			speed = c.Loop.RotationSpeed
		}
		cmd, err := obj.build(speed, c.DataFS)
		if err != nil {
			return nil, fmt.Errorf("objects[%d]: %w", i, err)
		}
		result = append(result, cmd)
	}
	return result, nil
}

// CubeAttributes 提取立方体属性
func (o ObjectConfig) CubeAttributes() commands.CubeAttributes {
	return commands.CubeAttributes{
		Position: o.Position,
		Size:     o.Size,
		Color:    o.Color,
	}
}

// TorusAttributes 提取圆环属性，未设置的分段数使用默认值
func (o ObjectConfig) TorusAttributes() commands.TorusAttributes {
	def := commands.DefaultTorusAttributes()
	attrs := commands.TorusAttributes{
		Position:        o.Position,
		Radius:          o.Radius,
		Tube:            o.Tube,
		RadialSegments:  o.RadialSegments,
		TubularSegments: o.TubularSegments,
		Color:           o.Color,
	}
	if attrs.RadialSegments == 0 {
		attrs.RadialSegments = def.RadialSegments
	}
	if attrs.TubularSegments == 0 {
		attrs.TubularSegments = def.TubularSegments
	}
	return attrs
}

// fileCubeDefaults 数据文件的底值：对象配置中未设置的字段取立方体默认值
func (o ObjectConfig) fileCubeDefaults() commands.CubeAttributes {
	attrs := commands.DefaultCubeAttributes()
	if o.Position != ([3]float64{}) {
		attrs.Position = o.Position
	}
	if o.Size > 0 {
		attrs.Size = o.Size
	}
	if o.Color != "" {
		attrs.Color = o.Color
	}
	return attrs
}

// fileTorusDefaults 数据文件的底值：对象配置中未设置的字段取圆环默认值
func (o ObjectConfig) fileTorusDefaults() commands.TorusAttributes {
	attrs := commands.DefaultTorusAttributes()
	if o.Position != ([3]float64{}) {
		attrs.Position = o.Position
	}
	if o.Radius > 0 {
		attrs.Radius = o.Radius
	}
	if o.Tube > 0 {
		attrs.Tube = o.Tube
	}
	if o.RadialSegments > 0 {
		attrs.RadialSegments = o.RadialSegments
	}
	if o.TubularSegments > 0 {
		attrs.TubularSegments = o.TubularSegments
	}
	if o.Color != "" {
		attrs.Color = o.Color
	}
	return attrs
}

// validate 检查静态对象的属性；dataFile 对象在获取数据时检查
func (o ObjectConfig) validate() error {
	if o.DataFile != "" {
		return nil
	}
	var err error
	switch o.Kind {
	case KindCube:
		_, err = commands.NewCube(o.CubeAttributes())
	case KindTorus:
		_, err = commands.NewTorus(o.TorusAttributes())
	default:
		err = fmt.Errorf("%w %q", ErrUnknownKind, o.Kind)
	}
	return err
}

func (o ObjectConfig) build(speed float64, fsys fs.FS) (command.Command, error) {
	switch o.Kind {
	case KindCube:
		attrs := o.CubeAttributes()
		if o.DataFile != "" {
			attrs = o.fileCubeDefaults()
		}
		cmd := commands.NewAddCubeCommand(providerFor(o, attrs, fsys))
		cmd.SetRotationSpeed(speed)
		return cmd, nil
	case KindTorus:
		attrs := o.TorusAttributes()
		if o.DataFile != "" {
			attrs = o.fileTorusDefaults()
		}
		cmd := commands.NewAddTorusCommand(providerFor(o, attrs, fsys))
		cmd.SetRotationSpeed(speed)
		return cmd, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, o.Kind)
	}
}

// providerFor 选择数据源：DataFile 优先，否则使用静态值；FetchDelay 包装在外层
func providerFor[T any](o ObjectConfig, attrs T, fsys fs.FS) commands.DataProvider[T] {
	var inner commands.DataProvider[T]
	if o.DataFile != "" {
		inner = commands.YAMLFileProvider[T]{Path: o.DataFile, Defaults: attrs, FS: fsys}
	} else {
		inner = commands.StaticProvider[T]{Value: attrs}
	}
	if o.FetchDelay <= 0 {
		return inner
	}
	return commands.WithDelay(inner, o.FetchDelay)
}
