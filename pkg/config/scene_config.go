package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/decker502/cmdscene/pkg/commands"
	"github.com/decker502/cmdscene/pkg/controller"
)

// 对象类型
const (
	KindCube  = "cube"
	KindTorus = "torus"
)

// ErrUnknownKind 未知的对象类型
var ErrUnknownKind = errors.New("unknown object kind")

// SceneConfig 场景配置
//
// 描述窗口、相机、帧循环、Setup 策略以及启动时注册的对象列表。
//
// 配置文件位置: data/scene.yaml
type SceneConfig struct {
	Window  WindowConfig   `yaml:"window"`
	Camera  CameraConfig   `yaml:"camera"`
	Loop    LoopConfig     `yaml:"loop"`
	Setup   SetupConfig    `yaml:"setup"`
	Objects []ObjectConfig `yaml:"objects"`

	// DataFS 解析 objects[].dataFile 的文件系统，为 nil 时读取磁盘
	DataFS fs.FS `yaml:"-"`
}

// WindowConfig 窗口配置
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	// Background 背景色（颜色名或 #rrggbb）
	Background string `yaml:"background"`
}

// CameraConfig 透视相机配置
type CameraConfig struct {
	// FOV 垂直视角（度）
	FOV  float64 `yaml:"fov"`
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

// LoopConfig 帧循环配置
type LoopConfig struct {
	// TPS 每秒帧数
	TPS int `yaml:"tps"`
	// RotationSpeed 对象未单独配置时使用的每帧旋转增量（弧度）
	RotationSpeed float64 `yaml:"rotationSpeed"`
}

// SetupConfig Setup 配置
type SetupConfig struct {
	// Policy 失败策略: "best-effort" 或 "rollback"
	Policy string `yaml:"policy"`
	// Timeout 整体 Setup 超时，0 表示不限制
	Timeout time.Duration `yaml:"timeout"`
}

// ObjectConfig 单个对象配置
//
// Kind 决定使用哪些字段：
//   - cube: Size
//   - torus: Radius, Tube, RadialSegments, TubularSegments
type ObjectConfig struct {
	Kind     string     `yaml:"kind"`
	Position [3]float64 `yaml:"position"`
	Color    string     `yaml:"color"`

	Size float64 `yaml:"size"`

	Radius          float64 `yaml:"radius"`
	Tube            float64 `yaml:"tube"`
	RadialSegments  int     `yaml:"radialSegments"`
	TubularSegments int     `yaml:"tubularSegments"`

	// FetchDelay 模拟数据获取延迟
	FetchDelay time.Duration `yaml:"fetchDelay"`
	// DataFile 可选，从 YAML 文件读取属性（覆盖上面的字段；两处都未设置的字段取该类型的默认值）
	DataFile string `yaml:"dataFile"`
	// RotationSpeed 每帧旋转增量，0 表示使用 loop.rotationSpeed
	RotationSpeed float64 `yaml:"rotationSpeed"`
}

// Default 返回默认场景配置：一个蓝色立方体和一个红色圆环
func Default() *SceneConfig {
	return &SceneConfig{
		Window: WindowConfig{
			Width:      800,
			Height:     600,
			Title:      "cmdscene",
			Background: "black",
		},
		Camera: CameraConfig{FOV: 75, Near: 0.1, Far: 1000},
		Loop:   LoopConfig{TPS: 60, RotationSpeed: commands.DefaultRotationSpeed},
		Setup:  SetupConfig{Policy: controller.SetupBestEffort.String()},
		Objects: []ObjectConfig{
			{
				Kind:       KindCube,
				Position:   [3]float64{0, 0, -5},
				Size:       2,
				Color:      "blue",
				FetchDelay: time.Second,
			},
			{
				Kind:            KindTorus,
				Position:        [3]float64{2.5, 0, -5},
				Radius:          0.6,
				Tube:            0.2,
				RadialSegments:  16,
				TubularSegments: 100,
				Color:           "#ff0000",
			},
		},
	}
}

// LoadSceneConfig 加载场景配置
//
// 从指定路径加载 YAML 格式的场景配置文件。文件中未出现的字段保留默认值。
//
// 参数:
//   - path: 配置文件路径（如 "data/scene.yaml"）
//
// 返回:
//   - *SceneConfig: 加载成功后的配置结构
//   - error: 加载失败时返回错误
func LoadSceneConfig(path string) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene config: %w", err)
	}
	return ParseSceneConfig(data)
}

// ParseSceneConfig 解析 YAML 场景配置并验证
func ParseSceneConfig(data []byte) (*SceneConfig, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse scene config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene config: %w", err)
	}
	return config, nil
}

// Validate 验证配置有效性
func (c *SceneConfig) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("camera fov must be in (0, 180), got %v", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip planes invalid: near=%v far=%v", c.Camera.Near, c.Camera.Far)
	}
	if c.Loop.TPS <= 0 {
		return fmt.Errorf("loop tps must be positive, got %d", c.Loop.TPS)
	}
	if _, err := controller.ParseSetupPolicy(c.Setup.Policy); err != nil {
		return err
	}
	if c.Setup.Timeout < 0 {
		return fmt.Errorf("setup timeout must not be negative, got %v", c.Setup.Timeout)
	}
	if c.Window.Background != "" {
		if _, err := commands.ParseColor(c.Window.Background); err != nil {
			return fmt.Errorf("window background: %w", err)
		}
	}
	for i, obj := range c.Objects {
		if obj.Kind != KindCube && obj.Kind != KindTorus {
			return fmt.Errorf("objects[%d]: %w %q", i, ErrUnknownKind, obj.Kind)
		}
		if obj.FetchDelay < 0 {
			return fmt.Errorf("objects[%d]: fetchDelay must not be negative", i)
		}
		if err := obj.validate(); err != nil {
			return fmt.Errorf("objects[%d]: %w", i, err)
		}
	}
	return nil
}

// ControllerConfig 转换为控制器配置
func (c *SceneConfig) ControllerConfig() controller.Config {
	policy, _ := controller.ParseSetupPolicy(c.Setup.Policy)
	return controller.Config{
		Width:  c.Window.Width,
		Height: c.Window.Height,
		FOV:    c.Camera.FOV,
		Near:   c.Camera.Near,
		Far:    c.Camera.Far,
		Policy: policy,
	}
}
