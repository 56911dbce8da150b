package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides 环境变量覆盖项，零值表示未设置
type EnvOverrides struct {
	Width       int    `env:"CMDSCENE_WIDTH"`
	Height      int    `env:"CMDSCENE_HEIGHT"`
	TPS         int    `env:"CMDSCENE_TPS"`
	SetupPolicy string `env:"CMDSCENE_SETUP_POLICY"`
	Verbose     bool   `env:"CMDSCENE_VERBOSE"`
}

// ParseEnv 从环境变量读取覆盖项
//
// 参数:
//   - environ: 变量表；为 nil 时读取进程环境变量
func ParseEnv(environ map[string]string) (EnvOverrides, error) {
	var o EnvOverrides
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return o, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

// Apply 将已设置的覆盖项写入 config 并重新验证
func (o EnvOverrides) Apply(config *SceneConfig) error {
	if o.Width > 0 {
		config.Window.Width = o.Width
	}
	if o.Height > 0 {
		config.Window.Height = o.Height
	}
	if o.TPS > 0 {
		config.Loop.TPS = o.TPS
	}
	if o.SetupPolicy != "" {
		config.Setup.Policy = o.SetupPolicy
	}
	return config.Validate()
}
