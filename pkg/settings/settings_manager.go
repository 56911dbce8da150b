// Package settings 持久化用户设置（窗口尺寸、全屏、自动播放、HUD）
//
// 注意：这里只保存界面偏好，命令历史不做持久化。
package settings

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// Settings 全局用户设置
type Settings struct {
	// 窗口设置
	WindowWidth  int  `yaml:"windowWidth"`  // 上次关闭时的窗口宽度，0 表示使用场景配置
	WindowHeight int  `yaml:"windowHeight"` // 上次关闭时的窗口高度
	Fullscreen   bool `yaml:"fullscreen"`   // 启动时是否全屏

	// 播放设置
	AutoStart bool `yaml:"autoStart"` // Setup 完成后自动开始动画
	ShowHUD   bool `yaml:"showHUD"`   // 显示状态叠加层
}

// DefaultSettings 返回默认设置
func DefaultSettings() *Settings {
	return &Settings{
		WindowWidth:  0,
		WindowHeight: 0,
		Fullscreen:   false,
		AutoStart:    true,
		ShowHUD:      true,
	}
}

// Manager 设置管理器
// 负责设置的加载、保存和内存管理
type Manager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *Settings      // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// Open 打开指定应用名的 gdata 存储并加载设置
//
// 存储不可用时返回降级模式的管理器（仅内存设置）和错误
func Open(appName string) (*Manager, error) {
	gdataManager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return NewManager(nil), fmt.Errorf("failed to open settings storage: %w", err)
	}
	return NewManager(gdataManager), nil
}

// NewManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
func NewManager(gdataManager *gdata.Manager) *Manager {
	m := &Manager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	// 尝试加载已保存的设置
	if err := m.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}
	return m
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
func (m *Manager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if m.gdataManager == nil {
		m.settings = DefaultSettings()
		return nil
	}

	if !m.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		m.settings = DefaultSettings()
		return nil
	}

	data, err := m.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		m.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 以默认值为底，旧版本存档缺少的字段保持默认
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		m.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	m.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (m *Manager) Save() error {
	if m.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(m.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := m.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// Persistent 是否可以持久化（非降级模式）
func (m *Manager) Persistent() bool {
	return m.gdataManager != nil
}

// GetSettings 获取当前设置
func (m *Manager) GetSettings() *Settings {
	return m.settings
}

// SetWindowSize 记录窗口尺寸，非正值被忽略
//
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (m *Manager) SetWindowSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.settings.WindowWidth = width
	m.settings.WindowHeight = height
}

// WindowSize 返回记录的窗口尺寸；未记录时返回 fallback
func (m *Manager) WindowSize(fallbackWidth, fallbackHeight int) (int, int) {
	if m.settings.WindowWidth <= 0 || m.settings.WindowHeight <= 0 {
		return fallbackWidth, fallbackHeight
	}
	return m.settings.WindowWidth, m.settings.WindowHeight
}

// SetFullscreen 设置全屏模式
//
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (m *Manager) SetFullscreen(enabled bool) {
	m.settings.Fullscreen = enabled
}

// SetAutoStart 设置 Setup 后是否自动开始动画
func (m *Manager) SetAutoStart(enabled bool) {
	m.settings.AutoStart = enabled
}

// SetShowHUD 设置是否显示 HUD
func (m *Manager) SetShowHUD(enabled bool) {
	m.settings.ShowHUD = enabled
}
