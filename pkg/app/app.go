// Package app 提供应用的核心包装器
//
// 该包把场景控制器、命令调用器、设置和 ebiten 游戏循环组装在一起。
// 桌面端通过 main.go 调用 NewApp()。
package app

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/cmdscene/pkg/command"
	"github.com/decker502/cmdscene/pkg/commands"
	"github.com/decker502/cmdscene/pkg/config"
	"github.com/decker502/cmdscene/pkg/controller"
	"github.com/decker502/cmdscene/pkg/event"
	"github.com/decker502/cmdscene/pkg/render"
	"github.com/decker502/cmdscene/pkg/render/ebitensurface"
	"github.com/decker502/cmdscene/pkg/settings"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Scene 场景配置，为 nil 时使用 config.Default()
	Scene *config.SceneConfig
	// Settings 用户设置，为 nil 时使用降级模式（仅内存）
	Settings *settings.Manager
	// Surface 渲染表面，为 nil 时创建 ebitensurface.Surface
	Surface render.Surface
}

// App 是应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	controller  *controller.Controller
	scheduler   *controller.HostScheduler
	surface     render.Surface
	invoker     *command.Invoker
	bridge      *event.Bridge
	settings    *settings.Manager
	sceneConfig *config.SceneConfig
	hud         *hud
	verbose     bool

	ctx    context.Context
	cancel context.CancelFunc

	setupDone chan error
	setupErr  error
	ready     bool

	spawned                  int // 通过按键添加的对象数量
	layoutWidth              int
	layoutHeight             int
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化应用
//
// 注册场景配置中的全部对象命令并在后台开始 Setup。
// Setup 完成前动画不会开始。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	sceneConfig := cfg.Scene
	if sceneConfig == nil {
		sceneConfig = config.Default()
	}
	if err := sceneConfig.Validate(); err != nil {
		return nil, fmt.Errorf("场景配置无效: %w", err)
	}

	settingsManager := cfg.Settings
	if settingsManager == nil {
		settingsManager = settings.NewManager(nil)
	}

	controllerConfig := sceneConfig.ControllerConfig()
	controllerConfig.Width, controllerConfig.Height = settingsManager.WindowSize(controllerConfig.Width, controllerConfig.Height)

	surface := cfg.Surface
	if surface == nil {
		background, err := commands.ParseColor(sceneConfig.Window.Background)
		if err != nil {
			background = color.RGBA{A: 0xff}
		}
		surface = ebitensurface.New(controllerConfig.Width, controllerConfig.Height, background)
	}

	bridge := event.NewBridge()
	scheduler := controller.NewHostScheduler()
	sceneController := controller.New(controllerConfig, surface, scheduler, bridge)

	cmds, err := sceneConfig.BuildCommands()
	if err != nil {
		sceneController.Close()
		return nil, fmt.Errorf("创建命令失败: %w", err)
	}
	for _, cmd := range cmds {
		sceneController.AddCommand(cmd)
	}

	hudFace, err := newHUD()
	if err != nil {
		// 没有字体时不显示 HUD，不影响运行
		log.Printf("[App] Warning: HUD disabled: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		controller:   sceneController,
		scheduler:    scheduler,
		surface:      surface,
		invoker:      command.NewInvoker(),
		bridge:       bridge,
		settings:     settingsManager,
		sceneConfig:  sceneConfig,
		hud:          hudFace,
		verbose:      cfg.Verbose,
		ctx:          ctx,
		cancel:       cancel,
		setupDone:    make(chan error, 1),
		layoutWidth:  controllerConfig.Width,
		layoutHeight: controllerConfig.Height,
	}
	a.startSetup()

	log.Printf("[App] Registered %d command(s), setup policy=%s", len(cmds), controllerConfig.Policy)
	return a, nil
}

// startSetup 在后台执行 Setup，结果写入 setupDone
func (a *App) startSetup() {
	ctx := a.ctx
	var cancel context.CancelFunc = func() {}
	if timeout := a.sceneConfig.Setup.Timeout; timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	started := time.Now()
	go func() {
		defer cancel()
		err := a.controller.Setup(ctx)
		log.Printf("[App] Setup finished in %v", time.Since(started).Round(time.Millisecond))
		a.setupDone <- err
	}()
}

// Update 更新逻辑
// 每个 tick 调用一次
func (a *App) Update() error {
	a.updateWindow()

	for _, action := range readActions() {
		if err := a.Apply(action); err != nil {
			return err
		}
	}
	return a.step()
}

// step 检查 Setup 结果并推进一帧
func (a *App) step() error {
	if !a.ready {
		select {
		case err := <-a.setupDone:
			a.ready = true
			a.setupErr = err
			if err != nil {
				var setupErr *controller.SetupError
				if errors.As(err, &setupErr) {
					log.Printf("[App] Setup failed at command #%d: %v", setupErr.Index, setupErr.Err)
				} else {
					log.Printf("[App] Setup failed: %v", err)
				}
			}
			if a.settings.GetSettings().AutoStart {
				a.controller.Animate()
			}
		default:
		}
	}

	a.scheduler.Pump()
	return a.controller.Err()
}

// Apply 执行一个用户操作
//
// 返回 ebiten.Termination 表示退出
func (a *App) Apply(action Action) error {
	target := a.controller.Scene()

	switch action {
	case ActionToggleAnimation:
		if !a.ready {
			log.Printf("[App] Setup still running, animation not started")
			return nil
		}
		if a.controller.Running() {
			a.controller.StopAnimation()
		} else {
			a.controller.Animate()
		}
	case ActionUndo:
		if !a.invoker.Undo(target) {
			log.Printf("[App] Nothing to undo")
		}
	case ActionRedo:
		if !a.invoker.Redo(target) {
			log.Printf("[App] Nothing to redo")
		}
	case ActionAddCube, ActionAddTorus:
		cmd := a.spawnCommand(action)
		if err := a.invoker.ExecuteCommand(a.ctx, cmd, target); err != nil {
			log.Printf("[App] %v", err)
			return nil
		}
		a.controller.AddCommand(cmd)
	case ActionToggleHUD:
		a.settings.SetShowHUD(!a.settings.GetSettings().ShowHUD)
	case ActionToggleFullscreen:
		a.toggleFullscreen()
	case ActionQuit:
		return ebiten.Termination
	}
	return nil
}

// spawnColors 按键添加对象时轮换使用的颜色
var spawnColors = []string{"lime", "yellow", "cyan", "magenta", "orange", "white"}

// spawnCommand 创建一个新的对象命令，位置在视野内按网格排布
func (a *App) spawnCommand(action Action) command.Command {
	n := a.spawned
	a.spawned++

	position := [3]float64{
		-3 + float64(n%7),
		1.5 - float64((n/7)%3)*1.5,
		-7,
	}
	clr := spawnColors[n%len(spawnColors)]
	speed := a.sceneConfig.Loop.RotationSpeed

	if action == ActionAddTorus {
		attrs := commands.DefaultTorusAttributes()
		attrs.Position = position
		attrs.Radius, attrs.Tube = 0.4, 0.12
		attrs.Color = clr
		cmd := commands.NewAddTorusCommand(commands.StaticProvider[commands.TorusAttributes]{Value: attrs})
		cmd.SetRotationSpeed(speed)
		return cmd
	}

	cmd := commands.NewAddCubeCommand(commands.StaticProvider[commands.CubeAttributes]{
		Value: commands.CubeAttributes{Position: position, Size: 0.8, Color: clr},
	})
	cmd.SetRotationSpeed(speed)
	return cmd
}

// Draw 绘制画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	if d, ok := a.surface.(interface{ DrawTo(*ebiten.Image) }); ok {
		d.DrawTo(screen)
	}
	if a.hud != nil && a.settings.GetSettings().ShowHUD {
		a.hud.draw(screen, a.Status())
	}
}

// Layout 返回逻辑屏幕尺寸
// 窗口尺寸变化时发布 resize 事件，渲染表面和相机随之更新
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 &&
		(outsideWidth != a.layoutWidth || outsideHeight != a.layoutHeight) {
		a.layoutWidth, a.layoutHeight = outsideWidth, outsideHeight
		a.bridge.Emit(event.TopicResize, event.Size{Width: outsideWidth, Height: outsideHeight})
		if !a.settings.GetSettings().Fullscreen {
			a.settings.SetWindowSize(outsideWidth, outsideHeight)
		}
	}
	return a.layoutWidth, a.layoutHeight
}

// Close 停止动画、取消未完成的 Setup 并保存设置
func (a *App) Close() {
	a.cancel()
	a.controller.Close()
	if err := a.settings.Save(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// Status 当前状态快照（供 HUD 和日志使用）
type Status struct {
	Ready    bool
	Running  bool
	Objects  int
	Commands int
	Done     int
	Undone   int
	Frames   uint64
	SetupErr error
}

// Status 返回当前状态
func (a *App) Status() Status {
	return Status{
		Ready:    a.ready,
		Running:  a.controller.Running(),
		Objects:  a.controller.Scene().Len(),
		Commands: len(a.controller.Commands()),
		Done:     len(a.invoker.Done()),
		Undone:   len(a.invoker.Undone()),
		Frames:   a.controller.Frames(),
		SetupErr: a.setupErr,
	}
}

// Controller 返回场景控制器
func (a *App) Controller() *controller.Controller {
	return a.controller
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}

// toggleFullscreen F11 切换全屏
func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		// 退出全屏
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		a.settings.SetFullscreen(false)
		log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		return
	}
	ebiten.SetFullscreen(true)
	a.settings.SetFullscreen(true)
}

// updateWindow 处理退出全屏后的延迟窗口尺寸恢复
func (a *App) updateWindow() {
	if !a.pendingWindowSizeReset {
		return
	}
	a.windowSizeResetCountdown--
	if a.windowSizeResetCountdown <= 0 {
		w, h := a.settings.WindowSize(a.sceneConfig.Window.Width, a.sceneConfig.Window.Height)
		ebiten.SetWindowSize(w, h)
		log.Printf("[App] Delayed SetWindowSize(%d, %d)", w, h)
		a.pendingWindowSizeReset = false
	}
}
