// Package controller drives the per-frame loop over a registry of scene
// commands and owns the scene, the render surface and the camera.
package controller

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/decker502/cmdscene/pkg/command"
	"github.com/decker502/cmdscene/pkg/event"
	"github.com/decker502/cmdscene/pkg/render"
	"github.com/decker502/cmdscene/pkg/scene"
)

// SetupPolicy decides what happens to commands that executed
// successfully when another command fails during Setup.
type SetupPolicy int

const (
	// SetupBestEffort leaves successful commands applied.
	SetupBestEffort SetupPolicy = iota
	// SetupRollback undoes successful commands, newest registry entry first.
	SetupRollback
)

func (p SetupPolicy) String() string {
	switch p {
	case SetupBestEffort:
		return "best-effort"
	case SetupRollback:
		return "rollback"
	default:
		return fmt.Sprintf("SetupPolicy(%d)", int(p))
	}
}

// ParseSetupPolicy parses "best-effort" or "rollback".
func ParseSetupPolicy(s string) (SetupPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "best-effort", "besteffort":
		return SetupBestEffort, nil
	case "rollback":
		return SetupRollback, nil
	default:
		return SetupBestEffort, fmt.Errorf("unknown setup policy %q", s)
	}
}

// Config 控制器配置
type Config struct {
	// Width, Height 渲染表面初始尺寸（像素）
	Width  int
	Height int
	// FOV 垂直视角（度）；Near/Far 裁剪面
	FOV  float64
	Near float64
	Far  float64
	// Policy Setup 失败时的处理策略
	Policy SetupPolicy
}

// DefaultConfig returns an 800x600 surface and the default camera.
func DefaultConfig() Config {
	return Config{
		Width:  800,
		Height: 600,
		FOV:    render.DefaultFOV,
		Near:   render.DefaultNear,
		Far:    render.DefaultFar,
		Policy: SetupBestEffort,
	}
}

// Controller owns a scene, its render surface and camera, and the
// ordered registry of commands it animates every frame.
//
// The loop is either stopped (initial) or running. While running, each
// tick clears the surface, calls Update on every registered command in
// registry order, renders, and schedules the next tick.
type Controller struct {
	scene     *scene.Scene
	surface   render.Surface
	camera    *render.Camera
	scheduler Scheduler
	bridge    *event.Bridge
	policy    SetupPolicy
	resizeSub event.Subscription

	mu       sync.Mutex
	registry []command.Command
	running  bool
	handle   FrameHandle
	gen      uint64 // 每次 Animate/Stop 递增，用于丢弃过期回调
	frames   uint64
	fault    error
}

// New creates a stopped controller. The surface is sized from cfg and
// the controller subscribes to event.TopicResize on bridge (a new
// bridge is created when bridge is nil).
func New(cfg Config, surface render.Surface, scheduler Scheduler, bridge *event.Bridge) *Controller {
	if bridge == nil {
		bridge = event.NewBridge()
	}
	def := DefaultConfig()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.FOV <= 0 {
		cfg.FOV = def.FOV
	}
	if cfg.Near <= 0 {
		cfg.Near = def.Near
	}
	if cfg.Far <= cfg.Near {
		cfg.Far = def.Far
	}

	c := &Controller{
		scene:     scene.New(),
		surface:   surface,
		camera:    render.NewPerspectiveCamera(cfg.FOV, float64(cfg.Width)/float64(cfg.Height), cfg.Near, cfg.Far),
		scheduler: scheduler,
		bridge:    bridge,
		policy:    cfg.Policy,
		registry:  make([]command.Command, 0),
	}
	surface.SetSize(cfg.Width, cfg.Height)
	c.resizeSub = bridge.Subscribe(event.TopicResize, func(payload any) {
		if size, ok := payload.(event.Size); ok {
			c.Resize(size.Width, size.Height)
		}
	})
	return c
}

// Scene returns the scene commands are executed against.
func (c *Controller) Scene() *scene.Scene { return c.scene }

// Camera returns the controller's camera.
func (c *Controller) Camera() *render.Camera { return c.camera }

// Surface returns the controller's render surface.
func (c *Controller) Surface() render.Surface { return c.surface }

// Bridge returns the event bridge the controller publishes on.
func (c *Controller) Bridge() *event.Bridge { return c.bridge }

// AddCommand appends cmd to the registry. A command added while the
// loop is running is updated from the next tick on.
func (c *Controller) AddCommand(cmd command.Command) {
	c.mu.Lock()
	c.registry = append(c.registry, cmd)
	n := len(c.registry)
	c.mu.Unlock()

	log.Printf("[SceneController] Registered %s (registry=%d)", command.Describe(cmd), n)
	c.bridge.Emit(event.TopicCommandAdded, cmd)
}

// RemoveCommand drops cmd from the registry so it is no longer updated.
// It does not undo the command. Returns false when cmd is not registered.
func (c *Controller) RemoveCommand(cmd command.Command) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, r := range c.registry {
		if r == cmd {
			c.registry = append(c.registry[:i:i], c.registry[i+1:]...)
			return true
		}
	}
	return false
}

// Commands returns a snapshot of the registry in insertion order.
func (c *Controller) Commands() []command.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]command.Command(nil), c.registry...)
}

// Setup executes every registered command against the scene. All
// executions are started in registry order without waiting for each
// other; Setup returns once all of them have finished.
//
// If any command fails, Setup returns a *SetupError for the first
// failure observed. Under SetupRollback, commands that succeeded are
// then undone; under SetupBestEffort they stay in the scene.
func (c *Controller) Setup(ctx context.Context) error {
	cmds := c.Commands()
	applied := make([]bool, len(cmds))

	var g errgroup.Group
	for i, cmd := range cmds {
		i, cmd := i, cmd
		g.Go(func() error {
			if err := cmd.Execute(ctx, c.scene); err != nil {
				log.Printf("[SceneController] Setup: %s (#%d) failed: %v", command.Describe(cmd), i, err)
				return &SetupError{Index: i, Command: cmd, Err: err}
			}
			applied[i] = true
			return nil
		})
	}
	err := g.Wait()

	if err != nil && c.policy == SetupRollback {
		for i := len(cmds) - 1; i >= 0; i-- {
			if applied[i] {
				cmds[i].Undo(c.scene)
			}
		}
		log.Printf("[SceneController] Setup rolled back")
	}
	if err == nil {
		log.Printf("[SceneController] Setup complete: %d command(s), %d object(s)", len(cmds), c.scene.Len())
	}

	c.bridge.Emit(event.TopicSetupDone, err)
	return err
}

// Animate starts the frame loop. Calling it while running does nothing.
// A fault from a previous run is cleared.
func (c *Controller) Animate() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.fault = nil
	c.gen++
	c.scheduleLocked()
	c.mu.Unlock()

	log.Printf("[SceneController] Animation started")
	c.bridge.Emit(event.TopicLoopStarted, nil)
}

// StopAnimation stops the frame loop and cancels the pending tick.
// Stopping an already stopped loop does nothing.
func (c *Controller) StopAnimation() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.gen++
	if c.handle != 0 {
		c.scheduler.Cancel(c.handle)
		c.handle = 0
	}
	frames := c.frames
	c.mu.Unlock()

	log.Printf("[SceneController] Animation stopped after %d frame(s)", frames)
	c.bridge.Emit(event.TopicLoopStopped, frames)
}

// Running reports whether the frame loop is running.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Handle returns the pending frame handle, or 0 when none is scheduled.
func (c *Controller) Handle() FrameHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// Frames returns the number of completed ticks.
func (c *Controller) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Err returns the fault that stopped the loop, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fault
}

// Resize updates the surface dimensions and the camera aspect ratio.
// It works whether or not the loop is running.
func (c *Controller) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if w, h := c.surface.Size(); w == width && h == height {
		return
	}
	c.surface.SetSize(width, height)
	c.camera.SetAspect(float64(width) / float64(height))
	log.Printf("[SceneController] Resized to %dx%d (aspect=%.3f)", width, height, c.camera.Aspect())
}

// Close stops the loop and detaches from the event bridge.
func (c *Controller) Close() {
	c.StopAnimation()
	c.bridge.Unsubscribe(c.resizeSub)
}

// scheduleLocked requests the next tick. mu must be held.
func (c *Controller) scheduleLocked() {
	gen := c.gen
	c.handle = c.scheduler.Schedule(func() { c.tick(gen) })
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if !c.running || c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.handle = 0
	cmds := append([]command.Command(nil), c.registry...)
	frame := c.frames + 1
	c.mu.Unlock()

	if err := c.renderFrame(frame, cmds); err != nil {
		// 故障停止循环，包括帧内 Stop/Animate 重启后的新一轮
		c.mu.Lock()
		c.running = false
		c.gen++
		c.fault = err
		if c.handle != 0 {
			c.scheduler.Cancel(c.handle)
			c.handle = 0
		}
		c.mu.Unlock()

		log.Printf("[SceneController] %v; animation stopped", err)
		c.bridge.Emit(event.TopicLoopFault, err)
		return
	}

	c.mu.Lock()
	c.frames = frame
	if c.running && c.gen == gen {
		c.scheduleLocked()
	}
	c.mu.Unlock()

	c.bridge.Emit(event.TopicFrame, frame)
}

// renderFrame runs one clear/update/render pass and converts a panic
// into a *LoopFault.
func (c *Controller) renderFrame(frame uint64, cmds []command.Command) (fault error) {
	defer func() {
		if r := recover(); r != nil {
			fault = &LoopFault{Frame: frame, Cause: r}
		}
	}()

	c.surface.Clear()
	for _, cmd := range cmds {
		cmd.Update()
	}
	c.surface.Render(c.scene, c.camera)
	return nil
}
