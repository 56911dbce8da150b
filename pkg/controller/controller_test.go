package controller

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/decker502/cmdscene/pkg/command"
	"github.com/decker502/cmdscene/pkg/commands"
	"github.com/decker502/cmdscene/pkg/event"
	"github.com/decker502/cmdscene/pkg/render"
	"github.com/decker502/cmdscene/pkg/scene"
)

// traceLog collects the order of surface and command calls within ticks.
type traceLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *traceLog) add(s string) {
	l.mu.Lock()
	l.entries = append(l.entries, s)
	l.mu.Unlock()
}

func (l *traceLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// traceSurface is a render.Surface that records calls.
type traceSurface struct {
	*render.HeadlessSurface
	log         *traceLog
	panicRender bool
}

func (s *traceSurface) Clear() {
	s.log.add("clear")
	s.HeadlessSurface.Clear()
}

func (s *traceSurface) Render(sc *scene.Scene, cam *render.Camera) {
	if s.panicRender {
		panic("render exploded")
	}
	s.log.add("render")
	s.HeadlessSurface.Render(sc, cam)
}

// traceCommand is a command.Command that records Update calls.
type traceCommand struct {
	name     string
	log      *traceLog
	panicAt  int
	updates  int
	executed bool
	onUpdate func()
}

func (c *traceCommand) String() string { return c.name }

func (c *traceCommand) Execute(ctx context.Context, target command.Target) error {
	c.executed = true
	return nil
}

func (c *traceCommand) Update() {
	c.updates++
	if c.onUpdate != nil {
		c.onUpdate()
	}
	if c.panicAt > 0 && c.updates == c.panicAt {
		panic(errors.New("update exploded"))
	}
	if c.log != nil {
		c.log.add("update:" + c.name)
	}
}

func (c *traceCommand) Undo(target command.Target) {}
func (c *traceCommand) Redo(target command.Target) {}

func newTestController(t *testing.T) (*Controller, *HostScheduler, *render.HeadlessSurface) {
	t.Helper()
	surface := render.NewHeadlessSurface(0, 0)
	sched := NewHostScheduler()
	c := New(DefaultConfig(), surface, sched, nil)
	t.Cleanup(c.Close)
	return c, sched, surface
}

func pump(sched *HostScheduler, n int) {
	for i := 0; i < n; i++ {
		sched.Pump()
	}
}

func cubeCommand() *commands.AddCubeCommand {
	return commands.NewAddCubeCommand(commands.StaticProvider[commands.CubeAttributes]{Value: commands.DefaultCubeAttributes()})
}

func torusCommand() *commands.AddTorusCommand {
	attrs := commands.DefaultTorusAttributes()
	attrs.Position = [3]float64{2, 0, -5}
	return commands.NewAddTorusCommand(commands.StaticProvider[commands.TorusAttributes]{Value: attrs})
}

// TestNewController verifies the initial state.
func TestNewController(t *testing.T) {
	c, _, surface := newTestController(t)
	if c.Running() {
		t.Error("Controller should start stopped")
	}
	if c.Handle() != 0 {
		t.Errorf("Handle should be 0, got %d", c.Handle())
	}
	if w, h := surface.Size(); w != 800 || h != 600 {
		t.Errorf("Surface size: got %dx%d, want 800x600", w, h)
	}
	if math.Abs(c.Camera().Aspect()-800.0/600.0) > 1e-9 {
		t.Errorf("Camera aspect: got %v", c.Camera().Aspect())
	}
	if c.Scene() == nil || c.Bridge() == nil || c.Surface() == nil {
		t.Error("Scene/Bridge/Surface should be non-nil")
	}
}

// TestRotatingCubeAndRing runs N ticks over a cube and a ring and checks
// each axis rotated N increments.
func TestRotatingCubeAndRing(t *testing.T) {
	c, sched, surface := newTestController(t)
	cube, torus := cubeCommand(), torusCommand()
	c.AddCommand(cube)
	c.AddCommand(torus)

	if err := c.Setup(context.Background()); err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	if c.Scene().Len() != 2 {
		t.Fatalf("Expected 2 objects after Setup, got %d", c.Scene().Len())
	}

	const n = 120
	c.Animate()
	pump(sched, n)

	want := n * commands.DefaultRotationSpeed
	for _, obj := range []*scene.Object{cube.Object(), torus.Object()} {
		for axis, got := range obj.Rotation() {
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("%s axis %d: got %v, want %v", obj.Name(), axis, got, want)
			}
		}
	}
	if c.Frames() != n {
		t.Errorf("Frames: got %d, want %d", c.Frames(), n)
	}
	if surface.Clears() != n || surface.Renders() != n {
		t.Errorf("Surface calls: clears=%d renders=%d, want %d", surface.Clears(), surface.Renders(), n)
	}
	if len(surface.Segments()) == 0 {
		t.Error("Expected projected segments from the last frame")
	}
}

// TestTickOrder verifies clear → update (registry order) → render per tick.
func TestTickOrder(t *testing.T) {
	trace := &traceLog{}
	surface := &traceSurface{HeadlessSurface: render.NewHeadlessSurface(0, 0), log: trace}
	sched := NewHostScheduler()
	c := New(DefaultConfig(), surface, sched, nil)
	defer c.Close()

	c.AddCommand(&traceCommand{name: "a", log: trace})
	c.AddCommand(&traceCommand{name: "b", log: trace})
	c.Animate()
	pump(sched, 2)

	want := []string{"clear", "update:a", "update:b", "render", "clear", "update:a", "update:b", "render"}
	got := trace.snapshot()
	if len(got) != len(want) {
		t.Fatalf("Trace: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Trace[%d]: got %q, want %q (%v)", i, got[i], want[i], got)
		}
	}
}

// TestSetupFailureBestEffort: one failing provider fails Setup, the other object remains.
func TestSetupFailureBestEffort(t *testing.T) {
	c, _, _ := newTestController(t)
	errFetch := errors.New("provider rejected")

	failing := commands.NewAddCubeCommand(commands.DelayedProvider[commands.CubeAttributes]{
		Err:   errFetch,
		Delay: time.Millisecond,
	})
	ok := torusCommand()
	c.AddCommand(failing)
	c.AddCommand(ok)

	var notified error
	c.Bridge().Subscribe(event.TopicSetupDone, func(p any) {
		notified, _ = p.(error)
	})

	err := c.Setup(context.Background())
	if err == nil {
		t.Fatal("Expected Setup to fail")
	}
	var setupErr *SetupError
	if !errors.As(err, &setupErr) {
		t.Fatalf("Expected *SetupError, got %T", err)
	}
	if setupErr.Index != 0 || setupErr.Command != command.Command(failing) {
		t.Errorf("SetupError: index=%d command=%v", setupErr.Index, setupErr.Command)
	}
	if !errors.Is(err, errFetch) {
		t.Errorf("Expected wrapped provider error, got %v", err)
	}
	if notified != err {
		t.Errorf("setup.done payload: got %v", notified)
	}

	if !c.Scene().Contains(ok.Object()) {
		t.Error("Independently successful object should remain in the scene")
	}
	if failing.Object() != nil {
		t.Error("Failed command should not own an object")
	}
}

// TestSetupFailureRollback: under rollback, succeeded commands are undone.
func TestSetupFailureRollback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = SetupRollback
	c := New(cfg, render.NewHeadlessSurface(0, 0), NewHostScheduler(), nil)
	defer c.Close()

	cube, torus := cubeCommand(), torusCommand()
	c.AddCommand(cube)
	c.AddCommand(commands.NewAddCubeCommand(nil))
	c.AddCommand(torus)

	err := c.Setup(context.Background())
	var setupErr *SetupError
	if !errors.As(err, &setupErr) || setupErr.Index != 1 {
		t.Fatalf("Expected SetupError at index 1, got %v", err)
	}
	if !errors.Is(err, commands.ErrNoProvider) {
		t.Errorf("Expected ErrNoProvider, got %v", err)
	}
	if c.Scene().Len() != 0 {
		t.Errorf("Expected empty scene after rollback, got %d objects", c.Scene().Len())
	}
	if cube.Object() != nil || torus.Object() != nil {
		t.Error("Rolled back commands should not own objects")
	}
}

// TestSetupRunsConcurrently: each provider waits until all have started,
// which only completes when executions overlap.
func TestSetupRunsConcurrently(t *testing.T) {
	c, _, _ := newTestController(t)

	const n = 3
	var started sync.WaitGroup
	started.Add(n)
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	for i := 0; i < n; i++ {
		c.AddCommand(commands.NewAddCubeCommand(commands.FuncProvider[commands.CubeAttributes](
			func(ctx context.Context) (commands.CubeAttributes, error) {
				started.Done()
				select {
				case <-allStarted:
					return commands.DefaultCubeAttributes(), nil
				case <-ctx.Done():
					return commands.CubeAttributes{}, ctx.Err()
				}
			})))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Setup(ctx); err != nil {
		t.Fatalf("Setup error (executions did not overlap?): %v", err)
	}
	if c.Scene().Len() != n {
		t.Errorf("Expected %d objects, got %d", n, c.Scene().Len())
	}
}

// TestSetupEmptyRegistry verifies Setup with nothing registered succeeds.
func TestSetupEmptyRegistry(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.Setup(context.Background()); err != nil {
		t.Errorf("Setup on empty registry: %v", err)
	}
}

// TestStopAnimationTwice: stopping twice is safe, the handle stays zero and no ticks run.
func TestStopAnimationTwice(t *testing.T) {
	c, sched, _ := newTestController(t)
	cmd := &traceCommand{name: "a"}
	c.AddCommand(cmd)

	c.Animate()
	pump(sched, 3)
	if c.Handle() == 0 {
		t.Fatal("Expected a pending handle while running")
	}

	c.StopAnimation()
	c.StopAnimation()

	if c.Running() {
		t.Error("Controller should be stopped")
	}
	if c.Handle() != 0 {
		t.Errorf("Handle should be 0 after stop, got %d", c.Handle())
	}
	if sched.Pending() != 0 {
		t.Errorf("Expected no pending callbacks, got %d", sched.Pending())
	}
	pump(sched, 5)
	if cmd.updates != 3 || c.Frames() != 3 {
		t.Errorf("Ticks after stop: updates=%d frames=%d, want 3", cmd.updates, c.Frames())
	}
}

// TestStopWhenNeverStarted verifies stopping a stopped controller is a no-op.
func TestStopWhenNeverStarted(t *testing.T) {
	c, _, _ := newTestController(t)
	c.StopAnimation()
	if c.Running() || c.Handle() != 0 {
		t.Error("StopAnimation on a stopped controller changed state")
	}
}

// TestRestartResumesState: stopping and starting keeps accumulated rotation.
func TestRestartResumesState(t *testing.T) {
	c, sched, _ := newTestController(t)
	cube := cubeCommand()
	c.AddCommand(cube)
	if err := c.Setup(context.Background()); err != nil {
		t.Fatalf("Setup error: %v", err)
	}

	c.Animate()
	c.Animate() // already running
	pump(sched, 10)
	c.StopAnimation()
	c.Animate()
	pump(sched, 10)

	want := 20 * commands.DefaultRotationSpeed
	if got := cube.Object().Rotation()[0]; math.Abs(got-want) > 1e-9 {
		t.Errorf("Rotation after restart: got %v, want %v", got, want)
	}
	if sched.Pending() != 1 {
		t.Errorf("Expected exactly one pending tick, got %d", sched.Pending())
	}
}

// TestAddCommandWhileRunning: a command added mid-run animates from the next tick.
func TestAddCommandWhileRunning(t *testing.T) {
	c, sched, _ := newTestController(t)
	first := &traceCommand{name: "first"}
	c.AddCommand(first)
	c.Animate()
	pump(sched, 5)

	late := &traceCommand{name: "late"}
	c.AddCommand(late)
	if late.updates != 0 {
		t.Error("Late command should not be updated retroactively")
	}
	pump(sched, 2)
	if late.updates != 2 || first.updates != 7 {
		t.Errorf("Updates: late=%d first=%d, want 2 and 7", late.updates, first.updates)
	}
}

// TestRemoveCommand verifies removed commands are no longer updated.
func TestRemoveCommand(t *testing.T) {
	c, sched, _ := newTestController(t)
	a, b := &traceCommand{name: "a"}, &traceCommand{name: "b"}
	c.AddCommand(a)
	c.AddCommand(b)

	if !c.RemoveCommand(a) {
		t.Fatal("RemoveCommand returned false for a registered command")
	}
	if c.RemoveCommand(a) {
		t.Error("RemoveCommand returned true twice")
	}
	c.Animate()
	pump(sched, 3)
	if a.updates != 0 || b.updates != 3 {
		t.Errorf("Updates: a=%d b=%d", a.updates, b.updates)
	}
	if cmds := c.Commands(); len(cmds) != 1 || cmds[0] != command.Command(b) {
		t.Errorf("Commands: got %v", cmds)
	}
}

// TestUndoneCommandKeepsTicking: registry drives undone commands, which do nothing.
func TestUndoneCommandKeepsTicking(t *testing.T) {
	c, sched, _ := newTestController(t)
	inv := command.NewInvoker()
	cube := cubeCommand()
	if err := inv.ExecuteCommand(context.Background(), cube, c.Scene()); err != nil {
		t.Fatalf("ExecuteCommand error: %v", err)
	}
	c.AddCommand(cube)
	obj := cube.Object()

	c.Animate()
	pump(sched, 5)
	inv.Undo(c.Scene())
	pump(sched, 5)

	want := 5 * commands.DefaultRotationSpeed
	if got := obj.Rotation()[1]; math.Abs(got-want) > 1e-9 {
		t.Errorf("Detached object rotated: got %v, want %v", got, want)
	}
	if c.Scene().Contains(obj) {
		t.Error("Update re-attached an undone object")
	}

	inv.Redo(c.Scene())
	pump(sched, 5)
	if got := obj.Rotation()[2]; math.Abs(got-2*want) > 1e-9 {
		t.Errorf("Redone object rotation: got %v, want %v", got, 2*want)
	}
}

// TestLoopFaultStopsLoop: a panicking Update becomes a LoopFault and stops the loop.
func TestLoopFaultStopsLoop(t *testing.T) {
	c, sched, _ := newTestController(t)
	bad := &traceCommand{name: "bad", panicAt: 3}
	c.AddCommand(bad)

	var faults []error
	c.Bridge().Subscribe(event.TopicLoopFault, func(p any) {
		faults = append(faults, p.(error))
	})

	c.Animate()
	pump(sched, 10)

	if c.Running() {
		t.Error("Loop should stop after a fault")
	}
	if c.Handle() != 0 {
		t.Errorf("Handle should be 0 after a fault, got %d", c.Handle())
	}
	var fault *LoopFault
	if !errors.As(c.Err(), &fault) {
		t.Fatalf("Expected *LoopFault, got %v", c.Err())
	}
	if fault.Frame != 3 {
		t.Errorf("Fault frame: got %d, want 3", fault.Frame)
	}
	if errors.Unwrap(fault) == nil {
		t.Error("Expected the panic error to be unwrappable")
	}
	if c.Frames() != 2 {
		t.Errorf("Completed frames: got %d, want 2", c.Frames())
	}
	if len(faults) != 1 {
		t.Errorf("Expected one loop.fault event, got %d", len(faults))
	}

	// 重新启动会清除故障
	c.Animate()
	if c.Err() != nil {
		t.Error("Animate should clear the previous fault")
	}
	pump(sched, 2)
	if c.Frames() != 4 {
		t.Errorf("Frames after restart: got %d, want 4", c.Frames())
	}
}

// TestFaultAfterRestartInUpdate: an Update that restarts the loop and then
// panics leaves the loop stopped with nothing scheduled.
func TestFaultAfterRestartInUpdate(t *testing.T) {
	c, sched, _ := newTestController(t)
	bad := &traceCommand{name: "bad", panicAt: 1}
	bad.onUpdate = func() {
		c.StopAnimation()
		c.Animate()
	}
	c.AddCommand(bad)

	c.Animate()
	sched.Pump()

	if c.Running() {
		t.Error("Loop should stop after a fault")
	}
	if c.Handle() != 0 {
		t.Errorf("Handle should be 0 after a fault, got %d", c.Handle())
	}
	if n := sched.Pending(); n != 0 {
		t.Errorf("Expected no pending callbacks, got %d", n)
	}
	var fault *LoopFault
	if !errors.As(c.Err(), &fault) {
		t.Fatalf("Expected *LoopFault, got %v", c.Err())
	}

	pump(sched, 3)
	if c.Frames() != 0 {
		t.Errorf("No frame should complete, got %d", c.Frames())
	}
}

// TestFrameEvents: loop.frame is emitted once per completed tick and a
// handler can stop the loop at an exact frame.
func TestFrameEvents(t *testing.T) {
	c, sched, surface := newTestController(t)
	c.AddCommand(&traceCommand{name: "a"})

	var seen []uint64
	c.Bridge().Subscribe(event.TopicFrame, func(p any) {
		frame := p.(uint64)
		seen = append(seen, frame)
		if frame == 5 {
			c.StopAnimation()
		}
	})

	c.Animate()
	pump(sched, 20)

	if c.Frames() != 5 || surface.Renders() != 5 {
		t.Errorf("Expected exactly 5 frames, got frames=%d renders=%d", c.Frames(), surface.Renders())
	}
	if len(seen) != 5 || seen[0] != 1 || seen[4] != 5 {
		t.Errorf("Frame events: got %v", seen)
	}
	if sched.Pending() != 0 {
		t.Errorf("Expected no pending callbacks, got %d", sched.Pending())
	}
}

// TestRenderFault verifies a panicking surface is reported the same way.
func TestRenderFault(t *testing.T) {
	surface := &traceSurface{HeadlessSurface: render.NewHeadlessSurface(0, 0), log: &traceLog{}, panicRender: true}
	sched := NewHostScheduler()
	c := New(DefaultConfig(), surface, sched, nil)
	defer c.Close()

	c.Animate()
	pump(sched, 1)

	var fault *LoopFault
	if !errors.As(c.Err(), &fault) || fault.Frame != 1 {
		t.Fatalf("Expected LoopFault at frame 1, got %v", c.Err())
	}
	if errors.Unwrap(fault) != nil {
		t.Error("A string panic should not unwrap to an error")
	}
}

// TestResizeEvent: the resize signal updates surface and camera in any state.
func TestResizeEvent(t *testing.T) {
	c, sched, surface := newTestController(t)

	c.Bridge().Emit(event.TopicResize, event.Size{Width: 1000, Height: 500})
	if w, h := surface.Size(); w != 1000 || h != 500 {
		t.Errorf("Surface size while stopped: got %dx%d", w, h)
	}
	if c.Camera().Aspect() != 2 {
		t.Errorf("Aspect while stopped: got %v, want 2", c.Camera().Aspect())
	}

	c.Animate()
	pump(sched, 1)
	c.Resize(300, 300)
	if c.Camera().Aspect() != 1 {
		t.Errorf("Aspect while running: got %v, want 1", c.Camera().Aspect())
	}

	c.Resize(0, 100)
	c.Bridge().Emit(event.TopicResize, "not a size")
	if w, h := surface.Size(); w != 300 || h != 300 {
		t.Errorf("Invalid resize changed size to %dx%d", w, h)
	}

	c.Close()
	c.Bridge().Emit(event.TopicResize, event.Size{Width: 640, Height: 480})
	if w, _ := surface.Size(); w != 300 {
		t.Error("Resize event handled after Close")
	}
}

// TestLoopEvents verifies started/stopped notifications.
func TestLoopEvents(t *testing.T) {
	c, _, _ := newTestController(t)
	var got []string
	c.Bridge().Subscribe(event.TopicLoopStarted, func(any) { got = append(got, "started") })
	c.Bridge().Subscribe(event.TopicLoopStopped, func(any) { got = append(got, "stopped") })

	c.Animate()
	c.StopAnimation()
	c.StopAnimation()

	if len(got) != 2 || got[0] != "started" || got[1] != "stopped" {
		t.Errorf("Events: got %v", got)
	}
}

// TestParseSetupPolicy covers accepted spellings.
func TestParseSetupPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    SetupPolicy
		wantErr bool
	}{
		{"", SetupBestEffort, false},
		{"best-effort", SetupBestEffort, false},
		{"Rollback", SetupRollback, false},
		{"sometimes", SetupBestEffort, true},
	}
	for _, tt := range tests {
		got, err := ParseSetupPolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSetupPolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
	if SetupRollback.String() != "rollback" || SetupBestEffort.String() != "best-effort" {
		t.Error("Unexpected SetupPolicy.String()")
	}
}
