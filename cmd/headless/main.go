// headless 在无窗口环境下运行场景若干帧，并打印每个对象最终的旋转
//
// 用法:
//
//	go run ./cmd/headless -config data/scene.yaml -frames 120
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/decker502/cmdscene/pkg/command"
	"github.com/decker502/cmdscene/pkg/config"
	"github.com/decker502/cmdscene/pkg/controller"
	"github.com/decker502/cmdscene/pkg/event"
	"github.com/decker502/cmdscene/pkg/render"
)

var (
	configPath = flag.String("config", "data/scene.yaml", "场景配置文件路径")
	frames     = flag.Uint64("frames", 120, "运行的帧数")
	verbose    = flag.Bool("verbose", false, "启用详细日志输出")
)

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "headless: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	sceneConfig, err := config.LoadSceneConfig(*configPath)
	if err != nil {
		return err
	}
	overrides, err := config.ParseEnv(nil)
	if err != nil {
		return err
	}
	if err := overrides.Apply(sceneConfig); err != nil {
		return err
	}

	bridge := event.NewBridge()
	faulted := make(chan struct{}, 1)
	bridge.Subscribe(event.TopicLoopFault, func(payload any) {
		log.Printf("[headless] loop fault: %v", payload)
		select {
		case faulted <- struct{}{}:
		default:
		}
	})

	surface := render.NewHeadlessSurface(sceneConfig.Window.Width, sceneConfig.Window.Height)
	scheduler := controller.NewTimerSchedulerTPS(sceneConfig.Loop.TPS)
	c := controller.New(sceneConfig.ControllerConfig(), surface, scheduler, bridge)
	defer c.Close()

	cmds, err := sceneConfig.BuildCommands()
	if err != nil {
		return err
	}
	for _, cmd := range cmds {
		c.AddCommand(cmd)
	}

	ctx := context.Background()
	if timeout := sceneConfig.Setup.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	started := time.Now()
	if err := c.Setup(ctx); err != nil {
		var setupErr *controller.SetupError
		if !errors.As(err, &setupErr) {
			return err
		}
		fmt.Printf("setup: %v\n", err)
	}
	fmt.Printf("setup finished in %v, %d object(s)\n", time.Since(started).Round(time.Millisecond), c.Scene().Len())

	// 在目标帧的回调里停止，帧数不会超过 -frames
	reached := make(chan struct{})
	c.Bridge().Subscribe(event.TopicFrame, func(payload any) {
		if frame, ok := payload.(uint64); ok && frame == *frames {
			c.StopAnimation()
			close(reached)
		}
	})

	if *frames > 0 {
		c.Animate()
		select {
		case <-faulted:
			return c.Err()
		case <-reached:
		}
	}

	fmt.Printf("%d frame(s), %d render(s)\n", c.Frames(), surface.Renders())
	for i, cmd := range c.Commands() {
		fmt.Printf("command #%d: %s\n", i, command.Describe(cmd))
	}
	for _, obj := range c.Scene().Objects() {
		r := obj.Rotation()
		fmt.Printf("%-6s id=%d rotation=(%.3f, %.3f, %.3f)\n", obj.Name(), obj.ID(), r[0], r[1], r[2])
	}
	return nil
}
