package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/cmdscene/pkg/app"
	"github.com/decker502/cmdscene/pkg/config"
	"github.com/decker502/cmdscene/pkg/embedded"
	"github.com/decker502/cmdscene/pkg/settings"
)

var (
	configPath = flag.String("config", "data/scene.yaml", "场景配置文件路径")
	verbose    = flag.Bool("verbose", false, "启用详细日志输出")
)

func main() {
	flag.Parse()
	embedded.Init(dataFS)

	sceneConfig, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载场景配置失败: %v", err)
	}

	overrides, err := config.ParseEnv(nil)
	if err != nil {
		log.Fatalf("读取环境变量失败: %v", err)
	}
	if err := overrides.Apply(sceneConfig); err != nil {
		log.Fatalf("环境变量覆盖无效: %v", err)
	}

	settingsManager, err := settings.Open("cmdscene")
	if err != nil {
		// 降级为仅内存设置
		log.Printf("[main] Warning: %v", err)
	}

	game, err := app.NewApp(app.Config{
		Verbose:  *verbose || overrides.Verbose,
		Scene:    sceneConfig,
		Settings: settingsManager,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer game.Close()

	width, height := settingsManager.WindowSize(sceneConfig.Window.Width, sceneConfig.Window.Height)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(sceneConfig.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(sceneConfig.Loop.TPS)
	ebiten.SetFullscreen(settingsManager.GetSettings().Fullscreen)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		game.Close()
		log.Fatal(err)
	}
}

// loadConfig 加载配置文件
// 磁盘上不存在时回退到嵌入的同名文件，dataFile 也从嵌入文件系统读取
func loadConfig(path string) (*config.SceneConfig, error) {
	sceneConfig, err := config.LoadSceneConfig(path)
	if err == nil || !errors.Is(err, os.ErrNotExist) || !embedded.Exists(path) {
		return sceneConfig, err
	}

	log.Printf("[main] %s not found on disk, using embedded copy", path)
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sceneConfig, err = config.ParseSceneConfig(data)
	if err != nil {
		return nil, err
	}
	sceneConfig.DataFS = embedded.FS()
	return sceneConfig, nil
}
