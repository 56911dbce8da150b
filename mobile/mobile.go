//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包。
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
// 此文件仅在使用 -tags mobile 构建时编译。
//
//	# Android
//	cp -r data mobile/data && ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.cmdscene -o build/android/cmdscene.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	cp -r data mobile/data && ebitenmobile bind -target ios -tags mobile -o build/ios/CmdScene.xcframework -v ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/cmdscene/pkg/app"
	"github.com/decker502/cmdscene/pkg/config"
	"github.com/decker502/cmdscene/pkg/embedded"
	"github.com/decker502/cmdscene/pkg/settings"
)

func init() {
	// 移动端没有工作目录下的 data/，配置和 dataFile 都从嵌入文件读取
	embedded.Init(dataFS)

	data, err := embedded.ReadFile("data/scene.yaml")
	if err != nil {
		log.Fatalf("读取嵌入配置失败: %v", err)
	}
	sceneConfig, err := config.ParseSceneConfig(data)
	if err != nil {
		log.Fatalf("场景配置无效: %v", err)
	}
	sceneConfig.DataFS = embedded.FS()

	settingsManager, err := settings.Open("cmdscene")
	if err != nil {
		log.Printf("[mobile] Warning: %v", err)
	}

	sceneApp, err := app.NewApp(app.Config{
		Verbose:  true,
		Scene:    sceneConfig,
		Settings: settingsManager,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	// 注册到 ebitenmobile
	mobile.SetGame(sceneApp)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
