package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action 用户操作
type Action int

const (
	ActionNone Action = iota
	ActionToggleAnimation
	ActionUndo
	ActionRedo
	ActionAddCube
	ActionAddTorus
	ActionToggleHUD
	ActionToggleFullscreen
	ActionQuit
)

// keyBindings 按键到操作的映射
var keyBindings = []struct {
	key    ebiten.Key
	action Action
}{
	{ebiten.KeySpace, ActionToggleAnimation},
	{ebiten.KeyZ, ActionUndo},
	{ebiten.KeyY, ActionRedo},
	{ebiten.KeyC, ActionAddCube},
	{ebiten.KeyT, ActionAddTorus},
	{ebiten.KeyH, ActionToggleHUD},
	{ebiten.KeyF11, ActionToggleFullscreen},
	{ebiten.KeyEscape, ActionQuit},
}

// readActions 返回本帧刚按下的按键对应的操作
func readActions() []Action {
	var actions []Action
	for _, b := range keyBindings {
		if inpututil.IsKeyJustPressed(b.key) {
			actions = append(actions, b.action)
		}
	}
	return actions
}
