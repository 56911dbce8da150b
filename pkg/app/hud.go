package app

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

const hudHelp = "Space start/stop  Z undo  Y redo  C cube  T torus  H hud  F11 fullscreen  Esc quit"

// hud 状态叠加层
type hud struct {
	face       *text.GoTextFace
	lineHeight float64
}

// newHUD 使用内置 Go Regular 字体创建 HUD
func newHUD() (*hud, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("无法创建字体源: %w", err)
	}
	face := &text.GoTextFace{
		Source:    source,
		Size:      14,
		Direction: text.DirectionLeftToRight,
	}
	return &hud{face: face, lineHeight: 18}, nil
}

func (h *hud) draw(screen *ebiten.Image, s Status) {
	lines := statusLines(s)
	lines = append(lines, hudHelp)
	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(8, 8+float64(i)*h.lineHeight)
		op.ColorScale.ScaleWithColor(color.RGBA{220, 220, 220, 255})
		text.Draw(screen, line, h.face, op)
	}
}

// statusLines 格式化状态文本
func statusLines(s Status) []string {
	state := "loading"
	switch {
	case s.Ready && s.Running:
		state = "running"
	case s.Ready:
		state = "stopped"
	}
	lines := []string{
		fmt.Sprintf("%s  frame %d", state, s.Frames),
		fmt.Sprintf("objects %d  commands %d  undo %d  redo %d", s.Objects, s.Commands, s.Done, s.Undone),
	}
	if s.SetupErr != nil {
		lines = append(lines, "setup: "+s.SetupErr.Error())
	}
	return lines
}
