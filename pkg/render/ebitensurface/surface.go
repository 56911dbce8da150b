// Package ebitensurface implements render.Surface on an ebiten image.
// It is kept apart from package render so headless builds do not link
// the windowing library.
package ebitensurface

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/cmdscene/pkg/render"
	"github.com/decker502/cmdscene/pkg/scene"
)

// Surface rasterizes wireframes into an offscreen ebiten image.
// The game's Draw copies that image to the screen with DrawTo.
type Surface struct {
	mu         sync.Mutex
	width      int
	height     int
	background color.Color
	lineWidth  float32
	offscreen  *ebiten.Image
}

var _ render.Surface = (*Surface)(nil)

// New creates a surface. The offscreen image is allocated
// on first use.
func New(width, height int, background color.Color) *Surface {
	return &Surface{
		width:      width,
		height:     height,
		background: background,
		lineWidth:  1,
	}
}

// SetLineWidth changes the stroke width used for edges.
func (e *Surface) SetLineWidth(w float32) {
	e.mu.Lock()
	e.lineWidth = w
	e.mu.Unlock()
}

// SetSize implements Surface. The offscreen image is reallocated on the
// next Clear.
func (e *Surface) SetSize(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if width == e.width && height == e.height {
		return
	}
	e.width, e.height = width, height
	if e.offscreen != nil {
		e.offscreen.Deallocate()
		e.offscreen = nil
	}
}

// Size implements Surface.
func (e *Surface) Size() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

// Clear implements Surface.
func (e *Surface) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	img := e.image()
	if img == nil {
		return
	}
	img.Fill(e.background)
}

// Render implements Surface.
func (e *Surface) Render(s *scene.Scene, cam *render.Camera) {
	e.mu.Lock()
	defer e.mu.Unlock()
	img := e.image()
	if img == nil {
		return
	}
	for _, seg := range render.ProjectScene(s, cam, e.width, e.height) {
		vector.StrokeLine(img,
			float32(seg.X0), float32(seg.Y0),
			float32(seg.X1), float32(seg.Y1),
			e.lineWidth, seg.Color, true)
	}
}

// DrawTo copies the last rendered frame onto screen.
func (e *Surface) DrawTo(screen *ebiten.Image) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.offscreen == nil {
		screen.Fill(e.background)
		return
	}
	screen.DrawImage(e.offscreen, &ebiten.DrawImageOptions{})
}

// image returns the offscreen image, allocating it when needed.
// mu must be held.
func (e *Surface) image() *ebiten.Image {
	if e.width <= 0 || e.height <= 0 {
		return nil
	}
	if e.offscreen == nil {
		e.offscreen = ebiten.NewImage(e.width, e.height)
	}
	return e.offscreen
}
