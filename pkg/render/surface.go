// Package render draws the scene through a perspective camera onto a
// render surface.
package render

import (
	"sync"

	"github.com/decker502/cmdscene/pkg/scene"
)

// Surface is the output a scene is rendered to.
type Surface interface {
	// SetSize changes the output dimensions in pixels.
	SetSize(width, height int)
	// Size returns the output dimensions in pixels.
	Size() (width, height int)
	// Clear erases the previous frame.
	Clear()
	// Render draws the current state of s as seen by cam.
	Render(s *scene.Scene, cam *Camera)
}

// HeadlessSurface renders to memory. It keeps the projected segments of
// the last frame and counts clears and renders.
type HeadlessSurface struct {
	mu       sync.Mutex
	width    int
	height   int
	clears   int
	renders  int
	segments []Segment
}

var _ Surface = (*HeadlessSurface)(nil)

// NewHeadlessSurface creates a headless surface of the given size.
func NewHeadlessSurface(width, height int) *HeadlessSurface {
	return &HeadlessSurface{width: width, height: height}
}

// SetSize implements Surface.
func (h *HeadlessSurface) SetSize(width, height int) {
	h.mu.Lock()
	h.width, h.height = width, height
	h.mu.Unlock()
}

// Size implements Surface.
func (h *HeadlessSurface) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

// Clear implements Surface.
func (h *HeadlessSurface) Clear() {
	h.mu.Lock()
	h.clears++
	h.segments = nil
	h.mu.Unlock()
}

// Render implements Surface.
func (h *HeadlessSurface) Render(s *scene.Scene, cam *Camera) {
	w, ht := h.Size()
	segments := ProjectScene(s, cam, w, ht)

	h.mu.Lock()
	h.renders++
	h.segments = segments
	h.mu.Unlock()
}

// Clears returns how many times Clear was called.
func (h *HeadlessSurface) Clears() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clears
}

// Renders returns how many times Render was called.
func (h *HeadlessSurface) Renders() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.renders
}

// Segments returns the segments drawn by the last Render.
func (h *HeadlessSurface) Segments() []Segment {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Segment(nil), h.segments...)
}
