package commands

import (
	"sync"

	"github.com/decker502/cmdscene/pkg/command"
	"github.com/decker502/cmdscene/pkg/scene"
)

// DefaultRotationSpeed is the per-tick rotation increment, in radians,
// applied on each axis.
const DefaultRotationSpeed = 0.01

// meshSlot holds the single object a mesh command owns.
//
// owned is non-nil between Execute/Redo and Undo. Undo moves the object
// to parked so Redo can put the same instance back.
type meshSlot struct {
	mu     sync.Mutex
	owned  *scene.Object
	parked *scene.Object
	speed  float64
}

// applied reports whether the slot currently owns an object.
func (s *meshSlot) applied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owned != nil
}

// attach takes ownership of obj and adds it to target.
func (s *meshSlot) attach(target command.Target, obj *scene.Object) {
	s.mu.Lock()
	s.owned = obj
	s.parked = nil
	s.mu.Unlock()
	target.Add(obj)
}

// Object returns the owned object, or nil when none is owned.
func (s *meshSlot) Object() *scene.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owned
}

// Update rotates the owned object by the slot's speed on every axis.
func (s *meshSlot) Update() {
	s.mu.Lock()
	obj, speed := s.owned, s.speed
	s.mu.Unlock()
	if obj == nil {
		return
	}
	obj.Rotate(speed, speed, speed)
}

// Undo detaches the owned object from target.
func (s *meshSlot) Undo(target command.Target) {
	s.mu.Lock()
	obj := s.owned
	if obj == nil {
		s.mu.Unlock()
		return
	}
	s.parked, s.owned = obj, nil
	s.mu.Unlock()
	target.Remove(obj)
}

// Redo re-attaches the object detached by the last Undo.
func (s *meshSlot) Redo(target command.Target) {
	s.mu.Lock()
	obj := s.parked
	if s.owned != nil || obj == nil {
		s.mu.Unlock()
		return
	}
	s.owned, s.parked = obj, nil
	s.mu.Unlock()
	target.Add(obj)
}

// SetRotationSpeed changes the per-tick rotation increment.
func (s *meshSlot) SetRotationSpeed(speed float64) {
	s.mu.Lock()
	s.speed = speed
	s.mu.Unlock()
}

// RotationSpeed returns the per-tick rotation increment.
func (s *meshSlot) RotationSpeed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}
