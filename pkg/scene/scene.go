// Package scene holds the flat set of renderable objects that commands
// add to and remove from.
package scene

import (
	"sync"
)

// Scene is a flat, insertion-ordered set of top-level objects.
// It is safe for concurrent use.
type Scene struct {
	mu     sync.RWMutex
	nextID uint64
	// ID -> 对象
	objects map[ObjectID]*Object
	// 插入顺序
	order []ObjectID
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		nextID:  1, // ID从1开始,0保留为无效ID
		objects: make(map[ObjectID]*Object),
		order:   make([]ObjectID, 0),
	}
}

// Add inserts obj at the end of the scene. Adding an object that is
// already present does nothing.
func (s *Scene) Add(obj *Object) {
	if obj == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	obj.mu.Lock()
	if obj.id == 0 {
		obj.id = ObjectID(s.nextID)
		s.nextID++
	}
	id := obj.id
	obj.mu.Unlock()

	if _, exists := s.objects[id]; exists {
		return
	}
	s.objects[id] = obj
	s.order = append(s.order, id)
}

// Remove deletes obj from the scene. Removing an absent object does
// nothing.
func (s *Scene) Remove(obj *Object) {
	if obj == nil {
		return
	}
	id := obj.ID()

	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, exists := s.objects[id]; !exists || cur != obj {
		return
	}
	delete(s.objects, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether obj is currently in the scene.
func (s *Scene) Contains(obj *Object) bool {
	if obj == nil {
		return false
	}
	id := obj.ID()

	s.mu.RLock()
	defer s.mu.RUnlock()
	cur, exists := s.objects[id]
	return exists && cur == obj
}

// Get returns the object with the given ID.
func (s *Scene) Get(id ObjectID) (*Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	return obj, ok
}

// Objects returns a snapshot of the scene's objects in insertion order.
func (s *Scene) Objects() []*Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Object, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.objects[id])
	}
	return result
}

// Len returns the number of objects in the scene.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Clear removes every object.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = make(map[ObjectID]*Object)
	s.order = s.order[:0]
}
