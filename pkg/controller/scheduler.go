package controller

import (
	"sync"
	"time"
)

// FrameHandle identifies a scheduled frame callback. Zero means none.
type FrameHandle uint64

// Scheduler is the port the controller uses to request the next frame.
// Schedule must not call fn synchronously.
type Scheduler interface {
	Schedule(fn func()) FrameHandle
	Cancel(h FrameHandle)
}

type hostTask struct {
	handle FrameHandle
	fn     func()
}

// HostScheduler queues callbacks until the host loop calls Pump.
// The ebiten game calls Pump once per Update; tests call it to step
// frames deterministically.
type HostScheduler struct {
	mu      sync.Mutex
	next    uint64
	pending []hostTask
}

var _ Scheduler = (*HostScheduler)(nil)

// NewHostScheduler creates an empty scheduler.
func NewHostScheduler() *HostScheduler {
	return &HostScheduler{}
}

// Schedule implements Scheduler.
func (s *HostScheduler) Schedule(fn func()) FrameHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := FrameHandle(s.next)
	s.pending = append(s.pending, hostTask{handle: h, fn: fn})
	return h
}

// Cancel implements Scheduler.
func (s *HostScheduler) Cancel(h FrameHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.pending {
		if t.handle == h {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// Pump runs the callbacks that were pending when it was called.
// Callbacks scheduled while pumping run on the next Pump.
// Returns the number of callbacks run.
func (s *HostScheduler) Pump() int {
	s.mu.Lock()
	tasks := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, t := range tasks {
		t.fn()
	}
	return len(tasks)
}

// Pending returns the number of queued callbacks.
func (s *HostScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// TimerScheduler runs each callback on its own timer after a fixed
// interval. It is used when no host loop drives the frames.
type TimerScheduler struct {
	interval time.Duration

	mu     sync.Mutex
	next   uint64
	timers map[FrameHandle]*time.Timer
}

var _ Scheduler = (*TimerScheduler)(nil)

// NewTimerScheduler creates a scheduler firing interval after each Schedule.
func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	return &TimerScheduler{
		interval: interval,
		timers:   make(map[FrameHandle]*time.Timer),
	}
}

// NewTimerSchedulerTPS creates a scheduler running tps frames per second.
func NewTimerSchedulerTPS(tps int) *TimerScheduler {
	if tps <= 0 {
		tps = 60
	}
	return NewTimerScheduler(time.Second / time.Duration(tps))
}

// Schedule implements Scheduler.
func (s *TimerScheduler) Schedule(fn func()) FrameHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := FrameHandle(s.next)
	// 回调需要先获取锁，因此不会早于 timers[h] 的写入
	s.timers[h] = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		_, live := s.timers[h]
		delete(s.timers, h)
		s.mu.Unlock()
		if live {
			fn()
		}
	})
	return h
}

// Cancel implements Scheduler.
func (s *TimerScheduler) Cancel(h FrameHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[h]; ok {
		t.Stop()
		delete(s.timers, h)
	}
}

// Pending returns the number of timers that have not fired.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
