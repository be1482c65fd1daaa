package schedule

import (
	"sort"
	"sync"
	"time"
)

// Scheduler is the only source of time and delayed work for the tracking components
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	// Stop prevents the callback from running, returns false if it already ran or was stopped
	Stop() bool
}

// Real schedules against the wall clock
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Manual is a scheduler that only moves when Advance is called.
// Callbacks run synchronously on the goroutine calling Advance.
type Manual struct {
	mutex   sync.Mutex
	now     time.Time
	nextID  int
	pending []*manualTimer
}

type manualTimer struct {
	manual   *Manual
	id       int
	deadline time.Time
	f        func()
	done     bool
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.nextID++
	timer := &manualTimer{
		manual:   m,
		id:       m.nextID,
		deadline: m.now.Add(d),
		f:        f,
	}
	m.pending = append(m.pending, timer)

	return timer
}

// Advance moves the clock forward by d, firing every timer that falls due in deadline order.
// Timers created by callbacks during the advance also fire if they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mutex.Lock()
	target := m.now.Add(d)
	m.mutex.Unlock()

	for {
		m.mutex.Lock()
		next := m.popDue(target)
		if next == nil {
			m.now = target
			m.mutex.Unlock()
			return
		}
		m.now = next.deadline
		m.mutex.Unlock()

		next.f()
	}
}

// Pending returns how many timers are waiting to fire
func (m *Manual) Pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return len(m.pending)
}

func (m *Manual) popDue(target time.Time) *manualTimer {
	if len(m.pending) == 0 {
		return nil
	}

	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].deadline.Equal(m.pending[j].deadline) {
			return m.pending[i].id < m.pending[j].id
		}
		return m.pending[i].deadline.Before(m.pending[j].deadline)
	})

	next := m.pending[0]
	if next.deadline.After(target) {
		return nil
	}

	m.pending = m.pending[1:]
	next.done = true

	return next
}

func (t *manualTimer) Stop() bool {
	t.manual.mutex.Lock()
	defer t.manual.mutex.Unlock()

	if t.done {
		return false
	}
	t.done = true

	for i, pending := range t.manual.pending {
		if pending == t {
			t.manual.pending = append(t.manual.pending[:i], t.manual.pending[i+1:]...)
			break
		}
	}

	return true
}
