// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

type task struct {
	id       int64
	execute  time.Time
	interval time.Duration
	callback func()
	index    int
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].execute.Before(q[j].execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	t := x.(*task)
	t.index = n
	*q = append(*q, t)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	t.index = -1
	*q = old[0 : n-1]
	return t
}

// Manager schedules delayed and repeating callbacks off a single heap.
// Callbacks are dispatched from one goroutine in firing order, so two ticks
// of the same timer never run concurrently.
type Manager struct {
	queue     taskQueue
	mutex     sync.Mutex
	nextID    int64
	trigger   chan *task
	closeChan chan struct{}
	closeOnce sync.Once
}

func NewManager() *Manager {
	m := &Manager{
		queue:     make(taskQueue, 0),
		trigger:   make(chan *task, 1000),
		nextID:    1,
		closeChan: make(chan struct{}),
	}
	heap.Init(&m.queue)
	go m.process()
	return m
}

// Schedule registers a callback to run after delay. A non-zero interval
// reschedules it after each firing until Stop is called. The returned id
// is the cancellation handle.
func (m *Manager) Schedule(delay time.Duration, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	t := &task{
		id:       m.nextID,
		execute:  time.Now().Add(delay),
		interval: interval,
		callback: callback,
	}
	m.nextID++

	heap.Push(&m.queue, t)
	return t.id
}

// Stop cancels a scheduled timer and reports whether it was still pending.
// A false return means the timer already fired its final callback or was
// stopped before; callers use this to make resolution exactly-once.
func (m *Manager) Stop(id int64) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, t := range m.queue {
		if t.id == id {
			heap.Remove(&m.queue, i)
			return true
		}
	}
	return false
}

// Close stops the scheduling loop. Pending timers never fire afterwards.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.closeChan)
	})
}

func (m *Manager) process() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mutex.Lock()
			now := time.Now()

			for m.queue.Len() > 0 {
				t := m.queue[0]
				if t.execute.After(now) {
					break
				}

				heap.Pop(&m.queue)
				m.trigger <- t

				if t.interval > 0 {
					t.execute = now.Add(t.interval)
					heap.Push(&m.queue, t)
				}
			}
			m.mutex.Unlock()

		case t := <-m.trigger:
			t.callback()

		case <-m.closeChan:
			return
		}
	}
}
