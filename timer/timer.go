// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultResolution is how often the manager checks for due tasks.
const DefaultResolution = 100 * time.Millisecond

type TimerTask struct {
	Id       int64
	Execute  time.Time
	Callback func()
	index    int
}

type TimerQueue []*TimerTask

func (q TimerQueue) Len() int { return len(q) }

func (q TimerQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q TimerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *TimerQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*TimerTask)
	task.index = n
	*q = append(*q, task)
}

func (q *TimerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// TimerManager runs one-shot callbacks after a delay. Callbacks run on their
// own goroutine and must do their own locking.
type TimerManager struct {
	clock  clockwork.Clock
	queue  TimerQueue
	tasks  map[int64]*TimerTask
	mutex  sync.Mutex
	nextId int64
	ticker clockwork.Ticker
	done   chan struct{}
	once   sync.Once
}

func NewTimerManager(clock clockwork.Clock) *TimerManager {
	return NewTimerManagerWithResolution(clock, DefaultResolution)
}

func NewTimerManagerWithResolution(clock clockwork.Clock, resolution time.Duration) *TimerManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	manager := &TimerManager{
		clock:  clock,
		queue:  make(TimerQueue, 0),
		tasks:  make(map[int64]*TimerTask),
		nextId: 1,
		ticker: clock.NewTicker(resolution),
		done:   make(chan struct{}),
	}
	heap.Init(&manager.queue)
	go manager.process()
	return manager
}

// AddTimer schedules callback to run once after delay and returns its id.
func (m *TimerManager) AddTimer(delay time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &TimerTask{
		Id:       m.nextId,
		Execute:  m.clock.Now().Add(delay),
		Callback: callback,
	}
	m.nextId++

	heap.Push(&m.queue, task)
	m.tasks[task.Id] = task
	return task.Id
}

// RemoveTimer cancels a pending task. Unknown or already fired ids are ignored.
func (m *TimerManager) RemoveTimer(timerId int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task, ok := m.tasks[timerId]
	if !ok {
		return
	}
	delete(m.tasks, timerId)
	if task.index >= 0 {
		heap.Remove(&m.queue, task.index)
	}
}

// Pending reports how many tasks are waiting to fire.
func (m *TimerManager) Pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.queue.Len()
}

// Stop halts the manager. Pending tasks never fire.
func (m *TimerManager) Stop() {
	m.once.Do(func() {
		close(m.done)
	})
}

func (m *TimerManager) process() {
	defer m.ticker.Stop()

	for {
		select {
		case <-m.ticker.Chan():
			for _, task := range m.due() {
				go task.Callback()
			}
		case <-m.done:
			return
		}
	}
}

// due pops every task whose execute time has passed.
func (m *TimerManager) due() []*TimerTask {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.clock.Now()
	var ready []*TimerTask
	for m.queue.Len() > 0 {
		task := m.queue[0]
		if task.Execute.After(now) {
			break
		}
		heap.Pop(&m.queue)
		delete(m.tasks, task.Id)
		ready = append(ready, task)
	}
	return ready
}
