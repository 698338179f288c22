// Package schedule runs deferred actions keyed by frame count or frame time.
// Actions run on the goroutine that calls Tick.
package schedule

import (
	"container/heap"
	"time"
)

// ID identifies a scheduled action. The zero ID is never issued.
type ID uint64

type task struct {
	id  ID
	seq uint64

	// frame-keyed tasks fire once the ticked frame reaches dueFrame.
	byFrame  bool
	dueFrame uint64
	dueTime  time.Duration
	every    time.Duration

	fn    func()
	index int
}

// taskHeap orders tasks by due key, then insertion.
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.byFrame {
		if a.dueFrame != b.dueFrame {
			return a.dueFrame < b.dueFrame
		}
	} else if a.dueTime != b.dueTime {
		return a.dueTime < b.dueTime
	}
	return a.seq < b.seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Queue holds pending actions. The zero value is not usable; call New.
type Queue struct {
	frames taskHeap
	timed  taskHeap
	byID   map[ID]*task

	nextID ID
	seq    uint64

	frame uint64
	now   time.Duration

	due []*task
}

// New creates an empty queue positioned at frame 0, time 0.
func New() *Queue {
	return &Queue{byID: make(map[ID]*task)}
}

// Frame returns the frame count of the last Tick.
func (q *Queue) Frame() uint64 { return q.frame }

// Now returns the time of the last Tick.
func (q *Queue) Now() time.Duration { return q.now }

// AfterFrames runs fn on the first Tick whose frame is at least n frames past
// the last ticked frame.
func (q *Queue) AfterFrames(n uint64, fn func()) ID {
	t := q.newTask(fn)
	t.byFrame = true
	t.dueFrame = q.frame + n
	heap.Push(&q.frames, t)
	return t.id
}

// At runs fn on the first Tick at or after time at.
func (q *Queue) At(at time.Duration, fn func()) ID {
	t := q.newTask(fn)
	t.dueTime = at
	heap.Push(&q.timed, t)
	return t.id
}

// After runs fn once d has passed since the last Tick.
func (q *Queue) After(d time.Duration, fn func()) ID {
	return q.At(q.now+d, fn)
}

// Every runs fn each interval until cancelled. A missed interval is not
// replayed; the next run is scheduled one interval after the late one.
// Non-positive intervals are ignored and return the zero ID.
func (q *Queue) Every(interval time.Duration, fn func()) ID {
	if interval <= 0 {
		return 0
	}
	t := q.newTask(fn)
	t.dueTime = q.now + interval
	t.every = interval
	heap.Push(&q.timed, t)
	return t.id
}

// Cancel removes a pending action and reports whether it was pending.
func (q *Queue) Cancel(id ID) bool {
	t, ok := q.byID[id]
	if !ok {
		return false
	}
	delete(q.byID, id)
	if t.index >= 0 {
		if t.byFrame {
			heap.Remove(&q.frames, t.index)
		} else {
			heap.Remove(&q.timed, t.index)
		}
	}
	return true
}

// Tick advances the queue to frame and now and runs every action that is due,
// frame-keyed actions first. Actions scheduled while running fire on a later
// Tick. It returns the number of actions run.
func (q *Queue) Tick(frame uint64, now time.Duration) int {
	q.frame, q.now = frame, now

	q.due = q.due[:0]
	for q.frames.Len() > 0 && q.frames[0].dueFrame <= frame {
		q.due = append(q.due, heap.Pop(&q.frames).(*task))
	}
	for q.timed.Len() > 0 && q.timed[0].dueTime <= now {
		q.due = append(q.due, heap.Pop(&q.timed).(*task))
	}

	ran := 0
	for i, t := range q.due {
		q.due[i] = nil
		if _, live := q.byID[t.id]; !live {
			continue
		}
		if t.every > 0 {
			t.dueTime += t.every
			if t.dueTime <= now {
				t.dueTime = now + t.every
			}
			heap.Push(&q.timed, t)
		} else {
			delete(q.byID, t.id)
		}
		t.fn()
		ran++
	}
	return ran
}

// Clear drops every pending action.
func (q *Queue) Clear() {
	clear(q.byID)
	for _, t := range q.frames {
		t.index = -1
	}
	for _, t := range q.timed {
		t.index = -1
	}
	q.frames = q.frames[:0]
	q.timed = q.timed[:0]
}

// Len returns the number of pending actions.
func (q *Queue) Len() int {
	return len(q.byID)
}

func (q *Queue) newTask(fn func()) *task {
	q.nextID++
	q.seq++
	t := &task{id: q.nextID, seq: q.seq, fn: fn, index: -1}
	q.byID[t.id] = t
	return t
}
