package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterFrames(t *testing.T) {
	q := New()
	var fired []string
	q.AfterFrames(2, func() { fired = append(fired, "two") })
	q.AfterFrames(1, func() { fired = append(fired, "one") })
	q.AfterFrames(0, func() { fired = append(fired, "now") })

	assert.Equal(t, 1, q.Tick(0, 0))
	assert.Equal(t, []string{"now"}, fired)

	q.Tick(1, 0)
	assert.Equal(t, []string{"now", "one"}, fired)

	q.Tick(2, 0)
	assert.Equal(t, []string{"now", "one", "two"}, fired)
	assert.Zero(t, q.Len())
}

func TestAtFiresInDueThenInsertionOrder(t *testing.T) {
	q := New()
	var fired []int
	q.At(2*time.Second, func() { fired = append(fired, 3) })
	q.At(time.Second, func() { fired = append(fired, 1) })
	q.At(time.Second, func() { fired = append(fired, 2) })

	assert.Zero(t, q.Tick(1, 500*time.Millisecond))
	assert.Equal(t, 3, q.Tick(2, 2*time.Second))
	assert.Equal(t, []int{1, 2, 3}, fired)
}

func TestFrameActionsRunBeforeTimedOnes(t *testing.T) {
	q := New()
	var fired []string
	q.At(0, func() { fired = append(fired, "timed") })
	q.AfterFrames(0, func() { fired = append(fired, "frame") })

	q.Tick(0, 0)
	assert.Equal(t, []string{"frame", "timed"}, fired)
}

func TestEveryRearms(t *testing.T) {
	q := New()
	n := 0
	id := q.Every(time.Second, func() { n++ })
	require.NotZero(t, id)

	q.Tick(1, 999*time.Millisecond)
	assert.Equal(t, 0, n)
	q.Tick(2, time.Second)
	assert.Equal(t, 1, n)

	// a late tick runs once and does not replay missed intervals
	q.Tick(3, 5500*time.Millisecond)
	assert.Equal(t, 2, n)
	q.Tick(4, 6*time.Second)
	assert.Equal(t, 2, n)
	q.Tick(5, 6500*time.Millisecond)
	assert.Equal(t, 3, n)

	assert.Equal(t, 1, q.Len())
	assert.True(t, q.Cancel(id))
	q.Tick(6, time.Hour)
	assert.Equal(t, 3, n)
	assert.Zero(t, q.Every(0, func() {}))
}

func TestCancel(t *testing.T) {
	q := New()
	ran := false
	id := q.AfterFrames(1, func() { ran = true })

	assert.True(t, q.Cancel(id))
	assert.False(t, q.Cancel(id))
	assert.False(t, q.Cancel(ID(999)))
	q.Tick(5, time.Second)
	assert.False(t, ran)
}

func TestCancelFromInsideAction(t *testing.T) {
	q := New()
	ran := false
	var second ID
	q.AfterFrames(0, func() { q.Cancel(second) })
	second = q.AfterFrames(0, func() { ran = true })

	assert.Equal(t, 1, q.Tick(0, 0))
	assert.False(t, ran)
}

func TestActionsScheduledDuringTickWaitForNextTick(t *testing.T) {
	q := New()
	n := 0
	var again func()
	again = func() {
		n++
		q.AfterFrames(0, again)
	}
	q.AfterFrames(0, again)

	assert.Equal(t, 1, q.Tick(0, 0))
	assert.Equal(t, 1, q.Tick(0, 0))
	assert.Equal(t, 2, n)
}

func TestAfterIsRelativeToLastTick(t *testing.T) {
	q := New()
	q.Tick(10, 10*time.Second)
	ran := false
	q.After(time.Second, func() { ran = true })

	q.Tick(11, 10500*time.Millisecond)
	assert.False(t, ran)
	q.Tick(12, 11*time.Second)
	assert.True(t, ran)
	assert.Equal(t, uint64(12), q.Frame())
	assert.Equal(t, 11*time.Second, q.Now())
}

func TestClear(t *testing.T) {
	q := New()
	q.AfterFrames(1, func() { t.Fatal("cleared action ran") })
	q.Every(time.Millisecond, func() { t.Fatal("cleared action ran") })
	require.Equal(t, 2, q.Len())

	q.Clear()
	assert.Zero(t, q.Len())
	assert.Zero(t, q.Tick(100, time.Hour))
}
