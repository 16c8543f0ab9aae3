package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 連續 Call 只觸發最後一次
func TestDebouncer_SupersedingCall(t *testing.T) {
	var fired int32
	d := NewDebouncer(30 * time.Millisecond)

	for i := 0; i < 5; i++ {
		d.Call(func() { atomic.AddInt32(&fired, 1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

// Cancel 之後不觸發
func TestDebouncer_Cancel(t *testing.T) {
	var fired int32
	d := NewDebouncer(30 * time.Millisecond)

	d.Call(func() { atomic.AddInt32(&fired, 1) })
	d.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

// Stop 之後 Call 無效
func TestDebouncer_Stop(t *testing.T) {
	var fired int32
	d := NewDebouncer(10 * time.Millisecond)

	d.Stop()
	d.Call(func() { atomic.AddInt32(&fired, 1) })

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}
