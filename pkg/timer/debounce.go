package timer

import (
	"sync"
	"time"
)

// Debouncer 延遲觸發器: 每次 Call 重新計時, 後到的呼叫取代先前尚未觸發的呼叫。
// 打字狀態回報用, 避免每個鍵擊都發一次網路請求。
type Debouncer struct {
	mu    sync.Mutex
	wait  time.Duration
	timer *time.Timer
	done  bool
}

// NewDebouncer create a Debouncer with the given wait window
func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Call arm the timer with fn; 取消前一次尚未觸發的 fn
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.done {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, fn)
}

// Cancel 取消尚未觸發的呼叫
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop 取消並拒絕後續 Call (連線關閉時用)
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.done = true
}
