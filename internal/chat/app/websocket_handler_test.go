package app

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	"github.com/mizerolucky/Follow-Up/pkg/logger"

	"github.com/stretchr/testify/assert"
)

// overlapConn 記錄是否有兩個 goroutine 同時進到寫入
type overlapConn struct {
	active   int32
	overlaps int32
	writes   int32
}

func (c *overlapConn) WriteMessage(messageType int, data []byte) error {
	if !atomic.CompareAndSwapInt32(&c.active, 0, 1) {
		atomic.AddInt32(&c.overlaps, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.StoreInt32(&c.active, 0)
	atomic.AddInt32(&c.writes, 1)
	return nil
}

func (c *overlapConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return c.WriteMessage(messageType, data)
}

// pubsub 推播, typing 推播, ping 與 read-loop 回覆共用同一個 conn,
// 寫入必須被 connWriter 序列化
func TestConnWriter_SerializesConcurrentWrites(t *testing.T) {
	logger.SetNewNop()
	fake := &overlapConn{}
	w := &connWriter{conn: fake}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			w.sendResponse(domain.WSResponse{Action: string(domain.NotifyMessage), Success: true})
		}()
		go func() {
			defer wg.Done()
			_ = w.ping()
		}()
		go func() {
			defer wg.Done()
			_ = w.pong("ping")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), atomic.LoadInt32(&fake.overlaps))
	assert.Equal(t, int32(60), atomic.LoadInt32(&fake.writes))
}
