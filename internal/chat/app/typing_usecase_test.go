package app

import (
	"context"
	"testing"
	"time"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	"github.com/mizerolucky/Follow-Up/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// isTyping=true 寫 marker, false 直接刪除
func TestTypingUseCase_SetTypingStatus(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockTypingRepo := new(MockTypingRepository)
	mockTypingRepo.On("SetMarker", ctx, "chat-1", "member-a", mock.MatchedBy(func(m domain.TypingMarker) bool {
		return m.Timestamp > 0
	})).Return(nil)
	mockTypingRepo.On("ClearMarker", ctx, "chat-1", "member-a").Return(nil)

	uc := NewTypingUseCase(mockTypingRepo)

	assert.NoError(t, uc.SetTypingStatus(ctx, "chat-1", "member-a", true))
	assert.NoError(t, uc.SetTypingStatus(ctx, "chat-1", "member-a", false))

	mockTypingRepo.AssertExpectations(t)
}

// snapshot 過濾自己與過期的 marker, 其餘依 ID 排序
func TestTypingUseCase_SnapshotFiltersSelfAndStale(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	now := time.Now().UnixMilli()

	mockTypingRepo := new(MockTypingRepository)
	mockTypingRepo.On("ListMarkers", ctx, "chat-1").Return(map[string]domain.TypingMarker{
		"member-a": {Timestamp: now},        // 自己
		"member-c": {Timestamp: now - 100},  // 新鮮
		"member-b": {Timestamp: now - 50},   // 新鮮
		"member-d": {Timestamp: now - 5000}, // 過期
	}, nil)

	uc := &typingUseCase{typingRepo: mockTypingRepo}
	ids, err := uc.snapshot(ctx, "chat-1", "member-a")

	assert.NoError(t, err)
	assert.Equal(t, []string{"member-b", "member-c"}, ids)
}

// Listen 名單有變化才回呼, Cancel 後不再回呼
func TestTypingUseCase_ListenAndCancel(t *testing.T) {
	logger.SetNewNop()
	now := time.Now().UnixMilli()

	mockTypingRepo := new(MockTypingRepository)
	mockTypingRepo.On("ListMarkers", mock.Anything, "chat-1").Return(map[string]domain.TypingMarker{
		"member-b": {Timestamp: now + int64(time.Hour/time.Millisecond)},
	}, nil)

	uc := NewTypingUseCase(mockTypingRepo)

	got := make(chan []string, 4)
	sub := uc.ListenToTypingStatus(context.Background(), "chat-1", "member-a", func(ids []string) {
		got <- ids
	})

	select {
	case ids := <-got:
		assert.Equal(t, []string{"member-b"}, ids)
	case <-time.After(2 * time.Second):
		t.Fatal("no typing callback")
	}

	// 名單沒變就不再回呼
	select {
	case ids := <-got:
		t.Fatalf("unexpected callback: %v", ids)
	case <-time.After(1200 * time.Millisecond):
	}

	sub.Cancel()
	time.Sleep(100 * time.Millisecond)
}
