package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	"github.com/mizerolucky/Follow-Up/internal/chat/repository"
	"github.com/mizerolucky/Follow-Up/pkg/logger"

	"go.uber.org/zap"
)

const (
	// TypingDebounceInterval 輸入事件的 debounce 間隔
	TypingDebounceInterval = 500 * time.Millisecond
	// typingFreshnessWindow marker 超過此時間視為過期, 不顯示
	typingFreshnessWindow = 1500 * time.Millisecond
	// typingPollInterval 輪詢 typing marker 的間隔
	typingPollInterval = 500 * time.Millisecond
)

// TypingSubscription 訂閱控制代碼, Cancel 後停止回呼
type TypingSubscription struct {
	cancel context.CancelFunc
}

// Cancel stop the subscription
func (s *TypingSubscription) Cancel() {
	s.cancel()
}

// TypingUseCase 輸入中狀態的發佈與訂閱
type TypingUseCase interface {
	SetTypingStatus(ctx context.Context, chatID, memberID string, isTyping bool) error
	ListenToTypingStatus(ctx context.Context, chatID, selfID string, handler func(typingMemberIDs []string)) *TypingSubscription
}

type typingUseCase struct {
	typingRepo repository.TypingRepository
}

// NewTypingUseCase init typing use case
func NewTypingUseCase(typingRepo repository.TypingRepository) TypingUseCase {
	return &typingUseCase{typingRepo: typingRepo}
}

// SetTypingStatus isTyping=true 寫入帶 TTL 的 marker, false 直接刪除
// (刪除而非寫 false, 避免殘留鍵)
func (uc *typingUseCase) SetTypingStatus(ctx context.Context, chatID, memberID string, isTyping bool) error {
	if !isTyping {
		return uc.typingRepo.ClearMarker(ctx, chatID, memberID)
	}
	return uc.typingRepo.SetMarker(ctx, chatID, memberID, domain.TypingMarker{
		Timestamp: time.Now().UnixMilli(),
	})
}

// ListenToTypingStatus 輪詢聊天室的 typing marker, 過濾自己與過期 marker,
// 名單有變化才回呼。回傳的 handle Cancel 後停止。
func (uc *typingUseCase) ListenToTypingStatus(ctx context.Context, chatID, selfID string, handler func(typingMemberIDs []string)) *TypingSubscription {
	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(typingPollInterval)
		defer ticker.Stop()

		last := "-"
		for {
			select {
			case <-subCtx.Done():
				return
			case <-ticker.C:
				ids, err := uc.snapshot(subCtx, chatID, selfID)
				if err != nil {
					if subCtx.Err() == nil {
						logger.Log.Warn("list typing markers failed",
							zap.String("chatID", chatID), zap.Error(err))
					}
					continue
				}
				key := strings.Join(ids, ",")
				if key != last {
					last = key
					handler(ids)
				}
			}
		}
	}()

	return &TypingSubscription{cancel: cancel}
}

func (uc *typingUseCase) snapshot(ctx context.Context, chatID, selfID string) ([]string, error) {
	markers, err := uc.typingRepo.ListMarkers(ctx, chatID)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UnixMilli() - typingFreshnessWindow.Milliseconds()
	ids := make([]string, 0, len(markers))
	for memberID, marker := range markers {
		if memberID == selfID {
			continue
		}
		if marker.Timestamp < cutoff {
			continue
		}
		ids = append(ids, memberID)
	}
	sort.Strings(ids)
	return ids, nil
}
