package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	"github.com/mizerolucky/Follow-Up/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// TypingRepository definition typing markers in the ephemeral store
// marker 不存在即代表 "not typing" — 清除是刪 key, 不是寫 false
type TypingRepository interface {
	SetMarker(ctx context.Context, chatID, memberID string, marker domain.TypingMarker) error
	ClearMarker(ctx context.Context, chatID, memberID string) error
	// ListMarkers 回傳 chat 下所有 member 的 marker
	ListMarkers(ctx context.Context, chatID string) (map[string]domain.TypingMarker, error)
}

// marker TTL: 略大於 freshness window, 作為斷線時的自動清除
const typingMarkerTTL = 3 * time.Second

type typingRepository struct {
	client *redis.Client
}

// NewRedisTypingRepository create a TypingRepository
func NewRedisTypingRepository(client *redis.Client) TypingRepository {
	return &typingRepository{client: client}
}

func typingKey(chatID, memberID string) string {
	return fmt.Sprintf("typing:%s:%s", chatID, memberID)
}

func (r *typingRepository) SetMarker(ctx context.Context, chatID, memberID string, marker domain.TypingMarker) error {
	data, err := json.Marshal(marker)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, typingKey(chatID, memberID), data, typingMarkerTTL).Err()
}

func (r *typingRepository) ClearMarker(ctx context.Context, chatID, memberID string) error {
	return r.client.Del(ctx, typingKey(chatID, memberID)).Err()
}

func (r *typingRepository) ListMarkers(ctx context.Context, chatID string) (map[string]domain.TypingMarker, error) {
	prefix := fmt.Sprintf("typing:%s:", chatID)
	markers := make(map[string]domain.TypingMarker)

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			val, err := r.client.Get(ctx, key).Result()
			if err == redis.Nil {
				// key 在 SCAN 與 GET 之間過期
				continue
			} else if err != nil {
				return nil, err
			}

			var marker domain.TypingMarker
			if err := json.Unmarshal([]byte(val), &marker); err != nil {
				logger.Log.Warn("broken typing marker", zap.String("key", key), zap.Error(err))
				continue
			}
			markers[strings.TrimPrefix(key, prefix)] = marker
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return markers, nil
}
