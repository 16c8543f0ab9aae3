package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	"github.com/mizerolucky/Follow-Up/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// presenceChannel 所有 presence 轉換都發布到這個 channel, mirror 訂閱它
const presenceChannel = "presence"

// PresenceRepository definition status:{uid} records in the ephemeral store
// 紀錄帶 TTL: heartbeat 續約, 斷線未續約即過期 — 等同自動的 on-disconnect 寫入
type PresenceRepository interface {
	SetStatus(ctx context.Context, memberID string, record domain.PresenceRecord, ttl time.Duration) error
	RefreshStatus(ctx context.Context, memberID string, ttl time.Duration) error
	GetStatus(ctx context.Context, memberID string) (*domain.PresenceRecord, error)
	// SubscribeTransitions mirror 迴圈用, handler 收每一次 presence 轉換
	SubscribeTransitions(ctx context.Context, handler func(ev domain.PresenceEvent)) error
}

type presenceRepository struct {
	client *redis.Client
}

// NewRedisPresenceRepository create a PresenceRepository
func NewRedisPresenceRepository(client *redis.Client) PresenceRepository {
	return &presenceRepository{client: client}
}

func statusKey(memberID string) string {
	return "status:" + memberID
}

func (r *presenceRepository) SetStatus(ctx context.Context, memberID string, record domain.PresenceRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	// offline 紀錄不需要 TTL, 留著讓讀端看到 lastChanged
	if record.State == domain.PresenceOffline {
		ttl = 0
	}

	if err := r.client.Set(ctx, statusKey(memberID), data, ttl).Err(); err != nil {
		return err
	}

	ev := domain.PresenceEvent{
		MemberID:    memberID,
		State:       record.State,
		LastChanged: record.LastChanged,
	}
	evData, _ := json.Marshal(ev)
	return r.client.Publish(ctx, presenceChannel, evData).Err()
}

func (r *presenceRepository) RefreshStatus(ctx context.Context, memberID string, ttl time.Duration) error {
	return r.client.Expire(ctx, statusKey(memberID), ttl).Err()
}

// GetStatus 不存在或過期的 key 視為 offline
func (r *presenceRepository) GetStatus(ctx context.Context, memberID string) (*domain.PresenceRecord, error) {
	val, err := r.client.Get(ctx, statusKey(memberID)).Result()
	if err == redis.Nil {
		return &domain.PresenceRecord{State: domain.PresenceOffline}, nil
	} else if err != nil {
		return nil, err
	}

	var record domain.PresenceRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *presenceRepository) SubscribeTransitions(ctx context.Context, handler func(ev domain.PresenceEvent)) error {
	sub := r.client.Subscribe(ctx, presenceChannel)
	go func() {
		ch := sub.Channel()
		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var ev domain.PresenceEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					logger.Log.Warn("broken presence event", zap.Error(err))
					continue
				}
				handler(ev)
			case <-ctx.Done():
				logger.Log.Info("presence subscription closed")
				sub.Close()
				return
			}
		}
	}()
	return nil
}
