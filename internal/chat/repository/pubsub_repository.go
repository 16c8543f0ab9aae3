package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	"github.com/mizerolucky/Follow-Up/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PubSub 把新訊息推播給聊天對象的訂閱介面
type PubSub interface {
	Publish(channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error
}

// MemberChannel member 專屬推播 channel 名稱
func MemberChannel(memberID string) string {
	return "chat:user:" + memberID
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish 將 message 序列化後, 發布到指定 channel
func (r *RedisPubSub) Publish(channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe 訂閱 channel, 收到訊息後呼叫 handler 處理
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	sub := r.client.Subscribe(r.ctx, channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var result domain.ChatMessage
				if err := json.Unmarshal([]byte(m.Payload), &result); err != nil {
					logger.Log.Error("pubsub unmarshal err :", zap.Error(err))
					continue
				}

				resp := domain.WSResponse{
					Action:  string(domain.NotifyMessage),
					Success: true,
					Payload: map[string]interface{}{
						"message_id": result.ID,
						"chat_id":    result.ChatID,
						"sender_id":  result.SenderID,
						"text":       result.Text,
						"image_url":  result.ImageURL,
						"timestamp":  result.Timestamp,
					},
				}
				handler(resp)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				sub.Close()
				return
			}
		}
	}()
	return nil
}
