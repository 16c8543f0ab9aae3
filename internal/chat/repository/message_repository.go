package repository

import (
	"context"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition single-slot chat message
type MessageRepository interface {
	// ReplaceSenderMessage 原子化取代該 sender 在該 chat 的唯一訊息槽
	ReplaceSenderMessage(ctx context.Context, msg *domain.ChatMessage) error
	// ListByChat 依時間升序列出聊天室訊息 (每個 sender 至多一筆)
	ListByChat(ctx context.Context, chatID string) ([]domain.ChatMessage, error)
	FindBySender(ctx context.Context, chatID, senderID string) (*domain.ChatMessage, error)
	CountBySender(ctx context.Context, chatID, senderID string) (int64, error)
}

type chatMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoChatMessageRepository create a MessageRepository
func NewMongoChatMessageRepository(db *mongo.Database) MessageRepository {
	coll := db.Collection("chat_messages")

	// (chat_id, sender_id) 唯一索引: 併發送出也不可能留下兩筆
	coll.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{
			{Key: "chat_id", Value: 1},
			{Key: "sender_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})

	return &chatMessageRepository{coll: coll}
}

// ReplaceSenderMessage 單次 FindOneAndReplace upsert
// 取代了原設計 delete-all-then-insert 的兩段式寫入
func (r *chatMessageRepository) ReplaceSenderMessage(ctx context.Context, msg *domain.ChatMessage) error {
	filter := bson.M{"chat_id": msg.ChatID, "sender_id": msg.SenderID}
	opts := options.FindOneAndReplace().
		SetUpsert(true).
		SetReturnDocument(options.After)

	err := r.coll.FindOneAndReplace(ctx, filter, msg, opts).Err()
	if err == mongo.ErrNoDocuments {
		return nil
	}
	return err
}

func (r *chatMessageRepository) ListByChat(ctx context.Context, chatID string) ([]domain.ChatMessage, error) {
	filter := bson.M{"chat_id": chatID}
	opts := options.Find().SetSort(bson.M{"timestamp": 1})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var messages []domain.ChatMessage
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatMessageRepository) FindBySender(ctx context.Context, chatID, senderID string) (*domain.ChatMessage, error) {
	filter := bson.M{"chat_id": chatID, "sender_id": senderID}
	var msg domain.ChatMessage
	if err := r.coll.FindOne(ctx, filter).Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *chatMessageRepository) CountBySender(ctx context.Context, chatID, senderID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"chat_id": chatID, "sender_id": senderID})
}
