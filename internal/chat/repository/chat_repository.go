package repository

import (
	"context"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRepository definition 1對1 chat
type ChatRepository interface {
	// FindOrCreate 以 pair_key 做原子化的 create-if-absent, 回傳 chat 與是否新建
	FindOrCreate(ctx context.Context, chat *domain.Chat) (*domain.Chat, bool, error)
	FindByID(ctx context.Context, chatID string) (*domain.Chat, error)
	UpdateLastMessage(ctx context.Context, chatID, lastMessage string, at int64) error
}

type chatRepository struct {
	chatsColl *mongo.Collection
}

// NewMongoChatRepository create new mongo chat repository
func NewMongoChatRepository(db *mongo.Database) ChatRepository {
	coll := db.Collection("chats")

	// pair_key 唯一索引: 同一對 member 不可能出現兩間聊天室
	coll.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "pair_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &chatRepository{chatsColl: coll}
}

// FindOrCreate 單次 FindOneAndUpdate upsert, 沒有 check-then-act 的空窗
func (r *chatRepository) FindOrCreate(ctx context.Context, chat *domain.Chat) (*domain.Chat, bool, error) {
	filter := bson.M{"pair_key": chat.PairKey}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":             chat.ID,
			"pair_key":        chat.PairKey,
			"participants":    chat.Participants,
			"last_message":    "",
			"last_message_at": chat.CreatedAt,
			"created_at":      chat.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result domain.Chat
	if err := r.chatsColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, false, err
	}

	created := result.ID == chat.ID
	return &result, created, nil
}

// FindByID find chat by id
func (r *chatRepository) FindByID(ctx context.Context, chatID string) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.chatsColl.FindOne(ctx, bson.M{"_id": chatID}).Decode(&chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// UpdateLastMessage update chat 的反正規化欄位
func (r *chatRepository) UpdateLastMessage(ctx context.Context, chatID, lastMessage string, at int64) error {
	filter := bson.M{"_id": chatID}
	update := bson.M{"$set": bson.M{
		"last_message":    lastMessage,
		"last_message_at": at,
	}}
	_, err := r.chatsColl.UpdateOne(ctx, filter, update)
	return err
}
