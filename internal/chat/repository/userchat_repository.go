package repository

import (
	"context"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserChatRepository definition per-member chat index entries
type UserChatRepository interface {
	UpsertEntry(ctx context.Context, entry *domain.ChatIndexEntry) error
	// TouchLastRead 發訊後更新 sender 自己的 last_read
	TouchLastRead(ctx context.Context, userID, chatID string, at int64) error
	ListByUser(ctx context.Context, userID string) ([]domain.ChatIndexEntry, error)
	FindEntry(ctx context.Context, userID, chatID string) (*domain.ChatIndexEntry, error)
}

type userChatRepository struct {
	coll *mongo.Collection
}

// NewMongoUserChatRepository create a UserChatRepository
func NewMongoUserChatRepository(db *mongo.Database) UserChatRepository {
	return &userChatRepository{
		coll: db.Collection("user_chats"),
	}
}

func (r *userChatRepository) UpsertEntry(ctx context.Context, entry *domain.ChatIndexEntry) error {
	entry.ID = domain.IndexEntryID(entry.UserID, entry.ChatID)
	filter := bson.M{"_id": entry.ID}
	// last_read 只在插入時寫入, 既有索引的已讀位置交給 TouchLastRead
	update := bson.M{
		"$set": bson.M{
			"chat_id":           entry.ChatID,
			"user_id":           entry.UserID,
			"other_user_id":     entry.OtherUserID,
			"other_user_name":   entry.OtherUserName,
			"other_user_avatar": entry.OtherUserAvatar,
		},
		"$setOnInsert": bson.M{"last_read": entry.LastRead},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.coll.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *userChatRepository) TouchLastRead(ctx context.Context, userID, chatID string, at int64) error {
	filter := bson.M{"_id": domain.IndexEntryID(userID, chatID)}
	update := bson.M{"$set": bson.M{"last_read": at}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

// ListByUser 依 last_read 降序列出 member 的聊天索引
func (r *userChatRepository) ListByUser(ctx context.Context, userID string) ([]domain.ChatIndexEntry, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.M{"last_read": -1})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var entries []domain.ChatIndexEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *userChatRepository) FindEntry(ctx context.Context, userID, chatID string) (*domain.ChatIndexEntry, error) {
	var entry domain.ChatIndexEntry
	err := r.coll.FindOne(ctx, bson.M{"_id": domain.IndexEntryID(userID, chatID)}).Decode(&entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
