package domain

// Chat definition 1對1 聊天室
// PairKey 是排序後的 "{minUID}_{maxUID}", 同一對 member 只會有一間
type Chat struct {
	ID            string   `bson:"_id,omitempty" json:"chat_id"`
	PairKey       string   `bson:"pair_key" json:"-"`
	Participants  []string `bson:"participants" json:"participants"`
	LastMessage   string   `bson:"last_message" json:"last_message"`
	LastMessageAt int64    `bson:"last_message_at" json:"last_message_at"`
	CreatedAt     int64    `bson:"created_at" json:"created_at"`
}

// ChatIndexEntry 每個 (member, chat) 一筆的反正規化索引
// 讓聊天列表查詢不需要 join chats 與 member
type ChatIndexEntry struct {
	ID              string `bson:"_id,omitempty" json:"-"` // "{uid}_{chatID}"
	ChatID          string `bson:"chat_id" json:"chat_id"`
	UserID          string `bson:"user_id" json:"user_id"`
	OtherUserID     string `bson:"other_user_id" json:"other_user_id"`
	OtherUserName   string `bson:"other_user_name" json:"other_user_name"`
	OtherUserAvatar string `bson:"other_user_avatar" json:"other_user_avatar"`
	LastRead        int64  `bson:"last_read" json:"last_read"`
}

// IndexEntryID compose the "{uid}_{chatID}" key
func IndexEntryID(userID, chatID string) string {
	return userID + "_" + chatID
}
