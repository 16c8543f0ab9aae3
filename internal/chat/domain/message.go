package domain

// ChatMessage 表示一則聊天訊息
// 每個 (chat_id, sender_id) 最多存在一筆: 新訊息取代舊訊息
type ChatMessage struct {
	ID        string `bson:"id" json:"id"`
	ChatID    string `bson:"chat_id" json:"chat_id"`
	SenderID  string `bson:"sender_id" json:"sender_id"`
	Text      string `bson:"text" json:"text"`
	ImageURL  string `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"` // server-assigned, unix ms
}

// Attachment 待上傳的訊息附件
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImagePlaceholder 附件訊息在聊天列表顯示的代字
const ImagePlaceholder = "📷 Image"
