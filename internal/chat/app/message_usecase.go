package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	"github.com/mizerolucky/Follow-Up/internal/chat/repository"
	"github.com/mizerolucky/Follow-Up/pkg"
	"github.com/mizerolucky/Follow-Up/pkg/database"
	"github.com/mizerolucky/Follow-Up/pkg/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrEmptyMessage 文字與附件皆空, 拒絕送出 (不發任何網路請求)
var ErrEmptyMessage = errors.New("message requires text or an attachment")

// MessageEventWriter 訊息事件流 (Kafka), fire-and-forget
type MessageEventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// SendMessageUseCase 負責 single-slot 送訊流程:
// 每個 sender 在一間聊天室只保留最新一則訊息
type SendMessageUseCase struct {
	chatRepo     repository.ChatRepository
	msgRepo      repository.MessageRepository
	userChatRepo repository.UserChatRepository
	typingRepo   repository.TypingRepository
	memberPubSub repository.PubSub
	blob         *database.MinIOClient
	eventWriter  MessageEventWriter
}

// NewSendMessageUseCase init send message use case
func NewSendMessageUseCase(
	chatRepo repository.ChatRepository,
	msgRepo repository.MessageRepository,
	userChatRepo repository.UserChatRepository,
	typingRepo repository.TypingRepository,
	pub repository.PubSub,
	blob *database.MinIOClient,
	eventWriter MessageEventWriter,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		chatRepo:     chatRepo,
		msgRepo:      msgRepo,
		userChatRepo: userChatRepo,
		typingRepo:   typingRepo,
		memberPubSub: pub,
		blob:         blob,
		eventWriter:  eventWriter,
	}
}

// Execute send message
// 步驟固定: 清 typing → 上傳附件 → 原子化取代訊息槽 → chat 反正規化欄位 →
// sender 的 last_read → 推播。第一個失敗的步驟中止其餘步驟, 已完成的不回滾。
func (uc *SendMessageUseCase) Execute(ctx context.Context, chatID, senderID, text string, attachment *domain.Attachment) (string, error) {
	if strings.TrimSpace(text) == "" && attachment == nil {
		return "", ErrEmptyMessage
	}

	// 1. 清掉自己的 typing marker, best-effort
	if err := uc.typingRepo.ClearMarker(ctx, chatID, senderID); err != nil {
		logger.Log.Warn("clear typing marker failed",
			zap.String("chatID", chatID), zap.String("senderID", senderID), zap.Error(err))
	}

	// 2. 確認聊天室存在, 同時拿 participants 做推播
	chat, err := uc.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return "", err
	}
	if chat == nil {
		return "", errors.New("chat not found")
	}
	if !pkg.Contains(chat.Participants, senderID) {
		return "", errors.New("sender is not a participant of this chat")
	}

	// 3. 附件上傳, 失敗即中止 (不寫訊息)
	imageURL := ""
	if attachment != nil {
		imageURL, err = uc.uploadAttachment(ctx, chatID, attachment)
		if err != nil {
			return "", err
		}
	}

	// 4. 原子化取代 (chat, sender) 的訊息槽
	now := time.Now().UnixMilli()
	newMsg := domain.ChatMessage{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		SenderID:  senderID,
		Text:      text,
		ImageURL:  imageURL,
		Timestamp: now,
	}
	if err := uc.msgRepo.ReplaceSenderMessage(ctx, &newMsg); err != nil {
		return "", err
	}

	// 5. chat 的 last_message / last_message_at
	lastMessage := text
	if imageURL != "" && strings.TrimSpace(text) == "" {
		lastMessage = domain.ImagePlaceholder
	}
	if err := uc.chatRepo.UpdateLastMessage(ctx, chatID, lastMessage, now); err != nil {
		return "", err
	}

	// 6. sender 自己的 last_read
	if err := uc.userChatRepo.TouchLastRead(ctx, senderID, chatID, now); err != nil {
		return "", err
	}

	// 7. pubSub 同步給聊天室內除自己的 member
	if uc.memberPubSub != nil {
		for _, memberID := range chat.Participants {
			if memberID != senderID {
				if err := uc.memberPubSub.Publish(repository.MemberChannel(memberID), newMsg); err != nil {
					logger.Log.Warn("publish message failed",
						zap.String("memberID", memberID), zap.Error(err))
				}
			}
		}
	}

	// 8. 事件流, fire-and-forget
	uc.emitEvent(&newMsg)

	return newMsg.ID, nil
}

// ListMessages 依時間升序列出聊天室訊息
func (uc *SendMessageUseCase) ListMessages(ctx context.Context, chatID string) ([]domain.ChatMessage, error) {
	return uc.msgRepo.ListByChat(ctx, chatID)
}

func (uc *SendMessageUseCase) uploadAttachment(ctx context.Context, chatID string, attachment *domain.Attachment) (string, error) {
	objectName := fmt.Sprintf("chat-images/%s/%d-%s", chatID, time.Now().UnixMilli(), attachment.Filename)
	if err := uc.blob.UploadStream(ctx, objectName, bytes.NewReader(attachment.Data),
		int64(len(attachment.Data)), attachment.ContentType); err != nil {
		return "", fmt.Errorf("upload attachment: %w", err)
	}
	return uc.blob.PresignGetURL(ctx, objectName, 7*24*time.Hour)
}

func (uc *SendMessageUseCase) emitEvent(msg *domain.ChatMessage) {
	if uc.eventWriter == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uc.eventWriter.WriteMessages(ctx, kafka.Message{
			Key:   []byte(msg.ChatID),
			Value: data,
		}); err != nil {
			logger.Log.Warn("emit message event failed", zap.Error(err))
		}
	}()
}
