package app

import (
	"context"
	"errors"
	"time"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	"github.com/mizerolucky/Follow-Up/internal/chat/repository"
	memberdomain "github.com/mizerolucky/Follow-Up/internal/member/domain"
	memberrepo "github.com/mizerolucky/Follow-Up/internal/member/repository"
	"github.com/mizerolucky/Follow-Up/pkg"

	"github.com/google/uuid"
)

var (
	// ErrSelfChat 不可與自己開聊天室
	ErrSelfChat = errors.New("cannot start a chat with yourself")
	// ErrMemberNotFound 對象不存在
	ErrMemberNotFound = errors.New("member not found")
)

// ChatUseCase 聊天室建立與列表
type ChatUseCase interface {
	StartChat(ctx context.Context, memberID, otherMemberID string) (string, bool, error)
	ListChats(ctx context.Context, memberID string) ([]domain.ChatIndexEntry, error)
	MarkChatRead(ctx context.Context, memberID, chatID string) error
}

type chatUseCase struct {
	chatRepo     repository.ChatRepository
	userChatRepo repository.UserChatRepository
	memberRepo   memberrepo.MemberRepository
}

// NewChatUseCase init chat use case
func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userChatRepo repository.UserChatRepository,
	memberRepo memberrepo.MemberRepository,
) ChatUseCase {
	return &chatUseCase{
		chatRepo:     chatRepo,
		userChatRepo: userChatRepo,
		memberRepo:   memberRepo,
	}
}

// StartChat 依 pair key 找既有聊天室, 沒有才建新的 (upsert, 兩端同時開只會有一間),
// 並替雙方 upsert user_chats 索引。回傳 chatID 與是否新建。
func (uc *chatUseCase) StartChat(ctx context.Context, memberID, otherMemberID string) (string, bool, error) {
	if memberID == otherMemberID {
		return "", false, ErrSelfChat
	}

	me, err := uc.memberRepo.FindByMember(ctx, &memberdomain.MemberQuery{MemberID: &memberID})
	if err != nil {
		return "", false, err
	}
	other, err := uc.memberRepo.FindByMember(ctx, &memberdomain.MemberQuery{MemberID: &otherMemberID})
	if err != nil {
		return "", false, err
	}
	if me == nil || other == nil {
		return "", false, ErrMemberNotFound
	}

	first, second := memberID, otherMemberID
	if second < first {
		first, second = second, first
	}
	chat, created, err := uc.chatRepo.FindOrCreate(ctx, &domain.Chat{
		ID:           uuid.New().String(),
		PairKey:      pkg.PairKey(memberID, otherMemberID),
		Participants: []string{first, second},
		CreatedAt:    time.Now().UnixMilli(),
	})
	if err != nil {
		return "", false, err
	}

	// 既有聊天室直接回傳: 索引已存在, 不可動到雙方的 last_read
	// (last_read 只在建立時寫入, 之後由送訊/進房的 TouchLastRead 前進)
	if !created {
		return chat.ID, false, nil
	}

	// 雙方各一筆索引, 反正規化對方的名稱與頭像
	now := time.Now().UnixMilli()
	entries := []domain.ChatIndexEntry{
		{
			ID:              domain.IndexEntryID(memberID, chat.ID),
			ChatID:          chat.ID,
			UserID:          memberID,
			OtherUserID:     otherMemberID,
			OtherUserName:   other.Username,
			OtherUserAvatar: other.Avatar,
			LastRead:        now,
		},
		{
			ID:              domain.IndexEntryID(otherMemberID, chat.ID),
			ChatID:          chat.ID,
			UserID:          otherMemberID,
			OtherUserID:     memberID,
			OtherUserName:   me.Username,
			OtherUserAvatar: me.Avatar,
			LastRead:        now,
		},
	}
	for i := range entries {
		if err := uc.userChatRepo.UpsertEntry(ctx, &entries[i]); err != nil {
			return "", false, err
		}
	}

	return chat.ID, created, nil
}

// ListChats 依 last_read 由新到舊列出會員的聊天室索引
func (uc *chatUseCase) ListChats(ctx context.Context, memberID string) ([]domain.ChatIndexEntry, error) {
	return uc.userChatRepo.ListByUser(ctx, memberID)
}

// MarkChatRead 進入聊天室時把 last_read 推到現在
func (uc *chatUseCase) MarkChatRead(ctx context.Context, memberID, chatID string) error {
	return uc.userChatRepo.TouchLastRead(ctx, memberID, chatID, time.Now().UnixMilli())
}
