package app

import (
	"context"
	"testing"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	memberdomain "github.com/mizerolucky/Follow-Up/internal/member/domain"
	"github.com/mizerolucky/Follow-Up/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func memberFixture(memberID, username string) *memberdomain.Member {
	return &memberdomain.Member{
		MemberID: memberID,
		Username: username,
		Email:    username + "@mail.com",
		Avatar:   "https://blob/" + memberID + ".png",
	}
}

// 測試 StartChat 建立新聊天室並替雙方寫入索引
func TestChatUseCase_StartChat(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockChatRepo := new(MockChatRepository)
	mockUserChatRepo := new(MockUserChatRepository)
	mockMemberRepo := new(MockMemberRepository)

	mockMemberRepo.On("FindByMember", ctx, mock.Anything).Return(memberFixture("member-a", "alice"), nil).Once()
	mockMemberRepo.On("FindByMember", ctx, mock.Anything).Return(memberFixture("member-b", "bob"), nil).Once()

	created := &domain.Chat{
		ID:           "chat-1",
		PairKey:      "member-a_member-b",
		Participants: []string{"member-a", "member-b"},
	}
	mockChatRepo.On("FindOrCreate", ctx, mock.MatchedBy(func(c *domain.Chat) bool {
		return c.PairKey == "member-a_member-b"
	})).Return(created, true, nil)
	mockUserChatRepo.On("UpsertEntry", ctx, mock.Anything).Return(nil).Twice()

	uc := NewChatUseCase(mockChatRepo, mockUserChatRepo, mockMemberRepo)
	chatID, isNew, err := uc.StartChat(ctx, "member-a", "member-b")

	assert.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "chat-1", chatID)

	mockChatRepo.AssertExpectations(t)
	mockUserChatRepo.AssertExpectations(t)
	mockMemberRepo.AssertExpectations(t)
}

// 參數反過來也要算出同一個 pair key, 拿回同一間聊天室
func TestChatUseCase_StartChat_OrderIndependent(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockChatRepo := new(MockChatRepository)
	mockUserChatRepo := new(MockUserChatRepository)
	mockMemberRepo := new(MockMemberRepository)

	mockMemberRepo.On("FindByMember", ctx, mock.Anything).Return(memberFixture("member-b", "bob"), nil).Once()
	mockMemberRepo.On("FindByMember", ctx, mock.Anything).Return(memberFixture("member-a", "alice"), nil).Once()

	existing := &domain.Chat{
		ID:           "chat-1",
		PairKey:      "member-a_member-b",
		Participants: []string{"member-a", "member-b"},
	}
	mockChatRepo.On("FindOrCreate", ctx, mock.MatchedBy(func(c *domain.Chat) bool {
		return c.PairKey == "member-a_member-b"
	})).Return(existing, false, nil)

	uc := NewChatUseCase(mockChatRepo, mockUserChatRepo, mockMemberRepo)
	chatID, isNew, err := uc.StartChat(ctx, "member-b", "member-a")

	assert.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, "chat-1", chatID)
	// 既有聊天室不碰索引, 否則會蓋掉雙方的 last_read
	mockUserChatRepo.AssertNotCalled(t, "UpsertEntry", mock.Anything, mock.Anything)
}

// 重開既有聊天室不可重寫索引, 雙方的已讀位置要原封不動
func TestChatUseCase_StartChat_ExistingKeepsLastRead(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockChatRepo := new(MockChatRepository)
	mockUserChatRepo := new(MockUserChatRepository)
	mockMemberRepo := new(MockMemberRepository)

	mockMemberRepo.On("FindByMember", ctx, mock.Anything).Return(memberFixture("member-a", "alice"), nil).Once()
	mockMemberRepo.On("FindByMember", ctx, mock.Anything).Return(memberFixture("member-b", "bob"), nil).Once()

	existing := &domain.Chat{
		ID:           "chat-1",
		PairKey:      "member-a_member-b",
		Participants: []string{"member-a", "member-b"},
	}
	mockChatRepo.On("FindOrCreate", ctx, mock.Anything).Return(existing, false, nil)

	uc := NewChatUseCase(mockChatRepo, mockUserChatRepo, mockMemberRepo)
	_, isNew, err := uc.StartChat(ctx, "member-a", "member-b")

	assert.NoError(t, err)
	assert.False(t, isNew)
	mockUserChatRepo.AssertNotCalled(t, "UpsertEntry", mock.Anything, mock.Anything)
}

// 與自己開聊天室要被擋下
func TestChatUseCase_StartChat_Self(t *testing.T) {
	logger.SetNewNop()
	uc := NewChatUseCase(new(MockChatRepository), new(MockUserChatRepository), new(MockMemberRepository))

	_, _, err := uc.StartChat(context.Background(), "member-a", "member-a")

	assert.ErrorIs(t, err, ErrSelfChat)
}

// 對象不存在
func TestChatUseCase_StartChat_MemberNotFound(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockChatRepo := new(MockChatRepository)
	mockMemberRepo := new(MockMemberRepository)

	mockMemberRepo.On("FindByMember", ctx, mock.Anything).Return(memberFixture("member-a", "alice"), nil).Once()
	mockMemberRepo.On("FindByMember", ctx, mock.Anything).Return(nil, nil).Once()

	uc := NewChatUseCase(mockChatRepo, new(MockUserChatRepository), mockMemberRepo)
	_, _, err := uc.StartChat(ctx, "member-a", "ghost")

	assert.ErrorIs(t, err, ErrMemberNotFound)
	mockChatRepo.AssertNotCalled(t, "FindOrCreate", mock.Anything, mock.Anything)
}

// ListChats 透傳索引列表
func TestChatUseCase_ListChats(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockUserChatRepo := new(MockUserChatRepository)
	expect := []domain.ChatIndexEntry{
		{ChatID: "chat-2", UserID: "member-a", OtherUserID: "member-c", LastRead: 200},
		{ChatID: "chat-1", UserID: "member-a", OtherUserID: "member-b", LastRead: 100},
	}
	mockUserChatRepo.On("ListByUser", ctx, "member-a").Return(expect, nil)

	uc := NewChatUseCase(new(MockChatRepository), mockUserChatRepo, new(MockMemberRepository))
	result, err := uc.ListChats(ctx, "member-a")

	assert.NoError(t, err)
	assert.Equal(t, expect, result)
}
