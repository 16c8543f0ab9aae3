package app

import (
	"context"
	"time"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	memberdomain "github.com/mizerolucky/Follow-Up/internal/member/domain"

	"github.com/stretchr/testify/mock"
)

// MockChatRepository Mock ChatRepository
type MockChatRepository struct {
	mock.Mock
}

// FindOrCreate moke find or create chat
func (m *MockChatRepository) FindOrCreate(ctx context.Context, chat *domain.Chat) (*domain.Chat, bool, error) {
	args := m.Called(ctx, chat)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Chat), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

// FindByID moke find chat by id
func (m *MockChatRepository) FindByID(ctx context.Context, chatID string) (*domain.Chat, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Chat), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateLastMessage moke update chat last message
func (m *MockChatRepository) UpdateLastMessage(ctx context.Context, chatID, lastMessage string, at int64) error {
	args := m.Called(ctx, chatID, lastMessage, at)
	return args.Error(0)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// ReplaceSenderMessage moke replace sender message slot
func (m *MockMessageRepository) ReplaceSenderMessage(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// ListByChat moke list chat messages
func (m *MockMessageRepository) ListByChat(ctx context.Context, chatID string) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindBySender moke find sender message
func (m *MockMessageRepository) FindBySender(ctx context.Context, chatID, senderID string) (*domain.ChatMessage, error) {
	args := m.Called(ctx, chatID, senderID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// CountBySender moke count sender messages
func (m *MockMessageRepository) CountBySender(ctx context.Context, chatID, senderID string) (int64, error) {
	args := m.Called(ctx, chatID, senderID)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserChatRepository Mock UserChatRepository
type MockUserChatRepository struct {
	mock.Mock
}

// UpsertEntry moke upsert chat index entry
func (m *MockUserChatRepository) UpsertEntry(ctx context.Context, entry *domain.ChatIndexEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// TouchLastRead moke touch last read
func (m *MockUserChatRepository) TouchLastRead(ctx context.Context, userID, chatID string, at int64) error {
	args := m.Called(ctx, userID, chatID, at)
	return args.Error(0)
}

// ListByUser moke list chat index entries
func (m *MockUserChatRepository) ListByUser(ctx context.Context, userID string) ([]domain.ChatIndexEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatIndexEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindEntry moke find chat index entry
func (m *MockUserChatRepository) FindEntry(ctx context.Context, userID, chatID string) (*domain.ChatIndexEntry, error) {
	args := m.Called(ctx, userID, chatID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatIndexEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTypingRepository Mock TypingRepository
type MockTypingRepository struct {
	mock.Mock
}

// SetMarker moke set typing marker
func (m *MockTypingRepository) SetMarker(ctx context.Context, chatID, memberID string, marker domain.TypingMarker) error {
	args := m.Called(ctx, chatID, memberID, marker)
	return args.Error(0)
}

// ClearMarker moke clear typing marker
func (m *MockTypingRepository) ClearMarker(ctx context.Context, chatID, memberID string) error {
	args := m.Called(ctx, chatID, memberID)
	return args.Error(0)
}

// ListMarkers moke list typing markers
func (m *MockTypingRepository) ListMarkers(ctx context.Context, chatID string) (map[string]domain.TypingMarker, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]domain.TypingMarker), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPresenceRepository Mock PresenceRepository
type MockPresenceRepository struct {
	mock.Mock
}

// SetStatus moke set presence record
func (m *MockPresenceRepository) SetStatus(ctx context.Context, memberID string, record domain.PresenceRecord, ttl time.Duration) error {
	args := m.Called(ctx, memberID, record, ttl)
	return args.Error(0)
}

// RefreshStatus moke refresh presence ttl
func (m *MockPresenceRepository) RefreshStatus(ctx context.Context, memberID string, ttl time.Duration) error {
	args := m.Called(ctx, memberID, ttl)
	return args.Error(0)
}

// GetStatus moke get presence record
func (m *MockPresenceRepository) GetStatus(ctx context.Context, memberID string) (*domain.PresenceRecord, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.PresenceRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

// SubscribeTransitions moke subscribe presence transitions
func (m *MockPresenceRepository) SubscribeTransitions(ctx context.Context, handler func(ev domain.PresenceEvent)) error {
	args := m.Called(ctx, handler)
	return args.Error(0)
}

// MockRedisPubSub Mock RedisPubSub
type MockRedisPubSub struct {
	mock.Mock
}

// Publish moke publisher
func (m *MockRedisPubSub) Publish(channel string, message interface{}) error {
	args := m.Called(channel, message)
	return args.Error(0)
}

// Subscribe moke subscriber
func (m *MockRedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	args := m.Called(channel, handler)
	return args.Error(0)
}

// MockMemberRepository Mock member repository
type MockMemberRepository struct {
	mock.Mock
}

// CreateMember moke create member
func (m *MockMemberRepository) CreateMember(ctx context.Context, member *memberdomain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

// FindByMember moke find member
func (m *MockMemberRepository) FindByMember(ctx context.Context, memberQuery *memberdomain.MemberQuery) (*memberdomain.Member, error) {
	args := m.Called(ctx, memberQuery)
	if args.Get(0) != nil {
		return args.Get(0).(*memberdomain.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

// SearchMembers moke search members
func (m *MockMemberRepository) SearchMembers(ctx context.Context, term, excludeMemberID string) ([]memberdomain.Member, error) {
	args := m.Called(ctx, term, excludeMemberID)
	if args.Get(0) != nil {
		return args.Get(0).([]memberdomain.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateProfile moke update member profile
func (m *MockMemberRepository) UpdateProfile(ctx context.Context, memberID string, update *memberdomain.ProfileUpdate) error {
	args := m.Called(ctx, memberID, update)
	return args.Error(0)
}

// UpdatePresence moke update member presence
func (m *MockMemberRepository) UpdatePresence(ctx context.Context, memberID string, online bool) error {
	args := m.Called(ctx, memberID, online)
	return args.Error(0)
}
