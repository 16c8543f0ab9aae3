package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/mizerolucky/Follow-Up/internal/member/domain"
	"github.com/mizerolucky/Follow-Up/internal/member/repository"
	"github.com/mizerolucky/Follow-Up/pkg/database"
	"github.com/mizerolucky/Follow-Up/pkg/encrypt"
	"github.com/mizerolucky/Follow-Up/pkg/logger"
	token "github.com/mizerolucky/Follow-Up/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 對外顯示的驗證錯誤, 前端直接呈現
var (
	ErrWrongCredentials = errors.New("invalid email or password")
	ErrTooManyRequests  = errors.New("too many failed attempts, please try again later")
	ErrEmailInUse       = errors.New("email is already in use")
	ErrInvalidEmail     = errors.New("invalid email address")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// 登入失敗次數上限, 超過即視為 rate-limited
const (
	loginAttemptLimit  = 5
	loginAttemptWindow = 10 * time.Minute
)

// MemberUseCase 這裡封裝了對外提供的應用服務
type MemberUseCase interface {
	Register(ctx context.Context, email, password, username string) error
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error)
	SearchMembers(ctx context.Context, term, selfMemberID string) ([]domain.Member, error)
	UpdateProfile(ctx context.Context, memberID string, update *domain.ProfileUpdate) error
	UploadAvatar(ctx context.Context, memberID, filename, contentType string, r io.Reader, size int64) (string, error)
}

type memberUseCase struct {
	memberRepo  repository.MemberRepository
	sessionTTL  time.Duration
	sessionRepo database.RedisRepository[domain.MemberSession]
	attemptRepo database.RedisRepository[int]
	blob        *database.MinIOClient
	issuer      string
}

// NewMemberUseCase 建立一個新的 MemberUseCase
func NewMemberUseCase(memberRepo repository.MemberRepository,
	sessionTTL time.Duration,
	sessionRepo database.RedisRepository[domain.MemberSession],
	attemptRepo database.RedisRepository[int],
	blob *database.MinIOClient,
	issuer string,
) MemberUseCase {
	return &memberUseCase{
		memberRepo:  memberRepo,
		sessionTTL:  sessionTTL,
		sessionRepo: sessionRepo,
		attemptRepo: attemptRepo,
		blob:        blob,
		issuer:      issuer,
	}
}

// Register 建立帳號並寫入預設個人資料 (status "Available", 空 bio, online=true)
func (m *memberUseCase) Register(ctx context.Context, email, password, username string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	// 檢查 email 是否已存在, 查詢失敗不可當成沒被使用
	if _, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email}); err == nil {
		return ErrEmailInUse
	} else if !errors.Is(err, repository.ErrMemberNotFound) {
		return err
	}

	pw, err := encrypt.HashPassword(password)
	if err != nil {
		return err
	}

	member := domain.Member{
		MemberID: uuid.New().String(),
		Username: username,
		Email:    email,
		Password: pw,
		Status:   domain.DefaultStatus,
		Bio:      "",
		Online:   true,
	}

	logger.Log.Debug("usecase Register", zap.String("email", email), zap.String("username", username))

	// 檢查與插入之間可能被別人搶先, 唯一索引衝突同樣回報 email 已被使用
	if err := m.memberRepo.CreateMember(ctx, &member); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return ErrEmailInUse
		}
		return err
	}
	return nil
}

// Login 驗證密碼, 簽發 JWT 並在 Redis 建立 session
func (m *memberUseCase) Login(ctx context.Context, email, password string) (string, error) {
	attemptKey := "login_attempts:" + email
	if attempts, err := m.attemptRepo.Get(ctx, attemptKey); err == nil && attempts >= loginAttemptLimit {
		return "", ErrTooManyRequests
	}

	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email})
	if err != nil {
		m.recordFailedAttempt(ctx, attemptKey)
		return "", ErrWrongCredentials
	}

	if err = member.IsPasswordMatch(password); err != nil {
		m.recordFailedAttempt(ctx, attemptKey)
		return "", ErrWrongCredentials
	}

	t, err := token.GenerateJWT(member.MemberID, string(token.RoleMember), m.issuer)
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := domain.MemberSession{
		Token:        t,
		MemberID:     member.MemberID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(m.sessionTTL),
	}

	if err := m.sessionRepo.Set(ctx, member.MemberID, session, m.sessionTTL); err != nil {
		return "", err
	}
	m.attemptRepo.Del(ctx, attemptKey)

	return t, nil
}

// Logout 清除 session
func (m *memberUseCase) Logout(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWT(t)
	if err != nil {
		logger.Log.Error("Logout err :", zap.String("err", err.Error()))
		return err
	}

	if err := m.sessionRepo.Del(ctx, tokenInfo.MemberID); err != nil {
		return err
	}

	return m.memberRepo.UpdatePresence(ctx, tokenInfo.MemberID, false)
}

// FindMember 依查詢條件尋找使用者
func (m *memberUseCase) FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error) {
	return m.memberRepo.FindByMember(ctx, param)
}

// SearchMembers 新聊天對象搜尋, email 或 username 精確比對
func (m *memberUseCase) SearchMembers(ctx context.Context, term, selfMemberID string) ([]domain.Member, error) {
	return m.memberRepo.SearchMembers(ctx, term, selfMemberID)
}

// UpdateProfile 修改個人資料 (username / status / bio)
func (m *memberUseCase) UpdateProfile(ctx context.Context, memberID string, update *domain.ProfileUpdate) error {
	return m.memberRepo.UpdateProfile(ctx, memberID, update)
}

// UploadAvatar 上傳頭像到 blob store 並把 URL 寫回個人資料
func (m *memberUseCase) UploadAvatar(ctx context.Context, memberID, filename, contentType string, r io.Reader, size int64) (string, error) {
	objectName := fmt.Sprintf("avatars/%s/%d-%s", memberID, time.Now().UnixMilli(), filename)
	if err := m.blob.UploadStream(ctx, objectName, r, size, contentType); err != nil {
		return "", err
	}

	url, err := m.blob.PresignGetURL(ctx, objectName, 7*24*time.Hour)
	if err != nil {
		return "", err
	}

	if err := m.memberRepo.UpdateProfile(ctx, memberID, &domain.ProfileUpdate{Avatar: &url}); err != nil {
		return "", err
	}
	return url, nil
}

func (m *memberUseCase) recordFailedAttempt(ctx context.Context, key string) {
	attempts, _ := m.attemptRepo.Get(ctx, key)
	if err := m.attemptRepo.Set(ctx, key, attempts+1, loginAttemptWindow); err != nil {
		logger.Log.Warn("record login attempt failed", zap.Error(err))
	}
}
