package domain

import (
	"time"

	"github.com/mizerolucky/Follow-Up/pkg/encrypt"
)

// DefaultStatus 註冊時的預設狀態列
const DefaultStatus = "Available"

// Member 用來表示使用者個人資料
type Member struct {
	ID       int64
	MemberID string
	Username string
	Email    string
	Password string
	Avatar   string
	Status   string
	Bio      string
	Online   bool
	LastSeen time.Time
}

// MemberSession 用來表示使用者的 Session
type MemberSession struct {
	Token        string    `json:"Token"`
	MemberID     string    `json:"MemberID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// IsPasswordMatch 密碼驗證
func (m *Member) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(m.Password, inputPwd)
}

// IsExpired 檢查 Session 是否已過期
func (s *MemberSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// MemberQuery join conditions are used to query members
type MemberQuery struct {
	ID       *int64  `db:"id"`
	MemberID *string `db:"member_id"`
	Email    *string `db:"email"`
	Username *string `db:"username"`
}

// ProfileUpdate 可修改的個人資料欄位, nil 表示不更動
type ProfileUpdate struct {
	Username *string
	Status   *string
	Bio      *string
	Avatar   *string
}
