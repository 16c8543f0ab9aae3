package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"github.com/mizerolucky/Follow-Up/internal/member/domain"
	"github.com/mizerolucky/Follow-Up/pkg/logger"
)

var (
	// ErrMemberNotFound 查無符合條件的 member
	ErrMemberNotFound = errors.New("no member found with given criteria")
	// ErrEmailTaken email 唯一索引衝突
	ErrEmailTaken = errors.New("email is already registered")
)

// MemberRepository definition get Member info
type MemberRepository interface {
	CreateMember(ctx context.Context, member *domain.Member) error
	FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error)
	SearchMembers(ctx context.Context, term, excludeMemberID string) ([]domain.Member, error)
	UpdateProfile(ctx context.Context, memberID string, update *domain.ProfileUpdate) error
	// UpdatePresence 由 presence mirror 呼叫, last_seen 一律用 server time
	UpdatePresence(ctx context.Context, memberID string, online bool) error
}

type memberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db *pgxpool.Pool) MemberRepository {
	// email 唯一索引: 併發註冊同一個 email 只會有一筆成功
	if _, err := db.Exec(context.Background(),
		"CREATE UNIQUE INDEX IF NOT EXISTS member_email_key ON member (email)"); err != nil {
		logger.Log.Warn("ensure member email index failed", zap.Error(err))
	}
	return &memberRepository{db: db}
}

func (r *memberRepository) CreateMember(ctx context.Context, member *domain.Member) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO member(member_id, username, email, password, avatar, status, bio, online, last_seen)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
		member.MemberID, member.Username, member.Email, member.Password,
		member.Avatar, member.Status, member.Bio, member.Online)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *memberRepository) FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error) {
	queryStr := `SELECT id, member_id, username, email, password, avatar, status, bio, online, last_seen
		 FROM member WHERE 1=1`
	params := []interface{}{}
	paramCount := 1

	if memberQuery.Email != nil {
		queryStr += fmt.Sprintf(" AND email = $%d", paramCount)
		params = append(params, *memberQuery.Email)
		paramCount++
	}
	if memberQuery.Username != nil {
		queryStr += fmt.Sprintf(" AND username = $%d", paramCount)
		params = append(params, *memberQuery.Username)
		paramCount++
	}
	if memberQuery.MemberID != nil {
		queryStr += fmt.Sprintf(" AND member_id = $%d", paramCount)
		params = append(params, *memberQuery.MemberID)
		paramCount++
	}
	if memberQuery.ID != nil {
		queryStr += fmt.Sprintf(" AND id = $%d", paramCount)
		params = append(params, *memberQuery.ID)
		paramCount++
	}

	row := r.db.QueryRow(ctx, queryStr, params...)
	var member domain.Member
	err := row.Scan(&member.ID, &member.MemberID, &member.Username, &member.Email,
		&member.Password, &member.Avatar, &member.Status, &member.Bio,
		&member.Online, &member.LastSeen)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	return &member, nil
}

// SearchMembers 以 email 或 username 精確比對, 排除自己
func (r *memberRepository) SearchMembers(ctx context.Context, term, excludeMemberID string) ([]domain.Member, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, member_id, username, email, password, avatar, status, bio, online, last_seen
		 FROM member
		 WHERE (email = $1 OR username = $2) AND member_id <> $3`,
		term, term, excludeMemberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.MemberID, &m.Username, &m.Email, &m.Password,
			&m.Avatar, &m.Status, &m.Bio, &m.Online, &m.LastSeen); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *memberRepository) UpdateProfile(ctx context.Context, memberID string, update *domain.ProfileUpdate) error {
	queryStr := "UPDATE member SET "
	params := []interface{}{}
	paramCount := 1

	appendSet := func(column string, val interface{}) {
		if paramCount > 1 {
			queryStr += ", "
		}
		queryStr += fmt.Sprintf("%s = $%d", column, paramCount)
		params = append(params, val)
		paramCount++
	}

	if update.Username != nil {
		appendSet("username", *update.Username)
	}
	if update.Status != nil {
		appendSet("status", *update.Status)
	}
	if update.Bio != nil {
		appendSet("bio", *update.Bio)
	}
	if update.Avatar != nil {
		appendSet("avatar", *update.Avatar)
	}

	if paramCount == 1 {
		return nil
	}

	queryStr += fmt.Sprintf(" WHERE member_id = $%d", paramCount)
	params = append(params, memberID)

	_, err := r.db.Exec(ctx, queryStr, params...)
	return err
}

func (r *memberRepository) UpdatePresence(ctx context.Context, memberID string, online bool) error {
	_, err := r.db.Exec(ctx,
		"UPDATE member SET online = $1, last_seen = NOW() WHERE member_id = $2",
		online, memberID)
	return err
}
