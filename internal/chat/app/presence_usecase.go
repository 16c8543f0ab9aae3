package app

import (
	"context"
	"time"

	"github.com/mizerolucky/Follow-Up/internal/chat/domain"
	"github.com/mizerolucky/Follow-Up/internal/chat/repository"
	memberrepo "github.com/mizerolucky/Follow-Up/internal/member/repository"
	"github.com/mizerolucky/Follow-Up/pkg/logger"

	"go.uber.org/zap"
)

// PresenceUseCase 上下線狀態: 連線時寫入帶 TTL 的 online 紀錄並定時續約,
// 斷線 (或 process 死掉) TTL 過期即自動離線
type PresenceUseCase interface {
	Connect(ctx context.Context, memberID string) error
	Disconnect(ctx context.Context, memberID string) error
	GetStatus(ctx context.Context, memberID string) (*domain.PresenceRecord, error)
	StartMirror(ctx context.Context) error
}

type presenceUseCase struct {
	presenceRepo      repository.PresenceRepository
	memberRepo        memberrepo.MemberRepository
	heartbeatInterval time.Duration
	statusTTL         time.Duration
}

// NewPresenceUseCase init presence use case
func NewPresenceUseCase(
	presenceRepo repository.PresenceRepository,
	memberRepo memberrepo.MemberRepository,
	heartbeatInterval, statusTTL time.Duration,
) PresenceUseCase {
	return &presenceUseCase{
		presenceRepo:      presenceRepo,
		memberRepo:        memberRepo,
		heartbeatInterval: heartbeatInterval,
		statusTTL:         statusTTL,
	}
}

// Connect 標記上線並啟動心跳, ctx 結束後心跳停止, 紀錄靠 TTL 過期轉離線
func (uc *presenceUseCase) Connect(ctx context.Context, memberID string) error {
	record := domain.PresenceRecord{
		State:       domain.PresenceOnline,
		LastChanged: time.Now().UnixMilli(),
	}
	if err := uc.presenceRepo.SetStatus(ctx, memberID, record, uc.statusTTL); err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(uc.heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := uc.presenceRepo.RefreshStatus(ctx, memberID, uc.statusTTL); err != nil {
					if ctx.Err() == nil {
						logger.Log.Warn("refresh presence failed",
							zap.String("memberID", memberID), zap.Error(err))
					}
				}
			}
		}
	}()

	return nil
}

// Disconnect 主動離線 (正常關閉連線時呼叫)
func (uc *presenceUseCase) Disconnect(ctx context.Context, memberID string) error {
	return uc.presenceRepo.SetStatus(ctx, memberID, domain.PresenceRecord{
		State:       domain.PresenceOffline,
		LastChanged: time.Now().UnixMilli(),
	}, 0)
}

// GetStatus get member presence
func (uc *presenceUseCase) GetStatus(ctx context.Context, memberID string) (*domain.PresenceRecord, error) {
	return uc.presenceRepo.GetStatus(ctx, memberID)
}

// StartMirror 訂閱上下線事件, 回寫 member 的 online / last_seen
// (last_seen 用 DB 的 NOW(), 不信任 client 時間)
func (uc *presenceUseCase) StartMirror(ctx context.Context) error {
	return uc.presenceRepo.SubscribeTransitions(ctx, func(ev domain.PresenceEvent) {
		if err := uc.memberRepo.UpdatePresence(ctx, ev.MemberID, ev.State == domain.PresenceOnline); err != nil {
			logger.Log.Error("mirror presence to member failed",
				zap.String("memberID", ev.MemberID), zap.Error(err))
		}
	})
}
