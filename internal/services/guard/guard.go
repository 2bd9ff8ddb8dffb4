// Package services содержит проверку допуска к загрузке: решение
// объединяет блокировку, уровень доступа и дневную квоту.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/premium-access/internal/models"
)

// TierResolver разрешает действующий уровень доступа пользователя.
type TierResolver interface {
	ResolveTier(ctx context.Context, userID int64) (string, *models.User, error)
}

// QuotaCounter отвечает за остаток дневной квоты.
type QuotaCounter interface {
	Remaining(ctx context.Context, userID int64) (int, error)
	Limit() int
}

// UnlimitedRemaining обозначает отсутствие лимита для платных уровней.
const UnlimitedRemaining = -1

// Пользовательские сообщения отказа. Каждая причина получает свой текст,
// потому что подразумевает своё корректирующее действие.
const (
	msgBanned = "Your account has been blocked. Contact support if you believe this is a mistake."
	msgQuota  = "Daily limit of %d downloads reached. Watch an ad to get premium access for 30 minutes, or come back tomorrow."
)

// Decision описывает результат проверки допуска.
type Decision struct {
	Allowed   bool   `json:"allowed"`           // Загрузка разрешена
	Tier      string `json:"tier"`              // Действующий уровень доступа
	Remaining int    `json:"remaining"`         // Остаток квоты, -1 для безлимита
	Message   string `json:"message,omitempty"` // Пользовательское сообщение при отказе
}

// GuardService принимает решение о допуске к загрузке.
type GuardService struct {
	tiers TierResolver
	quota QuotaCounter
	log   *slog.Logger
}

// NewGuardService создает новый экземпляр GuardService.
func NewGuardService(tiers TierResolver, quota QuotaCounter, log *slog.Logger) *GuardService {
	return &GuardService{
		tiers: tiers,
		quota: quota,
		log:   log,
	}
}

// Check возвращает решение о допуске пользователя к загрузке.
// Проверки идут в порядке: блокировка, уровень, квота. Заблокированный
// пользователь получает отказ независимо от уровня. Платные и
// административные уровни квотой не ограничены.
func (s *GuardService) Check(ctx context.Context, userID int64) (*Decision, error) {
	tier, user, err := s.tiers.ResolveTier(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user != nil && user.IsBanned {
		s.log.Info("denied banned user", slog.Int64("user_id", userID))
		return &Decision{
			Allowed:   false,
			Tier:      tier,
			Remaining: 0,
			Message:   msgBanned,
		}, nil
	}

	if tier == models.TierPaid || tier == models.TierAdmin {
		return &Decision{
			Allowed:   true,
			Tier:      tier,
			Remaining: UnlimitedRemaining,
		}, nil
	}

	remaining, err := s.quota.Remaining(ctx, userID)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		s.log.Info("denied over quota", slog.Int64("user_id", userID))
		return &Decision{
			Allowed:   false,
			Tier:      tier,
			Remaining: 0,
			Message:   fmt.Sprintf(msgQuota, s.quota.Limit()),
		}, nil
	}

	return &Decision{
		Allowed:   true,
		Tier:      tier,
		Remaining: remaining,
	}, nil
}
