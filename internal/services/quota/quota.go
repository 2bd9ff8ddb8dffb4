// Package services содержит бизнес-логику дневной квоты загрузок
// для бесплатных пользователей.
package services

import (
	"context"
	"log/slog"
	"time"
)

// QuotaRepository определяет методы хранилища для дневных счётчиков.
type QuotaRepository interface {
	// GetDailyUsage возвращает счётчик за день, ноль если записи нет.
	GetDailyUsage(ctx context.Context, userID int64, day string) (int, error)
	// IncrementUsage атомарно увеличивает счётчик и возвращает новое значение.
	IncrementUsage(ctx context.Context, userID int64, day string) (int, error)
}

// QuotaService реализует учёт дневной квоты. Счётчик ведётся по
// календарным дням UTC, на границе суток квота сбрасывается неявно:
// новый день означает новый ключ.
type QuotaService struct {
	repo  QuotaRepository
	log   *slog.Logger
	limit int
}

// NewQuotaService создает новый экземпляр QuotaService.
func NewQuotaService(repo QuotaRepository, log *slog.Logger, limit int) *QuotaService {
	return &QuotaService{
		repo:  repo,
		log:   log,
		limit: limit,
	}
}

// DayKey возвращает ключ дня в формате YYYY-MM-DD по UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Used возвращает количество загрузок пользователя за сегодня.
func (s *QuotaService) Used(ctx context.Context, userID int64) (int, error) {
	return s.repo.GetDailyUsage(ctx, userID, DayKey(time.Now()))
}

// Remaining возвращает остаток квоты на сегодня, не меньше нуля.
func (s *QuotaService) Remaining(ctx context.Context, userID int64) (int, error) {
	used, err := s.Used(ctx, userID)
	if err != nil {
		return 0, err
	}
	remaining := s.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Increment увеличивает счётчик загрузок. Вызывается только после
// подтверждённой доставки файла: неудавшаяся загрузка квоту не тратит.
func (s *QuotaService) Increment(ctx context.Context, userID int64) (int, error) {
	count, err := s.repo.IncrementUsage(ctx, userID, DayKey(time.Now()))
	if err != nil {
		return 0, err
	}
	s.log.Info("incremented daily usage",
		slog.Int64("user_id", userID),
		slog.Int("count", count))
	return count, nil
}

// Limit возвращает настроенный дневной лимит.
func (s *QuotaService) Limit() int {
	return s.limit
}
