// Package services содержит бизнес-логику кодов подтверждения:
// выпуск одноразового кода и его погашение владельцем.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/premium-access/internal/lib/token"
	"github.com/magabrotheeeer/premium-access/internal/models"
)

// Выпуск повторяется при коллизии с существующим кодом. Коллизия на
// восьми шестнадцатеричных символах практически невероятна, лимит
// попыток страхует от зацикливания.
const maxIssueAttempts = 5

// CodeStore определяет методы эфемерного хранилища кодов.
type CodeStore interface {
	// CreateCode сохраняет код, false при коллизии с существующим.
	CreateCode(ctx context.Context, code models.VerificationCode, ttl time.Duration) (bool, error)
	// GetCode возвращает код, (nil, nil) если его нет.
	GetCode(ctx context.Context, code string) (*models.VerificationCode, error)
	// ConsumeCode удаляет код и сообщает, был ли он ещё жив.
	ConsumeCode(ctx context.Context, code string) (bool, error)
}

// VerificationService реализует выпуск и погашение кодов подтверждения.
type VerificationService struct {
	store   CodeStore
	log     *slog.Logger
	codeTTL time.Duration
}

// NewVerificationService создает новый экземпляр VerificationService.
func NewVerificationService(store CodeStore, log *slog.Logger, codeTTL time.Duration) *VerificationService {
	return &VerificationService{
		store:   store,
		log:     log,
		codeTTL: codeTTL,
	}
}

// Issue выпускает новый код подтверждения для пользователя.
func (s *VerificationService) Issue(ctx context.Context, userID int64) (string, error) {
	const op = "verification.Issue"

	for range maxIssueAttempts {
		code, err := token.Code()
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		created, err := s.store.CreateCode(ctx, models.VerificationCode{
			Code:      code,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}, s.codeTTL)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if created {
			s.log.Info("issued verification code", slog.Int64("user_id", userID))
			return code, nil
		}
	}
	return "", fmt.Errorf("%s: could not generate unique code", op)
}

// Redeem погашает код от имени пользователя. Код нормализуется перед
// поиском, проверки идут в порядке: отсутствие, чужой владелец,
// истечение срока. Погашение одноразовое: из конкурирующих запросов
// успешным будет ровно один. Сама выдача премиума остаётся за
// вызывающей стороной.
func (s *VerificationService) Redeem(ctx context.Context, userID int64, rawCode string) error {
	normalized := token.Normalize(rawCode)

	code, err := s.store.GetCode(ctx, normalized)
	if err != nil {
		return err
	}
	if code == nil {
		return models.ErrNotFound
	}
	if code.UserID != userID {
		return models.ErrWrongUser
	}
	if time.Since(code.CreatedAt) > s.codeTTL {
		// TTL ключа страхует от мусора, но решение принимает явная проверка
		if _, err = s.store.ConsumeCode(ctx, normalized); err != nil {
			s.log.Warn("failed to delete expired code", slog.Any("err", err))
		}
		return models.ErrExpired
	}

	consumed, err := s.store.ConsumeCode(ctx, normalized)
	if err != nil {
		return err
	}
	if !consumed {
		return models.ErrNotFound
	}

	s.log.Info("redeemed verification code", slog.Int64("user_id", userID))
	return nil
}

// TimeLeft возвращает остаток жизни кода в минутах с округлением вверх.
func (s *VerificationService) TimeLeft(ctx context.Context, rawCode string) (int, error) {
	normalized := token.Normalize(rawCode)

	code, err := s.store.GetCode(ctx, normalized)
	if err != nil {
		return 0, err
	}
	if code == nil {
		return 0, models.ErrNotFound
	}

	left := s.codeTTL - time.Since(code.CreatedAt)
	if left <= 0 {
		return 0, models.ErrExpired
	}
	minutes := int((left + time.Minute - 1) / time.Minute)
	return minutes, nil
}
