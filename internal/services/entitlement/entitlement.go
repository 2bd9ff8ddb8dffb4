// Package services содержит бизнес-логику уровней доступа: разрешение
// уровня пользователя, выдачу и отзыв премиума, блокировки и
// администраторов.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/premium-access/internal/models"
)

// EntitlementRepository определяет методы хранилища для записей пользователей.
type EntitlementRepository interface {
	// UpsertProfile сохраняет профиль и отмечает активность.
	UpsertProfile(ctx context.Context, userID int64, profile models.DummyProfile) error
	// GetUser возвращает запись пользователя, (nil, nil) если её нет.
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	// DowngradeExpired атомарно понижает пользователя с истёкшим премиумом.
	DowngradeExpired(ctx context.Context, userID int64) error
	// SetTier безусловно устанавливает уровень доступа.
	SetTier(ctx context.Context, userID int64, tier string, subscriptionEnd *time.Time, source *string) error
	// GrantAdsPremium выдаёт рекламный премиум, false при конфликте источников.
	GrantAdsPremium(ctx context.Context, userID int64, until time.Time) (bool, error)
	// SetBanned устанавливает флаг блокировки.
	SetBanned(ctx context.Context, userID int64, banned bool) error
	// IsAdmin сообщает о членстве в множестве администраторов.
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	// AddAdmin добавляет администратора.
	AddAdmin(ctx context.Context, userID int64) error
	// RemoveAdmin удаляет администратора.
	RemoveAdmin(ctx context.Context, userID int64) (int, error)
	// Stats возвращает агрегированные показатели сервиса.
	Stats(ctx context.Context) (*models.Stats, error)
	// ListPremiumUsers возвращает пользователей с действующим премиумом.
	ListPremiumUsers(ctx context.Context) ([]*models.PremiumUser, error)
}

// EventPublisher публикует события выдачи и отзыва премиума.
type EventPublisher interface {
	PublishPremiumEvent(ctx context.Context, event models.PremiumEvent) error
}

// EntitlementService реализует операции над уровнями доступа.
type EntitlementService struct {
	repo            EntitlementRepository
	events          EventPublisher
	log             *slog.Logger
	premiumDuration time.Duration
}

// NewEntitlementService создает новый экземпляр EntitlementService.
// publisher может быть nil, тогда события не публикуются.
func NewEntitlementService(repo EntitlementRepository, events EventPublisher, log *slog.Logger, premiumDuration time.Duration) *EntitlementService {
	return &EntitlementService{
		repo:            repo,
		events:          events,
		log:             log,
		premiumDuration: premiumDuration,
	}
}

// TouchUser сохраняет профиль пользователя и отмечает активность.
// Вызывается на каждое входящее обращение и никогда не меняет уровень.
func (s *EntitlementService) TouchUser(ctx context.Context, userID int64, profile models.DummyProfile) error {
	return s.repo.UpsertProfile(ctx, userID, profile)
}

// ResolveTier возвращает действующий уровень доступа пользователя.
// Членство в множестве администраторов перекрывает хранимый уровень.
// Истёкший премиум понижается лениво при первом чтении: понижение
// идемпотентно, параллельные вызовы дают тот же результат.
func (s *EntitlementService) ResolveTier(ctx context.Context, userID int64) (string, *models.User, error) {
	isAdmin, err := s.repo.IsAdmin(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if isAdmin {
		return models.TierAdmin, user, nil
	}
	if user == nil {
		return models.TierFree, nil, nil
	}

	if user.Tier == models.TierPaid && !user.HasActivePremium(time.Now()) {
		if err = s.repo.DowngradeExpired(ctx, userID); err != nil {
			return "", nil, err
		}
		s.log.Info("downgraded expired premium", slog.Int64("user_id", userID))
		user.Tier = models.TierFree
		user.SubscriptionEnd = nil
		user.PremiumSource = nil
	}
	return user.Tier, user, nil
}

// IsBanned сообщает, заблокирован ли пользователь.
func (s *EntitlementService) IsBanned(ctx context.Context, userID int64) (bool, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsBanned, nil
}

// Ban блокирует пользователя.
func (s *EntitlementService) Ban(ctx context.Context, userID int64) error {
	if err := s.repo.SetBanned(ctx, userID, true); err != nil {
		return err
	}
	s.log.Info("banned user", slog.Int64("user_id", userID))
	return nil
}

// Unban снимает блокировку.
func (s *EntitlementService) Unban(ctx context.Context, userID int64) error {
	if err := s.repo.SetBanned(ctx, userID, false); err != nil {
		return err
	}
	s.log.Info("unbanned user", slog.Int64("user_id", userID))
	return nil
}

// PromoteAdmin добавляет пользователя в множество администраторов.
func (s *EntitlementService) PromoteAdmin(ctx context.Context, userID int64) error {
	return s.repo.AddAdmin(ctx, userID)
}

// DemoteAdmin удаляет пользователя из множества администраторов.
func (s *EntitlementService) DemoteAdmin(ctx context.Context, userID int64) error {
	_, err := s.repo.RemoveAdmin(ctx, userID)
	return err
}

// GrantViaAds выдаёт короткий премиум за просмотр рекламы.
// Выдача отклоняется с models.ErrConflict, когда у пользователя уже
// действует премиум из другого источника: рекламный премиум не должен
// затирать оплаченный. Повторная рекламная выдача продлевает срок.
func (s *EntitlementService) GrantViaAds(ctx context.Context, userID int64) (time.Time, error) {
	until := time.Now().UTC().Add(s.premiumDuration)
	granted, err := s.repo.GrantAdsPremium(ctx, userID, until)
	if err != nil {
		return time.Time{}, err
	}
	if !granted {
		return time.Time{}, models.ErrConflict
	}

	s.log.Info("granted ads premium",
		slog.Int64("user_id", userID),
		slog.Time("until", until))
	s.publish(ctx, models.EventPremiumGranted, userID, models.TierPaid, models.SourceAds, &until)
	return until, nil
}

// GrantViaAdmin безусловно устанавливает уровень пользователя.
// Для paid срок считается в сутках от текущего момента с точностью до
// дня, источником записывается paid. Для free премиум-поля очищаются.
func (s *EntitlementService) GrantViaAdmin(ctx context.Context, userID int64, tier string, days int) error {
	if tier == models.TierPaid {
		end := time.Now().UTC().AddDate(0, 0, days)
		end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
		source := models.SourcePaid
		if err := s.repo.SetTier(ctx, userID, models.TierPaid, &end, &source); err != nil {
			return err
		}
		s.log.Info("granted premium by admin",
			slog.Int64("user_id", userID),
			slog.Int("days", days))
		s.publish(ctx, models.EventPremiumGranted, userID, models.TierPaid, models.SourcePaid, &end)
		return nil
	}

	if err := s.repo.SetTier(ctx, userID, models.TierFree, nil, nil); err != nil {
		return err
	}
	s.log.Info("downgraded user by admin", slog.Int64("user_id", userID))
	s.publish(ctx, models.EventPremiumRevoked, userID, models.TierFree, "", nil)
	return nil
}

// Stats возвращает агрегированные показатели сервиса.
func (s *EntitlementService) Stats(ctx context.Context) (*models.Stats, error) {
	return s.repo.Stats(ctx)
}

// ListPremiumUsers возвращает пользователей с действующим премиумом.
func (s *EntitlementService) ListPremiumUsers(ctx context.Context) ([]*models.PremiumUser, error) {
	return s.repo.ListPremiumUsers(ctx)
}

func (s *EntitlementService) publish(ctx context.Context, eventType string, userID int64, tier, source string, end *time.Time) {
	if s.events == nil {
		return
	}
	event := models.PremiumEvent{
		EventID:         uuid.NewString(),
		Type:            eventType,
		UserID:          userID,
		Tier:            tier,
		Source:          source,
		SubscriptionEnd: end,
		OccurredAt:      time.Now().UTC(),
	}
	if err := s.events.PublishPremiumEvent(ctx, event); err != nil {
		s.log.Warn("failed to publish premium event",
			slog.String("type", eventType),
			slog.Int64("user_id", userID),
			slog.Any("err", err))
	}
}
