package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/premium-access/internal/models"
)

// UpsertProfile сохраняет или обновляет профиль пользователя и отмечает
// последнюю активность. Уровень доступа, блокировка и премиум-поля
// существующей записи не затрагиваются.
func (s *Storage) UpsertProfile(ctx context.Context, userID int64, profile models.DummyProfile) error {
	const op = "storage.UpsertProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (user_id, username, first_name, last_name, tier,
			      joined_at, last_activity)
			  VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), 'free', now(), now())
			  ON CONFLICT (user_id) DO UPDATE
			  SET username = COALESCE(NULLIF($2, ''), users.username),
			      first_name = COALESCE(NULLIF($3, ''), users.first_name),
			      last_name = COALESCE(NULLIF($4, ''), users.last_name),
			      last_activity = now()`
	if _, err := s.DB.ExecContext(ctx, query,
		userID, profile.Username, profile.FirstName, profile.LastName); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает запись пользователя по его ID.
// Отсутствие записи не ошибка: возвращается (nil, nil), вызывающая
// сторона трактует такого пользователя как бесплатного.
func (s *Storage) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id, username, first_name, last_name, tier,
			      subscription_end, premium_source, is_banned, joined_at, last_activity
			  FROM users
			  WHERE user_id = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, userID)

	var username, firstName, lastName, premiumSource sql.NullString
	var subscriptionEnd sql.NullTime
	if err := row.Scan(&u.UserID, &username, &firstName, &lastName, &u.Tier,
		&subscriptionEnd, &premiumSource, &u.IsBanned, &u.JoinedAt, &u.LastActivity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if username.Valid {
		u.Username = &username.String
	}
	if firstName.Valid {
		u.FirstName = &firstName.String
	}
	if lastName.Valid {
		u.LastName = &lastName.String
	}
	if subscriptionEnd.Valid {
		u.SubscriptionEnd = &subscriptionEnd.Time
	}
	if premiumSource.Valid {
		u.PremiumSource = &premiumSource.String
	}
	return u, nil
}

// DowngradeExpired понижает пользователя до бесплатного уровня, если его
// премиум истёк. Условие входит в сам запрос, поэтому операция атомарна
// и идемпотентна: параллельные вызовы дают тот же результат, что один.
func (s *Storage) DowngradeExpired(ctx context.Context, userID int64) error {
	const op = "storage.DowngradeExpired"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET tier = 'free', subscription_end = NULL, premium_source = NULL
			  WHERE user_id = $1
			    AND tier = 'paid'
			    AND subscription_end IS NOT NULL
			    AND subscription_end <= now()`
	if _, err := s.DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetTier безусловно устанавливает уровень доступа пользователя.
// Для paid передаются срок окончания и источник премиума, для free
// оба аргумента nil и премиум-поля очищаются.
func (s *Storage) SetTier(ctx context.Context, userID int64, tier string, subscriptionEnd *time.Time, source *string) error {
	const op = "storage.SetTier"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (user_id, tier, subscription_end, premium_source,
			      joined_at, last_activity)
			  VALUES ($1, $2, $3, $4, now(), now())
			  ON CONFLICT (user_id) DO UPDATE
			  SET tier = $2, subscription_end = $3, premium_source = $4`
	if _, err := s.DB.ExecContext(ctx, query, userID, tier, subscriptionEnd, source); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GrantAdsPremium выдаёт рекламный премиум до указанного момента.
// Выдача отклоняется, когда у пользователя уже действует премиум из
// другого источника: условие проверяется в самом запросе, поэтому
// решение принимает база, а не приложение. Возвращает true, если
// премиум выдан.
func (s *Storage) GrantAdsPremium(ctx context.Context, userID int64, until time.Time) (bool, error) {
	const op = "storage.GrantAdsPremium"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (user_id, tier, subscription_end, premium_source,
			      joined_at, last_activity)
			  VALUES ($1, 'paid', $2, 'ads', now(), now())
			  ON CONFLICT (user_id) DO UPDATE
			  SET tier = 'paid', subscription_end = $2, premium_source = 'ads'
			  WHERE NOT (users.tier = 'paid'
			             AND users.subscription_end IS NOT NULL
			             AND users.subscription_end > now()
			             AND users.premium_source IS DISTINCT FROM 'ads')`
	result, err := s.DB.ExecContext(ctx, query, userID, until)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// SetBanned устанавливает флаг блокировки пользователя.
func (s *Storage) SetBanned(ctx context.Context, userID int64, banned bool) error {
	const op = "storage.SetBanned"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (user_id, tier, is_banned, joined_at, last_activity)
			  VALUES ($1, 'free', $2, now(), now())
			  ON CONFLICT (user_id) DO UPDATE
			  SET is_banned = $2`
	if _, err := s.DB.ExecContext(ctx, query, userID, banned); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
