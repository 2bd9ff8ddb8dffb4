package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/premium-access/internal/models"
)

// Stats собирает агрегированные показатели сервиса для админской панели.
func (s *Storage) Stats(ctx context.Context) (*models.Stats, error) {
	const op = "storage.Stats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      (SELECT COUNT(*) FROM users),
			      (SELECT COUNT(*) FROM users
			           WHERE last_activity > now() - INTERVAL '7 days'),
			      (SELECT COUNT(*) FROM users
			           WHERE tier = 'paid' AND subscription_end > now()),
			      (SELECT COUNT(*) FROM admins),
			      (SELECT COALESCE(SUM(files_downloaded), 0) FROM daily_usage
			           WHERE day = (now() AT TIME ZONE 'UTC')::DATE)`
	var stats models.Stats
	if err := s.DB.QueryRowContext(ctx, query).Scan(
		&stats.TotalUsers, &stats.ActiveUsers, &stats.PaidUsers,
		&stats.AdminCount, &stats.TodayDownloads); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}

// ListPremiumUsers возвращает пользователей с действующим премиумом,
// отсортированных по дате окончания.
func (s *Storage) ListPremiumUsers(ctx context.Context) ([]*models.PremiumUser, error) {
	const op = "storage.ListPremiumUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id, username, subscription_end, premium_source
			  FROM users
			  WHERE tier = 'paid' AND subscription_end > now()
			  ORDER BY subscription_end`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PremiumUser
	for rows.Next() {
		var item models.PremiumUser
		var username, source sql.NullString
		var expiry sql.NullTime
		if err = rows.Scan(&item.UserID, &username, &expiry, &source); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if username.Valid {
			item.Username = &username.String
		}
		if expiry.Valid {
			item.PremiumExpiry = &expiry.Time
		}
		if source.Valid {
			item.PremiumSource = &source.String
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
