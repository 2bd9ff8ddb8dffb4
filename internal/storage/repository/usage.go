package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetDailyUsage возвращает количество загрузок пользователя за указанный
// день (ключ в формате YYYY-MM-DD по UTC). Отсутствие записи означает ноль.
func (s *Storage) GetDailyUsage(ctx context.Context, userID int64, day string) (int, error) {
	const op = "storage.GetDailyUsage"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT files_downloaded FROM daily_usage
			  WHERE user_id = $1 AND day = $2`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userID, day).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// IncrementUsage атомарно увеличивает дневной счётчик загрузок и
// возвращает новое значение. Инкремент выполняется одним запросом,
// поэтому параллельные вызовы не теряют обновлений.
func (s *Storage) IncrementUsage(ctx context.Context, userID int64, day string) (int, error) {
	const op = "storage.IncrementUsage"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO daily_usage (user_id, day, files_downloaded)
			  VALUES ($1, $2, 1)
			  ON CONFLICT (user_id, day) DO UPDATE
			  SET files_downloaded = daily_usage.files_downloaded + 1
			  RETURNING files_downloaded`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userID, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
