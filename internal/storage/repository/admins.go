package repository

import (
	"context"
	"fmt"
)

// IsAdmin сообщает, входит ли пользователь в множество администраторов.
func (s *Storage) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.IsAdmin"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (SELECT 1 FROM admins WHERE user_id = $1)`
	var isAdmin bool
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&isAdmin); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return isAdmin, nil
}

// AddAdmin добавляет пользователя в множество администраторов.
// Повторное добавление не ошибка.
func (s *Storage) AddAdmin(ctx context.Context, userID int64) error {
	const op = "storage.AddAdmin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO admins (user_id) VALUES ($1)
			  ON CONFLICT (user_id) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveAdmin удаляет пользователя из множества администраторов
// и возвращает количество удалённых строк.
func (s *Storage) RemoveAdmin(ctx context.Context, userID int64) (int, error) {
	const op = "storage.RemoveAdmin"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM admins WHERE user_id = $1`
	result, err := s.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
