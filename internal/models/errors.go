// Package models определяет доменные ошибки рекламного флоу и выдачи
// премиума. Все ошибки восстановимы и транслируются в отдельные
// пользовательские сообщения: объединять их в одну нельзя, потому что
// каждая подразумевает своё корректирующее действие.
package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — сессия или код отсутствуют в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrExpired — запись существовала, но её срок жизни истёк.
	ErrExpired = errors.New("expired")
	// ErrAlreadyUsed — сессия уже была завершена ранее.
	ErrAlreadyUsed = errors.New("already used")
	// ErrWrongUser — код принадлежит другому пользователю.
	ErrWrongUser = errors.New("wrong user")
	// ErrConflict — действующий не-рекламный премиум блокирует выдачу.
	ErrConflict = errors.New("active grant conflict")
)

// TooEarlyError возвращается, когда минимальное время просмотра рекламы
// ещё не истекло. Сессия остаётся пригодной, попытку можно повторить.
type TooEarlyError struct {
	RemainingSeconds int // Сколько секунд осталось досмотреть
}

func (e *TooEarlyError) Error() string {
	return fmt.Sprintf("too early: %d seconds remaining", e.RemainingSeconds)
}
