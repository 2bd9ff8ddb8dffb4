// Package models содержит эфемерные структуры рекламного флоу:
// сессию просмотра рекламы и одноразовый код подтверждения.
package models

import "time"

// AdSession представляет одну попытку просмотра рекламы. Запись живёт
// в хранилище ограниченное время и удаляется после успешного завершения.
// Поле CodeGenerated переводится из false в true ровно один раз
// атомарным условным обновлением.
type AdSession struct {
	SessionID     string    // Непрозрачный токен сессии
	UserID        int64     // Владелец сессии
	CreatedAt     time.Time // Момент создания, отсчёт времени просмотра
	AdCompleted   bool      // Просмотр засчитан
	CodeGenerated bool      // Код подтверждения уже выдан
}

// VerificationCode представляет одноразовый код, связывающий завершённый
// просмотр рекламы в браузере с чат-сессией пользователя.
type VerificationCode struct {
	Code      string    `json:"code"`       // Короткий токен, вводимый вручную
	UserID    int64     `json:"user_id"`    // Пользователь, которому выдан код
	CreatedAt time.Time `json:"created_at"` // Момент выдачи
}
