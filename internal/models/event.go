package models

import "time"

// Типы событий, публикуемых в очередь premium.events.
const (
	EventPremiumGranted = "premium_granted"
	EventPremiumRevoked = "premium_revoked"
)

// PremiumEvent описывает изменение премиум-статуса пользователя,
// публикуемое для внешнего конвейера уведомлений.
type PremiumEvent struct {
	EventID         string     `json:"event_id"`                   // Уникальный идентификатор события
	Type            string     `json:"type"`                       // premium_granted или premium_revoked
	UserID          int64      `json:"user_id"`                    // Пользователь
	Tier            string     `json:"tier"`                       // Новый уровень доступа
	Source          string     `json:"source,omitempty"`           // Источник премиума
	SubscriptionEnd *time.Time `json:"subscription_end,omitempty"` // Срок действия
	OccurredAt      time.Time  `json:"occurred_at"`                // Момент изменения
}
