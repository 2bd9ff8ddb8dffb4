// Package models содержит доменную модель пользователя сервиса доступа,
// включающую уровень доступа, срок действия премиума и флаг блокировки.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Возможные уровни доступа пользователя.
const (
	// TierFree — базовый уровень с дневной квотой загрузок.
	TierFree = "free"
	// TierPaid — оплаченный или рекламный премиум без квоты.
	TierPaid = "paid"
	// TierAdmin — административный уровень, выводится из AdminSet.
	TierAdmin = "admin"
)

// Источники премиум-доступа.
const (
	// SourceAds — премиум получен за просмотр рекламы.
	SourceAds = "ads"
	// SourcePaid — премиум получен оплатой или выдан администратором.
	SourcePaid = "paid"
)

// User представляет долговременную запись пользователя в хранилище.
// Поле Tier хранит только free или paid: admin вычисляется по членству
// в AdminSet при разрешении уровня и в записи не хранится.
type User struct {
	UserID          int64      // Идентификатор пользователя во внешнем мессенджере
	Username        *string    // Имя пользователя (опционально)
	FirstName       *string    // Имя (опционально)
	LastName        *string    // Фамилия (опционально)
	Tier            string     // Уровень доступа: free или paid
	SubscriptionEnd *time.Time // Дата окончания премиума, обязательна при Tier = paid
	PremiumSource   *string    // Источник премиума: ads или paid, nil для free
	IsBanned        bool       // Флаг блокировки пользователя
	JoinedAt        time.Time  // Дата первого контакта
	LastActivity    time.Time  // Время последней активности
}

// HasActivePremium сообщает, действует ли у записи оплаченный уровень
// на момент now.
func (u *User) HasActivePremium(now time.Time) bool {
	return u.Tier == TierPaid && u.SubscriptionEnd != nil && u.SubscriptionEnd.After(now)
}

// DummyProfile используется для приёма профильных полей из JSON-запроса
// командного слоя. Обновляет только профиль и last_activity, никогда —
// уровень, блокировку или премиум-поля.
type DummyProfile struct {
	Username  string `json:"username"`   // Имя пользователя в мессенджере
	FirstName string `json:"first_name"` // Имя
	LastName  string `json:"last_name"`  // Фамилия
}

// PremiumUser описывает активного премиум-пользователя для админского списка.
type PremiumUser struct {
	UserID        int64      `json:"user_id"`
	Username      *string    `json:"username,omitempty"`
	PremiumExpiry *time.Time `json:"premium_expiry,omitempty"`
	PremiumSource *string    `json:"premium_source,omitempty"`
}

// Stats агрегирует показатели сервиса для админской статистики.
type Stats struct {
	TotalUsers     int `json:"total_users"`     // Всего пользователей
	ActiveUsers    int `json:"active_users"`    // Активные за последние 7 дней
	PaidUsers      int `json:"paid_users"`      // Пользователи с действующим премиумом
	AdminCount     int `json:"admin_count"`     // Количество администраторов
	TodayDownloads int `json:"today_downloads"` // Загрузок за сегодня
}
