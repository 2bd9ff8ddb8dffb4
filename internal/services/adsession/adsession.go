// Package services содержит бизнес-логику рекламных сессий: создание
// сессии с посадочной ссылкой и завершение просмотра с выдачей кода.
package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/premium-access/internal/config"
	"github.com/magabrotheeeer/premium-access/internal/lib/token"
	"github.com/magabrotheeeer/premium-access/internal/models"
)

const adNetworkURL = "https://otieu.com/4/%s?subid=%s"

// SessionStore определяет методы эфемерного хранилища сессий.
type SessionStore interface {
	// CreateSession сохраняет сессию с заданным TTL.
	CreateSession(ctx context.Context, session models.AdSession, ttl time.Duration) error
	// GetSession возвращает сессию, (nil, nil) если её нет.
	GetSession(ctx context.Context, sessionID string) (*models.AdSession, error)
	// MarkSessionUsed атомарно помечает сессию использованной.
	MarkSessionUsed(ctx context.Context, sessionID string) (bool, error)
	// DeleteSession удаляет сессию.
	DeleteSession(ctx context.Context, sessionID string) error
}

// CodeIssuer выпускает код подтверждения для пользователя.
type CodeIssuer interface {
	Issue(ctx context.Context, userID int64) (string, error)
}

// AdSessionService реализует машину состояний рекламной сессии.
type AdSessionService struct {
	store        SessionStore
	codes        CodeIssuer
	log          *slog.Logger
	sessionTTL   time.Duration
	minWatchTime time.Duration
	ads          config.Ads
}

// NewAdSessionService создает новый экземпляр AdSessionService.
func NewAdSessionService(store SessionStore, codes CodeIssuer, log *slog.Logger, freshness config.Freshness, ads config.Ads) *AdSessionService {
	return &AdSessionService{
		store:        store,
		codes:        codes,
		log:          log,
		sessionTTL:   freshness.SessionTTL,
		minWatchTime: freshness.MinWatchTime,
		ads:          ads,
	}
}

// Create создаёт рекламную сессию и возвращает её идентификатор вместе
// с посадочной ссылкой.
func (s *AdSessionService) Create(ctx context.Context, userID int64) (string, string, error) {
	sessionID, err := token.SessionID()
	if err != nil {
		return "", "", err
	}

	session := models.AdSession{
		SessionID: sessionID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err = s.store.CreateSession(ctx, session, s.sessionTTL); err != nil {
		return "", "", err
	}

	s.log.Info("created ad session",
		slog.Int64("user_id", userID),
		slog.String("session_id", sessionID))
	return sessionID, s.buildLink(userID, sessionID), nil
}

// Complete завершает просмотр рекламы и выдаёт код подтверждения.
// Порядок проверок фиксирован: отсутствие, истечение срока, минимальное
// время просмотра, повторное использование. Флаг использования
// переводится атомарно, поэтому из конкурирующих запросов код получает
// ровно один. Успешно завершённая сессия удаляется.
func (s *AdSessionService) Complete(ctx context.Context, sessionID string) (string, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", models.ErrNotFound
	}

	elapsed := time.Since(session.CreatedAt)
	if elapsed > s.sessionTTL {
		// TTL ключа страхует от мусора, но решение принимает явная проверка
		if err = s.store.DeleteSession(ctx, sessionID); err != nil {
			s.log.Warn("failed to delete expired session",
				slog.String("session_id", sessionID), slog.Any("err", err))
		}
		return "", models.ErrExpired
	}
	if elapsed < s.minWatchTime {
		remaining := int((s.minWatchTime - elapsed).Seconds() + 0.5)
		return "", &models.TooEarlyError{RemainingSeconds: remaining}
	}

	used, err := s.store.MarkSessionUsed(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if !used {
		return "", models.ErrAlreadyUsed
	}

	code, err := s.codes.Issue(ctx, session.UserID)
	if err != nil {
		return "", err
	}

	if err = s.store.DeleteSession(ctx, sessionID); err != nil {
		s.log.Warn("failed to delete completed session",
			slog.String("session_id", sessionID), slog.Any("err", err))
	}

	s.log.Info("completed ad session",
		slog.Int64("user_id", session.UserID),
		slog.String("session_id", sessionID))
	return code, nil
}

// buildLink собирает посадочную ссылку: адрес страницы просмотра с
// идентификатором сессии и ссылками рекламной сети по одной на слот.
// Зона внутри слота выбирается случайно при каждой генерации.
func (s *AdSessionService) buildLink(userID int64, sessionID string) string {
	params := url.Values{}
	params.Set("session", sessionID)

	subid := subIDFor(userID)
	for i, slot := range s.ads.Slots {
		zone := pickZone(slot)
		if zone == "" {
			continue
		}
		adURL := fmt.Sprintf(adNetworkURL, zone, subid)
		params.Set(fmt.Sprintf("ad%d_url", i+1), adURL)
	}

	return fmt.Sprintf("%s/watch-ad?%s", strings.TrimRight(s.ads.AppURL, "/"), params.Encode())
}

// subIDFor возвращает стабильную неперсональную метку пользователя
// для атрибуции показов в рекламной сети.
func subIDFor(userID int64) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d", userID)))
	return hex.EncodeToString(sum[:])[:8]
}

func pickZone(slot string) string {
	zones := strings.Split(slot, ",")
	candidates := zones[:0]
	for _, z := range zones {
		if z = strings.TrimSpace(z); z != "" {
			candidates = append(candidates, z)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rand.IntN(len(candidates))]
}
