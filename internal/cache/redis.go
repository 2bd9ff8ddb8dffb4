// Package cache реализует эфемерное хранилище на Redis: рекламные сессии
// и коды подтверждения. TTL ключей служит страховкой от мусора, решения
// о свежести принимают явные проверки возраста в сервисном слое.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/magabrotheeeer/premium-access/internal/config"
	"github.com/magabrotheeeer/premium-access/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "adsession:"
	codeKeyPrefix    = "code:"
)

// Скрипт атомарно помечает сессию использованной. Проверка и установка
// флага выполняются одним шагом на стороне Redis, поэтому из двух
// конкурирующих запросов код получит ровно один.
var markSessionUsedScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
    return -1
end
if redis.call("HGET", KEYS[1], "code_generated") == "1" then
    return 0
end
redis.call("HSET", KEYS[1], "ad_completed", "1", "code_generated", "1")
return 1
`)

// Cache инкапсулирует клиент Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет доступность сервера.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// CreateSession сохраняет рекламную сессию с заданным TTL.
func (c *Cache) CreateSession(ctx context.Context, session models.AdSession, ttl time.Duration) error {
	const op = "cache.CreateSession"
	key := sessionKeyPrefix + session.SessionID

	pipe := c.Db.TxPipeline()
	pipe.HSet(ctx, key,
		"user_id", session.UserID,
		"created_at", session.CreatedAt.UTC().Format(time.RFC3339Nano),
		"ad_completed", boolField(session.AdCompleted),
		"code_generated", boolField(session.CodeGenerated),
	)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSession возвращает сессию по идентификатору, (nil, nil) если её нет.
func (c *Cache) GetSession(ctx context.Context, sessionID string) (*models.AdSession, error) {
	const op = "cache.GetSession"

	fields, err := c.Db.HGetAll(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	userID, err := strconv.ParseInt(fields["user_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AdSession{
		SessionID:     sessionID,
		UserID:        userID,
		CreatedAt:     createdAt,
		AdCompleted:   fields["ad_completed"] == "1",
		CodeGenerated: fields["code_generated"] == "1",
	}, nil
}

// MarkSessionUsed атомарно переводит сессию в использованное состояние.
// Возвращает (true, nil) при успехе, (false, nil) если код по этой сессии
// уже выдавался, и models.ErrNotFound если сессии нет.
func (c *Cache) MarkSessionUsed(ctx context.Context, sessionID string) (bool, error) {
	const op = "cache.MarkSessionUsed"

	res, err := markSessionUsedScript.Run(ctx, c.Db, []string{sessionKeyPrefix + sessionID}).Int()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	switch res {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
}

// DeleteSession удаляет сессию.
func (c *Cache) DeleteSession(ctx context.Context, sessionID string) error {
	return c.Db.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

// CreateCode сохраняет код подтверждения с заданным TTL.
// Возвращает false при коллизии с уже существующим кодом.
func (c *Cache) CreateCode(ctx context.Context, code models.VerificationCode, ttl time.Duration) (bool, error) {
	const op = "cache.CreateCode"

	jsonData, err := json.Marshal(code)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	ok, err := c.Db.SetNX(ctx, codeKeyPrefix+code.Code, jsonData, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// GetCode возвращает код подтверждения, (nil, nil) если его нет.
func (c *Cache) GetCode(ctx context.Context, code string) (*models.VerificationCode, error) {
	const op = "cache.GetCode"

	val, err := c.Db.Get(ctx, codeKeyPrefix+code).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var result models.VerificationCode
	if err = json.Unmarshal([]byte(val), &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ConsumeCode удаляет код и сообщает, был ли он ещё жив. Однократность
// использования решает ответ DEL: из двух конкурирующих вызовов единицу
// получит только один.
func (c *Cache) ConsumeCode(ctx context.Context, code string) (bool, error) {
	const op = "cache.ConsumeCode"

	deleted, err := c.Db.Del(ctx, codeKeyPrefix+code).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return deleted > 0, nil
}

// Get читает произвольное JSON-значение по ключу.
func (c *Cache) Get(key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(context.Background(), key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	err = json.Unmarshal([]byte(val), result)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет произвольное значение в JSON с заданным TTL.
func (c *Cache) Set(key string, value any, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Db.Set(context.Background(), key, jsonData, expiration).Err()
}

// Invalidate удаляет ключ.
func (c *Cache) Invalidate(key string) error {
	return c.Db.Del(context.Background(), key).Err()
}

func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
