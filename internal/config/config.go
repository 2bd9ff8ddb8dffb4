// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"APP_ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Freshness               `yaml:"freshness"`
	Quota                   `yaml:"quota"`
	Ads                     `yaml:"ads"`
	Rabbit                  `yaml:"rabbit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для проверки токенов админского API
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Freshness задаёт единую политику свежести эфемерных записей.
// Одни и те же значения используются и как TTL ключей в хранилище,
// и в явных проверках возраста в коде, чтобы два механизма не разошлись.
type Freshness struct {
	SessionTTL      time.Duration `yaml:"session_ttl" env-default:"5m"`       // Срок жизни рекламной сессии
	CodeTTL         time.Duration `yaml:"code_ttl" env-default:"30m"`         // Срок жизни кода подтверждения
	MinWatchTime    time.Duration `yaml:"min_watch_time" env-default:"30s"`   // Минимальное время просмотра рекламы
	PremiumDuration time.Duration `yaml:"premium_duration" env-default:"30m"` // Длительность рекламного премиума
}

// Quota задаёт дневной лимит загрузок для бесплатных пользователей.
type Quota struct {
	DailyLimit int `yaml:"daily_limit" env-default:"5"`
}

// Ads описывает рекламную сеть: базовый адрес приложения для посадочной
// страницы и до десяти слотов. Каждый слот — список идентификаторов зон
// через запятую, из которого при генерации ссылки выбирается случайная зона.
type Ads struct {
	AppURL string   `yaml:"app_url" env:"APP_URL"`
	Slots  []string `yaml:"slots"`
}

// Rabbit структура для подключения к RabbitMQ. Пустой URL отключает
// публикацию событий премиума.
type Rabbit struct {
	URL        string        `yaml:"url" env:"RABBIT_URL"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// MustLoad функция для загрузки конфига, завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Freshness:\n"+
			"  SessionTTL: %s\n"+
			"  CodeTTL: %s\n"+
			"  MinWatchTime: %s\n"+
			"  PremiumDuration: %s\n"+
			"Quota:\n"+
			"  DailyLimit: %d\n"+
			"Ads:\n"+
			"  AppURL: %s\n"+
			"  Slots: %d\n",
		c.Env,
		c.StorageConnectionString,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.SessionTTL,
		c.CodeTTL,
		c.MinWatchTime,
		c.PremiumDuration,
		c.DailyLimit,
		c.AppURL,
		len(c.Slots),
	)
}
