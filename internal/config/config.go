package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type StoreDriver string

const (
	StoreDriverBackend StoreDriver = "backend"
	StoreDriverMemory  StoreDriver = "memory"
)

type CacheDriver string

const (
	CacheDriverLRU   CacheDriver = "lru"
	CacheDriverRedis CacheDriver = "redis"
)

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"UTC"`
		LogLevel string      `env:"APP_LOG_LEVEL" envDefault:"debug"`

		// Location таймзона движка, от нее считается "сегодня" при проверке дат
		Location *time.Location `env:"-"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Backend struct {
		URL     string        `env:"BACKEND_URL" envDefault:"http://localhost:8000/api"`
		Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	}

	Store struct {
		Driver StoreDriver `env:"STORE_DRIVER" envDefault:"backend"`
	}

	Auth struct {
		// Пустой секрет - подпись токена не проверяется, ее проверяет бэкенд
		JWTSecret string `env:"AUTH_JWT_SECRET"`
	}

	RabbitMQ struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED"`
		URL      string `env:"RABBITMQ_URL"`
		Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"clinic"`
		Queue    string `env:"RABBITMQ_QUEUE" envDefault:"scheduling-engine"`
		Bind     string `env:"RABBITMQ_BIND" envDefault:"clinic.scheduling-engine.#"`
	}

	Cache struct {
		Enabled bool          `env:"CACHE_ENABLED"`
		Driver  CacheDriver   `env:"CACHE_DRIVER" envDefault:"lru"`
		Size    int           `env:"CACHE_SIZE" envDefault:"1000"`
		TTL     time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))
	cfg.Store.Driver = StoreDriver(strings.ToLower(string(cfg.Store.Driver)))
	cfg.Cache.Driver = CacheDriver(strings.ToLower(string(cfg.Cache.Driver)))

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		loc = time.UTC
	}
	cfg.App.Location = loc

	// Без RabbitMQ некому инвалидировать правила, измененные в обход движка,
	// поэтому кэш без слушателя не включаем
	if !cfg.RabbitMQ.Enabled {
		cfg.Cache.Enabled = false
	}

	// Кэш в памяти процесса не имеет смысла для хранилища в памяти
	if cfg.Store.Driver == StoreDriverMemory {
		cfg.Cache.Enabled = false
	}

	return cfg, nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
