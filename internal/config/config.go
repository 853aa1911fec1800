package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

const memoryDatabase = ":memory:"

// Common holds the settings shared by both services.
type Common struct {
	Env             string        `env:"ENV" env-default:"development"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"INFO"`
	Host            string        `env:"HOST" env-default:"0.0.0.0"`
	DatabaseDriver  string        `env:"DATABASE_DRIVER" env-default:"sqlite"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" env-default:"*" env-separator:","`
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS" env-default:"5"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" env-default:"10"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Production reports whether the service runs with production settings.
func (c Common) Production() bool { return c.Env == EnvProduction }

// ExposeErrors reports whether 500 responses may carry error details.
func (c Common) ExposeErrors() bool { return !c.Production() }

// UserService configures the user service.
type UserService struct {
	Common
	Port              string `env:"PORT" env-default:"5001"`
	Database          string `env:"DATABASE" env-default:"./data/users.db"`
	Argon2MemoryKiB   uint32 `env:"ARGON2_MEMORY_KIB" env-default:"65536"`
	Argon2Iterations  uint32 `env:"ARGON2_ITERATIONS" env-default:"3"`
	Argon2Parallelism uint8  `env:"ARGON2_PARALLELISM" env-default:"2"`
}

// Addr returns the listen address.
func (c UserService) Addr() string { return net.JoinHostPort(c.Host, c.Port) }

// TaskService configures the task service.
type TaskService struct {
	Common
	Port               string        `env:"PORT" env-default:"6002"`
	Database           string        `env:"DATABASE" env-default:"./data/tasks.db"`
	UserServiceURL     string        `env:"USER_SERVICE_URL" env-default:"http://localhost:5001"`
	UserServiceTimeout time.Duration `env:"USER_SERVICE_TIMEOUT" env-default:"2s"`
}

// Addr returns the listen address.
func (c TaskService) Addr() string { return net.JoinHostPort(c.Host, c.Port) }

// LoadUserService reads the user service configuration from .env files and the environment.
func LoadUserService() (UserService, error) {
	var cfg UserService
	if err := read(&cfg); err != nil {
		return UserService{}, err
	}
	if err := cfg.Common.validate(); err != nil {
		return UserService{}, err
	}
	if cfg.Argon2Iterations == 0 || cfg.Argon2Parallelism == 0 {
		return UserService{}, errors.New("ARGON2_ITERATIONS and ARGON2_PARALLELISM must be positive")
	}
	if cfg.Env == EnvTesting {
		cfg.DatabaseDriver, cfg.Database = "sqlite", memoryDatabase
	}
	return cfg, nil
}

// LoadTaskService reads the task service configuration from .env files and the environment.
func LoadTaskService() (TaskService, error) {
	var cfg TaskService
	if err := read(&cfg); err != nil {
		return TaskService{}, err
	}
	if err := cfg.Common.validate(); err != nil {
		return TaskService{}, err
	}
	if cfg.UserServiceTimeout <= 0 {
		return TaskService{}, errors.New("USER_SERVICE_TIMEOUT must be positive")
	}
	if cfg.Env == EnvTesting {
		cfg.DatabaseDriver, cfg.Database = "sqlite", memoryDatabase
	}
	return cfg, nil
}

func read(cfg any) error {
	if err := loadDotEnv(); err != nil {
		return err
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}

// loadDotEnv loads .env.<ENV> and then .env. Variables already present in
// the environment are never overridden, so the more specific file wins.
func loadDotEnv() error {
	env := os.Getenv("ENV")
	if env == "" {
		env = EnvDevelopment
	}

	for _, name := range []string{".env." + env, ".env"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func (c Common) validate() error {
	if !slices.Contains([]string{EnvDevelopment, EnvProduction, EnvTesting}, c.Env) {
		return fmt.Errorf("unknown ENV %q", c.Env)
	}
	if !slices.Contains([]string{"sqlite", "mysql"}, c.DatabaseDriver) {
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}
