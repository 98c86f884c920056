package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string   `env:"APP_ENV" env-default:"production" yaml:"env"`
	Server   Server   `yaml:"server"`
	Logger   Logger   `yaml:"logger"`
	SQLiteDB SQLiteDB `yaml:"db"`
	Auth     Auth     `yaml:"auth"`
	Redis    Redis    `yaml:"rdb"`
	Uploads  Uploads  `yaml:"uploads"`
	Limiter  Limiter  `yaml:"limiter"`
}

// Limiter throttles the register and login endpoints per client IP.
type Limiter struct {
	Enabled        bool          `yaml:"enabled"`
	Capacity       int           `yaml:"capacity"       env-default:"10"`
	RefillTokens   int           `yaml:"refillTokens"   env-default:"10"`
	RefillInterval time.Duration `yaml:"refillInterval" env-default:"1m"`
	TTL            time.Duration `yaml:"ttl"            env-default:"10m"`
}

type Server struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type Logger struct {
	Level     string   `yaml:"level"`
	Output    []string `yaml:"output"`
	ErrOutput []string `yaml:"errOutput"`
}

type SQLiteDB struct {
	Path   string `env:"SQLITE_PATH" yaml:"path"`
	Reload bool   `yaml:"reload"`
}

type Auth struct {
	Secret     string        `env:"JWT_SECRET" env-required:"true" yaml:"secret"`
	AccessTTL  time.Duration `yaml:"accessTTL"  env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refreshTTL" env-default:"168h"`
	BcryptCost int           `yaml:"bcryptCost"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Uploads struct {
	Dir         string `yaml:"dir"         env-default:"./uploads"`
	MaxFileSize int64  `env:"MAX_FILE_SIZE" yaml:"maxFileSize" env-default:"5242880"`
	MaxFiles    int    `yaml:"maxFiles"    env-default:"10"`
}

// MinSecretLen is a recommendation, not a hard requirement.
// Secrets shorter than this only produce a startup warning.
const MinSecretLen = 32

func New(configPath string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config error: %w", err)
	}

	return cfg, nil
}

func (c Config) Dev() bool {
	return c.Env == "development" || c.Env == "dev"
}
