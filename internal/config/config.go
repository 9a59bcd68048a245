package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel    string      `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort    string      `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis       Redis       `yaml:"redis"`
	Game        Game        `yaml:"game"`
	Probability Probability `yaml:"probability"`
}

type Redis struct {
	Enabled        bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host           string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port           string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password       string        `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB             int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	SessionTTL     time.Duration `yaml:"session-ttl" env:"REDIS_SESSION_TTL" env-default:"24h"`
	ProbabilityTTL time.Duration `yaml:"probability-ttl" env:"REDIS_PROBABILITY_TTL" env-default:"1h"`
}

type Game struct {
	TurnTimeout   time.Duration `yaml:"turn-timeout" env:"GAME_TURN_TIMEOUT" env-default:"15s"`
	PreRoundDelay time.Duration `yaml:"pre-round-delay" env:"GAME_PRE_ROUND_DELAY" env-default:"3s"`
}

// Probability configures the win-probability source. An empty URL means the local Monte Carlo source.
type Probability struct {
	SourceURL   string        `yaml:"source-url" env:"PROBABILITY_SOURCE_URL" env-default:""`
	Timeout     time.Duration `yaml:"timeout" env:"PROBABILITY_TIMEOUT" env-default:"500ms"`
	Simulations int           `yaml:"simulations" env:"PROBABILITY_SIMULATIONS" env-default:"800"`
	Epsilon     float64       `yaml:"epsilon" env:"PROBABILITY_EPSILON" env-default:"0.18"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
