package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the runtime settings of the hearts server.
type Config struct {
	Server ServerConf `mapstructure:"server"`
	Log    LogConf    `mapstructure:"log"`
	Game   GameConf   `mapstructure:"game"`
	Auth   AuthConf   `mapstructure:"auth"`
	Store  StoreConf  `mapstructure:"store"`
}

type ServerConf struct {
	Port        string `mapstructure:"port"`
	FrontendURL string `mapstructure:"frontendURL"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
}

// GameConf carries the table timings. Zero pass grace or trick pause resolves
// those phases immediately.
type GameConf struct {
	TurnTimeout time.Duration `mapstructure:"turnTimeout"`
	PassGrace   time.Duration `mapstructure:"passGrace"`
	TrickPause  time.Duration `mapstructure:"trickPause"`
}

type AuthConf struct {
	Mode   string `mapstructure:"mode"` // none, hmac, jwt
	Secret string `mapstructure:"secret"`
}

type StoreConf struct {
	Driver string    `mapstructure:"driver"` // memory, sqlite3, postgres, mongo
	DSN    string    `mapstructure:"dsn"`
	Mongo  MongoConf `mapstructure:"mongo"`
}

type MongoConf struct {
	URL         string `mapstructure:"url"`
	DB          string `mapstructure:"db"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	MaxPoolSize int    `mapstructure:"maxPoolSize"`
}

const envPrefix = "HEARTS"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.frontendURL", "http://localhost:5173")
	v.SetDefault("log.level", "info")
	v.SetDefault("game.turnTimeout", 7*time.Second)
	v.SetDefault("game.passGrace", 2*time.Second)
	v.SetDefault("game.trickPause", 2*time.Second)
	v.SetDefault("auth.mode", "none")
	v.SetDefault("auth.secret", "")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "./data/hearts.db")
	v.SetDefault("store.mongo.url", "mongodb://localhost:27017")
	v.SetDefault("store.mongo.db", "hearts")
	v.SetDefault("store.mongo.username", "")
	v.SetDefault("store.mongo.password", "")
	v.SetDefault("store.mongo.maxPoolSize", 10)
}

// Load reads the optional .env file, the optional config file and the
// HEARTS_* environment, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	envPath := os.Getenv("HEARTS_DOTENV")
	if envPath == "" {
		envPath = ".env"
	}
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envPath, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

const redacted = "xxxxx"

// Redacted returns a copy that is safe to log: secrets are masked and
// passwords are stripped from connection URLs.
func (c Config) Redacted() Config {
	if c.Auth.Secret != "" {
		c.Auth.Secret = redacted
	}
	if c.Store.Mongo.Password != "" {
		c.Store.Mongo.Password = redacted
	}
	c.Store.DSN = redactURL(c.Store.DSN)
	c.Store.Mongo.URL = redactURL(c.Store.Mongo.URL)
	return c
}

// redactURL masks the password of a URL style DSN. Anything else is
// returned unchanged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case "none":
	case "hmac", "jwt":
		if c.Auth.Secret == "" {
			return fmt.Errorf("auth mode %q requires auth.secret", c.Auth.Mode)
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.Auth.Mode)
	}

	switch c.Store.Driver {
	case "memory", "sqlite3", "postgres", "mongo":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Game.TurnTimeout <= 0 {
		return errors.New("game.turnTimeout must be positive")
	}
	if c.Game.PassGrace < 0 || c.Game.TrickPause < 0 {
		return errors.New("game delays must not be negative")
	}
	return nil
}
