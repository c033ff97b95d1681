package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"GO_ENV"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	// Persistence
	DatabaseDriver string        `mapstructure:"DATABASE_DRIVER"` // postgres | sqlite
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	StoreTimeout   time.Duration `mapstructure:"STORE_TIMEOUT"`

	// Redis is optional; an empty address falls back to in-process rate limiting
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// Comma separated roles treated as operators (chat inbox owners, notification authors)
	OperatorRoles string `mapstructure:"OPERATOR_ROLES"`

	NotificationPageSize int `mapstructure:"NOTIFICATION_PAGE_SIZE"`
	ChatSendPerMinute    int `mapstructure:"CHAT_SEND_PER_MINUTE"`
}

var AppConfig *Config

var defaults = map[string]interface{}{
	"PORT":                   "8080",
	"GO_ENV":                 "development",
	"FRONTEND_URL":           "http://localhost:5173",
	"JWT_SECRET":             "",
	"DATABASE_DRIVER":        "postgres",
	"DATABASE_URL":           "",
	"STORE_TIMEOUT":          "5s",
	"REDIS_ADDR":             "",
	"REDIS_PASSWORD":         "",
	"OPERATOR_ROLES":         "ADMIN",
	"NOTIFICATION_PAGE_SIZE": 20,
	"CHAT_SEND_PER_MINUTE":   30,
}

// LoadConfig reads .env (if present) and the environment into AppConfig.
func LoadConfig() *Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	AppConfig = &cfg
	return AppConfig
}

// Validate rejects settings the server must not start with. Outside
// development a JWT secret is mandatory.
func (c *Config) Validate() error {
	if c.Env != "development" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required when GO_ENV=%s", c.Env)
	}
	return nil
}

// OperatorRoleList returns the normalized operator role set.
func (c *Config) OperatorRoleList() []string {
	var roles []string
	for _, r := range strings.Split(c.OperatorRoles, ",") {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
