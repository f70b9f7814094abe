package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // hours
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Scheduler struct {
		ReminderDays int // days before buyback date to start reminding
	}
}

// NewConfig loads configuration from environment variables and an optional
// config.yaml in the working directory. Keys use dots in the file and
// underscores in the environment (SERVER_PORT, DB_HOST, ...).
func NewConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "accu_registry")
	v.SetDefault("jwt.secret_key", "your-secret-key-here")
	v.SetDefault("jwt.expires_in", 24)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "noreply@accu-registry.local")
	v.SetDefault("scheduler.reminder_days", 7)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// The config file is optional; env vars and defaults suffice
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.Server.Port = v.GetInt("server.port")
	cfg.DB.Host = v.GetString("db.host")
	cfg.DB.Port = v.GetInt("db.port")
	cfg.DB.User = v.GetString("db.user")
	cfg.DB.Password = v.GetString("db.password")
	cfg.DB.DBName = v.GetString("db.name")
	cfg.JWT.SecretKey = v.GetString("jwt.secret_key")
	cfg.JWT.ExpiresIn = v.GetInt("jwt.expires_in")
	cfg.SMTP.Host = v.GetString("smtp.host")
	cfg.SMTP.Port = v.GetInt("smtp.port")
	cfg.SMTP.Username = v.GetString("smtp.username")
	cfg.SMTP.Password = v.GetString("smtp.password")
	cfg.SMTP.From = v.GetString("smtp.from")
	cfg.Scheduler.ReminderDays = v.GetInt("scheduler.reminder_days")

	return cfg, nil
}
