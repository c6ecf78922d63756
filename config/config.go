// Ininicializing common application configuration
package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Email    EmailConfig    `mapstructure:"email"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
}

type ServerConfig struct {
	AppVersion   string `json:"appVersion"`
	Host         string `json:"host" validate:"required"`
	Port         string `json:"port" validate:"required"`
	Timeout      time.Duration
	Idle_timeout time.Duration
	Env          string `json:"environment"`
	Mode         string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"required"`
	Password string `json:"password"`
	DB       int    `json:"db"`

	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

type EmailConfig struct {
	From     string `mapstructure:"from"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Enabled  bool   `mapstructure:"enabled"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	Enabled  bool   `mapstructure:"enabled"`
}

type QueueConfig struct {
	DefaultAvgServiceTime int           `mapstructure:"default_avg_service_time"` // minutes
	CacheTTL              time.Duration `mapstructure:"cache_ttl"`
	HistoryRetentionDays  int           `mapstructure:"history_retention_days"`
}

type AlertsConfig struct {
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
	DefaultThreshold int           `mapstructure:"default_threshold"`
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		log.Fatalf("unable to decode config into struct, %v", err)
		return nil, err
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.appVersion", "1.0.0")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "queueline_user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "queueline")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.maxretries", 3)
	v.SetDefault("redis.poolsize", 10)
	v.SetDefault("redis.minidleconns", 2)
	v.SetDefault("redis.dialtimeout", 5*time.Second)
	v.SetDefault("redis.readtimeout", 3*time.Second)
	v.SetDefault("redis.writetimeout", 3*time.Second)
	v.SetDefault("redis.pooltimeout", 4*time.Second)

	// Queue defaults
	v.SetDefault("queue.default_avg_service_time", 5)
	v.SetDefault("queue.cache_ttl", 30*time.Second)
	v.SetDefault("queue.history_retention_days", 30)

	// Alerts defaults
	v.SetDefault("alerts.sweep_interval", 30*time.Second)
	v.SetDefault("alerts.default_threshold", 3)
}
