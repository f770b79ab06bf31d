package config

import (
	"os"
	"strings"
	"time"

	"github.com/Anabol1ks/orderhub-pkg-proto/pkg/database"
	"github.com/spf13/viper"

	"go.uber.org/zap"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	NotifyModeInline = "inline"
	NotifyModeKafka  = "kafka"
	NotifyModeOff    = "off"
)

type Config struct {
	Port        string
	DB          DB
	Session     Session
	Redis       Redis
	Notify      Notify
	Kafka       Kafka
	SMTP        SMTP
	Delivery    Delivery
	Reconcile   Reconcile
	StrictStock bool
	AdminToken  string
	ShopURL     string
}

type DB struct {
	database.Config
}

type Session struct {
	Backend string
	TTL     time.Duration
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Notify struct {
	Mode          string
	Timeout       time.Duration
	TelegramToken string
}

type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

// SMTP пустой Host: письма персоналу отключены.
type SMTP struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	SSL        bool
	StaffEmail string
}

type Delivery struct {
	NovaPoshtaURL    string
	NovaPoshtaAPIKey string
	Timeout          time.Duration
}

type Reconcile struct {
	Interval time.Duration
	Grace    time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SESSION_BACKEND", SessionBackendMemory)
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("NOTIFY_MODE", NotifyModeInline)
	v.SetDefault("NOTIFY_TIMEOUT", 10*time.Second)
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC_ORDERS", "shop.orders")
	v.SetDefault("KAFKA_GROUP_ID", "shop-notifier")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 465)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("SMTP_SSL", true)
	v.SetDefault("STAFF_EMAIL", "")
	v.SetDefault("NOVA_POSHTA_URL", "https://api.novaposhta.ua/v2.0/json/")
	v.SetDefault("NOVA_POSHTA_API_KEY", "")
	v.SetDefault("DELIVERY_TIMEOUT", 5*time.Second)
	v.SetDefault("STRICT_STOCK", false)
	v.SetDefault("ADMIN_TOKEN", "")
	v.SetDefault("RECONCILE_INTERVAL", 15*time.Minute)
	v.SetDefault("RECONCILE_GRACE", 10*time.Minute)
	v.SetDefault("SHOP_URL", "")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load читает конфигурацию HTTP-сервиса: БД и порт обязательны.
func Load(log *zap.Logger) *Config {
	cfg := loadOptional(newViper())
	cfg.Port = getEnv("APP_PORT", log)
	cfg.DB = loadDB(log)

	if cfg.Session.Backend != SessionBackendMemory && cfg.Session.Backend != SessionBackendRedis {
		log.Error("Неизвестный SESSION_BACKEND", zap.String("value", cfg.Session.Backend))
		panic("invalid SESSION_BACKEND: " + cfg.Session.Backend)
	}
	switch cfg.Notify.Mode {
	case NotifyModeInline, NotifyModeKafka, NotifyModeOff:
	default:
		log.Error("Неизвестный NOTIFY_MODE", zap.String("value", cfg.Notify.Mode))
		panic("invalid NOTIFY_MODE: " + cfg.Notify.Mode)
	}
	return cfg
}

// LoadMigrate: только подключение к БД.
func LoadMigrate(log *zap.Logger) *Config {
	cfg := loadOptional(newViper())
	cfg.DB = loadDB(log)
	return cfg
}

// LoadWorker для notifier. БД не нужна, токен бота обязателен.
func LoadWorker(log *zap.Logger) *Config {
	cfg := loadOptional(newViper())
	cfg.Notify.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", log)
	return cfg
}

// LoadBot: чат-бот читает заказы из БД.
func LoadBot(log *zap.Logger) *Config {
	cfg := LoadWorker(log)
	cfg.DB = loadDB(log)
	return cfg
}

func loadDB(log *zap.Logger) DB {
	return DB{
		Config: database.Config{
			Host:     getEnv("DB_HOST", log),
			Port:     getEnv("DB_PORT", log),
			User:     getEnv("DB_USER", log),
			Password: getEnv("DB_PASSWORD", log),
			Name:     getEnv("DB_NAME", log),
			SSLMode:  getEnv("DB_SSLMODE", log),
		},
	}
}

func loadOptional(v *viper.Viper) *Config {
	return &Config{
		Session: Session{
			Backend: strings.ToLower(v.GetString("SESSION_BACKEND")),
			TTL:     v.GetDuration("SESSION_TTL"),
		},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Notify: Notify{
			Mode:          strings.ToLower(v.GetString("NOTIFY_MODE")),
			Timeout:       v.GetDuration("NOTIFY_TIMEOUT"),
			TelegramToken: v.GetString("TELEGRAM_BOT_TOKEN"),
		},
		Kafka: Kafka{
			Brokers: splitAndTrim(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC_ORDERS"),
			GroupID: v.GetString("KAFKA_GROUP_ID"),
		},
		SMTP: SMTP{
			Host:       v.GetString("SMTP_HOST"),
			Port:       v.GetInt("SMTP_PORT"),
			User:       v.GetString("SMTP_USER"),
			Password:   v.GetString("SMTP_PASSWORD"),
			From:       v.GetString("SMTP_FROM"),
			SSL:        v.GetBool("SMTP_SSL"),
			StaffEmail: v.GetString("STAFF_EMAIL"),
		},
		Delivery: Delivery{
			NovaPoshtaURL:    v.GetString("NOVA_POSHTA_URL"),
			NovaPoshtaAPIKey: v.GetString("NOVA_POSHTA_API_KEY"),
			Timeout:          v.GetDuration("DELIVERY_TIMEOUT"),
		},
		Reconcile: Reconcile{
			Interval: v.GetDuration("RECONCILE_INTERVAL"),
			Grace:    v.GetDuration("RECONCILE_GRACE"),
		},
		StrictStock: v.GetBool("STRICT_STOCK"),
		AdminToken:  v.GetString("ADMIN_TOKEN"),
		ShopURL:     v.GetString("SHOP_URL"),
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
