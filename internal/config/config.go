package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr    string
	ServiceName string
	LogLevel    string

	// managed backend
	SupabaseURL         string
	SupabaseServiceRole string
	PostgresDSN         string
	ReceiptsBucket      string

	DefaultBusinessPassword string

	RedisAddr         string
	BotConfigTTL      time.Duration
	BotConfigRedelete time.Duration
	KafkaBrokers      []string

	WhatsApp WhatsAppConfig

	InventoryGroup   string
	InventoryWorkers int
}

type WhatsAppConfig struct {
	VerifyToken string
	GraphURL    string
	SendTimeout time.Duration
}

var ErrMissingBackend = errors.New("SUPABASE_URL, SUPABASE_SERVICE_ROLE and POSTGRES_DSN are required")

// Load reads the process environment. A .env file, if any, must already be
// loaded by the caller.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("SERVICE_NAME", "flow1h-api")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RECEIPTS_BUCKET", "transfer_receipts")
	v.SetDefault("REDIS_ADDR", "redis:6379")
	v.SetDefault("BOT_CONFIG_TTL", "5m")
	v.SetDefault("BOT_CONFIG_REDELETE", "2s")
	v.SetDefault("KAFKA_BROKERS", "kafka:9092")
	v.SetDefault("WHATSAPP_GRAPH_URL", "https://graph.facebook.com/v20.0")
	v.SetDefault("WHATSAPP_SEND_TIMEOUT", "10s")
	v.SetDefault("INVENTORY_GROUP", "inventory-svc")
	v.SetDefault("INVENTORY_WORKERS", 8)

	cfg := Config{
		HTTPAddr:                v.GetString("HTTP_ADDR"),
		ServiceName:             v.GetString("SERVICE_NAME"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		SupabaseURL:             strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		SupabaseServiceRole:     v.GetString("SUPABASE_SERVICE_ROLE"),
		PostgresDSN:             v.GetString("POSTGRES_DSN"),
		ReceiptsBucket:          v.GetString("RECEIPTS_BUCKET"),
		DefaultBusinessPassword: v.GetString("DEFAULT_BUSINESS_PASSWORD"),
		RedisAddr:               v.GetString("REDIS_ADDR"),
		BotConfigTTL:            v.GetDuration("BOT_CONFIG_TTL"),
		BotConfigRedelete:       v.GetDuration("BOT_CONFIG_REDELETE"),
		KafkaBrokers:            splitCSV(v.GetString("KAFKA_BROKERS")),
		WhatsApp: WhatsAppConfig{
			VerifyToken: v.GetString("WHATSAPP_VERIFY_TOKEN"),
			GraphURL:    strings.TrimRight(v.GetString("WHATSAPP_GRAPH_URL"), "/"),
			SendTimeout: v.GetDuration("WHATSAPP_SEND_TIMEOUT"),
		},
		InventoryGroup:   v.GetString("INVENTORY_GROUP"),
		InventoryWorkers: v.GetInt("INVENTORY_WORKERS"),
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseServiceRole == "" || cfg.PostgresDSN == "" {
		return cfg, ErrMissingBackend
	}
	if cfg.InventoryWorkers <= 0 {
		cfg.InventoryWorkers = 1
	}
	return cfg, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
