package redisx

import "time"

const (
	// Bot config lookup by channel: botcfg:phone:{phone_number_id} -> config JSON
	KeyBotConfigByPhone = "botcfg:phone:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLBotConfig = 5 * time.Minute
	TTLDedup     = 48 * time.Hour
)
