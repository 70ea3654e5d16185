package bot

import (
	"time"

	"github.com/flow1h/flow1h-api/internal/backend"
)

const table = "whatsapp_bot_configs"

const (
	DefaultProvider = "whatsapp_cloud"
	DefaultBotType  = "orders"
)

// Config is a business's WhatsApp channel: credentials plus reply texts.
type Config struct {
	ID            string `db:"id" json:"id"`
	BusinessID    string `db:"business_id" json:"business_id"`
	Provider      string `db:"provider" json:"provider"`
	PhoneNumberID string `db:"phone_number_id" json:"phone_number_id"`
	WabaID        string `db:"waba_id" json:"waba_id"`
	AccessToken   string `db:"access_token" json:"access_token"`
	VerifyToken   string `db:"verify_token" json:"verify_token"`
	BotType       string `db:"bot_type" json:"bot_type"`

	GreetingMessage         *string `db:"greeting_message" json:"greeting_message"`
	AskOrderMessage         *string `db:"ask_order_message" json:"ask_order_message"`
	AskAddressMessage       *string `db:"ask_address_message" json:"ask_address_message"`
	AskPaymentMethodMessage *string `db:"ask_payment_method_message" json:"ask_payment_method_message"`
	ClosingMessage          *string `db:"closing_message" json:"closing_message"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Texts is a partial update of the reply templates; nil fields are left alone.
type Texts struct {
	GreetingMessage         *string `json:"greeting_message"`
	AskOrderMessage         *string `json:"ask_order_message"`
	AskAddressMessage       *string `json:"ask_address_message"`
	AskPaymentMethodMessage *string `json:"ask_payment_method_message"`
	ClosingMessage          *string `json:"closing_message"`
}

func (t Texts) Values() backend.Values {
	v := backend.Values{}
	set := func(col string, s *string) {
		if s != nil {
			v[col] = *s
		}
	}
	set("greeting_message", t.GreetingMessage)
	set("ask_order_message", t.AskOrderMessage)
	set("ask_address_message", t.AskAddressMessage)
	set("ask_payment_method_message", t.AskPaymentMethodMessage)
	set("closing_message", t.ClosingMessage)
	return v
}

// Draft is the full replacement written by an upsert.
type Draft struct {
	BusinessID    string
	Provider      string
	PhoneNumberID string
	WabaID        string
	AccessToken   string
	VerifyToken   string
	BotType       string
	Texts
}

func (d Draft) values() backend.Values {
	provider, botType := d.Provider, d.BotType
	if provider == "" {
		provider = DefaultProvider
	}
	if botType == "" {
		botType = DefaultBotType
	}
	return backend.Values{
		"business_id":                d.BusinessID,
		"provider":                   provider,
		"phone_number_id":            d.PhoneNumberID,
		"waba_id":                    d.WabaID,
		"access_token":               d.AccessToken,
		"verify_token":               d.VerifyToken,
		"bot_type":                   botType,
		"greeting_message":           d.GreetingMessage,
		"ask_order_message":          d.AskOrderMessage,
		"ask_address_message":        d.AskAddressMessage,
		"ask_payment_method_message": d.AskPaymentMethodMessage,
		"closing_message":            d.ClosingMessage,
	}
}
