package bot

import (
	"context"
	"strings"

	"github.com/flow1h/flow1h-api/internal/events"
	"github.com/flow1h/flow1h-api/internal/orders"
	"github.com/flow1h/flow1h-api/internal/whatsapp"
	"go.uber.org/zap"
)

// Outcome is what the pipeline did with one delivery. Every outcome is
// acknowledged to the provider with HTTP 200.
type Outcome string

const (
	OutcomeInvalidPayload     Outcome = "invalid_payload"
	OutcomeIgnored            Outcome = "ignored"
	OutcomeNoMessages         Outcome = "no_messages"
	OutcomeMissingFrom        Outcome = "missing_from"
	OutcomeMissingChannel     Outcome = "missing_phone_number_id"
	OutcomeLookupFailed       Outcome = "lookup_failed"
	OutcomeNoBotConfig        Outcome = "no_bot_config"
	OutcomeAmbiguousBotConfig Outcome = "ambiguous_bot_config"
	OutcomeOrderFailed        Outcome = "order_failed"
	OutcomeOK                 Outcome = "ok"
)

type ConfigFinder interface {
	FindByPhoneNumberID(ctx context.Context, phoneNumberID string) ([]Config, error)
}

type OrderCreator interface {
	Create(ctx context.Context, d orders.Draft, items []orders.ItemDraft) (*orders.Order, error)
}

type Sender interface {
	SendText(ctx context.Context, m whatsapp.TextMessage) whatsapp.Delivery
}

type EventEmitter interface {
	Emit(ctx context.Context, eventType, correlationID string, payload any)
}

// Pipeline turns an inbound chat message into a pending order and a reply.
type Pipeline struct {
	Configs ConfigFinder
	Orders  OrderCreator
	Sender  Sender
	Events  EventEmitter // optional
	Log     *zap.Logger
}

func (p *Pipeline) Handle(ctx context.Context, env *whatsapp.Envelope) Outcome {
	value := env.FirstValue()
	if value == nil {
		return OutcomeIgnored
	}
	msg := value.FirstMessage()
	if msg == nil {
		return OutcomeNoMessages
	}
	if msg.From == "" {
		return OutcomeMissingFrom
	}

	log := p.Log.With(zap.String("from", msg.From), zap.String("type", msg.Type))
	if msg.Type == "text" && msg.Text != nil {
		log.Info("whatsapp text received", zap.String("body", strings.TrimSpace(msg.Text.Body)))
	}

	channel := value.Metadata.PhoneNumberID
	if channel == "" {
		return OutcomeMissingChannel
	}
	log = log.With(zap.String("phone_number_id", channel))

	found, err := p.Configs.FindByPhoneNumberID(ctx, channel)
	switch {
	case err != nil:
		log.Error("bot config lookup failed", zap.Error(err))
		return OutcomeLookupFailed
	case len(found) == 0:
		log.Info("no bot config for channel")
		return OutcomeNoBotConfig
	case len(found) > 1:
		log.Error("channel is configured for more than one business")
		return OutcomeAmbiguousBotConfig
	}
	cfg := found[0]

	order, err := p.Orders.Create(ctx, orders.FromChat(cfg.BusinessID, msg.From), nil)
	if err != nil {
		log.Error("create chat order failed", zap.String("business_id", cfg.BusinessID), zap.Error(err))
		return OutcomeOrderFailed
	}
	if p.Events != nil {
		p.Events.Emit(ctx, events.OrderCreated, order.ID, events.OrderCreatedPayload{
			OrderID:       order.ID,
			BusinessID:    order.BusinessID,
			Source:        "whatsapp",
			PaymentMethod: string(order.PaymentMethod),
			AmountTotal:   order.AmountTotal,
			Status:        string(order.Status),
		})
	}

	delivery := p.Sender.SendText(ctx, whatsapp.TextMessage{
		PhoneNumberID: cfg.PhoneNumberID,
		AccessToken:   cfg.AccessToken,
		To:            msg.From,
		Body:          ComposeReply(cfg, order.ID),
	})
	log.Info("chat order opened",
		zap.String("business_id", cfg.BusinessID),
		zap.String("order_id", order.ID),
		zap.Bool("reply_delivered", delivery.OK),
	)
	return OutcomeOK
}
