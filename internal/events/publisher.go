package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Sink is the transport; *kafka.Producer implements it.
type Sink interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// Publisher wraps payloads into envelopes and hands them to the sink.
// Emission is best-effort: failures are logged, never returned.
type Publisher struct {
	Sink     Sink
	Producer string
	Log      *zap.Logger
}

func (p *Publisher) Emit(ctx context.Context, eventType, correlationID string, payload any) {
	topic, ok := TopicFor(eventType)
	if !ok {
		p.Log.Error("unknown event type", zap.String("event_type", eventType))
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		p.Log.Error("marshal event payload", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.Producer,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: correlationID,
		Payload:       body,
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.Log.Error("marshal event envelope", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	p.Sink.Publish(topic, []byte(correlationID), value,
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
