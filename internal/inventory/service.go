package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flow1h/flow1h-api/internal/catalog"
	"github.com/flow1h/flow1h-api/internal/events"
	kafkax "github.com/flow1h/flow1h-api/internal/kafka"
	"github.com/flow1h/flow1h-api/internal/redisx"
	"github.com/go-chi/chi/v5/middleware"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// StockReserver is implemented by *catalog.StockRepo.
type StockReserver interface {
	ReserveAll(ctx context.Context, orderID string, items []catalog.ItemQty) (catalog.Reservation, error)
}

// Claimer is implemented by *redisx.Cache.
type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type Emitter interface {
	Emit(ctx context.Context, eventType, correlationID string, payload any)
}

type Service struct {
	Stock  StockReserver
	Dedup  Claimer
	Events Emitter
	Log    *zap.Logger
}

// HandleCatalogOrderCreated reserves stock for a new catalog order. It is
// installed as the consumer handler; returning nil commits the message.
func (s *Service) HandleCatalogOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.Warn("drop undecodable message", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != events.CatalogOrderCreated {
		return nil
	}

	p, err := kafkax.UnwrapPayload[events.CatalogOrderCreatedPayload](env.Payload)
	if err != nil {
		s.Log.Warn("drop bad payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}
	log := s.Log.With(zap.String("event_id", env.EventID), zap.String("catalog_order_id", p.CatalogOrderID))
	if env.TraceID != "" {
		ctx = context.WithValue(ctx, middleware.RequestIDKey, env.TraceID)
	}

	key := fmt.Sprintf(redisx.KeyDedup, "inventory", env.EventID)
	first, err := s.Dedup.Claim(ctx, key, redisx.TTLDedup)
	if err != nil {
		// redis down: fall through, ReserveAll is idempotent per order
		log.Warn("dedup claim failed", zap.Error(err))
		first = true
	}
	if !first {
		log.Debug("duplicate event skipped")
		return nil
	}

	items := make([]catalog.ItemQty, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, catalog.ItemQty{CatalogItemID: it.CatalogItemID, Quantity: it.Quantity})
	}

	res, err := s.Stock.ReserveAll(ctx, p.CatalogOrderID, items)
	if err != nil {
		return s.unclaim(ctx, key, err)
	}

	switch res.Outcome {
	case catalog.Reserved:
		log.Info("stock reserved", zap.Int("lines", len(items)))
		s.Events.Emit(ctx, events.CatalogStockReserved, p.CatalogOrderID, events.CatalogStockReservedPayload{
			CatalogOrderID: p.CatalogOrderID, Items: p.Items,
		})
	case catalog.OutOfStock:
		details := make([]events.StockRejectedDetail, 0, len(res.Shortages))
		for _, sh := range res.Shortages {
			details = append(details, events.StockRejectedDetail{
				CatalogItemID: sh.CatalogItemID, Required: sh.Required, Available: sh.Available,
			})
		}
		log.Info("stock rejected", zap.Int("short_lines", len(details)))
		s.Events.Emit(ctx, events.CatalogStockRejected, p.CatalogOrderID, events.CatalogStockRejectedPayload{
			CatalogOrderID: p.CatalogOrderID, Reason: "OUT_OF_STOCK", Details: details,
		})
	case catalog.NotPending:
		log.Info("order not pending, skipped", zap.String("status", string(res.Status)))
	}
	return nil
}

// unclaim drops the dedup marker so the redelivered message is processed.
func (s *Service) unclaim(ctx context.Context, key string, cause error) error {
	if err := s.Dedup.Del(ctx, key); err != nil {
		s.Log.Warn("dedup release failed", zap.String("key", key), zap.Error(err))
	}
	return cause
}
