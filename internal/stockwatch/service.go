package stockwatch

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/SzymonUniCode/Order-Statistic-App/internal/kafka"
	"github.com/SzymonUniCode/Order-Statistic-App/internal/orders"
	"github.com/SzymonUniCode/Order-Statistic-App/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Service keeps the redis read caches coherent with committed state by
// dropping stale keys whenever an order or ledger event arrives. Readers
// repopulate from Postgres on the next miss.
type Service struct {
	Redis       *redis.Client
	ServiceName string
	Log         *logrus.Logger
}

// Handle is installed as the consumer handler for every published topic.
func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup via redis on event_id
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(p.Lines)+1)
		keys = append(keys, fmt.Sprintf(redisx.KeyOrderView, p.OrderID))
		for _, l := range p.Lines {
			keys = append(keys, fmt.Sprintf(redisx.KeyStockLevel, l.SKU))
		}
		return s.drop(ctx, env.EventType, keys...)

	case orders.EventStockReserved:
		p, err := kafkax.UnwrapPayload[orders.StockReservedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.drop(ctx, env.EventType,
			fmt.Sprintf(redisx.KeyOrderView, p.OrderID),
			fmt.Sprintf(redisx.KeyStockLevel, p.SKU))

	case orders.EventStockReleased:
		p, err := kafkax.UnwrapPayload[orders.StockReleasedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.drop(ctx, env.EventType,
			fmt.Sprintf(redisx.KeyOrderView, p.OrderID),
			fmt.Sprintf(redisx.KeyStockLevel, p.SKU))

	case orders.EventStockAdjusted:
		p, err := kafkax.UnwrapPayload[orders.StockAdjustedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.drop(ctx, env.EventType, fmt.Sprintf(redisx.KeyStockLevel, p.SKU))

	case orders.EventOrderDeleted:
		p, err := kafkax.UnwrapPayload[orders.OrderDeletedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.drop(ctx, env.EventType, fmt.Sprintf(redisx.KeyOrderView, p.OrderID))
	}
	return nil // unknown event types are ignored
}

func (s *Service) drop(ctx context.Context, eventType string, keys ...string) error {
	if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	s.Log.WithFields(logrus.Fields{"event": eventType, "keys": len(keys)}).Debug("cache invalidated")
	return nil
}
