package orders

import (
	"time"

	kafkax "github.com/SzymonUniCode/Order-Statistic-App/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// EventSink is where committed-state events go. *kafka.Producer satisfies it;
// tests record into a slice.
type EventSink interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// publish wraps payload in the v1 envelope and hands it to the sink. Events
// describe already-committed state, so they are emitted only after a
// successful commit; a nil sink is a no-op.
func publish(sink EventSink, producer, topic, eventType, correlationID string, payload any) {
	if sink == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	sink.Publish(topic, PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
