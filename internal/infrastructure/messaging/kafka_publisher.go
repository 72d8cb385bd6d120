// Package messaging publica eventos de movimiento de stock en Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/inventory"
)

// EventTypeStockMovement valor del header event_type.
const EventTypeStockMovement = "stock.movement"

var _ inventory.EventPublisher = (*KafkaPublisher)(nil)

// Producer subconjunto de *kafka.Writer que usa el publicador.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implementa inventory.EventPublisher.
// La clave del mensaje es el product_id: con el balanceador Hash los eventos de un producto quedan ordenados en una partición.
type KafkaPublisher struct {
	producer Producer
	timeout  time.Duration
}

// NewKafkaPublisher crea el writer contra los brokers indicados.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           20 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithProducer(w)
}

// NewKafkaPublisherWithProducer permite inyectar el producer (tests).
func NewKafkaPublisherWithProducer(p Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: p, timeout: 5 * time.Second}
}

// Publish serializa el evento y lo escribe con el contexto de traza en los headers.
func (p *KafkaPublisher) Publish(ctx context.Context, evt inventory.MovementEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []kafka.Header{{Key: "event_type", Value: []byte(EventTypeStockMovement)}}
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	msg := kafka.Message{
		Key:     []byte(evt.ProductID),
		Value:   payload,
		Headers: headers,
		Time:    evt.OccurredAt,
	}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publicar evento %s: %w", evt.TransactionID, err)
	}
	return nil
}

// Close libera el writer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
