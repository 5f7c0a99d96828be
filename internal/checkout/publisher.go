package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher emits order-completed events so downstream consumers
// (fulfilment, analytics) can react to placed orders.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-completed",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderCompleted(ctx context.Context, order Order) error {
	lines := make([]map[string]interface{}, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = map[string]interface{}{
			"product_id": line.Product.ID,
			"unit_price": line.Product.Price,
			"quantity":   line.Quantity,
		}
	}

	payload := map[string]interface{}{
		"order_id":        order.ID,
		"lines":           lines,
		"total_items":     order.TotalItems,
		"subtotal":        order.Subtotal,
		"shipping_fee":    order.ShippingFee,
		"total_amount":    order.Total,
		"shipping_method": order.ShippingMethod,
		"payment_method":  order.PaymentMethod,
		"placed_at":       order.PlacedAt,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal order payload: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: payloadJSON,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order message: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("error closing kafka writer: %v", err)
	}
}
