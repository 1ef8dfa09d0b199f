package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
	amqp "github.com/rabbitmq/amqp091-go"
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type publisher struct {
	ch       channel
	exchange string
}

var _ portssvc.EventPublisher = (*publisher)(nil)

// NewPublisher creates an EventPublisher writing JSON events to exchange.
func NewPublisher(ch *amqp.Channel, exchange string) portssvc.EventPublisher {
	return &publisher{ch: ch, exchange: exchange}
}

// RoutingKey returns transaction.<direction>.<event>, e.g. transaction.outbound.cancelled.
func RoutingKey(event domain.TransactionEvent) string {
	name := strings.TrimPrefix(string(event.Type), "transaction.")
	return fmt.Sprintf("transaction.%s.%s", strings.ToLower(string(event.Direction)), name)
}

func (p *publisher) Publish(ctx context.Context, event domain.TransactionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		p.exchange,        // exchange
		RoutingKey(event), // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.TransactionID + ":" + string(event.Type),
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
}
