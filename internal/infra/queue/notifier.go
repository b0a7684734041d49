package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// Notifier publishes lead-change events. Callers treat failures as
// best-effort: a lost event only delays a cache refresh.
type Notifier struct {
	Ch *amqp.Channel
}

func NewNotifier(ch *amqp.Channel) *Notifier {
	return &Notifier{Ch: ch}
}

func (n *Notifier) NotifyLeadChanged(ctx context.Context, event usecase.LeadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode lead event: %w", err)
	}

	err = n.Ch.PublishWithContext(ctx,
		ExchangeName,
		"",    // fanout ignores the routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Transient,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish lead event: %w", err)
	}
	return nil
}
