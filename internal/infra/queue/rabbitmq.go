package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName carries lead-change events. Fanout: every connected client
// gets its own copy. Events are cache-freshness hints, so nothing here is
// durable and there is no dead-lettering.
const ExchangeName = "ex.crm.leads"

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(user, pass, host, port string) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "fanout", false, false, false, false, nil); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}
