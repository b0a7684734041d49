package client

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// Listener consumes lead-change events off the fanout exchange and drops
// the affected cache entries so the next read refetches. Events from this
// client's own mutations are harmless: the coordinator already refreshed
// those keys.
type Listener struct {
	ch    *amqp.Channel
	cache *Cache
}

func NewListener(ch *amqp.Channel, cache *Cache) *Listener {
	return &Listener{ch: ch, cache: cache}
}

// Start binds an exclusive queue to the exchange and consumes until ctx is
// canceled or the channel closes.
func (l *Listener) Start(ctx context.Context) error {
	if err := l.ch.ExchangeDeclare(queue.ExchangeName, "fanout", false, false, false, false, nil); err != nil {
		return err
	}

	q, err := l.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return err
	}
	if err := l.ch.QueueBind(q.Name, "", queue.ExchangeName, false, nil); err != nil {
		return err
	}

	deliveries, err := l.ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				l.handle(d.Body)
			}
		}
	}()
	return nil
}

func (l *Listener) handle(body []byte) {
	var event usecase.LeadEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("listener: dropping malformed event: %v", err)
		return
	}

	l.cache.DeletePrefix(listKeyPrefix)
	l.cache.DeletePrefix(searchKeyPrefix)

	switch event.Action {
	case "deleted":
		l.cache.Delete(leadKey(event.LeadID))
		l.cache.Delete(interactionsKey(event.LeadID))
	case "updated", "created":
		l.cache.Delete(leadKey(event.LeadID))
	}
}
