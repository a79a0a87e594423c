package service

import (
	"encoding/json"
	"log"

	"blogpulse/internal/util"
)

// NotificationWorker consumes persisted notifications from the queue and
// pushes them into the realtime inbox of the recipient. The REST read side
// does not depend on it: a user with no open connection simply fetches the
// rows later.
type NotificationWorker struct {
	rabbitmq *util.RabbitMQClient
	hub      InboxPusher
}

func NewNotificationWorker(rabbitmq *util.RabbitMQClient, hub InboxPusher) *NotificationWorker {
	return &NotificationWorker{
		rabbitmq: rabbitmq,
		hub:      hub,
	}
}

// Start declares the exchange/queue pair, binds them and consumes until the
// channel closes. Run it in its own goroutine.
func (w *NotificationWorker) Start() error {
	ch := w.rabbitmq.GetChannel()

	if err := ch.ExchangeDeclare(
		NotificationExchange,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	queue, err := ch.QueueDeclare(
		NotificationQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	if err := ch.QueueBind(
		queue.Name,
		NotificationRoutingKey,
		NotificationExchange,
		false,
		nil,
	); err != nil {
		return err
	}

	deliveries, err := ch.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	log.Printf("notification worker: consuming from %s", queue.Name)

	for delivery := range deliveries {
		var msg NotificationMessage
		if err := json.Unmarshal(delivery.Body, &msg); err != nil {
			log.Printf("notification worker: bad message, discarding: %v", err)
			delivery.Nack(false, false)
			continue
		}

		w.hub.BroadcastToUser(msg.UserID, EventReceiveNotification, map[string]interface{}{
			"message": msg.Message,
		})

		delivery.Ack(false)
	}

	log.Println("notification worker: delivery channel closed")
	return nil
}
