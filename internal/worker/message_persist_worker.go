package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"netauto/internal/logger"
	"netauto/internal/model"
)

const logModule = "worker"

// MessageStore is the sink the worker writes decoded messages to.
type MessageStore interface {
	Create(message *model.ChatMessage) error
}

// MessagePersistWorker drains the chat persistence queue into the database.
// Undecodable or unsavable deliveries are dropped with a Nack so the queue
// never stalls on a poison message.
type MessagePersistWorker struct {
	conn      *amqp.Connection
	store     MessageStore
	queueName string
	log       logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMessagePersistWorker(conn *amqp.Connection, store MessageStore, queueName string, log logger.Logger) *MessagePersistWorker {
	if log == nil {
		log = logger.NewNop()
	}
	return &MessagePersistWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		log:       log,
	}
}

func (w *MessagePersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err = ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.log.Info(logModule, "message persist worker started", map[string]interface{}{"queue": w.queueName})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.log.Warn(logModule, "delivery channel closed", nil)
					return
				}
				w.handle(d)
			}
		}
	}()

	return nil
}

func (w *MessagePersistWorker) handle(d amqp.Delivery) {
	var msg model.ChatMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		w.log.Error(logModule, "decode message failed", map[string]interface{}{"error": err})
		_ = d.Nack(false, false)
		return
	}
	msg.ID = 0

	if err := w.store.Create(&msg); err != nil {
		w.log.Error(logModule, "persist message failed", map[string]interface{}{"error": err, "session_id": msg.SessionID})
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (w *MessagePersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
