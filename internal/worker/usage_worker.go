package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"neuromentor/internal/model"
	"neuromentor/internal/platform/rabbitmq"
)

type UsageStore interface {
	Record(ctx context.Context, event model.UsageEvent) error
}

// UsageWorker drains the usage queue into the daily usage_logs rows.
type UsageWorker struct {
	conn      *amqp.Connection
	store     UsageStore
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewUsageWorker(conn *amqp.Connection, store UsageStore, queueName string, logger *slog.Logger) *UsageWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		logger:    logger.With("component", "usage_worker", "queue", queueName),
	}
}

func (w *UsageWorker) Start(ctx context.Context) error {
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

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
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
					w.logger.Warn("delivery channel closed")
					return
				}
				w.dispatch(workerCtx, d)
			}
		}
	}()

	w.logger.Info("usage worker started")
	return nil
}

// dispatch acks recorded events. A failure caused by shutdown requeues the
// delivery; any other failure drops it.
func (w *UsageWorker) dispatch(ctx context.Context, d amqp.Delivery) {
	if err := w.Handle(ctx, d.Body); err != nil {
		if ctx.Err() != nil {
			w.logger.Warn("usage event requeued", "message_id", d.MessageId, "error", err)
			_ = d.Nack(false, true)
			return
		}
		w.logger.Error("usage event dropped", "message_id", d.MessageId, "error", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// Handle decodes one delivery body and records it.
func (w *UsageWorker) Handle(ctx context.Context, body []byte) error {
	var event model.UsageEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode usage event failed: %w", err)
	}
	if event.UserID == 0 {
		return fmt.Errorf("usage event has no user id")
	}
	return w.store.Record(ctx, event)
}

func (w *UsageWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
