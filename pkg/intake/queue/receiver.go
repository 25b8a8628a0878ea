// Package queue receives inbound referral payloads from a Redis list.
// External systems push one JSON payload per referral; the worker consumes
// them with BLPOP.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Callback handles one raw referral payload popped from the queue.
type Callback func(ctx context.Context, payload []byte) error

// Receiver consumes referral payloads from a Redis list.
type Receiver struct {
	Connection map[string]string
	Queue      string

	client   redis.UniversalClient
	callback Callback
	logger   *slog.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewReceiver(queue string, connection map[string]string, logger *slog.Logger) (*Receiver, error) {
	if queue == "" {
		return nil, errors.New("intake queue name is required")
	}

	return &Receiver{
		Connection: connection,
		Queue:      queue,
		stopCh:     make(chan struct{}),
		logger: logger.With(
			"module", "intake_queue",
			"queue", queue,
		),
	}, nil
}

// Start connects to Redis and begins consuming in the background.
func (r *Receiver) Start(ctx context.Context, callback Callback) error {
	r.logger.InfoContext(ctx, "Starting intake queue receiver")
	r.callback = callback

	err := r.initializeClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize intake queue client: %w", err)
	}

	r.wg.Add(1)

	go r.consume(ctx)

	return nil
}

func (r *Receiver) initializeClient(ctx context.Context) error {
	addr := r.Connection["addr"]
	if addr == "" {
		addr = "localhost:6379"
	}

	password := r.Connection["password"]
	db := 0

	if dbStr := r.Connection["db"]; dbStr != "" {
		var err error

		db, err = strconv.Atoi(dbStr)
		if err != nil {
			return fmt.Errorf("invalid db value: %w", err)
		}
	}

	r.client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r.logger.InfoContext(ctx, "Connected to Redis", "addr", addr, "db", db)

	return nil
}

func (r *Receiver) consume(ctx context.Context) {
	defer r.wg.Done()

	r.logger.InfoContext(ctx, "Starting intake consumer", "queue", r.Queue)

	for {
		select {
		case <-r.stopCh:
			r.logger.InfoContext(ctx, "Intake consumer stopped")

			return
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "Context cancelled, stopping intake consumer")

			return
		default:
			err := r.processMessage(ctx)
			if err != nil {
				r.logger.ErrorContext(ctx, "Error processing referral payload", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (r *Receiver) processMessage(ctx context.Context) error {
	result, err := r.client.BLPop(ctx, 1*time.Second, r.Queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop referral from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	payload := []byte(result[1])
	r.logger.InfoContext(ctx, "Received referral payload", "bytes", len(payload))

	go func() {
		err := r.callback(ctx, payload)
		if err != nil {
			r.logger.ErrorContext(ctx, "Error handling referral payload", "error", err)
		}
	}()

	return nil
}

// Stop drains the consumer and closes the connection.
func (r *Receiver) Stop(ctx context.Context) error {
	r.logger.InfoContext(ctx, "Stopping intake queue receiver")

	close(r.stopCh)
	r.wg.Wait()

	if r.client != nil {
		err := r.client.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
		}
	}

	return nil
}
