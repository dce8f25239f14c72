// Package redisstream ingests CRM domain events from a Redis stream and
// republishes them on the engine's event bus. The CRM appends one entry per
// domain occurrence; a consumer group lets several workers share the stream
// without double-dispatching.
package redisstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/funilhq/funil/pkg/eventbus"
	"github.com/funilhq/funil/pkg/events"
)

const (
	DefaultStream = "funil:crm-events"
	DefaultGroup  = "funil-workers"

	readBlock = time.Second
	readCount = 16
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type Receiver struct {
	config Config
	bus    eventbus.EventBus
	logger *slog.Logger

	client *redis.Client
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewReceiver(logger *slog.Logger, bus eventbus.EventBus, config Config) *Receiver {
	if config.Stream == "" {
		config.Stream = DefaultStream
	}

	if config.Group == "" {
		config.Group = DefaultGroup
	}

	if config.Consumer == "" {
		config.Consumer = config.Group + "-1"
	}

	return &Receiver{
		config: config,
		bus:    bus,
		logger: logger.With("module", "redisstream_receiver", "stream", config.Stream),
		stopCh: make(chan struct{}),
	}
}

func (r *Receiver) Start(ctx context.Context) error {
	addr := r.config.Addr
	if addr == "" {
		addr = "localhost:6379"
	}

	r.client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: r.config.Password,
		DB:       r.config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if err := r.ensureGroup(ctx); err != nil {
		return err
	}

	r.logger.Info("Connected to Redis", "addr", addr, "group", r.config.Group)

	r.wg.Add(1)

	go r.consume(ctx)

	return nil
}

func (r *Receiver) ensureGroup(ctx context.Context) error {
	err := r.client.XGroupCreateMkStream(ctx, r.config.Stream, r.config.Group, "$").Err()
	if err != nil && !isBusyGroup(err) {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	return nil
}

func (r *Receiver) consume(ctx context.Context) {
	defer r.wg.Done()

	r.logger.Info("Starting stream consumer", "consumer", r.config.Consumer)

	for {
		select {
		case <-r.stopCh:
			r.logger.Info("Stream consumer stopped")

			return
		case <-ctx.Done():
			r.logger.Info("Context cancelled, stopping stream consumer")

			return
		default:
			if err := r.readBatch(ctx); err != nil {
				r.logger.Error("Error reading from stream", "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (r *Receiver) readBatch(ctx context.Context) error {
	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    r.config.Group,
		Consumer: r.config.Consumer,
		Streams:  []string{r.config.Stream, ">"},
		Count:    readCount,
		Block:    readBlock,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := r.handleMessage(ctx, message); err != nil {
				r.logger.Error("Failed to handle stream entry",
					"entry_id", message.ID, "error", err)

				continue
			}

			if err := r.client.XAck(ctx, r.config.Stream, r.config.Group, message.ID).Err(); err != nil {
				r.logger.Error("Failed to ack stream entry",
					"entry_id", message.ID, "error", err)
			}
		}
	}

	return nil
}

// handleMessage converts one stream entry into a DomainEvent. Expected
// fields: "event" (required), "entity_type", "entity_id" and "payload" (a
// JSON object).
func (r *Receiver) handleMessage(ctx context.Context, message redis.XMessage) error {
	name, _ := message.Values["event"].(string)
	if name == "" {
		return fmt.Errorf("stream entry %s has no event name", message.ID)
	}

	entityType, _ := message.Values["entity_type"].(string)
	entityID, _ := message.Values["entity_id"].(string)

	payload := map[string]any{}

	if raw, ok := message.Values["payload"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return fmt.Errorf("stream entry %s has malformed payload: %w", message.ID, err)
		}
	}

	event := events.NewDomainEvent(name, entityType, entityID, payload)

	if err := r.bus.Publish(ctx, r.bus.GenerateID(), event); err != nil {
		return fmt.Errorf("failed to publish domain event: %w", err)
	}

	r.logger.Debug("Forwarded domain event from stream",
		"event", name, "entity_type", entityType, "entity_id", entityID)

	return nil
}

func (r *Receiver) Stop(_ context.Context) error {
	r.logger.Info("Stopping stream receiver")

	close(r.stopCh)
	r.wg.Wait()

	if r.client != nil {
		return r.client.Close()
	}

	return nil
}

func isBusyGroup(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}
