// Package kafka consumes article events from a sarama consumer group.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"newsgraph/config"
	"newsgraph/logger"

	"github.com/IBM/sarama"
)

// MessageHandler handles one consumed message.
type MessageHandler interface {
	// HandleMessage processes a message and reports whether to mark it as
	// consumed. Unmarked messages are redelivered after a rebalance.
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

// Consumer handles Kafka message consumption with pluggable message handling
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	topic   string
	groupID string
	done    chan struct{}
}

// NewConsumer joins the configured consumer group.
func NewConsumer(cfg config.KafkaConfig, handler MessageHandler) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are not configured")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to join consumer group %s: %w", cfg.GroupID, err)
	}
	return newConsumer(group, cfg, handler), nil
}

func newConsumer(group sarama.ConsumerGroup, cfg config.KafkaConfig, handler MessageHandler) *Consumer {
	return &Consumer{
		group:   group,
		handler: handler,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		done:    make(chan struct{}),
	}
}

// Start consumes in the background until ctx is cancelled or the consumer is
// closed. It returns once the first session is set up.
func (c *Consumer) Start(ctx context.Context) error {
	ready := make(chan struct{})
	handler := &groupHandler{handler: c.handler, ready: ready}

	go func() {
		defer close(c.done)
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) || errors.Is(err, context.Canceled) {
					return
				}
				logger.Error("kafka consume failed", "topic", c.topic, "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		for err := range c.group.Errors() {
			logger.Error("kafka consumer error", "group", c.groupID, "err", err)
		}
	}()

	select {
	case <-ready:
		logger.Info("kafka consumer started", "group", c.groupID, "topic", c.topic)
		return nil
	case <-c.done:
		return errors.New("kafka consumer stopped before joining the group")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close leaves the group and waits for the consume loop to exit.
func (c *Consumer) Close() error {
	logger.Info("closing kafka consumer", "group", c.groupID)
	err := c.group.Close()
	<-c.done
	return err
}

// groupHandler implements sarama.ConsumerGroupHandler
type groupHandler struct {
	handler   MessageHandler
	ready     chan struct{}
	readyOnce sync.Once
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.readyOnce.Do(func() { close(h.ready) })
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages()
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			logger.Debug("kafka message received", "partition", message.Partition,
				"offset", message.Offset, "key", string(message.Key))

			shouldMark, err := h.handler.HandleMessage(session.Context(), message.Value)
			if err != nil {
				logger.Error("failed to handle kafka message", "offset", message.Offset, "err", err)
			}
			if shouldMark {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

// TypedMessageHandler decodes JSON messages into T before processing them.
type TypedMessageHandler[T any] struct {
	// Validate checks if the message should be processed
	Validate func(msg *T) bool
	// Process handles the actual message processing
	Process func(ctx context.Context, msg *T) error
	// AlwaysMark marks undecodable and invalid messages so they are skipped
	AlwaysMark bool
}

// HandleMessage implements MessageHandler interface
func (h *TypedMessageHandler[T]) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var msg T
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("failed to decode kafka message", "err", err)
		return h.AlwaysMark, nil
	}

	if h.Validate != nil && !h.Validate(&msg) {
		return h.AlwaysMark, nil
	}

	if err := h.Process(ctx, &msg); err != nil {
		return false, err
	}
	return true, nil
}
