// Package kafkaclient wraps a kafka-go reader with manual offset commits and a
// channel-based message loop.
package kafkaclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"cctvmap/pkg/config"
)

// Reader is the subset of *kafka.Reader the consumer needs.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads messages in a goroutine and hands them out on a channel.
// Offsets are only committed through CommitOffset.
type Consumer struct {
	reader   Reader
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	messages chan kafka.Message
	backoff  time.Duration
	logger   *slog.Logger
}

// New creates a consumer for the configured topic and group.
func New(cfg config.KafkaConfig) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
		// Manual commits only.
		CommitInterval: 0,
		MinBytes:       1,
		MaxBytes:       10e6,
	})
	return newConsumer(reader)
}

func newConsumer(r Reader) *Consumer {
	return &Consumer{
		reader:   r,
		done:     make(chan struct{}),
		messages: make(chan kafka.Message),
		backoff:  time.Second,
		logger:   slog.With("component", "kafka"),
	}
}

// Messages returns the message channel. It is closed when the loop exits.
func (c *Consumer) Messages() <-chan kafka.Message {
	return c.messages
}

// CommitOffset acknowledges a processed message.
func (c *Consumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	c.logger.Debug("Committing offset", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	return c.reader.CommitMessages(ctx, msg)
}

// Start begins the read loop.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(c.messages)

		c.logger.Info("Kafka consumer started")
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.done:
				return
			default:
			}

			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return
				}
				c.logger.Warn("Failed to read message", "error", err)
				select {
				case <-time.After(c.backoff):
				case <-ctx.Done():
					return
				case <-c.done:
					return
				}
				continue
			}

			select {
			case c.messages <- msg:
				c.logger.Debug("Message received", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
			case <-ctx.Done():
				return
			case <-c.done:
				return
			}
		}
	}()
}

// Stop ends the loop and closes the reader. Safe to call more than once.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		// Closing first unblocks a pending ReadMessage.
		if err := c.reader.Close(); err != nil {
			c.logger.Error("Failed to close Kafka reader", "error", err)
		}
		c.wg.Wait()
		c.logger.Info("Kafka consumer stopped")
	})
}
