// Package queue implements the job queue over a Redis list. Producers push
// JSON envelopes; the consumer blocks for the next message and drains up to
// a batch worth per invocation. Delivery is at-least-once; there is no
// acknowledgement protocol beyond the pop itself.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable signals an absent queue binding.
var ErrUnavailable = errors.New("queue unavailable")

// Publisher enqueues jobs.
type Publisher struct {
	client *redis.Client
	key    string
}

// NewPublisher builds a publisher. A nil client yields a publisher whose
// Enqueue reports ErrUnavailable, mirroring a missing queue binding.
func NewPublisher(client *redis.Client, key string) *Publisher {
	return &Publisher{client: client, key: key}
}

// Enqueue marshals the job and pushes it onto the queue.
func (p *Publisher) Enqueue(ctx context.Context, job any) error {
	if p == nil || p.client == nil {
		return ErrUnavailable
	}
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.client.LPush(ctx, p.key, body).Err()
}

// Consumer pops batches of raw job messages.
type Consumer struct {
	client       *redis.Client
	key          string
	batchSize    int
	blockTimeout time.Duration
}

// NewConsumer builds a consumer.
func NewConsumer(client *redis.Client, key string, batchSize int, blockTimeout time.Duration) *Consumer {
	if batchSize <= 0 {
		batchSize = 1
	}
	if blockTimeout <= 0 {
		blockTimeout = 5 * time.Second
	}
	return &Consumer{client: client, key: key, batchSize: batchSize, blockTimeout: blockTimeout}
}

// Next blocks for the next available message, then drains without blocking
// up to the batch size. Returns a nil batch when the block times out.
func (c *Consumer) Next(ctx context.Context) ([][]byte, error) {
	if c == nil || c.client == nil {
		return nil, ErrUnavailable
	}

	res, err := c.client.BRPop(ctx, c.blockTimeout, c.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// BRPop returns [key, value].
	batch := [][]byte{[]byte(res[1])}

	if c.batchSize > 1 {
		rest, err := c.client.RPopCount(ctx, c.key, c.batchSize-1).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return batch, err
		}
		for _, raw := range rest {
			batch = append(batch, []byte(raw))
		}
	}
	return batch, nil
}
