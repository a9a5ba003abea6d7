package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/dvoryanov/tipscraper/internal/tip"
	scrapeerr "github.com/dvoryanov/tipscraper/pkg/errors"
)

// RedisPublisher implements Publisher on a Redis stream. Each tip is
// published as one stream entry so consumers can tail the feed without
// re-reading whole batches.
type RedisPublisher struct {
	client    *redis.Client
	ctx       context.Context
	stream    string
	maxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(ctx context.Context, addr string, db int, stream string, maxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:    client,
		ctx:       ctx,
		stream:    stream,
		maxLength: maxLength,
	}
}

// PublishBatch publishes every tip of a batch to the stream, base64-encoded
// JSON, then trims the stream to its configured maximum length.
func (p *RedisPublisher) PublishBatch(tips []tip.Tip) error {
	for _, t := range tips {
		data, err := json.Marshal(t)
		if err != nil {
			return scrapeerr.NewPublisher("redis", "failed to marshal tip", err)
		}

		encoded := base64.StdEncoding.EncodeToString(data)
		err = p.client.XAdd(p.ctx, &redis.XAddArgs{
			Stream: p.stream,
			Values: map[string]interface{}{
				"tip": encoded,
			},
		}).Err()
		if err != nil {
			return scrapeerr.NewPublisher("redis", "failed to publish tip", err)
		}
	}

	if err := p.client.XTrimMaxLen(p.ctx, p.stream, int64(p.maxLength)).Err(); err != nil {
		return scrapeerr.NewPublisher("redis", "failed to trim stream", err)
	}

	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
