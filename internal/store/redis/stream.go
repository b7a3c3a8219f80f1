package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
)

const (
	DefaultCreditStream = "spin:credits"
	defaultStreamMaxLen = 100_000
)

// Connect parses url, opens a client and verifies it with PING.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// CreditPublisher appends one stream entry per issued credit. The stream is
// trimmed approximately to maxLen entries.
type CreditPublisher struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

func NewCreditPublisher(client redis.Cmdable, stream string, maxLen int64) *CreditPublisher {
	if stream == "" {
		stream = DefaultCreditStream
	}
	if maxLen <= 0 {
		maxLen = defaultStreamMaxLen
	}
	return &CreditPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *CreditPublisher) Stream() string {
	return p.stream
}

// PublishCredit writes ev as an XADD entry with its JSON encoding under the
// "payload" field. Consumers key off tx_hash for idempotency.
func (p *CreditPublisher) PublishCredit(ctx context.Context, ev model.CreditEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal credit event: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"tx_hash":    ev.TxHash,
			"account_id": ev.Account,
			"spins":      ev.Spins,
			"payload":    string(payload),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	if id == "" {
		return fmt.Errorf("xadd %s: empty entry id", p.stream)
	}
	return nil
}
