package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

// Publisher pushes realtime messages to subscribed frontends.
type Publisher struct {
	pool   *redis.Pool
	logger *zap.SugaredLogger
}

func NewPublisher(pool *redis.Pool, logger *zap.SugaredLogger) *Publisher {
	return &Publisher{pool: pool, logger: logger}
}

// Progress is the payload sweeps publish after each processed unit.
type Progress struct {
	Progress int    `json:"progress"`
	Total    int    `json:"total"`
	Title    string `json:"title"`
}

// ChangeNotification tells listeners a record's scheduling data changed.
// One message goes out per reference pair and one per participant email.
type ChangeNotification struct {
	ReferenceDoctype string `json:"reference_doctype,omitempty"`
	ReferenceDocname string `json:"reference_docname,omitempty"`
	Email            string `json:"email,omitempty"`
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	conn, err := p.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get redis connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Do("PUBLISH", channel, data); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// PublishProgress is fire-and-forget; a missed progress tick never fails
// the sweep.
func (p *Publisher) PublishProgress(ctx context.Context, channel string, progress Progress) {
	if err := p.Publish(ctx, channel, progress); err != nil {
		p.logger.Errorw("failed publishing progress", "channel", channel, "err", err)
	}
}
