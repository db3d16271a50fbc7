package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelPrefix  = "bundle:"
	publishTimeout = 5 * time.Second
)

// redisPayload is the message published to Redis for cross-instance broadcast.
type redisPayload struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	At    int64           `json:"at"`
}

// RedisPubSub bridges bundle progress events over Redis pub/sub so the worker
// can publish and any API instance can deliver to its connected clients.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPubSub creates a Redis pub/sub bridge for bundle events.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	return &RedisPubSub{client: client, logger: logger}
}

// PublishBundleEvent publishes an event to the bundle's Redis channel.
func (r *RedisPubSub) PublishBundleEvent(bundleID uuid.UUID, event string, payload []byte) error {
	channel := channelPrefix + bundleID.String()
	body, err := json.Marshal(redisPayload{Event: event, Data: payload, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return r.client.Publish(ctx, channel, body).Err()
}

// SubscribeBundle subscribes to a bundle's Redis channel and calls handler for each message.
// Returns a cancel function to stop the subscription.
func (r *RedisPubSub) SubscribeBundle(bundleID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error) {
	channel := channelPrefix + bundleID.String()
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, channel)
	_, err = pubsub.Receive(ctx)
	if err != nil {
		cancelCtx()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var p redisPayload
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					continue
				}
				handler(p.Event, p.Data)
			}
		}
	}()
	cancel = func() { cancelCtx() }
	return cancel, nil
}

// Event is one progress update for a generation run.
type Event struct {
	BundleID uuid.UUID `json:"bundle_id"`
	Stage    string    `json:"stage"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// Reporter publishes pipeline stage events over Redis. It satisfies the
// pipeline's Reporter interface.
type Reporter struct {
	pub    *RedisPubSub
	logger *zap.Logger
}

// NewReporter creates a progress reporter backed by Redis pub/sub.
func NewReporter(pub *RedisPubSub, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{pub: pub, logger: logger}
}

// Publish sends one stage event; delivery is best effort.
func (r *Reporter) Publish(bundleID uuid.UUID, stage, detail string) {
	data, err := json.Marshal(Event{BundleID: bundleID, Stage: stage, Detail: detail, At: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := r.pub.PublishBundleEvent(bundleID, "progress", data); err != nil {
		r.logger.Debug("progress publish failed", zap.String("bundle_id", bundleID.String()), zap.Error(err))
	}
}
