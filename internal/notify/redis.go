package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// DefaultChannel is the pub/sub channel change events travel on.
const DefaultChannel = "planner:changes"

type changeEvent struct {
	UserID uuid.UUID `json:"user_id"`
	Origin string    `json:"origin"`
}

// RedisRelay shares change events between server instances so that a user's
// sockets are refreshed whichever instance handled the mutation.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
	logger  log.FieldLogger
}

func NewRedisRelay(client *redis.Client, channel string, logger log.FieldLogger) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &RedisRelay{client: client, channel: channel, origin: uuid.NewString(), logger: logger}
}

// Observer returns a bus observer publishing a change event for the user.
func (r *RedisRelay) Observer(userID uuid.UUID) Observer {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.Publish(ctx, userID); err != nil {
			r.logger.WithError(err).WithField("user", userID).Warn("publish change event")
		}
	}
}

func (r *RedisRelay) Publish(ctx context.Context, userID uuid.UUID) error {
	data, err := json.Marshal(changeEvent{UserID: userID, Origin: r.origin})
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

// Subscribe delivers change events published by other instances to deliver
// until ctx is cancelled. Events published by this relay are skipped.
func (r *RedisRelay) Subscribe(ctx context.Context, deliver func(userID uuid.UUID)) {
	for {
		sub := r.client.Subscribe(ctx, r.channel)
		ch := sub.Channel()
	receive:
		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break receive
				}
				var ev changeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					r.logger.WithError(err).Error("unable to parse change event")
					continue
				}
				if ev.Origin == r.origin {
					continue
				}
				deliver(ev.UserID)
			}
		}
		sub.Close()
		if ctx.Err() != nil {
			return
		}
		r.logger.Error("pubsub channel closed, reconnecting")
		time.Sleep(time.Second)
	}
}
