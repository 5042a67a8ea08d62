package broker

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const eventChannel = "roomcast:events"

// RedisEventBroker implements EventBroker over Redis pub/sub.
type RedisEventBroker struct {
	client *redis.Client
	pubsub *redis.PubSub
	ctx    context.Context
}

func NewRedisEventBroker(redisURL string) (*RedisEventBroker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisEventBroker{
		client: client,
		ctx:    ctx,
	}, nil
}

func (r *RedisEventBroker) Publish(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return r.client.Publish(r.ctx, eventChannel, data).Err()
}

func (r *RedisEventBroker) Subscribe() (<-chan Event, error) {
	r.pubsub = r.client.Subscribe(r.ctx, eventChannel)

	evChan := make(chan Event, 100)

	go func() {
		defer close(evChan)

		for redisMsg := range r.pubsub.Channel() {
			var ev Event

			if err := json.Unmarshal([]byte(redisMsg.Payload), &ev); err != nil {
				continue
			}

			evChan <- ev
		}
	}()

	return evChan, nil
}

func (r *RedisEventBroker) Close() error {
	if r.pubsub != nil {
		r.pubsub.Close()
	}
	return r.client.Close()
}
