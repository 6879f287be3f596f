// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/vidmux/internal/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisChannelPrefix = "vidmux:"

// RedisBus fans messages out through Redis PUBLISH/SUBSCRIBE so progress
// reaches clients connected to any instance.
type RedisBus struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisBus connects to addr and verifies the connection.
func NewRedisBus(ctx context.Context, addr string, logger zerolog.Logger) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis bus connection failed: %w", err)
	}
	logger.Info().Str("addr", addr).Msg("connected to Redis bus")
	return &RedisBus{client: client, logger: logger}, nil
}

func (b *RedisBus) Publish(ctx context.Context, topic string, msg Message) error {
	if err := b.client.Publish(ctx, redisChannelPrefix+topic, []byte(msg)).Err(); err != nil {
		metrics.IncBusDropReason(topicClass(topic), publishDropReason(err))
		return fmt.Errorf("publish topic %q: %w", topic, err)
	}
	metrics.BusPublishedTotal.WithLabelValues("redis").Inc()
	return nil
}

// Subscribe returns once Redis has confirmed the subscription.
func (b *RedisBus) Subscribe(ctx context.Context, topic string) (Subscriber, error) {
	ps := b.client.Subscribe(ctx, redisChannelPrefix+topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe topic %q: %w", topic, err)
	}

	s := &redisSub{
		ps:    ps,
		topic: topic,
		ch:    make(chan Message, subscriberBuffer),
		done:  make(chan struct{}),
	}
	metrics.BusSubscribers.WithLabelValues("redis").Inc()
	go s.pump(b.logger)
	return s, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

// Ping reports whether the Redis server is reachable.
func (b *RedisBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

type redisSub struct {
	ps    *redis.PubSub
	topic string
	ch    chan Message
	done  chan struct{}
	once  sync.Once
}

func (s *redisSub) pump(logger zerolog.Logger) {
	defer close(s.done)
	defer close(s.ch)
	for m := range s.ps.Channel() {
		select {
		case s.ch <- Message(m.Payload):
		default:
			// Redis delivers without backpressure; a full subscriber loses the message.
			metrics.IncBusDropReason(topicClass(s.topic), "subscriber_full")
			logger.Debug().Str("topic", s.topic).Msg("dropping message for slow subscriber")
		}
	}
}

func (s *redisSub) C() <-chan Message {
	return s.ch
}

func (s *redisSub) Close() error {
	var err error
	s.once.Do(func() {
		err = s.ps.Close()
		<-s.done
		metrics.BusSubscribers.WithLabelValues("redis").Dec()
	})
	return err
}

var _ Bus = (*RedisBus)(nil)
