// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package bus is a topic based publish/subscribe transport for encoded
// messages. Subscribers only see messages published while subscribed.
package bus

import (
	"context"
	"errors"
	"strings"
)

// Message is an encoded payload. Publishers must not mutate it after Publish.
type Message []byte

// Bus publishes messages to topic subscribers.
type Bus interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Subscribe(ctx context.Context, topic string) (Subscriber, error)
	Close() error
}

// Subscriber receives messages until Close. C is closed after Close.
type Subscriber interface {
	C() <-chan Message
	Close() error
}

// ErrClosed is returned when using a bus after Close.
var ErrClosed = errors.New("bus closed")

const subscriberBuffer = 64

func publishDropReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "context_done"
	}
}

// topicClass keeps metric labels bounded: "progress.<id>" becomes "progress.*".
func topicClass(topic string) string {
	if i := strings.IndexByte(topic, '.'); i >= 0 {
		return topic[:i] + ".*"
	}
	return topic
}
