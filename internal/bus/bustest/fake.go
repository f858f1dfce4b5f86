// Package bustest provides a fake bus.Publisher for unit tests, recording
// every publish instead of talking to RabbitMQ.
package bustest

import (
	"context"
	"sync"
)

// Published is one recorded Publish call.
type Published struct {
	EventType string
	Payload   any
}

// FakePublisher implements bus.Publisher in memory.
type FakePublisher struct {
	mu        sync.Mutex
	Events    []Published
	PublishFn func(eventType string, payload any) error
}

// NewFakePublisher builds an empty FakePublisher.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the call and optionally delegates to PublishFn to
// simulate a failure.
func (f *FakePublisher) Publish(ctx context.Context, eventType string, payload any) error {
	f.mu.Lock()
	f.Events = append(f.Events, Published{EventType: eventType, Payload: payload})
	f.mu.Unlock()

	if f.PublishFn != nil {
		return f.PublishFn(eventType, payload)
	}
	return nil
}

// Close is a no-op.
func (f *FakePublisher) Close() error { return nil }

// CountOf returns how many times eventType was published.
func (f *FakePublisher) CountOf(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.Events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}
