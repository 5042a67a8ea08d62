package testutil

import (
	"sync"

	"github.com/roomcast/roomcast/internal/broker"
)

// FakeBroker is an in-memory EventBroker for service and handler tests.
// It records published events and feeds them to a single subscriber.
type FakeBroker struct {
	mu     sync.Mutex
	events []broker.Event
	subs   []chan broker.Event
}

func NewFakeBroker() *FakeBroker {
	return &FakeBroker{}
}

func (f *FakeBroker) Publish(ev broker.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	for _, ch := range f.subs {
		ch <- ev
	}
	return nil
}

func (f *FakeBroker) Subscribe() (<-chan broker.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan broker.Event, 100)
	f.subs = append(f.subs, ch)
	return ch, nil
}

func (f *FakeBroker) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		close(ch)
	}
	f.subs = nil
	return nil
}

// Events returns a copy of everything published so far.
func (f *FakeBroker) Events() []broker.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]broker.Event, len(f.events))
	copy(out, f.events)
	return out
}

// EventsOfType filters the published events by type.
func (f *FakeBroker) EventsOfType(t broker.EventType) []broker.Event {
	var out []broker.Event
	for _, ev := range f.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// Reset drops recorded events between tests.
func (f *FakeBroker) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}
