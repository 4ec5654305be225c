package streaming

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

const defaultChannelBuffer = 64

type subscriber struct {
	ch     chan StreamEvent
	filter EventFilter

	// done closes when the subscription ends; ch is closed only after
	// every in-flight blocking send has returned.
	done     chan struct{}
	stopOnce sync.Once
	sends    sync.WaitGroup
}

func (s *subscriber) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *subscriber) send(ctx context.Context, event StreamEvent) error {
	select {
	case s.ch <- event:
		return nil
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MemoryHub is an in-memory EventHub implementation using channels.
type MemoryHub struct {
	mu      sync.RWMutex
	subs    map[uint64]*subscriber
	seq     atomic.Uint64
	dropped atomic.Uint64
	closed  bool
}

// NewMemoryHub creates a new MemoryHub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{
		subs: make(map[uint64]*subscriber),
	}
}

// Publish sends an event to all matching subscribers.
// Non-blocking: if a subscriber's channel is full the event is dropped.
// Paced animations go through PublishWait instead.
func (h *MemoryHub) Publish(ctx context.Context, event StreamEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !matchFilter(sub.filter, event) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// PublishWait sends an event to all matching subscribers, waiting for each
// one to take it. A subscriber that cancels meanwhile is skipped. It
// returns ctx's error if ctx ends before every delivery is made.
func (h *MemoryHub) PublishWait(ctx context.Context, event StreamEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		if matchFilter(sub.filter, event) {
			sub.sends.Add(1)
			targets = append(targets, sub)
		}
	}
	h.mu.RUnlock()

	var err error
	for _, sub := range targets {
		if err == nil {
			err = sub.send(ctx, event)
		}
		sub.sends.Done()
	}
	return err
}

// Subscribe creates a new subscription filtered by the given EventFilter.
// The returned cancel function removes the subscription and closes its
// channel; calling it more than once is safe.
func (h *MemoryHub) Subscribe(ctx context.Context, filter EventFilter) (<-chan StreamEvent, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	id := h.seq.Add(1)
	ch := make(chan StreamEvent, defaultChannelBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}, nil
	}
	h.subs[id] = &subscriber{ch: ch, filter: filter, done: make(chan struct{})}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		sub, ok := h.subs[id]
		if ok {
			delete(h.subs, id)
		}
		h.mu.Unlock()
		if ok {
			sub.release()
		}
	}

	return ch, cancel, nil
}

// Subscribers returns the number of live subscriptions.
func (h *MemoryHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped for slow subscribers.
func (h *MemoryHub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close ends every subscription. Later subscriptions receive an already
// closed channel.
func (h *MemoryHub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := make([]*subscriber, 0, len(h.subs))
	for id, sub := range h.subs {
		delete(h.subs, id)
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.release()
	}
}

// release ends a subscription that is no longer reachable from the hub.
func (s *subscriber) release() {
	s.stop()
	s.sends.Wait()
	close(s.ch)
}

func matchFilter(f EventFilter, e StreamEvent) bool {
	if len(f.Channels) > 0 && !slices.Contains(f.Channels, e.Channel) {
		return false
	}
	if len(f.EventTypes) > 0 && !slices.Contains(f.EventTypes, e.EventType) {
		return false
	}
	return true
}
