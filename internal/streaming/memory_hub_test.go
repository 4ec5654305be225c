package streaming

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{})
	require.NoError(t, err)
	defer cancel()

	event := StreamEvent{
		Channel:    "array-visualization",
		EventType:  "step",
		StepNumber: 1,
		TotalSteps: 3,
		Operation:  "CREATE_ELEMENT",
		Payload:    map[string]any{"description": "creating"},
	}

	err = hub.Publish(ctx, event)
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, event, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestFilterByChannel(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{Channels: []string{"tree-visualization"}})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, hub.Publish(ctx, StreamEvent{Channel: "tree-visualization", EventType: "step"}))
	require.NoError(t, hub.Publish(ctx, StreamEvent{Channel: "stack-visualization", EventType: "step"}))

	select {
	case got := <-ch:
		assert.Equal(t, "tree-visualization", got.Channel)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFilterByEventType(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{
		EventTypes: []string{"step", "cleared"},
	})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, hub.Publish(ctx, StreamEvent{Channel: "pathfinding", EventType: "step"}))
	require.NoError(t, hub.Publish(ctx, StreamEvent{Channel: "pathfinding", EventType: "route_request"}))
	require.NoError(t, hub.Publish(ctx, StreamEvent{Channel: "pathfinding", EventType: "cleared"}))

	var received []string
	for i := 0; i < 2; i++ {
		select {
		case got := <-ch:
			received = append(received, got.EventType)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	assert.Equal(t, []string{"step", "cleared"}, received)

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMultipleSubscribers(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch1, cancel1, err := hub.Subscribe(ctx, EventFilter{})
	require.NoError(t, err)
	defer cancel1()

	ch2, cancel2, err := hub.Subscribe(ctx, EventFilter{Channels: []string{"queue-visualization"}})
	require.NoError(t, err)
	defer cancel2()
	assert.Equal(t, 2, hub.Subscribers())

	err = hub.Publish(ctx, StreamEvent{Channel: "queue-visualization", EventType: "step"})
	require.NoError(t, err)

	for _, ch := range []<-chan StreamEvent{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, "queue-visualization", got.Channel)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestCancelSubscriptionClosesChannel(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{})
	require.NoError(t, err)

	cancel()
	cancel()

	require.NoError(t, hub.Publish(ctx, StreamEvent{Channel: "array-visualization", EventType: "step"}))

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers())
}

func TestCloseEndsAllSubscriptions(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{})
	require.NoError(t, err)
	defer cancel()

	hub.Close()
	_, open := <-ch
	assert.False(t, open)

	late, lateCancel, err := hub.Subscribe(ctx, EventFilter{})
	require.NoError(t, err)
	defer lateCancel()
	_, open = <-late
	assert.False(t, open)
}

func TestBackpressure(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{})
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < defaultChannelBuffer+10; i++ {
		err = hub.Publish(ctx, StreamEvent{Channel: "traversal", EventType: "step", StepNumber: i + 1})
		require.NoError(t, err)
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
		default:
			goto done
		}
	}
done:
	assert.Equal(t, defaultChannelBuffer, drained)
	assert.Equal(t, uint64(10), hub.Dropped())
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()
	const goroutines = 20
	const eventsPerGoroutine = 50

	var wg sync.WaitGroup

	cancels := make([]func(), goroutines)
	for i := 0; i < goroutines; i++ {
		_, cancel, err := hub.Subscribe(ctx, EventFilter{})
		require.NoError(t, err)
		cancels[i] = cancel
	}
	defer func() {
		for _, c := range cancels {
			c()
		}
	}()

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				_ = hub.Publish(ctx, StreamEvent{Channel: "algorithm-updates", EventType: "algorithm_step"})
			}
		}()
	}

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, cancel, err := hub.Subscribe(ctx, EventFilter{})
			if err != nil {
				return
			}
			for range 5 {
				select {
				case <-ch:
				case <-time.After(10 * time.Millisecond):
				}
			}
			cancel()
		}()
	}

	wg.Wait()
}

func TestPublishCancelledContext(t *testing.T) {
	hub := NewMemoryHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := hub.Publish(ctx, StreamEvent{Channel: "pathfinding", EventType: "step"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubscribeCancelledContext(t *testing.T) {
	hub := NewMemoryHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := hub.Subscribe(ctx, EventFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublishWaitDeliversToSlowReader(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, EventFilter{Channels: []string{"traversal"}})
	require.NoError(t, err)
	defer cancel()

	const total = 200
	done := make(chan error, 1)
	go func() {
		for i := 0; i < total; i++ {
			if err := hub.PublishWait(ctx, StreamEvent{Channel: "traversal", EventType: "step", StepNumber: i + 1}); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for i := 0; i < total; i++ {
		select {
		case e := <-ch:
			assert.Equal(t, i+1, e.StepNumber)
		case <-time.After(2 * time.Second):
			t.Fatalf("got %d of %d events", i, total)
		}
		if i%50 == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
	require.NoError(t, <-done)
	assert.Zero(t, hub.Dropped())
}

func TestPublishWaitHonoursContext(t *testing.T) {
	hub := NewMemoryHub()

	_, cancel, err := hub.Subscribe(context.Background(), EventFilter{})
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < defaultChannelBuffer; i++ {
		require.NoError(t, hub.PublishWait(context.Background(), StreamEvent{Channel: "traversal"}))
	}

	ctx, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stop()
	err = hub.PublishWait(ctx, StreamEvent{Channel: "traversal"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, hub.Dropped())
}

func TestPublishWaitReleasedByCancel(t *testing.T) {
	hub := NewMemoryHub()

	_, cancel, err := hub.Subscribe(context.Background(), EventFilter{})
	require.NoError(t, err)
	for i := 0; i < defaultChannelBuffer; i++ {
		require.NoError(t, hub.PublishWait(context.Background(), StreamEvent{Channel: "traversal"}))
	}

	done := make(chan error, 1)
	go func() {
		done <- hub.PublishWait(context.Background(), StreamEvent{Channel: "traversal"})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("blocked publish was not released by cancel")
	}
	assert.Zero(t, hub.Subscribers())
}
