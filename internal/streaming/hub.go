package streaming

import "context"

// StreamEvent is one message published on a broadcast channel. Step frames
// carry their position in the trace; other events leave it zero.
type StreamEvent struct {
	Channel    string `json:"channel"`
	EventType  string `json:"event_type"`
	StepNumber int    `json:"step_number,omitempty"`
	TotalSteps int    `json:"total_steps,omitempty"`
	Operation  string `json:"operation,omitempty"`
	Payload    any    `json:"payload,omitempty"`
}

// EventFilter specifies which events a subscriber wants to receive. Empty
// fields match everything.
type EventFilter struct {
	Channels   []string `json:"channels,omitempty"`
	EventTypes []string `json:"event_types,omitempty"`
}

// EventHub provides pub/sub for visualization frames.
type EventHub interface {
	Publish(ctx context.Context, event StreamEvent) error
	Subscribe(ctx context.Context, filter EventFilter) (<-chan StreamEvent, func(), error)
}

// WaitingPublisher is implemented by hubs that can hold a publish until
// every matching subscriber has taken the event.
type WaitingPublisher interface {
	PublishWait(ctx context.Context, event StreamEvent) error
}
