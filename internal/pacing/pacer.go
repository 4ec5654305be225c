package pacing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rendis/dsviz/internal/logging"
	"github.com/rendis/dsviz/internal/streaming"
)

// Frame is one message of an animation. The pacer fills in StepNumber and
// TotalSteps before the policy sees it.
type Frame struct {
	Operation  string `json:"operation"`
	StepNumber int    `json:"step_number"`
	TotalSteps int    `json:"total_steps"`
	Terminal   bool   `json:"terminal,omitempty"`
	Payload    any    `json:"payload,omitempty"`
}

// Observer is told about publishes and superseded animations. The metrics
// package implements it.
type Observer interface {
	FramePublished(channel string)
	AnimationCancelled(channel string)
}

type nopObserver struct{}

func (nopObserver) FramePublished(string)     {}
func (nopObserver) AnimationCancelled(string) {}

// Deps holds the collaborators of a Pacer.
type Deps struct {
	Hub      streaming.EventHub
	Pool     *WorkerPool
	Policies map[string]DelayPolicy
	Default  DelayPolicy
	Observer Observer
	Logger   *slog.Logger
}

type task struct {
	id     uint64
	cancel context.CancelFunc
}

// Pacer plays frame sequences onto hub channels with a delay between
// frames. At most one animation publishes per channel at a time: starting
// a new one cancels the running one, and the newcomer holds off until the
// channel's token is released.
type Pacer struct {
	hub      streaming.EventHub
	pool     *WorkerPool
	policies map[string]DelayPolicy
	fallback DelayPolicy
	observer Observer
	logger   *slog.Logger

	base context.Context
	stop context.CancelFunc

	mu      sync.Mutex
	running map[string]*task
	tokens  map[string]chan struct{}
	seq     uint64
}

// NewPacer creates a Pacer. A nil pool gets a pool of 8, nil policies get
// ChannelDefaults and a nil default gets OperationTable.
func NewPacer(deps Deps) *Pacer {
	pool := deps.Pool
	if pool == nil {
		pool = NewWorkerPool(8)
	}
	policies := deps.Policies
	if policies == nil {
		policies = ChannelDefaults()
	}
	fallback := deps.Default
	if fallback == nil {
		fallback = OperationTable()
	}
	observer := deps.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	base, stop := context.WithCancel(context.Background())
	return &Pacer{
		hub:      deps.Hub,
		pool:     pool,
		policies: policies,
		fallback: fallback,
		observer: observer,
		logger:   logging.Default(deps.Logger),
		base:     base,
		stop:     stop,
		running:  make(map[string]*task),
		tokens:   make(map[string]chan struct{}),
	}
}

// SetPolicy overrides the delay policy of one channel.
func (p *Pacer) SetPolicy(channel string, policy DelayPolicy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.policies[channel] = policy
}

func (p *Pacer) policy(channel string) DelayPolicy {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pol, ok := p.policies[channel]; ok {
		return pol
	}
	return p.fallback
}

// Play schedules frames for publication on channel as eventType events and
// returns once the animation is queued. ctx bounds only the wait for a free
// worker; the animation itself outlives the caller's request.
func (p *Pacer) Play(ctx context.Context, channel, eventType string, frames []Frame) error {
	if len(frames) == 0 {
		return nil
	}

	p.mu.Lock()
	prev := p.running[channel]
	if prev != nil {
		prev.cancel()
		p.observer.AnimationCancelled(channel)
	}
	p.seq++
	taskCtx, cancel := context.WithCancel(p.base)
	t := &task{id: p.seq, cancel: cancel}
	p.running[channel] = t
	tok, ok := p.tokens[channel]
	if !ok {
		tok = make(chan struct{}, 1)
		p.tokens[channel] = tok
	}
	p.mu.Unlock()

	logCtx := logging.WithChannel(taskCtx, channel)
	policy := p.policy(channel)

	// logCtx ends on supersede or Pacer.Shutdown; the pool context only on
	// pool shutdown, which the pacer triggers after its own.
	err := p.pool.Submit(ctx, func(context.Context) error {
		defer p.finish(channel, t)
		select {
		case tok <- struct{}{}:
		case <-logCtx.Done():
			return logCtx.Err()
		}
		defer func() { <-tok }()
		return p.animate(logCtx, channel, eventType, frames, policy)
	})
	if err != nil {
		p.finish(channel, t)
		return err
	}
	return nil
}

func (p *Pacer) animate(ctx context.Context, channel, eventType string, frames []Frame, policy DelayPolicy) error {
	total := len(frames)
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			p.logger.DebugContext(ctx, "animation superseded", "published", i, "total", total)
			return err
		}

		f.StepNumber = i + 1
		f.TotalSteps = total
		event := streaming.StreamEvent{
			Channel:    channel,
			EventType:  eventType,
			StepNumber: f.StepNumber,
			TotalSteps: total,
			Operation:  f.Operation,
			Payload:    f.Payload,
		}
		if err := p.publish(ctx, event); err != nil {
			return err
		}
		p.observer.FramePublished(channel)

		if i == total-1 {
			break
		}
		if d := policy.Delay(f); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				p.logger.DebugContext(ctx, "animation superseded", "published", i+1, "total", total)
				return ctx.Err()
			}
		}
	}
	return nil
}

// publish waits for slow subscribers when the hub supports it. The
// animation context bounds the wait.
func (p *Pacer) publish(ctx context.Context, event streaming.StreamEvent) error {
	if w, ok := p.hub.(streaming.WaitingPublisher); ok {
		return w.PublishWait(ctx, event)
	}
	return p.hub.Publish(ctx, event)
}

func (p *Pacer) finish(channel string, t *task) {
	p.mu.Lock()
	if p.running[channel] == t {
		delete(p.running, channel)
	}
	p.mu.Unlock()
	t.cancel()
}

// Cancel stops the animation running on channel, if any.
func (p *Pacer) Cancel(channel string) bool {
	p.mu.Lock()
	t := p.running[channel]
	p.mu.Unlock()
	if t == nil {
		return false
	}
	t.cancel()
	p.observer.AnimationCancelled(channel)
	return true
}

// Running reports whether an animation is queued or playing on channel.
func (p *Pacer) Running(channel string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.running[channel]
	return ok
}

// Wait blocks until every scheduled animation has finished.
func (p *Pacer) Wait() {
	p.pool.Wait()
}

// Shutdown cancels all animations and waits for them to stop.
func (p *Pacer) Shutdown() {
	p.stop()
	p.pool.Shutdown()
}

// PoolMetrics exposes the worker pool counters.
func (p *Pacer) PoolMetrics() PoolMetrics {
	return p.pool.Metrics()
}
