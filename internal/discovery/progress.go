package discovery

import (
	"sync"
	"time"
)

// ProgressEvent is one step update emitted by a running discovery session and
// polled by the HTTP layer.
type ProgressEvent struct {
	Percentage int       `json:"percentage"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProgressTracker is a bounded per-session event queue with a cooperative
// stop flag.  Publishing never blocks: when the queue is full the oldest
// event is dropped, since a poller that fell behind only cares about recent
// state.
type ProgressTracker struct {
	mu      sync.Mutex
	events  chan ProgressEvent
	stopped bool
	done    bool
}

// NewProgressTracker builds a tracker whose queue holds up to buffer events.
func NewProgressTracker(buffer int) *ProgressTracker {
	if buffer <= 0 {
		buffer = 100
	}
	return &ProgressTracker{events: make(chan ProgressEvent, buffer)}
}

// Publish enqueues a progress event, discarding the oldest when full.
func (p *ProgressTracker) Publish(percentage int, message string) {
	ev := ProgressEvent{Percentage: percentage, Message: message, Timestamp: time.Now()}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	for {
		select {
		case p.events <- ev:
			return
		default:
			select {
			case <-p.events:
			default:
			}
		}
	}
}

// Drain returns all currently queued events without blocking.
func (p *ProgressTracker) Drain() []ProgressEvent {
	var out []ProgressEvent
	for {
		select {
		case ev := <-p.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Stop raises the cooperative stop flag.  The running session observes it
// between external calls and unwinds with a stopped outcome.
func (p *ProgressTracker) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
}

// Stopped reports whether Stop was called.
func (p *ProgressTracker) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// Finish marks the session complete; later publishes are ignored.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
}

// Done reports whether Finish was called.
func (p *ProgressTracker) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

//Personal.AI order the ending
