// Package progress streams per-subject pipeline progress to an optional
// consumer. Emission is fire-and-forget: the screening loop never blocks on
// a slow or absent listener.
package progress

// Status values reported per subject phase transition.
const (
	StatusMatching  = "matching"
	StatusCapturing = "capturing"
	StatusDone      = "done"
	StatusFailed    = "capture_failed"
)

// Event is one progress update. The terminal event has Done set and carries
// the run artifact directory; it is always the last event on the channel.
type Event struct {
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	Subject     string `json:"subject,omitempty"`
	Status      string `json:"status,omitempty"`
	Done        bool   `json:"done,omitempty"`
	ArtifactDir string `json:"artifact_dir,omitempty"`
}

// Reporter pushes events to at most one consumer per run. Events are dropped
// when the buffer is full or nothing is draining it.
type Reporter struct {
	ch chan Event
}

// NewReporter creates a reporter with the given buffer size. The buffer is
// at least one slot so the terminal event always has somewhere to land.
func NewReporter(buffer int) *Reporter {
	if buffer < 1 {
		buffer = 1
	}
	return &Reporter{ch: make(chan Event, buffer)}
}

// Events returns the receive side for the run's single consumer.
func (r *Reporter) Events() <-chan Event {
	return r.ch
}

// Publish emits an event without blocking. Undelivered events are lost,
// never queued against the pipeline.
func (r *Reporter) Publish(ev Event) {
	select {
	case r.ch <- ev:
	default:
	}
}

// Abort closes the channel without a terminal event, for runs that die
// before completion. The terminal event marks a completed run; a consumer
// seeing the channel close without one knows the run was aborted. Publish
// must not be called after Abort.
func (r *Reporter) Abort() {
	close(r.ch)
}

// Finish emits the terminal event and closes the channel. Unlike Publish,
// the terminal event is never dropped: stale buffered events are evicted
// until it fits, so the consumer sees exactly one Done event, always last.
// Finish must be called exactly once.
func (r *Reporter) Finish(artifactDir string, total int) {
	ev := Event{Current: total, Total: total, Done: true, ArtifactDir: artifactDir}
	for {
		select {
		case r.ch <- ev:
			close(r.ch)
			return
		default:
			// Buffer full; evict the oldest pending event.
			select {
			case <-r.ch:
			default:
			}
		}
	}
}
