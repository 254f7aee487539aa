package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishNeverBlocks(t *testing.T) {
	r := NewReporter(2)

	// No consumer attached; far more events than the buffer holds.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 100; i++ {
			r.Publish(Event{Current: i, Total: 100})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without a consumer")
	}
}

func TestTerminalEventAlwaysLast(t *testing.T) {
	r := NewReporter(4)

	for i := 1; i <= 10; i++ {
		r.Publish(Event{Current: i, Total: 10, Status: StatusDone})
	}
	r.Finish("/out/run-20240101-120000", 10)

	var events []Event
	for ev := range r.Events() {
		events = append(events, ev)
	}

	require.NotEmpty(t, events)
	var terminals int
	for _, ev := range events {
		if ev.Done {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)

	last := events[len(events)-1]
	assert.True(t, last.Done)
	assert.Equal(t, "/out/run-20240101-120000", last.ArtifactDir)
	assert.Equal(t, 10, last.Current)
}

func TestFinishWithFullBufferAndNoConsumer(t *testing.T) {
	r := NewReporter(1)
	r.Publish(Event{Current: 1, Total: 1})

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Finish("/out/run", 1)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Finish blocked with a full buffer")
	}

	var last Event
	for ev := range r.Events() {
		last = ev
	}
	assert.True(t, last.Done)
}

func TestAbortClosesChannel(t *testing.T) {
	r := NewReporter(4)
	r.Publish(Event{Current: 1, Total: 3})
	r.Abort()

	// A consumer ranging over the channel terminates; no terminal event.
	done := make(chan struct{})
	var events []Event
	go func() {
		defer close(done)
		for ev := range r.Events() {
			events = append(events, ev)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not terminate after Abort")
	}
	for _, ev := range events {
		assert.False(t, ev.Done)
	}
}

func TestCurrentStrictlyIncreases(t *testing.T) {
	r := NewReporter(64)

	total := 5
	for i := 1; i <= total; i++ {
		r.Publish(Event{Current: i, Total: total, Status: StatusMatching})
	}
	r.Finish("/out/run", total)

	prev := 0
	for ev := range r.Events() {
		if ev.Done {
			continue
		}
		assert.Greater(t, ev.Current, prev)
		prev = ev.Current
	}
	assert.Equal(t, total, prev)
}
