package testutil

import (
	"context"
	"sync"

	"github.com/alexanderramin/scopesync/internal/mirror"
)

// RecordingObserver keeps every mirror event for assertions.
type RecordingObserver struct {
	mu     sync.Mutex
	Events []mirror.Event
}

func (o *RecordingObserver) Observe(_ context.Context, e mirror.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Events = append(o.Events, e)
}

// Named returns the events with the given name, in order.
func (o *RecordingObserver) Named(name string) []mirror.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []mirror.Event
	for _, e := range o.Events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
