package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/otcheck/pkg/adapters/fs"
)

// Filter decides whether a suite event is forwarded.
type Filter func(fs.Event) bool

// FailuresOnly forwards verifications that did not pass and every deletion.
func FailuresOnly(e fs.Event) bool {
	if e.Type != fs.EventVerify {
		return true
	}
	return e.Result == nil || !e.Result.Passed()
}

// SourceOption configures a verdict source.
type SourceOption func(*verdictSource)

// WithFilter drops events for which keep returns false.
func WithFilter(keep Filter) SourceOption {
	return func(s *verdictSource) {
		s.keep = keep
	}
}

// verdictSource turns the event stream of a watched suite into a
// lifecycle.Source.
type verdictSource struct {
	events <-chan fs.Event
	keep   Filter
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source emitting the fs.Event values of a
// watched suite. The source closes when events closes or the start context
// is cancelled.
func NewSource(events <-chan fs.Event, opts ...SourceOption) lifecycle.Source {
	s := &verdictSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *verdictSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *verdictSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, s.forward)
	return nil
}

func (s *verdictSource) forward(ctx context.Context) error {
	defer close(s.out)
	for {
		var e fs.Event
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case e, ok = <-s.events:
		}
		if !ok {
			return nil
		}
		if s.keep != nil && !s.keep(e) {
			continue
		}

		select {
		case s.out <- e:
		case <-ctx.Done():
			return nil
		}
	}
}
