package realtime

import "context"

// FetchFunc re-runs the composed query and returns the full result set.
// Every change notification triggers one fetch; snapshots always replace
// the previous result wholesale, never patch it.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Notifier signals that matching data may have changed. The channel
// closes when the underlying listener ends; Err reports why.
type Notifier interface {
	Changes(ctx context.Context) (<-chan struct{}, error)
	Err() error
}

type Snapshot[T any] struct {
	Docs []T
	Err  error
}

// Subscription delivers result snapshots with latest-wins semantics: a
// consumer that falls behind only ever observes the most recent
// snapshot, intermediate ones are dropped rather than queued.
type Subscription[T any] struct {
	out    chan Snapshot[T]
	cancel context.CancelFunc
}

// Subscribe opens a live subscription. The first snapshot is fetched
// immediately; afterwards each change notification triggers a re-fetch.
// Cancelling ctx (or calling Close) tears the subscription down and the
// updates channel is closed. A fetch error is surfaced as a snapshot
// with Err set; the consumer keeps whatever it already holds.
func Subscribe[T any](ctx context.Context, n Notifier, fetch FetchFunc[T]) (*Subscription[T], error) {
	ctx, cancel := context.WithCancel(ctx)

	changes, err := n.Changes(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription[T]{
		out:    make(chan Snapshot[T], 1),
		cancel: cancel,
	}

	go func() {
		defer close(sub.out)
		defer cancel()

		sub.refetch(ctx, fetch)

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					if err := n.Err(); err != nil {
						sub.push(Snapshot[T]{Err: err})
					}
					return
				}
				sub.refetch(ctx, fetch)
			}
		}
	}()

	return sub, nil
}

func (s *Subscription[T]) Updates() <-chan Snapshot[T] {
	return s.out
}

func (s *Subscription[T]) Close() {
	s.cancel()
}

func (s *Subscription[T]) refetch(ctx context.Context, fetch FetchFunc[T]) {
	docs, err := fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.push(Snapshot[T]{Err: err})
		return
	}
	s.push(Snapshot[T]{Docs: docs})
}

// push replaces any undelivered snapshot instead of blocking.
func (s *Subscription[T]) push(snap Snapshot[T]) {
	for {
		select {
		case s.out <- snap:
			return
		default:
			select {
			case <-s.out:
			default:
			}
		}
	}
}
