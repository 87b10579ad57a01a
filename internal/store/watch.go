package store

import (
	"context"
	"sync"
)

// Subscription is a live view over a query. Updates yields the current result
// once on subscribe and again after every committed change, and is closed when
// the subscription ends.
type Subscription[T any] struct {
	updates chan T
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.Mutex
	err error
}

// Watch runs query now and after every signal on feed until ctx is canceled,
// the feed closes, Close is called, or the query fails.
func Watch[T any](ctx context.Context, feed *Feed, query func(context.Context) (T, error)) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription[T]{
		updates: make(chan T),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	// Subscribe before the first read so a write racing the initial query
	// still triggers a second emission.
	changed, unsubscribe := feed.Subscribe()

	go func() {
		defer close(s.done)
		defer close(s.updates)
		defer unsubscribe()

		for {
			v, err := query(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.setErr(err)
				}
				return
			}

			select {
			case s.updates <- v:
			case <-ctx.Done():
				return
			case <-feed.Done():
				return
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			case <-feed.Done():
				return
			}
		}
	}()

	return s
}

func (s *Subscription[T]) Updates() <-chan T {
	return s.updates
}

// Err returns the query error that ended the subscription, if any.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the subscription and waits for its goroutine to exit.
func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription[T]) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
