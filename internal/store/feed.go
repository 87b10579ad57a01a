package store

import "sync"

// Feed fans out "table changed" signals. Each subscriber channel holds at most
// one pending signal, so bursts of writes coalesce into a single wake-up.
type Feed struct {
	mu     sync.Mutex
	subs   map[chan struct{}]struct{}
	closed bool
	done   chan struct{}
}

func NewFeed() *Feed {
	return &Feed{
		subs: make(map[chan struct{}]struct{}),
		done: make(chan struct{}),
	}
}

// Subscribe registers a listener. The returned func removes it and is safe to
// call more than once.
func (f *Feed) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	if !f.closed {
		f.subs[ch] = struct{}{}
	}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
		})
	}
}

// Publish is safe on a nil Feed; transaction-scoped stores carry none.
func (f *Feed) Publish() {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.subs = make(map[chan struct{}]struct{})
	close(f.done)
}

// Done is closed once the feed is closed.
func (f *Feed) Done() <-chan struct{} {
	return f.done
}

func (f *Feed) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
