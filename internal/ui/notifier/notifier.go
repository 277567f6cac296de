// Package notifier fans refresh signals out to open dashboard streams.
package notifier

import "sync"

// Reason says why a refresh was requested.
type Reason string

// Refresh reasons.
const (
	ReasonManual       Reason = "manual"
	ReasonStoreChanged Reason = "store-changed"
)

// Notifier delivers refresh signals to every subscriber. Each subscriber has
// a one-slot buffer: a subscriber that has not consumed its pending signal
// skips further ones, since a single re-run of the load cycle covers them all.
type Notifier struct {
	mu   sync.RWMutex
	subs map[chan Reason]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		subs: make(map[chan Reason]struct{}),
	}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away; it closes the channel.
func (n *Notifier) Subscribe() (<-chan Reason, func()) {
	ch := make(chan Reason, 1)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, ch)
			n.mu.Unlock()
			close(ch)
		})
	}
}

// Broadcast sends reason to all subscribers without blocking.
func (n *Notifier) Broadcast(reason Reason) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.subs {
		select {
		case ch <- reason:
		default:
		}
	}
}

// Subscribers returns the number of active subscribers.
func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
