// Package notify holds a single transient toast message that clears itself
// after a fixed duration. A new message replaces the current one and
// restarts the timer.
package notify

import (
	"sync"
	"time"
)

const DefaultDuration = 2500 * time.Millisecond

// Toast is the notifier state after a change. Visible is false once the
// message has expired.
type Toast struct {
	Message string `json:"message"`
	Visible bool   `json:"visible"`
}

type Notifier struct {
	mu       sync.Mutex
	duration time.Duration
	current  Toast
	timer    *time.Timer
	gen      uint64
	subs     map[int]chan Toast
	nextSub  int
	closed   bool
}

func New(duration time.Duration) *Notifier {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Notifier{duration: duration, subs: make(map[int]chan Toast)}
}

// Show displays msg, replacing any visible toast.
func (n *Notifier) Show(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.current = Toast{Message: msg, Visible: true}
	n.publishLocked()
	n.timer = time.AfterFunc(n.duration, func() { n.expire(gen) })
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	// a later Show owns the timer
	if n.closed || gen != n.gen {
		return
	}
	n.current = Toast{}
	n.timer = nil
	n.publishLocked()
}

// Current returns the visible message, if any.
func (n *Notifier) Current() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current.Message, n.current.Visible
}

// Subscribe returns a channel that always holds the most recent change and
// a func that ends the subscription. Slow readers skip intermediate states.
func (n *Notifier) Subscribe() (<-chan Toast, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan Toast, 1)
	if n.closed {
		close(ch)
		return ch, func() {}
	}
	id := n.nextSub
	n.nextSub++
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if c, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(c)
			}
		})
	}
}

func (n *Notifier) publishLocked() {
	for _, ch := range n.subs {
		select {
		case <-ch:
		default:
		}
		ch <- n.current
	}
}

// Close stops the timer and closes every subscription.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	if n.timer != nil {
		n.timer.Stop()
	}
	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}
