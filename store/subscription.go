package store

import (
	"sync"

	"github.com/google/uuid"
)

// slowConsumerBacklog is the queue depth at which a subscription is logged
// as falling behind its delivery channel.
const slowConsumerBacklog = 1024

// Subscription is a standing observation on a path. Snapshots arrive on
// Snapshots() in commit order; there is no ordering guarantee across
// different subscriptions. Writers never block on a slow subscriber: each
// subscription buffers behind its channel in an unbounded queue.
type Subscription struct {
	id   uuid.UUID
	path Path
	kind EventKind

	reg *registry
	out chan Snapshot

	mu      sync.Mutex
	queue   []Snapshot
	pending chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newSubscription(r *registry, path Path, kind EventKind, buffer int) *Subscription {
	s := &Subscription{
		id:      uuid.New(),
		path:    path,
		kind:    kind,
		reg:     r,
		out:     make(chan Snapshot, buffer),
		pending: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go s.drain()
	return s
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id.String()
}

// Path returns the observed path.
func (s *Subscription) Path() Path {
	return s.path
}

// Kind returns the observed event kind.
func (s *Subscription) Kind() EventKind {
	return s.kind
}

// Snapshots returns the delivery channel. It is closed after Cancel.
func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.out
}

// Cancel removes the subscription. No snapshot is delivered for any write
// issued after Cancel returns; one delivery already racing the cancel may
// still land before the channel closes.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.reg.remove(s.id)
		close(s.done)
	})
}

// enqueue appends a snapshot for delivery. Called with the registry lock
// held, after the subscription's membership has been checked, so a
// cancelled subscription is never enqueued to again.
func (s *Subscription) enqueue(snap Snapshot) {
	s.mu.Lock()
	s.queue = append(s.queue, snap)
	depth := len(s.queue)
	s.mu.Unlock()

	if depth == slowConsumerBacklog {
		s.reg.logger.Warn("subscription consumer falling behind",
			"id", s.id.String(),
			"path", s.path.String(),
			"backlog", depth,
		)
	}

	select {
	case s.pending <- struct{}{}:
	default:
	}
}

// drain moves queued snapshots to the delivery channel, one goroutine per
// subscription, preserving enqueue order. It owns closing the channel.
func (s *Subscription) drain() {
	for {
		select {
		case <-s.done:
			close(s.out)
			return
		case <-s.pending:
		}
		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			snap := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case s.out <- snap:
			case <-s.done:
				close(s.out)
				return
			}
		}
	}
}
