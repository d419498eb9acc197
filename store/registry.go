package store

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// EventKind selects which tree changes a subscription is notified about.
type EventKind int

const (
	// EventValue fires whenever anything at or below the observed path
	// changes; the snapshot covers the observed path. The current value is
	// delivered once at registration, even when absent.
	EventValue EventKind = iota

	// EventChildAdded fires when the observed path gains a direct child;
	// the snapshot covers the new child. At registration, every existing
	// child is delivered once, in key order.
	EventChildAdded

	// EventChildChanged fires when an existing direct child of the
	// observed path changes (including changes deeper inside it); the
	// snapshot covers that child. No initial delivery.
	EventChildChanged

	// EventChildRemoved fires when a direct child of the observed path is
	// deleted; the snapshot carries the child's value from just before the
	// delete. No initial delivery.
	EventChildRemoved
)

// String returns the wire-style name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventValue:
		return "value"
	case EventChildAdded:
		return "child_added"
	case EventChildChanged:
		return "child_changed"
	case EventChildRemoved:
		return "child_removed"
	default:
		return "unknown"
	}
}

// changeEvent describes one committed mutation. Every Store mutation
// produces exactly one changeEvent, regardless of how many fields it
// touched.
type changeEvent struct {
	// path is the deepest path named by the mutation (the write target,
	// the update root, or the deleted node).
	path Path

	// created is set when the node at path did not exist before; topNew is
	// then the topmost node the mutation brought into existence.
	created bool
	topNew  Path

	// deleted is set for Delete; prev holds the removed subtree's value.
	deleted bool
	prev    any

	// update is set for UpdateChildren; added/changed/removed name the
	// direct children the mapping created, modified, and deleted (sorted),
	// and prevRemoved holds removed children's prior values.
	update      bool
	added       []string
	changed     []string
	removed     []string
	prevRemoved map[string]any

	rev uint64
}

// touchesChild reports whether an update event named key as one of the
// children it created, modified, or deleted.
func (ev changeEvent) touchesChild(key string) bool {
	for _, group := range [][]string{ev.added, ev.changed, ev.removed} {
		for _, k := range group {
			if k == key {
				return true
			}
		}
	}
	return false
}

// registry tracks active subscriptions and fans committed changes out to
// them. All of its methods run under the store's write lock, which makes
// enqueue order identical to commit order for every subscription.
type registry struct {
	store  *Store
	logger *slog.Logger

	mu   sync.Mutex
	subs map[uuid.UUID]*Subscription
}

func newRegistry(s *Store, logger *slog.Logger) *registry {
	return &registry{
		store:  s,
		logger: logger,
		subs:   make(map[uuid.UUID]*Subscription),
	}
}

// subscribe registers a new subscription and queues its initial deliveries.
// Caller holds the store write lock.
func (r *registry) subscribe(path Path, kind EventKind) *Subscription {
	sub := newSubscription(r, path, kind, r.store.config.SubscriptionBuffer)

	r.mu.Lock()
	r.subs[sub.id] = sub
	r.mu.Unlock()

	switch kind {
	case EventValue:
		sub.enqueue(r.store.snapshotLocked(path))
	case EventChildAdded:
		for _, child := range r.store.snapshotLocked(path).Children() {
			sub.enqueue(child)
		}
	}

	r.logger.Debug("subscription registered",
		"id", sub.id.String(),
		"path", path.String(),
		"kind", kind.String(),
	)
	return sub
}

// remove drops a subscription; no enqueue happens for it afterwards.
func (r *registry) remove(id uuid.UUID) {
	r.mu.Lock()
	delete(r.subs, id)
	r.mu.Unlock()
	r.logger.Debug("subscription cancelled", "id", id.String())
}

// dispatch delivers one committed change to every matching subscription.
// Caller holds the store write lock.
func (r *registry) dispatch(ev changeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if snap, ok := r.match(sub, ev); ok {
			sub.enqueue(snap)
		}
	}
}

// match decides whether ev concerns sub and, if so, builds the snapshot to
// deliver. Each event yields at most one delivery per subscription.
func (r *registry) match(sub *Subscription, ev changeEvent) (Snapshot, bool) {
	switch sub.kind {
	case EventValue:
		// Ancestor-or-equal paths see the change. Unrelated siblings never
		// fire.
		if sub.path.Contains(ev.path) {
			return r.store.snapshotLocked(sub.path), true
		}
		if ev.path.IsAncestorOf(sub.path) {
			// Descendants fire too, since replacing or deleting a node
			// rewrites everything below it. An update only rewrites the
			// children it names, so subscriptions under untouched siblings
			// stay quiet.
			if ev.update && !ev.touchesChild(sub.path.segments()[ev.path.Depth()]) {
				return Snapshot{}, false
			}
			return r.store.snapshotLocked(sub.path), true
		}

	case EventChildAdded:
		if ev.created && sub.path.IsAncestorOf(ev.path) && ev.topNew.Parent().Contains(sub.path) {
			key := ev.path.segments()[sub.path.Depth()]
			return r.childSnapshot(sub.path, key), true
		}
		if ev.update && sub.path.Equal(ev.path) && len(ev.added) > 0 {
			// One atomic update is one change: coalesce to the first new
			// child in key order.
			return r.childSnapshot(sub.path, ev.added[0]), true
		}

	case EventChildChanged:
		if sub.path.IsAncestorOf(ev.path) {
			key := ev.path.segments()[sub.path.Depth()]
			if ev.created && ev.topNew.Depth() <= sub.path.Depth()+1 {
				// The child itself is brand new; that is an add, not a change.
				return Snapshot{}, false
			}
			if ev.deleted && ev.path.Depth() == sub.path.Depth()+1 {
				// The child itself vanished; that is a remove, not a change.
				return Snapshot{}, false
			}
			return r.childSnapshot(sub.path, key), true
		}
		if ev.update && sub.path.Equal(ev.path) && len(ev.changed) > 0 {
			return r.childSnapshot(sub.path, ev.changed[0]), true
		}

	case EventChildRemoved:
		if ev.deleted && !ev.path.IsRoot() && sub.path.Equal(ev.path.Parent()) {
			return newSnapshot(ev.path.Key(), ev.prev, ev.rev), true
		}
		if ev.update && sub.path.Equal(ev.path) && len(ev.removed) > 0 {
			key := ev.removed[0]
			return newSnapshot(key, ev.prevRemoved[key], ev.rev), true
		}
	}
	return Snapshot{}, false
}

func (r *registry) childSnapshot(parent Path, key string) Snapshot {
	child, err := parent.Child(key)
	if err != nil {
		return Snapshot{key: key}
	}
	return r.store.snapshotLocked(child)
}
