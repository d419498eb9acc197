package store

import (
	"context"
	"sort"
	"sync"

	"github.com/jacentio/canopy/internal/pushid"
)

// Store is an in-memory hierarchical key-value tree with path-based
// addressing, snapshot reads, and live observation. All mutation goes
// through Write, UpdateChildren, Push, and Delete; nothing else may touch
// node children, since that would bypass observer fan-out.
type Store struct {
	config Config
	keys   *pushid.Generator

	mu   sync.RWMutex
	root *node
	rev  uint64

	registry *registry
}

// New creates an empty Store.
func New(config Config) *Store {
	config.validate()
	s := &Store{
		config: config,
		keys:   pushid.New(config.Now),
		root:   &node{},
	}
	s.registry = newRegistry(s, config.Logger)
	return s
}

// Read returns a snapshot of the subtree at path. A path nothing lives at
// yields a snapshot with Exists() == false, never an error.
func (s *Store) Read(ctx context.Context, path Path) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(path), nil
}

// Write creates or replaces the node at path, creating any missing ancestor
// containers. Writing nil is equivalent to Delete. Identical writes are not
// deduplicated: every successful Write notifies observers.
func (s *Store) Write(ctx context.Context, path Path, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	norm, err := normalizeValue(value)
	if err != nil {
		return err
	}
	if norm == nil {
		return s.Delete(ctx, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	segs := path.segments()
	// created-ness follows the read path: a node that is structurally
	// present but holds no data counts as absent.
	firstAbsent := s.root.firstAbsent(segs)
	s.rev++
	target, _ := s.root.ensure(segs)
	target.set(norm, s.rev)
	s.root.touch(segs, s.rev)

	ev := changeEvent{path: path, rev: s.rev}
	if firstAbsent >= 0 {
		ev.created = true
		ev.topNew = Path{segs: segs[:firstAbsent+1]}
	}
	s.registry.dispatch(ev)
	return nil
}

// UpdateChildren merges mapping into the direct children of path: each key
// becomes a child write, existing children not named in mapping are left
// untouched, and a nil mapping value removes that child. The merge is
// atomic with respect to observers: exactly one notification fires per
// matching subscription for the whole call, never one per key.
func (s *Store) UpdateChildren(ctx context.Context, path Path, mapping map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(mapping) == 0 {
		return ErrEmptyUpdate
	}
	norm := make(map[string]any, len(mapping))
	for k, v := range mapping {
		if err := validateSegment(k); err != nil {
			return err
		}
		nv, err := normalizeValue(v)
		if err != nil {
			return err
		}
		norm[k] = nv
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	segs := path.segments()
	if !s.updateChanges(segs, norm) {
		// Mapping is all nil values for absent children. Returning before
		// ensure keeps a no-op from planting empty containers that would
		// make a later write at this path look like it found data.
		return nil
	}
	// created-ness follows the read path: a node that is structurally
	// present but holds no data counts as absent.
	firstAbsent := s.root.firstAbsent(segs)
	s.rev++
	target, _ := s.root.ensure(segs)

	ev := changeEvent{path: path, update: true, rev: s.rev, prevRemoved: map[string]any{}}
	if firstAbsent >= 0 {
		ev.created = true
		ev.topNew = Path{segs: segs[:firstAbsent+1]}
	}

	for _, k := range sortedKeys(norm) {
		v := norm[k]
		child, had := target.children[k]
		if v == nil {
			if !had {
				continue
			}
			if prev := child.materialize(); prev != nil {
				ev.prevRemoved[k] = prev
				ev.removed = append(ev.removed, k)
			}
			delete(target.children, k)
			continue
		}
		// A child that is structurally present but empty reads as absent,
		// so giving it data is an add, not a change.
		wasPresent := had && child.materialize() != nil
		if !had {
			child = &node{}
			if target.children == nil {
				target.children = make(map[string]*node)
			}
			target.value = nil
			target.children[k] = child
		}
		if wasPresent {
			ev.changed = append(ev.changed, k)
		} else {
			ev.added = append(ev.added, k)
		}
		child.set(v, s.rev)
	}

	s.root.touch(segs, s.rev)
	s.registry.dispatch(ev)
	return nil
}

// NewKey returns a fresh auto-generated child key. Keys are unique and
// lexically ordered by generation time, so key order approximates insertion
// order.
func (s *Store) NewKey() string {
	return s.keys.Next()
}

// Push writes value under an auto-generated key beneath path and returns
// the key.
func (s *Store) Push(ctx context.Context, path Path, value any) (string, error) {
	key := s.keys.Next()
	child, err := path.Child(key)
	if err != nil {
		return "", err
	}
	if err := s.Write(ctx, child, value); err != nil {
		return "", err
	}
	return key, nil
}

// Delete removes the node at path. A parent left childless stays in place
// as an empty container; ancestors are never pruned. Deleting an absent
// path is a no-op and notifies nobody.
func (s *Store) Delete(ctx context.Context, path Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	segs := path.segments()
	if path.IsRoot() {
		if s.root.value == nil && len(s.root.children) == 0 {
			return nil
		}
		s.rev++
		prev := s.root.materialize()
		s.root = &node{rev: s.rev}
		s.registry.dispatch(changeEvent{path: path, deleted: true, prev: prev, rev: s.rev})
		return nil
	}

	parent := s.root.locate(segs[:len(segs)-1])
	if parent == nil {
		return nil
	}
	target, ok := parent.children[path.Key()]
	if !ok {
		return nil
	}
	s.rev++
	prev := target.materialize()
	delete(parent.children, path.Key())
	s.root.touch(segs[:len(segs)-1], s.rev)
	s.registry.dispatch(changeEvent{path: path, deleted: true, prev: prev, rev: s.rev})
	return nil
}

// Observe registers a standing subscription at path for the given event
// kind. The current state is delivered first (see EventKind for per-kind
// initial behavior), then one snapshot per matching future change, in
// commit order. Cancel the subscription to stop delivery.
func (s *Store) Observe(path Path, kind EventKind) *Subscription {
	// The write lock keeps registration atomic with respect to writers:
	// the initial snapshot and the change stream can neither overlap nor
	// leave a gap.
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.subscribe(path, kind)
}

// Revision returns the store's current logical modification counter.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// snapshotLocked builds a snapshot at path. Callers hold s.mu.
func (s *Store) snapshotLocked(path Path) Snapshot {
	n := s.root.locate(path.segments())
	if n == nil {
		return Snapshot{key: path.Key()}
	}
	return newSnapshot(path.Key(), n.materialize(), n.rev)
}

// updateChanges reports whether applying the normalized mapping at segs
// would change anything a reader can see. Callers hold s.mu.
func (s *Store) updateChanges(segs []string, norm map[string]any) bool {
	target := s.root.locate(segs)
	for k, v := range norm {
		if v != nil {
			return true
		}
		if target == nil {
			continue
		}
		if child, ok := target.children[k]; ok && child.materialize() != nil {
			return true
		}
	}
	return false
}

// sortedKeys fixes the apply order of an update mapping. Observers still
// see a single event for the whole mapping.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
