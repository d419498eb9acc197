package store

import "sort"

// Snapshot is an immutable copy of a node's value and key taken at read
// time. It holds no reference back to the tree: once produced it never
// changes, no matter what happens to the store afterwards.
type Snapshot struct {
	key   string
	value any
	rev   uint64
}

// newSnapshot copies v; callers pass tree-owned values.
func newSnapshot(key string, v any, rev uint64) Snapshot {
	return Snapshot{key: key, value: copyValue(v), rev: rev}
}

// Exists reports whether the snapshot holds data. A read at a path nothing
// was ever written to, or whose data was deleted, yields Exists() == false;
// that is the normal "not there yet" case, not a fault.
func (s Snapshot) Exists() bool {
	return s.value != nil
}

// Key returns the last path segment of the location the snapshot was taken
// at ("" for the root).
func (s Snapshot) Key() string {
	return s.key
}

// Value returns the snapshot's value: string, bool, int64, float64, or
// map[string]any, nil when absent. The returned value is a copy owned by
// the caller; mutating it cannot affect the snapshot or the tree.
func (s Snapshot) Value() any {
	return copyValue(s.value)
}

// Rev returns the store revision the snapshot's node was last modified at.
func (s Snapshot) Rev() uint64 {
	return s.rev
}

// Child returns the snapshot of a direct child field. Absent children (and
// children of scalar snapshots) return a non-existing snapshot keyed seg.
func (s Snapshot) Child(seg string) Snapshot {
	m, ok := s.value.(map[string]any)
	if !ok {
		return Snapshot{key: seg, rev: s.rev}
	}
	return Snapshot{key: seg, value: m[seg], rev: s.rev}
}

// Children returns the direct children sorted by key. Pushed keys sort
// lexically in creation order, so this is the chronological order of a
// post feed.
func (s Snapshot) Children() []Snapshot {
	m, ok := s.value.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Snapshot, len(keys))
	for i, k := range keys {
		out[i] = Snapshot{key: k, value: m[k], rev: s.rev}
	}
	return out
}

// String returns a non-existing snapshot's key as "<key>:absent", otherwise
// "<key>". Diagnostic only.
func (s Snapshot) String() string {
	if !s.Exists() {
		return s.key + ":absent"
	}
	return s.key
}
