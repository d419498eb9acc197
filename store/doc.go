// Package store provides an in-memory realtime hierarchical data store with
// path-based addressing, snapshot reads, and live observation.
//
// Canopy models the tree a photo-sharing backend keeps its records in: every
// node is addressed by a slash-delimited path, holds either a scalar or a
// set of named children, and can be read as an immutable [Snapshot] or
// watched through a [Subscription].
//
// # Key Features
//
//   - Path-addressed writes with implicit ancestor creation
//   - Snapshot reads: immutable, point-in-time, absence is data not error
//   - Atomic multi-field merges via [Store.UpdateChildren]
//   - Auto-generated, lexically time-ordered child keys ([Store.Push])
//   - Live observation with per-subscription ordered delivery
//   - Last-write-wins across concurrent writers, serialized per store
//
// # Paths
//
// A [Path] is an ordered segment sequence; build one with [ParsePath] or
// [Path.Child]:
//
//	p, err := store.ParsePath("users/42")
//	p, err = p.Child("username")
//
// # Observation
//
// [Store.Observe] registers a subscription for an [EventKind] and delivers
// the current state first, then one snapshot per matching change:
//
//	sub := st.Observe(path, store.EventValue)
//	defer sub.Cancel()
//	for snap := range sub.Snapshots() {
//	    ...
//	}
//
// A subscription fires when its path is ancestor-or-equal of a changed path
// or inside a replaced subtree; unrelated sibling paths never fire. An
// UpdateChildren call produces exactly one notification per subscription no
// matter how many fields it merged.
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrInvalidPath] - malformed path or reserved character in a segment
//   - [ErrInvalidValue] - a Go type with no tree representation
//   - [ErrEmptyUpdate] - UpdateChildren with an empty mapping
//
// A read at an absent path is not an error; the snapshot simply reports
// Exists() == false.
package store
