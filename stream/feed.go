// Package stream turns canopy change notifications into typed domain
// events for consumers that follow them.
package stream

import (
	"log/slog"
	"sync"

	"github.com/jacentio/canopy/feed"
	"github.com/jacentio/canopy/store"
)

// PostFeed follows one user's posts: every post already present and every
// post added later arrives on Posts(), decoded, in key (chronological)
// order.
type PostFeed struct {
	sub    *store.Subscription
	posts  chan feed.Post
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// FollowPosts subscribes to child additions under posts/{uid}. A nil
// logger falls back to slog.Default(). Close the feed to stop it.
func FollowPosts(st *store.Store, uid string, logger *slog.Logger) (*PostFeed, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path, err := feed.PostsPath(uid)
	if err != nil {
		return nil, err
	}
	f := &PostFeed{
		sub:    st.Observe(path, store.EventChildAdded),
		posts:  make(chan feed.Post),
		done:   make(chan struct{}),
		logger: logger,
	}
	go f.run(uid)
	return f, nil
}

// Posts returns the delivery channel. It closes after Close, or once the
// underlying subscription is cancelled.
func (f *PostFeed) Posts() <-chan feed.Post {
	return f.posts
}

// Close cancels the underlying subscription. No post is delivered for a
// write issued after Close returns, and the decode goroutine stops even if
// nobody is reading Posts anymore.
func (f *PostFeed) Close() {
	f.sub.Cancel()
	f.once.Do(func() { close(f.done) })
}

// run decodes snapshots as they arrive. A record that fails to decode is
// logged and skipped; one bad write must not wedge the feed.
func (f *PostFeed) run(uid string) {
	defer close(f.posts)
	for snap := range f.sub.Snapshots() {
		post, ok := feed.PostFromSnapshot(snap)
		if !ok {
			f.logger.Warn("skipping undecodable post",
				"owner", uid,
				"key", snap.Key(),
			)
			continue
		}
		select {
		case f.posts <- post:
		case <-f.done:
			return
		}
	}
}
