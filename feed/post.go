package feed

import (
	"time"

	"github.com/jacentio/canopy/store"
)

// Wire field names of a post record. Downstream clients match on these
// exact strings.
const (
	imageURLField    = "image_url"
	imageHeightField = "image_height"
	createdAtField   = "created_at"
)

// Post is one shared photo. Posts live at posts/{ownerUid}/{key}, never
// inside the owner's user record, so reading a user never drags their
// posts along.
type Post struct {
	// Key is the store-assigned child key; empty until the post is
	// created. Keys sort lexically in creation order.
	Key string

	ImageURL    string
	ImageHeight float64
	CreatedAt   time.Time
}

// Fields encodes the post for storage. created_at is numeric seconds since
// the Unix epoch for cross-system comparability.
func (p Post) Fields() map[string]any {
	return map[string]any{
		imageURLField:    p.ImageURL,
		imageHeightField: p.ImageHeight,
		createdAtField:   float64(p.CreatedAt.UnixNano()) / float64(time.Second),
	}
}

// PostFromSnapshot maps a snapshot taken at posts/{uid}/{key} to a Post.
// Missing image_url or a non-positive image_height is a decode failure; an
// absent snapshot decodes to false silently, since the caller already knows
// existence from the snapshot itself.
func PostFromSnapshot(snap store.Snapshot) (Post, bool) {
	fields, ok := snap.Value().(map[string]any)
	if !ok {
		return Post{}, false
	}
	url, ok := fields[imageURLField].(string)
	if !ok || url == "" {
		return Post{}, false
	}
	height, ok := asFloat(fields[imageHeightField])
	if !ok || height <= 0 {
		return Post{}, false
	}
	post := Post{
		Key:         snap.Key(),
		ImageURL:    url,
		ImageHeight: height,
	}
	if sec, ok := asFloat(fields[createdAtField]); ok {
		post.CreatedAt = timeFromSeconds(sec)
	}
	return post, true
}

// PostsPath returns posts/{uid}.
func PostsPath(uid string) (store.Path, error) {
	return postsRoot.Child(uid)
}

var postsRoot = store.MustParsePath("posts")

// asFloat widens the store's two numeric shapes.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func timeFromSeconds(sec float64) time.Time {
	whole := int64(sec)
	frac := sec - float64(whole)
	return time.Unix(whole, int64(frac*float64(time.Second)))
}
