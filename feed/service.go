// Package feed describes the photo-sharing records kept in a canopy store
// and the coordinator that writes them.
//
// Two record families exist: user records at users/{uid} and post records
// at posts/{uid}/{key}. The [Service] is the only writer; it is handed its
// store, identity provider, and blob store explicitly at construction
// rather than reaching for globals.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jacentio/canopy/store"
)

var (
	// ErrUsernameRequired is returned when registering a user without a
	// display name.
	ErrUsernameRequired = errors.New("canopy: username required")

	// ErrInvalidPost is returned when a post is created without an image
	// URL or with a non-positive image height.
	ErrInvalidPost = errors.New("canopy: post needs an image url and a positive height")

	// ErrNoIdentityProvider is returned by SignIn when the service was
	// built without one.
	ErrNoIdentityProvider = errors.New("canopy: no identity provider configured")

	// ErrNoBlobStore is returned by SharePhoto when the service was built
	// without one.
	ErrNoBlobStore = errors.New("canopy: no blob store configured")
)

// IdentityProvider yields an opaque, stable uid on successful sign-in. The
// authentication protocol behind it is somebody else's problem.
type IdentityProvider interface {
	SignIn(ctx context.Context) (string, error)
}

// BlobStore accepts a payload at a caller-chosen path and returns a
// retrievable URL. Failures propagate to the caller; the service never
// retries.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte) (string, error)
}

// Service coordinates domain writes against a store.
type Service struct {
	store    *store.Store
	identity IdentityProvider
	blobs    BlobStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a Service. identity and blobs may be nil when the
// corresponding flows are unused; a nil logger falls back to slog.Default().
func NewService(st *store.Store, identity IdentityProvider, blobs BlobStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    st,
		identity: identity,
		blobs:    blobs,
		logger:   logger,
		now:      time.Now,
	}
}

// CreatePost writes a post under posts/{ownerUID} with a fresh
// auto-generated key and returns the key. All fields land in one atomic
// merge: no reader ever observes a partially-written post, and observers
// get exactly one notification.
func (s *Service) CreatePost(ctx context.Context, ownerUID, imageURL string, imageHeight float64) (string, error) {
	if imageURL == "" || imageHeight <= 0 {
		return "", ErrInvalidPost
	}
	owner, err := PostsPath(ownerUID)
	if err != nil {
		return "", fmt.Errorf("owner uid: %w", err)
	}
	key := s.store.NewKey()
	path, err := owner.Child(key)
	if err != nil {
		return "", err
	}
	post := Post{ImageURL: imageURL, ImageHeight: imageHeight, CreatedAt: s.now()}
	if err := s.store.UpdateChildren(ctx, path, post.Fields()); err != nil {
		return "", err
	}
	s.logger.Info("post created", "owner", ownerUID, "key", key)
	return key, nil
}

// SharePhoto uploads the image to the blob store, then creates the post
// record pointing at the returned URL. A failed upload aborts the whole
// flow: no post record is ever written for an image that didn't land.
func (s *Service) SharePhoto(ctx context.Context, ownerUID, name string, image []byte, imageHeight float64) (string, error) {
	if s.blobs == nil {
		return "", ErrNoBlobStore
	}
	url, err := s.blobs.Upload(ctx, "post_images/"+ownerUID+"/"+name, image)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return s.CreatePost(ctx, ownerUID, url, imageHeight)
}

// FetchUser reads users/{uid}. found is false when the record is absent or
// doesn't decode; callers treat both as "new user".
func (s *Service) FetchUser(ctx context.Context, uid string) (User, bool, error) {
	path, err := UserPath(uid)
	if err != nil {
		return User{}, false, err
	}
	snap, err := s.store.Read(ctx, path)
	if err != nil {
		return User{}, false, err
	}
	user, ok := UserFromSnapshot(snap)
	return user, ok, nil
}

// RegisterUser writes a new user record at users/{uid}.
func (s *Service) RegisterUser(ctx context.Context, uid, username string) (User, error) {
	if username == "" {
		return User{}, ErrUsernameRequired
	}
	path, err := UserPath(uid)
	if err != nil {
		return User{}, err
	}
	user := User{UID: uid, Username: username}
	if err := s.store.Write(ctx, path, user.Fields()); err != nil {
		return User{}, err
	}
	s.logger.Info("user registered", "uid", uid)
	return user, nil
}

// SignIn authenticates through the identity provider and bootstraps the
// user record: an existing record wins and username is ignored, an absent
// one is registered with username. The fetch-then-register pair is not
// atomic; two racing sign-ins for the same uid resolve last-write-wins,
// and callers must tolerate that.
func (s *Service) SignIn(ctx context.Context, username string) (User, error) {
	if s.identity == nil {
		return User{}, ErrNoIdentityProvider
	}
	uid, err := s.identity.SignIn(ctx)
	if err != nil {
		return User{}, fmt.Errorf("sign in: %w", err)
	}
	user, found, err := s.FetchUser(ctx, uid)
	if err != nil {
		return User{}, err
	}
	if found {
		return user, nil
	}
	return s.RegisterUser(ctx, uid, username)
}

// Posts reads a user's feed in key order, which for pushed keys is
// chronological. Records that fail to decode are logged and skipped.
func (s *Service) Posts(ctx context.Context, uid string) ([]Post, error) {
	path, err := PostsPath(uid)
	if err != nil {
		return nil, err
	}
	snap, err := s.store.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	children := snap.Children()
	posts := make([]Post, 0, len(children))
	for _, child := range children {
		post, ok := PostFromSnapshot(child)
		if !ok {
			s.logger.Warn("skipping undecodable post", "owner", uid, "key", child.Key())
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}
