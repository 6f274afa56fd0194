package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/citykit/core"
)

// Feedback namespaces.
const (
	NamespaceLiked    = "liked"
	NamespaceDisliked = "disliked"
)

var markerTrue = []byte("true")

// FeedbackStore keeps each user's swipes as two hashes,
// {prefix}:feedback:{user}:liked and {prefix}:feedback:{user}:disliked,
// field = city id, value = "true".
//
// Writes are merge-only: recording a swipe never touches other cities, and
// recording the same swipe twice is a no-op. With exclusive set, a swipe
// also removes the city from the opposite namespace.
type FeedbackStore struct {
	kv        core.KeyValueStore
	prefix    string
	exclusive bool
}

// FeedbackStoreOption configures a FeedbackStore.
type FeedbackStoreOption func(*FeedbackStore)

// WithExclusiveSwipes makes a swipe evict the city from the other namespace.
func WithExclusiveSwipes(exclusive bool) FeedbackStoreOption {
	return func(s *FeedbackStore) {
		s.exclusive = exclusive
	}
}

func NewFeedbackStore(kv core.KeyValueStore, prefix string, opts ...FeedbackStoreOption) *FeedbackStore {
	s := &FeedbackStore{kv: kv, prefix: prefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the hash key of a user's namespace.
func (s *FeedbackStore) Key(userID, namespace string) string {
	if s.prefix == "" {
		return "feedback:" + userID + ":" + namespace
	}
	return s.prefix + ":feedback:" + userID + ":" + namespace
}

// Get returns the sorted liked and disliked ids. A user without history
// gets empty sets.
func (s *FeedbackStore) Get(ctx context.Context, userID string) (*core.Feedback, error) {
	liked, err := s.ids(ctx, s.Key(userID, NamespaceLiked))
	if err != nil {
		return nil, err
	}
	disliked, err := s.ids(ctx, s.Key(userID, NamespaceDisliked))
	if err != nil {
		return nil, err
	}
	return &core.Feedback{Liked: liked, Disliked: disliked}, nil
}

func (s *FeedbackStore) ids(ctx context.Context, key string) ([]string, error) {
	h, err := s.kv.HGetAll(ctx, key)
	if err != nil {
		return nil, wrapUnavailable("read feedback", err)
	}
	out := make([]string, 0, len(h))
	for id := range h {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// RecordSwipe merges cityID into the liked or disliked namespace.
func (s *FeedbackStore) RecordSwipe(ctx context.Context, userID, cityID string, liked bool) error {
	if userID == "" || cityID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: user id and city id are required")
	}
	ns, other := NamespaceLiked, NamespaceDisliked
	if !liked {
		ns, other = other, ns
	}

	setKey := s.Key(userID, ns)
	if !s.exclusive {
		return wrapUnavailable("record swipe", s.kv.HSet(ctx, setKey, cityID, markerTrue))
	}

	delKey := s.Key(userID, other)
	if mv, ok := s.kv.(hashMover); ok {
		return wrapUnavailable("record swipe", mv.HMove(ctx, setKey, delKey, cityID, markerTrue))
	}
	if err := s.kv.HSet(ctx, setKey, cityID, markerTrue); err != nil {
		return wrapUnavailable("record swipe", err)
	}
	return wrapUnavailable("record swipe", s.kv.HDel(ctx, delKey, cityID))
}

// Reset drops all feedback of a user.
func (s *FeedbackStore) Reset(ctx context.Context, userID string) error {
	if err := s.kv.Delete(ctx, s.Key(userID, NamespaceLiked)); err != nil {
		return wrapUnavailable("reset feedback", err)
	}
	return wrapUnavailable("reset feedback", s.kv.Delete(ctx, s.Key(userID, NamespaceDisliked)))
}

// wrapUnavailable keeps store domain errors as they are and turns anything
// else into a store UNAVAILABLE error.
func wrapUnavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if de := core.GetDomainError(err); de != nil && de.Module == core.ModuleStore {
		return fmt.Errorf("%s: %w", op, err)
	}
	return core.NewStoreUnavailableError(op, err)
}

var _ core.FeedbackReader = (*FeedbackStore)(nil)
