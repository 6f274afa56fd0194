package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/citykit/core"
)

// ProfileStore persists a user's questionnaire answers as JSON under
// {prefix}:profile:{user}, so follow-up requests may omit them.
type ProfileStore struct {
	kv     core.Store
	prefix string
}

func NewProfileStore(kv core.Store, prefix string) *ProfileStore {
	return &ProfileStore{kv: kv, prefix: prefix}
}

func (s *ProfileStore) key(userID string) string {
	if s.prefix == "" {
		return "profile:" + userID
	}
	return s.prefix + ":profile:" + userID
}

// Save overwrites the stored answers.
func (s *ProfileStore) Save(ctx context.Context, userID string, answers *core.UserAnswers) error {
	if userID == "" || answers == nil {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: user id and answers are required")
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return wrapUnavailable("save profile", s.kv.Set(ctx, s.key(userID), data))
}

// Load returns the stored answers, or core.ErrStoreNotFound.
func (s *ProfileStore) Load(ctx context.Context, userID string) (*core.UserAnswers, error) {
	data, err := s.kv.Get(ctx, s.key(userID))
	if err != nil {
		return nil, wrapUnavailable("load profile", err)
	}
	var answers core.UserAnswers
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInternalError, "store: corrupt profile for "+userID, err)
	}
	return &answers, nil
}
