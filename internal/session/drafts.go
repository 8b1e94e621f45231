package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "loan-wizard/internal/common/errors"
	"loan-wizard/internal/wizard"
)

var ErrDraftNotFound = errors.New("DRAFT_NOT_FOUND")

const draftKeyPrefix = "wizard:draft:"

// DraftStore persists wizard snapshots between requests and restarts.
type DraftStore interface {
	Save(ctx context.Context, sessionID string, snap wizard.Snapshot) error
	Load(ctx context.Context, sessionID string) (wizard.Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

type draft struct {
	Snapshot wizard.Snapshot `json:"snapshot"`
	SavedAt  time.Time       `json:"savedAt"`
}

// RedisDraftStore keeps one JSON document per session with a sliding TTL.
type RedisDraftStore struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

func NewRedisDraftStore(rdb redis.Cmdable, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func draftKey(sessionID string) string {
	return draftKeyPrefix + sessionID
}

func (s *RedisDraftStore) Save(ctx context.Context, sessionID string, snap wizard.Snapshot) error {
	data, err := json.Marshal(draft{Snapshot: snap, SavedAt: s.now().UTC()})
	if err != nil {
		return apperrors.NewDraftStoreFailedError(fmt.Errorf("encode draft: %w", err))
	}
	if err := s.rdb.Set(ctx, draftKey(sessionID), data, s.ttl).Err(); err != nil {
		return apperrors.NewDraftStoreFailedError(err)
	}
	return nil
}

func (s *RedisDraftStore) Load(ctx context.Context, sessionID string) (wizard.Snapshot, error) {
	data, err := s.rdb.Get(ctx, draftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return wizard.Snapshot{}, ErrDraftNotFound
	}
	if err != nil {
		return wizard.Snapshot{}, apperrors.NewDraftStoreFailedError(err)
	}

	var d draft
	if err := json.Unmarshal(data, &d); err != nil {
		return wizard.Snapshot{}, apperrors.NewDraftStoreFailedError(fmt.Errorf("decode draft: %w", err))
	}
	return d.Snapshot, nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return apperrors.NewDraftStoreFailedError(err)
	}
	return nil
}
