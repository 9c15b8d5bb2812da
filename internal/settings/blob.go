package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/storage/blob"
)

// BlobStore keeps settings as a JSON document in blob storage.
type BlobStore struct {
	storage blob.Storage
	key     string
	mu      sync.Mutex
}

// NewBlobStore stores the document at key.
func NewBlobStore(storage blob.Storage, key string) *BlobStore {
	return &BlobStore{storage: storage, key: key}
}

func (b *BlobStore) Load(ctx context.Context) (Settings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(ctx)
}

func (b *BlobStore) Update(ctx context.Context, fn func(*Settings)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.load(ctx)
	if err != nil {
		return err
	}

	fn(&s)
	s.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(s)
	if err != nil {
		return core.WrapError(core.ErrSettingsFailed, err)
	}
	if err := b.storage.Put(ctx, b.key, data); err != nil {
		return core.WrapError(core.ErrSettingsFailed, err)
	}
	return nil
}

func (b *BlobStore) load(ctx context.Context) (Settings, error) {
	data, err := b.storage.Get(ctx, b.key)
	if errors.Is(err, blob.ErrNotFound) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, core.WrapError(core.ErrSettingsFailed, err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, core.WrapError(core.ErrSettingsFailed, err)
	}
	return s, nil
}
