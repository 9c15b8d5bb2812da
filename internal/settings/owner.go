package settings

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"sync"

	"github.com/newthinker/copyhub/internal/storage/blob"
)

// Stores hands out the settings store of one owner, typically a trade token.
type Stores interface {
	For(owner string) Store
}

// OwnerKey derives the document name for owner. Tokens never appear in storage keys.
func OwnerKey(owner string) string {
	sum := sha256.Sum256([]byte(owner))
	return hex.EncodeToString(sum[:16])
}

// MemoryStores keeps one MemoryStore per owner.
type MemoryStores struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

func NewMemoryStores() *MemoryStores {
	return &MemoryStores{stores: make(map[string]*MemoryStore)}
}

func (m *MemoryStores) For(owner string) Store {
	key := OwnerKey(owner)

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[key]
	if !ok {
		s = NewMemoryStore()
		m.stores[key] = s
	}
	return s
}

// BlobStores keeps each owner's document at <prefix>/<OwnerKey(owner)>.json.
type BlobStores struct {
	storage blob.Storage
	prefix  string

	mu     sync.Mutex
	stores map[string]*BlobStore
}

func NewBlobStores(storage blob.Storage, prefix string) *BlobStores {
	return &BlobStores{storage: storage, prefix: prefix, stores: make(map[string]*BlobStore)}
}

// For returns the same BlobStore for repeated calls so updates to one document serialize.
func (b *BlobStores) For(owner string) Store {
	key := path.Join(b.prefix, OwnerKey(owner)+".json")

	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.stores[key]
	if !ok {
		s = NewBlobStore(b.storage, key)
		b.stores[key] = s
	}
	return s
}
