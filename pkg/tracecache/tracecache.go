// Package tracecache stores serialized grafts keyed by their content digest.
//
// Grafts built under graft.ConsistentGUIDs are byte-identical for identical
// traces, so the blake3 digest of the canonical JSON is a stable
// content-addressable identity: the same logic traced twice stores once, and
// a remote engine can be handed a digest it has already seen.
package tracecache

import (
	"fmt"
	"sync"

	"github.com/funvibe/graft/pkg/graft"
)

// Store persists encoded grafts by digest. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the encoded graft for digest, with ok=false when absent.
	Get(digest string) (encoded []byte, ok bool, err error)

	// Put stores an encoded graft under digest. Storing the same digest
	// twice is a no-op: content-addressed entries never change.
	Put(digest string, encoded []byte) error

	Close() error
}

// Cache deduplicates traced grafts over a Store.
type Cache struct {
	store Store
}

// New returns a cache over the given store.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Add serializes g, stores it under its content digest, and returns the
// digest.
func (c *Cache) Add(g *graft.Graft) (string, error) {
	encoded, err := g.MarshalJSON()
	if err != nil {
		return "", err
	}
	digest, err := graft.Digest(g)
	if err != nil {
		return "", err
	}
	if _, ok, err := c.store.Get(digest); err != nil {
		return "", err
	} else if ok {
		return digest, nil
	}
	if err := c.store.Put(digest, encoded); err != nil {
		return "", err
	}
	return digest, nil
}

// Lookup decodes the graft stored under digest.
func (c *Cache) Lookup(digest string) (*graft.Graft, bool, error) {
	encoded, ok, err := c.store.Get(digest)
	if err != nil || !ok {
		return nil, false, err
	}
	g, err := graft.Decode(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("stored graft %s: %w", digest, err)
	}
	return g, true, nil
}

// TraceConsistent runs build under a deterministic identifier scope seeded
// by seed and stores the result, returning the graft and its digest.
// Identical builds under identical seeds produce identical digests.
func (c *Cache) TraceConsistent(seed uint64, build func() (*graft.Graft, error)) (*graft.Graft, string, error) {
	var g *graft.Graft
	var buildErr error
	graft.ConsistentGUIDs(seed, func() {
		g, buildErr = build()
	})
	if buildErr != nil {
		return nil, "", buildErr
	}
	digest, err := c.Add(g)
	if err != nil {
		return nil, "", err
	}
	return g, digest, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string][]byte{}}
}

func (s *MemoryStore) Get(digest string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	encoded, ok := s.entries[digest]
	return encoded, ok, nil
}

func (s *MemoryStore) Put(digest string, encoded []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[digest]; exists {
		return nil
	}
	cp := make([]byte, len(encoded))
	copy(cp, encoded)
	s.entries[digest] = cp
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
