package session

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MemBackend is an in-memory Backend for tests.
type MemBackend struct {
	mu   sync.Mutex
	docs map[string]memDoc
	now  time.Time
}

type memDoc struct {
	data     []byte
	modified time.Time
}

// NewMemBackend returns an empty in-memory backend.
func NewMemBackend() *MemBackend {
	return &MemBackend{docs: make(map[string]memDoc), now: time.Unix(0, 0)}
}

func (b *MemBackend) Save(name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	// Monotonic clock so saves in the same wall-clock instant still order.
	b.now = b.now.Add(time.Second)
	cp := make([]byte, len(data))
	copy(cp, data)
	b.docs[name] = memDoc{data: cp, modified: b.now}
	return nil
}

func (b *MemBackend) Load(name string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, ok := b.docs[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(doc.data))
	copy(cp, doc.data)
	return cp, nil
}

func (b *MemBackend) List(prefix string) ([]Info, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var infos []Info
	for name, doc := range b.docs {
		if strings.HasPrefix(name, prefix) {
			infos = append(infos, Info{Name: name, Modified: doc.modified})
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Modified.After(infos[j].Modified)
	})
	return infos, nil
}

func (b *MemBackend) Remove(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.docs[name]; !ok {
		return ErrNotFound
	}
	delete(b.docs, name)
	return nil
}
