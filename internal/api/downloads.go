package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type download struct {
	fileName string
	data     []byte
}

// downloadStore one-shot export downloads, expiring after ttl
type downloadStore struct {
	mu    sync.Mutex
	items *cache.Cache
}

func newDownloadStore(ttl time.Duration) *downloadStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &downloadStore{items: cache.New(ttl, ttl)}
}

func (s *downloadStore) put(fileName string, data []byte) (token string) {
	token = uuid.NewString()
	s.items.SetDefault(token, download{fileName: fileName, data: data})
	return token
}

// take returns the download and forgets it.
func (s *downloadStore) take(token string) (download, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items.Get(token)
	if !ok {
		return download{}, false
	}
	s.items.Delete(token)
	return v.(download), true
}
