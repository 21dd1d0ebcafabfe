package cache

import (
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tristendillon/prefgen/core/logger"
	"github.com/tristendillon/prefgen/core/models"
)

// ParseFunc turns the content of one source file into models.
type ParseFunc func(path string, src []byte) ([]*models.Model, error)

type parseEntry struct {
	contentHash string
	parsed      []*models.Model
}

// ParseCache keeps the models parsed from each source until its content
// changes, so watch mode only re-parses the files that were edited.
type ParseCache struct {
	entries *lru.Cache[string, parseEntry]
	metrics *CacheMetrics
	mutex   sync.Mutex
}

func NewParseCache(config *CacheConfig) *ParseCache {
	size := DefaultCacheConfig().MaxEntries
	if config != nil && config.MaxEntries > 0 {
		size = config.MaxEntries
	}
	entries, err := lru.New[string, parseEntry](size)
	if err != nil {
		panic(fmt.Sprintf("cache: %v", err))
	}
	return &ParseCache{entries: entries, metrics: &CacheMetrics{}}
}

// Load returns the models of path, calling parse only when the file content
// differs from the last successful parse. Failed parses are not cached.
func (pc *ParseCache) Load(path string, parse ParseFunc) ([]*models.Model, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		pc.Invalidate(path)
		return nil, err
	}
	hash := calculateHash(src)

	pc.mutex.Lock()
	entry, ok := pc.entries.Get(path)
	if ok && entry.contentHash == hash {
		pc.metrics.Hits++
		pc.mutex.Unlock()
		logger.Debug("ParseCache: Hit for %s", path)
		return entry.parsed, nil
	}
	pc.metrics.Misses++
	pc.mutex.Unlock()
	logger.Debug("ParseCache: Miss for %s", path)

	ms, err := parse(path, src)
	if err != nil {
		pc.Invalidate(path)
		return nil, err
	}

	pc.mutex.Lock()
	if pc.entries.Add(path, parseEntry{contentHash: hash, parsed: ms}) {
		pc.metrics.Evictions++
	}
	pc.mutex.Unlock()
	return ms, nil
}

func (pc *ParseCache) Invalidate(path string) {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()
	if pc.entries.Remove(path) {
		pc.metrics.Invalidations++
		logger.Debug("ParseCache: Invalidated parsed data for %s", path)
	}
}

func (pc *ParseCache) GetMetrics() *CacheMetrics {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	metrics := *pc.metrics
	metrics.TotalEntries = pc.entries.Len()
	metrics.CalculateHitRate()
	return &metrics
}
