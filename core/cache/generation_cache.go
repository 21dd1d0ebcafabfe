package cache

import (
	"crypto/md5"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tristendillon/prefgen/core/logger"
)

// GenerationRecord remembers what was last written to an output file.
type GenerationRecord struct {
	OutputPath  string    `json:"output_path"`
	SourcePath  string    `json:"source_path"`
	ContentHash string    `json:"content_hash"`
	GeneratedAt time.Time `json:"generated_at"`
}

// GenerationCache tracks generated outputs so unchanged files are not rewritten.
// Records are kept in a bounded LRU keyed by output path.
type GenerationCache struct {
	records *lru.Cache[string, GenerationRecord]
	config  *CacheConfig
	metrics *CacheMetrics
	mutex   sync.Mutex
}

func NewGenerationCache(config *CacheConfig) *GenerationCache {
	if config == nil {
		config = DefaultCacheConfig()
	}
	size := config.MaxEntries
	if size <= 0 {
		size = DefaultCacheConfig().MaxEntries
	}

	gc := &GenerationCache{
		config:  config,
		metrics: &CacheMetrics{},
	}
	records, err := lru.New[string, GenerationRecord](size)
	if err != nil {
		// lru only fails for a non-positive size, which is ruled out above.
		panic(fmt.Sprintf("cache: %v", err))
	}
	gc.records = records

	logger.Debug("Created new generation cache with config: MaxEntries=%d", size)
	return gc
}

// NeedsWrite reports whether content differs from what was last written to
// outputPath, or whether the file is missing or was modified on disk since.
func (gc *GenerationCache) NeedsWrite(outputPath string, content []byte) bool {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()

	hash := calculateHash(content)
	record, ok := gc.records.Get(outputPath)
	if !ok {
		gc.metrics.Misses++
		logger.Debug("Cache miss for %s - no generation record", outputPath)
		return true
	}
	if record.ContentHash != hash {
		gc.metrics.Misses++
		logger.Debug("Cache miss for %s - content changed", outputPath)
		return true
	}

	onDisk, err := os.ReadFile(outputPath)
	if err != nil || calculateHash(onDisk) != hash {
		gc.metrics.Misses++
		logger.Debug("Cache miss for %s - output missing or edited", outputPath)
		return true
	}

	gc.metrics.Hits++
	logger.Debug("Cache hit for %s", outputPath)
	return false
}

func (gc *GenerationCache) MarkWritten(outputPath, sourcePath string, content []byte) {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()

	evicted := gc.records.Add(outputPath, GenerationRecord{
		OutputPath:  outputPath,
		SourcePath:  sourcePath,
		ContentHash: calculateHash(content),
		GeneratedAt: time.Now(),
	})
	if evicted {
		gc.metrics.Evictions++
		logger.Debug("Cache full, evicted oldest generation record")
	}
	logger.Debug("Recorded generation of %s from %s", outputPath, sourcePath)
}

// InvalidateSource drops every record generated from sourcePath.
func (gc *GenerationCache) InvalidateSource(sourcePath string) int {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()

	removed := 0
	for _, key := range gc.records.Keys() {
		record, ok := gc.records.Peek(key)
		if ok && record.SourcePath == sourcePath {
			gc.records.Remove(key)
			removed++
		}
	}
	gc.metrics.Invalidations += int64(removed)
	if removed > 0 {
		logger.Debug("Invalidated %d generation records for %s", removed, sourcePath)
	}
	return removed
}

func (gc *GenerationCache) Get(outputPath string) (GenerationRecord, bool) {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()
	return gc.records.Peek(outputPath)
}

// Outputs lists every output path with a record, sorted.
func (gc *GenerationCache) Outputs() []string {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()
	keys := gc.records.Keys()
	sort.Strings(keys)
	return keys
}

func (gc *GenerationCache) Clear() {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()

	count := gc.records.Len()
	gc.records.Purge()
	gc.metrics.Invalidations += int64(count)
	logger.Debug("Cleared generation cache, invalidated %d records", count)
}

func (gc *GenerationCache) GetMetrics() *CacheMetrics {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()

	metrics := *gc.metrics
	metrics.TotalEntries = gc.records.Len()
	metrics.CalculateHitRate()
	return &metrics
}

func (gc *GenerationCache) LogStats() {
	metrics := gc.GetMetrics()
	logger.Debug("Cache stats: Hits=%d, Misses=%d, Hit Rate=%.1f%%, Total Entries=%d, Invalidations=%d, Evictions=%d",
		metrics.Hits, metrics.Misses, metrics.HitRate, metrics.TotalEntries, metrics.Invalidations, metrics.Evictions)
}

func calculateHash(content []byte) string {
	return fmt.Sprintf("%x", md5.Sum(content))
}
