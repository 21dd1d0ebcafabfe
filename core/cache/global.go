package cache

import (
	"sync"

	"github.com/tristendillon/prefgen/core/logger"
)

var (
	globalCache *GenerationCache
	cacheOnce   sync.Once
	cacheMu     sync.Mutex
)

// GetCache returns the process-wide generation cache, created with defaults on first use.
func GetCache() *GenerationCache {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cacheOnce.Do(func() {
		if globalCache == nil {
			globalCache = NewGenerationCache(DefaultCacheConfig())
			logger.Debug("Initialized global generation cache")
		}
	})
	return globalCache
}

// SetCache replaces the process-wide cache (useful for testing and for config-sized caches).
func SetCache(c *GenerationCache) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cacheOnce.Do(func() {})
	globalCache = c
	logger.Debug("Set custom generation cache")
}

var (
	globalParseCache *ParseCache
	parseOnce        sync.Once
	parseMu          sync.Mutex
)

// GetParseCache returns the process-wide parse cache.
func GetParseCache() *ParseCache {
	parseMu.Lock()
	defer parseMu.Unlock()
	parseOnce.Do(func() {
		if globalParseCache == nil {
			globalParseCache = NewParseCache(DefaultCacheConfig())
		}
	})
	return globalParseCache
}

func SetParseCache(c *ParseCache) {
	parseMu.Lock()
	defer parseMu.Unlock()
	parseOnce.Do(func() {})
	globalParseCache = c
}
