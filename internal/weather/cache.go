package weather

import (
	"time"

	"github.com/skybrief/skybrief/pkg/logger"
)

// Cache manages briefing data caching with thread-safe operations
type Cache struct {
	entry  *cacheEntry
	config Config
	logger *logger.Logger
}

// NewCache creates a new weather cache
func NewCache(config Config, log *logger.Logger) *Cache {
	return &Cache{
		entry:  &cacheEntry{},
		config: config,
		logger: log.Named("weather-cache"),
	}
}

// Get returns the current cached weather data, or nil if nothing has been
// fetched yet
func (c *Cache) Get() *WeatherData {
	data := c.entry.get()
	if data == nil {
		return nil
	}
	if data.METAR == nil && data.TAF == nil && len(data.NOTAMs) == 0 && len(data.FetchErrors) == 0 {
		return nil
	}
	return data
}

// Set updates the cache with new weather data
func (c *Cache) Set(data *WeatherData) {
	expiry := time.Duration(c.config.CacheExpiryMinutes) * time.Minute
	c.entry.set(data, expiry)

	c.logger.Debug("Weather data cached",
		logger.Time("last_updated", data.LastUpdated),
		logger.Time("expires_at", time.Now().Add(expiry)),
		logger.Int("error_count", len(data.FetchErrors)))
}

// IsExpired checks if the cached data has expired
func (c *Cache) IsExpired() bool {
	return c.entry.isExpired()
}

// Stats returns cache statistics for the health endpoint
func (c *Cache) Stats() map[string]any {
	data := c.entry.get()
	stats := map[string]any{
		"has_data":   data != nil,
		"is_expired": c.entry.isExpired(),
	}
	if data != nil {
		stats["last_updated"] = data.LastUpdated
		stats["error_count"] = len(data.FetchErrors)
		stats["has_metar"] = data.METAR != nil
		stats["has_taf"] = data.TAF != nil
		stats["notam_count"] = len(data.NOTAMs)
	}
	return stats
}
