package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skybrief/skybrief/pkg/logger"
)

// Storage persists briefing history across refreshes
type Storage interface {
	SaveReport(airport string, reportType string, raw string, summary string, fetchedAt time.Time) error
	SaveNOTAMs(airport string, notams []DecodedNOTAM, fetchedAt time.Time) error
}

// Broadcaster pushes fresh briefing data to connected clients
type Broadcaster interface {
	BroadcastWeatherUpdate(data *WeatherData)
}

// Service manages weather data fetching, decoding and caching
type Service struct {
	config      Config
	airportCode string
	client      *Client
	cache       *Cache
	storage     Storage
	broadcaster Broadcaster
	logger      *logger.Logger

	// Service lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.RWMutex

	// Initial data readiness
	initialDataReady chan struct{}
	initialDataOnce  sync.Once
}

// NewService creates a new weather service. Storage and broadcaster are
// optional; nil disables history persistence or push updates respectively.
func NewService(config Config, airportCode string, client *Client, storage Storage, broadcaster Broadcaster, log *logger.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		config:           config,
		airportCode:      airportCode,
		client:           client,
		cache:            NewCache(config, log),
		storage:          storage,
		broadcaster:      broadcaster,
		logger:           log.Named("weather-service"),
		ctx:              ctx,
		cancel:           cancel,
		initialDataReady: make(chan struct{}),
	}
}

// Start begins the weather service background operations
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info("Starting weather service",
		logger.String("airport", s.airportCode),
		logger.Int("refresh_interval_minutes", s.config.RefreshIntervalMinutes))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.performInitialFetch()
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.backgroundRefresh()
	}()

	s.started = true
	return nil
}

// Stop gracefully shuts down the weather service
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info("Stopping weather service")
	s.cancel()
	s.wg.Wait()
	s.started = false
	s.logger.Info("Weather service stopped")
	return nil
}

// GetWeatherData returns the current cached briefing data, waiting for the
// initial fetch to complete if the service just started
func (s *Service) GetWeatherData() *WeatherData {
	select {
	case <-s.initialDataReady:
	case <-time.After(30 * time.Second):
		s.logger.Warn("Timeout waiting for initial weather data")
		return &WeatherData{
			LastUpdated: time.Now(),
			FetchErrors: []string{"Weather data is still being fetched, please try again in a moment"},
		}
	}

	data := s.cache.Get()
	if data == nil {
		s.logger.Warn("No weather data available after initial fetch completed")
		return &WeatherData{
			LastUpdated: time.Now(),
			FetchErrors: []string{"Weather data temporarily unavailable"},
		}
	}
	return data
}

// RefreshNow triggers an immediate refresh of weather data
func (s *Service) RefreshNow() {
	s.logger.Info("Manual weather refresh triggered")
	go s.fetchAndUpdateCache()
}

// CacheStats returns cache statistics
func (s *Service) CacheStats() map[string]any {
	return s.cache.Stats()
}

// IsStarted returns whether the service is currently running
func (s *Service) IsStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// performInitialFetch performs the first fetch on service start
func (s *Service) performInitialFetch() {
	s.logger.Info("Performing initial weather data fetch",
		logger.String("airport", s.airportCode))

	s.fetchAndUpdateCache()

	s.initialDataOnce.Do(func() {
		close(s.initialDataReady)
		s.logger.Info("Initial weather data fetch completed")
	})
}

// backgroundRefresh runs the periodic weather data refresh
func (s *Service) backgroundRefresh() {
	refreshInterval := time.Duration(s.config.RefreshIntervalMinutes) * time.Minute
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	s.logger.Info("Background weather refresh started",
		logger.Duration("interval", refreshInterval))

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("Background weather refresh stopped")
			return
		case <-ticker.C:
			s.logger.Debug("Periodic weather refresh triggered")
			s.fetchAndUpdateCache()
		}
	}
}

// fetchAndUpdateCache fetches all weather data, runs the decoders, updates
// the cache, persists history and notifies connected clients
func (s *Service) fetchAndUpdateCache() {
	startTime := time.Now()

	s.logger.Debug("Fetching weather data",
		logger.String("airport", s.airportCode))

	results := s.client.FetchAll(s.airportCode)
	data := buildWeatherData(s.cache.Get(), results, time.Now().UTC())
	s.cache.Set(data)
	s.persistHistory(data)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastWeatherUpdate(data)
	}

	s.logger.Info("Weather data fetch completed",
		logger.String("airport", s.airportCode),
		logger.Duration("duration", time.Since(startTime)),
		logger.Int("total_requests", len(results)),
		logger.Int("fetch_errors", len(data.FetchErrors)))
}

// persistHistory writes the decoded snapshot to storage
func (s *Service) persistHistory(data *WeatherData) {
	if s.storage == nil {
		return
	}

	if data.METAR != nil && data.DecodedMETAR != nil {
		if err := s.storage.SaveReport(s.airportCode, string(WeatherTypeMETAR), data.METAR.RawOb, data.DecodedMETAR.Summary, data.LastUpdated); err != nil {
			s.logger.Error("Failed to persist METAR history", logger.Error(err))
		}
	}
	if data.TAF != nil && data.DecodedTAF != nil {
		if err := s.storage.SaveReport(s.airportCode, string(WeatherTypeTAF), data.TAF.RawTAF, data.DecodedTAF.Summary, data.LastUpdated); err != nil {
			s.logger.Error("Failed to persist TAF history", logger.Error(err))
		}
	}
	if len(data.NOTAMs) > 0 {
		if err := s.storage.SaveNOTAMs(s.airportCode, data.NOTAMs, data.LastUpdated); err != nil {
			s.logger.Error("Failed to persist NOTAM history", logger.Error(err))
		}
	}
}

// ValidateConfig validates the weather service configuration
func ValidateConfig(config Config) error {
	if config.RefreshIntervalMinutes <= 0 {
		return fmt.Errorf("refresh_interval_minutes must be greater than 0")
	}
	if config.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be greater than 0")
	}
	if config.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be 0 or greater")
	}
	if config.CacheExpiryMinutes <= 0 {
		return fmt.Errorf("cache_expiry_minutes must be greater than 0")
	}
	if config.APIBaseURL == "" {
		return fmt.Errorf("api_base_url cannot be empty")
	}
	if !config.FetchMETAR && !config.FetchTAF && !config.FetchNOTAMs {
		return fmt.Errorf("at least one weather type must be enabled (fetch_metar, fetch_taf, or fetch_notams)")
	}
	return nil
}
