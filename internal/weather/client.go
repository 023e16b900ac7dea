package weather

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skybrief/skybrief/pkg/logger"
	"github.com/skybrief/skybrief/pkg/metrics"
)

// Client handles HTTP requests to the weather and NOTAM APIs
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *logger.Logger
	metrics    *metrics.Collector
}

// NewClient creates a new weather API client
func NewClient(config Config, collector *metrics.Collector, log *logger.Logger) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.RequestTimeoutSeconds) * time.Second,
		},
		logger:  log.Named("weather-client"),
		metrics: collector,
	}
}

// FetchMETAR fetches the latest METAR observation for the airport
func (c *Client) FetchMETAR(airportCode string) (*METARResponse, error) {
	url := fmt.Sprintf("%s/metar?ids=%s&format=json", c.config.APIBaseURL, airportCode)

	var result []METARResponse
	if err := c.fetchWithRetry(url, WeatherTypeMETAR, airportCode, &result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no METAR data found for %s", airportCode)
	}

	// The first entry is the latest observation
	return &result[0], nil
}

// FetchTAF fetches the latest TAF forecast for the airport
func (c *Client) FetchTAF(airportCode string) (*TAFResponse, error) {
	url := fmt.Sprintf("%s/taf?ids=%s&format=json", c.config.APIBaseURL, airportCode)

	var result []TAFResponse
	if err := c.fetchWithRetry(url, WeatherTypeTAF, airportCode, &result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no TAF data found for %s", airportCode)
	}
	return &result[0], nil
}

// FetchNOTAMs fetches NOTAMs for the airport
func (c *Client) FetchNOTAMs(airportCode string) ([]NOTAMRecord, error) {
	url := fmt.Sprintf("%s?icaoLocation=%s", c.config.NOTAMsBaseURL, airportCode)

	var result []NOTAMRecord
	if err := c.fetchWithRetry(url, WeatherTypeNOTAMs, airportCode, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// fetchWithRetry performs an HTTP GET with retries and exponential backoff
func (c *Client) fetchWithRetry(url string, weatherType WeatherType, airportCode string, target any) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			c.logger.Info("Retrying weather data fetch",
				logger.String("type", string(weatherType)),
				logger.String("airport", airportCode),
				logger.Int("attempt", attempt),
				logger.Duration("backoff", backoff))
			time.Sleep(backoff)
		}

		start := time.Now()
		resp, err := c.httpClient.Get(url)
		if err != nil {
			lastErr = fmt.Errorf("error making request to weather API: %w", err)
			c.recordFailure(weatherType, "request")
			c.logger.Warn("Weather API request failed, may retry",
				logger.String("type", string(weatherType)),
				logger.String("airport", airportCode),
				logger.Error(err),
				logger.Int("attempt", attempt+1))
			continue
		}

		func() {
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
				c.recordFailure(weatherType, "status")
				c.logger.Warn("Weather API returned non-OK status, may retry",
					logger.String("type", string(weatherType)),
					logger.String("airport", airportCode),
					logger.Int("status_code", resp.StatusCode),
					logger.Int("attempt", attempt+1))
				return
			}

			if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
				lastErr = fmt.Errorf("error decoding weather data: %w", err)
				c.recordFailure(weatherType, "decode")
				c.logger.Warn("Failed to decode weather data, may retry",
					logger.String("type", string(weatherType)),
					logger.String("airport", airportCode),
					logger.Error(err),
					logger.Int("attempt", attempt+1))
				return
			}

			lastErr = nil
		}()

		if lastErr == nil {
			if c.metrics != nil {
				c.metrics.ObserveFetch(string(weatherType), time.Since(start))
			}
			if attempt > 0 {
				c.logger.Info("Successfully fetched weather data after retries",
					logger.String("type", string(weatherType)),
					logger.String("airport", airportCode),
					logger.Int("attempts_needed", attempt+1))
			}
			return nil
		}
	}

	c.logger.Error("All attempts to fetch weather data failed",
		logger.String("type", string(weatherType)),
		logger.String("airport", airportCode),
		logger.Error(lastErr),
		logger.Int("max_attempts", c.config.MaxRetries+1))
	return lastErr
}

func (c *Client) recordFailure(weatherType WeatherType, reason string) {
	if c.metrics != nil {
		c.metrics.RecordFetchError(string(weatherType), reason)
	}
}

// FetchAll fetches all enabled weather data types concurrently
func (c *Client) FetchAll(airportCode string) []FetchResult {
	results := make(chan FetchResult, 3)
	var fetchCount int

	if c.config.FetchMETAR {
		fetchCount++
		go func() {
			data, err := c.FetchMETAR(airportCode)
			results <- FetchResult{Type: WeatherTypeMETAR, Data: data, Err: err}
		}()
	}

	if c.config.FetchTAF {
		fetchCount++
		go func() {
			data, err := c.FetchTAF(airportCode)
			results <- FetchResult{Type: WeatherTypeTAF, Data: data, Err: err}
		}()
	}

	if c.config.FetchNOTAMs {
		fetchCount++
		go func() {
			data, err := c.FetchNOTAMs(airportCode)
			results <- FetchResult{Type: WeatherTypeNOTAMs, Data: data, Err: err}
		}()
	}

	fetchResults := make([]FetchResult, 0, fetchCount)
	for i := 0; i < fetchCount; i++ {
		fetchResults = append(fetchResults, <-results)
	}
	return fetchResults
}
