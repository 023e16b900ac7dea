package briefing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/skybrief/skybrief/internal/weather"
	"github.com/skybrief/skybrief/pkg/logger"
)

const systemPrompt = `You are an aviation briefing assistant. Summarize the provided METAR, TAF and NOTAM information into a short plain-language pilot briefing. Lead with anything affecting safety of flight (low ceilings, strong or gusting winds, runway closures, active restricted airspace). Use knots, feet and UTC times. Do not invent information that is not in the input.`

// Config represents the briefing service configuration
type Config struct {
	Enabled            bool    `toml:"enabled"`
	APIKey             string  `toml:"api_key"`
	Model              string  `toml:"model"`
	Temperature        float64 `toml:"temperature"`
	MaxTokens          int     `toml:"max_tokens"`
	CacheExpiryMinutes int     `toml:"cache_expiry_minutes"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
}

// DefaultConfig returns the default briefing configuration
func DefaultConfig() Config {
	return Config{
		Enabled:            false,
		Model:              "gemini-2.0-flash",
		Temperature:        0.3,
		MaxTokens:          1024,
		CacheExpiryMinutes: 10,
		TimeoutSeconds:     30,
	}
}

// WeatherProvider supplies the current briefing data snapshot
type WeatherProvider interface {
	GetWeatherData() *weather.WeatherData
}

// Briefing is a generated plain-language summary
type Briefing struct {
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
	DataAsOf    time.Time `json:"data_as_of"`
}

// Service generates plain-language briefings from decoded weather data
type Service struct {
	config   Config
	provider ChatProvider
	weather  WeatherProvider
	logger   *logger.Logger

	mu     sync.Mutex
	cached *Briefing
}

// NewService creates a new briefing service
func NewService(config Config, provider ChatProvider, weatherProvider WeatherProvider, log *logger.Logger) *Service {
	return &Service{
		config:   config,
		provider: provider,
		weather:  weatherProvider,
		logger:   log.Named("briefing"),
	}
}

// Enabled reports whether briefing generation is configured
func (s *Service) Enabled() bool {
	return s.config.Enabled && s.provider != nil
}

// Generate returns a plain-language briefing for the current weather data.
// Briefings are cached until they expire or fresher data arrives.
func (s *Service) Generate(ctx context.Context) (*Briefing, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("briefing generation is not enabled")
	}

	data := s.weather.GetWeatherData()

	s.mu.Lock()
	if s.cached != nil && !s.cacheStale(s.cached, data) {
		cached := s.cached
		s.mu.Unlock()
		s.logger.Debug("Returning cached briefing",
			logger.Time("generated_at", cached.GeneratedAt))
		return cached, nil
	}
	s.mu.Unlock()

	prompt := buildPrompt(data)

	timeout := time.Duration(s.config.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	text, err := s.provider.ChatCompletion(ctx, []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, ChatConfig{
		Model:       s.config.Model,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate briefing: %w", err)
	}

	briefing := &Briefing{
		Text:        text,
		GeneratedAt: time.Now().UTC(),
		DataAsOf:    data.LastUpdated,
	}

	s.mu.Lock()
	s.cached = briefing
	s.mu.Unlock()

	s.logger.Info("Generated briefing",
		logger.Duration("duration", time.Since(start)),
		logger.Int("length", len(text)))
	return briefing, nil
}

// cacheStale reports whether the cached briefing should be regenerated
func (s *Service) cacheStale(cached *Briefing, data *weather.WeatherData) bool {
	if data != nil && data.LastUpdated.After(cached.DataAsOf) {
		return true
	}
	expiry := time.Duration(s.config.CacheExpiryMinutes) * time.Minute
	return time.Since(cached.GeneratedAt) > expiry
}

// buildPrompt composes the briefing input from the decoded weather snapshot
func buildPrompt(data *weather.WeatherData) string {
	var b strings.Builder

	if data.METAR != nil {
		fmt.Fprintf(&b, "METAR: %s\n", data.METAR.RawOb)
		if data.DecodedMETAR != nil {
			fmt.Fprintf(&b, "Decoded: %s\n", data.DecodedMETAR.Summary)
		}
		b.WriteString("\n")
	}

	if data.TAF != nil {
		fmt.Fprintf(&b, "TAF: %s\n\n", data.TAF.RawTAF)
	}

	if len(data.NOTAMs) > 0 {
		b.WriteString("NOTAMs:\n")
		for _, n := range data.NOTAMs {
			fmt.Fprintf(&b, "- %s [%s]", n.Number, n.Status.Label)
			if n.AltitudeLimits != "" {
				fmt.Fprintf(&b, " (%s)", n.AltitudeLimits)
			}
			fmt.Fprintf(&b, ": %s\n", n.Text)
		}
		b.WriteString("\n")
	}

	if len(data.FetchErrors) > 0 {
		fmt.Fprintf(&b, "Note: some data could not be fetched: %s\n",
			strings.Join(data.FetchErrors, "; "))
	}

	if b.Len() == 0 {
		return "No weather data is currently available."
	}
	return b.String()
}
