package weather

import (
	"sync"
	"time"

	"github.com/skybrief/skybrief/internal/metar"
	"github.com/skybrief/skybrief/internal/notam"
)

// METARResponse represents a single METAR observation from the
// aviationweather.gov data API
type METARResponse struct {
	ICAOId     string   `json:"icaoId"`
	ReportTime string   `json:"reportTime"`
	Temp       *float64 `json:"temp,omitempty"`
	Dewp       *float64 `json:"dewp,omitempty"`
	Wdir       any      `json:"wdir,omitempty"` // integer degrees or "VRB"
	Wspd       *int     `json:"wspd,omitempty"`
	Altim      *float64 `json:"altim,omitempty"`
	RawOb      string   `json:"rawOb"`
}

// TAFResponse represents a single TAF forecast from the
// aviationweather.gov data API
type TAFResponse struct {
	ICAOId    string `json:"icaoId"`
	IssueTime string `json:"issueTime"`
	RawTAF    string `json:"rawTAF"`
}

// NOTAMRecord represents a single NOTAM from the search API
type NOTAMRecord struct {
	Number    string `json:"number"`
	Location  string `json:"location"`
	IssueDate string `json:"issue_date"` // MM/DD/YYYY HHMM UTC
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"` // MM/DD/YYYY HHMM or "PERM"
	Text      string `json:"text"`     // ICAO message body
}

// DecodedReport pairs a raw report with its structured decode and summary
type DecodedReport struct {
	Summary   string       `json:"summary"`
	Report    metar.Report `json:"report"`
	CeilingFt *int         `json:"ceiling_ft,omitempty"`
}

// DecodedNOTAM is a NOTAM record decorated with everything the decoder
// could extract from its message text
type DecodedNOTAM struct {
	NOTAMRecord
	Status         notam.StatusInfo   `json:"status"`
	Schedule       *notam.Schedule    `json:"schedule,omitempty"`
	AltitudeLimits string             `json:"altitude_limits,omitempty"`
	Coordinates    *notam.Coordinates `json:"coordinates,omitempty"`
}

// WeatherData represents the complete briefing information for an airport
type WeatherData struct {
	METAR        *METARResponse `json:"metar,omitempty"`
	TAF          *TAFResponse   `json:"taf,omitempty"`
	NOTAMs       []DecodedNOTAM `json:"notams,omitempty"`
	DecodedMETAR *DecodedReport `json:"decoded_metar,omitempty"`
	DecodedTAF   *DecodedReport `json:"decoded_taf,omitempty"`
	LastUpdated  time.Time      `json:"last_updated"`
	FetchErrors  []string       `json:"fetch_errors,omitempty"`
}

// Config represents the weather service configuration
type Config struct {
	RefreshIntervalMinutes int    `toml:"refresh_interval_minutes"`
	APIBaseURL             string `toml:"api_base_url"`
	RequestTimeoutSeconds  int    `toml:"request_timeout_seconds"`
	MaxRetries             int    `toml:"max_retries"`
	FetchMETAR             bool   `toml:"fetch_metar"`
	FetchTAF               bool   `toml:"fetch_taf"`
	FetchNOTAMs            bool   `toml:"fetch_notams"`
	NOTAMsBaseURL          string `toml:"notams_api_base_url"`
	CacheExpiryMinutes     int    `toml:"cache_expiry_minutes"`
}

// DefaultConfig returns the default weather configuration
func DefaultConfig() Config {
	return Config{
		RefreshIntervalMinutes: 10,
		APIBaseURL:             "https://aviationweather.gov/api/data",
		RequestTimeoutSeconds:  10,
		MaxRetries:             2,
		FetchMETAR:             true,
		FetchTAF:               true,
		FetchNOTAMs:            true,
		NOTAMsBaseURL:          "https://external-api.faa.gov/notamapi/v1/notams",
		CacheExpiryMinutes:     15,
	}
}

// WeatherType represents the type of weather data
type WeatherType string

const (
	WeatherTypeMETAR  WeatherType = "metar"
	WeatherTypeTAF    WeatherType = "taf"
	WeatherTypeNOTAMs WeatherType = "notams"
)

// FetchResult represents the result of fetching one weather data type
type FetchResult struct {
	Type WeatherType
	Data any
	Err  error
}

// cacheEntry holds cached weather data with an expiration time
type cacheEntry struct {
	data      *WeatherData
	expiresAt time.Time
	mu        sync.RWMutex
}

func (e *cacheEntry) isExpired() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return time.Now().After(e.expiresAt)
}

func (e *cacheEntry) get() *WeatherData {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data
}

func (e *cacheEntry) set(data *WeatherData, expiry time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data = data
	e.expiresAt = time.Now().Add(expiry)
}
