package config

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/skybrief/skybrief/internal/briefing"
	"github.com/skybrief/skybrief/internal/weather"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server   ServerConfig    `toml:"server"`   // HTTP server settings
	Logging  LoggingConfig   `toml:"logging"`  // Application logging settings
	Storage  StorageConfig   `toml:"storage"`  // Data persistence settings
	Station  StationConfig   `toml:"station"`  // Physical location settings
	Weather  weather.Config  `toml:"wx"`       // Weather data fetching and caching settings
	Briefing briefing.Config `toml:"briefing"` // Plain-language briefing generation settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // Primary HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
	AdditionalPorts    []int    `toml:"additional_ports"`      // Additional HTTP ports to listen on (useful for multiple interfaces)
	StaticFilesDir     string   `toml:"static_files_dir"`      // Directory to serve static files from (e.g., "www")
	RateLimitPerSecond float64  `toml:"rate_limit_per_second"` // Per-client API request rate limit (0 = disabled)
	RateLimitBurst     int      `toml:"rate_limit_burst"`      // Per-client burst allowance for the rate limiter
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: debug, info, warn, or error
	Format string `toml:"format"` // Log output format: console or json
}

// StorageConfig contains data persistence configuration
type StorageConfig struct {
	DBPath          string `toml:"db_path"`            // Path to the SQLite database file
	MaxReportsInAPI int    `toml:"max_reports_in_api"` // Maximum history rows returned by the API
}

// StationConfig contains physical location configuration for the briefed airport
type StationConfig struct {
	Latitude       float64 // Latitude of the station in decimal degrees (derived from airports.csv)
	Longitude      float64 // Longitude of the station in decimal degrees (derived from airports.csv)
	ElevationFeet  int     // Elevation of the station above sea level in feet (derived from airports.csv)
	AirportCode    string  `toml:"airport_code"`     // ICAO code of the airport (e.g., "CYYZ")
	AirportsDBPath string  `toml:"airports_db_path"` // Path to airport database CSV file (OurAirports format)
	RunwaysDBPath  string  `toml:"runways_db_path"`  // Path to runway database CSV file (OurAirports format)
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Load station details from airports.csv
	if err := config.loadStationFromCSV(); err != nil {
		return nil, fmt.Errorf("failed to load station details from CSV: %w", err)
	}

	return &config, nil
}

// loadStationFromCSV parses the airports.csv file to find the station coordinates
func (c *Config) loadStationFromCSV() error {
	if c.Station.AirportsDBPath == "" {
		return fmt.Errorf("airports_db_path is required")
	}
	if c.Station.AirportCode == "" {
		return fmt.Errorf("airport_code is required")
	}

	file, err := os.Open(c.Station.AirportsDBPath)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true

	// Skip header
	if _, err := reader.Read(); err != nil {
		return err
	}

	found := false
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if len(record) < 7 {
			continue
		}

		// Column 1 is the airport ident
		if record[1] == c.Station.AirportCode {
			lat, err := strconv.ParseFloat(record[4], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude in CSV for %s: %w", c.Station.AirportCode, err)
			}
			c.Station.Latitude = lat

			lon, err := strconv.ParseFloat(record[5], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude in CSV for %s: %w", c.Station.AirportCode, err)
			}
			c.Station.Longitude = lon

			// Elevation might be empty or valid float
			if record[6] != "" {
				elev, err := strconv.ParseFloat(record[6], 64)
				if err == nil {
					c.Station.ElevationFeet = int(elev)
				}
			}

			found = true
			break
		}
	}

	if !found {
		return fmt.Errorf("airport code %s not found in %s", c.Station.AirportCode, c.Station.AirportsDBPath)
	}

	return nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	portsSeen := make(map[int]bool)
	portsSeen[c.Server.Port] = true
	for _, p := range c.Server.AdditionalPorts {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("invalid additional server port: %d", p)
		}
		if portsSeen[p] {
			return fmt.Errorf("duplicate port configured: %d (primary or additional)", p)
		}
		portsSeen[p] = true
	}

	if c.Server.RateLimitPerSecond < 0 {
		return fmt.Errorf("invalid rate_limit_per_second: %f (must be >= 0)", c.Server.RateLimitPerSecond)
	}
	if c.Server.RateLimitPerSecond > 0 && c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 10
	}

	// Set default static files directory if not specified
	if c.Server.StaticFilesDir == "" {
		c.Server.StaticFilesDir = "www"
	}

	// Validate logging config
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	// Validate storage config
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = "skybrief.db"
	}
	if c.Storage.MaxReportsInAPI <= 0 {
		c.Storage.MaxReportsInAPI = 100
	}

	// Validate weather config
	if err := weather.ValidateConfig(c.Weather); err != nil {
		return fmt.Errorf("invalid weather config: %w", err)
	}

	// Validate briefing config
	if c.Briefing.Enabled && c.Briefing.APIKey == "" && os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("briefing is enabled but no api_key is configured and GEMINI_API_KEY is not set")
	}

	return nil
}
