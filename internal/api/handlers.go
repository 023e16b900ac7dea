package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/skybrief/skybrief/internal/airspace"
	"github.com/skybrief/skybrief/internal/briefing"
	"github.com/skybrief/skybrief/internal/config"
	"github.com/skybrief/skybrief/internal/metar"
	"github.com/skybrief/skybrief/internal/runways"
	"github.com/skybrief/skybrief/internal/storage/sqlite"
	"github.com/skybrief/skybrief/internal/weather"
	"github.com/skybrief/skybrief/internal/websocket"
	"github.com/skybrief/skybrief/pkg/logger"
	"github.com/skybrief/skybrief/pkg/metrics"
)

// Handler contains the API handlers
type Handler struct {
	weatherService  *weather.Service
	briefingService *briefing.Service
	runwaysService  *runways.Service
	storage         *sqlite.ReportStorage
	config          *config.Config
	logger          *logger.Logger
	wsServer        *websocket.Server
	metrics         *metrics.Collector
}

// NewHandler creates a new API handler
func NewHandler(weatherService *weather.Service, briefingService *briefing.Service, runwaysService *runways.Service, storage *sqlite.ReportStorage, cfg *config.Config, log *logger.Logger, wsServer *websocket.Server, collector *metrics.Collector) *Handler {
	return &Handler{
		weatherService:  weatherService,
		briefingService: briefingService,
		runwaysService:  runwaysService,
		storage:         storage,
		config:          cfg,
		logger:          log.Named("api-handler"),
		wsServer:        wsServer,
		metrics:         collector,
	}
}

// GetWeather returns the full briefing snapshot for the configured airport
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	data := h.weatherService.GetWeatherData()
	WriteJSON(w, http.StatusOK, data)
}

// RefreshWeather triggers an immediate refresh of the weather data
func (h *Handler) RefreshWeather(w http.ResponseWriter, r *http.Request) {
	h.weatherService.RefreshNow()
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
}

// GetNOTAMs returns the decoded NOTAMs for the configured airport
func (h *Handler) GetNOTAMs(w http.ResponseWriter, r *http.Request) {
	data := h.weatherService.GetWeatherData()

	notams := data.NOTAMs
	// ?active=true narrows to NOTAMs currently in effect
	if r.URL.Query().Get("active") == "true" {
		filtered := make([]weather.DecodedNOTAM, 0, len(notams))
		for _, n := range notams {
			if n.Status.Status == "active" {
				filtered = append(filtered, n)
			}
		}
		notams = filtered
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"notams":       notams,
		"last_updated": data.LastUpdated,
	})
}

// DecodeRequest is the payload for ad hoc report decoding
type DecodeRequest struct {
	Raw string `json:"raw"`
}

// DecodeResponse carries the structured decode of a raw report
type DecodeResponse struct {
	Raw       string       `json:"raw"`
	Summary   string       `json:"summary"`
	Report    metar.Report `json:"report"`
	CeilingFt *int         `json:"ceiling_ft,omitempty"`
}

// DecodeReport decodes a raw METAR/TAF string supplied by the client
func (h *Handler) DecodeReport(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	raw := strings.TrimSpace(req.Raw)
	if raw == "" {
		WriteError(w, http.StatusBadRequest, "raw report text is required")
		return
	}

	report := metar.Parse(raw)
	summary := metar.DecodeReport(raw)
	if h.metrics != nil {
		outcome := "ok"
		if summary == metar.FallbackSummary {
			outcome = "fallback"
		}
		h.metrics.RecordDecode(outcome)
	}

	WriteJSON(w, http.StatusOK, DecodeResponse{
		Raw:       raw,
		Summary:   summary,
		Report:    report,
		CeilingFt: report.CeilingFt(),
	})
}

// GetRunways returns the runway database for the configured airport
func (h *Handler) GetRunways(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"airport":              h.config.Station.AirportCode,
		"runways":              h.runwaysService.Runways(),
		"magnetic_declination": h.runwaysService.MagneticDeclination(),
	})
}

// GetRunwayWinds returns wind components per runway for the current METAR
// wind, or for a wind supplied via the dir/speed/gust query parameters
func (h *Handler) GetRunwayWinds(w http.ResponseWriter, r *http.Request) {
	wind, err := h.resolveWind(r)
	if err != "" {
		WriteError(w, http.StatusBadRequest, err)
		return
	}
	if wind == nil {
		WriteError(w, http.StatusNotFound, "no wind information available")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"airport": h.config.Station.AirportCode,
		"wind":    wind,
		"runways": h.runwaysService.FavoredRunways(wind),
	})
}

// resolveWind pulls the wind from query parameters, falling back to the
// current METAR. Returns an error message for malformed parameters.
func (h *Handler) resolveWind(r *http.Request) (*metar.Wind, string) {
	q := r.URL.Query()
	if dirStr := q.Get("dir"); dirStr != "" {
		dir, err := strconv.Atoi(dirStr)
		if err != nil || dir < 0 || dir > 360 {
			return nil, "dir must be an integer between 0 and 360"
		}
		speed, err := strconv.Atoi(q.Get("speed"))
		if err != nil || speed < 0 {
			return nil, "speed must be a non-negative integer"
		}
		wind := &metar.Wind{DirectionDeg: &dir, SpeedKt: speed}
		if gustStr := q.Get("gust"); gustStr != "" {
			gust, err := strconv.Atoi(gustStr)
			if err != nil || gust < 0 {
				return nil, "gust must be a non-negative integer"
			}
			wind.GustKt = &gust
		}
		return wind, ""
	}

	data := h.weatherService.GetWeatherData()
	if data.DecodedMETAR == nil {
		return nil, ""
	}
	return data.DecodedMETAR.Report.Wind, ""
}

// AirspaceLayoutRequest is the payload for the lane layout computation
type AirspaceLayoutRequest struct {
	Features []airspace.Feature `json:"features"`
}

// ComputeAirspaceLayout lays out the submitted airspace features into lanes
func (h *Handler) ComputeAirspaceLayout(w http.ResponseWriter, r *http.Request) {
	var req AirspaceLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	layout := airspace.Compute(req.Features)
	h.logger.Debug("Computed airspace layout",
		logger.Int("feature_count", len(req.Features)),
		logger.Int("lane_count", layout.LaneCount),
		logger.Duration("duration", time.Since(start)))

	WriteJSON(w, http.StatusOK, layout)
}

// GetReportHistory returns recently stored reports for the airport
func (h *Handler) GetReportHistory(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		WriteError(w, http.StatusNotFound, "history storage is not enabled")
		return
	}

	reportType := r.URL.Query().Get("type")
	if reportType != "" && reportType != "metar" && reportType != "taf" {
		WriteError(w, http.StatusBadRequest, "type must be metar or taf")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.storage.GetRecentReports(h.config.Station.AirportCode, reportType, limit)
	if err != nil {
		h.logger.Error("Failed to query report history", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to query report history")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"reports": records})
}

// GetNOTAMHistory returns recently seen NOTAMs for the airport
func (h *Handler) GetNOTAMHistory(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		WriteError(w, http.StatusNotFound, "history storage is not enabled")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.storage.GetRecentNOTAMs(h.config.Station.AirportCode, limit)
	if err != nil {
		h.logger.Error("Failed to query NOTAM history", logger.Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to query NOTAM history")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"notams": records})
}

// GetBriefing returns the generated plain-language briefing
func (h *Handler) GetBriefing(w http.ResponseWriter, r *http.Request) {
	if h.briefingService == nil || !h.briefingService.Enabled() {
		WriteError(w, http.StatusNotFound, "briefing generation is not enabled")
		return
	}

	result, err := h.briefingService.Generate(r.Context())
	if err != nil {
		h.logger.Error("Failed to generate briefing", logger.Error(err))
		WriteError(w, http.StatusBadGateway, "failed to generate briefing")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// GetStation returns the configured station details
func (h *Handler) GetStation(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"airport_code":         h.config.Station.AirportCode,
		"latitude":             h.config.Station.Latitude,
		"longitude":            h.config.Station.Longitude,
		"elevation_feet":       h.config.Station.ElevationFeet,
		"magnetic_declination": h.runwaysService.MagneticDeclination(),
	})
}

// GetHealth returns service health and cache statistics
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !h.weatherService.IsStarted() {
		status = "starting"
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"airport": h.config.Station.AirportCode,
		"cache":   h.weatherService.CacheStats(),
		"time":    time.Now().UTC(),
	})
}
