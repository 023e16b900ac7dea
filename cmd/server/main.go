package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/skybrief/skybrief/internal/api"
	"github.com/skybrief/skybrief/internal/briefing"
	"github.com/skybrief/skybrief/internal/briefing/gemini"
	"github.com/skybrief/skybrief/internal/config"
	"github.com/skybrief/skybrief/internal/runways"
	"github.com/skybrief/skybrief/internal/storage/sqlite"
	"github.com/skybrief/skybrief/internal/weather"
	"github.com/skybrief/skybrief/internal/websocket"
	"github.com/skybrief/skybrief/pkg/logger"
	"github.com/skybrief/skybrief/pkg/metrics"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load environment variables from .env if present (API keys)
	_ = godotenv.Load()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting SkyBrief server",
		logger.String("version", Version),
		logger.String("airport", cfg.Station.AirportCode),
	)

	// Create metrics collector
	collector := metrics.NewCollector("skybrief")

	// Create SQLite storage for briefing history
	storage, err := sqlite.NewReportStorage(cfg.Storage.DBPath, cfg.Storage.MaxReportsInAPI, log)
	if err != nil {
		log.Error("Failed to create SQLite storage", logger.Error(err))
		os.Exit(1)
	}
	defer storage.Close()
	log.Info("Using SQLite storage", logger.String("path", cfg.Storage.DBPath))

	// Create WebSocket server
	wsServer := websocket.NewServer(log, collector)
	go wsServer.Run()

	// Create weather service
	weatherClient := weather.NewClient(cfg.Weather, collector, log)
	weatherService := weather.NewService(cfg.Weather, cfg.Station.AirportCode, weatherClient, storage, wsServer, log)

	if err := weatherService.Start(); err != nil {
		log.Error("Failed to start weather service", logger.Error(err))
		os.Exit(1)
	}

	// Let clients request an immediate refresh over the socket
	wsServer.SetMessageHandler(&refreshHandler{weatherService: weatherService})

	// Create runways service
	runwaysService, err := runways.NewService(
		cfg.Station.RunwaysDBPath,
		cfg.Station.AirportCode,
		cfg.Station.Latitude,
		cfg.Station.Longitude,
		cfg.Station.ElevationFeet,
		log,
	)
	if err != nil {
		log.Error("Failed to create runways service", logger.Error(err))
		os.Exit(1)
	}

	// Create briefing service (if enabled)
	var briefingService *briefing.Service
	if cfg.Briefing.Enabled {
		apiKey := cfg.Briefing.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		provider := gemini.NewClient(apiKey, log)
		briefingService = briefing.NewService(cfg.Briefing, provider, weatherService, log)
		log.Info("Briefing service enabled", logger.String("model", cfg.Briefing.Model))
	} else {
		log.Info("Briefing service disabled in configuration")
	}

	// Create API router
	router := api.NewRouter(weatherService, briefingService, runwaysService, storage, cfg, log, wsServer, collector)

	// --- Setup for multiple HTTP servers ---
	var servers []*http.Server
	allPorts := []int{cfg.Server.Port}
	if len(cfg.Server.AdditionalPorts) > 0 {
		allPorts = append(allPorts, cfg.Server.AdditionalPorts...)
	}

	log.Info("Configured listener ports", logger.Any("ports", allPorts))

	for _, port := range allPorts {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
		server := &http.Server{
			Addr:         addr,
			Handler:      router.Routes(),
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
		}
		servers = append(servers, server)

		go func(s *http.Server) {
			log.Info("Starting HTTP server", logger.String("addr", s.Addr))
			if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("HTTP server error on startup", logger.String("addr", s.Addr), logger.Error(err))
			}
		}(server)
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	log.Info("Stopping weather service...")
	weatherService.Stop()
	log.Info("Weather service stopped.")

	// Shutdown all HTTP servers
	log.Info("Shutting down HTTP servers...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(srv *http.Server) {
			defer wg.Done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("HTTP server shutdown error", logger.String("addr", srv.Addr), logger.Error(err))
			} else {
				log.Info("HTTP server shutdown complete", logger.String("addr", srv.Addr))
			}
		}(s)
	}
	wg.Wait()

	log.Info("Server fully stopped")
}

// refreshHandler lets websocket clients trigger an immediate weather refresh
type refreshHandler struct {
	weatherService *weather.Service
}

func (h *refreshHandler) HandleMessage(client *websocket.Client, messageType string, data map[string]any) error {
	if messageType == websocket.MessageTypeRefreshNow {
		h.weatherService.RefreshNow()
	}
	return nil
}
