package runways

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/skybrief/skybrief/internal/metar"
	"github.com/skybrief/skybrief/pkg/logger"
	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// Runway represents a single runway with both ends. End headings are true
// degrees; runway idents are magnetic.
type Runway struct {
	Ident    string             `json:"ident"` // e.g. "06L/24R"
	LengthFt int                `json:"length_ft"`
	Surface  string             `json:"surface"`
	Ends     [2]metar.RunwayEnd `json:"ends"`
}

// RunwayWind pairs a runway with the wind solution for its favored end
type RunwayWind struct {
	Runway  Runway             `json:"runway"`
	Favored *metar.FavoredWind `json:"favored,omitempty"`
}

// Service resolves runway wind components for the configured airport
type Service struct {
	airportCode string
	runways     []Runway
	declination float64
	logger      *logger.Logger
}

// NewService loads the runway database (OurAirports runways.csv format) for
// the given airport and computes the local magnetic declination
func NewService(runwaysDBPath, airportCode string, lat, lon float64, elevationFt int, log *logger.Logger) (*Service, error) {
	svcLogger := log.Named("runways")

	runways, err := loadRunwaysFromCSV(runwaysDBPath, airportCode)
	if err != nil {
		return nil, err
	}
	if len(runways) == 0 {
		svcLogger.Warn("No runways found for airport",
			logger.String("airport", airportCode),
			logger.String("path", runwaysDBPath))
	}

	declination := magneticDeclination(lat, lon, float64(elevationFt), time.Now())

	svcLogger.Info("Runway database loaded",
		logger.String("airport", airportCode),
		logger.Int("runway_count", len(runways)),
		logger.Float64("magnetic_declination", declination))

	return &Service{
		airportCode: airportCode,
		runways:     runways,
		declination: declination,
		logger:      svcLogger,
	}, nil
}

// Runways returns the loaded runways
func (s *Service) Runways() []Runway {
	return s.runways
}

// MagneticDeclination returns the station declination in degrees (+East)
func (s *Service) MagneticDeclination() float64 {
	return s.declination
}

// FavoredRunways computes the favored end and wind components for every
// runway given the current surface wind
func (s *Service) FavoredRunways(wind *metar.Wind) []RunwayWind {
	results := make([]RunwayWind, 0, len(s.runways))
	for _, rwy := range s.runways {
		results = append(results, RunwayWind{
			Runway:  rwy,
			Favored: metar.FavoredEnd(wind, rwy.Ends[:]),
		})
	}
	return results
}

// magneticDeclination calculates the magnetic declination for a position
// and time. Returns degrees (+East, -West), or 0 if the model fails.
func magneticDeclination(lat, lon, altFt float64, date time.Time) float64 {
	altM := altFt * 0.3048

	loc := egm96.NewLocationGeodetic(lat, lon, altM)
	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		return 0.0
	}
	return mag.D()
}

// loadRunwaysFromCSV parses an OurAirports runways.csv file, keeping only
// open runways belonging to the given airport
func loadRunwaysFromCSV(path, airportCode string) ([]Runway, error) {
	if path == "" {
		return nil, fmt.Errorf("runways_db_path is required")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open runways database: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read runways CSV header: %w", err)
	}

	var runways []Runway
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if len(record) < 19 {
			continue
		}
		// Columns: 2=airport_ident, 3=length_ft, 5=surface, 7=closed,
		// 8=le_ident, 12=le_heading_degT, 14=he_ident, 18=he_heading_degT
		if record[2] != airportCode || record[7] == "1" {
			continue
		}

		le, leOK := parseEnd(record[8], record[12])
		he, heOK := parseEnd(record[14], record[18])
		if !leOK || !heOK {
			continue
		}

		lengthFt, _ := strconv.Atoi(record[3])
		runways = append(runways, Runway{
			Ident:    le.Ident + "/" + he.Ident,
			LengthFt: lengthFt,
			Surface:  record[5],
			Ends:     [2]metar.RunwayEnd{le, he},
		})
	}

	return runways, nil
}

// parseEnd builds a runway end from its ident and true heading columns.
// A missing heading falls back to the ident number times ten.
func parseEnd(ident, headingDegT string) (metar.RunwayEnd, bool) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return metar.RunwayEnd{}, false
	}

	heading, err := strconv.ParseFloat(strings.TrimSpace(headingDegT), 64)
	if err != nil {
		digits := strings.TrimFunc(ident, func(r rune) bool {
			return r < '0' || r > '9'
		})
		num, convErr := strconv.Atoi(digits)
		if convErr != nil || num < 1 || num > 36 {
			return metar.RunwayEnd{}, false
		}
		heading = float64(num * 10)
	}

	return metar.RunwayEnd{Ident: ident, HeadingDeg: heading}, true
}
