package notam

import (
	"regexp"
	"strconv"
)

// Coordinates is a decoded position from NOTAM prose, with an optional
// affected radius.
type Coordinates struct {
	LatitudeDeg  float64  `json:"latitude_deg"`
	LongitudeDeg float64  `json:"longitude_deg"`
	RadiusNM     *float64 `json:"radius_nm,omitempty"`
}

// DMS pair: DDMMSS[NS] DDDMMSS[EW]
const dmsPair = `(\d{6})([NS])\s*(\d{7})([EW])`

// Candidate patterns in priority order. An invalid DMS candidate falls
// through to the next pattern, never to a repaired value.
var (
	radiusOfRe = regexp.MustCompile(`WI\s+(\d+(?:\.\d+)?)\s*NM\s+RADIUS\s+OF\s+` + dmsPair)
	psnRe      = regexp.MustCompile(`(?:PSN:?\s*(?:SITE\s+CENTRE\s*)?|POSITION\s+)` + dmsPair)
	byRe       = regexp.MustCompile(`BY:\s*` + dmsPair)
	bareRe     = regexp.MustCompile(dmsPair)
)

// ParseCoordinates extracts the most specific coordinate mention from a
// NOTAM message. Returns nil when no valid coordinate pair is found.
func ParseCoordinates(msg string) *Coordinates {
	if m := radiusOfRe.FindStringSubmatch(msg); m != nil {
		if coords := decodeDMSPair(m[2], m[3], m[4], m[5]); coords != nil {
			if radius, err := strconv.ParseFloat(m[1], 64); err == nil {
				coords.RadiusNM = &radius
			}
			return coords
		}
	}
	if m := psnRe.FindStringSubmatch(msg); m != nil {
		if coords := decodeDMSPair(m[1], m[2], m[3], m[4]); coords != nil {
			return coords
		}
	}
	if m := byRe.FindStringSubmatch(msg); m != nil {
		if coords := decodeDMSPair(m[1], m[2], m[3], m[4]); coords != nil {
			return coords
		}
	}
	if m := bareRe.FindStringSubmatch(msg); m != nil {
		if coords := decodeDMSPair(m[1], m[2], m[3], m[4]); coords != nil {
			return coords
		}
	}
	return nil
}

// decodeDMSPair validates and converts a degrees-minutes-seconds pair to
// decimal degrees. Returns nil for any out-of-range component.
func decodeDMSPair(latDigits, latHemi, lonDigits, lonHemi string) *Coordinates {
	lat, ok := decodeDMS(latDigits, 90)
	if !ok {
		return nil
	}
	lon, ok := decodeDMS(lonDigits, 180)
	if !ok {
		return nil
	}

	if latHemi == "S" {
		lat = -lat
	}
	if lonHemi == "W" {
		lon = -lon
	}
	return &Coordinates{LatitudeDeg: lat, LongitudeDeg: lon}
}

// decodeDMS converts DDMMSS (or DDDMMSS) digits to decimal degrees,
// rejecting out-of-range minutes, seconds, or degrees.
func decodeDMS(digits string, maxDeg int) (float64, bool) {
	degLen := len(digits) - 4
	if degLen < 1 {
		return 0, false
	}

	deg, err := strconv.Atoi(digits[:degLen])
	if err != nil {
		return 0, false
	}
	min, err := strconv.Atoi(digits[degLen : degLen+2])
	if err != nil {
		return 0, false
	}
	sec, err := strconv.Atoi(digits[degLen+2:])
	if err != nil {
		return 0, false
	}

	if deg > maxDeg || min >= 60 || sec >= 60 {
		return 0, false
	}

	value := float64(deg) + float64(min)/60.0 + float64(sec)/3600.0
	if value > float64(maxDeg) {
		return 0, false
	}
	return value, true
}
