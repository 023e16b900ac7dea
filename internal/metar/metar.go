// Package metar decodes METAR and TAF aviation weather reports into
// structured fields and human-readable summaries.
package metar

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Wind represents a decoded wind group
type Wind struct {
	DirectionDeg *int `json:"direction_deg,omitempty"` // nil means variable (VRB)
	SpeedKt      int  `json:"speed_kt"`
	GustKt       *int `json:"gust_kt,omitempty"`
}

// Variable reports whether the wind direction is variable
func (w *Wind) Variable() bool {
	return w.DirectionDeg == nil
}

// CloudLayer represents a single decoded cloud layer
type CloudLayer struct {
	Coverage    string `json:"coverage"` // FEW, SCT, BKN, OVC
	BaseFt      int    `json:"base_ft"`
	CoveragePct int    `json:"coverage_pct"`
	Convective  string `json:"convective,omitempty"` // CB or TCU
}

// Visibility represents a decoded visibility group
type Visibility struct {
	StatuteMiles *float64 `json:"statute_miles,omitempty"`
	Meters       *int     `json:"meters,omitempty"`
	Raw          string   `json:"raw"`
}

// Report is the typed result of scanning a METAR/TAF body. Fields that did
// not appear in the report are left nil/empty; scanning never fails.
type Report struct {
	Wind          *Wind        `json:"wind,omitempty"`
	Visibility    *Visibility  `json:"visibility,omitempty"`
	Weather       []string     `json:"weather,omitempty"` // decoded phenomena
	Clouds        []CloudLayer `json:"clouds,omitempty"`
	SkyClear      string       `json:"sky_clear,omitempty"` // NSC, SKC, CLR or CAVOK
	TempC         *int         `json:"temp_c,omitempty"`
	DewpointC     *int         `json:"dewpoint_c,omitempty"`
	AltimeterInHg *float64     `json:"altimeter_inhg,omitempty"`
	QNHhPa        *int         `json:"qnh_hpa,omitempty"`
	Tempo         string       `json:"tempo,omitempty"`   // raw TEMPO section
	Remarks       string       `json:"remarks,omitempty"` // raw RMK section
}

// Token classifiers. Each matches a complete token from the report body.
var (
	windRe     = regexp.MustCompile(`^(\d{3}|VRB)(\d{2,3})(?:G(\d{2,3}))?KT$`)
	visSMRe    = regexp.MustCompile(`^(\d{1,2})SM$`)
	visFracRe  = regexp.MustCompile(`^(\d)/(\d)SM$`)
	visMixedRe = regexp.MustCompile(`^(\d{1,2}) (\d)/(\d)SM$`)
	visMetRe   = regexp.MustCompile(`^(\d{4})(?:NDV)?$`)
	wxRe       = regexp.MustCompile(`^(\+|-|VC)?(MI|PR|BC|DR|BL|SH|TS|FZ)?((?:DZ|RA|SN|SG|IC|PL|GR|GS|UP|BR|FG|FU|VA|DU|SA|HZ|PO|SQ|FC|SS|DS)+)$`)
	cloudRe    = regexp.MustCompile(`^(FEW|SCT|BKN|OVC)(\d{3})(CB|TCU)?$`)
	clearRe    = regexp.MustCompile(`^(NSC|SKC|CLR|CAVOK|NCD)$`)
	tempRe     = regexp.MustCompile(`^(M?)(\d{2})/(M?)(\d{2})$`)
	altInHgRe  = regexp.MustCompile(`^A(\d{4})$`)
	altQNHRe   = regexp.MustCompile(`^Q(\d{4})$`)
)

// coveragePercent maps coverage codes to an estimated sky coverage
var coveragePercent = map[string]int{
	"FEW": 25,
	"SCT": 50,
	"BKN": 75,
	"OVC": 100,
}

// splitSections separates the current-conditions body from the TEMPO and RMK
// sections so forecast/remark content is never mistaken for current weather.
// BECMG content is dropped entirely.
func splitSections(raw string) (body, tempo, remarks string) {
	body = strings.TrimSpace(raw)

	if idx := strings.Index(body, "RMK"); idx >= 0 {
		remarks = strings.TrimSpace(body[idx+len("RMK"):])
		body = strings.TrimSpace(body[:idx])
	}
	if idx := strings.Index(body, "TEMPO"); idx >= 0 {
		tempo = strings.TrimSpace(body[idx+len("TEMPO"):])
		body = strings.TrimSpace(body[:idx])
		if end := strings.Index(tempo, "BECMG"); end >= 0 {
			tempo = strings.TrimSpace(tempo[:end])
		}
	}
	if idx := strings.Index(body, "BECMG"); idx >= 0 {
		body = strings.TrimSpace(body[:idx])
	}
	return body, tempo, remarks
}

// Parse scans a raw METAR/TAF string into a Report. Tokens are classified in
// a single left-to-right pass over the current-conditions body; anything that
// matches no token class is skipped. Parse never returns an error: fields
// absent from the report are simply left unset.
func Parse(raw string) Report {
	var rpt Report

	body, tempo, remarks := splitSections(raw)
	rpt.Tempo = tempo
	rpt.Remarks = remarks

	tokens := strings.Fields(body)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if rpt.Wind == nil {
			if w := parseWindToken(tok); w != nil {
				rpt.Wind = w
				continue
			}
		}

		if rpt.Visibility == nil {
			// Mixed-number visibility arrives as two tokens ("1 1/2SM")
			if i+1 < len(tokens) && visMixedRe.MatchString(tok+" "+tokens[i+1]) {
				if v := parseVisibilityTokens(tok, tokens[i+1]); v != nil {
					rpt.Visibility = v
					i++
					continue
				}
			}
			if v := parseVisibilityTokens(tok, ""); v != nil {
				rpt.Visibility = v
				continue
			}
		}

		if m := wxRe.FindStringSubmatch(tok); m != nil {
			if desc := describePhenomenon(m[1], m[2], m[3]); desc != "" {
				rpt.Weather = append(rpt.Weather, desc)
			}
			continue
		}

		if m := cloudRe.FindStringSubmatch(tok); m != nil {
			base, _ := strconv.Atoi(m[2])
			rpt.Clouds = append(rpt.Clouds, CloudLayer{
				Coverage:    m[1],
				BaseFt:      base * 100,
				CoveragePct: coveragePercent[m[1]],
				Convective:  m[3],
			})
			continue
		}

		if m := clearRe.FindStringSubmatch(tok); m != nil {
			rpt.SkyClear = m[1]
			continue
		}

		if m := tempRe.FindStringSubmatch(tok); m != nil {
			t, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[4])
			if m[1] == "M" {
				t = -t
			}
			if m[3] == "M" {
				d = -d
			}
			rpt.TempC = &t
			rpt.DewpointC = &d
			continue
		}

		// Inches of mercury takes precedence over hectopascals
		if m := altInHgRe.FindStringSubmatch(tok); m != nil && rpt.AltimeterInHg == nil {
			hundredths, _ := strconv.Atoi(m[1])
			inHg := float64(hundredths) / 100.0
			rpt.AltimeterInHg = &inHg
			continue
		}
		if m := altQNHRe.FindStringSubmatch(tok); m != nil && rpt.QNHhPa == nil {
			hpa, _ := strconv.Atoi(m[1])
			rpt.QNHhPa = &hpa
			continue
		}
	}

	// Metric visibility is a bare 4-digit token; only claim one after the
	// wind group has been seen, so the observation time token is never taken.
	if rpt.Visibility == nil && rpt.Wind != nil {
		seenWind := false
		for _, tok := range tokens {
			if windRe.MatchString(tok) {
				seenWind = true
				continue
			}
			if !seenWind {
				continue
			}
			if m := visMetRe.FindStringSubmatch(tok); m != nil {
				meters, _ := strconv.Atoi(m[1])
				rpt.Visibility = &Visibility{Meters: &meters, Raw: tok}
				break
			}
			// Stop looking once past the sky/temperature groups
			if cloudRe.MatchString(tok) || tempRe.MatchString(tok) || clearRe.MatchString(tok) {
				break
			}
		}
	}

	sort.SliceStable(rpt.Clouds, func(i, j int) bool {
		return rpt.Clouds[i].BaseFt < rpt.Clouds[j].BaseFt
	})

	return rpt
}

// ParseWind extracts the wind group from a raw report.
// Returns nil if no wind token is present.
func ParseWind(raw string) *Wind {
	for _, tok := range strings.Fields(raw) {
		if w := parseWindToken(tok); w != nil {
			return w
		}
	}
	return nil
}

func parseWindToken(tok string) *Wind {
	m := windRe.FindStringSubmatch(tok)
	if m == nil {
		return nil
	}

	w := &Wind{}
	if m[1] != "VRB" {
		dir, err := strconv.Atoi(m[1])
		if err != nil || dir > 360 {
			return nil
		}
		w.DirectionDeg = &dir
	}

	speed, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	w.SpeedKt = speed

	if m[3] != "" {
		gust, err := strconv.Atoi(m[3])
		if err == nil {
			w.GustKt = &gust
		}
	}
	return w
}

func parseVisibilityTokens(tok, next string) *Visibility {
	if next != "" {
		if m := visMixedRe.FindStringSubmatch(tok + " " + next); m != nil {
			whole, _ := strconv.Atoi(m[1])
			num, _ := strconv.Atoi(m[2])
			den, _ := strconv.Atoi(m[3])
			if den == 0 {
				return nil
			}
			sm := float64(whole) + float64(num)/float64(den)
			return &Visibility{StatuteMiles: &sm, Raw: tok + " " + next}
		}
		return nil
	}
	if m := visSMRe.FindStringSubmatch(tok); m != nil {
		whole, _ := strconv.Atoi(m[1])
		sm := float64(whole)
		return &Visibility{StatuteMiles: &sm, Raw: tok}
	}
	if m := visFracRe.FindStringSubmatch(tok); m != nil {
		num, _ := strconv.Atoi(m[1])
		den, _ := strconv.Atoi(m[2])
		if den == 0 {
			return nil
		}
		sm := float64(num) / float64(den)
		return &Visibility{StatuteMiles: &sm, Raw: tok}
	}
	return nil
}

// ParseCloudLayers extracts all cloud layers from a raw report, sorted
// ascending by base altitude. Clear-sky codes yield an empty slice.
func ParseCloudLayers(raw string) []CloudLayer {
	rpt := Parse(raw)
	return rpt.Clouds
}

// CeilingFt returns the base of the lowest broken or overcast layer.
// Returns nil when the report has no ceiling.
func (r *Report) CeilingFt() *int {
	for _, layer := range r.Clouds {
		if layer.Coverage == "BKN" || layer.Coverage == "OVC" {
			base := layer.BaseFt
			return &base
		}
	}
	return nil
}
