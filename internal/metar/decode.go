package metar

import (
	"fmt"
	"strings"
)

// FallbackSummary is returned when no section of the report could be decoded
const FallbackSummary = "Unable to decode report"

var intensityWords = map[string]string{
	"-":  "Light",
	"+":  "Heavy",
	"VC": "Nearby",
}

var descriptorWords = map[string]string{
	"MI": "Shallow",
	"PR": "Partial",
	"BC": "Patchy",
	"DR": "Drifting",
	"BL": "Blowing",
	"SH": "Showers of",
	"TS": "Thunderstorm",
	"FZ": "Freezing",
}

var phenomenonWords = map[string]string{
	"DZ": "drizzle",
	"RA": "rain",
	"SN": "snow",
	"SG": "snow grains",
	"IC": "ice crystals",
	"PL": "ice pellets",
	"GR": "hail",
	"GS": "small hail",
	"UP": "unknown precipitation",
	"BR": "mist",
	"FG": "fog",
	"FU": "smoke",
	"VA": "volcanic ash",
	"DU": "dust",
	"SA": "sand",
	"HZ": "haze",
	"PO": "dust whirls",
	"SQ": "squalls",
	"FC": "funnel cloud",
	"SS": "sandstorm",
	"DS": "duststorm",
}

var coverageWords = map[string]string{
	"FEW": "few clouds",
	"SCT": "scattered clouds",
	"BKN": "broken clouds",
	"OVC": "overcast",
}

var convectiveWords = map[string]string{
	"CB":  "cumulonimbus",
	"TCU": "towering cumulus",
}

// describePhenomenon composes the human description of a present-weather
// group from its intensity, descriptor and phenomenon codes.
func describePhenomenon(intensity, descriptor, phenomena string) string {
	var words []string
	if w, ok := intensityWords[intensity]; ok {
		words = append(words, w)
	}
	if w, ok := descriptorWords[descriptor]; ok {
		words = append(words, w)
	}
	for i := 0; i+2 <= len(phenomena); i += 2 {
		if w, ok := phenomenonWords[phenomena[i:i+2]]; ok {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return ""
	}

	out := strings.Join(words, " ")
	return strings.ToUpper(out[:1]) + out[1:]
}

// DecodeReport converts a raw METAR/TAF string into a natural-language
// summary. Sections that cannot be decoded are omitted; if nothing matches,
// a fixed fallback string is returned.
func DecodeReport(raw string) string {
	rpt := Parse(raw)

	var parts []string

	if rpt.Wind != nil {
		parts = append(parts, describeWind(rpt.Wind))
	}
	if vis := describeVisibility(rpt.Visibility); vis != "" {
		parts = append(parts, vis)
	}
	parts = append(parts, rpt.Weather...)
	if sky := describeSky(&rpt); sky != "" {
		parts = append(parts, sky)
	}
	if rpt.TempC != nil && rpt.DewpointC != nil {
		parts = append(parts, fmt.Sprintf("Temperature %d°C, dewpoint %d°C", *rpt.TempC, *rpt.DewpointC))
	}
	if rpt.AltimeterInHg != nil {
		parts = append(parts, fmt.Sprintf("Altimeter %.2f inHg", *rpt.AltimeterInHg))
	} else if rpt.QNHhPa != nil {
		parts = append(parts, fmt.Sprintf("QNH %d hPa", *rpt.QNHhPa))
	}
	if rpt.Tempo != "" {
		parts = append(parts, fmt.Sprintf("Temporarily: %s", rpt.Tempo))
	}
	if rpt.Remarks != "" && len(rpt.Remarks) < 50 {
		parts = append(parts, fmt.Sprintf("Remarks: %s", rpt.Remarks))
	}

	if len(parts) == 0 {
		return FallbackSummary
	}
	return strings.Join(parts, ". ") + "."
}

func describeWind(w *Wind) string {
	if w.DirectionDeg == nil {
		return fmt.Sprintf("Wind variable at %d knots", w.SpeedKt)
	}
	if w.SpeedKt == 0 {
		return "Wind calm"
	}

	desc := fmt.Sprintf("Wind from %d° at %d knots", *w.DirectionDeg, w.SpeedKt)
	if w.GustKt != nil {
		desc += fmt.Sprintf(", gusting %d knots", *w.GustKt)
	}
	return desc
}

func describeVisibility(v *Visibility) string {
	if v == nil {
		return ""
	}
	if v.StatuteMiles != nil {
		if *v.StatuteMiles >= 10 {
			return "Visibility 10+ miles"
		}
		return fmt.Sprintf("Visibility %s statute miles", strings.TrimSuffix(v.Raw, "SM"))
	}
	if v.Meters != nil {
		if *v.Meters >= 9999 {
			return "Visibility 10km+"
		}
		return fmt.Sprintf("Visibility %d meters", *v.Meters)
	}
	return ""
}

func describeSky(rpt *Report) string {
	if rpt.SkyClear != "" {
		if rpt.SkyClear == "CAVOK" {
			return "Ceiling and visibility OK"
		}
		return "Sky clear"
	}
	if len(rpt.Clouds) == 0 {
		return ""
	}

	var layers []string
	for i, layer := range rpt.Clouds {
		word := coverageWords[layer.Coverage]
		if i > 0 {
			// Drop the "clouds" noun after the first layer
			word = strings.TrimSuffix(word, " clouds")
		}
		desc := fmt.Sprintf("%s at %d ft", word, layer.BaseFt)
		if conv, ok := convectiveWords[layer.Convective]; ok {
			desc += fmt.Sprintf(" (%s)", conv)
		}
		layers = append(layers, desc)
	}

	out := strings.Join(layers, ", ")
	return strings.ToUpper(out[:1]) + out[1:]
}
