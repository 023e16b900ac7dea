package metar

import (
	"strings"
	"testing"
)

func TestDecodeReport(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		contains []string
		excludes []string
	}{
		{
			name: "typical metar",
			raw:  "KJFK 092251Z 24012G20KT 10SM -RA SCT025 BKN040 22/18 A3012 RMK AO2",
			contains: []string{
				"Wind from 240° at 12 knots, gusting 20 knots",
				"Visibility 10+ miles",
				"Light rain",
				"Scattered clouds at 2500 ft, broken at 4000 ft",
				"Temperature 22°C, dewpoint 18°C",
				"Altimeter 30.12 inHg",
				"Remarks: AO2",
			},
		},
		{
			name: "metric report with cavok",
			raw:  "EGLL 091450Z 27010KT CAVOK 18/12 Q1015",
			contains: []string{
				"Wind from 270° at 10 knots",
				"Ceiling and visibility OK",
				"QNH 1015 hPa",
			},
			excludes: []string{"Altimeter"},
		},
		{
			name: "thunderstorm",
			raw:  "TEST 010000Z 18020G35KT 3SM +TSRA BKN025CB 28/24 A2980",
			contains: []string{
				"Heavy Thunderstorm rain",
				"Broken clouds at 2500 ft (cumulonimbus)",
			},
		},
		{
			name:     "variable wind",
			raw:      "EGLL 091450Z VRB03KT 9999 FEW030 18/12 Q1015",
			contains: []string{"Wind variable at 3 knots", "Visibility 10km+"},
		},
		{
			name:     "negative temperatures",
			raw:      "CYYZ 121900Z 27015KT 15SM SKC M02/M10 A2992",
			contains: []string{"Temperature -2°C, dewpoint -10°C", "Sky clear"},
		},
		{
			name:     "temporary conditions",
			raw:      "KMIA 100953Z 10008KT 7SM SCT020 26/23 A3005 TEMPO 4SM SHRA",
			contains: []string{"Temporarily: 4SM SHRA"},
		},
		{
			name:     "altimeter precedence",
			raw:      "TEST 010000Z 27010KT A2992 Q1013",
			contains: []string{"Altimeter 29.92 inHg"},
			excludes: []string{"QNH"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeReport(tt.raw)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("summary missing %q\nsummary: %s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("summary unexpectedly contains %q\nsummary: %s", unwanted, got)
				}
			}
		})
	}
}

func TestDecodeReportFallback(t *testing.T) {
	for _, raw := range []string{"", "GARBAGE INPUT HERE", "###"} {
		if got := DecodeReport(raw); got != FallbackSummary {
			t.Errorf("DecodeReport(%q) = %q, want fallback", raw, got)
		}
	}
}

func TestDecodeReportLongRemarksOmitted(t *testing.T) {
	raw := "KJFK 092251Z 24012KT 10SM FEW250 22/18 A3012 RMK AO2 SLP201 T02220183 10250 20178 53012 PRESFR"
	got := DecodeReport(raw)
	if strings.Contains(got, "Remarks:") {
		t.Errorf("remarks over 50 chars should be omitted, got: %s", got)
	}
}
