package metar

import (
	"reflect"
	"testing"
)

func TestParseWind(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantNil bool
		dir     *int
		speed   int
		gust    *int
	}{
		{
			name:  "steady wind",
			raw:   "KJFK 092251Z 24012KT 10SM FEW250 22/18 A3012",
			dir:   intPtr(240),
			speed: 12,
		},
		{
			name:  "gusting wind",
			raw:   "CYYZ 121900Z 27015G25KT 15SM SKC M02/M10 A2992",
			dir:   intPtr(270),
			speed: 15,
			gust:  intPtr(25),
		},
		{
			name:  "variable wind",
			raw:   "EGLL 091450Z VRB03KT 9999 FEW030 18/12 Q1015",
			dir:   nil,
			speed: 3,
		},
		{
			name:  "three digit speed",
			raw:   "TEST 010000Z 100104KT",
			dir:   intPtr(100),
			speed: 104,
		},
		{
			name:  "calm wind",
			raw:   "KLAX 100553Z 00000KT 10SM CLR 17/12 A2995",
			dir:   intPtr(0),
			speed: 0,
		},
		{
			name:    "no wind token",
			raw:     "KJFK 092251Z 10SM FEW250",
			wantNil: true,
		},
		{
			name:    "empty report",
			raw:     "",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ParseWind(tt.raw)
			if tt.wantNil {
				if w != nil {
					t.Fatalf("ParseWind(%q) = %+v, want nil", tt.raw, w)
				}
				return
			}
			if w == nil {
				t.Fatalf("ParseWind(%q) = nil, want wind", tt.raw)
			}
			if !reflect.DeepEqual(w.DirectionDeg, tt.dir) {
				t.Errorf("direction = %v, want %v", fmtPtr(w.DirectionDeg), fmtPtr(tt.dir))
			}
			if w.SpeedKt != tt.speed {
				t.Errorf("speed = %d, want %d", w.SpeedKt, tt.speed)
			}
			if !reflect.DeepEqual(w.GustKt, tt.gust) {
				t.Errorf("gust = %v, want %v", fmtPtr(w.GustKt), fmtPtr(tt.gust))
			}
		})
	}
}

func TestParseCloudLayers(t *testing.T) {
	layers := ParseCloudLayers("KBOS 092254Z 24008KT 10SM SCT025 BKN040 OVC100 21/15 A3001")
	want := []CloudLayer{
		{Coverage: "SCT", BaseFt: 2500, CoveragePct: 50},
		{Coverage: "BKN", BaseFt: 4000, CoveragePct: 75},
		{Coverage: "OVC", BaseFt: 10000, CoveragePct: 100},
	}
	if !reflect.DeepEqual(layers, want) {
		t.Errorf("layers = %+v, want %+v", layers, want)
	}
}

func TestParseCloudLayersSortedAscending(t *testing.T) {
	layers := ParseCloudLayers("TEST 010000Z 27010KT OVC100 FEW010 BKN040")
	if len(layers) != 3 {
		t.Fatalf("got %d layers, want 3", len(layers))
	}
	for i := 1; i < len(layers); i++ {
		if layers[i].BaseFt < layers[i-1].BaseFt {
			t.Errorf("layers not ascending: %d ft before %d ft", layers[i-1].BaseFt, layers[i].BaseFt)
		}
	}
}

func TestParseCloudLayersClearVariants(t *testing.T) {
	for _, raw := range []string{
		"EGLL 091450Z 27010KT CAVOK 18/12 Q1015",
		"KLAX 100553Z 00000KT 10SM CLR 17/12 A2995",
		"CYYZ 121900Z 27015KT 15SM SKC M02/M10 A2992",
		"LFPG 091430Z 31008KT 9999 NSC 16/09 Q1018",
	} {
		if layers := ParseCloudLayers(raw); len(layers) != 0 {
			t.Errorf("ParseCloudLayers(%q) = %+v, want empty", raw, layers)
		}
	}
}

func TestParseCloudLayersIgnoresRemarksAndForecast(t *testing.T) {
	layers := ParseCloudLayers("KJFK 092251Z 24012KT 10SM SCT025 22/18 A3012 TEMPO BKN008 RMK OVC001")
	want := []CloudLayer{{Coverage: "SCT", BaseFt: 2500, CoveragePct: 50}}
	if !reflect.DeepEqual(layers, want) {
		t.Errorf("layers = %+v, want %+v", layers, want)
	}
}

func TestParseCloudLayersConvective(t *testing.T) {
	layers := ParseCloudLayers("TEST 010000Z 18020G35KT 3SM +TSRA BKN025CB 28/24 A2980")
	if len(layers) != 1 {
		t.Fatalf("got %d layers, want 1", len(layers))
	}
	if layers[0].Convective != "CB" {
		t.Errorf("convective = %q, want CB", layers[0].Convective)
	}
}

func TestParseTemperatureAndAltimeter(t *testing.T) {
	rpt := Parse("CYYZ 121900Z 27015KT 15SM SKC M02/M10 A2992")
	if rpt.TempC == nil || *rpt.TempC != -2 {
		t.Errorf("temp = %v, want -2", fmtPtr(rpt.TempC))
	}
	if rpt.DewpointC == nil || *rpt.DewpointC != -10 {
		t.Errorf("dewpoint = %v, want -10", fmtPtr(rpt.DewpointC))
	}
	if rpt.AltimeterInHg == nil || *rpt.AltimeterInHg != 29.92 {
		t.Errorf("altimeter = %v, want 29.92", rpt.AltimeterInHg)
	}

	rpt = Parse("EGLL 091450Z 27010KT 9999 FEW030 18/12 Q1015")
	if rpt.QNHhPa == nil || *rpt.QNHhPa != 1015 {
		t.Errorf("qnh = %v, want 1015", rpt.QNHhPa)
	}
	if rpt.Visibility == nil || rpt.Visibility.Meters == nil || *rpt.Visibility.Meters != 9999 {
		t.Errorf("metric visibility not parsed: %+v", rpt.Visibility)
	}
}

func TestParseMixedVisibility(t *testing.T) {
	rpt := Parse("KORD 100151Z 09008KT 1 1/2SM -SN BKN008 OVC015 M01/M03 A2990")
	if rpt.Visibility == nil || rpt.Visibility.StatuteMiles == nil {
		t.Fatalf("visibility not parsed: %+v", rpt.Visibility)
	}
	if *rpt.Visibility.StatuteMiles != 1.5 {
		t.Errorf("visibility = %v, want 1.5", *rpt.Visibility.StatuteMiles)
	}
}

func TestCeiling(t *testing.T) {
	rpt := Parse("KBOS 092254Z 24008KT 10SM SCT025 BKN040 OVC100 21/15 A3001")
	if c := rpt.CeilingFt(); c == nil || *c != 4000 {
		t.Errorf("ceiling = %v, want 4000", fmtPtr(c))
	}

	rpt = Parse("KJFK 092251Z 24012KT 10SM FEW250 22/18 A3012")
	if c := rpt.CeilingFt(); c != nil {
		t.Errorf("ceiling = %v, want nil", *c)
	}
}

func TestParseIdempotent(t *testing.T) {
	raw := "KJFK 092251Z 24012G20KT 10SM -RA SCT025 BKN040 22/18 A3012 RMK AO2"
	first := Parse(raw)
	second := Parse(raw)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func intPtr(v int) *int { return &v }

func fmtPtr(p *int) any {
	if p == nil {
		return "nil"
	}
	return *p
}
