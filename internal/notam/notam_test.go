package notam

import (
	"testing"
	"time"
)

const sampleNOTAM = `Q) EGTT/QWULW/IV/BO/W/000/050/5107N00210W002
A) EGTT B) 2401150600 C) 2403151800
D) MON-FRI 0600-2200
E) MODEL ACFT FLYING WI 1NM RADIUS OF 510718N 0021047W
F) SFC G) 5000FT AMSL`

func TestExtractField(t *testing.T) {
	tests := []struct {
		letter string
		want   string
	}{
		{"D", "MON-FRI 0600-2200"},
		{"F", "SFC"},
		{"G", "5000FT AMSL"},
		{"A", "EGTT"},
		{"Z", ""},
	}
	for _, tt := range tests {
		if got := ExtractField(sampleNOTAM, tt.letter); got != tt.want {
			t.Errorf("ExtractField(%s) = %q, want %q", tt.letter, got, tt.want)
		}
	}
}

func TestParseSchedule(t *testing.T) {
	sched := ParseSchedule(sampleNOTAM)
	if sched == nil {
		t.Fatal("ParseSchedule returned nil")
	}
	if !sched.HasDays || sched.DayFrom != time.Monday || sched.DayTo != time.Friday {
		t.Errorf("days = %v-%v, want Monday-Friday", sched.DayFrom, sched.DayTo)
	}
	if !sched.HasTimes || sched.TimeFrom != "06:00" || sched.TimeTo != "22:00" {
		t.Errorf("times = %s-%s, want 06:00-22:00", sched.TimeFrom, sched.TimeTo)
	}

	if s := ParseSchedule("E) CRANE OPERATING NO SCHEDULE HERE"); s != nil {
		t.Errorf("schedule without D) field = %+v, want nil", s)
	}

	daily := ParseSchedule("D) DAILY 0800-1700\nE) TEXT")
	if daily == nil || !daily.Daily || !daily.HasTimes {
		t.Errorf("DAILY schedule = %+v", daily)
	}
}

func TestActiveAt(t *testing.T) {
	// 2024-01-15 is a Monday
	monday1200 := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	saturday1200 := time.Date(2024, 1, 13, 12, 0, 0, 0, time.UTC)
	monday0100 := time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC)
	wednesday0100 := time.Date(2024, 1, 17, 1, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		msg  string
		now  time.Time
		want bool
	}{
		{"weekday range inside", "D) MON-FRI 0600-2200", monday1200, true},
		{"weekday range wrong day", "D) MON-FRI 0600-2200", saturday1200, false},
		{"weekday range outside hours", "D) MON-FRI 0600-2200", monday0100, false},
		{"day range wraps week", "D) SAT-MON", saturday1200, true},
		{"day range wraps week monday", "D) SAT-MON", monday1200, true},
		{"day range wraps week excluded", "D) SAT-MON", wednesday0100, false},
		{"time range wraps midnight inside", "D) DAILY 2300-0200", monday0100, true},
		{"time range wraps midnight outside", "D) DAILY 2300-0200", monday1200, false},
		{"single day match", "D) MON", monday1200, true},
		{"single day no match", "D) MON", saturday1200, false},
		{"no schedule is always active", "E) CRANE OPERATING", monday1200, true},
		{"unintelligible schedule fails open", "D) H24 EXC HOL", monday1200, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActiveAt(tt.msg, tt.now); got != tt.want {
				t.Errorf("ActiveAt(%q, %v) = %v, want %v", tt.msg, tt.now, got, tt.want)
			}
		})
	}
}

func TestParseAltitudeLimits(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
		ok   bool
	}{
		{"surface to altitude", "F) SFC G) 5000FT AMSL", "Surface - 5000FT AMSL", true},
		{"lower only", "F) 2000FT AMSL", "2000FT AMSL and above", true},
		{"upper only", "G) FL100", "Surface - FL100", true},
		{"unlimited upper", "F) SFC G) UNL", "Surface - Unlimited", true},
		{"no limits", "E) CRANE OPERATING", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAltitudeLimits(tt.msg)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseAltitudeLimits(%q) = (%q, %v), want (%q, %v)", tt.msg, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseCoordinates(t *testing.T) {
	coords := ParseCoordinates("MODEL ACFT FLYING WI 1NM RADIUS OF 510718N 0021047W")
	if coords == nil {
		t.Fatal("ParseCoordinates returned nil")
	}
	if !near(coords.LatitudeDeg, 51.1217) {
		t.Errorf("latitude = %f, want ~51.1217", coords.LatitudeDeg)
	}
	if !near(coords.LongitudeDeg, -2.1797) {
		t.Errorf("longitude = %f, want ~-2.1797", coords.LongitudeDeg)
	}
	if coords.RadiusNM == nil || *coords.RadiusNM != 1 {
		t.Errorf("radius = %v, want 1", coords.RadiusNM)
	}
}

func TestParseCoordinatesPatternPriority(t *testing.T) {
	// The bare pair appears first in the text, but the PSN-qualified pair
	// must win.
	msg := "REF 400000N 0740000W UNRELATED. PSN 510718N 0021047W"
	coords := ParseCoordinates(msg)
	if coords == nil {
		t.Fatal("ParseCoordinates returned nil")
	}
	if !near(coords.LatitudeDeg, 51.1217) {
		t.Errorf("latitude = %f, want PSN coordinates", coords.LatitudeDeg)
	}
}

func TestParseCoordinatesInvalidFallsThrough(t *testing.T) {
	// Radius-qualified pair has 91 degrees latitude; the valid PSN pair
	// further on must be used instead.
	msg := "WI 5NM RADIUS OF 917718N 0021047W AREA. PSN 510718N 0021047W"
	coords := ParseCoordinates(msg)
	if coords == nil {
		t.Fatal("ParseCoordinates returned nil")
	}
	if coords.RadiusNM != nil {
		t.Errorf("radius should not survive an invalid radius candidate, got %v", *coords.RadiusNM)
	}
	if !near(coords.LatitudeDeg, 51.1217) {
		t.Errorf("latitude = %f, want 51.1217", coords.LatitudeDeg)
	}
}

func TestParseCoordinatesRejectsOutOfRange(t *testing.T) {
	for _, msg := range []string{
		"PSN 516918N 0021047W", // minutes >= 60
		"PSN 510769N 0021047W", // seconds >= 60
		"PSN 910000N 0021047W", // latitude > 90
		"PSN 510718N 1810000W", // longitude > 180
		"NO COORDINATES IN THIS TEXT",
	} {
		if coords := ParseCoordinates(msg); coords != nil {
			t.Errorf("ParseCoordinates(%q) = %+v, want nil", msg, coords)
		}
	}
}

func TestComputeStatus(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) // Monday noon

	tests := []struct {
		name  string
		start string
		end   string
		msg   string
		want  Status
		label string
	}{
		{"future start", "02/01/2024 0600", "03/01/2024 1800", "", StatusUpcoming, "Upcoming"},
		{"permanent active", "01/01/2024 0000", "PERM", "E) OBSTACLE", StatusActive, "Active"},
		{"active within schedule", "01/01/2024 0000", "06/01/2024 0000", "D) MON-FRI 0600-2200", StatusActive, "Active"},
		{"active outside schedule", "01/01/2024 0000", "06/01/2024 0000", "D) SAT-SUN", StatusActive, "Active (Outside Schedule)"},
		{"expired", "01/01/2023 0000", "06/01/2023 0000", "", StatusExpired, "Expired"},
		{"unparseable dates fail open", "soon", "later", "", StatusActive, "Active"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStatus(tt.start, tt.end, tt.msg, now)
			if got.Status != tt.want {
				t.Errorf("status = %s, want %s", got.Status, tt.want)
			}
			if got.Label != tt.label {
				t.Errorf("label = %q, want %q", got.Label, tt.label)
			}
			if got.Color == "" || got.TextColor == "" {
				t.Error("status colors must be set")
			}
		})
	}
}

func near(got, want float64) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.001
}
