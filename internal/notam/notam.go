// Package notam decodes ICAO-format NOTAM messages: field extraction,
// activity schedules, altitude limits, coordinates and status.
package notam

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// A field value runs until the next field marker (single uppercase letter
// followed by a closing paren) or a line break.
var (
	nextMarkerRe = regexp.MustCompile(`\s[A-Z]\)`)
	dayRangeRe   = regexp.MustCompile(`\b(SUN|MON|TUE|WED|THU|FRI|SAT)-(SUN|MON|TUE|WED|THU|FRI|SAT)\b`)
	singleDayRe  = regexp.MustCompile(`\b(SUN|MON|TUE|WED|THU|FRI|SAT)\b`)
	timeRangeRe  = regexp.MustCompile(`\b(\d{4})-(\d{4})\b`)
)

var weekdays = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// Schedule is the decoded D) availability window of a NOTAM.
// A nil Schedule means the NOTAM is always active.
type Schedule struct {
	Daily    bool         `json:"daily,omitempty"`
	HasDays  bool         `json:"has_days,omitempty"`
	DayFrom  time.Weekday `json:"day_from,omitempty"`
	DayTo    time.Weekday `json:"day_to,omitempty"`
	HasTimes bool         `json:"has_times,omitempty"`
	TimeFrom string       `json:"time_from,omitempty"` // HH:MM
	TimeTo   string       `json:"time_to,omitempty"`   // HH:MM
	Raw      string       `json:"raw"`
}

// ExtractField returns the value of the given ICAO field letter, or ""
// when the field is absent.
func ExtractField(msg, letter string) string {
	re, err := regexp.Compile(`(?:^|[\s(])` + letter + `\)`)
	if err != nil {
		return ""
	}
	loc := re.FindStringIndex(msg)
	if loc == nil {
		return ""
	}

	rest := msg[loc[1]:]
	if nl := strings.IndexAny(rest, "\r\n"); nl >= 0 {
		rest = rest[:nl]
	}
	if m := nextMarkerRe.FindStringIndex(rest); m != nil {
		rest = rest[:m[0]]
	}
	return strings.TrimSpace(rest)
}

// ParseSchedule decodes the D) field of an ICAO NOTAM message.
// Returns nil when no schedule is present.
func ParseSchedule(msg string) *Schedule {
	field := ExtractField(msg, "D")
	if field == "" {
		return nil
	}

	sched := &Schedule{Raw: field}

	if strings.Contains(field, "DAILY") {
		sched.Daily = true
	} else if m := dayRangeRe.FindStringSubmatch(field); m != nil {
		sched.HasDays = true
		sched.DayFrom = weekdays[m[1]]
		sched.DayTo = weekdays[m[2]]
	} else if m := singleDayRe.FindStringSubmatch(field); m != nil {
		sched.HasDays = true
		sched.DayFrom = weekdays[m[1]]
		sched.DayTo = weekdays[m[1]]
	}

	if m := timeRangeRe.FindStringSubmatch(field); m != nil {
		sched.HasTimes = true
		sched.TimeFrom = normalizeTime(m[1])
		sched.TimeTo = normalizeTime(m[2])
	}

	return sched
}

// normalizeTime converts a 4-digit time token to HH:MM
func normalizeTime(hhmm string) string {
	return hhmm[:2] + ":" + hhmm[2:]
}

// ActiveAt evaluates whether the given UTC instant falls inside the NOTAM's
// D) schedule. A missing or unintelligible schedule is treated as always
// active (fail-open).
func ActiveAt(msg string, now time.Time) bool {
	sched := ParseSchedule(msg)
	if sched == nil {
		return true
	}
	return sched.Contains(now)
}

// Contains reports whether the instant falls inside the schedule window.
func (s *Schedule) Contains(now time.Time) bool {
	now = now.UTC()

	if s.HasDays && !s.Daily {
		day := now.Weekday()
		if s.DayFrom <= s.DayTo {
			if day < s.DayFrom || day > s.DayTo {
				return false
			}
		} else {
			// Day range spans the week boundary, e.g. SAT-MON
			if day < s.DayFrom && day > s.DayTo {
				return false
			}
		}
	}

	if s.HasTimes {
		minutes := now.Hour()*60 + now.Minute()
		from, okFrom := timeToMinutes(s.TimeFrom)
		to, okTo := timeToMinutes(s.TimeTo)
		if !okFrom || !okTo {
			return true
		}
		if from <= to {
			if minutes < from || minutes > to {
				return false
			}
		} else {
			// Time range spans midnight, e.g. 2300-0200
			if minutes < from && minutes > to {
				return false
			}
		}
	}

	return true
}

func timeToMinutes(hhmm string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ParseAltitudeLimits composes a human-readable altitude band from the F)
// (lower) and G) (upper) fields. Returns ("", false) when neither is present.
func ParseAltitudeLimits(msg string) (string, bool) {
	lower := translateAltitude(ExtractField(msg, "F"))
	upper := translateAltitude(ExtractField(msg, "G"))

	switch {
	case lower != "" && upper != "":
		return fmt.Sprintf("%s - %s", lower, upper), true
	case lower != "":
		return fmt.Sprintf("%s and above", lower), true
	case upper != "":
		return fmt.Sprintf("Surface - %s", upper), true
	default:
		return "", false
	}
}

func translateAltitude(field string) string {
	switch field {
	case "":
		return ""
	case "SFC":
		return "Surface"
	case "UNL":
		return "Unlimited"
	default:
		return field
	}
}
