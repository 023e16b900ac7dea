package notam

import (
	"strings"
	"time"
)

// Status classifies a NOTAM relative to the current time
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
)

// StatusInfo carries the computed status plus presentation hints
type StatusInfo struct {
	Status    Status `json:"status"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	TextColor string `json:"text_color"`
}

// NOTAM start/end dates arrive as MM/DD/YYYY HHMM in UTC
const dateLayout = "01/02/2006 1504"

// permSentinel marks a NOTAM with no end date
const permSentinel = "PERM"

// ComputeStatus classifies a NOTAM given its start/end dates and message
// text. A NOTAM whose schedule excludes the current instant is still
// reported as active, with an "Outside Schedule" qualifier.
func ComputeStatus(startDate, endDate, msg string, now time.Time) StatusInfo {
	now = now.UTC()

	if start, ok := parseDate(startDate); ok && start.After(now) {
		return StatusInfo{
			Status:    StatusUpcoming,
			Label:     "Upcoming",
			Color:     "#f59e0b",
			TextColor: "#1c1917",
		}
	}

	endOpen := true
	if !strings.EqualFold(strings.TrimSpace(endDate), permSentinel) {
		if end, ok := parseDate(endDate); ok {
			endOpen = end.After(now)
		}
	}

	if endOpen {
		if sched := ParseSchedule(msg); sched != nil && !sched.Contains(now) {
			return StatusInfo{
				Status:    StatusActive,
				Label:     "Active (Outside Schedule)",
				Color:     "#94a3b8",
				TextColor: "#1c1917",
			}
		}
		return StatusInfo{
			Status:    StatusActive,
			Label:     "Active",
			Color:     "#22c55e",
			TextColor: "#052e16",
		}
	}

	return StatusInfo{
		Status:    StatusExpired,
		Label:     "Expired",
		Color:     "#ef4444",
		TextColor: "#fef2f2",
	}
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
