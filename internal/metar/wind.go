package metar

import "math"

// WindComponents holds the wind projected onto a runway heading.
// Headwind is signed: negative values are a tailwind. Crosswind is
// always non-negative.
type WindComponents struct {
	HeadwindKt  int `json:"headwind_kt"`
	CrosswindKt int `json:"crosswind_kt"`
}

// RunwayEnd identifies one end of a runway by its designator and
// true heading in degrees.
type RunwayEnd struct {
	Ident      string  `json:"ident"`
	HeadingDeg float64 `json:"heading_deg"`
}

// FavoredWind is the wind breakdown for the runway end a pilot would
// prefer given the current wind.
type FavoredWind struct {
	End   RunwayEnd       `json:"end"`
	Wind  WindComponents  `json:"wind"`
	Gusts *WindComponents `json:"gusts,omitempty"`
}

// CalculateWindComponents projects a wind vector onto a runway heading.
func CalculateWindComponents(windDirDeg, windSpeedKt, runwayHeadingDeg float64) WindComponents {
	delta := (windDirDeg - runwayHeadingDeg) * math.Pi / 180.0
	return WindComponents{
		HeadwindKt:  int(math.Round(windSpeedKt * math.Cos(delta))),
		CrosswindKt: int(math.Round(math.Abs(windSpeedKt * math.Sin(delta)))),
	}
}

// FavoredEnd picks the runway end with the algebraically larger headwind
// (least tailwind) and projects the wind, and gusts if present, onto it.
// Returns nil when the wind is variable or no ends are given.
func FavoredEnd(w *Wind, ends []RunwayEnd) *FavoredWind {
	if w == nil || w.DirectionDeg == nil || len(ends) == 0 {
		return nil
	}

	dir := float64(*w.DirectionDeg)
	speed := float64(w.SpeedKt)

	best := FavoredWind{
		End:  ends[0],
		Wind: CalculateWindComponents(dir, speed, ends[0].HeadingDeg),
	}
	for _, end := range ends[1:] {
		comps := CalculateWindComponents(dir, speed, end.HeadingDeg)
		if comps.HeadwindKt > best.Wind.HeadwindKt {
			best = FavoredWind{End: end, Wind: comps}
		}
	}

	// Gusts are projected onto the favored end only
	if w.GustKt != nil {
		gusts := CalculateWindComponents(dir, float64(*w.GustKt), best.End.HeadingDeg)
		best.Gusts = &gusts
	}
	return &best
}
