// Package airspace lays out vertically overlapping altitude bands into
// horizontal lanes for banded chart rendering.
package airspace

import "sort"

// Feature is an airspace region as it arrives from a map feature query:
// numeric bounds plus unit tags.
type Feature struct {
	Name      string  `json:"name"`
	ICAOClass string  `json:"icao_class"`
	Type      string  `json:"type"`
	Lower     float64 `json:"lower"`
	LowerUnit string  `json:"lower_unit"` // "FL" or "FT"
	Upper     float64 `json:"upper"`
	UpperUnit string  `json:"upper_unit"`
}

// Band is a feature with bounds normalized to feet.
type Band struct {
	Feature
	LowerFt float64 `json:"lower_ft"`
	UpperFt float64 `json:"upper_ft"`
}

// PlacedBand is a band with its lane assignment and normalized chart
// geometry. Top and Height are fractions of the chart height; Width is the
// fraction of the horizontal space the band may occupy in its lane.
type PlacedBand struct {
	Band
	Lane   int     `json:"lane"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

// Layout is the complete immutable result of laying out a feature set.
type Layout struct {
	Bands     []PlacedBand `json:"bands"`
	LaneCount int          `json:"lane_count"`
	MaxAltFt  float64      `json:"max_alt_ft"`
}

// NormalizeFeet converts a bound to feet. Flight levels are hundreds of
// feet; anything else passes through unchanged.
func NormalizeFeet(value float64, unit string) float64 {
	if unit == "FL" {
		return value * 100
	}
	return value
}

// overlaps reports whether two bands overlap vertically. A shared boundary
// point does not count as overlap, so touching bands may share a lane.
func overlaps(a, b Band) bool {
	return a.UpperFt > b.LowerFt && b.UpperFt > a.LowerFt
}

// Compute assigns each feature to the first lane with no vertically
// overlapping occupant (first-fit interval coloring over a stable
// lower-bound sort, which yields the minimum lane count) and derives the
// normalized chart geometry. An empty input yields an empty layout.
func Compute(features []Feature) Layout {
	if len(features) == 0 {
		return Layout{}
	}

	bands := make([]Band, 0, len(features))
	maxAlt := 0.0
	for _, f := range features {
		b := Band{
			Feature: f,
			LowerFt: NormalizeFeet(f.Lower, f.LowerUnit),
			UpperFt: NormalizeFeet(f.Upper, f.UpperUnit),
		}
		if b.UpperFt > maxAlt {
			maxAlt = b.UpperFt
		}
		bands = append(bands, b)
	}

	// Ties keep input order; the tiebreak only affects cosmetic lane order
	sort.SliceStable(bands, func(i, j int) bool {
		return bands[i].LowerFt < bands[j].LowerFt
	})

	// First-fit: lanes[i] holds the indices (into bands) already placed there
	var lanes [][]int
	laneOf := make([]int, len(bands))
	for i, b := range bands {
		assigned := -1
		for lane, members := range lanes {
			free := true
			for _, j := range members {
				if overlaps(b, bands[j]) {
					free = false
					break
				}
			}
			if free {
				assigned = lane
				break
			}
		}
		if assigned == -1 {
			assigned = len(lanes)
			lanes = append(lanes, nil)
		}
		lanes[assigned] = append(lanes[assigned], i)
		laneOf[i] = assigned
	}

	placed := make([]PlacedBand, 0, len(bands))
	for i, b := range bands {
		// Active lanes at this band: lanes holding any overlapping band,
		// plus its own. A band with no overlapping siblings renders at
		// full width no matter how many lanes the chart has.
		active := map[int]bool{laneOf[i]: true}
		for j, other := range bands {
			if j != i && overlaps(b, other) {
				active[laneOf[j]] = true
			}
		}

		var top, height float64
		if maxAlt > 0 {
			top = (maxAlt - b.UpperFt) / maxAlt
			height = (b.UpperFt - b.LowerFt) / maxAlt
		}
		placed = append(placed, PlacedBand{
			Band:   b,
			Lane:   laneOf[i],
			Top:    top,
			Height: height,
			Width:  1.0 / float64(len(active)),
		})
	}

	return Layout{
		Bands:     placed,
		LaneCount: len(lanes),
		MaxAltFt:  maxAlt,
	}
}
