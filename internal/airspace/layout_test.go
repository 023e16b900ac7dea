package airspace

import (
	"reflect"
	"testing"
)

func ft(name string, lower, upper float64) Feature {
	return Feature{Name: name, Lower: lower, LowerUnit: "FT", Upper: upper, UpperUnit: "FT"}
}

func findBand(t *testing.T, layout Layout, name string) PlacedBand {
	t.Helper()
	for _, b := range layout.Bands {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("band %q not found in layout", name)
	return PlacedBand{}
}

func TestNormalizeFeet(t *testing.T) {
	if got := NormalizeFeet(95, "FL"); got != 9500 {
		t.Errorf("FL95 = %f ft, want 9500", got)
	}
	if got := NormalizeFeet(4500, "FT"); got != 4500 {
		t.Errorf("4500 FT = %f, want 4500", got)
	}
}

func TestComputeLaneAssignment(t *testing.T) {
	// A and B overlap; C overlaps neither and reuses A's lane.
	layout := Compute([]Feature{
		ft("A", 0, 5000),
		ft("B", 3000, 8000),
		ft("C", 9000, 12000),
	})

	if layout.LaneCount != 2 {
		t.Errorf("lane count = %d, want 2", layout.LaneCount)
	}

	a := findBand(t, layout, "A")
	b := findBand(t, layout, "B")
	c := findBand(t, layout, "C")

	if a.Lane != 0 {
		t.Errorf("A lane = %d, want 0", a.Lane)
	}
	if b.Lane != 1 {
		t.Errorf("B lane = %d, want 1", b.Lane)
	}
	if c.Lane != 0 {
		t.Errorf("C lane = %d, want 0 (reusing A's lane)", c.Lane)
	}

	// No two bands sharing a lane may overlap
	for i, x := range layout.Bands {
		for _, y := range layout.Bands[i+1:] {
			if x.Lane == y.Lane && overlaps(x.Band, y.Band) {
				t.Errorf("overlapping bands %s and %s share lane %d", x.Name, y.Name, x.Lane)
			}
		}
	}
}

func TestComputeWidths(t *testing.T) {
	layout := Compute([]Feature{
		ft("A", 0, 5000),
		ft("B", 3000, 8000),
		ft("C", 9000, 12000),
	})

	a := findBand(t, layout, "A")
	b := findBand(t, layout, "B")
	c := findBand(t, layout, "C")

	if a.Width != 0.5 || b.Width != 0.5 {
		t.Errorf("overlapping bands widths = %f, %f, want 0.5 each", a.Width, b.Width)
	}
	// C shares no altitude with anything, so it renders at full width even
	// though the chart has two lanes.
	if c.Width != 1.0 {
		t.Errorf("isolated band width = %f, want 1.0", c.Width)
	}
}

func TestComputeTouchingBoundsShareLane(t *testing.T) {
	layout := Compute([]Feature{
		ft("LOW", 0, 5000),
		ft("HIGH", 5000, 10000),
	})
	if layout.LaneCount != 1 {
		t.Errorf("lane count = %d, want 1 for touching bands", layout.LaneCount)
	}
	for _, band := range layout.Bands {
		if band.Width != 1.0 {
			t.Errorf("band %s width = %f, want 1.0", band.Name, band.Width)
		}
	}
}

func TestComputeVerticalGeometry(t *testing.T) {
	layout := Compute([]Feature{
		ft("A", 0, 5000),
		ft("B", 5000, 10000),
	})
	if layout.MaxAltFt != 10000 {
		t.Errorf("max alt = %f, want 10000", layout.MaxAltFt)
	}

	a := findBand(t, layout, "A")
	b := findBand(t, layout, "B")

	// Higher altitudes render higher on screen (smaller top fraction)
	if b.Top != 0 {
		t.Errorf("B top = %f, want 0", b.Top)
	}
	if a.Top != 0.5 {
		t.Errorf("A top = %f, want 0.5", a.Top)
	}
	if a.Height != 0.5 || b.Height != 0.5 {
		t.Errorf("heights = %f, %f, want 0.5 each", a.Height, b.Height)
	}
}

func TestComputeFlightLevels(t *testing.T) {
	layout := Compute([]Feature{
		{Name: "CTA", Lower: 65, LowerUnit: "FL", Upper: 195, UpperUnit: "FL"},
	})
	band := findBand(t, layout, "CTA")
	if band.LowerFt != 6500 || band.UpperFt != 19500 {
		t.Errorf("FL bounds = %f-%f ft, want 6500-19500", band.LowerFt, band.UpperFt)
	}
}

func TestComputeEmpty(t *testing.T) {
	layout := Compute(nil)
	if len(layout.Bands) != 0 || layout.LaneCount != 0 {
		t.Errorf("empty input produced %+v", layout)
	}
}

func TestComputeDegenerateBandPassesThrough(t *testing.T) {
	// Zero-height bands are unvalidated input: they pass through and take
	// part in lane assignment like any other band.
	layout := Compute([]Feature{
		ft("POINT", 3000, 3000),
		ft("A", 0, 5000),
	})
	if layout.LaneCount != 2 {
		t.Errorf("lane count = %d, want 2", layout.LaneCount)
	}
	point := findBand(t, layout, "POINT")
	if point.Height != 0 {
		t.Errorf("degenerate band height = %f, want 0", point.Height)
	}
}

func TestComputeDeterministic(t *testing.T) {
	features := []Feature{
		ft("A", 0, 5000),
		ft("B", 0, 5000),
		ft("C", 2000, 9000),
		ft("D", 8000, 12000),
	}
	first := Compute(features)
	second := Compute(features)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("layout is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
