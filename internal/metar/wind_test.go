package metar

import "testing"

func TestCalculateWindComponents(t *testing.T) {
	tests := []struct {
		name     string
		windDir  float64
		speed    float64
		heading  float64
		headwind int
		crosswnd int
	}{
		{"direct headwind", 360, 20, 360, 20, 0},
		{"direct crosswind", 90, 20, 360, 0, 20},
		{"direct tailwind", 180, 20, 360, -20, 0},
		{"quartering headwind", 45, 20, 360, 14, 14},
		{"quartering tailwind", 135, 20, 360, -14, 14},
		{"crosswind from the left", 270, 20, 360, 0, 20},
		{"calm", 360, 0, 360, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateWindComponents(tt.windDir, tt.speed, tt.heading)
			if got.HeadwindKt != tt.headwind {
				t.Errorf("headwind = %d, want %d", got.HeadwindKt, tt.headwind)
			}
			if got.CrosswindKt != tt.crosswnd {
				t.Errorf("crosswind = %d, want %d", got.CrosswindKt, tt.crosswnd)
			}
			if got.CrosswindKt < 0 {
				t.Errorf("crosswind must be non-negative, got %d", got.CrosswindKt)
			}
		})
	}
}

func TestFavoredEnd(t *testing.T) {
	ends := []RunwayEnd{
		{Ident: "36", HeadingDeg: 360},
		{Ident: "18", HeadingDeg: 180},
	}

	gust := 28
	wind := &Wind{DirectionDeg: intPtr(350), SpeedKt: 18, GustKt: &gust}

	fav := FavoredEnd(wind, ends)
	if fav == nil {
		t.Fatal("FavoredEnd returned nil")
	}
	if fav.End.Ident != "36" {
		t.Errorf("favored end = %s, want 36", fav.End.Ident)
	}
	if fav.Wind.HeadwindKt <= 0 {
		t.Errorf("headwind on favored end = %d, want positive", fav.Wind.HeadwindKt)
	}
	if fav.Gusts == nil {
		t.Fatal("gust components missing")
	}
	// Gusts are projected onto the favored end, so the gust headwind must
	// exceed the steady-state headwind.
	if fav.Gusts.HeadwindKt <= fav.Wind.HeadwindKt {
		t.Errorf("gust headwind %d not greater than steady %d", fav.Gusts.HeadwindKt, fav.Wind.HeadwindKt)
	}
}

func TestFavoredEndPicksLeastTailwind(t *testing.T) {
	// Wind is a pure crosswind for both ends; headwinds tie at 0 so the
	// first end in input order wins.
	ends := []RunwayEnd{
		{Ident: "36", HeadingDeg: 360},
		{Ident: "18", HeadingDeg: 180},
	}
	wind := &Wind{DirectionDeg: intPtr(90), SpeedKt: 10}

	fav := FavoredEnd(wind, ends)
	if fav == nil {
		t.Fatal("FavoredEnd returned nil")
	}
	if fav.End.Ident != "36" {
		t.Errorf("favored end = %s, want 36 (stable on tie)", fav.End.Ident)
	}
}

func TestFavoredEndVariableWind(t *testing.T) {
	wind := &Wind{DirectionDeg: nil, SpeedKt: 5}
	if fav := FavoredEnd(wind, []RunwayEnd{{Ident: "09", HeadingDeg: 90}}); fav != nil {
		t.Errorf("FavoredEnd with variable wind = %+v, want nil", fav)
	}
	if fav := FavoredEnd(nil, []RunwayEnd{{Ident: "09", HeadingDeg: 90}}); fav != nil {
		t.Errorf("FavoredEnd with nil wind = %+v, want nil", fav)
	}
}
