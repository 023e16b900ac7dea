package briefing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/skybrief/skybrief/internal/notam"
	"github.com/skybrief/skybrief/internal/weather"
	"github.com/skybrief/skybrief/pkg/logger"
)

type fakeProvider struct {
	calls    int
	response string
	lastUser string
}

func (f *fakeProvider) ChatCompletion(ctx context.Context, messages []ChatMessage, config ChatConfig) (string, error) {
	f.calls++
	for _, m := range messages {
		if m.Role == "user" {
			f.lastUser = m.Content
		}
	}
	return f.response, nil
}

type fakeWeather struct {
	data *weather.WeatherData
}

func (f *fakeWeather) GetWeatherData() *weather.WeatherData {
	return f.data
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	return cfg
}

func TestGenerateBuildsPromptFromSnapshot(t *testing.T) {
	provider := &fakeProvider{response: "VFR conditions, no significant NOTAMs."}
	wx := &fakeWeather{data: &weather.WeatherData{
		METAR: &weather.METARResponse{
			RawOb: "CYYZ 151800Z 24015G25KT 15SM FEW050 22/12 A3001",
		},
		DecodedMETAR: &weather.DecodedReport{Summary: "Wind 240° at 15 knots, gusting 25 knots."},
		NOTAMs: []weather.DecodedNOTAM{
			{
				NOTAMRecord: weather.NOTAMRecord{Number: "A1234/24", Text: "RWY 05/23 CLSD"},
				Status:      notam.StatusInfo{Status: notam.StatusActive, Label: "Active"},
			},
		},
		LastUpdated: time.Now().UTC(),
	}}

	svc := NewService(testConfig(), provider, wx, logger.NewNop())

	briefing, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if briefing.Text != provider.response {
		t.Errorf("briefing.Text = %q, want %q", briefing.Text, provider.response)
	}
	for _, want := range []string{"24015G25KT", "gusting 25 knots", "A1234/24", "RWY 05/23 CLSD"} {
		if !strings.Contains(provider.lastUser, want) {
			t.Errorf("prompt missing %q:\n%s", want, provider.lastUser)
		}
	}
}

func TestGenerateCachesUntilDataChanges(t *testing.T) {
	provider := &fakeProvider{response: "Briefing."}
	updated := time.Now().UTC()
	wx := &fakeWeather{data: &weather.WeatherData{
		METAR:       &weather.METARResponse{RawOb: "CYYZ 151800Z 00000KT CAVOK 20/10 Q1020"},
		LastUpdated: updated,
	}}

	svc := NewService(testConfig(), provider, wx, logger.NewNop())

	if _, err := svc.Generate(context.Background()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, err := svc.Generate(context.Background()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (second call should hit cache)", provider.calls)
	}

	// Fresher data invalidates the cache
	wx.data = &weather.WeatherData{
		METAR:       &weather.METARResponse{RawOb: "CYYZ 151900Z 00000KT CAVOK 21/10 Q1019"},
		LastUpdated: updated.Add(10 * time.Minute),
	}
	if _, err := svc.Generate(context.Background()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if provider.calls != 2 {
		t.Errorf("provider called %d times, want 2 after data refresh", provider.calls)
	}
}

func TestGenerateDisabled(t *testing.T) {
	cfg := DefaultConfig()
	svc := NewService(cfg, &fakeProvider{}, &fakeWeather{data: &weather.WeatherData{}}, logger.NewNop())
	if _, err := svc.Generate(context.Background()); err == nil {
		t.Fatal("Generate() with disabled config should return an error")
	}
}

func TestBuildPromptEmpty(t *testing.T) {
	got := buildPrompt(&weather.WeatherData{})
	if got != "No weather data is currently available." {
		t.Errorf("buildPrompt(empty) = %q", got)
	}
}
