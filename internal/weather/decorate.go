package weather

import (
	"fmt"
	"time"

	"github.com/skybrief/skybrief/internal/metar"
	"github.com/skybrief/skybrief/internal/notam"
)

// decodeRaw runs the report decoder over a raw METAR/TAF string
func decodeRaw(raw string) *DecodedReport {
	if raw == "" {
		return nil
	}
	rpt := metar.Parse(raw)
	return &DecodedReport{
		Summary:   metar.DecodeReport(raw),
		Report:    rpt,
		CeilingFt: rpt.CeilingFt(),
	}
}

// decorateNOTAMs runs the NOTAM decoder over each fetched record
func decorateNOTAMs(records []NOTAMRecord, now time.Time) []DecodedNOTAM {
	decoded := make([]DecodedNOTAM, 0, len(records))
	for _, rec := range records {
		d := DecodedNOTAM{
			NOTAMRecord: rec,
			Status:      notam.ComputeStatus(rec.StartDate, rec.EndDate, rec.Text, now),
			Schedule:    notam.ParseSchedule(rec.Text),
			Coordinates: notam.ParseCoordinates(rec.Text),
		}
		if limits, ok := notam.ParseAltitudeLimits(rec.Text); ok {
			d.AltitudeLimits = limits
		}
		decoded = append(decoded, d)
	}
	return decoded
}

// buildWeatherData merges fetch results with the previous snapshot and
// attaches the decoded views. Failed fetches keep the previous value and
// contribute a fetch error instead.
func buildWeatherData(prev *WeatherData, results []FetchResult, now time.Time) *WeatherData {
	data := &WeatherData{
		LastUpdated: now,
		FetchErrors: []string{},
	}
	if prev != nil {
		data.METAR = prev.METAR
		data.TAF = prev.TAF
		data.NOTAMs = prev.NOTAMs
		data.DecodedMETAR = prev.DecodedMETAR
		data.DecodedTAF = prev.DecodedTAF
	}

	for _, result := range results {
		if result.Err != nil {
			data.FetchErrors = append(data.FetchErrors,
				fmt.Sprintf("%s: %s", result.Type, result.Err.Error()))
			continue
		}

		switch result.Type {
		case WeatherTypeMETAR:
			if m, ok := result.Data.(*METARResponse); ok {
				data.METAR = m
				data.DecodedMETAR = decodeRaw(m.RawOb)
			}
		case WeatherTypeTAF:
			if t, ok := result.Data.(*TAFResponse); ok {
				data.TAF = t
				data.DecodedTAF = decodeRaw(t.RawTAF)
			}
		case WeatherTypeNOTAMs:
			if records, ok := result.Data.([]NOTAMRecord); ok {
				data.NOTAMs = decorateNOTAMs(records, now)
			}
		}
	}

	return data
}
