package search

import (
	"sort"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/model"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/parser"
)

// ComputeStats summarizes the dated records of an ordered result set.
// It returns nil when fewer than two records carry a known date.
func ComputeStats(records []model.MatchRecord) *model.Stats {
	if len(records) < 2 {
		return nil
	}

	var dated []parser.Timestamp
	for _, r := range records {
		if ts := parser.ParseDate(r.Date); !ts.IsUnknown() {
			dated = append(dated, ts)
		}
	}
	if len(dated) < 2 {
		return nil
	}

	// newest first, regardless of how the caller ordered the records
	sort.Slice(dated, func(i, j int) bool { return dated[i].After(dated[j]) })
	newest, oldest := dated[0].Time(), dated[len(dated)-1].Time()
	span := newest.Sub(oldest)

	var sumDays int
	var sumHours float64
	for i := 0; i < len(dated)-1; i++ {
		gap := dated[i].Time().Sub(dated[i+1].Time())
		sumDays += int(gap.Hours() / 24)
		sumHours += gap.Hours()
	}
	intervals := float64(len(dated) - 1)

	return &model.Stats{
		TotalDays:        int(span.Hours() / 24),
		TotalHours:       span.Hours(),
		MeanIntervalDays: float64(sumDays) / intervals,
		MeanIntervalHrs:  sumHours / intervals,
		Newest:           newest,
		Oldest:           oldest,
		Dated:            len(dated),
		Total:            len(records),
	}
}

// BuildTimeline labels each record of an ordered result set with its position and
// the time elapsed since the previous (newer) record.
func BuildTimeline(records []model.MatchRecord) []model.TimelineEntry {
	out := make([]model.TimelineEntry, 0, len(records))
	var prev parser.Timestamp
	for i, r := range records {
		entry := model.TimelineEntry{
			Ordinal:  i + 1,
			Position: model.PositionMiddle,
			Date:     r.Date,
		}
		switch {
		case i == 0:
			entry.Position = model.PositionNewest
		case i == len(records)-1:
			entry.Position = model.PositionOldest
		}

		ts := parser.ParseDate(r.Date)
		if i > 0 && !ts.IsUnknown() && !prev.IsUnknown() {
			gap := prev.Time().Sub(ts.Time()).Hours()
			entry.GapHours = &gap
		}
		prev = ts
		out = append(out, entry)
	}
	return out
}
