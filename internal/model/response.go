package model

import "time"

// SheetStatus outcome of scanning one worksheet
type SheetStatus string

const (
	SheetSearched SheetStatus = "searched"
	SheetSkipped  SheetStatus = "skipped"
	SheetError    SheetStatus = "error"
)

// SheetSummary per-worksheet scan report
type SheetSummary struct {
	Spreadsheet string      `json:"spreadsheet"`
	Worksheet   string      `json:"worksheet"`
	Status      SheetStatus `json:"status"`
	Rows        int         `json:"rows"`
	Matches     int         `json:"matches"`
	Error       string      `json:"error,omitempty"`
}

// Stats chronological statistics over the dated records of a result set
type Stats struct {
	TotalDays        int       `json:"totalDays"`
	TotalHours       float64   `json:"totalHours"`
	MeanIntervalDays float64   `json:"meanIntervalDays"`
	MeanIntervalHrs  float64   `json:"meanIntervalHours"`
	Newest           time.Time `json:"newest"`
	Oldest           time.Time `json:"oldest"`
	Dated            int       `json:"dated"`
	Total            int       `json:"total"`
}

// TimelinePosition place of a record inside the ordered result set
type TimelinePosition string

const (
	PositionNewest TimelinePosition = "newest"
	PositionMiddle TimelinePosition = "middle"
	PositionOldest TimelinePosition = "oldest"
)

// TimelineEntry one step of the chronological timeline
type TimelineEntry struct {
	Ordinal  int              `json:"ordinal"` // 1-based
	Position TimelinePosition `json:"position"`
	Date     string           `json:"date"`
	// GapHours is the time elapsed since the previous (newer) entry.
	// Nil when either date is unknown.
	GapHours *float64 `json:"gapHours,omitempty"`
}

// SearchResponse combined answer of one plate query
type SearchResponse struct {
	ID          string          `json:"id"`
	Query       string          `json:"query"`
	Records     []MatchRecord   `json:"records"`
	Verdict     Verdict         `json:"verdict"`
	Stats       *Stats          `json:"stats,omitempty"`
	Timeline    []TimelineEntry `json:"timeline"`
	Sheets      []SheetSummary  `json:"sheets"`
	ElapsedMS   int64           `json:"elapsedMs"`
	CompletedAt time.Time       `json:"completedAt"`
}
