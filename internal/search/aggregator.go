package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/metrics"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/model"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/parser"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/source"
)

// DefaultMarker spreadsheets whose name lacks it are never opened
const DefaultMarker = "RRV"

// ProgressEvent progress notification of a running scan
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/spreadsheet_start/sheet_done/sheet_error/done
	Message   string      `json:"message"` // human readable
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ProgressFunc receives scan progress; it must not block.
type ProgressFunc func(ProgressEvent)

// SheetResult outcome of one worksheet. Err is set only when Status is error.
type SheetResult struct {
	Spreadsheet string
	Worksheet   string
	Status      model.SheetStatus
	Rows        int
	Records     []model.MatchRecord
	Err         error
}

// Summary the report form of the result
func (r SheetResult) Summary() model.SheetSummary {
	s := model.SheetSummary{
		Spreadsheet: r.Spreadsheet,
		Worksheet:   r.Worksheet,
		Status:      r.Status,
		Rows:        r.Rows,
		Matches:     len(r.Records),
	}
	if r.Err != nil {
		s.Error = r.Err.Error()
	}
	return s
}

// Scan everything one aggregation produced, records in scan order
type Scan struct {
	Records      []model.MatchRecord
	Sheets       []SheetResult
	Spreadsheets int // spreadsheets carrying the marker
	Searched     int
	Skipped      int
	Failed       int
}

func (s *Scan) record(r SheetResult) {
	s.Sheets = append(s.Sheets, r)
	switch r.Status {
	case model.SheetSearched:
		s.Searched++
		s.Records = append(s.Records, r.Records...)
	case model.SheetSkipped:
		s.Skipped++
	case model.SheetError:
		s.Failed++
	}
}

// Summaries per-worksheet report of the scan
func (s *Scan) Summaries() []model.SheetSummary {
	out := make([]model.SheetSummary, 0, len(s.Sheets))
	for _, r := range s.Sheets {
		out = append(out, r.Summary())
	}
	return out
}

// Aggregator runs the row matcher over every worksheet of every marked spreadsheet
type Aggregator struct {
	source     source.Source
	classifier *parser.Classifier
	marker     string
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// AggregatorOption configures an Aggregator
type AggregatorOption func(*Aggregator)

// WithClassifier replaces the default header classifier.
func WithClassifier(c *parser.Classifier) AggregatorOption {
	return func(a *Aggregator) { a.classifier = c }
}

// WithMarker sets the spreadsheet name marker.
func WithMarker(marker string) AggregatorOption {
	return func(a *Aggregator) { a.marker = marker }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) AggregatorOption {
	return func(a *Aggregator) { a.metrics = m }
}

// NewAggregator creates an aggregator over src.
func NewAggregator(src source.Source, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		source: src,
		marker: DefaultMarker,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.classifier == nil {
		a.classifier = parser.NewClassifier(nil)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a
}

// Marker the spreadsheet name marker in use
func (a *Aggregator) Marker() string { return a.marker }

// Aggregate scans the source for query. Only a failure to list spreadsheets is
// returned; a spreadsheet or worksheet that cannot be read is recorded in the
// Scan and skipped. The context is consulted between worksheets.
func (a *Aggregator) Aggregate(ctx context.Context, query string, progress ProgressFunc) (*Scan, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	all, err := a.source.ListSpreadsheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list spreadsheets: %w", err)
	}

	var marked []source.Spreadsheet
	for _, ss := range all {
		if strings.Contains(ss.Name(), a.marker) {
			marked = append(marked, ss)
		}
	}

	scan := &Scan{Spreadsheets: len(marked)}
	progress(ProgressEvent{
		Type:    "start",
		Message: fmt.Sprintf("found %d spreadsheets containing %q", len(marked), a.marker),
		Data: map[string]interface{}{
			"spreadsheets": len(marked),
			"query":        query,
		},
		Timestamp: time.Now(),
	})

	for idx, ss := range marked {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		progress(ProgressEvent{
			Type:    "spreadsheet_start",
			Message: fmt.Sprintf("searching %s", ss.Name()),
			Data: map[string]interface{}{
				"spreadsheet": ss.Name(),
				"index":       idx + 1,
				"total":       len(marked),
			},
			Timestamp: time.Now(),
		})
		if err := a.scanSpreadsheet(ctx, ss, query, scan, progress); err != nil {
			return nil, err
		}
	}

	progress(ProgressEvent{
		Type:    "done",
		Message: fmt.Sprintf("%d records in %d worksheets", len(scan.Records), scan.Searched),
		Data: map[string]int{
			"records":  len(scan.Records),
			"searched": scan.Searched,
			"skipped":  scan.Skipped,
			"failed":   scan.Failed,
		},
		Timestamp: time.Now(),
	})
	return scan, nil
}

func (a *Aggregator) scanSpreadsheet(ctx context.Context, ss source.Spreadsheet, query string, scan *Scan, progress ProgressFunc) error {
	worksheets, err := ss.Worksheets(ctx)
	if err != nil {
		a.fail(scan, progress, SheetResult{Spreadsheet: ss.Name(), Status: model.SheetError, Err: err})
		return nil
	}

	for _, ws := range worksheets {
		if err := ctx.Err(); err != nil {
			return err
		}

		values, err := ws.ReadAllValues(ctx)
		if err != nil {
			a.fail(scan, progress, SheetResult{
				Spreadsheet: ss.Name(),
				Worksheet:   ws.Title(),
				Status:      model.SheetError,
				Err:         err,
			})
			continue
		}

		result := a.ScanSheet(parser.SheetFromValues(ss.Name(), ws.Title(), values), query)
		scan.record(result)
		a.metrics.ObserveWorksheet(string(result.Status))

		if result.Status == model.SheetSearched {
			progress(ProgressEvent{
				Type:    "sheet_done",
				Message: fmt.Sprintf("%s / %s: %d matches", ss.Name(), ws.Title(), len(result.Records)),
				Data: map[string]interface{}{
					"spreadsheet": ss.Name(),
					"worksheet":   ws.Title(),
					"rows":        result.Rows,
					"matches":     len(result.Records),
				},
				Timestamp: time.Now(),
			})
		}
	}
	return nil
}

// ScanSheet classifies and matches one worksheet. Sheets without data rows are skipped.
func (a *Aggregator) ScanSheet(sheet parser.Sheet, query string) SheetResult {
	result := SheetResult{
		Spreadsheet: sheet.Spreadsheet,
		Worksheet:   sheet.Worksheet,
		Rows:        len(sheet.Rows),
	}
	if len(sheet.Rows) == 0 {
		result.Status = model.SheetSkipped
		return result
	}

	roles := a.classifier.Classify(sheet.Headers)
	result.Records = parser.MatchRows(sheet, roles, query)
	result.Status = model.SheetSearched
	return result
}

func (a *Aggregator) fail(scan *Scan, progress ProgressFunc, r SheetResult) {
	scan.record(r)
	a.metrics.ObserveWorksheet(string(model.SheetError))
	a.logger.Warn("worksheet skipped after read failure",
		zap.String("spreadsheet", r.Spreadsheet),
		zap.String("worksheet", r.Worksheet),
		zap.Error(r.Err))
	progress(ProgressEvent{
		Type:    "sheet_error",
		Message: fmt.Sprintf("could not read %s / %s", r.Spreadsheet, r.Worksheet),
		Data: map[string]string{
			"spreadsheet": r.Spreadsheet,
			"worksheet":   r.Worksheet,
			"error":       r.Err.Error(),
		},
		Timestamp: time.Now(),
	})
}
