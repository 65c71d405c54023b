package source

import "context"

// Static in-memory source, used by tests and fixtures
type Static struct {
	Sheets []StaticSpreadsheet
	Err    error // returned by ListSpreadsheets when set
}

// StaticSpreadsheet a named set of tabs
type StaticSpreadsheet struct {
	Title string
	Tabs  []StaticWorksheet
	Err   error // returned by Worksheets when set
}

// StaticWorksheet fixed values or a fixed read error
type StaticWorksheet struct {
	Name   string
	Values [][]string
	Err    error
}

// Kind implements Source.
func (s *Static) Kind() string { return "static" }

// ListSpreadsheets implements Source.
func (s *Static) ListSpreadsheets(ctx context.Context) ([]Spreadsheet, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]Spreadsheet, 0, len(s.Sheets))
	for i := range s.Sheets {
		out = append(out, &s.Sheets[i])
	}
	return out, nil
}

// Name implements Spreadsheet.
func (s *StaticSpreadsheet) Name() string { return s.Title }

// Worksheets implements Spreadsheet.
func (s *StaticSpreadsheet) Worksheets(ctx context.Context) ([]Worksheet, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]Worksheet, 0, len(s.Tabs))
	for i := range s.Tabs {
		out = append(out, &s.Tabs[i])
	}
	return out, nil
}

// Title implements Worksheet.
func (w *StaticWorksheet) Title() string { return w.Name }

// ReadAllValues implements Worksheet.
func (w *StaticWorksheet) ReadAllValues(ctx context.Context) ([][]string, error) {
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Values, nil
}
