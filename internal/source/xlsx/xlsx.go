// Package xlsx serves spreadsheets from a directory of Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/source"
)

// Source every .xlsx file under Dir is one spreadsheet, named after the file
type Source struct {
	dir    string
	logger *zap.Logger
}

// New creates a directory-backed source.
func New(dir string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{dir: dir, logger: logger}
}

// Kind implements source.Source.
func (s *Source) Kind() string { return "xlsx" }

// ListSpreadsheets implements source.Source. A missing or unreadable directory makes
// the source unavailable.
func (s *Source) ListSpreadsheets(ctx context.Context) ([]source.Spreadsheet, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, source.Unavailable("list workbooks", err)
	}

	var out []source.Spreadsheet
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		// skip Excel lock files such as "~$RRV.xlsx"
		if strings.HasPrefix(name, "~$") || !strings.EqualFold(filepath.Ext(name), ".xlsx") {
			continue
		}
		out = append(out, &workbook{
			path:   filepath.Join(s.dir, name),
			title:  strings.TrimSuffix(name, filepath.Ext(name)),
			logger: s.logger,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

type workbook struct {
	path   string
	title  string
	logger *zap.Logger
}

func (w *workbook) Name() string { return w.title }

// Worksheets reads every tab while the file is open; a tab whose rows cannot be
// read keeps its error for ReadAllValues.
func (w *workbook) Worksheets(ctx context.Context) ([]source.Worksheet, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(w.path), err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			w.logger.Debug("close workbook", zap.String("path", w.path), zap.Error(err))
		}
	}()

	sheets := f.GetSheetList()
	out := make([]source.Worksheet, 0, len(sheets))
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		out = append(out, &worksheet{title: name, rows: rows, err: err})
	}
	return out, nil
}

type worksheet struct {
	title string
	rows  [][]string
	err   error
}

func (w *worksheet) Title() string { return w.title }

func (w *worksheet) ReadAllValues(ctx context.Context) ([][]string, error) {
	if w.err != nil {
		return nil, fmt.Errorf("read rows of %q: %w", w.title, w.err)
	}
	return w.rows, nil
}
