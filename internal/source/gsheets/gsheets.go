// Package gsheets serves spreadsheets shared with a Google service account.
package gsheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/source"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Config Google backend settings
type Config struct {
	CredentialsFile string
	// Options extra client options, e.g. option.WithEndpoint in tests.
	Options []option.ClientOption
}

// Source lists spreadsheets through Drive and reads tabs through the Sheets API
type Source struct {
	drive  *drive.Service
	sheets *sheets.Service
	logger *zap.Logger
}

// New authenticates with the service-account credentials. Failures make the
// source unavailable.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := make([]option.ClientOption, 0, len(cfg.Options)+2)
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(drive.DriveReadonlyScope, sheets.SpreadsheetsReadonlyScope))
	opts = append(opts, cfg.Options...)

	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, source.Unavailable("connect drive", err)
	}
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, source.Unavailable("connect sheets", err)
	}

	logger.Info("google sheets source ready",
		zap.Bool("credentials_file", cfg.CredentialsFile != ""))

	return &Source{
		drive:  driveSvc,
		sheets: sheetsSvc,
		logger: logger,
	}, nil
}

// Kind implements source.Source.
func (s *Source) Kind() string { return "gsheets" }

// ListSpreadsheets implements source.Source. Every spreadsheet visible to the
// account is returned; Drive's name "contains" only matches term prefixes, so
// the name marker is left to the caller.
func (s *Source) ListSpreadsheets(ctx context.Context) ([]source.Spreadsheet, error) {
	q := fmt.Sprintf("mimeType='%s' and trashed=false", spreadsheetMimeType)

	var out []source.Spreadsheet
	err := s.drive.Files.List().
		Q(q).
		Fields("nextPageToken, files(id, name)").
		PageSize(200).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				out = append(out, &spreadsheet{id: f.Id, title: f.Name, svc: s.sheets})
			}
			return nil
		})
	if err != nil {
		return nil, source.Unavailable("list spreadsheets", err)
	}

	s.logger.Debug("drive listing done", zap.Int("spreadsheets", len(out)))
	return out, nil
}

type spreadsheet struct {
	id    string
	title string
	svc   *sheets.Service
}

func (s *spreadsheet) Name() string { return s.title }

func (s *spreadsheet) Worksheets(ctx context.Context) ([]source.Worksheet, error) {
	doc, err := s.svc.Spreadsheets.Get(s.id).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet %q: %w", s.title, err)
	}

	out := make([]source.Worksheet, 0, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		if sh.Properties == nil {
			continue
		}
		out = append(out, &worksheet{spreadsheetID: s.id, title: sh.Properties.Title, svc: s.svc})
	}
	return out, nil
}

type worksheet struct {
	spreadsheetID string
	title         string
	svc           *sheets.Service
}

func (w *worksheet) Title() string { return w.title }

// ReadAllValues reads the formatted values of the whole tab.
func (w *worksheet) ReadAllValues(ctx context.Context) ([][]string, error) {
	vr, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, quoteSheet(w.title)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read values of %q: %w", w.title, err)
	}
	return stringifyValues(vr.Values), nil
}

// stringifyValues turns the API's loosely typed cells into text.
func stringifyValues(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			if s, ok := v.(string); ok {
				cells[j] = s
				continue
			}
			cells[j] = fmt.Sprint(v)
		}
		out[i] = cells
	}
	return out
}

// quoteSheet builds an A1 range naming the whole tab.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

