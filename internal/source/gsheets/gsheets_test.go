package gsheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/search"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/source"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type queryLog struct {
	mu sync.Mutex
	qs []string
}

func (l *queryLog) add(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.qs = append(l.qs, q)
}

func (l *queryLog) first() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.qs) == 0 {
		return ""
	}
	return l.qs[0]
}

func newFakeGoogle(t *testing.T) (*httptest.Server, *queryLog) {
	t.Helper()
	queries := &queryLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		queries.add(r.URL.Query().Get("q"))
		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(w, map[string]interface{}{
				"nextPageToken": "p2",
				"files":         []map[string]string{{"id": "s1", "name": "RRV 2024"}},
			})
			return
		}
		writeJSON(w, map[string]interface{}{
			"files": []map[string]string{
				{"id": "s2", "name": "RRV 2023"},
				{"id": "s3", "name": "ActasRRV"},
				{"id": "s4", "name": "Inventario"},
			},
		})
	})
	mux.HandleFunc("/v4/spreadsheets/s1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"sheets": []map[string]interface{}{
				{"properties": map[string]string{"title": "Enero"}},
				{"properties": map[string]string{"title": "O'Higgins"}},
			},
		})
	})
	mux.HandleFunc("/v4/spreadsheets/s1/values/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "Higgins") {
			http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
			return
		}
		writeJSON(w, map[string]interface{}{
			"range": "Enero!A1:C2",
			"values": [][]interface{}{
				{"FECHA", "PLACA", "KM"},
				{"15/01/2024", "ABC-123", 1200},
			},
		})
	})
	mux.HandleFunc("/v4/spreadsheets/s3", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"sheets": []map[string]interface{}{
				{"properties": map[string]string{"title": "Marzo"}},
			},
		})
	})
	mux.HandleFunc("/v4/spreadsheets/s3/values/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"range": "Marzo!A1:C2",
			"values": [][]interface{}{
				{"FECHA", "PLACA", "EMPRESA"},
				{"02/03/2024", "ABC-123", "Transportes Sur"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, queries
}

func newTestSource(t *testing.T, srv *httptest.Server) *Source {
	t.Helper()
	src, err := New(context.Background(), Config{
		Options: []option.ClientOption{
			option.WithEndpoint(srv.URL + "/"),
			option.WithoutAuthentication(),
			option.WithHTTPClient(srv.Client()),
		},
	}, nil)
	require.NoError(t, err)
	return src
}

func TestListSpreadsheets_Paginates(t *testing.T) {
	srv, queries := newFakeGoogle(t)
	src := newTestSource(t, srv)

	list, err := src.ListSpreadsheets(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "RRV 2024", list[0].Name())
	assert.Equal(t, "RRV 2023", list[1].Name())
	assert.Equal(t, "ActasRRV", list[2].Name())

	assert.Contains(t, queries.first(), "trashed=false")
	assert.NotContains(t, queries.first(), "name contains")
}

func TestAggregate_MarkerInsideWord(t *testing.T) {
	srv, _ := newFakeGoogle(t)
	agg := search.NewAggregator(newTestSource(t, srv))

	scan, err := agg.Aggregate(context.Background(), "ABC", nil)
	require.NoError(t, err)

	// Inventario is never opened; RRV 2023 has no tab listing and is isolated
	assert.Equal(t, 3, scan.Spreadsheets)
	require.Len(t, scan.Records, 2)
	assert.Equal(t, "RRV 2024", scan.Records[0].Spreadsheet)
	assert.Equal(t, "ActasRRV", scan.Records[1].Spreadsheet)
	assert.Equal(t, "Marzo", scan.Records[1].Worksheet)
	assert.Equal(t, 2, scan.Failed)
}

func TestWorksheetsAndValues(t *testing.T) {
	srv, _ := newFakeGoogle(t)
	src := newTestSource(t, srv)

	list, err := src.ListSpreadsheets(context.Background())
	require.NoError(t, err)

	tabs, err := list[0].Worksheets(context.Background())
	require.NoError(t, err)
	require.Len(t, tabs, 2)
	assert.Equal(t, "Enero", tabs[0].Title())

	values, err := tabs[0].ReadAllValues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"FECHA", "PLACA", "KM"},
		{"15/01/2024", "ABC-123", "1200"},
	}, values)

	_, err = tabs[1].ReadAllValues(context.Background())
	assert.Error(t, err)
}

func TestListSpreadsheets_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":401,"message":"invalid credentials"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestSource(t, srv).ListSpreadsheets(context.Background())
	assert.ErrorIs(t, err, source.ErrSourceUnavailable)
}

func TestQuoteSheetAndStringify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "'O''Higgins'", quoteSheet("O'Higgins"))
	assert.Equal(t, [][]string{{"a", "", "3.5", "true"}}, stringifyValues([][]interface{}{{"a", nil, 3.5, true}}))
}
