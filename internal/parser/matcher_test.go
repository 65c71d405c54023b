package parser

import (
	"testing"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/model"
)

func classifySheet(t *testing.T, values [][]string) (Sheet, FieldRoleMap) {
	t.Helper()
	sheet := SheetFromValues("RRV 2024", "Mantenimiento", values)
	return sheet, NewClassifier(nil).Classify(sheet.Headers)
}

func TestMatchRows_SingleHit(t *testing.T) {
	t.Parallel()

	sheet, roles := classifySheet(t, [][]string{
		{"FECHA", "PLACA", "EMPRESA"},
		{"01/02/2024", "ABC-123", "ACME"},
	})

	got := MatchRows(sheet, roles, "ABC")
	if len(got) != 1 {
		t.Fatalf("want 1 record, got %d", len(got))
	}
	r := got[0]
	if r.Date != "01/02/2024" || r.Company != "ACME" || r.Plate != "ABC-123" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.Row != 2 || r.Spreadsheet != "RRV 2024" || r.Worksheet != "Mantenimiento" {
		t.Fatalf("unexpected location: %+v", r)
	}
	if len(r.Headers) != 3 || len(r.Values) != 3 {
		t.Fatalf("headers/values not attached: %+v", r)
	}
}

func TestMatchRows_CaseInsensitiveAndTrimmed(t *testing.T) {
	t.Parallel()

	sheet, roles := classifySheet(t, [][]string{
		{"Placa", "Fecha"},
		{"  abc-123 ", "x"},
		{"ZZZ-999", "y"},
	})
	got := MatchRows(sheet, roles, "  Abc ")
	if len(got) != 1 || got[0].Plate != "abc-123" {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestMatchRows_OneRecordPerRow(t *testing.T) {
	t.Parallel()

	sheet, roles := classifySheet(t, [][]string{
		{"Placa tracto", "Placa carreta", "Fecha"},
		{"XYZ-001", "ABC-777", "10/01/2024"},
		{"ABC-111", "ABC-222", "11/01/2024"},
	})
	got := MatchRows(sheet, roles, "abc")
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d: %+v", len(got), got)
	}
	if got[0].Plate != "ABC-777" || got[0].Row != 2 {
		t.Fatalf("first record: %+v", got[0])
	}
	// first plate column wins when both match
	if got[1].Plate != "ABC-111" || got[1].Row != 3 {
		t.Fatalf("second record: %+v", got[1])
	}
}

func TestMatchRows_ShortRowsDegradeToPlaceholder(t *testing.T) {
	t.Parallel()

	sheet, roles := classifySheet(t, [][]string{
		{"Placa", "Fecha", "Proyecto", "Empresa", "Sistema", "Estado"},
		{"ABC-123"},
		{},
		{"ABC-124", "05/05/2024", "P1"},
	})
	got := MatchRows(sheet, roles, "ABC")
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d", len(got))
	}
	first := got[0]
	for name, v := range map[string]string{
		"date": first.Date, "project": first.Project, "company": first.Company,
		"system": first.System, "status": first.Status,
	} {
		if v != model.NotAvailable {
			t.Fatalf("%s=%q want placeholder", name, v)
		}
	}
	if got[1].Row != 4 || got[1].Project != "P1" || got[1].Company != model.NotAvailable {
		t.Fatalf("second record: %+v", got[1])
	}
}

func TestMatchRows_NoMatchIsEmpty(t *testing.T) {
	t.Parallel()

	sheet, roles := classifySheet(t, [][]string{
		{"Placa", "Fecha"},
		{"ABC-123", "01/01/2024"},
	})
	if got := MatchRows(sheet, roles, "xyz"); len(got) != 0 {
		t.Fatalf("want no records, got %+v", got)
	}
}

func TestMatchRows_HeaderOnlyAndEmptySheets(t *testing.T) {
	t.Parallel()

	sheet, roles := classifySheet(t, [][]string{{"Placa", "Fecha"}})
	if got := MatchRows(sheet, roles, "A"); len(got) != 0 {
		t.Fatalf("header-only sheet produced %d records", len(got))
	}

	empty, emptyRoles := classifySheet(t, nil)
	if got := MatchRows(empty, emptyRoles, "A"); len(got) != 0 {
		t.Fatalf("empty sheet produced %d records", len(got))
	}
}

func TestMatchRows_RecordOwnsItsValues(t *testing.T) {
	t.Parallel()

	sheet, roles := classifySheet(t, [][]string{
		{"Placa"},
		{"ABC-1"},
	})
	got := MatchRows(sheet, roles, "ABC")
	sheet.Rows[0][0] = "changed"
	if got[0].Values[0] != "ABC-1" {
		t.Fatalf("record aliases source row: %v", got[0].Values)
	}
}

func TestMatchRows_DateRoundTrip(t *testing.T) {
	t.Parallel()

	raw := "15/03/2024 08:30"
	sheet, roles := classifySheet(t, [][]string{
		{"Placa", "Fecha"},
		{"ABC-9", raw},
	})
	got := MatchRows(sheet, roles, "ABC")
	if !ParseDate(got[0].Date).Equal(ParseDate(raw)) {
		t.Fatalf("date round trip mismatch: %s vs %s", ParseDate(got[0].Date), ParseDate(raw))
	}
}
