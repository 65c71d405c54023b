package parser

import (
	"strings"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/model"
)

// firstDataRow sheet row number of the first row after the header
const firstDataRow = 2

// MatchRows scans the data rows of sheet for cells in a plate column containing query.
// Comparison is case-insensitive on trimmed text. A row yields at most one record, taken
// from the first plate column (ascending) that matches. Short rows never fail: missing
// plate columns are skipped and missing fields become model.NotAvailable.
func MatchRows(sheet Sheet, roles FieldRoleMap, query string) []model.MatchRecord {
	needle := strings.ToUpper(strings.TrimSpace(query))

	var out []model.MatchRecord
	for i, row := range sheet.Rows {
		for _, col := range roles.Plates {
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if !strings.Contains(strings.ToUpper(cell), needle) {
				continue
			}
			out = append(out, newRecord(sheet, roles, row, i+firstDataRow, cell))
			break
		}
	}
	return out
}

func newRecord(sheet Sheet, roles FieldRoleMap, row []string, rowNum int, plate string) model.MatchRecord {
	values := make([]string, len(row))
	copy(values, row)

	return model.MatchRecord{
		Spreadsheet: sheet.Spreadsheet,
		Worksheet:   sheet.Worksheet,
		Row:         rowNum,
		Plate:       plate,
		Date:        roles.Value(row, RoleDate),
		Project:     roles.Value(row, RoleProject),
		Company:     roles.Value(row, RoleCompany),
		System:      roles.Value(row, RoleSystem),
		Status:      roles.Value(row, RoleStatus),
		Values:      values,
		Headers:     sheet.Headers,
	}
}
