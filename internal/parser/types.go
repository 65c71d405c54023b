package parser

import "github.com/SoyJotaGS/buscador-rrv-web/internal/model"

// Role semantic meaning of a column
type Role string

const (
	RolePlate   Role = "plate"
	RoleDate    Role = "date"
	RoleProject Role = "project"
	RoleCompany Role = "company"
	RoleSystem  Role = "system"
	RoleStatus  Role = "status"
)

// Roles every role in classification order.
var Roles = []Role{RolePlate, RoleDate, RoleProject, RoleCompany, RoleSystem, RoleStatus}

// ParseRole maps a config key (case-insensitive, "work" is an alias of status) to a Role.
func ParseRole(s string) (Role, bool) {
	switch NormalizeHeader(s) {
	case "plate", "placa":
		return RolePlate, true
	case "date", "fecha":
		return RoleDate, true
	case "project", "proyecto":
		return RoleProject, true
	case "company", "empresa":
		return RoleCompany, true
	case "system", "sistema":
		return RoleSystem, true
	case "status", "work", "trabajo", "estado":
		return RoleStatus, true
	}
	return "", false
}

// FieldRoleMap column indices resolved for one header row
type FieldRoleMap struct {
	// Plates every plate-bearing column, ascending.
	Plates  []int
	indices map[Role]int
}

// Index column of a single-valued role. The plate role answers its first column.
func (m FieldRoleMap) Index(role Role) int {
	if role == RolePlate {
		if len(m.Plates) == 0 {
			return 0
		}
		return m.Plates[0]
	}
	return m.indices[role]
}

// Value cell of the row at the role's column, NotAvailable when the row is too short.
func (m FieldRoleMap) Value(row []string, role Role) string {
	idx := m.Index(role)
	if idx < 0 || idx >= len(row) {
		return model.NotAvailable
	}
	return row[idx]
}

// Sheet one worksheet as read from a spreadsheet source
type Sheet struct {
	Spreadsheet string
	Worksheet   string
	Headers     []string
	Rows        [][]string // data rows, header excluded
}

// SheetFromValues splits raw worksheet values into header and data rows.
func SheetFromValues(spreadsheet, worksheet string, values [][]string) Sheet {
	s := Sheet{Spreadsheet: spreadsheet, Worksheet: worksheet}
	if len(values) == 0 {
		return s
	}
	s.Headers = values[0]
	s.Rows = values[1:]
	return s
}
