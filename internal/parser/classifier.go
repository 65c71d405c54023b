package parser

// plateFallbackColumns number of leading columns searched when no header names a plate.
const plateFallbackColumns = 3

// RoleSpec keywords and positional fallback of one role
type RoleSpec struct {
	Role     Role
	Keywords []string
	Default  int // fallback column, collapses to 0 when out of range
}

// RoleTable ordered role → keyword table driving the classifier
type RoleTable []RoleSpec

// DefaultRoleTable the built-in Spanish/English synonyms
func DefaultRoleTable() RoleTable {
	return RoleTable{
		{Role: RolePlate, Keywords: []string{"placa", "patente", "matricula", "vehiculo", "numero de vehiculo"}},
		{Role: RoleDate, Keywords: []string{"fecha", "date", "dia", "hora", "fecha de ingreso"}, Default: 1},
		{Role: RoleProject, Keywords: []string{"proyecto"}, Default: 2},
		{Role: RoleCompany, Keywords: []string{"empresa", "nombre", "cliente"}, Default: 3},
		{Role: RoleSystem, Keywords: []string{"sistema"}, Default: 4},
		{Role: RoleStatus, Keywords: []string{"tipo de trabajo", "estado", "status", "situacion", "condicion"}, Default: 5},
	}
}

// WithKeywords returns a copy of the table with extra synonyms appended per role.
// Roles missing from the table are ignored.
func (t RoleTable) WithKeywords(extra map[Role][]string) RoleTable {
	out := make(RoleTable, len(t))
	for i, spec := range t {
		kws := make([]string, 0, len(spec.Keywords)+len(extra[spec.Role]))
		kws = append(kws, spec.Keywords...)
		kws = append(kws, extra[spec.Role]...)
		spec.Keywords = kws
		out[i] = spec
	}
	return out
}

// Classifier maps header rows to column roles
type Classifier struct {
	specs []RoleSpec
}

// NewClassifier creates a classifier over table. An empty table means DefaultRoleTable.
func NewClassifier(table RoleTable) *Classifier {
	if len(table) == 0 {
		table = DefaultRoleTable()
	}
	specs := make([]RoleSpec, 0, len(table))
	for _, spec := range table {
		kws := make([]string, 0, len(spec.Keywords))
		for _, kw := range spec.Keywords {
			if n := NormalizeHeader(kw); n != "" {
				kws = append(kws, n)
			}
		}
		specs = append(specs, RoleSpec{Role: spec.Role, Keywords: kws, Default: spec.Default})
	}
	return &Classifier{specs: specs}
}

// Classify resolves every role against headers.
// The plate role collects all matching columns; other roles take the first match.
func (c *Classifier) Classify(headers []string) FieldRoleMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	m := FieldRoleMap{indices: make(map[Role]int, len(c.specs))}
	for _, spec := range c.specs {
		if spec.Role == RolePlate {
			m.Plates = plateColumns(normalized, spec.Keywords)
			continue
		}
		m.indices[spec.Role] = firstColumn(normalized, spec.Keywords, spec.Default)
	}
	if m.Plates == nil {
		m.Plates = plateColumns(normalized, nil)
	}
	return m
}

func plateColumns(headers []string, keywords []string) []int {
	var cols []int
	for i, h := range headers {
		if ContainsAny(h, keywords) {
			cols = append(cols, i)
		}
	}
	if len(cols) > 0 {
		return cols
	}

	n := min(plateFallbackColumns, len(headers))
	cols = make([]int, n)
	for i := range cols {
		cols[i] = i
	}
	return cols
}

func firstColumn(headers []string, keywords []string, fallback int) int {
	for i, h := range headers {
		if ContainsAny(h, keywords) {
			return i
		}
	}
	if fallback > len(headers)-1 || fallback < 0 {
		return 0
	}
	return fallback
}
