package model

// NotAvailable is the placeholder for a field the row does not reach.
const NotAvailable = "No disponible"

// MatchRecord one row located by a plate search
type MatchRecord struct {
	Spreadsheet string   `json:"spreadsheet"` // spreadsheet title
	Worksheet   string   `json:"worksheet"`   // worksheet (tab) title
	Row         int      `json:"row"`         // 1-based sheet row, header is row 1
	Plate       string   `json:"plate"`       // trimmed text of the matched cell
	Date        string   `json:"date"`
	Project     string   `json:"project"`
	Company     string   `json:"company"`
	System      string   `json:"system"`
	Status      string   `json:"status"`
	Values      []string `json:"values"`  // full raw row
	Headers     []string `json:"headers"` // header row of the worksheet
}

// Fields pairs every header with the row value in the same column.
// Pairing stops at the shorter of the two slices.
func (r MatchRecord) Fields() []Field {
	n := len(r.Headers)
	if len(r.Values) < n {
		n = len(r.Values)
	}
	out := make([]Field, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Field{Name: r.Headers[i], Value: r.Values[i]})
	}
	return out
}

// Field header/value pair of a record
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
