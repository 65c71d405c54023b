package search

import (
	"sort"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/model"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/parser"
)

// SortChronological returns the records ordered by date, most recent first.
// Records whose date is unknown go last; equal dates keep their scan order.
// The input slice is not modified.
func SortChronological(records []model.MatchRecord) []model.MatchRecord {
	type keyed struct {
		ts  parser.Timestamp
		rec model.MatchRecord
	}
	tmp := make([]keyed, len(records))
	for i, r := range records {
		tmp[i] = keyed{ts: parser.ParseDate(r.Date), rec: r}
	}

	sort.SliceStable(tmp, func(i, j int) bool {
		return tmp[i].ts.After(tmp[j].ts)
	})

	out := make([]model.MatchRecord, len(tmp))
	for i, k := range tmp {
		out[i] = k.rec
	}
	return out
}
