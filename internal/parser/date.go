package parser

import (
	"time"

	"github.com/araddon/dateparse"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/model"
)

// dateLayouts tried in order, most specific first. Day-first layouts precede the
// US month-first ones so "03/04/2024" reads as 3 April.
var dateLayouts = []string{
	"2/1/2006 15:4:5",
	"2/1/2006 15:4",
	"2/1/2006",
	"2006-1-2 15:4:5",
	"2006-1-2 15:4",
	"2006-1-2",
	"2-1-2006 15:4:5",
	"2-1-2006 15:4",
	"2-1-2006",
	"1/2/2006 15:4:5",
	"1/2/2006 15:4",
	"1/2/2006",
	"2/1/06 15:4:5",
	"2/1/06 15:4",
	"2/1/06",
	"2.1.2006 15:4:5",
	"2.1.2006 15:4",
	"2.1.2006",
}

// Timestamp normalized record date. The zero value is the unknown sentinel,
// which orders before every known date.
type Timestamp struct {
	t     time.Time
	known bool
}

// Unknown the sentinel for missing or unparseable dates
var Unknown = Timestamp{}

// At wraps a known time.
func At(t time.Time) Timestamp {
	return Timestamp{t: t, known: true}
}

// IsUnknown reports whether ts is the sentinel.
func (ts Timestamp) IsUnknown() bool { return !ts.known }

// Time the parsed instant, zero time for Unknown.
func (ts Timestamp) Time() time.Time { return ts.t }

// Compare returns -1, 0 or +1. Unknown equals Unknown and is less than any known value.
func (ts Timestamp) Compare(o Timestamp) int {
	switch {
	case !ts.known && !o.known:
		return 0
	case !ts.known:
		return -1
	case !o.known:
		return 1
	}
	return ts.t.Compare(o.t)
}

// After reports whether ts is strictly later than o.
func (ts Timestamp) After(o Timestamp) bool { return ts.Compare(o) > 0 }

// Equal reports whether ts and o order the same.
func (ts Timestamp) Equal(o Timestamp) bool { return ts.Compare(o) == 0 }

func (ts Timestamp) String() string {
	if !ts.known {
		return "unknown"
	}
	return ts.t.Format(time.RFC3339)
}

// ParseDate normalizes free-form date text. It never fails: empty, placeholder and
// unparseable input all yield Unknown.
func ParseDate(text string) Timestamp {
	if text == "" || text == model.NotAvailable {
		return Unknown
	}
	text = CollapseSpaces(text)
	if text == "" {
		return Unknown
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return At(t)
		}
	}

	if t, ok := parseLoose(text); ok {
		return At(t)
	}
	return Unknown
}

// parseLoose is the permissive fallback. dateparse can panic on odd input,
// which must not escape.
func parseLoose(text string) (t time.Time, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
