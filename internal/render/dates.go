package render

import (
	"strings"
	"time"
)

const presentLabel = "Present"

// FormatDate turns "2023-09" into "Sep 2023". Anything that is not a
// year-month value is returned unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2006")
}

// DateRange is a formatted start/end pair. End is "Present" for ongoing
// entries.
type DateRange struct {
	Start string
	End   string
}

func formatRange(start, end string, ongoing bool) DateRange {
	r := DateRange{Start: FormatDate(start), End: FormatDate(end)}
	if ongoing {
		r.End = presentLabel
	}
	return r
}

func (r DateRange) IsZero() bool { return r.Start == "" && r.End == "" }

// Join renders the range with the variant's separator. A missing side is
// left blank, matching what the user typed.
func (r DateRange) Join(sep string) string {
	if r.IsZero() {
		return ""
	}
	return r.Start + sep + r.End
}
