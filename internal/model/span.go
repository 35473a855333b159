package model

// Span is the date range of an entry. Dates are "YYYY-MM" values but any text
// is kept as typed. An ongoing span never carries an end date: the fields are
// unexported so that state cannot be built by hand.
type Span struct {
	start   string
	end     string
	ongoing bool
}

// Ended returns a closed (or not yet closed) span.
func Ended(start, end string) Span {
	return Span{start: start, end: end}
}

// OngoingSince returns a span with no end.
func OngoingSince(start string) Span {
	return Span{start: start, ongoing: true}
}

func (s Span) Start() string { return s.start }
func (s Span) End() string   { return s.end }
func (s Span) Ongoing() bool { return s.ongoing }

func (s Span) WithStart(start string) Span {
	s.start = start
	return s
}

// WithEnd sets the end date. An ongoing span only accepts an empty end date;
// callers must clear the ongoing flag first.
func (s Span) WithEnd(end string) (Span, error) {
	if s.ongoing && end != "" {
		return s, &ValidationError{Field: "endDate", Message: "end date cannot be set while the entry is current", Err: ErrEndDateWhileOngoing}
	}
	s.end = end
	return s, nil
}

// WithOngoing toggles the ongoing state. Turning it on drops the end date;
// turning it off leaves the end date empty.
func (s Span) WithOngoing(on bool) Span {
	s.ongoing = on
	if on {
		s.end = ""
	}
	return s
}

type spanJSON struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Current   bool   `json:"current"`
}

func (s Span) wire() spanJSON {
	return spanJSON{StartDate: s.start, EndDate: s.end, Current: s.ongoing}
}

// span reads the flat wire form. current=true wins over a stored end date.
func (w spanJSON) span() Span {
	if w.Current {
		return OngoingSince(w.StartDate)
	}
	return Ended(w.StartDate, w.EndDate)
}
