package export

import (
	"strings"
	"time"
	"unicode"

	"resume-builder/internal/model"
)

// FileName builds "<First>[_<Last>]_Resume_<YYYY-MM-DD>.pdf". The first
// name defaults to "Resume".
func FileName(p model.PersonalInfo, now time.Time) string {
	first := sanitize(p.FirstName)
	if first == "" {
		first = "Resume"
	}
	parts := []string{first}
	if last := sanitize(p.LastName); last != "" {
		parts = append(parts, last)
	}
	parts = append(parts, "Resume", now.Format("2006-01-02"))
	return strings.Join(parts, "_") + ".pdf"
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return '_'
	}, strings.TrimSpace(s))
}
