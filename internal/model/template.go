package model

import "fmt"

// Template is one of the fixed presentation variants.
type Template string

const (
	TemplateModern     Template = "modern"
	TemplateClassic    Template = "classic"
	TemplateMinimalist Template = "minimalist"
	TemplateCreative   Template = "creative"
)

// Templates lists the variants in the order the GUI offers them.
func Templates() []Template {
	return []Template{TemplateModern, TemplateClassic, TemplateMinimalist, TemplateCreative}
}

func (t Template) Valid() bool {
	switch t {
	case TemplateModern, TemplateClassic, TemplateMinimalist, TemplateCreative:
		return true
	}
	return false
}

// ParseTemplate rejects anything but the four variants.
func ParseTemplate(s string) (Template, error) {
	t := Template(s)
	if !t.Valid() {
		return "", &ValidationError{Field: "template", Message: fmt.Sprintf("unknown template %q", s), Err: ErrUnknownTemplate}
	}
	return t, nil
}

// TemplateOrDefault is used when reading stored selections: unknown values
// fall back to modern.
func TemplateOrDefault(s string) Template {
	if t := Template(s); t.Valid() {
		return t
	}
	return TemplateModern
}
