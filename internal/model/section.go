package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Section names a top-level part of the document. The values are the JSON
// keys of the persisted document.
type Section string

const (
	SectionPersonalInfo   Section = "personalInfo"
	SectionWorkExperience Section = "workExperience"
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionProjects       Section = "projects"
	SectionCertifications Section = "certifications"
	SectionHobbies        Section = "hobbies"
)

var sections = []Section{
	SectionPersonalInfo,
	SectionWorkExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionCertifications,
	SectionHobbies,
}

var idPrefixes = map[Section]string{
	SectionWorkExperience: "exp",
	SectionEducation:      "edu",
	SectionSkills:         "skill",
	SectionProjects:       "proj",
	SectionCertifications: "cert",
}

// Sections lists every section in document order.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

func ParseSection(s string) (Section, error) {
	for _, name := range sections {
		if string(name) == s {
			return name, nil
		}
	}
	return "", &ValidationError{Field: "section", Message: fmt.Sprintf("unknown section %q", s), Err: ErrUnknownSection}
}

// RequiresEntry reports whether the section may never be empty.
func (s Section) RequiresEntry() bool {
	_, ok := idPrefixes[s]
	return ok
}

// NewEntryID returns a fresh id for an entry of the given section.
func NewEntryID(s Section) string {
	prefix, ok := idPrefixes[s]
	if !ok {
		prefix = "entry"
	}
	return prefix + "-" + uuid.NewString()
}

// Section returns a deep copy of the named section's value.
func (d Document) Section(name Section) any {
	switch name {
	case SectionPersonalInfo:
		return d.PersonalInfo
	case SectionWorkExperience:
		return CloneWork(d.WorkExperience)
	case SectionEducation:
		return CloneEducation(d.Education)
	case SectionSkills:
		return CloneSkills(d.Skills)
	case SectionProjects:
		return CloneProjects(d.Projects)
	case SectionCertifications:
		return CloneCertifications(d.Certifications)
	case SectionHobbies:
		return cloneStrings(d.Hobbies)
	}
	return nil
}

// WithSection returns a copy of d with the named section replaced. The value
// is validated first; on error d is returned unchanged.
func (d Document) WithSection(name Section, value any) (Document, error) {
	if err := ValidateSection(name, value); err != nil {
		return d, err
	}
	out := d.Clone()
	switch v := value.(type) {
	case PersonalInfo:
		out.PersonalInfo = v
	case []WorkEntry:
		out.WorkExperience = CloneWork(v)
	case []EducationEntry:
		out.Education = CloneEducation(v)
	case []SkillCategory:
		out.Skills = CloneSkills(v)
	case []ProjectEntry:
		out.Projects = CloneProjects(v)
	case []Certification:
		out.Certifications = CloneCertifications(v)
	case []string:
		out.Hobbies = cloneStrings(v)
	}
	return out, nil
}

// ValidateSection checks that value has the section's type, that required
// sections are non-empty and that entry ids are non-empty and unique.
func ValidateSection(name Section, value any) error {
	var ids []string
	ok := true
	switch name {
	case SectionPersonalInfo:
		_, ok = value.(PersonalInfo)
	case SectionWorkExperience:
		var v []WorkEntry
		if v, ok = value.([]WorkEntry); ok {
			ids = entryIDs(v, func(e WorkEntry) string { return e.ID })
		}
	case SectionEducation:
		var v []EducationEntry
		if v, ok = value.([]EducationEntry); ok {
			ids = entryIDs(v, func(e EducationEntry) string { return e.ID })
		}
	case SectionSkills:
		var v []SkillCategory
		if v, ok = value.([]SkillCategory); ok {
			ids = entryIDs(v, func(e SkillCategory) string { return e.ID })
		}
	case SectionProjects:
		var v []ProjectEntry
		if v, ok = value.([]ProjectEntry); ok {
			ids = entryIDs(v, func(e ProjectEntry) string { return e.ID })
		}
	case SectionCertifications:
		var v []Certification
		if v, ok = value.([]Certification); ok {
			ids = entryIDs(v, func(e Certification) string { return e.ID })
		}
	case SectionHobbies:
		_, ok = value.([]string)
	default:
		return &ValidationError{Field: "section", Message: fmt.Sprintf("unknown section %q", name), Err: ErrUnknownSection}
	}
	if !ok {
		return &ValidationError{Field: string(name), Message: fmt.Sprintf("expected %s value, got %T", name, value), Err: ErrSectionType}
	}
	if !name.RequiresEntry() {
		return nil
	}
	if len(ids) == 0 {
		return &ValidationError{Field: string(name), Message: "at least one entry is required", Err: ErrEmptySection}
	}
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if id == "" {
			return &ValidationError{Field: fmt.Sprintf("%s[%d].id", name, i), Message: "id is required", Err: ErrInvalidEntryID}
		}
		if _, dup := seen[id]; dup {
			return &ValidationError{Field: fmt.Sprintf("%s[%d].id", name, i), Message: fmt.Sprintf("duplicate id %q", id), Err: ErrInvalidEntryID}
		}
		seen[id] = struct{}{}
	}
	return nil
}

func entryIDs[E any](entries []E, id func(E) string) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = id(e)
	}
	return out
}

// DecodeSection parses the JSON value of a single section into its Go type.
// The result still has to pass ValidateSection.
func DecodeSection(name Section, raw []byte) (any, error) {
	var (
		value any
		err   error
	)
	switch name {
	case SectionPersonalInfo:
		var v PersonalInfo
		err = json.Unmarshal(raw, &v)
		value = v
	case SectionWorkExperience:
		var v []WorkEntry
		err = json.Unmarshal(raw, &v)
		value = v
	case SectionEducation:
		var v []EducationEntry
		err = json.Unmarshal(raw, &v)
		value = v
	case SectionSkills:
		var v []SkillCategory
		err = json.Unmarshal(raw, &v)
		value = v
	case SectionProjects:
		var v []ProjectEntry
		err = json.Unmarshal(raw, &v)
		value = v
	case SectionCertifications:
		var v []Certification
		err = json.Unmarshal(raw, &v)
		value = v
	case SectionHobbies:
		var v []string
		err = json.Unmarshal(raw, &v)
		if v == nil {
			v = []string{}
		}
		value = v
	default:
		return nil, &ValidationError{Field: "section", Message: fmt.Sprintf("unknown section %q", name), Err: ErrUnknownSection}
	}
	if err != nil {
		return nil, &ValidationError{Field: string(name), Message: "malformed section value: " + err.Error(), Err: ErrSectionType}
	}
	return value, nil
}
