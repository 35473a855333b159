package model

import "encoding/json"

// Go models for the résumé document. The JSON shape is the persisted format
// and must stay compatible with schema/document.schema.json.

type PersonalInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	LinkedIn  string `json:"linkedin"`
	Website   string `json:"website"`
}

type WorkEntry struct {
	ID           string   `json:"id"`
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Location     string   `json:"location"`
	Span         Span     `json:"-"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

type EducationEntry struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Location    string `json:"location"`
	Span        Span   `json:"-"`
	Description string `json:"description"`
	GPA         string `json:"gpa"`
}

type SkillCategory struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

type ProjectEntry struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Span         Span     `json:"-"`
	URL          string   `json:"url"`
	Technologies []string `json:"technologies"`
}

type Certification struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Document is the canonical résumé aggregate. ActiveTemplate is persisted
// under its own key and is therefore not part of the document JSON.
type Document struct {
	PersonalInfo   PersonalInfo     `json:"personalInfo"`
	WorkExperience []WorkEntry      `json:"workExperience"`
	Education      []EducationEntry `json:"education"`
	Skills         []SkillCategory  `json:"skills"`
	Projects       []ProjectEntry   `json:"projects"`
	Certifications []Certification  `json:"certifications"`
	Hobbies        []string         `json:"hobbies"`
	ActiveTemplate Template         `json:"-"`
}

// Seed returns the document a user starts with: one blank entry per
// repeatable section (two skill categories) and no hobbies.
func Seed() Document {
	return Document{
		WorkExperience: []WorkEntry{{ID: "exp-1", Achievements: []string{}}},
		Education:      []EducationEntry{{ID: "edu-1"}},
		Skills: []SkillCategory{
			{ID: "skill-1", Category: "Technical Skills", Skills: []string{}},
			{ID: "skill-2", Category: "Soft Skills", Skills: []string{}},
		},
		Projects:       []ProjectEntry{{ID: "proj-1", Technologies: []string{}}},
		Certifications: []Certification{{ID: "cert-1"}},
		Hobbies:        []string{},
		ActiveTemplate: TemplateModern,
	}
}

// Clone returns a deep copy. nil slices stay nil so a clone is always
// reflect.DeepEqual to its source.
func (d Document) Clone() Document {
	out := d
	out.WorkExperience = CloneWork(d.WorkExperience)
	out.Education = CloneEducation(d.Education)
	out.Skills = CloneSkills(d.Skills)
	out.Projects = CloneProjects(d.Projects)
	out.Certifications = CloneCertifications(d.Certifications)
	out.Hobbies = cloneStrings(d.Hobbies)
	return out
}

func CloneWork(in []WorkEntry) []WorkEntry {
	if in == nil {
		return nil
	}
	out := make([]WorkEntry, len(in))
	for i, e := range in {
		e.Achievements = cloneStrings(e.Achievements)
		out[i] = e
	}
	return out
}

func CloneEducation(in []EducationEntry) []EducationEntry {
	if in == nil {
		return nil
	}
	out := make([]EducationEntry, len(in))
	copy(out, in)
	return out
}

func CloneSkills(in []SkillCategory) []SkillCategory {
	if in == nil {
		return nil
	}
	out := make([]SkillCategory, len(in))
	for i, c := range in {
		c.Skills = cloneStrings(c.Skills)
		out[i] = c
	}
	return out
}

func CloneProjects(in []ProjectEntry) []ProjectEntry {
	if in == nil {
		return nil
	}
	out := make([]ProjectEntry, len(in))
	for i, p := range in {
		p.Technologies = cloneStrings(p.Technologies)
		out[i] = p
	}
	return out
}

func CloneCertifications(in []Certification) []Certification {
	if in == nil {
		return nil
	}
	out := make([]Certification, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// The entries carrying a Span serialise it as flat startDate/endDate/current
// fields, which is the format the GUI and older saves use.

func (e WorkEntry) MarshalJSON() ([]byte, error) {
	type Alias WorkEntry
	return json.Marshal(struct {
		Alias
		spanJSON
	}{Alias(e), e.Span.wire()})
}

func (e *WorkEntry) UnmarshalJSON(b []byte) error {
	type Alias WorkEntry
	aux := struct {
		*Alias
		spanJSON
	}{Alias: (*Alias)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	e.Span = aux.spanJSON.span()
	return nil
}

func (e EducationEntry) MarshalJSON() ([]byte, error) {
	type Alias EducationEntry
	return json.Marshal(struct {
		Alias
		spanJSON
	}{Alias(e), e.Span.wire()})
}

func (e *EducationEntry) UnmarshalJSON(b []byte) error {
	type Alias EducationEntry
	aux := struct {
		*Alias
		spanJSON
	}{Alias: (*Alias)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	e.Span = aux.spanJSON.span()
	return nil
}

func (e ProjectEntry) MarshalJSON() ([]byte, error) {
	type Alias ProjectEntry
	return json.Marshal(struct {
		Alias
		spanJSON
	}{Alias(e), e.Span.wire()})
}

func (e *ProjectEntry) UnmarshalJSON(b []byte) error {
	type Alias ProjectEntry
	aux := struct {
		*Alias
		spanJSON
	}{Alias: (*Alias)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	e.Span = aux.spanJSON.span()
	return nil
}
