package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-builder/internal/model"
)

// Layout is the document reduced to what is visible. Every variant renders
// from it, so inclusion and date rules live only in BuildLayout.
type Layout struct {
	Name     string
	Initials string
	Title    string
	Contact  Contact
	Summary  string

	Work           []WorkItem
	Education      []EducationItem
	Skills         []SkillGroup
	Projects       []ProjectItem
	Certifications []CertificationItem
	Hobbies        []string
}

type Contact struct {
	Email    string
	Phone    string
	Location string
	LinkedIn *Link
	Website  *Link
}

func (c Contact) IsZero() bool {
	return c.Email == "" && c.Phone == "" && c.Location == "" && c.LinkedIn == nil && c.Website == nil
}

type WorkItem struct {
	Position     string
	Company      string
	Location     string
	Dates        DateRange
	Description  string
	Achievements []string
}

type EducationItem struct {
	Degree      string
	Field       string
	Institution string
	Location    string
	Dates       DateRange
	Description string
	GPA         string
}

type SkillGroup struct {
	Category string
	Skills   []string
}

type ProjectItem struct {
	Name         string
	Dates        DateRange
	Description  string
	Link         *Link
	Technologies []string
}

type CertificationItem struct {
	Name        string
	Issuer      string
	Date        string
	Link        *Link
	Description string
}

// BuildLayout applies the inclusion rules: work needs a company or position,
// education an institution or degree, a skill category at least one skill,
// projects and certifications a name. Hidden entries drop out and a section
// with nothing left is empty.
func BuildLayout(doc model.Document) Layout {
	p := doc.PersonalInfo
	l := Layout{
		Name:     strings.TrimSpace(p.FirstName + " " + p.LastName),
		Initials: Initials(p.FirstName, p.LastName),
		Title:    p.Title,
		Summary:  strings.TrimSpace(p.Summary),
		Contact: Contact{
			Email:    p.Email,
			Phone:    p.Phone,
			Location: joinNonEmpty(", ", p.City, p.State),
			LinkedIn: newLink(p.LinkedIn),
			Website:  newLink(p.Website),
		},
	}

	for _, e := range doc.WorkExperience {
		if e.Company == "" && e.Position == "" {
			continue
		}
		l.Work = append(l.Work, WorkItem{
			Position:     e.Position,
			Company:      e.Company,
			Location:     e.Location,
			Dates:        formatRange(e.Span.Start(), e.Span.End(), e.Span.Ongoing()),
			Description:  e.Description,
			Achievements: nonBlank(e.Achievements),
		})
	}

	for _, e := range doc.Education {
		if e.Institution == "" && e.Degree == "" {
			continue
		}
		l.Education = append(l.Education, EducationItem{
			Degree:      e.Degree,
			Field:       e.Field,
			Institution: e.Institution,
			Location:    e.Location,
			Dates:       formatRange(e.Span.Start(), e.Span.End(), e.Span.Ongoing()),
			Description: e.Description,
			GPA:         e.GPA,
		})
	}

	for _, c := range doc.Skills {
		skills := nonBlank(c.Skills)
		if len(skills) == 0 {
			continue
		}
		l.Skills = append(l.Skills, SkillGroup{Category: c.Category, Skills: skills})
	}

	for _, p := range doc.Projects {
		if p.Name == "" {
			continue
		}
		l.Projects = append(l.Projects, ProjectItem{
			Name:         p.Name,
			Dates:        formatRange(p.Span.Start(), p.Span.End(), p.Span.Ongoing()),
			Description:  p.Description,
			Link:         newLink(p.URL),
			Technologies: nonBlank(p.Technologies),
		})
	}

	for _, c := range doc.Certifications {
		if c.Name == "" {
			continue
		}
		l.Certifications = append(l.Certifications, CertificationItem{
			Name:        c.Name,
			Issuer:      c.Issuer,
			Date:        FormatDate(c.Date),
			Link:        newLink(c.URL),
			Description: c.Description,
		})
	}

	l.Hobbies = nonBlank(doc.Hobbies)
	return l
}

// Initials returns the upper-cased first letters of both names.
func Initials(first, last string) string {
	var b strings.Builder
	for _, s := range []string{first, last} {
		r, _ := utf8.DecodeRuneInString(strings.TrimSpace(s))
		if r != utf8.RuneError {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	return strings.Join(nonBlank(parts), sep)
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
