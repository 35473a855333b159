package render

import (
	"strings"
	"testing"

	"resume-builder/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullDocument() model.Document {
	doc := model.Seed()
	doc.PersonalInfo = model.PersonalInfo{
		FirstName: "ada", LastName: "Lovelace", Title: "Analyst", Email: "ada@example.com",
		City: "London", Summary: "Writes programs for engines.", LinkedIn: "linkedin.com/in/ada", Website: "https://www.ada.dev/about",
	}
	doc.WorkExperience = []model.WorkEntry{
		{ID: "exp-1", Company: "Analytical Engines", Position: "Programmer", Span: model.OngoingSince("2021-03"), Achievements: []string{"Note G", " "}},
		{ID: "exp-2", Description: "HIDDEN-WORK"},
		{ID: "exp-3", Position: "Assistant", Span: model.Ended("2019-01", "2020-12")},
		{ID: "exp-4", Company: "Difference Works", Span: model.Ended("2017-02", "2018-11")},
	}
	doc.Education = []model.EducationEntry{
		{ID: "edu-1", Institution: "Home School", Degree: "Mathematics", Field: "Logic", GPA: "4.0", Span: model.Ended("1830-01", "1835-06")},
		{ID: "edu-2", Field: "HIDDEN-EDU"},
	}
	doc.Skills = []model.SkillCategory{
		{ID: "skill-1", Category: "Technical Skills", Skills: []string{"Algorithms", "Punch cards"}},
		{ID: "skill-2", Category: "HIDDEN-SKILLS", Skills: []string{}},
	}
	doc.Projects = []model.ProjectEntry{
		{ID: "proj-1", Name: "Bernoulli numbers", URL: "https://github.com/ada/bernoulli", Technologies: []string{"Engine"}},
		{ID: "proj-2", Description: "HIDDEN-PROJECT"},
	}
	doc.Certifications = []model.Certification{
		{ID: "cert-1", Name: "Royal Society", Issuer: "RS", Date: "1843-09", URL: "https://www.credly.com/badges/1"},
		{ID: "cert-2", Issuer: "HIDDEN-CERT"},
	}
	doc.Hobbies = []string{"Poetry"}
	return doc
}

func TestFormatDate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2023-09", "Sep 2023"},
		{"1999-12", "Dec 1999"},
		{"", ""},
		{"  ", ""},
		{"2023", "2023"},
		{"Summer 2020", "Summer 2020"},
		{"2023-13", "2023-13"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDate(tt.in), tt.in)
	}
}

func TestDateRange(t *testing.T) {
	assert.Equal(t, "Mar 2021 - Present", formatRange("2021-03", "", true).Join(" - "))
	assert.Equal(t, "Jan 2019 - Dec 2020", formatRange("2019-01", "2020-12", false).Join(" - "))
	assert.Equal(t, "Jan 2019 - ", formatRange("2019-01", "", false).Join(" - "))
	assert.True(t, formatRange("", "", false).IsZero())
	assert.Equal(t, "", formatRange("", "", false).Join(" - "))
	assert.Equal(t, " - Present", formatRange("", "", true).Join(" - "))
}

func TestLinkLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://www.credly.com/badges/x", "credly.com"},
		{"github.com/ada", "github.com"},
		{"https://sub.example.co.uk/x", "example.co.uk"},
		{"http://localhost:8080/x", "localhost"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LinkLabel(tt.in), tt.in)
	}
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AL", Initials("ada", "lovelace"))
	assert.Equal(t, "A", Initials("ada", ""))
	assert.Equal(t, "ÉB", Initials("émile", "Borel"))
	assert.Equal(t, "", Initials("", " "))
}

func TestBuildLayout_InclusionRules(t *testing.T) {
	l := BuildLayout(fullDocument())

	require.Len(t, l.Work, 3)
	assert.Equal(t, "Programmer", l.Work[0].Position)
	assert.Equal(t, "Present", l.Work[0].Dates.End)
	assert.Equal(t, []string{"Note G"}, l.Work[0].Achievements)
	assert.Equal(t, "Assistant", l.Work[1].Position)
	assert.Empty(t, l.Work[1].Company)
	assert.Equal(t, "Difference Works", l.Work[2].Company)
	assert.Empty(t, l.Work[2].Position)
	assert.Equal(t, "Feb 2017", l.Work[2].Dates.Start)
	assert.Len(t, l.Education, 1)
	require.Len(t, l.Skills, 1)
	assert.Equal(t, "Technical Skills", l.Skills[0].Category)
	require.Len(t, l.Projects, 1)
	assert.Equal(t, "github.com", l.Projects[0].Link.Label)
	require.Len(t, l.Certifications, 1)
	assert.Equal(t, "Sep 1843", l.Certifications[0].Date)
	assert.Equal(t, "https://linkedin.com/in/ada", l.Contact.LinkedIn.Href)
	assert.Equal(t, "London", l.Contact.Location)
	assert.Equal(t, "AL", l.Initials)
}

func TestBuildLayout_Seed(t *testing.T) {
	l := BuildLayout(model.Seed())

	assert.Empty(t, l.Work)
	assert.Empty(t, l.Education)
	assert.Empty(t, l.Skills)
	assert.Empty(t, l.Projects)
	assert.Empty(t, l.Certifications)
	assert.Empty(t, l.Hobbies)
	assert.Empty(t, l.Summary)
	assert.True(t, l.Contact.IsZero())
}

func TestRender_AllVariants(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	doc := fullDocument()

	for _, v := range model.Templates() {
		t.Run(string(v), func(t *testing.T) {
			s, err := r.Render(doc, v)
			require.NoError(t, err)

			assert.Equal(t, v, s.Variant)
			assert.Equal(t, PageWidthMM, s.WidthMM)
			assert.Contains(t, s.HTML, `id="resume-surface"`)
			assert.Contains(t, s.HTML, "resume--"+string(v))
			for _, want := range []string{"Lovelace", "Analytical Engines", "Assistant", "Difference Works", "Nov 2018", "Mar 2021", "Present", "Mathematics", "Algorithms", "Bernoulli numbers", "Royal Society", "Poetry", "Writes programs for engines."} {
				assert.Contains(t, s.HTML, want)
			}
			for _, hidden := range []string{"HIDDEN-WORK", "HIDDEN-EDU", "HIDDEN-SKILLS", "HIDDEN-PROJECT", "HIDDEN-CERT"} {
				assert.NotContains(t, s.HTML, hidden)
			}

			again, err := r.Render(doc, v)
			require.NoError(t, err)
			assert.Equal(t, s.HTML, again.HTML)
		})
	}
}

func TestRender_SeedOmitsSections(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, v := range model.Templates() {
		s, err := r.Render(model.Seed(), v)
		require.NoError(t, err)
		for _, heading := range []string{"Work Experience", "Professional Experience", "Education", "Projects", "Certifications", "Interests", "Summary", "About"} {
			assert.NotContains(t, s.HTML, "<h3>"+heading, "%s shows %s", v, heading)
		}
	}
}

func TestRender_UnknownVariantAndEscaping(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	doc := model.Seed()
	doc.PersonalInfo.FirstName = "<script>alert(1)</script>"

	s, err := r.Render(doc, model.Template("retro"))
	require.NoError(t, err)
	assert.Equal(t, model.TemplateModern, s.Variant)
	assert.NotContains(t, s.HTML, "<script>alert(1)</script>")
	assert.True(t, strings.Contains(s.HTML, "&lt;script&gt;"))
}
