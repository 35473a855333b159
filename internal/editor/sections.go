package editor

import (
	"strings"

	"resume-builder/internal/model"
)

type EducationEditor struct {
	*list[model.EducationEntry]
}

func NewEducationEditor(s Store) *EducationEditor {
	return &EducationEditor{newList(s, model.SectionEducation, model.CloneEducation)}
}

func (e *EducationEditor) Add() (int, error) {
	return e.add(model.EducationEntry{ID: model.NewEntryID(model.SectionEducation)})
}

func (e *EducationEditor) SetField(i int, field, value string) error {
	return e.update(i, func(ed *model.EducationEntry) error { return ed.SetField(field, value) })
}

func (e *EducationEditor) SetCurrent(i int, on bool) error {
	return e.update(i, func(ed *model.EducationEntry) error {
		ed.Span = ed.Span.WithOngoing(on)
		return nil
	})
}

type ProjectsEditor struct {
	*list[model.ProjectEntry]
}

func NewProjectsEditor(s Store) *ProjectsEditor {
	return &ProjectsEditor{newList(s, model.SectionProjects, model.CloneProjects)}
}

func (e *ProjectsEditor) Add() (int, error) {
	return e.add(model.ProjectEntry{ID: model.NewEntryID(model.SectionProjects), Technologies: []string{}})
}

func (e *ProjectsEditor) SetField(i int, field, value string) error {
	return e.update(i, func(p *model.ProjectEntry) error { return p.SetField(field, value) })
}

func (e *ProjectsEditor) SetCurrent(i int, on bool) error {
	return e.update(i, func(p *model.ProjectEntry) error {
		p.Span = p.Span.WithOngoing(on)
		return nil
	})
}

func (e *ProjectsEditor) AddTechnology(i int, tech string) error {
	return e.update(i, func(p *model.ProjectEntry) error {
		p.Technologies, _ = appendItem(p.Technologies, tech)
		return nil
	})
}

func (e *ProjectsEditor) RemoveTechnology(i, j int) error {
	return e.update(i, func(p *model.ProjectEntry) error {
		var err error
		p.Technologies, err = removeItem("technologies", p.Technologies, j)
		return err
	})
}

type CertificationsEditor struct {
	*list[model.Certification]
}

func NewCertificationsEditor(s Store) *CertificationsEditor {
	return &CertificationsEditor{newList(s, model.SectionCertifications, model.CloneCertifications)}
}

func (e *CertificationsEditor) Add() (int, error) {
	return e.add(model.Certification{ID: model.NewEntryID(model.SectionCertifications)})
}

func (e *CertificationsEditor) SetField(i int, field, value string) error {
	return e.update(i, func(c *model.Certification) error { return c.SetField(field, value) })
}

// SkillsEditor edits named categories of skills. Categories are tabs like
// the entries of the other sections.
type SkillsEditor struct {
	*list[model.SkillCategory]
}

func NewSkillsEditor(s Store) *SkillsEditor {
	return &SkillsEditor{newList(s, model.SectionSkills, model.CloneSkills)}
}

// AddCategory appends and focuses a new category. A blank name is ignored
// and reported with ok == false.
func (e *SkillsEditor) AddCategory(name string) (i int, ok bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, nil
	}
	i, err = e.add(model.SkillCategory{ID: model.NewEntryID(model.SectionSkills), Category: name, Skills: []string{}})
	return i, err == nil, err
}

func (e *SkillsEditor) RemoveCategory(i int) error {
	return e.Remove(i)
}

// RenameCategory ignores a blank name.
func (e *SkillsEditor) RenameCategory(i int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return e.update(i, func(c *model.SkillCategory) error {
		c.Category = name
		return nil
	})
}

func (e *SkillsEditor) AddSkill(i int, skill string) error {
	return e.update(i, func(c *model.SkillCategory) error {
		c.Skills, _ = appendItem(c.Skills, skill)
		return nil
	})
}

func (e *SkillsEditor) RemoveSkill(i, j int) error {
	return e.update(i, func(c *model.SkillCategory) error {
		var err error
		c.Skills, err = removeItem("skills", c.Skills, j)
		return err
	})
}
