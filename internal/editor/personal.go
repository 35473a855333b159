package editor

import (
	"context"
	"strings"
	"sync"

	"resume-builder/internal/model"
	"resume-builder/pkg/ai/formatters"
)

type PersonalInfoEditor struct {
	mu     sync.Mutex
	store  Store
	assist *Assist
	info   model.PersonalInfo
	gen    uint64
}

func NewPersonalInfoEditor(s Store, a *Assist) *PersonalInfoEditor {
	if a == nil {
		a = NewAssist(nil, 0, nil)
	}
	e := &PersonalInfoEditor{store: s, assist: a}
	e.info, _ = s.Section(model.SectionPersonalInfo).(model.PersonalInfo)
	return e
}

func (e *PersonalInfoEditor) Reload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.info, _ = e.store.Section(model.SectionPersonalInfo).(model.PersonalInfo)
	e.gen++
}

func (e *PersonalInfoEditor) Info() model.PersonalInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.info
}

func (e *PersonalInfoEditor) SetField(field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setFieldLocked(field, value)
}

func (e *PersonalInfoEditor) setFieldLocked(field, value string) error {
	next := e.info
	if err := next.SetField(field, value); err != nil {
		return err
	}
	if err := e.store.ReplaceSection(model.SectionPersonalInfo, next); err != nil {
		return err
	}
	e.info = next
	if field == "summary" {
		e.gen++
	}
	return nil
}

// RequestSummary drafts a summary in the background. The draft is applied
// only if the summary was not edited in the meantime. The channel yields
// exactly one result.
func (e *PersonalInfoEditor) RequestSummary(ctx context.Context) <-chan AssistResult {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()
	in := SummaryInputFrom(e.store.Document())

	out := make(chan AssistResult, 1)
	go func() {
		defer close(out)
		text, notice := e.assist.summary(ctx, in)
		res := AssistResult{Field: SummaryField, Notice: notice}

		e.mu.Lock()
		defer e.mu.Unlock()
		if e.gen != gen {
			res.Stale = true
			out <- res
			return
		}
		res.Err = e.setFieldLocked("summary", text)
		res.Applied = res.Err == nil
		out <- res
	}()
	return out
}

// SummaryInputFrom collects the context a summary is written from.
func SummaryInputFrom(doc model.Document) formatters.SummaryInput {
	p := doc.PersonalInfo
	in := formatters.SummaryInput{
		Name:  strings.TrimSpace(p.FirstName + " " + p.LastName),
		Title: p.Title,
	}
	for _, w := range doc.WorkExperience {
		if w.Position == "" && w.Company == "" {
			continue
		}
		in.Roles = append(in.Roles, formatters.Role{Position: w.Position, Company: w.Company, Description: w.Description})
	}
	for _, c := range doc.Skills {
		var skills []string
		for _, s := range c.Skills {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
		if len(skills) == 0 {
			continue
		}
		if in.Skills == nil {
			in.Skills = map[string][]string{}
		}
		in.Skills[c.Category] = append(in.Skills[c.Category], skills...)
	}
	return in
}
