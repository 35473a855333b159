package editor

import (
	"context"
	"strings"

	"resume-builder/internal/model"
	"resume-builder/pkg/ai/formatters"
)

type WorkEditor struct {
	*list[model.WorkEntry]
	assist *Assist
	// gens counts edits to each entry's achievements, keyed by entry id.
	gens map[string]uint64
}

func NewWorkEditor(s Store, a *Assist) *WorkEditor {
	if a == nil {
		a = NewAssist(nil, 0, nil)
	}
	return &WorkEditor{
		list:   newList(s, model.SectionWorkExperience, model.CloneWork),
		assist: a,
		gens:   map[string]uint64{},
	}
}

// Reload also invalidates every AI request in flight.
func (e *WorkEditor) Reload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reloadLocked()
	for id := range e.gens {
		e.gens[id]++
	}
	for _, w := range e.entries {
		e.gens[w.ID]++
	}
}

func (e *WorkEditor) Add() (int, error) {
	return e.add(model.WorkEntry{ID: model.NewEntryID(model.SectionWorkExperience), Achievements: []string{}})
}

func (e *WorkEditor) SetField(i int, field, value string) error {
	return e.update(i, func(w *model.WorkEntry) error { return w.SetField(field, value) })
}

// SetCurrent marks the role as ongoing. Turning it on clears the end date.
func (e *WorkEditor) SetCurrent(i int, on bool) error {
	return e.update(i, func(w *model.WorkEntry) error {
		w.Span = w.Span.WithOngoing(on)
		return nil
	})
}

func (e *WorkEditor) AddAchievement(i int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	added := false
	err := e.updateLocked(i, func(w *model.WorkEntry) error {
		w.Achievements, added = appendItem(w.Achievements, text)
		return nil
	})
	if err == nil && added {
		e.gens[e.entries[i].ID]++
	}
	return err
}

func (e *WorkEditor) RemoveAchievement(i, j int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.updateLocked(i, func(w *model.WorkEntry) error {
		var err error
		w.Achievements, err = removeItem("achievements", w.Achievements, j)
		return err
	})
	if err == nil {
		e.gens[e.entries[i].ID]++
	}
	return err
}

// RequestAchievements drafts achievements for entry i in the background and
// replaces the entry's list with them. The draft is discarded if the list
// was edited or the entry removed meanwhile.
func (e *WorkEditor) RequestAchievements(ctx context.Context, i int) (<-chan AssistResult, error) {
	e.mu.Lock()
	if i < 0 || i >= len(e.entries) {
		n := len(e.entries)
		e.mu.Unlock()
		return nil, indexError(string(e.section), i, n)
	}
	entry := e.entries[i]
	gen := e.gens[entry.ID]
	e.mu.Unlock()

	field := AchievementsField(entry.ID)
	in := AchievementsInputFrom(entry)
	out := make(chan AssistResult, 1)
	go func() {
		defer close(out)
		items, notice := e.assist.achievements(ctx, entry.ID, in)
		res := AssistResult{Field: field, Notice: notice}

		e.mu.Lock()
		defer e.mu.Unlock()
		idx := e.indexOfLocked(entry.ID)
		if idx < 0 || e.gens[entry.ID] != gen {
			res.Stale = true
			out <- res
			return
		}
		res.Err = e.updateLocked(idx, func(w *model.WorkEntry) error {
			w.Achievements = items
			return nil
		})
		if res.Err == nil {
			res.Applied = true
			e.gens[entry.ID]++
		}
		out <- res
	}()
	return out, nil
}

// IndexOf returns the index of the entry with the given id, or -1.
func (e *WorkEditor) IndexOf(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexOfLocked(id)
}

func (e *WorkEditor) indexOfLocked(id string) int {
	for i, w := range e.entries {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// AchievementsInputFrom describes a role for the achievements prompt.
func AchievementsInputFrom(w model.WorkEntry) formatters.AchievementsInput {
	return formatters.AchievementsInput{
		Position:    w.Position,
		Company:     w.Company,
		Location:    w.Location,
		Period:      period(w.Span),
		Description: w.Description,
	}
}

func period(s model.Span) string {
	end := s.End()
	if s.Ongoing() {
		end = "present"
	}
	if s.Start() == "" && end == "" {
		return ""
	}
	return strings.TrimSpace(s.Start() + " to " + end)
}
