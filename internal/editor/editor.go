// Package editor holds the section editors. Each keeps a working copy of
// its section, applies one change at a time and hands the whole section
// back to the store. A change the store rejects is dropped and the working
// copy stays as it was.
package editor

import (
	"fmt"
	"strings"
	"sync"

	"resume-builder/internal/model"
)

// Store is the part of store.DocumentStore the editors need.
type Store interface {
	Document() model.Document
	Section(name model.Section) any
	ReplaceSection(name model.Section, value any) error
}

func indexError(field string, i, n int) error {
	return &model.ValidationError{
		Field:   fmt.Sprintf("%s[%d]", field, i),
		Message: fmt.Sprintf("index %d out of range, have %d entries", i, n),
		Err:     model.ErrIndexOutOfRange,
	}
}

// list is the shared core of the tabbed editors: a slice of entries plus
// the index of the focused one.
type list[E any] struct {
	mu      sync.Mutex
	store   Store
	section model.Section
	clone   func([]E) []E
	entries []E
	active  int
}

func newList[E any](s Store, section model.Section, clone func([]E) []E) *list[E] {
	l := &list[E]{store: s, section: section, clone: clone}
	l.reloadLocked()
	return l
}

func (l *list[E]) reloadLocked() {
	l.entries, _ = l.store.Section(l.section).([]E)
	l.clampLocked()
}

func (l *list[E]) clampLocked() {
	if l.active >= len(l.entries) {
		l.active = len(l.entries) - 1
	}
	if l.active < 0 {
		l.active = 0
	}
}

// Reload discards the working copy and reads the section from the store
// again.
func (l *list[E]) Reload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reloadLocked()
}

// Entries returns a copy of the working entries.
func (l *list[E]) Entries() []E {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clone(l.entries)
}

func (l *list[E]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Active is the index of the focused entry.
func (l *list[E]) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

func (l *list[E]) Select(i int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.entries) {
		return indexError(string(l.section), i, len(l.entries))
	}
	l.active = i
	return nil
}

// Remove deletes entry i. The last remaining entry cannot be removed.
// Focus moves to the last entry when it falls off the end.
func (l *list[E]) Remove(i int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.entries) {
		return indexError(string(l.section), i, len(l.entries))
	}
	if len(l.entries) == 1 {
		return &model.ValidationError{Field: string(l.section), Message: "cannot remove the last entry", Err: model.ErrEmptySection}
	}
	next := l.clone(l.entries)
	next = append(next[:i], next[i+1:]...)
	if err := l.commitLocked(next); err != nil {
		return err
	}
	l.clampLocked()
	return nil
}

// add appends e and focuses it.
func (l *list[E]) add(e E) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := append(l.clone(l.entries), e)
	if err := l.commitLocked(next); err != nil {
		return 0, err
	}
	l.active = len(l.entries) - 1
	return l.active, nil
}

// update applies fn to a copy of entry i and commits the result. An error
// from fn or from the store leaves the working copy untouched.
func (l *list[E]) update(i int, fn func(*E) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.updateLocked(i, fn)
}

func (l *list[E]) updateLocked(i int, fn func(*E) error) error {
	if i < 0 || i >= len(l.entries) {
		return indexError(string(l.section), i, len(l.entries))
	}
	next := l.clone(l.entries)
	if err := fn(&next[i]); err != nil {
		return err
	}
	return l.commitLocked(next)
}

func (l *list[E]) commitLocked(next []E) error {
	if err := l.store.ReplaceSection(l.section, l.clone(next)); err != nil {
		return err
	}
	l.entries = next
	return nil
}

// appendItem trims s and appends it; blank input is ignored.
func appendItem(items []string, s string) ([]string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return items, false
	}
	return append(items, s), true
}

func removeItem(field string, items []string, j int) ([]string, error) {
	if j < 0 || j >= len(items) {
		return items, indexError(field, j, len(items))
	}
	return append(items[:j:j], items[j+1:]...), nil
}

// Set is one editor per section over the same store.
type Set struct {
	Personal       *PersonalInfoEditor
	Work           *WorkEditor
	Education      *EducationEditor
	Skills         *SkillsEditor
	Projects       *ProjectsEditor
	Certifications *CertificationsEditor
	Hobbies        *HobbiesEditor
}

func NewSet(s Store, a *Assist) *Set {
	return &Set{
		Personal:       NewPersonalInfoEditor(s, a),
		Work:           NewWorkEditor(s, a),
		Education:      NewEducationEditor(s),
		Skills:         NewSkillsEditor(s),
		Projects:       NewProjectsEditor(s),
		Certifications: NewCertificationsEditor(s),
		Hobbies:        NewHobbiesEditor(s),
	}
}

// Reload resyncs every editor after the store was changed behind their
// backs, e.g. by a whole-section replacement or a reset.
func (s *Set) Reload() {
	s.Personal.Reload()
	s.Work.Reload()
	s.Education.Reload()
	s.Skills.Reload()
	s.Projects.Reload()
	s.Certifications.Reload()
	s.Hobbies.Reload()
}
