package editor

import (
	"sync"

	"resume-builder/internal/model"
)

// HobbiesEditor edits the free-form interests list, which may be empty.
type HobbiesEditor struct {
	mu      sync.Mutex
	store   Store
	hobbies []string
}

func NewHobbiesEditor(s Store) *HobbiesEditor {
	e := &HobbiesEditor{store: s}
	e.Reload()
	return e
}

func (e *HobbiesEditor) Reload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hobbies, _ = e.store.Section(model.SectionHobbies).([]string)
}

func (e *HobbiesEditor) Hobbies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.hobbies...)
}

// Add appends a trimmed hobby; blank input is ignored.
func (e *HobbiesEditor) Add(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, ok := appendItem(append([]string{}, e.hobbies...), text)
	if !ok {
		return nil
	}
	return e.commitLocked(next)
}

func (e *HobbiesEditor) Remove(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := removeItem(string(model.SectionHobbies), e.hobbies, i)
	if err != nil {
		return err
	}
	return e.commitLocked(next)
}

func (e *HobbiesEditor) commitLocked(next []string) error {
	if err := e.store.ReplaceSection(model.SectionHobbies, next); err != nil {
		return err
	}
	e.hobbies = next
	return nil
}
