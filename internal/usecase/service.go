package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/domain"
	"resume-builder/internal/editor"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/render"
	"resume-builder/internal/store"
)

// Service is the application layer behind the HTTP API. Documents are
// loaded on first use and closed again once idle or when the open-document cap is reached.
type Service struct {
	kv        repository.KV
	storeOpts []store.Option
	renderer  *render.Renderer
	processor *Processor
	jobs      JobsRepo
	assist    *editor.Assist
	now       func() time.Time

	idleTTL     time.Duration
	maxSessions int

	mu       sync.Mutex
	sessions map[string]*session

	// closing holds users whose evicted session is still flushing; a new
	// session for them waits so it loads the flushed document.
	closing map[string]chan struct{}

	stopJanitor chan struct{}
	janitorDone chan struct{}
	closeOnce   sync.Once
}

type Deps struct {
	KV        repository.KV
	StoreOpts []store.Option
	Renderer  *render.Renderer
	Exporter  Exporter
	Jobs      JobsRepo
	Assist    *editor.Assist

	// IdleTTL closes documents unused for this long. Zero uses
	// DefaultIdleTTL; negative disables idle eviction.
	IdleTTL time.Duration

	// MaxSessions caps open documents; the least recently used idle ones
	// are closed first. Zero uses DefaultMaxSessions; negative is unbounded.
	MaxSessions int
}

const (
	DefaultIdleTTL     = 30 * time.Minute
	DefaultMaxSessions = 1000
)

func NewService(d Deps) *Service {
	s := &Service{
		kv:          d.KV,
		storeOpts:   d.StoreOpts,
		renderer:    d.Renderer,
		processor:   NewProcessor(d.Exporter, d.Jobs),
		jobs:        d.Jobs,
		assist:      d.Assist,
		now:         time.Now,
		idleTTL:     d.IdleTTL,
		maxSessions: d.MaxSessions,
		sessions:    map[string]*session{},
		closing:     map[string]chan struct{}{},
		stopJanitor: make(chan struct{}),
		janitorDone: make(chan struct{}),
	}
	if s.idleTTL == 0 {
		s.idleTTL = DefaultIdleTTL
	}
	if s.maxSessions == 0 {
		s.maxSessions = DefaultMaxSessions
	}
	if s.idleTTL > 0 {
		go s.janitor()
	} else {
		close(s.janitorDone)
	}
	return s
}

func (s *Service) Get(ctx context.Context, userID string) ResumeView {
	sess, release := s.acquire(ctx, userID)
	defer release()
	st := sess.store
	return ResumeView{Document: st.Document(), Template: st.Template()}
}

// ReplaceSection swaps a whole section from its JSON value.
func (s *Service) ReplaceSection(ctx context.Context, userID string, name model.Section, raw []byte) (any, error) {
	value, err := model.DecodeSection(name, raw)
	if err != nil {
		return nil, err
	}
	sess, release := s.acquire(ctx, userID)
	defer release()
	if err := sess.store.ReplaceSection(name, value); err != nil {
		return nil, err
	}
	sess.editors.Reload()
	return sess.store.Section(name), nil
}

// AddEntry appends a blank entry to a repeatable section (a named category
// for skills, a hobby for hobbies) and returns the updated section.
func (s *Service) AddEntry(ctx context.Context, userID string, name model.Section, text string) (any, error) {
	sess, release := s.acquire(ctx, userID)
	defer release()
	ed := sess.editors
	var err error
	switch name {
	case model.SectionWorkExperience:
		_, err = ed.Work.Add()
	case model.SectionEducation:
		_, err = ed.Education.Add()
	case model.SectionProjects:
		_, err = ed.Projects.Add()
	case model.SectionCertifications:
		_, err = ed.Certifications.Add()
	case model.SectionSkills:
		_, _, err = ed.Skills.AddCategory(text)
	case model.SectionHobbies:
		err = ed.Hobbies.Add(text)
	default:
		err = notRepeatable(name)
	}
	if err != nil {
		return nil, err
	}
	return sess.store.Section(name), nil
}

func (s *Service) RemoveEntry(ctx context.Context, userID string, name model.Section, i int) (any, error) {
	sess, release := s.acquire(ctx, userID)
	defer release()
	ed := sess.editors
	var err error
	switch name {
	case model.SectionWorkExperience:
		err = ed.Work.Remove(i)
	case model.SectionEducation:
		err = ed.Education.Remove(i)
	case model.SectionProjects:
		err = ed.Projects.Remove(i)
	case model.SectionCertifications:
		err = ed.Certifications.Remove(i)
	case model.SectionSkills:
		err = ed.Skills.RemoveCategory(i)
	case model.SectionHobbies:
		err = ed.Hobbies.Remove(i)
	default:
		err = notRepeatable(name)
	}
	if err != nil {
		return nil, err
	}
	return sess.store.Section(name), nil
}

// UpdateEntry applies field edits to entry i of a section, or to personal
// info (i is ignored). Fields are applied in name order and the first
// rejected one stops the update; earlier fields stay applied.
func (s *Service) UpdateEntry(ctx context.Context, userID string, name model.Section, i int, ch EntryChange) (any, error) {
	sess, release := s.acquire(ctx, userID)
	defer release()
	ed := sess.editors

	var setField func(field, value string) error
	var setCurrent func(on bool) error
	switch name {
	case model.SectionPersonalInfo:
		setField = ed.Personal.SetField
	case model.SectionWorkExperience:
		setField = func(f, v string) error { return ed.Work.SetField(i, f, v) }
		setCurrent = func(on bool) error { return ed.Work.SetCurrent(i, on) }
	case model.SectionEducation:
		setField = func(f, v string) error { return ed.Education.SetField(i, f, v) }
		setCurrent = func(on bool) error { return ed.Education.SetCurrent(i, on) }
	case model.SectionProjects:
		setField = func(f, v string) error { return ed.Projects.SetField(i, f, v) }
		setCurrent = func(on bool) error { return ed.Projects.SetCurrent(i, on) }
	case model.SectionCertifications:
		setField = func(f, v string) error { return ed.Certifications.SetField(i, f, v) }
	case model.SectionSkills:
		setField = func(f, v string) error {
			if f != "category" {
				return &model.ValidationError{Field: f, Message: fmt.Sprintf("skill category has no field %q", f), Err: model.ErrUnknownField}
			}
			return ed.Skills.RenameCategory(i, v)
		}
	default:
		return nil, notRepeatable(name)
	}

	// current goes first so an end date in the same change is checked
	// against the new flag
	if ch.Current != nil {
		if setCurrent == nil {
			return nil, &model.ValidationError{Field: "current", Message: fmt.Sprintf("%s entries have no current flag", name), Err: model.ErrUnknownField}
		}
		if err := setCurrent(*ch.Current); err != nil {
			return nil, err
		}
	}
	fields := make([]string, 0, len(ch.Fields))
	for f := range ch.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		if err := setField(f, ch.Fields[f]); err != nil {
			return nil, err
		}
	}
	return sess.store.Section(name), nil
}

// AddItem appends to a string list inside an entry: achievements of a
// role, technologies of a project or skills of a category.
func (s *Service) AddItem(ctx context.Context, userID string, name model.Section, i int, text string) (any, error) {
	sess, release := s.acquire(ctx, userID)
	defer release()
	ed := sess.editors
	var err error
	switch name {
	case model.SectionWorkExperience:
		err = ed.Work.AddAchievement(i, text)
	case model.SectionProjects:
		err = ed.Projects.AddTechnology(i, text)
	case model.SectionSkills:
		err = ed.Skills.AddSkill(i, text)
	default:
		err = &model.ValidationError{Field: string(name), Message: fmt.Sprintf("%s entries have no item list", name), Err: model.ErrSectionType}
	}
	if err != nil {
		return nil, err
	}
	return sess.store.Section(name), nil
}

func (s *Service) RemoveItem(ctx context.Context, userID string, name model.Section, i, j int) (any, error) {
	sess, release := s.acquire(ctx, userID)
	defer release()
	ed := sess.editors
	var err error
	switch name {
	case model.SectionWorkExperience:
		err = ed.Work.RemoveAchievement(i, j)
	case model.SectionProjects:
		err = ed.Projects.RemoveTechnology(i, j)
	case model.SectionSkills:
		err = ed.Skills.RemoveSkill(i, j)
	default:
		err = &model.ValidationError{Field: string(name), Message: fmt.Sprintf("%s entries have no item list", name), Err: model.ErrSectionType}
	}
	if err != nil {
		return nil, err
	}
	return sess.store.Section(name), nil
}

func notRepeatable(name model.Section) error {
	if _, err := model.ParseSection(string(name)); err != nil {
		return err
	}
	return &model.ValidationError{Field: string(name), Message: fmt.Sprintf("%s has no entries", name), Err: model.ErrSectionType}
}

func (s *Service) SetTemplate(ctx context.Context, userID, name string) (model.Template, error) {
	t, err := model.ParseTemplate(name)
	if err != nil {
		return "", err
	}
	sess, release := s.acquire(ctx, userID)
	defer release()
	st := sess.store
	if err := st.SetTemplate(t); err != nil {
		return "", err
	}
	return st.Template(), nil
}

func (s *Service) Reset(ctx context.Context, userID string) (ResumeView, error) {
	sess, release := s.acquire(ctx, userID)
	defer release()
	err := sess.store.Reset(ctx)
	sess.editors.Reload()
	return ResumeView{Document: sess.store.Document(), Template: sess.store.Template()}, err
}

// Save persists the document now and reports the outcome.
func (s *Service) Save(ctx context.Context, userID string) error {
	sess, release := s.acquire(ctx, userID)
	defer release()
	return sess.store.Persist(ctx)
}

// Render renders the document with variant, or with the active template
// when variant is empty.
func (s *Service) Render(ctx context.Context, userID, variant string) (render.Surface, error) {
	sess, release := s.acquire(ctx, userID)
	defer release()
	return s.render(sess, userID, variant)
}

func (s *Service) render(sess *session, userID, variant string) (render.Surface, error) {
	t := sess.store.Template()
	if variant != "" {
		t = model.Template(variant)
	}
	surface, err := s.renderer.Render(sess.store.Document(), t)
	if err != nil {
		return render.Surface{}, err
	}
	surface.Key = userID
	return surface, nil
}

// Export renders the active template and exports it as a PDF. Only one
// export per user runs at a time.
func (s *Service) Export(ctx context.Context, userID string) (export.Result, error) {
	sess, release := s.acquire(ctx, userID)
	defer release()
	surface, err := s.render(sess, userID, "")
	if err != nil {
		return export.Result{}, err
	}
	now := s.now()
	doc := sess.store.Document()
	job := domain.NewExportJob(userID, string(surface.Variant), export.FileName(doc.PersonalInfo, now), now)
	return s.processor.Process(ctx, job, surface)
}

func (s *Service) ExportHistory(ctx context.Context, userID string, limit int) ([]domain.ExportJob, error) {
	if s.jobs == nil {
		return nil, nil
	}
	return s.jobs.ListByUser(ctx, userID, limit)
}

// AssistSummary drafts the professional summary and waits for it.
func (s *Service) AssistSummary(ctx context.Context, userID string) (AssistOutcome, error) {
	sess, release := s.acquire(ctx, userID)
	defer release()
	ed := sess.editors
	res, err := wait(ctx, ed.Personal.RequestSummary(ctx))
	if err != nil {
		return AssistOutcome{}, err
	}
	return AssistOutcome{Value: ed.Personal.Info(), Notice: res.Notice, Applied: res.Applied}, nil
}

// AssistAchievements drafts the achievements of the work entry with id.
func (s *Service) AssistAchievements(ctx context.Context, userID, entryID string) (AssistOutcome, error) {
	sess, release := s.acquire(ctx, userID)
	defer release()
	ed := sess.editors
	i := ed.Work.IndexOf(entryID)
	if i < 0 {
		return AssistOutcome{}, &model.ValidationError{Field: "entryId", Message: fmt.Sprintf("no work entry %q", entryID), Err: model.ErrInvalidEntryID}
	}
	ch, err := ed.Work.RequestAchievements(ctx, i)
	if err != nil {
		return AssistOutcome{}, err
	}
	res, err := wait(ctx, ch)
	if err != nil {
		return AssistOutcome{}, err
	}
	var entry any
	if j := ed.Work.IndexOf(entryID); j >= 0 {
		entry = ed.Work.Entries()[j]
	}
	return AssistOutcome{Value: entry, Notice: res.Notice, Applied: res.Applied}, nil
}

func wait(ctx context.Context, ch <-chan editor.AssistResult) (editor.AssistResult, error) {
	select {
	case res := <-ch:
		if res.Err != nil {
			return res, res.Err
		}
		if res.Stale {
			return res, ErrStaleAssist
		}
		return res, nil
	case <-ctx.Done():
		return editor.AssistResult{}, ctx.Err()
	}
}

// Close stops idle eviction and flushes and closes every open document.
func (s *Service) Close(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.stopJanitor) })
	<-s.janitorDone

	s.mu.Lock()
	open := make([]evicted, 0, len(s.sessions))
	for id, sess := range s.sessions {
		open = append(open, evicted{userID: id, sess: sess, done: make(chan struct{})})
		s.closing[id] = open[len(open)-1].done
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	var errs []error
	for _, e := range open {
		if err := s.closeSession(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
