package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/metrics"
	"resume-builder/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PersistenceError wraps a failed write. The in-memory document is never
// rolled back when one occurs.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func DocumentKey(userID string) string { return "resume_" + userID }
func TemplateKey(userID string) string { return "template_" + userID }

// DocumentStore owns one user's document. Mutations replace whole sections
// under a mutex, so the last replacement wins. Every accepted mutation
// schedules a background write of the latest snapshot.
type DocumentStore struct {
	userID  string
	kv      repository.KV
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu  sync.RWMutex
	doc model.Document
	gen uint64

	// writeMu orders writes so a later write never carries an older snapshot.
	writeMu  sync.Mutex
	savedGen uint64
	lastErr  error

	timeout time.Duration
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	closeMu sync.Once
}

type Option func(*DocumentStore)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *DocumentStore) { s.metrics = m }
}

// WithWriteTimeout bounds each background write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *DocumentStore) { s.timeout = d }
}

// Load restores the user's document. It never fails: a missing, unreadable
// or invalid stored document is replaced by the seed and the loss is logged.
func Load(ctx context.Context, kv repository.KV, userID string, opts ...Option) *DocumentStore {
	s := &DocumentStore{
		userID:  userID,
		kv:      kv,
		logger:  log.With().Str("component", "store").Str("user_id", userID).Logger(),
		timeout: 10 * time.Second,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	s.doc = s.restore(ctx)
	go s.saver()
	return s
}

func (s *DocumentStore) restore(ctx context.Context) model.Document {
	doc := model.Seed()

	raw, found, err := s.kv.Get(ctx, DocumentKey(s.userID))
	switch {
	case err != nil:
		s.dataLoss("read_error", err)
	case found:
		stored, err := model.DecodeDocument([]byte(raw))
		if err != nil {
			s.dataLoss("invalid_document", err)
			break
		}
		doc = stored
	}

	tpl, found, err := s.kv.Get(ctx, TemplateKey(s.userID))
	switch {
	case err != nil:
		s.dataLoss("template_read_error", err)
		doc.ActiveTemplate = model.TemplateModern
	case found:
		doc.ActiveTemplate = model.TemplateOrDefault(tpl)
		if string(doc.ActiveTemplate) != tpl {
			s.logger.Warn().Str("stored", tpl).Msg("unknown stored template, using modern")
		}
	default:
		doc.ActiveTemplate = model.TemplateModern
	}
	return doc
}

func (s *DocumentStore) dataLoss(reason string, err error) {
	s.logger.Warn().Err(err).Str("reason", reason).Msg("stored resume discarded, falling back to seed document")
	s.metrics.LoadFallback(reason)
}

func (s *DocumentStore) UserID() string { return s.userID }

// Document returns a deep copy of the current state.
func (s *DocumentStore) Document() model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Section returns a deep copy of one section's value.
func (s *DocumentStore) Section(name model.Section) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Section(name)
}

func (s *DocumentStore) Template() model.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.ActiveTemplate
}

// ReplaceSection swaps a whole section. A rejected value leaves the document
// unchanged and nothing is scheduled.
func (s *DocumentStore) ReplaceSection(name model.Section, value any) error {
	s.mu.Lock()
	next, err := s.doc.WithSection(name, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.doc = next
	s.gen++
	s.mu.Unlock()

	s.schedule()
	return nil
}

func (s *DocumentStore) SetTemplate(t model.Template) error {
	if !t.Valid() {
		return &model.ValidationError{Field: "template", Message: fmt.Sprintf("unknown template %q", t), Err: model.ErrUnknownTemplate}
	}
	s.mu.Lock()
	s.doc.ActiveTemplate = t
	s.gen++
	s.mu.Unlock()

	s.schedule()
	return nil
}

// Reset restores the seed document (template included) and persists it
// immediately.
func (s *DocumentStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.doc = model.Seed()
	s.gen++
	s.mu.Unlock()
	return s.Persist(ctx)
}

// Persist writes the current snapshot to both keys. Calling it again
// without intervening changes writes identical values.
func (s *DocumentStore) Persist(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.writeLocked(ctx)
}

// Flush writes pending changes, if any, and reports the outcome of the
// latest write.
func (s *DocumentStore) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	clean := s.savedGen == s.gen
	s.mu.RUnlock()
	if clean && s.lastErr == nil {
		return nil
	}
	return s.writeLocked(ctx)
}

// LastPersistError is the result of the most recent write.
func (s *DocumentStore) LastPersistError() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.lastErr
}

func (s *DocumentStore) writeLocked(ctx context.Context) error {
	s.mu.RLock()
	snapshot := s.doc.Clone()
	gen := s.gen
	s.mu.RUnlock()

	err := s.write(ctx, snapshot)
	s.lastErr = err
	if err != nil {
		s.metrics.PersistFailure()
		s.logger.Error().Err(err).Uint64("generation", gen).Msg("persist resume failed")
		return err
	}
	s.savedGen = gen
	return nil
}

func (s *DocumentStore) write(ctx context.Context, doc model.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return &PersistenceError{Key: DocumentKey(s.userID), Err: err}
	}
	if err := s.kv.Set(ctx, DocumentKey(s.userID), string(raw)); err != nil {
		return &PersistenceError{Key: DocumentKey(s.userID), Err: err}
	}
	if err := s.kv.Set(ctx, TemplateKey(s.userID), string(doc.ActiveTemplate)); err != nil {
		return &PersistenceError{Key: TemplateKey(s.userID), Err: err}
	}
	return nil
}

// schedule wakes the saver. Requests made while a write is pending
// coalesce into that write.
func (s *DocumentStore) schedule() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *DocumentStore) saver() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-s.wake:
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			_ = s.Flush(ctx)
			cancel()
		}
	}
}

// Close stops the background saver and writes any pending change.
func (s *DocumentStore) Close(ctx context.Context) error {
	s.closeMu.Do(func() { close(s.stop) })
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.Flush(ctx)
}
