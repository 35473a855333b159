package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"resume-builder/internal/editor"
	"resume-builder/internal/store"

	"github.com/rs/zerolog/log"
)

const sessionCloseTimeout = 10 * time.Second

// session is one user's open document and its editors. refs and lastUsed
// are guarded by Service.mu.
type session struct {
	store    *store.DocumentStore
	editors  *editor.Set
	refs     int
	lastUsed time.Time
}

type evicted struct {
	userID string
	sess   *session
	done   chan struct{}
}

// acquire returns the user's session, loading it on first use, and a
// release func the caller must run when done. A session is never closed
// while acquired. The backend read happens outside Service.mu.
func (s *Service) acquire(ctx context.Context, userID string) (*session, func()) {
	for {
		s.mu.Lock()
		if sess, ok := s.sessions[userID]; ok {
			sess.refs++
			s.mu.Unlock()
			return sess, s.releaser(sess)
		}
		if done, ok := s.closing[userID]; ok {
			s.mu.Unlock()
			<-done
			continue
		}
		s.mu.Unlock()

		st := store.Load(ctx, s.kv, userID, s.storeOpts...)
		fresh := &session{store: st, editors: editor.NewSet(st, s.assist)}

		s.mu.Lock()
		if sess, ok := s.sessions[userID]; ok {
			sess.refs++
			s.mu.Unlock()
			// lost the race; fresh has no changes to flush
			_ = st.Close(context.Background())
			return sess, s.releaser(sess)
		}
		if _, ok := s.closing[userID]; ok {
			s.mu.Unlock()
			_ = st.Close(context.Background())
			continue
		}
		fresh.refs = 1
		fresh.lastUsed = s.now()
		s.sessions[userID] = fresh
		victims := s.overCapLocked()
		s.mu.Unlock()

		s.closeAll(victims)
		return fresh, s.releaser(fresh)
	}
}

func (s *Service) releaser(sess *session) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			sess.refs--
			sess.lastUsed = s.now()
			s.mu.Unlock()
		})
	}
}

// overCapLocked detaches the least recently used idle sessions until the
// cap holds. Sessions in use are skipped, so the cap can be exceeded while
// every open document is busy.
func (s *Service) overCapLocked() []evicted {
	if s.maxSessions < 0 || len(s.sessions) <= s.maxSessions {
		return nil
	}
	idle := make([]string, 0, len(s.sessions))
	for id, sess := range s.sessions {
		if sess.refs == 0 {
			idle = append(idle, id)
		}
	}
	sort.Slice(idle, func(i, j int) bool {
		return s.sessions[idle[i]].lastUsed.Before(s.sessions[idle[j]].lastUsed)
	})
	var out []evicted
	for _, id := range idle {
		if len(s.sessions) <= s.maxSessions {
			break
		}
		out = append(out, s.detachLocked(id))
	}
	return out
}

// evictIdle closes sessions unused since before now minus the idle TTL.
func (s *Service) evictIdle(now time.Time) int {
	s.mu.Lock()
	var victims []evicted
	for id, sess := range s.sessions {
		if sess.refs == 0 && now.Sub(sess.lastUsed) >= s.idleTTL {
			victims = append(victims, s.detachLocked(id))
		}
	}
	s.mu.Unlock()

	s.closeAll(victims)
	return len(victims)
}

func (s *Service) detachLocked(id string) evicted {
	e := evicted{userID: id, sess: s.sessions[id], done: make(chan struct{})}
	delete(s.sessions, id)
	s.closing[id] = e.done
	return e
}

func (s *Service) closeAll(victims []evicted) {
	for _, e := range victims {
		ctx, cancel := context.WithTimeout(context.Background(), sessionCloseTimeout)
		_ = s.closeSession(ctx, e)
		cancel()
	}
}

// closeSession flushes and stops a detached session. A failed flush is
// logged and the in-memory changes are dropped with it.
func (s *Service) closeSession(ctx context.Context, e evicted) error {
	err := e.sess.store.Close(ctx)
	if err != nil {
		log.Error().Err(err).Str("user_id", e.userID).Msg("close resume store, unsaved changes lost")
	} else {
		log.Debug().Str("user_id", e.userID).Msg("resume session closed")
	}

	s.mu.Lock()
	delete(s.closing, e.userID)
	s.mu.Unlock()
	close(e.done)
	return err
}

func (s *Service) janitor() {
	defer close(s.janitorDone)
	every := s.idleTTL / 2
	if every < time.Second {
		every = time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stopJanitor:
			return
		case <-t.C:
			if n := s.evictIdle(s.now()); n > 0 {
				log.Debug().Int("closed", n).Msg("idle resume sessions closed")
			}
		}
	}
}

// OpenSessions is the number of documents currently held in memory.
func (s *Service) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
