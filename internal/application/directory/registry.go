package directory

import (
	"context"
	"sync"
	"time"

	"yuime-backend/internal/application/filter"

	"github.com/rs/zerolog/log"
)

// SnapshotStore persists filter states so a session survives a restart or a
// request landing on another instance. A cleared session's snapshot is deleted.
type SnapshotStore interface {
	Load(ctx context.Context, scope, sessionID string) (filter.State, bool, error)
	Save(ctx context.Context, scope, sessionID string, st filter.State) error
	Delete(ctx context.Context, scope, sessionID string) error
}

const defaultMaxSessions = 1000

const snapshotTimeout = 2 * time.Second

// Registry holds the live filter sessions of one list view, keyed by console
// session ID. When full, the least recently used session is closed.
type Registry struct {
	Scope       string
	Schema      filter.Schema
	Store       SnapshotStore
	Clock       filter.Clock
	QuietPeriod time.Duration
	MaxSessions int
	// OnCommit, when set, is called each time a debounced search term is committed.
	OnCommit func(scope string)

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session  *filter.Session
	lastUsed time.Time
}

// Get returns the session for id, creating it (and restoring its snapshot) on
// first use. The snapshot is loaded without holding the registry lock, so a
// slow store only delays the new session.
func (r *Registry) Get(ctx context.Context, id string) *filter.Session {
	if s, ok := r.lookup(id); ok {
		return s
	}

	s := r.newSession(ctx, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		// another request created it while the snapshot loaded
		e.lastUsed = time.Now()
		s.Close()
		return e.session
	}
	r.evictLocked()
	r.sessions[id] = &entry{session: s, lastUsed: time.Now()}
	return s
}

func (r *Registry) lookup(id string) (*filter.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions == nil {
		r.sessions = make(map[string]*entry)
	}
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = time.Now()
	return e.session, true
}

func (r *Registry) newSession(ctx context.Context, id string) *filter.Session {
	opts := []filter.SessionOption{}
	if r.Clock != nil {
		opts = append(opts, filter.WithClock(r.Clock))
	}
	if r.QuietPeriod > 0 {
		opts = append(opts, filter.WithQuietPeriod(r.QuietPeriod))
	}
	if r.Store != nil {
		st, ok, err := r.Store.Load(ctx, r.Scope, id)
		if err != nil {
			log.Warn().Err(err).Str("scope", r.Scope).Str("session_id", id).Msg("Filter snapshot load failed")
		} else if ok {
			opts = append(opts, filter.WithInitialState(st))
		}
	}

	s := filter.NewSession(r.Schema, opts...)
	last := s.State()
	s.Subscribe(func(st filter.State) {
		if st.Term != last.Term && r.OnCommit != nil {
			r.OnCommit(r.Scope)
		}
		last = st
		r.save(id, st)
	})
	return s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops every pending search commit.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.sessions {
		e.session.Close()
		delete(r.sessions, id)
	}
}

func (r *Registry) evictLocked() {
	limit := r.MaxSessions
	if limit <= 0 {
		limit = defaultMaxSessions
	}
	for len(r.sessions) >= limit {
		var oldestID string
		var oldest time.Time
		for id, e := range r.sessions {
			if oldestID == "" || e.lastUsed.Before(oldest) {
				oldestID, oldest = id, e.lastUsed
			}
		}
		r.sessions[oldestID].session.Close()
		delete(r.sessions, oldestID)
	}
}

func (r *Registry) save(id string, st filter.State) {
	if r.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if st.IsZero() {
		if err := r.Store.Delete(ctx, r.Scope, id); err != nil {
			log.Warn().Err(err).Str("scope", r.Scope).Str("session_id", id).Msg("Filter snapshot delete failed")
		}
		return
	}
	if err := r.Store.Save(ctx, r.Scope, id, st); err != nil {
		log.Warn().Err(err).Str("scope", r.Scope).Str("session_id", id).Msg("Filter snapshot save failed")
		return
	}
	log.Debug().Str("scope", r.Scope).Str("session_id", id).Str("term", st.Term).Msg("Filter state saved")
}
