package http

import (
	"context"
	"sync"
	"time"

	"fintrack/internal/identity"
	"fintrack/internal/ledger"
	"fintrack/internal/remote"
)

// session is one owner's live engine: a ledger cache fed by its own
// subscription manager.
type session struct {
	cache    *ledger.Cache
	cancel   context.CancelFunc
	lastSeen time.Time
}

type sessionRegistry struct {
	mu       sync.Mutex
	source   remote.Subscriber
	sessions map[string]*session
}

func newSessionRegistry(source remote.Subscriber) *sessionRegistry {
	return &sessionRegistry{
		source:   source,
		sessions: make(map[string]*session),
	}
}

// get returns the owner's session, starting one on first use. The manager
// goroutine owns the subscription; cancelling the session context tears
// it down.
func (r *sessionRegistry) get(owner string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[owner]; ok {
		s.lastSeen = time.Now()
		return s
	}

	ctx, cancel := context.WithCancel(context.Background())
	cache := ledger.NewCache()
	mgr := ledger.NewManager(r.source, cache)
	go mgr.Run(ctx, identity.NewStatic(owner).Changes())

	s := &session{cache: cache, cancel: cancel, lastSeen: time.Now()}
	r.sessions[owner] = s
	return s
}

// sweep closes sessions idle for longer than maxIdle and reports how many
// it dropped.
func (r *sessionRegistry) sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	n := 0
	for owner, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			s.cancel()
			delete(r.sessions, owner)
			n++
		}
	}
	return n
}

func (r *sessionRegistry) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for owner, s := range r.sessions {
		s.cancel()
		delete(r.sessions, owner)
	}
}
