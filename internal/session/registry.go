// Package session maps session ids to workflow engines. Each session owns
// exactly one workflow; a late remote response for a torn-down session
// fails the lookup here and is dropped.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adpilot/adpilot/internal/workflow"
)

var ErrNotFound = errors.New("session not found")

type Registry struct {
	mu       sync.Mutex
	sessions map[string]*workflow.Engine
	newFn    func() *workflow.Engine
}

func NewRegistry(newFn func() *workflow.Engine) *Registry {
	return &Registry{
		sessions: make(map[string]*workflow.Engine),
		newFn:    newFn,
	}
}

func (r *Registry) Create() (string, *workflow.Engine) {
	id := uuid.NewString()
	eng := r.newFn()
	r.mu.Lock()
	r.sessions[id] = eng
	r.mu.Unlock()
	return id, eng
}

func (r *Registry) Get(id string) (*workflow.Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	eng, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return eng, nil
}

// Delete abandons the session's workflow and forgets it. Unknown ids are
// a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	eng, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		eng.Abandon()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// PruneIdle drops sessions with no activity since the TTL and returns how
// many were removed.
func (r *Registry) PruneIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	var expired []*workflow.Engine
	for id, eng := range r.sessions {
		if eng.LastActive().Before(cutoff) {
			expired = append(expired, eng)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, eng := range expired {
		eng.Abandon()
	}
	return len(expired)
}
