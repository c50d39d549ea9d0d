package core

import "sync"

// projectLocks serializes pipeline runs per project. Two overlapping revision
// requests for the same project would otherwise interleave version creation
// and current-pointer updates.
type projectLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newProjectLocks() *projectLocks {
	return &projectLocks{locks: make(map[string]*sync.Mutex)}
}

// lock blocks until the project's lock is held and returns its unlock func.
func (p *projectLocks) lock(projectID string) func() {
	p.mu.Lock()
	m, ok := p.locks[projectID]
	if !ok {
		m = &sync.Mutex{}
		p.locks[projectID] = m
	}
	p.mu.Unlock()

	m.Lock()
	return m.Unlock
}
