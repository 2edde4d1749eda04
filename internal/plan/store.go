package plan

import (
	"sync"
	"time"

	appLog "careplan/internal/log"
)

// Store holds the current plan loaded from a file. Readers always see a
// complete plan; a failed reload keeps the previous one.
type Store struct {
	path string

	mu       sync.RWMutex
	plan     *Plan
	loadedAt time.Time
	onReload []func()
}

// NewStore loads path once and returns a store serving it.
func NewStore(path string) (*Store, error) {
	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, plan: p, loadedAt: time.Now()}, nil
}

// Current returns the plan most recently loaded.
func (s *Store) Current() *Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

// LoadedAt returns when the current plan was read.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// OnReload registers fn to run after every successful reload.
func (s *Store) OnReload(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Reload re-reads the plan file.
func (s *Store) Reload() error {
	p, err := Load(s.path)
	if err != nil {
		appLog.Error("plan reload failed; keeping previous plan", err, "path", s.path)
		return err
	}

	s.mu.Lock()
	s.plan = p
	s.loadedAt = time.Now()
	hooks := append([]func(){}, s.onReload...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	appLog.Info("plan reloaded", "path", s.path,
		"activities", len(p.Activities),
		"assessments", len(p.Assessments),
	)
	return nil
}
