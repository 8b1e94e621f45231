package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "loan-wizard/internal/common/errors"
	"loan-wizard/internal/common/logger"
	"loan-wizard/internal/common/metrics"
	"loan-wizard/internal/wizard"
)

// Session is one live wizard. Its wizard is only touched while mu is held,
// which Manager.Do takes care of.
type Session struct {
	ID string

	mu       sync.Mutex
	wizard   *wizard.Wizard
	lastUsed time.Time
}

// Wizard is only safe to use inside Manager.Do.
func (s *Session) Wizard() *wizard.Wizard {
	return s.wizard
}

// Manager is the registry of live sessions. Every mutation is followed by a
// draft save so a session can be rebuilt after a restart; attached files are
// lost in that case.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	drafts  DraftStore
	staging *Staging
	log     logger.Logger
	opts    []wizard.Option
	now     func() time.Time
}

type ManagerOption func(*Manager)

// WithWizardOptions are applied to every wizard the manager builds.
func WithWizardOptions(opts ...wizard.Option) ManagerOption {
	return func(m *Manager) { m.opts = append(m.opts, opts...) }
}

func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager builds a registry. drafts may be nil, in which case sessions
// live in memory only.
func NewManager(drafts DraftStore, staging *Staging, log logger.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		drafts:   drafts,
		staging:  staging,
		log:      log.WithFields(map[string]interface{}{"component": "session-manager"}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WizardOptions returns the options used for wizards built by this manager.
func (m *Manager) WizardOptions() []wizard.Option {
	return append([]wizard.Option(nil), m.opts...)
}

// Create registers w under a new id. A nil w starts a fresh application.
func (m *Manager) Create(ctx context.Context, w *wizard.Wizard) *Session {
	if w == nil {
		w = wizard.New(m.opts...)
	}
	s := &Session{ID: uuid.NewString(), wizard: w, lastUsed: m.now()}

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()
	metrics.WizardActiveSessions.Set(float64(n))

	m.save(ctx, s)
	m.log.Info("Session created", map[string]interface{}{
		"sessionId":     s.ID,
		"mode":          string(w.Mode()),
		"applicationId": w.ApplicationID(),
	})
	return s
}

// Get returns a live session, restoring it from its draft when it is not in
// memory.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if !validID(id) {
		return nil, apperrors.NewSessionNotFoundError(id)
	}
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}
	if m.drafts == nil {
		return nil, apperrors.NewSessionNotFoundError(id)
	}

	snap, err := m.drafts.Load(ctx, id)
	if errors.Is(err, ErrDraftNotFound) {
		return nil, apperrors.NewSessionNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s = &Session{ID: id, wizard: wizard.Restore(snap, m.opts...), lastUsed: m.now()}
	m.sessions[id] = s
	metrics.WizardActiveSessions.Set(float64(len(m.sessions)))
	m.log.Info("Session restored from draft", map[string]interface{}{"sessionId": id, "step": int(snap.Step)})
	return s, nil
}

// Do runs fn with the session locked and saves a draft afterwards, whether
// or not fn failed.
func (m *Manager) Do(ctx context.Context, id string, fn func(w *wizard.Wizard) error) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = m.now()

	err = fn(s.wizard)
	m.save(ctx, s)
	return err
}

// View runs fn with the session locked and does not save.
func (m *Manager) View(ctx context.Context, id string, fn func(w *wizard.Wizard) error) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = m.now()
	return fn(s.wizard)
}

// Attach stages r on disk and attaches it to slot. The staged copy is
// released when the session is gone by then or the wizard refuses it.
func (m *Manager) Attach(ctx context.Context, id string, slot wizard.Slot, name, contentType string, r io.Reader) error {
	if !validID(id) {
		return apperrors.NewSessionNotFoundError(id)
	}
	file, err := m.staging.Stage(id, slot, name, contentType, r)
	if err != nil {
		return err
	}

	attached := false
	err = m.Do(ctx, id, func(w *wizard.Wizard) error {
		if err := w.Attach(slot, file); err != nil {
			return err
		}
		attached = true
		return nil
	})
	if !attached {
		_ = file.Release()
	}
	return err
}

// Delete drops the session, its staged files and its draft.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return apperrors.NewSessionNotFoundError(id)
	}
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	metrics.WizardActiveSessions.Set(float64(n))

	if ok {
		s.mu.Lock()
		s.wizard.Reset()
		s.mu.Unlock()
		m.purge(id)
	}

	if m.drafts != nil {
		if err := m.drafts.Delete(ctx, id); err != nil {
			return err
		}
	}
	if !ok && m.drafts == nil {
		return apperrors.NewSessionNotFoundError(id)
	}
	m.log.Info("Session deleted", map[string]interface{}{"sessionId": id})
	return nil
}

// Sweep unloads sessions idle for longer than idle. Their drafts stay, so a
// later request restores them without attachments.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		// A locked session is in use and therefore not idle.
		if !s.mu.TryLock() {
			continue
		}
		if s.lastUsed.Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
		s.mu.Unlock()
	}
	n := len(m.sessions)
	m.mu.Unlock()
	metrics.WizardActiveSessions.Set(float64(n))

	for _, s := range stale {
		s.mu.Lock()
		s.wizard.Reset()
		s.mu.Unlock()
		m.purge(s.ID)
	}
	if len(stale) > 0 {
		m.log.Info("Idle sessions unloaded", map[string]interface{}{"count": len(stale), "remaining": n})
	}
	return len(stale)
}

// Len reports the number of sessions held in memory.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) save(ctx context.Context, s *Session) {
	if m.drafts == nil {
		return
	}
	if err := m.drafts.Save(ctx, s.ID, s.wizard.Snapshot()); err != nil {
		m.log.Warn("Draft save failed", map[string]interface{}{
			"sessionId": s.ID,
			"error":     err.Error(),
		})
	}
}

// validID accepts only ids in the canonical form Create hands out.
func validID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == id
}

func (m *Manager) purge(id string) {
	if m.staging == nil {
		return
	}
	if err := m.staging.Purge(id); err != nil {
		m.log.Warn("Staging cleanup failed", map[string]interface{}{"sessionId": id, "error": err.Error()})
	}
}
