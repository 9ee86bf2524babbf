package session

import (
	"context"
	"fmt"
	"sync"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/logger"
	"effects-studio/internal/metrics"

	"github.com/google/uuid"
)

// State names the lifecycle position of the single model session.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
)

// Status is an observable snapshot of the manager. LastError keeps the
// most recent load failure until a later load succeeds, so callers can
// inspect why the session is empty.
type Status struct {
	State     State  `json:"state"`
	ModelID   string `json:"modelId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	LastError string `json:"lastError,omitempty"`
}

// Manager holds at most one inference session and serializes every
// transition. Acquiring the already loaded model is a no-op; acquiring
// a different one unloads the resident session before loading the
// requested weights, in that order. Every successful load is stamped
// with a fresh session id so callers can tell a reload from the
// session they already held.
type Manager struct {
	opMu sync.Mutex

	mu        sync.RWMutex
	state     State
	modelID   string
	sessionID string
	session   Session
	lastErr   error

	catalog    *Catalog
	backend    Backend
	downloader *Downloader
	recorder   *metrics.Recorder
	logger     logger.Logger
}

func NewManager(catalog *Catalog, backend Backend, downloader *Downloader, recorder *metrics.Recorder, log logger.Logger) *Manager {
	return &Manager{
		state:      StateEmpty,
		catalog:    catalog,
		backend:    backend,
		downloader: downloader,
		recorder:   recorder,
		logger:     log,
	}
}

// Acquire makes the given model the resident session and returns its
// session id. The weights are taken from the local cache when present,
// otherwise fetched from the published URL. From the caller's view the
// swap is atomic: either the requested model ends up loaded or the
// manager is empty with the failure retained. Re-acquiring the
// resident model keeps its session id.
func (m *Manager) Acquire(ctx context.Context, modelID string) (string, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	info, err := m.catalog.Get(modelID)
	if err != nil {
		return "", err
	}

	if current, sessionID := m.currentModel(); current == modelID {
		m.logger.Debug("SessionManager", "model already resident", map[string]interface{}{
			"model":   modelID,
			"session": sessionID,
		})
		return sessionID, nil
	}

	if m.backend == nil {
		return "", apperrors.NewDependencyMissingError("no inference backend is configured", nil)
	}
	if err := m.backend.Available(); err != nil {
		return "", apperrors.NewDependencyMissingError("inference backend unavailable", err)
	}

	m.unloadLocked()
	m.setState(StateLoading, modelID)

	weightsPath, err := m.downloader.EnsureLocal(ctx, info)
	if err != nil {
		return "", m.fail(modelID, err)
	}

	session, err := m.backend.Load(ctx, weightsPath)
	if err != nil {
		if apperrors.TypeOf(err) == "" {
			err = apperrors.NewLoadFailedError(
				fmt.Sprintf("failed to load model %s", modelID), err,
			).WithDetail("model", modelID)
		}
		return "", m.fail(modelID, err)
	}

	sessionID := uuid.NewString()

	m.mu.Lock()
	m.state = StateLoaded
	m.modelID = modelID
	m.sessionID = sessionID
	m.session = session
	m.lastErr = nil
	m.mu.Unlock()

	m.recorder.SessionLoad(modelID, "success")
	m.logger.Info("SessionManager", "model session loaded", map[string]interface{}{
		"model":   modelID,
		"session": sessionID,
		"path":    weightsPath,
	})

	return sessionID, nil
}

// Release drops the resident session. Releasing an empty manager is a
// no-op.
func (m *Manager) Release() {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.unloadLocked()
}

// Session returns the live session and its model id, or a
// session-required error when nothing is loaded.
func (m *Manager) Session() (Session, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != StateLoaded || m.session == nil {
		return nil, "", apperrors.NewSessionRequiredError("no model session is loaded")
	}
	return m.session, m.modelID, nil
}

// Loaded reports whether the given model is the resident session. An
// empty id asks whether any session is loaded.
func (m *Manager) Loaded(modelID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != StateLoaded {
		return false
	}
	return modelID == "" || m.modelID == modelID
}

// Status snapshots the state machine.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{State: m.state, ModelID: m.modelID, SessionID: m.sessionID}
	if m.lastErr != nil {
		s.LastError = m.lastErr.Error()
	}
	return s
}

// Catalog exposes the embedded model catalog.
func (m *Manager) Catalog() *Catalog {
	return m.catalog
}

func (m *Manager) Shutdown() {
	m.Release()
}

// fail records the error, returns the manager to empty and reports the
// outcome. The failed state is transient: observers only ever see
// empty plus the retained error.
func (m *Manager) fail(modelID string, err error) error {
	m.mu.Lock()
	m.state = StateEmpty
	m.modelID = ""
	m.sessionID = ""
	m.session = nil
	m.lastErr = err
	m.mu.Unlock()

	m.recorder.SessionLoad(modelID, string(apperrors.TypeOf(err)))
	m.logger.Error("SessionManager", err, map[string]interface{}{
		"model": modelID,
	})

	return err
}

func (m *Manager) currentModel() (string, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != StateLoaded {
		return "", ""
	}
	return m.modelID, m.sessionID
}

func (m *Manager) setState(state State, modelID string) {
	m.mu.Lock()
	m.state = state
	m.modelID = modelID
	m.mu.Unlock()
}

func (m *Manager) unloadLocked() {
	m.mu.Lock()
	session := m.session
	hadModel := m.modelID
	m.state = StateEmpty
	m.modelID = ""
	m.sessionID = ""
	m.session = nil
	m.mu.Unlock()

	if session != nil {
		session.Close()
		m.logger.Info("SessionManager", "model session released", map[string]interface{}{
			"model": hadModel,
		})
	}
}
