package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "effects-studio/internal/errors"
	"effects-studio/internal/logger"
	"effects-studio/internal/metrics"
	"effects-studio/internal/opencv/safe"
)

type fakeSession struct {
	closed bool
}

func (s *fakeSession) Predict(ctx context.Context, input *safe.Mat) (*safe.Mat, error) {
	return input.Clone()
}

func (s *fakeSession) Close() {
	s.closed = true
}

type fakeBackend struct {
	available error
	loadErr   error
	loads     []string
	sessions  []*fakeSession
}

func (b *fakeBackend) Available() error {
	return b.available
}

func (b *fakeBackend) Load(ctx context.Context, weightsPath string) (Session, error) {
	b.loads = append(b.loads, weightsPath)
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	s := &fakeSession{}
	b.sessions = append(b.sessions, s)
	return s, nil
}

// newTestManager pre-seeds the weights cache for every catalog model
// so Acquire never reaches the network.
func newTestManager(t *testing.T, backend Backend) *Manager {
	t.Helper()

	catalog, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}

	dir := t.TempDir()
	for _, info := range catalog.List() {
		if err := os.WriteFile(filepath.Join(dir, info.File), []byte("cached-weights"), 0o644); err != nil {
			t.Fatalf("seeding weights cache: %v", err)
		}
	}

	downloader := NewDownloader(dir, "", time.Second, false, logger.NewSilent())
	return NewManager(catalog, backend, downloader, metrics.NewRecorder(), logger.NewSilent())
}

func TestAcquireLoadsModelAndIsIdempotent(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestManager(t, backend)
	defer m.Shutdown()

	id, err := m.Acquire(context.Background(), "u2net")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if id == "" {
		t.Fatal("Acquire returned an empty session id")
	}

	if !m.Loaded("u2net") {
		t.Error("u2net not reported loaded")
	}
	if status := m.Status(); status.State != StateLoaded || status.ModelID != "u2net" || status.SessionID != id {
		t.Errorf("status %+v, expected loaded u2net with session %s", status, id)
	}

	again, err := m.Acquire(context.Background(), "u2net")
	if err != nil {
		t.Fatalf("repeat Acquire failed: %v", err)
	}
	if again != id {
		t.Errorf("repeat Acquire minted session %s, expected %s", again, id)
	}
	if len(backend.loads) != 1 {
		t.Errorf("backend loaded %d times, expected 1 (idempotent re-acquire)", len(backend.loads))
	}
}

func TestAcquireDifferentModelUnloadsFirst(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestManager(t, backend)
	defer m.Shutdown()

	first, err := m.Acquire(context.Background(), "u2net")
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	second, err := m.Acquire(context.Background(), "silueta")
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if second == first {
		t.Error("model switch kept the previous session id")
	}

	if len(backend.sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(backend.sessions))
	}
	if !backend.sessions[0].closed {
		t.Error("previous session not closed before loading the next model")
	}
	if backend.sessions[1].closed {
		t.Error("resident session closed prematurely")
	}
	if !m.Loaded("silueta") {
		t.Error("silueta not reported loaded")
	}
}

func TestAcquireUnknownModel(t *testing.T) {
	m := newTestManager(t, &fakeBackend{})
	defer m.Shutdown()

	_, err := m.Acquire(context.Background(), "unknown-model")
	if err == nil {
		t.Fatal("unknown model accepted")
	}
	if !apperrors.IsType(err, apperrors.TypeNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
	if status := m.Status(); status.State != StateEmpty {
		t.Errorf("state %s after unknown model, expected empty", status.State)
	}
}

func TestAcquireWithoutBackend(t *testing.T) {
	m := newTestManager(t, nil)
	defer m.Shutdown()

	_, err := m.Acquire(context.Background(), "u2net")
	if err == nil {
		t.Fatal("acquire without backend succeeded")
	}
	if !apperrors.IsType(err, apperrors.TypeDependencyMissing) {
		t.Errorf("expected dependency-missing error, got %v", err)
	}
}

func TestAcquireWithUnavailableBackend(t *testing.T) {
	backend := &fakeBackend{available: errors.New("runtime not installed")}
	m := newTestManager(t, backend)
	defer m.Shutdown()

	_, err := m.Acquire(context.Background(), "u2net")
	if !apperrors.IsType(err, apperrors.TypeDependencyMissing) {
		t.Errorf("expected dependency-missing error, got %v", err)
	}
}

func TestLoadFailureIsTransientAndRetainsError(t *testing.T) {
	backend := &fakeBackend{loadErr: errors.New("corrupt graph")}
	m := newTestManager(t, backend)
	defer m.Shutdown()

	_, err := m.Acquire(context.Background(), "u2net")
	if err == nil {
		t.Fatal("corrupt model loaded")
	}
	if !apperrors.IsType(err, apperrors.TypeLoadFailed) {
		t.Errorf("expected load-failed error, got %v", err)
	}

	status := m.Status()
	if status.State != StateEmpty {
		t.Errorf("state %s after failure, expected empty", status.State)
	}
	if status.LastError == "" {
		t.Error("failure not retained in status")
	}

	if _, _, err := m.Session(); !apperrors.IsType(err, apperrors.TypeSessionRequired) {
		t.Errorf("expected session-required error, got %v", err)
	}

	// A later successful load clears the retained failure.
	backend.loadErr = nil
	if _, err := m.Acquire(context.Background(), "u2net"); err != nil {
		t.Fatalf("recovery Acquire failed: %v", err)
	}
	if status := m.Status(); status.LastError != "" {
		t.Error("stale failure retained after successful load")
	}
}

func TestDownloadFailureSurfacesAndLeavesManagerEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	catalog := &Catalog{
		models: []ModelInfo{{ID: "remote-only", File: "remote.onnx", URL: server.URL + "/remote.onnx", SizeBytes: 64}},
		byID: map[string]ModelInfo{
			"remote-only": {ID: "remote-only", File: "remote.onnx", URL: server.URL + "/remote.onnx", SizeBytes: 64},
		},
	}

	downloader := NewDownloader(t.TempDir(), "", time.Second, false, logger.NewSilent())
	m := NewManager(catalog, &fakeBackend{}, downloader, metrics.NewRecorder(), logger.NewSilent())
	defer m.Shutdown()

	_, err := m.Acquire(context.Background(), "remote-only")
	if err == nil {
		t.Fatal("unreachable weights loaded")
	}
	if !apperrors.IsType(err, apperrors.TypeDownloadFailed) {
		t.Errorf("expected download-failed error, got %v", err)
	}
	if status := m.Status(); status.State != StateEmpty || status.LastError == "" {
		t.Errorf("status %+v, expected empty with retained error", status)
	}
}

func TestReleaseClosesSessionAndIsIdempotent(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestManager(t, backend)

	m.Release()

	if _, err := m.Acquire(context.Background(), "u2net"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	m.Release()
	m.Release()

	if len(backend.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(backend.sessions))
	}
	if !backend.sessions[0].closed {
		t.Error("release did not close the session")
	}
	if _, _, err := m.Session(); !apperrors.IsType(err, apperrors.TypeSessionRequired) {
		t.Errorf("expected session-required after release, got %v", err)
	}
}
