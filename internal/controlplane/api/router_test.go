package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/brightwire/fixgate/pkg/directory"
	"github.com/brightwire/fixgate/pkg/identity"
	"github.com/brightwire/fixgate/pkg/recordcodec"
	"github.com/brightwire/fixgate/pkg/sectorfile"
)

func newTestRouterDeps(t *testing.T) (*directory.Engine, *TokenIssuer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "directory.dat")
	region, err := sectorfile.OpenRegion(path, sectorfile.DefaultSectorSize*4)
	if err != nil {
		t.Fatalf("OpenRegion() error = %v", err)
	}
	t.Cleanup(func() { _ = region.Close() })

	engine, err := directory.Open(region, sectorfile.DefaultSectorSize, recordcodec.NewBinaryCodec(), identity.NewCompositeKeyStrategy(), 0, directory.NopErrorSink{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	issuer, err := NewTokenIssuer("test-secret-key-that-is-at-least-32-characters", 0)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	return engine, issuer
}

func TestRouter_HealthIsUnauthenticated(t *testing.T) {
	engine, issuer := newTestRouterDeps(t)
	router := NewRouter(engine, issuer)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_StampsUniqueCorrelationID(t *testing.T) {
	engine, issuer := newTestRouterDeps(t)
	router := NewRouter(engine, issuer)

	ids := make(map[string]bool)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		id := rec.Header().Get("X-Correlation-ID")
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("X-Correlation-ID = %q, want a valid UUID: %v", id, err)
		}
		ids[id] = true
	}
	if len(ids) != 2 {
		t.Errorf("got %d distinct correlation ids across 2 requests, want 2", len(ids))
	}
}

func TestRouter_SessionsRequiresAuth(t *testing.T) {
	engine, issuer := newTestRouterDeps(t)
	router := NewRouter(engine, issuer)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRouter_SessionsWithValidToken(t *testing.T) {
	engine, issuer := newTestRouterDeps(t)
	router := NewRouter(engine, issuer)

	if _, err := engine.OnLogon(identity.Key{SenderCompID: "BANKA", TargetCompID: "BANKB"}, "FIX.4.2"); err != nil {
		t.Fatalf("OnLogon() error = %v", err)
	}

	token, err := issuer.Issue("admin")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", rec.Code, rec.Body.String())
	}

	var sessions []directory.SessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != 1 {
		t.Errorf("sessions = %+v, want one session with id 1", sessions)
	}
}

func TestRouter_ResetRejectedWithAuthenticatedSessions(t *testing.T) {
	engine, issuer := newTestRouterDeps(t)
	router := NewRouter(engine, issuer)

	if _, err := engine.OnLogon(identity.Key{SenderCompID: "BANKA", TargetCompID: "BANKB"}, "FIX.4.2"); err != nil {
		t.Fatalf("OnLogon() error = %v", err)
	}
	token, err := issuer.Issue("admin")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/reset", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body = %s", rec.Code, rec.Body.String())
	}
}
