package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/brightwire/fixgate/internal/backup"
	"github.com/brightwire/fixgate/internal/logger"
	"github.com/brightwire/fixgate/pkg/directory"
	"github.com/brightwire/fixgate/pkg/identity"
)

// NewRouter builds the chi router exposing the directory's admin
// surface. All routes except /health require a bearer token.
func NewRouter(engine *directory.Engine, issuer *TokenIssuer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(correlationID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(Authenticate(issuer))

		r.Get("/sessions", listSessions(engine))
		r.Get("/sessions/{id}/authenticated", sessionAuthenticated(engine))
		r.Get("/sessions/by-key", lookupByKey(engine))
		r.Post("/reset", resetDirectory(engine))
	})

	return r
}

func listSessions(engine *directory.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.AllSessions())
	}
}

func sessionAuthenticated(engine *directory.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"authenticated": engine.IsAuthenticated(id)})
	}
}

func lookupByKey(engine *directory.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		key := identity.Key{
			SenderCompID: q.Get("sender_comp_id"),
			TargetCompID: q.Get("target_comp_id"),
			SenderSubID:  q.Get("sender_sub_id"),
			TargetSubID:  q.Get("target_sub_id"),
		}
		writeJSON(w, http.StatusOK, map[string]int64{"session_id": engine.LookupSessionID(key)})
	}
}

// resetRequest optionally names a snapshot destination (local path or
// s3://bucket/key) to copy the directory file to before clearing it.
type resetRequest struct {
	BackupDestination string `json:"backup_destination"`
}

func resetDirectory(engine *directory.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		var snapshotWriter backup.WriteCloser
		if req.BackupDestination != "" {
			var err error
			snapshotWriter, err = backup.Open(r.Context(), req.BackupDestination)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}

		var err error
		if snapshotWriter != nil {
			err = engine.Reset(snapshotWriter)
			closeErr := snapshotWriter.Close()
			if err == nil {
				err = closeErr
			}
		} else {
			err = engine.Reset(nil)
		}

		if err != nil {
			if err == directory.ErrResetWithAuth {
				writeError(w, http.StatusConflict, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	}
}

// correlationID stamps every request with a UUID-based correlation id,
// distinct from chi's own short-lived request id, and carries it
// through the request's LogContext so log lines written with the
// logger's *Ctx functions from the request context (such as the
// request log line) can be tied back to it. The directory engine's
// error reports do not receive the request context and carry no
// correlation id.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lc := logger.NewLogContext("api_request")
		lc.CorrelationID = uuid.NewString()
		w.Header().Set("X-Correlation-ID", lc.CorrelationID)
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), lc)))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.InfoCtx(r.Context(), "api request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
