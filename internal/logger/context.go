package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext carries per-request/per-session fields that every log line
// emitted while handling a session operation should include.
type LogContext struct {
	CorrelationID string // request correlation id (see internal/controlplane/api)
	SessionID     int64
	Procedure     string // on_logon, sequence_reset, update_saved_data, reset, ...
	SenderCompID  string
	TargetCompID  string
	StartTime     time.Time
}

// WithContext attaches lc to ctx.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext attached to ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext starts a LogContext for a session operation.
func NewLogContext(procedure string) *LogContext {
	return &LogContext{Procedure: procedure, StartTime: time.Now()}
}

// Clone returns a copy of lc.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithSession returns a copy of lc with session identity fields set.
func (lc *LogContext) WithSession(sessionID int64, senderCompID, targetCompID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.SessionID = sessionID
		clone.SenderCompID = senderCompID
		clone.TargetCompID = targetCompID
	}
	return clone
}

// DurationMs returns the elapsed time since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

func appendContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	out := make([]any, 0, 10+len(args))
	if lc.CorrelationID != "" {
		out = append(out, "correlation_id", lc.CorrelationID)
	}
	if lc.Procedure != "" {
		out = append(out, "procedure", lc.Procedure)
	}
	if lc.SessionID != 0 {
		out = append(out, "session_id", lc.SessionID)
	}
	if lc.SenderCompID != "" {
		out = append(out, "sender_comp_id", lc.SenderCompID)
	}
	if lc.TargetCompID != "" {
		out = append(out, "target_comp_id", lc.TargetCompID)
	}
	out = append(out, args...)
	return out
}
