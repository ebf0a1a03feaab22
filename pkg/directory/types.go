package directory

import "github.com/brightwire/fixgate/pkg/identity"

// Sentinels shared with the surrounding session layer.
const (
	// UnknownSessionID is returned by LookupSessionID when a key has
	// never been seen.
	UnknownSessionID int64 = -1

	// OutOfSpace marks a SessionContext.FilePosition that was never
	// persisted (the sector framer or identity strategy ran out of room).
	OutOfSpace int64 = -1

	// LowestValidSessionID is the first session id ever assigned.
	LowestValidSessionID int64 = 1

	// HeaderSize is the fixed-length file header: magic(4) + schema_id(2)
	// + template_id(2) + schema_version(2) + block_length(2) + reserved(4).
	HeaderSize = 16
)

var fileMagic = [4]byte{'F', 'X', 'D', '1'}

// SessionContext is the in-memory record of one assigned session
// identity. It never owns a reference back to the Engine: callers that
// need to persist a mutation (sequence_reset, update_saved_data) call
// the Engine directly with the FilePosition this context exposes, per
// the relation-not-ownership design used throughout this package.
type SessionContext struct {
	CompositeKey          identity.Key
	SessionID             int64
	SequenceIndex         int32
	LastLogonTime         int64
	LastSequenceResetTime int64
	FilePosition          int64
	Dictionary            string

	// compositeKeyLength is the byte length the identity strategy wrote
	// for CompositeKey; it is needed to re-encode the record's prefix
	// on later in-place mutations without the identity strategy's help.
	compositeKeyLength int
}

// SessionInfo is the read-only, concurrently-shared view of one
// SessionContext handed out by AllSessions. It is a value copy so
// callers cannot mutate engine state through it.
type SessionInfo struct {
	CompositeKey          identity.Key
	SessionID             int64
	SequenceIndex         int32
	LastLogonTime         int64
	LastSequenceResetTime int64
	FilePosition          int64
	Dictionary            string
}

func infoFromContext(ctx *SessionContext) SessionInfo {
	return SessionInfo{
		CompositeKey:          ctx.CompositeKey,
		SessionID:             ctx.SessionID,
		SequenceIndex:         ctx.SequenceIndex,
		LastLogonTime:         ctx.LastLogonTime,
		LastSequenceResetTime: ctx.LastSequenceResetTime,
		FilePosition:          ctx.FilePosition,
		Dictionary:            ctx.Dictionary,
	}
}

// ErrorSink receives non-fatal error reports (corrupt sectors,
// malformed records, out-of-space conditions) the engine chooses to
// survive rather than abort on.
type ErrorSink interface {
	Report(err error, fields map[string]any)
}

// NopErrorSink discards every report; useful for tests.
type NopErrorSink struct{}

// Report implements ErrorSink.
func (NopErrorSink) Report(error, map[string]any) {}

// FuncErrorSink adapts a plain function to ErrorSink.
type FuncErrorSink func(err error, fields map[string]any)

// Report implements ErrorSink.
func (f FuncErrorSink) Report(err error, fields map[string]any) { f(err, fields) }
