// Package directory implements the persistent session-identity
// directory: it assigns a stable numeric identity to every counterparty
// session ever seen, tracks which are currently authenticated, and
// persists the assignment table to a memory-mapped, sector-framed,
// checksum-protected file that tolerates partial writes and crash
// recovery.
//
// All mutating operations run under a single internal mutex: one
// owner serializes record encode, checksum update, and force, while
// authenticated-set membership tests and AllSessions snapshots stay
// safe for concurrent readers.
package directory

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brightwire/fixgate/pkg/identity"
	"github.com/brightwire/fixgate/pkg/recordcodec"
	"github.com/brightwire/fixgate/pkg/sectorfile"
)

// Engine is the directory core (component C5). Construct one with
// Open; it owns the mapped region for the lifetime of the process.
type Engine struct {
	mu sync.Mutex

	region   sectorfile.Region
	framer   *sectorfile.Framer
	codec    recordcodec.Codec
	identity identity.Strategy
	errors   ErrorSink

	initialSequenceIndex int32

	counter      int64
	nextPosition int64
	scratch      []byte

	byKey       map[identity.Key]*SessionContext
	byPosition  map[int64]*SessionContext
	bySessionID map[int64]*SessionContext

	authenticated authenticatedSet
	snapshot      atomic.Pointer[[]SessionInfo]

	metrics Metrics
}

// Metrics receives instrumentation events from the engine. Every
// method must be nil-safe on a nil receiver, matching
// internal/metrics.DirectoryMetrics, so callers can pass nil to skip
// instrumentation entirely.
type Metrics interface {
	RecordAssigned()
	RecordAuthenticated()
	RecordDuplicateLogon()
	RecordCorruptSector()
	RecordOutOfSpace()
	RecordDisconnect()
	ObserveForceDuration(seconds float64)
}

// SetMetrics attaches a Metrics sink. Passing nil disables instrumentation.
func (e *Engine) SetMetrics(m Metrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics = m
}

// Open constructs the engine over region, loading and validating the
// existing file (or initializing a fresh one) and rebuilding the
// in-memory index. initialSequenceIndex is retained for the host
// session layer's own sequence-number bookkeeping; see DESIGN.md for
// why it does not alter record assignment.
func Open(
	region sectorfile.Region,
	sectorSize int64,
	codec recordcodec.Codec,
	idStrategy identity.Strategy,
	initialSequenceIndex int32,
	errorSink ErrorSink,
) (*Engine, error) {
	if region == nil {
		return nil, ErrWrongBufferKind
	}
	if errorSink == nil {
		errorSink = NopErrorSink{}
	}

	e := &Engine{
		region:               region,
		framer:               sectorfile.NewFramer(sectorSize),
		codec:                codec,
		identity:             idStrategy,
		errors:               errorSink,
		initialSequenceIndex: initialSequenceIndex,
		counter:              LowestValidSessionID,
		nextPosition:         HeaderSize,
		scratch:              make([]byte, sectorSize-sectorfile.ChecksumSize),
		byKey:                make(map[identity.Key]*SessionContext),
		byPosition:           make(map[int64]*SessionContext),
		bySessionID:          make(map[int64]*SessionContext),
	}

	if err := e.load(); err != nil {
		return nil, err
	}
	return e, nil
}

// load walks the persisted log from HeaderSize, validating each
// newly-entered sector's checksum and rebuilding the in-memory index.
func (e *Engine) load() error {
	buf := e.region.Bytes()

	if isZero(buf[:HeaderSize]) {
		e.writeHeaderLocked()
		if err := e.region.Force(); err != nil {
			return fmt.Errorf("directory: initial header force: %w", err)
		}
	}

	validated := make(map[int64]bool)
	pos := int64(HeaderSize)

	for {
		if pos+int64(e.codec.BlockLength()) > e.region.Size() {
			break
		}

		sector := e.framer.SectorStart(pos)
		if !validated[sector] {
			e.validateSector(sector)
			validated[sector] = true
		}

		fields, err := e.codec.DecodeAt(buf, pos, 0, 0)
		if err != nil {
			e.errors.Report(fmt.Errorf("directory: malformed record at %d: %w", pos, err), map[string]any{"file_position": pos})
			break
		}

		if fields.SessionID == 0 {
			nextSector := sector + e.framer.SectorSize()
			if nextSector+int64(e.codec.BlockLength()) > e.region.Size() {
				break
			}
			if !validated[nextSector] {
				e.validateSector(nextSector)
				validated[nextSector] = true
			}
			peek, err := e.codec.DecodeAt(buf, nextSector, 0, 0)
			if err != nil || peek.SessionID == 0 {
				break
			}
			pos = nextSector
			continue
		}

		keyOffset := pos + int64(e.codec.BlockLength())
		key, ok := e.identity.Load(buf, int(keyOffset), int(fields.CompositeKeyLength))
		if !ok {
			e.errors.Report(fmt.Errorf("directory: malformed composite key at %d", pos), map[string]any{"file_position": pos})
			break
		}

		ctx := &SessionContext{
			CompositeKey:          key,
			SessionID:             int64(fields.SessionID),
			SequenceIndex:         fields.SequenceIndex,
			LastLogonTime:         fields.LogonTime,
			LastSequenceResetTime: fields.LastSequenceResetTime,
			FilePosition:          pos,
			Dictionary:            fields.DictionaryName,
			compositeKeyLength:    int(fields.CompositeKeyLength),
		}
		e.byKey[key] = ctx
		e.byPosition[pos] = ctx
		e.bySessionID[ctx.SessionID] = ctx

		if ctx.SessionID+1 > e.counter {
			e.counter = ctx.SessionID + 1
		}

		pos += int64(e.codec.BlockLength()) + int64(fields.CompositeKeyLength)
	}

	e.nextPosition = pos
	e.republishSnapshotLocked()
	return nil
}

// validateSector recomputes a sector's CRC32 and reports a mismatch
// without aborting the load, per the "best-effort recoverable" policy.
func (e *Engine) validateSector(sectorStart int64) {
	buf := e.region.Bytes()
	dataEnd := sectorStart + e.framer.SectorSize() - sectorfile.ChecksumSize
	if dataEnd+sectorfile.ChecksumSize > int64(len(buf)) {
		return
	}
	want := sectorfile.ReadChecksum(buf[dataEnd : dataEnd+sectorfile.ChecksumSize])
	got := sectorfile.Checksum(buf[sectorStart:dataEnd])
	if want != got {
		e.errors.Report(fmt.Errorf("directory: corrupt sector at %d: checksum %08x != stored %08x", sectorStart, got, want),
			map[string]any{"sector": sectorStart})
		if e.metrics != nil {
			e.metrics.RecordCorruptSector()
		}
	}
}

func (e *Engine) writeHeaderLocked() {
	buf := e.region.Bytes()
	copy(buf[0:4], fileMagic[:])
	binary.LittleEndian.PutUint16(buf[4:6], e.codec.SchemaID())
	binary.LittleEndian.PutUint16(buf[6:8], e.codec.TemplateID())
	binary.LittleEndian.PutUint16(buf[8:10], e.codec.SchemaVersion())
	binary.LittleEndian.PutUint16(buf[10:12], uint16(e.codec.BlockLength()))
	for i := 12; i < HeaderSize; i++ {
		buf[i] = 0
	}
	e.recomputeSectorChecksum(0)
}

func (e *Engine) recomputeSectorChecksum(pos int64) {
	buf := e.region.Bytes()
	sectorStart := e.framer.SectorStart(pos)
	dataEnd := e.framer.ChecksumOffset(pos)
	sum := sectorfile.Checksum(buf[sectorStart:dataEnd])
	sectorfile.PutChecksum(buf[dataEnd:dataEnd+sectorfile.ChecksumSize], sum)
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// republishSnapshotLocked rebuilds the copy-on-write snapshot slice
// from byKey. Callers must hold mu.
func (e *Engine) republishSnapshotLocked() {
	infos := make([]SessionInfo, 0, len(e.byKey))
	for _, ctx := range e.byKey {
		infos = append(infos, infoFromContext(ctx))
	}
	e.snapshot.Store(&infos)
}

// OnLogon looks up or creates a SessionContext for key and attempts to
// mark its session id authenticated. It returns ErrDuplicateSession if
// the id is already authenticated; the existing context is left
// untouched in that case.
func (e *Engine) OnLogon(key identity.Key, dictionary string) (*SessionContext, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx := e.newSessionContextLocked(key, dictionary)
	if !e.authenticated.add(ctx.SessionID) {
		if e.metrics != nil {
			e.metrics.RecordDuplicateLogon()
		}
		return nil, ErrDuplicateSession
	}
	if e.metrics != nil {
		e.metrics.RecordAuthenticated()
	}
	return ctx, nil
}

// NewSessionContext looks up or creates a SessionContext for key
// without touching the authenticated set.
func (e *Engine) NewSessionContext(key identity.Key, dictionary string) *SessionContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.newSessionContextLocked(key, dictionary)
}

func (e *Engine) newSessionContextLocked(key identity.Key, dictionary string) *SessionContext {
	if ctx, ok := e.byKey[key]; ok {
		return ctx
	}

	ctx := &SessionContext{
		CompositeKey:          key,
		SessionID:             e.counter,
		SequenceIndex:         recordcodec.UnknownSequenceIndex,
		LastLogonTime:         recordcodec.UnknownTime,
		LastSequenceResetTime: recordcodec.UnknownTime,
		FilePosition:          OutOfSpace,
		Dictionary:            dictionary,
	}
	e.counter++

	e.assignSessionIDLocked(ctx)

	e.byKey[key] = ctx
	e.bySessionID[ctx.SessionID] = ctx
	if ctx.FilePosition != OutOfSpace {
		e.byPosition[ctx.FilePosition] = ctx
	}
	e.republishSnapshotLocked()

	return ctx
}

// assignSessionIDLocked persists a freshly allocated SessionContext. On
// any failure it reports the error and leaves ctx.FilePosition as
// OutOfSpace; the in-memory mapping is still kept by the caller.
func (e *Engine) assignSessionIDLocked(ctx *SessionContext) {
	keyLen, err := e.identity.Save(ctx.CompositeKey, e.scratch, 0)
	if err != nil {
		e.errors.Report(fmt.Errorf("directory: serialize composite key: %w", err), map[string]any{"session_id": ctx.SessionID})
		if e.metrics != nil {
			e.metrics.RecordOutOfSpace()
		}
		return
	}

	totalLen := int64(e.codec.BlockLength()) + int64(keyLen)
	pos, err := e.framer.Claim(e.nextPosition, totalLen, e.region.Size())
	if err != nil {
		e.errors.Report(fmt.Errorf("directory: claim record space: %w", err), map[string]any{"session_id": ctx.SessionID})
		if e.metrics != nil {
			e.metrics.RecordOutOfSpace()
		}
		return
	}

	buf := e.region.Bytes()
	fields := recordcodec.Fields{
		SessionID:             uint64(ctx.SessionID),
		SequenceIndex:         ctx.SequenceIndex,
		LogonTime:             ctx.LastLogonTime,
		LastSequenceResetTime: ctx.LastSequenceResetTime,
		CompositeKeyLength:    uint16(keyLen),
		DictionaryName:        ctx.Dictionary,
	}
	if err := e.codec.EncodeAt(buf, pos, fields); err != nil {
		e.errors.Report(fmt.Errorf("directory: encode record: %w", err), map[string]any{"session_id": ctx.SessionID})
		return
	}
	copy(buf[pos+int64(e.codec.BlockLength()):pos+totalLen], e.scratch[:keyLen])

	e.recomputeSectorChecksum(pos)
	start := time.Now()
	if err := e.region.Force(); err != nil {
		e.errors.Report(fmt.Errorf("directory: force: %w", err), map[string]any{"session_id": ctx.SessionID})
		return
	}
	if e.metrics != nil {
		e.metrics.ObserveForceDuration(time.Since(start).Seconds())
		e.metrics.RecordAssigned()
	}

	ctx.FilePosition = pos
	ctx.compositeKeyLength = keyLen
	e.nextPosition = pos + totalLen
}

// SequenceReset rewrites the sequence-reset timestamp for a known
// session id in place. Unknown ids are silently ignored.
func (e *Engine) SequenceReset(sessionID int64, resetTime int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, ok := e.bySessionID[sessionID]
	if !ok {
		return
	}
	_ = e.updateSavedDataLocked(ctx.FilePosition, ctx.SequenceIndex, ctx.LastLogonTime, resetTime)
}

// UpdateSavedData rewrites the three mutable prefix fields of the
// record at filePosition. It is a no-op when filePosition is
// OutOfSpace or does not correspond to a record the engine knows about.
func (e *Engine) UpdateSavedData(filePosition int64, sequenceIndex int32, logonTime, lastSequenceResetTime int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.updateSavedDataLocked(filePosition, sequenceIndex, logonTime, lastSequenceResetTime)
}

func (e *Engine) updateSavedDataLocked(filePosition int64, sequenceIndex int32, logonTime, lastSequenceResetTime int64) error {
	if filePosition == OutOfSpace {
		return nil
	}
	ctx, ok := e.byPosition[filePosition]
	if !ok {
		return nil
	}

	ctx.SequenceIndex = sequenceIndex
	ctx.LastLogonTime = logonTime
	ctx.LastSequenceResetTime = lastSequenceResetTime

	fields := recordcodec.Fields{
		SessionID:             uint64(ctx.SessionID),
		SequenceIndex:         sequenceIndex,
		LogonTime:             logonTime,
		LastSequenceResetTime: lastSequenceResetTime,
		CompositeKeyLength:    uint16(ctx.compositeKeyLength),
		DictionaryName:        ctx.Dictionary,
	}
	if err := e.codec.EncodeAt(e.region.Bytes(), filePosition, fields); err != nil {
		return fmt.Errorf("directory: update saved data: %w", err)
	}
	e.recomputeSectorChecksum(filePosition)
	if err := e.region.Force(); err != nil {
		return fmt.Errorf("directory: update saved data force: %w", err)
	}

	e.republishSnapshotLocked()
	return nil
}

// OnDisconnect removes sessionID from the authenticated set. It does
// not touch disk and is idempotent.
func (e *Engine) OnDisconnect(sessionID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.authenticated.contains(sessionID) {
		return
	}
	e.authenticated.remove(sessionID)
	if e.metrics != nil {
		e.metrics.RecordDisconnect()
	}
}

// Reset clears all in-memory state and the on-disk file. It requires
// the authenticated set to be empty. If backup is non-nil, the current
// file contents are copied there before being zeroed.
func (e *Engine) Reset(backup sectorfile.SnapshotWriter) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.authenticated.len() != 0 {
		return ErrResetWithAuth
	}

	if backup != nil {
		if err := e.region.TransferTo(backup); err != nil {
			return fmt.Errorf("directory: reset snapshot: %w", err)
		}
	}

	e.byKey = make(map[identity.Key]*SessionContext)
	e.byPosition = make(map[int64]*SessionContext)
	e.bySessionID = make(map[int64]*SessionContext)
	e.counter = LowestValidSessionID
	e.nextPosition = HeaderSize
	e.authenticated.clear()

	e.region.ZeroFill()
	e.writeHeaderLocked()
	if err := e.region.Force(); err != nil {
		return fmt.Errorf("directory: reset force: %w", err)
	}

	e.republishSnapshotLocked()
	return nil
}

// Snapshot copies the live file contents to w without touching
// in-memory state or the on-disk file, unlike Reset.
func (e *Engine) Snapshot(w sectorfile.SnapshotWriter) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.region.TransferTo(w)
}

// LookupSessionID returns the session id assigned to key, or
// UnknownSessionID if the key has never been seen.
func (e *Engine) LookupSessionID(key identity.Key) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ctx, ok := e.byKey[key]; ok {
		return ctx.SessionID
	}
	return UnknownSessionID
}

// IsAuthenticated reports whether sessionID is currently logged on.
// Safe to call concurrently with mutating operations.
func (e *Engine) IsAuthenticated(sessionID int64) bool {
	return e.authenticated.contains(sessionID)
}

// IsKnownSessionID reports whether sessionID has ever been assigned.
func (e *Engine) IsKnownSessionID(sessionID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.bySessionID[sessionID]
	return ok
}

// AllSessions returns a snapshot of every known session. Safe to call
// concurrently with mutating operations; the returned slice is never
// mutated in place by the engine.
func (e *Engine) AllSessions() []SessionInfo {
	p := e.snapshot.Load()
	if p == nil {
		return nil
	}
	out := make([]SessionInfo, len(*p))
	copy(out, *p)
	return out
}

// Close releases the mapped region.
func (e *Engine) Close() error {
	return e.region.Close()
}
