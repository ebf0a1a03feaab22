package directory

import "errors"

// ErrDuplicateSession is returned by OnLogon when the composite key's
// session id is already present in the authenticated set. It is a
// synchronous rejection, not a fatal error — the existing session is
// left untouched.
var ErrDuplicateSession = errors.New("directory: session already authenticated")

// ErrResetWithAuth is returned by Reset when the authenticated set is
// non-empty; Reset requires every session to have disconnected first.
var ErrResetWithAuth = errors.New("directory: reset called with sessions still authenticated")

// ErrWrongBufferKind is a fatal construction-time error returned by Open
// when it is given a nil Region. Open does not otherwise inspect the
// region.
var ErrWrongBufferKind = errors.New("directory: region is not a byte-buffer-backed mapped region")
