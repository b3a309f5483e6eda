package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	Configuration-error sentinels for the API boundary.
 *		Kind 4 of spec.md §7: reject bad parameters synchronously,
 *		never silently clamp.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is by callers.
var (
	ErrUnsupportedModem   = errors.New("spanfax: modem not in supported mask")
	ErrEmptyIdent         = errors.New("spanfax: ident must be non-empty")
	ErrIdentTooLong       = errors.New("spanfax: ident exceeds maximum length")
	ErrZeroImageWidth     = errors.New("spanfax: image width must be positive")
	ErrOnBelowOffThresh   = errors.New("spanfax: AGC on-threshold below off-threshold")
	ErrECMBlockFull       = errors.New("spanfax: ECM block already has 256 frames")
	ErrPPRCountExceeded   = errors.New("spanfax: PPR retry count exceeded for this block")
	ErrNoCapabilityOffered = errors.New("spanfax: no capability in common with the remote station")
	ErrBadParameter        = errors.New("spanfax: malformed frame or parameter")
)

// ConfigError wraps a sentinel with the offending value for diagnostics.
type ConfigError struct {
	Err   error
	Field string
	Value any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("spanfax: %s: %s (got %v)", e.Field, e.Err, e.Value)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func newConfigError(field string, err error, value any) *ConfigError {
	return &ConfigError{Err: err, Field: field, Value: value}
}
