package fit

import (
	"errors"
	"fmt"

	"github.com/samcharles93/fitdecode/internal/fitio"
)

// Sentinel error kinds a caller can match with errors.Is; a *DecodeError
// adds position context on top.
var (
	ErrTruncatedInput    = errors.New("fit: truncated input")
	ErrBadSignature      = errors.New("fit: bad .FIT signature")
	ErrBadHeaderSize     = errors.New("fit: bad header size")
	ErrCrcMismatch       = errors.New("fit: crc mismatch")
	ErrUnknownLocalTag   = errors.New("fit: data record references undefined local message type")
	ErrInvalidDefinition = errors.New("fit: invalid definition record")

	// ErrDone is returned by Decoder.Next once the input (all chained
	// segments) has been fully consumed.
	ErrDone = errors.New("fit: no more messages")
)

// ProcessorError wraps a panic recovered from a Processor hook.
type ProcessorError struct {
	Field string
	Err   error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("fit: processor hook failed on field %q: %v", e.Field, e.Err)
}

func (e *ProcessorError) Unwrap() error { return e.Err }

// DecodeError adds source-position context to one of the sentinel errors
// above.
type DecodeError struct {
	Offset  int64
	Segment int
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("fit: %v (segment %d, offset %d)", e.Err, e.Segment, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// wrapErr adds position context to err, translating internal-package
// sentinels into their exported fit equivalents so external callers can
// match with errors.Is without importing internal/fitio.
func wrapErr(offset int64, segment int, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fitio.ErrTruncated) {
		err = fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	return &DecodeError{Offset: offset, Segment: segment, Err: err}
}
