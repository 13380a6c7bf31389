package preset

import "errors"

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFormat    ErrKind = iota // bad/unsupported signature or malformed header
	ErrKindTruncated                // buffer shorter than a declared field requires
	ErrKindChecksum                 // stored checksum does not match the computed one
	ErrKindValidation               // record violates its own schema invariants
	ErrKindState                    // invalid operation for current state (e.g. finalized assembler)
	ErrKindWrite                    // writer self-check failed on its own output
)

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels commonly returned by the parser, converter and writer.
var (
	// ErrBadSignature indicates the buffer does not start with the schema's signature.
	ErrBadSignature = &Error{Kind: ErrKindFormat, Msg: "preset: signature mismatch"}
	// ErrTruncated indicates the buffer cannot supply a declared field.
	ErrTruncated = &Error{Kind: ErrKindTruncated, Msg: "preset: truncated data"}
	// ErrChecksumMismatch indicates a checksum failure under strict verification.
	ErrChecksumMismatch = &Error{Kind: ErrKindChecksum, Msg: "preset: checksum mismatch"}
	// ErrInvalidRecord indicates a record that violates its own schema invariants.
	ErrInvalidRecord = &Error{Kind: ErrKindValidation, Msg: "preset: invalid record"}
	// ErrFinalized indicates a write after Finalize on a single-use assembler.
	ErrFinalized = &Error{Kind: ErrKindState, Msg: "preset: assembler already finalized"}
	// ErrWriteValidation indicates the writer's re-parse of its own output failed.
	ErrWriteValidation = &Error{Kind: ErrKindWrite, Msg: "preset: write validation failed"}
)

// KindOf walks the error chain and returns the kind of the first typed Error.
// Returns ok = false when no typed Error is present.
func KindOf(err error) (ErrKind, bool) {
	for err != nil {
		var te *Error
		if errors.As(err, &te) {
			return te.Kind, true
		}
		err = errors.Unwrap(err)
	}
	return 0, false
}
