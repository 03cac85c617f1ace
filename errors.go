package surfmesh

import "fmt"

// ErrorKind tags a ReconstructionError with a small failure taxonomy, so
// callers (and the outer CLI layer, out of scope here) can map failures to
// exit codes without string-matching messages.
type ErrorKind int

const (
	// ErrConfigInvalid: nonpositive radius/h/cube size/subdomain count, or
	// an AABB with Min >= Max.
	ErrConfigInvalid ErrorKind = iota
	// ErrNumericDomain: the computed grid or subdomain count overflows a
	// 32-bit addressable index space.
	ErrNumericDomain
	// ErrEmptyInput: no particle falls inside the clip region.
	ErrEmptyInput
	// ErrDegenerate: iso-surface extraction found zero vertices.
	ErrDegenerate
)

func (k ErrorKind) String() string {
	switch k {
	case ErrConfigInvalid:
		return "ConfigInvalid"
	case ErrNumericDomain:
		return "NumericDomain"
	case ErrEmptyInput:
		return "EmptyInput"
	case ErrDegenerate:
		return "Degenerate"
	default:
		return "Unknown"
	}
}

// ReconstructionError is the error type returned by Reconstruct. EmptyInput
// and Degenerate are recoverable: a caller processing a sequence of frames
// can treat them as "no surface this frame" and continue. ConfigInvalid and
// NumericDomain abort the single reconstruction outright.
type ReconstructionError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *ReconstructionError) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap supports errors.Is/errors.As against the underlying cause, if any.
func (e *ReconstructionError) Unwrap() error { return e.cause }

// Recoverable reports whether the caller can continue processing further
// frames after this error (EmptyInput, Degenerate) as opposed to aborting
// (ConfigInvalid, NumericDomain).
func (e *ReconstructionError) Recoverable() bool {
	return e.Kind == ErrEmptyInput || e.Kind == ErrDegenerate
}

func newErr(kind ErrorKind, format string, args ...any) *ReconstructionError {
	return &ReconstructionError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(kind ErrorKind, cause error, format string, args ...any) *ReconstructionError {
	return &ReconstructionError{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}
