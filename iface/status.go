package iface

import "fmt"

// Code is the small status taxonomy the backend reports across its public
// boundary. The backend never panics or throws across Compile/Execute; it
// always returns a *Status (nil meaning success).
type Code int

const (
	CodeSuccess Code = iota
	CodeInvalidArguments
	CodeInvalidGraph
	CodeUnimplemented
	CodeOutOfMemory
	CodeInternalError
)

func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeInvalidArguments:
		return "invalid_arguments"
	case CodeInvalidGraph:
		return "invalid_graph"
	case CodeUnimplemented:
		return "unimplemented"
	case CodeOutOfMemory:
		return "out_of_memory"
	case CodeInternalError:
		return "internal_error"
	default:
		return "unknown_code"
	}
}

// Status is the error type returned across the backend's public boundary.
// A nil *Status means success; callers should test with Status.OK() or by
// comparing to nil.
type Status struct {
	Code Code
	msg  string
	// cause holds a wrapped lower-level error, if any (e.g. a primitive
	// library failure), preserved for %+v-style diagnostics.
	cause error
}

// Error implements the error interface.
func (s *Status) Error() string {
	if s == nil {
		return "success"
	}
	if s.cause != nil {
		return fmt.Sprintf("%s: %s: %v", s.Code, s.msg, s.cause)
	}
	return fmt.Sprintf("%s: %s", s.Code, s.msg)
}

// Unwrap allows errors.Is/errors.As to reach a wrapped cause.
func (s *Status) Unwrap() error {
	if s == nil {
		return nil
	}
	return s.cause
}

// OK reports whether s represents success. A nil *Status is success.
func (s *Status) OK() bool {
	return s == nil || s.Code == CodeSuccess
}

// Errorf builds a non-success Status with a formatted message.
func Errorf(code Code, format string, args ...any) *Status {
	if code == CodeSuccess {
		return nil
	}
	return &Status{Code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a non-success Status that carries cause for context, the way
// the teacher wraps lower-level errors with github.com/pkg/errors.
func Wrap(code Code, cause error, format string, args ...any) *Status {
	if code == CodeSuccess {
		return nil
	}
	return &Status{Code: code, msg: fmt.Sprintf(format, args...), cause: cause}
}

// Success returns nil, spelled out for readability at call sites that
// otherwise read oddly ("return nil" at the end of a long Status-returning
// function).
func Success() *Status { return nil }
