package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Error is a coded error with optional structured context.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// Message is a human-readable description.
	Message string
	// Context carries structured details such as the offending name or clause.
	Context map[string]interface{}
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
// The format is "CODE: message [k=v ...]: cause".
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString("]")
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithContext returns a copy of the error with key set to value in its context.
func (e *Error) WithContext(key string, value interface{}) *Error {
	ctx := make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value

	cp := *e
	cp.Context = ctx
	return &cp
}

// New creates an error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with the given code and a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message. It returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// WrapWithContext wraps err with a code, message and structured context.
// It returns nil if err is nil.
func WrapWithContext(err error, code ErrorCode, message string, context map[string]interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Context: context, Err: err}
}

// CodeOf returns the code of the outermost *Error in err's chain,
// or CodeUnknown if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsConsistency reports whether err is a registry consistency error.
// Remap cycles count as consistency errors.
func IsConsistency(err error) bool {
	return HasCode(err, CodeConsistency) || HasCode(err, CodeRemapCycle)
}

// IsPolicyConflict reports whether err is an allow/deny policy conflict.
func IsPolicyConflict(err error) bool {
	return HasCode(err, CodePolicyConflict)
}

// IsReference reports whether err is an unresolved reference in behavior text.
func IsReference(err error) bool {
	return HasCode(err, CodeReference)
}

// IsParse reports whether err is a parse error.
func IsParse(err error) bool {
	return HasCode(err, CodeParse)
}

// As is a re-export of the standard library errors.As so callers need only one import.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Join is a re-export of the standard library errors.Join.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
