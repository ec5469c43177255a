// Package ice ("internal consistency error") standardizes reporting of
// pipeline-internal invariant violations: bugs in this implementation
// rather than problems with the analyzed LSL source. Spec §7 error kind 6
// says such a violation is "fatal for that pipeline run" and should
// produce a single diagnostic spanning the whole document; the pipeline
// package does that by catching an *Error here rather than letting a
// panic escape to the caller.
package ice

import (
	"fmt"
	"runtime"
)

// Category groups invariant violations by the subsystem that detected
// them, mirroring the teacher's ErrorCategory enum.
type Category string

const (
	CategoryPosition Category = "POSITION"
	CategoryScope    Category = "SCOPE"
	CategoryTokens   Category = "TOKENS"
	CategoryInclude  Category = "INCLUDE"
)

// Error is a standardized internal-invariant-violation error.
type Error struct {
	Category Category
	Message  string
	Context  map[string]interface{}
	Caller   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s (at %s)", e.Category, e.Message, e.Caller)
}

// New constructs an Error, recording the immediate caller for post-mortem
// debugging the way the teacher's NewStandardError does.
func New(category Category, message string, context map[string]interface{}) *Error {
	caller := "unknown"

	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &Error{Category: category, Message: message, Context: context, Caller: caller}
}

// Newf is New with a formatted message.
func Newf(category Category, context map[string]interface{}, format string, args ...interface{}) *Error {
	caller := "unknown"

	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &Error{Category: category, Message: fmt.Sprintf(format, args...), Context: context, Caller: caller}
}
