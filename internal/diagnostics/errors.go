package diagnostics

import (
	"fmt"
	"sort"

	"github.com/funvibe/sysmel/internal/token"
	"go.uber.org/multierr"
)

type ErrorCode string

const (
	// Analyzer errors.
	ErrA001 ErrorCode = "A001" // Unbound identifier
	ErrA002 ErrorCode = "A002" // Type mismatch
	ErrA003 ErrorCode = "A003" // Argument count mismatch
	ErrA004 ErrorCode = "A004" // Expected a type
	ErrA005 ErrorCode = "A005" // Expected a binding pattern
	ErrA006 ErrorCode = "A006" // Value is not applicable
	ErrA007 ErrorCode = "A007" // No matching overload
	ErrA008 ErrorCode = "A008" // Invalid binding name
	ErrA009 ErrorCode = "A009" // Error reported by the front end

	// Syntax graph loading errors.
	ErrS001 ErrorCode = "S001" // Malformed document
	ErrS002 ErrorCode = "S002" // Unknown node kind
	ErrS003 ErrorCode = "S003" // Invalid attribute value
)

// DiagnosticError is a user-facing semantic error attached to a source position.
type DiagnosticError struct {
	Code     ErrorCode
	Position token.Position
	File     string
	Message  string
}

func NewError(code ErrorCode, position token.Position, message string) *DiagnosticError {
	err := &DiagnosticError{Code: code, Position: position, Message: message}
	if position.SourceCode != nil {
		err.File = position.SourceCode.Name
	}
	return err
}

func NewErrorf(code ErrorCode, position token.Position, format string, args ...interface{}) *DiagnosticError {
	return NewError(code, position, fmt.Sprintf(format, args...))
}

func (e *DiagnosticError) Error() string {
	if e.Position.IsEmpty() {
		return fmt.Sprintf("error[%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: error[%s]: %s", e.Position, e.Code, e.Message)
}

// List collects the diagnostics of one compilation pass.
type List struct {
	errors []*DiagnosticError
}

func (l *List) Add(err *DiagnosticError) {
	l.errors = append(l.errors, err)
}

func (l *List) Len() int {
	return len(l.errors)
}

// Sorted returns the diagnostics ordered by position.
func (l *List) Sorted() []*DiagnosticError {
	result := make([]*DiagnosticError, len(l.errors))
	copy(result, l.errors)
	sort.SliceStable(result, func(i, j int) bool {
		pi, pj := result[i].Position, result[j].Position
		if pi.StartLine != pj.StartLine {
			return pi.StartLine < pj.StartLine
		}
		return pi.StartColumn < pj.StartColumn
	})
	return result
}

// Err combines all diagnostics into a single error, or nil when there are none.
func (l *List) Err() error {
	var err error
	for _, diagnostic := range l.Sorted() {
		err = multierr.Append(err, diagnostic)
	}
	return err
}
