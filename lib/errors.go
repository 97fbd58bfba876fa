package lib

import (
	"errors"
	"fmt"
)

// ErrorCategory groups failures by the stage that detected them.
type ErrorCategory int

const (
	CategoryLex ErrorCategory = iota
	CategorySyntax
	CategoryCompile
	CategoryRuntime
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryLex:
		return "LexError"
	case CategorySyntax:
		return "SyntaxError"
	case CategoryCompile:
		return "CompileError"
	case CategoryRuntime:
		return "RuntimeError"
	default:
		return "Error"
	}
}

var (
	ErrUnknownCharacter       = errors.New("unknown character")
	ErrInvalidStatement       = errors.New("invalid statement")
	ErrUnexpectedEOL          = errors.New("unexpected end of line")
	ErrExpectedOperator       = errors.New("expected operator")
	ErrUnexpectedToken        = errors.New("unexpected token")
	ErrInvalidCharLiteral     = errors.New("invalid char literal")
	ErrIntegerRange           = errors.New("integer literal out of range")
	ErrUnknownType            = errors.New("unknown type")
	ErrDuplicateDeclaration   = errors.New("duplicate declaration")
	ErrUnknownVariable        = errors.New("unknown variable")
	ErrTypeMismatch           = errors.New("type mismatch")
	ErrOperatorNotImplemented = errors.New("operator not implemented")
	ErrNotAPointer            = errors.New("not a pointer")
	ErrNullDereference        = errors.New("null pointer dereference")
	ErrInvalidAddress         = errors.New("invalid address")
	ErrDivisionByZero         = errors.New("division by zero")
	ErrOutOfMemory            = errors.New("out of memory")

	// ErrHalted is joined onto the stored failure when a halted Runner is
	// stepped again.
	ErrHalted = errors.New("execution halted")
)

// Error is the single user-visible failure type. Kind is one of the
// sentinels above so callers can use errors.Is.
type Error struct {
	Category ErrorCategory
	Kind     error
	Msg      string
	Line     int
	Col      int
	Source   string
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	switch {
	case e.Line > 0 && e.Col > 0:
		return fmt.Sprintf("%s at line %d:%d: %s", e.Category, e.Line, e.Col, msg)
	case e.Line > 0:
		return fmt.Sprintf("%s at line %d: %s", e.Category, e.Line, msg)
	case e.Col > 0:
		return fmt.Sprintf("%s at col %d: %s", e.Category, e.Col, msg)
	default:
		return fmt.Sprintf("%s: %s", e.Category, msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// CategoryOf reports the category of err if it is (or wraps) an *Error.
func CategoryOf(err error) (ErrorCategory, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Category, true
	}
	return 0, false
}

func syntaxErrorf(at token, format string, args ...interface{}) error {
	return &Error{
		Category: CategorySyntax,
		Kind:     ErrInvalidStatement,
		Msg:      fmt.Sprintf(format, args...),
		Col:      at.location.col,
	}
}

func compileErrorf(kind error, col int, format string, args ...interface{}) error {
	return &Error{
		Category: CategoryCompile,
		Kind:     kind,
		Msg:      fmt.Sprintf(format, args...),
		Col:      col,
	}
}

func runtimeErrorf(kind error, format string, args ...interface{}) error {
	return &Error{
		Category: CategoryRuntime,
		Kind:     kind,
		Msg:      fmt.Sprintf(format, args...),
	}
}

// withLine returns a copy of err annotated with the program line it came
// from. Errors that are not *Error are wrapped as runtime failures.
func withLine(err error, line int, source string) error {
	var e *Error
	if !errors.As(err, &e) {
		return &Error{Category: CategoryRuntime, Kind: err, Msg: err.Error(), Line: line, Source: source}
	}
	annotated := *e
	annotated.Line = line
	annotated.Source = source
	return &annotated
}
