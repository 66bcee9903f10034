// errors.go
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/waozixyz/menugen/internal/stack"
)

// ErrorKind classifies a diagnostic.
type ErrorKind int

const (
	LexError      ErrorKind = iota // Comments, quoting
	ContextError                   // Command outside its block, unbalanced braces
	ParamError                     // Parameter count or type mismatch
	ModelError                     // Rejected by the menu builder
	ResourceError                  // Limits exhausted; stops the parse
)

func (k ErrorKind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case ContextError:
		return "context error"
	case ParamError:
		return "parameter error"
	case ModelError:
		return "model error"
	case ResourceError:
		return "resource error"
	default:
		return "unknown error"
	}
}

var (
	errMalformedQuoting = errors.New("malformed quoting")
	errMissingParen     = errors.New("missing ')'")
	errTooManyParams    = errors.New("too many parameters")
	errBadInteger       = errors.New("expected integer")
	errStatementTooLong = errors.New("statement too long")
)

// Error is a single diagnostic tied to a source line.
type Error struct {
	Line int
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("L%d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("L%d: %s", e.Line, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Fatal reports whether the error stops parsing.
func (e *Error) Fatal() bool { return e.Kind == ResourceError }

// ErrorList collects every diagnostic of a parse, in source order.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:", len(l))
	for _, e := range l {
		sb.WriteString("\n  ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Count returns how many diagnostics of the given kind were collected.
func (l ErrorList) Count(kind ErrorKind) int {
	n := 0
	for _, e := range l {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// kindOf maps an error returned by a handler or by statement splitting to its kind.
func kindOf(err error) ErrorKind {
	var numErr *strconv.NumError
	switch {
	case errors.Is(err, stack.ErrOverflow), errors.Is(err, errStatementTooLong):
		return ResourceError
	case errors.Is(err, errMalformedQuoting), errors.Is(err, errMissingParen):
		return LexError
	case errors.Is(err, errTooManyParams), errors.Is(err, errBadInteger), errors.As(err, &numErr):
		return ParamError
	default:
		return ModelError
	}
}
