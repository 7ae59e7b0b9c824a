package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/creditgest/internal/doctree"
)

// Parser converts raw document bytes into a Document Tree.
type Parser interface {
	Parse(r io.Reader) (*doctree.Tree, error)
}

var (
	ErrEmpty        = errors.New("document has no root element")
	ErrTooDeep      = errors.New("document nesting exceeds depth limit")
	ErrTooManyNodes = errors.New("document exceeds element limit")
)

// SyntaxError reports a malformed document. Line is 0 when unknown.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// IsStructural reports whether err means the document itself is unusable, as
// opposed to an I/O failure while reading it.
func IsStructural(err error) bool {
	var syn *SyntaxError
	return errors.As(err, &syn) ||
		errors.Is(err, ErrEmpty) ||
		errors.Is(err, ErrTooDeep) ||
		errors.Is(err, ErrTooManyNodes)
}
