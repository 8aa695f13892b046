package lexer

import (
	"fmt"

	"mathic/internal/source"
)

type ErrorKind int

const (
	// TokenError is reported for input that is not valid UTF-8.
	TokenError ErrorKind = iota
	InvalidCharacter
	UnterminatedString
	UnterminatedComment
	InvalidNumber
)

func (k ErrorKind) String() string {
	switch k {
	case TokenError:
		return "TokenError"
	case InvalidCharacter:
		return "InvalidCharacter"
	case UnterminatedString:
		return "UnterminatedString"
	case UnterminatedComment:
		return "UnterminatedComment"
	case InvalidNumber:
		return "InvalidNumber"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a lexical error. Char is set for InvalidCharacter, Text for
// InvalidNumber.
type Error struct {
	Kind ErrorKind
	Char rune
	Text string
	Span source.Span
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidCharacter:
		return fmt.Sprintf("invalid character: '%c'", e.Char)
	case UnterminatedString:
		return "unterminated string"
	case UnterminatedComment:
		return "unterminated comment"
	case InvalidNumber:
		return fmt.Sprintf("invalid number: %s", e.Text)
	default:
		return "unknown token"
	}
}
