package irgen

import (
	"fmt"

	"mathic/internal/source"
)

type ErrorKind int

const (
	UndeclaredVariable ErrorKind = iota
	DuplicateDeclaration
	WrongArgumentCount
	UndefinedFunction
	MissingReturn
	UnsupportedFeature
	InvalidLiteral
)

func (k ErrorKind) String() string {
	switch k {
	case UndeclaredVariable:
		return "UndeclaredVariable"
	case DuplicateDeclaration:
		return "DuplicateDeclaration"
	case WrongArgumentCount:
		return "WrongArgumentCount"
	case UndefinedFunction:
		return "UndefinedFunction"
	case MissingReturn:
		return "MissingReturn"
	case UnsupportedFeature:
		return "UnsupportedFeature"
	case InvalidLiteral:
		return "InvalidLiteral"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// LoweringError is a semantic error found while building IR. Name is the
// variable, function or literal text involved; Feature is set for
// UnsupportedFeature; Expected and Got for WrongArgumentCount.
type LoweringError struct {
	Kind     ErrorKind
	Name     string
	Feature  string
	Expected int
	Got      int
	Span     source.Span
}

func (e *LoweringError) Error() string {
	switch e.Kind {
	case UndeclaredVariable:
		return fmt.Sprintf("Undeclared variable '%s'", e.Name)
	case DuplicateDeclaration:
		return fmt.Sprintf("Duplicate declaration of '%s'", e.Name)
	case WrongArgumentCount:
		return fmt.Sprintf("Function '%s' called with %d arguments, expected %d", e.Name, e.Got, e.Expected)
	case UndefinedFunction:
		return fmt.Sprintf("Undefined function '%s'", e.Name)
	case MissingReturn:
		return fmt.Sprintf("Function '%s' missing return statement", e.Name)
	case UnsupportedFeature:
		return fmt.Sprintf("Unsupported feature: %s", e.Feature)
	case InvalidLiteral:
		return fmt.Sprintf("Integer literal '%s' does not fit in 64 bits", e.Name)
	}
	return e.Kind.String()
}

func (e *LoweringError) Help() string {
	switch e.Kind {
	case UndeclaredVariable:
		return fmt.Sprintf("declare '%s' with 'let' before using it", e.Name)
	case DuplicateDeclaration:
		return fmt.Sprintf("'%s' is already declared in this scope", e.Name)
	case WrongArgumentCount:
		return fmt.Sprintf("provide %d argument(s) to '%s'", e.Expected, e.Name)
	case UndefinedFunction:
		return "declare the function before calling it"
	case MissingReturn:
		return "add a return statement to the function"
	case UnsupportedFeature:
		return fmt.Sprintf("%s is not yet implemented", e.Feature)
	case InvalidLiteral:
		return "integer literals must be between 0 and 18446744073709551615"
	}
	return ""
}

func errAt(kind ErrorKind, name string, span source.Span) *LoweringError {
	return &LoweringError{Kind: kind, Name: name, Span: span}
}

func unsupported(feature string, span source.Span) *LoweringError {
	return &LoweringError{Kind: UnsupportedFeature, Feature: feature, Span: span}
}
