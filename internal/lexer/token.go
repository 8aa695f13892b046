package lexer

import "mathic/internal/source"

type Kind int

const (
	TokenEOF Kind = iota

	// Literals / identifiers
	TokenIdent
	TokenNum
	TokenStr

	// Keywords
	TokenDf
	TokenLet
	TokenIf
	TokenElse
	TokenWhile
	TokenFor
	TokenStruct
	TokenSym
	TokenReturn
	TokenAnd
	TokenOr
	TokenTrue
	TokenFalse

	// Punct
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenSemicolon
	TokenColon
	TokenDot
	TokenDotDot

	// Operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenBang
	TokenEq
	TokenEqEq
	TokenBangEq
	TokenLt
	TokenLtEq
	TokenGt
	TokenGtEq
	TokenFatArrow
)

var kindText = [...]string{
	TokenEOF:       "end of file",
	TokenIdent:     "identifier",
	TokenNum:       "number",
	TokenStr:       "string",
	TokenDf:        "df",
	TokenLet:       "let",
	TokenIf:        "if",
	TokenElse:      "else",
	TokenWhile:     "while",
	TokenFor:       "for",
	TokenStruct:    "struct",
	TokenSym:       "sym",
	TokenReturn:    "return",
	TokenAnd:       "and",
	TokenOr:        "or",
	TokenTrue:      "true",
	TokenFalse:     "false",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBrace:    "{",
	TokenRBrace:    "}",
	TokenLBracket:  "[",
	TokenRBracket:  "]",
	TokenComma:     ",",
	TokenSemicolon: ";",
	TokenColon:     ":",
	TokenDot:       ".",
	TokenDotDot:    "..",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenStar:      "*",
	TokenSlash:     "/",
	TokenBang:      "!",
	TokenEq:        "=",
	TokenEqEq:      "==",
	TokenBangEq:    "!=",
	TokenLt:        "<",
	TokenLtEq:      "<=",
	TokenGt:        ">",
	TokenGtEq:      ">=",
	TokenFatArrow:  "=>",
}

// String returns the source spelling for fixed tokens and a category name
// for identifiers, literals and EOF.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindText) {
		return kindText[k]
	}
	return "<bad token>"
}

var keywords = map[string]Kind{
	"df":     TokenDf,
	"let":    TokenLet,
	"if":     TokenIf,
	"else":   TokenElse,
	"while":  TokenWhile,
	"for":    TokenFor,
	"struct": TokenStruct,
	"sym":    TokenSym,
	"return": TokenReturn,
	"and":    TokenAnd,
	"or":     TokenOr,
	"true":   TokenTrue,
	"false":  TokenFalse,
}

// Keyword reports the keyword kind for word, if it is reserved.
func Keyword(word string) (Kind, bool) {
	k, ok := keywords[word]
	return k, ok
}

type Token struct {
	Kind   Kind
	Lexeme string
	Span   source.Span
}

func (t Token) Is(k Kind) bool { return t.Kind == k }
