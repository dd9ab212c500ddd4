package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	NEWLINE

	// Identifiers and literals
	IDENT  // add, foobar, x, y, ...
	INT    // 12345, -3
	FLOAT  // 3.14159, -0.5
	CHAR   // 'c'
	STRING // "foobar"

	// Symbols
	ASSIGN    // =
	COMMA     // ,
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]

	// Keywords
	IF
	ELSE
	ELIF
	WHILE
	LET
	CONST
	FN
	RET
	FOR
	IN
	TRUE
	FALSE
	NONE
)

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

var tokenNames = map[TokenType]string{
	ILLEGAL:   "ILLEGAL",
	EOF:       "EOF",
	NEWLINE:   "NEWLINE",
	IDENT:     "IDENT",
	INT:       "INT",
	FLOAT:     "FLOAT",
	CHAR:      "CHAR",
	STRING:    "STRING",
	ASSIGN:    "=",
	COMMA:     ",",
	SEMICOLON: ";",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",
	IF:        "if",
	ELSE:      "else",
	ELIF:      "elif",
	WHILE:     "while",
	LET:       "let",
	CONST:     "const",
	FN:        "fn",
	RET:       "ret",
	FOR:       "for",
	IN:        "in",
	TRUE:      "true",
	FALSE:     "false",
	NONE:      "none",
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// IsKeyword reports whether the token type is a reserved word.
func (tt TokenType) IsKeyword() bool {
	return tt >= IF && tt <= NONE
}

var keywords = map[string]TokenType{
	"if":    IF,
	"else":  ELSE,
	"elif":  ELIF,
	"while": WHILE,
	"let":   LET,
	"const": CONST,
	"fn":    FN,
	"ret":   RET,
	"for":   FOR,
	"in":    IN,
	"true":  TRUE,
	"false": FALSE,
	"none":  NONE,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Lexer represents the lexical analyzer
type Lexer struct {
	filename     string
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination (first byte)
	chRune       rune // current character as a rune
	chSize       int  // byte size of current character
	line         int
	column       int
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "<input>")
}

// NewWithFilename creates a new lexer instance with a specific filename
func NewWithFilename(input string, filename string) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    input,
		line:     1,
		column:   0,
	}
	l.readChar()
	return l
}

// Filename returns the name the lexer was created with.
func (l *Lexer) Filename() string {
	return l.filename
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.chRune = 0
		l.chSize = 0
		l.position = l.readPosition
		return
	}

	b := l.input[l.readPosition]
	if b < utf8.RuneSelf {
		l.ch = b
		l.chRune = rune(b)
		l.chSize = 1
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = b
		l.chRune = r
		l.chSize = size
	}
	l.position = l.readPosition
	l.readPosition += l.chSize
	l.column++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	line, col := l.line, l.column

	var tok Token
	switch l.ch {
	case 0:
		return Token{Type: EOF, Literal: "", Line: line, Column: col}
	case '\n':
		tok = newToken(NEWLINE, l.ch, line, col)
	case '=':
		tok = newToken(ASSIGN, l.ch, line, col)
	case ',':
		tok = newToken(COMMA, l.ch, line, col)
	case ';':
		tok = newToken(SEMICOLON, l.ch, line, col)
	case '(':
		tok = newToken(LPAREN, l.ch, line, col)
	case ')':
		tok = newToken(RPAREN, l.ch, line, col)
	case '{':
		tok = newToken(LBRACE, l.ch, line, col)
	case '}':
		tok = newToken(RBRACE, l.ch, line, col)
	case '[':
		tok = newToken(LBRACKET, l.ch, line, col)
	case ']':
		tok = newToken(RBRACKET, l.ch, line, col)
	case '/':
		if l.peekChar() == '/' {
			l.skipComment()
			return l.NextToken()
		}
		tok = newToken(ILLEGAL, l.ch, line, col)
	case '"':
		str, ok := l.readString()
		if !ok {
			return Token{Type: ILLEGAL, Literal: "unterminated string", Line: line, Column: col}
		}
		tok = Token{Type: STRING, Literal: str, Line: line, Column: col}
	case '\'':
		ch, ok := l.readCharLiteral()
		if !ok {
			return Token{Type: ILLEGAL, Literal: "invalid character literal", Line: line, Column: col}
		}
		tok = Token{Type: CHAR, Literal: ch, Line: line, Column: col}
	case '-':
		if isDigit(l.peekChar()) {
			return l.readNumberToken(line, col)
		}
		tok = newToken(ILLEGAL, l.ch, line, col)
	default:
		if isLetterRune(l.chRune) {
			ident := l.readIdentifier()
			return Token{Type: LookupIdent(ident), Literal: ident, Line: line, Column: col}
		}
		if isDigit(l.ch) {
			return l.readNumberToken(line, col)
		}
		tok = Token{Type: ILLEGAL, Literal: string(l.chRune), Line: line, Column: col}
	}

	l.readChar()
	return tok
}

// Tokens drains the lexer and returns every token up to and including EOF.
func (l *Lexer) Tokens() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

// newToken creates a new token with the given parameters
func newToken(tokenType TokenType, ch byte, line, column int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: column}
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetterRune(l.chRune) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumberToken reads an optionally negative integer or float.
func (l *Lexer) readNumberToken(line, col int) Token {
	position := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}

	typ := INT
	if l.ch == '.' && isDigit(l.peekChar()) {
		typ = FLOAT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return Token{Type: typ, Literal: l.input[position:l.position], Line: line, Column: col}
}

// readString reads a double-quoted string. The lexer is left on the closing quote.
func (l *Lexer) readString() (string, bool) {
	var result []byte
	l.readChar() // skip opening quote

	for l.ch != '"' && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case '\\':
				result = append(result, '\\')
			case '"':
				result = append(result, '"')
			default:
				// Unknown escape, keep as-is
				result = append(result, '\\')
				result = append(result, l.input[l.position:l.position+l.chSize]...)
			}
		} else {
			result = append(result, l.input[l.position:l.position+l.chSize]...)
		}
		l.readChar()
	}

	return string(result), l.ch == '"'
}

// readCharLiteral reads a single-quoted character literal holding exactly one rune.
// The lexer is left on the closing quote.
func (l *Lexer) readCharLiteral() (string, bool) {
	l.readChar() // skip opening quote

	var r rune
	switch l.ch {
	case 0, '\n', '\'':
		return "", false
	case '\\':
		l.readChar()
		switch l.ch {
		case 'n':
			r = '\n'
		case 't':
			r = '\t'
		case '\\':
			r = '\\'
		case '\'':
			r = '\''
		default:
			return "", false
		}
	default:
		r = l.chRune
	}

	l.readChar()
	if l.ch != '\'' {
		return "", false
	}
	return string(r), true
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

// skipComment skips a // comment, leaving the newline for the next token.
func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// isLetterRune checks if a rune can start or continue an identifier.
func isLetterRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// isDigit checks if the character is a digit
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
