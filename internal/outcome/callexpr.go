package outcome

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Grammar accepted by ParseCall:
//
//	call   = ident "(" [ args ] ")"
//	args   = kwargs | dict
//	kwargs = ident "=" value { "," ident "=" value } [ "," ]
//	dict   = "{" [ key ":" value { "," key ":" value } [ "," ] ] "}"
//	key    = string | ident
//	value  = string | number | "True" | "False" | "None" | "true" | "false" | "null"
//
// Nothing is evaluated; anything outside the grammar is a *SyntaxError.

// ValueKind tags a literal argument value.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueInt
	ValueFloat
	ValueBool
	ValueNull
)

// Value is a literal argument.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// String renders the value the way it is shown to the operator.
func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValueBool:
		if v.Bool {
			return "True"
		}
		return "False"
	default:
		return "None"
	}
}

// Call is a parsed `name(args)` description.
type Call struct {
	Name string
	Args map[string]Value
	// Order keeps argument keys in source order.
	Order []string
}

// SyntaxError reports where the input left the grammar.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("call syntax: %s at offset %d", e.Msg, e.Offset)
}

// ParseCall parses src as a call description. It is total: it returns either a
// Call or a *SyntaxError.
func ParseCall(src string) (Call, error) {
	p := &callParser{lex: newLexer(src)}
	call, err := p.parse()
	if err != nil {
		return Call{}, err
	}
	return call, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokComma
	tokColon
	tokEquals
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokComma:
		return "','"
	case tokColon:
		return "':'"
	case tokEquals:
		return "'='"
	default:
		return "token"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	switch r {
	case '(':
		l.pos += size
		return token{kind: tokLParen, pos: start}, nil
	case ')':
		l.pos += size
		return token{kind: tokRParen, pos: start}, nil
	case '{':
		l.pos += size
		return token{kind: tokLBrace, pos: start}, nil
	case '}':
		l.pos += size
		return token{kind: tokRBrace, pos: start}, nil
	case ',':
		l.pos += size
		return token{kind: tokComma, pos: start}, nil
	case ':':
		l.pos += size
		return token{kind: tokColon, pos: start}, nil
	case '=':
		l.pos += size
		return token{kind: tokEquals, pos: start}, nil
	case '\'', '"':
		return l.lexString(r)
	}
	if r == '-' || r == '+' || r == '.' || unicode.IsDigit(r) {
		return l.lexNumber()
	}
	if r == '_' || unicode.IsLetter(r) {
		for l.pos < len(l.src) {
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			l.pos += size
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}, nil
	}
	return token{}, &SyntaxError{Offset: start, Msg: fmt.Sprintf("unexpected character %q", r)}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *lexer) lexString(quote rune) (token, error) {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += size
		switch {
		case r == quote:
			return token{kind: tokString, text: sb.String(), pos: start}, nil
		case r == '\\':
			if l.pos >= len(l.src) {
				return token{}, &SyntaxError{Offset: l.pos, Msg: "unterminated escape"}
			}
			esc, escSize := utf8.DecodeRuneInString(l.src[l.pos:])
			l.pos += escSize
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '\\', '\'', '"':
				sb.WriteRune(esc)
			default:
				sb.WriteRune('\\')
				sb.WriteRune(esc)
			}
		default:
			sb.WriteRune(r)
		}
	}
	return token{}, &SyntaxError{Offset: start, Msg: "unterminated string"}
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			l.pos++
			continue
		}
		break
	}
	return token{kind: tokNumber, text: l.src[start:l.pos], pos: start}, nil
}

type callParser struct {
	lex    *lexer
	tok    token
	peeked bool
}

func (p *callParser) peek() (token, error) {
	if p.peeked {
		return p.tok, nil
	}
	tok, err := p.lex.next()
	if err != nil {
		return token{}, err
	}
	p.tok = tok
	p.peeked = true
	return tok, nil
}

func (p *callParser) advance() (token, error) {
	tok, err := p.peek()
	if err != nil {
		return token{}, err
	}
	p.peeked = false
	return tok, nil
}

func (p *callParser) expect(kind tokenKind) (token, error) {
	tok, err := p.advance()
	if err != nil {
		return token{}, err
	}
	if tok.kind != kind {
		return token{}, &SyntaxError{Offset: tok.pos, Msg: fmt.Sprintf("expected %s, found %s", kind, tok.kind)}
	}
	return tok, nil
}

func (p *callParser) parse() (Call, error) {
	name, err := p.expect(tokIdent)
	if err != nil {
		return Call{}, err
	}
	if _, err := p.expect(tokLParen); err != nil {
		return Call{}, err
	}
	call := Call{Name: name.text, Args: map[string]Value{}}

	tok, err := p.peek()
	if err != nil {
		return Call{}, err
	}
	switch tok.kind {
	case tokRParen:
	case tokLBrace:
		if err := p.parseDict(&call); err != nil {
			return Call{}, err
		}
	default:
		if err := p.parseKwargs(&call); err != nil {
			return Call{}, err
		}
	}
	if _, err := p.expect(tokRParen); err != nil {
		return Call{}, err
	}
	if _, err := p.expect(tokEOF); err != nil {
		return Call{}, err
	}
	return call, nil
}

func (p *callParser) parseKwargs(call *Call) error {
	for {
		key, err := p.expect(tokIdent)
		if err != nil {
			return err
		}
		if _, err := p.expect(tokEquals); err != nil {
			return err
		}
		val, err := p.parseValue()
		if err != nil {
			return err
		}
		if err := call.set(key, val); err != nil {
			return err
		}
		more, err := p.listContinues(tokRParen)
		if err != nil || !more {
			return err
		}
	}
}

func (p *callParser) parseDict(call *Call) error {
	if _, err := p.expect(tokLBrace); err != nil {
		return err
	}
	tok, err := p.peek()
	if err != nil {
		return err
	}
	if tok.kind == tokRBrace {
		_, err := p.advance()
		return err
	}
	for {
		key, err := p.advance()
		if err != nil {
			return err
		}
		if key.kind != tokString && key.kind != tokIdent {
			return &SyntaxError{Offset: key.pos, Msg: fmt.Sprintf("expected key, found %s", key.kind)}
		}
		if _, err := p.expect(tokColon); err != nil {
			return err
		}
		val, err := p.parseValue()
		if err != nil {
			return err
		}
		if err := call.set(key, val); err != nil {
			return err
		}
		more, err := p.listContinues(tokRBrace)
		if err != nil {
			return err
		}
		if !more {
			_, err := p.expect(tokRBrace)
			return err
		}
	}
}

// listContinues consumes a separating comma. A trailing comma before closer is allowed.
func (p *callParser) listContinues(closer tokenKind) (bool, error) {
	tok, err := p.peek()
	if err != nil {
		return false, err
	}
	if tok.kind != tokComma {
		return false, nil
	}
	if _, err := p.advance(); err != nil {
		return false, err
	}
	tok, err = p.peek()
	if err != nil {
		return false, err
	}
	return tok.kind != closer, nil
}

func (p *callParser) parseValue() (Value, error) {
	tok, err := p.advance()
	if err != nil {
		return Value{}, err
	}
	switch tok.kind {
	case tokString:
		return Value{Kind: ValueString, Str: tok.text}, nil
	case tokNumber:
		return parseNumber(tok)
	case tokIdent:
		switch tok.text {
		case "True", "true":
			return Value{Kind: ValueBool, Bool: true}, nil
		case "False", "false":
			return Value{Kind: ValueBool, Bool: false}, nil
		case "None", "null":
			return Value{Kind: ValueNull}, nil
		}
		return Value{}, &SyntaxError{Offset: tok.pos, Msg: fmt.Sprintf("identifier %q is not a literal", tok.text)}
	default:
		return Value{}, &SyntaxError{Offset: tok.pos, Msg: fmt.Sprintf("expected literal, found %s", tok.kind)}
	}
}

func parseNumber(tok token) (Value, error) {
	if isInteger(tok.text) {
		if leadingZero(tok.text) {
			return Value{}, &SyntaxError{Offset: tok.pos, Msg: fmt.Sprintf("leading zero in integer %q", tok.text)}
		}
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return Value{}, &SyntaxError{Offset: tok.pos, Msg: fmt.Sprintf("malformed integer %q", tok.text)}
		}
		return Value{Kind: ValueInt, Int: n}, nil
	}
	if f, err := strconv.ParseFloat(tok.text, 64); err == nil {
		return Value{Kind: ValueFloat, Float: f}, nil
	}
	return Value{}, &SyntaxError{Offset: tok.pos, Msg: fmt.Sprintf("malformed number %q", tok.text)}
}

func isInteger(text string) bool {
	digits := strings.TrimLeft(text, "+-")
	if digits == "" || len(text)-len(digits) > 1 {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

// leadingZero rejects 010 style literals; 0 and 000 are fine.
func leadingZero(text string) bool {
	digits := strings.TrimLeft(text, "+-")
	return len(digits) > 1 && digits[0] == '0' && strings.Trim(digits, "0") != ""
}

func (c *Call) set(key token, val Value) error {
	if _, dup := c.Args[key.text]; dup {
		return &SyntaxError{Offset: key.pos, Msg: fmt.Sprintf("duplicate argument %q", key.text)}
	}
	c.Args[key.text] = val
	c.Order = append(c.Order, key.text)
	return nil
}
