// tokenizer.go
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// MaxStatementLength bounds the text collected for a single statement.
const MaxStatementLength = 4096

type tokenKind int

const (
	tokOpen      tokenKind = iota // Statement ended by '{'
	tokClose                      // '}'
	tokStatement                  // Statement ended by ';'
)

type token struct {
	kind tokenKind
	text string
	line int
}

// tokenizer turns source bytes into statements. Whitespace outside strings is
// dropped and block comments are removed before anything reaches the buffer.
type tokenizer struct {
	r      *bufio.Reader
	report func(line int, kind ErrorKind, msg string)

	buf       []byte
	line      int
	last      byte
	inComment bool
	inString  bool
}

func newTokenizer(r io.Reader, report func(line int, kind ErrorKind, msg string)) *tokenizer {
	return &tokenizer{
		r:      bufio.NewReader(r),
		report: report,
		buf:    make([]byte, 0, 256),
		line:   1,
	}
}

// next returns the next token, io.EOF at the end of input, or a fatal error.
func (t *tokenizer) next() (token, error) {
	for {
		c, err := t.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				t.finish()
				return token{}, io.EOF
			}
			return token{}, fmt.Errorf("reading source: %w", err)
		}
		if c == '\n' {
			t.line++
		}

		if t.inString {
			if c == '"' {
				t.inString = false
			}
			if c >= ' ' || c == '\t' {
				if err := t.appendByte(c); err != nil {
					return token{}, err
				}
			}
			t.last = c
			continue
		}

		if t.inComment {
			switch {
			case c == '*' && t.last == '/':
				t.report(t.line, LexError, "nested comment")
			case c == '/' && t.last == '*':
				t.inComment = false
				t.last = 0
				continue
			}
			t.last = c
			continue
		}

		switch {
		case c == '*' && t.last == '/':
			t.dropLast('/')
			t.inComment = true
			t.last = 0
			continue
		case c == '/' && t.last == '*':
			t.report(t.line, LexError, "no comment to close")
			t.dropLast('*')
			t.last = 0
			continue
		}
		t.last = c

		switch c {
		case '"':
			t.inString = true
		case '{':
			return t.emit(tokOpen), nil
		case '}':
			return t.emit(tokClose), nil
		case ';':
			return t.emit(tokStatement), nil
		}
		if c > ' ' {
			if err := t.appendByte(c); err != nil {
				return token{}, err
			}
		}
	}
}

func (t *tokenizer) appendByte(c byte) error {
	if len(t.buf) >= MaxStatementLength {
		return &Error{Line: t.line, Kind: ResourceError, Msg: fmt.Sprintf("statement exceeds %d bytes", MaxStatementLength), Err: errStatementTooLong}
	}
	t.buf = append(t.buf, c)
	return nil
}

func (t *tokenizer) dropLast(c byte) {
	if n := len(t.buf); n > 0 && t.buf[n-1] == c {
		t.buf = t.buf[:n-1]
	}
}

func (t *tokenizer) emit(kind tokenKind) token {
	tok := token{kind: kind, text: string(t.buf), line: t.line}
	t.buf = t.buf[:0]
	return tok
}

// finish reports anything left open at the end of input.
func (t *tokenizer) finish() {
	if t.inComment {
		t.report(t.line, LexError, "unterminated comment")
	}
	if t.inString {
		t.report(t.line, LexError, "unterminated string")
	}
	if len(t.buf) > 0 {
		t.report(t.line, ContextError, fmt.Sprintf("statement '%s' not terminated by ';' or '{'", t.buf))
		t.buf = t.buf[:0]
	}
}
