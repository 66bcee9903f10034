// parser.go
package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/waozixyz/menugen/internal/menu"
	"github.com/waozixyz/menugen/internal/stack"
)

// Options tunes a parse. The zero value is usable.
type Options struct {
	StackSize int          // Maximum block nesting; stack.DefaultSize when <= 0
	Logger    *slog.Logger // Receives one debug record per command; discarded when nil
}

type parser struct {
	b     *menu.Builder
	stack *stack.Stack
	ctx   context
	errs  ErrorList
	log   *slog.Logger
}

// ParseFile opens path and parses it.
func ParseFile(path string, opts Options) (*menu.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file '%s': %w", path, err)
	}
	defer f.Close()
	return Parse(f, opts)
}

// Parse reads a menu template and builds the model. Every diagnostic found is
// returned together as an ErrorList; no model is returned if there was any.
func Parse(r io.Reader, opts Options) (*menu.Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &parser{
		b:     menu.NewBuilder(),
		stack: stack.New(opts.StackSize),
		log:   logger,
	}

	tz := newTokenizer(r, p.report)
	for {
		tok, err := tz.next()
		if errors.Is(err, io.EOF) {
			if n := p.stack.Len(); n > 0 {
				p.report(tz.line, ContextError, fmt.Sprintf("%d block(s) not closed at end of file", n))
			}
			break
		}
		if err != nil {
			var pe *Error
			if !errors.As(err, &pe) {
				return nil, err
			}
			p.errs = append(p.errs, pe)
			break
		}
		if fatal := p.handle(tok); fatal {
			break
		}
	}

	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return p.b.Finish()
}

func (p *parser) report(line int, kind ErrorKind, msg string) {
	p.errs = append(p.errs, &Error{Line: line, Kind: kind, Msg: msg})
}

func (p *parser) fail(line int, kind ErrorKind, msg string, err error) {
	p.errs = append(p.errs, &Error{Line: line, Kind: kind, Msg: msg, Err: err})
}

// handle processes one token and reports whether parsing must stop.
func (p *parser) handle(tok token) bool {
	switch tok.kind {
	case tokClose:
		if tok.text != "" {
			p.report(tok.line, ContextError, fmt.Sprintf("statement '%s' not terminated by ';'", tok.text))
		}
		p.leave(tok.line)
		return false
	case tokOpen:
		if tok.text == "" {
			p.report(tok.line, ContextError, "'{' without a command")
			return p.enter(tok.line, blockNone)
		}
	case tokStatement:
		if tok.text == "" {
			return false
		}
	}
	return p.dispatch(tok)
}

// dispatch resolves and runs a statement. A statement that opens a block always
// pushes something, so the matching '}' closes the right block even on error.
// Once the command is known its own block type is pushed, even when its
// parameters or handler fail, so the statements inside are checked in the
// context they were written for.
func (p *parser) dispatch(tok token) bool {
	opens := tok.kind == tokOpen
	p.b.At(tok.line)

	name, args, sig, err := splitStatement(tok.text)
	if err != nil {
		p.fail(tok.line, kindOf(err), fmt.Sprintf("bad statement '%s'", tok.text), err)
		return p.enterIf(opens, tok.line, blockNone)
	}

	cmd := lookup(name, p.ctx, opens)
	if cmd == nil {
		p.report(tok.line, ContextError, fmt.Sprintf("invalid command '%s' in %s", name, p.describeContext()))
		return p.enterIf(opens, tok.line, blockNone)
	}
	if cmd.sig != sig {
		p.report(tok.line, ParamError, fmt.Sprintf("bad parameters to '%s': expected (%s), got (%s)", name, cmd.sig, sig))
		return p.enterIf(opens, tok.line, cmd.opens)
	}

	p.log.Debug("command", "line", tok.line, "name", name, "args", args, "block", cmd.opens)

	if cmd.handler != nil {
		if err := cmd.handler(p.b, args); err != nil {
			kind := kindOf(err)
			p.fail(tok.line, kind, fmt.Sprintf("'%s' failed", name), err)
			if kind == ResourceError {
				return true
			}
		}
	}
	return p.enterIf(opens, tok.line, cmd.opens)
}

func (p *parser) enterIf(opens bool, line int, t blockType) bool {
	if !opens {
		return false
	}
	return p.enter(line, t)
}

func (p *parser) enter(line int, t blockType) bool {
	if err := p.stack.Push(int(t)); err != nil {
		p.fail(line, ResourceError, "blocks nested too deeply", err)
		return true
	}
	p.ctx.set(t, true)
	return false
}

func (p *parser) leave(line int) {
	t := p.stack.Pop()
	if t == stack.Empty {
		p.report(line, ContextError, "'}' without a matching '{'")
		return
	}
	p.ctx.set(blockType(t), false)
}

func (p *parser) describeContext() string {
	if t := p.stack.Top(); t != stack.Empty {
		return blockType(t).String() + " block"
	}
	return "top level"
}
