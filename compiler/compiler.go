package compiler

import (
	"context"
	"io"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/scowcron/sateko/compiler/back"
	"github.com/scowcron/sateko/compiler/exec"
	"github.com/scowcron/sateko/compiler/front"
	"github.com/scowcron/sateko/compiler/ir"
	"github.com/scowcron/sateko/compiler/token"
)

func ParseFile(ctx context.Context, name string) (*ir.Program, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Parse(ctx, text)
}

// Parse runs the front end: lex the text and resolve loop pairing.
func Parse(ctx context.Context, text []byte) (*ir.Program, error) {
	ts := token.Tokenize(text)

	tlog.SpanFromContext(ctx).Printw("tokenized", "bytes", len(text), "ops", len(ts))

	p, err := front.Resolve(ctx, ts)
	if err != nil {
		return nil, errors.Wrap(err, "resolve loops")
	}

	return p, nil
}

func CompileFile(ctx context.Context, name string, tape int) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, tape)
}

// Compile translates source text into an LLVM IR module.
// tape is the number of cells, 0 means the default.
func Compile(ctx context.Context, name string, text []byte, tape int) (obj []byte, err error) {
	p, err := Parse(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	c := back.New()
	if tape > 0 {
		c.TapeLen = tape
	}

	obj, err = c.Compile(ctx, nil, name, p)
	if err != nil {
		return nil, errors.Wrap(err, "generate code")
	}

	return obj, nil
}

func RunFile(ctx context.Context, name string, tape int, in io.Reader, out io.Writer) (err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Run(ctx, text, tape, in, out)
}

// Run interprets source text against a fresh tape and the given
// streams. tape is the number of cells, 0 means the default.
func Run(ctx context.Context, text []byte, tape int, in io.Reader, out io.Writer) (err error) {
	p, err := Parse(ctx, text)
	if err != nil {
		return errors.Wrap(err, "parse text")
	}

	m := exec.NewMachine(tape)

	err = m.Run(ctx, p, in, out)
	if err != nil {
		return errors.Wrap(err, "execute")
	}

	return nil
}
