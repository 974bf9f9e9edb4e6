package exec

import (
	"context"
	"fmt"
	"io"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/scowcron/sateko/compiler/ir"
	"github.com/scowcron/sateko/compiler/token"
)

type (
	// Machine executes a program against its own tape.
	Machine struct {
		Tape []byte
		Pos  int
	}

	// TapeBoundsError reports a tape pointer move past either end of
	// the tape. Index is the failing instruction, Cell is where the
	// pointer tried to go.
	TapeBoundsError struct {
		Index int
		Pos   token.Pos
		Cell  int
	}
)

const DefaultTapeLen = 30_000

func NewMachine(cells int) *Machine {
	if cells <= 0 {
		cells = DefaultTapeLen
	}

	return &Machine{Tape: make([]byte, cells)}
}

// Run executes p from the first instruction until one past the last.
// The only state besides the tape is the program counter and the tape
// pointer. Reading past end of input stores 0 and keeps going, moving
// the pointer off the tape is fatal and leaves the tape as is.
func (m *Machine) Run(ctx context.Context, p *ir.Program, in io.Reader, out io.Writer) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "exec: run program", "ops", p.Len(), "tape", len(m.Tape))
	defer tr.Finish("err", &err)

	var buf [1]byte

	for pc := 0; pc < p.Len(); pc++ {
		t := p.Code[pc]

		tlog.V("step").Printw("step", "pc", pc, "op", t.Kind, "ptr", m.Pos, "cell", m.Tape[m.Pos])

		switch t.Kind {
		case token.MoveRight:
			if m.Pos+1 == len(m.Tape) {
				return TapeBoundsError{Index: pc, Pos: t.Pos, Cell: m.Pos + 1}
			}

			m.Pos++
		case token.MoveLeft:
			if m.Pos == 0 {
				return TapeBoundsError{Index: pc, Pos: t.Pos, Cell: -1}
			}

			m.Pos--
		case token.Increment:
			m.Tape[m.Pos]++
		case token.Decrement:
			m.Tape[m.Pos]--
		case token.Read:
			_, e := io.ReadFull(in, buf[:])
			switch e {
			case nil:
				m.Tape[m.Pos] = buf[0]
			case io.EOF, io.ErrUnexpectedEOF:
				m.Tape[m.Pos] = 0
			default:
				return errors.Wrap(e, "read: op %d at %d:%d", pc, t.Pos.Line, t.Pos.Col)
			}
		case token.Write:
			buf[0] = m.Tape[m.Pos]

			_, e := out.Write(buf[:])
			if e != nil {
				return errors.Wrap(e, "write: op %d at %d:%d", pc, t.Pos.Line, t.Pos.Col)
			}
		case token.LoopStart:
			if m.Tape[m.Pos] == 0 {
				pc = p.Match(pc) // resume after the LoopEnd
			}
		case token.LoopEnd:
			pc = p.Match(pc) - 1 // land on the LoopStart, re-check the condition
		default:
			return errors.New("unexpected instruction: %v (op %d)", t.Kind, pc)
		}
	}

	return nil
}

func (e TapeBoundsError) Error() string {
	return fmt.Sprintf("tape pointer out of bounds: %d (op %d at %d:%d)", e.Cell, e.Index, e.Pos.Line, e.Pos.Col)
}
