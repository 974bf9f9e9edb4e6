package back

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/scowcron/sateko/compiler/ir"
	"github.com/scowcron/sateko/compiler/token"
)

type (
	// Compiler translates a program into an LLVM IR module.
	Compiler struct {
		TapeLen int
	}

	gen struct {
		b []byte

		tape int
		val  int // ssa name counter
	}
)

const DefaultTapeLen = 30_000

func New() *Compiler {
	return &Compiler{TapeLen: DefaultTapeLen}
}

// Compile appends a complete LLVM IR module implementing p to b and
// returns the extended buffer. Emission is deterministic: the same
// program produces the same bytes.
//
// The module carries the tape as a zero-initialized global byte array
// and the tape pointer as a global i64. Moves wrap at the tape ends,
// cells wrap mod 256, reading at end of input stores 0. The result is
// meant to be handed to llc or clang as is.
func (c *Compiler) Compile(ctx context.Context, b []byte, name string, p *ir.Program) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile program", "name", name, "ops", p.Len())
	defer tr.Finish("err", &err)

	tape := c.TapeLen
	if tape <= 0 {
		tape = DefaultTapeLen
	}

	g := &gen{b: b, tape: tape}

	g.b = fmt.Appendf(g.b, `; ModuleID = '%s'
source_filename = "%s"

@tape = internal global [%d x i8] zeroinitializer
@ptr = internal global i64 0

declare i32 @getchar()
declare i32 @putchar(i32)

define i32 @main() {
entry:
`, name, name, tape)

	for i := 0; i < p.Len(); i++ {
		t := p.Code[i]

		switch t.Kind {
		case token.MoveRight:
			g.move(1)
		case token.MoveLeft:
			g.move(-1)
		case token.Increment:
			g.addCell(1)
		case token.Decrement:
			g.addCell(-1)
		case token.Read:
			g.read()
		case token.Write:
			g.write()
		case token.LoopStart:
			tlog.V("loops").Printw("loop", "start", i, "end", p.Match(i), "pos", t.Pos, "from", loc.Caller(0))

			g.loopStart(i)
		case token.LoopEnd:
			g.loopEnd(p.Match(i))
		default:
			return nil, errors.New("unexpected instruction: %v (op %d)", t.Kind, i)
		}
	}

	g.b = append(g.b, `  ret i32 0
}
`...)

	return g.b, nil
}

// next allocates an ssa value name.
func (g *gen) next() string {
	g.val++

	return fmt.Sprintf("%%v%d", g.val)
}

// cell emits the address of the currently addressed cell.
func (g *gen) cell() string {
	p := g.next()
	g.b = fmt.Appendf(g.b, "  %s = load i64, ptr @ptr\n", p)

	q := g.next()
	g.b = fmt.Appendf(g.b, "  %s = getelementptr inbounds [%d x i8], ptr @tape, i64 0, i64 %s\n", q, g.tape, p)

	return q
}

// move shifts the tape pointer by d, wrapping at either tape end.
// Branchless: the wrap is a select, not a basic block.
func (g *gen) move(d int) {
	p := g.next()
	g.b = fmt.Appendf(g.b, "  %s = load i64, ptr @ptr\n", p)

	var n string

	if d > 0 {
		q := g.next()
		g.b = fmt.Appendf(g.b, "  %s = add i64 %s, 1\n", q, p)

		c := g.next()
		g.b = fmt.Appendf(g.b, "  %s = icmp eq i64 %s, %d\n", c, q, g.tape)

		n = g.next()
		g.b = fmt.Appendf(g.b, "  %s = select i1 %s, i64 0, i64 %s\n", n, c, q)
	} else {
		c := g.next()
		g.b = fmt.Appendf(g.b, "  %s = icmp eq i64 %s, 0\n", c, p)

		q := g.next()
		g.b = fmt.Appendf(g.b, "  %s = select i1 %s, i64 %d, i64 %s\n", q, c, g.tape, p)

		n = g.next()
		g.b = fmt.Appendf(g.b, "  %s = add i64 %s, -1\n", n, q)
	}

	g.b = fmt.Appendf(g.b, "  store i64 %s, ptr @ptr\n", n)
}

// addCell adds d to the current cell. i8 arithmetic wraps mod 256 on
// its own.
func (g *gen) addCell(d int) {
	q := g.cell()

	v := g.next()
	g.b = fmt.Appendf(g.b, "  %s = load i8, ptr %s\n", v, q)

	w := g.next()
	g.b = fmt.Appendf(g.b, "  %s = add i8 %s, %d\n", w, v, d)

	g.b = fmt.Appendf(g.b, "  store i8 %s, ptr %s\n", w, q)
}

func (g *gen) read() {
	r := g.next()
	g.b = fmt.Appendf(g.b, "  %s = call i32 @getchar()\n", r)

	c := g.next()
	g.b = fmt.Appendf(g.b, "  %s = icmp slt i32 %s, 0\n", c, r)

	s := g.next()
	g.b = fmt.Appendf(g.b, "  %s = select i1 %s, i32 0, i32 %s\n", s, c, r)

	v := g.next()
	g.b = fmt.Appendf(g.b, "  %s = trunc i32 %s to i8\n", v, s)

	q := g.cell()
	g.b = fmt.Appendf(g.b, "  store i8 %s, ptr %s\n", v, q)
}

func (g *gen) write() {
	q := g.cell()

	v := g.next()
	g.b = fmt.Appendf(g.b, "  %s = load i8, ptr %s\n", v, q)

	x := g.next()
	g.b = fmt.Appendf(g.b, "  %s = zext i8 %s to i32\n", x, v)

	r := g.next()
	g.b = fmt.Appendf(g.b, "  %s = call i32 @putchar(i32 %s)\n", r, x)
}

// loopStart opens the loop whose LoopStart sits at index s. The
// cond/body/end labels are all derived from s, so the exit block is
// referenced here, before a single body instruction exists. No
// back-patching.
func (g *gen) loopStart(s int) {
	g.b = fmt.Appendf(g.b, "  br label %%l%d.cond\nl%d.cond:\n", s, s)

	q := g.cell()

	v := g.next()
	g.b = fmt.Appendf(g.b, "  %s = load i8, ptr %s\n", v, q)

	c := g.next()
	g.b = fmt.Appendf(g.b, "  %s = icmp eq i8 %s, 0\n", c, v)

	g.b = fmt.Appendf(g.b, "  br i1 %s, label %%l%d.end, label %%l%d.body\nl%d.body:\n", c, s, s, s)
}

// loopEnd closes the loop opened by the LoopStart at index s: jump
// back to the condition check, then open the post-loop block.
func (g *gen) loopEnd(s int) {
	g.b = fmt.Appendf(g.b, "  br label %%l%d.cond\nl%d.end:\n", s, s)
}
