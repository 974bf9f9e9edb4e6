package front

import (
	"context"
	"fmt"

	"tlog.app/go/tlog"

	"github.com/scowcron/sateko/compiler/ir"
	"github.com/scowcron/sateko/compiler/token"
)

type (
	// UnmatchedLoopEndError is a ] with no open loop to close.
	UnmatchedLoopEndError struct {
		Index int
		Pos   token.Pos
	}

	// UnmatchedLoopStartError is a [ still open at end of input.
	// With several loops open it is the innermost one.
	UnmatchedLoopStartError struct {
		Index int
		Pos   token.Pos
	}
)

// Resolve pairs every LoopStart with its LoopEnd and returns the
// validated program. Single left-to-right scan over the tokens with a
// stack of pending LoopStart indices, so pairs nest properly by
// construction.
func Resolve(ctx context.Context, tokens []token.Token) (*ir.Program, error) {
	jump := make([]int, len(tokens))

	var stack []int
	loops := 0

	for i, t := range tokens {
		switch t.Kind {
		case token.LoopStart:
			stack = append(stack, i)
		case token.LoopEnd:
			if len(stack) == 0 {
				return nil, UnmatchedLoopEndError{Index: i, Pos: t.Pos}
			}

			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			jump[s], jump[i] = i, s
			loops++
		default:
			jump[i] = -1
		}
	}

	if len(stack) != 0 {
		i := stack[len(stack)-1]

		return nil, UnmatchedLoopStartError{Index: i, Pos: tokens[i].Pos}
	}

	tlog.SpanFromContext(ctx).Printw("program resolved", "ops", len(tokens), "loops", loops)

	return &ir.Program{Code: tokens, Jump: jump}, nil
}

func (e UnmatchedLoopEndError) Error() string {
	return fmt.Sprintf("unopened loop: op %d at %d:%d", e.Index, e.Pos.Line, e.Pos.Col)
}

func (e UnmatchedLoopStartError) Error() string {
	return fmt.Sprintf("unclosed loop: op %d at %d:%d", e.Index, e.Pos.Line, e.Pos.Col)
}
