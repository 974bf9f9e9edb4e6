package token

import (
	"tlog.app/go/tlog/tlwire"
)

type (
	// Kind is an instruction tag. The set is closed: the eight
	// instructions plus None for bytes that are not instructions.
	Kind int

	// Pos is a 1-based line:column source position.
	Pos struct {
		Line int
		Col  int
	}

	// Token is a single instruction as it appeared in the source.
	Token struct {
		Kind Kind
		Pos  Pos
	}
)

const (
	None Kind = iota
	MoveRight
	MoveLeft
	Increment
	Decrement
	Read
	Write
	LoopStart
	LoopEnd
)

// KindOf maps a source byte to its instruction kind.
// Everything outside the eight-glyph alphabet is None.
func KindOf(c byte) Kind {
	switch c {
	case '>':
		return MoveRight
	case '<':
		return MoveLeft
	case '+':
		return Increment
	case '-':
		return Decrement
	case ',':
		return Read
	case '.':
		return Write
	case '[':
		return LoopStart
	case ']':
		return LoopEnd
	default:
		return None
	}
}

// Tokenize converts source text into the instruction sequence.
// Non-instruction bytes only advance the position counters.
func Tokenize(text []byte) []Token {
	var res []Token

	line, col := 1, 0

	for _, c := range text {
		if c == '\n' {
			line++
			col = 0

			continue
		}

		col++

		k := KindOf(c)
		if k == None {
			continue
		}

		res = append(res, Token{Kind: k, Pos: Pos{Line: line, Col: col}})
	}

	return res
}

func (k Kind) String() string {
	switch k {
	case MoveRight:
		return ">"
	case MoveLeft:
		return "<"
	case Increment:
		return "+"
	case Decrement:
		return "-"
	case Read:
		return ","
	case Write:
		return "."
	case LoopStart:
		return "["
	case LoopEnd:
		return "]"
	default:
		return "?"
	}
}

func (p Pos) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)

	b = e.AppendKeyInt(b, "line", p.Line)
	b = e.AppendKeyInt(b, "col", p.Col)

	return b
}
