package ir

import (
	"github.com/scowcron/sateko/compiler/token"
)

type (
	// Program is the validated program model: the instruction
	// sequence plus the loop pairing resolved over it.
	//
	// Jump is symmetric. For a LoopStart at index i, Jump[i] is the
	// index of the matching LoopEnd and Jump[Jump[i]] == i. For any
	// other instruction Jump[i] is -1. Pairs nest properly, they
	// never interleave.
	//
	// Programs are built by front.Resolve and not mutated afterwards.
	Program struct {
		Code []token.Token
		Jump []int
	}
)

func (p *Program) Len() int { return len(p.Code) }

// Match returns the paired bracket index for a loop instruction.
func (p *Program) Match(i int) int { return p.Jump[i] }
