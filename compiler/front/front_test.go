package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scowcron/sateko/compiler/ir"
	"github.com/scowcron/sateko/compiler/token"
)

func resolve(t *testing.T, src string) (*ir.Program, error) {
	t.Helper()

	return Resolve(context.Background(), token.Tokenize([]byte(src)))
}

func TestEmpty(t *testing.T) {
	p, err := resolve(t, "")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
}

func TestScalar(t *testing.T) {
	p, err := resolve(t, "><+-,.")
	require.NoError(t, err)

	assert.Equal(t, []int{-1, -1, -1, -1, -1, -1}, p.Jump)
}

func TestEmptyLoop(t *testing.T) {
	p, err := resolve(t, "[]")
	require.NoError(t, err)

	assert.Equal(t, []int{1, 0}, p.Jump)
}

func TestNestedLoop(t *testing.T) {
	p, err := resolve(t, "+[+[-]-]")
	require.NoError(t, err)

	assert.Equal(t, []int{-1, 7, -1, 5, -1, 3, -1, 1}, p.Jump)
}

func TestSiblingLoops(t *testing.T) {
	p, err := resolve(t, "[[][]]")
	require.NoError(t, err)

	assert.Equal(t, []int{5, 2, 1, 4, 3, 0}, p.Jump)

	// every start maps forward, nothing interleaves
	for i, j := range p.Jump {
		if p.Code[i].Kind == token.LoopStart {
			assert.Greater(t, j, i)
			assert.Equal(t, i, p.Jump[j])
		}
	}
}

func TestUnopenedLoop(t *testing.T) {
	_, err := resolve(t, "]")
	assert.Equal(t, UnmatchedLoopEndError{Index: 0, Pos: token.Pos{Line: 1, Col: 1}}, err)

	_, err = resolve(t, "+-]")
	assert.Equal(t, UnmatchedLoopEndError{Index: 2, Pos: token.Pos{Line: 1, Col: 3}}, err)
}

func TestUnclosedLoop(t *testing.T) {
	_, err := resolve(t, "[")
	assert.Equal(t, UnmatchedLoopStartError{Index: 0, Pos: token.Pos{Line: 1, Col: 1}}, err)

	// the innermost open loop is the one reported
	_, err = resolve(t, "[[")
	assert.Equal(t, UnmatchedLoopStartError{Index: 1, Pos: token.Pos{Line: 1, Col: 2}}, err)
}

func TestErrorMessages(t *testing.T) {
	_, err := resolve(t, "]")
	assert.EqualError(t, err, "unopened loop: op 0 at 1:1")

	_, err = resolve(t, "[")
	assert.EqualError(t, err, "unclosed loop: op 0 at 1:1")
}
