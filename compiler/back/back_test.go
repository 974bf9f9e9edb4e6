package back

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scowcron/sateko/compiler/front"
	"github.com/scowcron/sateko/compiler/ir"
	"github.com/scowcron/sateko/compiler/token"
)

func program(t *testing.T, src string) *ir.Program {
	t.Helper()

	p, err := front.Resolve(context.Background(), token.Tokenize([]byte(src)))
	require.NoError(t, err)

	return p
}

func TestSmoke(t *testing.T) {
	p := program(t, ",[>+<-]>.")

	ctx := context.Background()

	obj, err := New().Compile(ctx, nil, "smoke.b", p)
	if err != nil {
		t.Errorf("compile program: %v", err)
	}

	t.Logf("result:\n%s", obj)
}

func TestModuleShape(t *testing.T) {
	obj, err := New().Compile(context.Background(), nil, "shape.b", program(t, "+."))
	require.NoError(t, err)

	s := string(obj)

	assert.Contains(t, s, `source_filename = "shape.b"`)
	assert.Contains(t, s, "@tape = internal global [30000 x i8] zeroinitializer")
	assert.Contains(t, s, "@ptr = internal global i64 0")
	assert.Contains(t, s, "declare i32 @getchar()")
	assert.Contains(t, s, "declare i32 @putchar(i32)")
	assert.Contains(t, s, "define i32 @main() {")
	assert.Contains(t, s, "call i32 @putchar(i32 ")
	assert.True(t, strings.HasSuffix(s, "  ret i32 0\n}\n"))
}

func TestLoopBlocks(t *testing.T) {
	obj, err := New().Compile(context.Background(), nil, "loop.b", program(t, "[-]"))
	require.NoError(t, err)

	s := string(obj)

	// one cond/body/end triple per pair, named after the LoopStart index
	assert.Contains(t, s, "l0.cond:")
	assert.Contains(t, s, "l0.body:")
	assert.Contains(t, s, "l0.end:")
	assert.Contains(t, s, "icmp eq i8 ")

	// exit is referenced by the condition branch, before the body
	cond := strings.Index(s, "label %l0.end")
	body := strings.Index(s, "l0.body:")
	require.GreaterOrEqual(t, cond, 0)
	assert.Less(t, cond, body)

	// no dangling labels: every referenced block is defined
	for _, l := range []string{"l0.cond", "l0.body", "l0.end"} {
		assert.Contains(t, s, "\n"+l+":\n")
	}
}

func TestNestedLoopBlocks(t *testing.T) {
	obj, err := New().Compile(context.Background(), nil, "nest.b", program(t, "+[+[-]-]"))
	require.NoError(t, err)

	s := string(obj)

	// pairs are (1,7) and (3,5)
	for _, l := range []string{"l1.cond:", "l1.body:", "l1.end:", "l3.cond:", "l3.body:", "l3.end:"} {
		assert.Contains(t, s, l)
	}
}

func TestIdempotent(t *testing.T) {
	p := program(t, "++[>,.<-]")

	ctx := context.Background()
	c := New()

	a, err := c.Compile(ctx, nil, "twice.b", p)
	require.NoError(t, err)

	b, err := c.Compile(ctx, nil, "twice.b", p)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestTapeLen(t *testing.T) {
	c := &Compiler{TapeLen: 5}

	obj, err := c.Compile(context.Background(), nil, "tiny.b", program(t, ">"))
	require.NoError(t, err)

	s := string(obj)

	assert.Contains(t, s, "[5 x i8] zeroinitializer")
	assert.Contains(t, s, "icmp eq i64 ")
	assert.NotContains(t, s, "30000")
}

func TestAppendsToBuffer(t *testing.T) {
	pre := []byte("; prefix\n")

	obj, err := New().Compile(context.Background(), pre, "app.b", program(t, "+"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(obj), "; prefix\n"))
}
