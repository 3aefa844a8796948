package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserValidFormulas(t *testing.T) {
	valid := []string{
		"=1+2",
		"=A1",
		"=SUM(A1:A10)",
		"=Sheet2!A1",
		"=Sheet2!A1:B2",
		"=SUM(Sheet2!A1:A10)",
		"=Sheet2!A1 + Sheet3!B1",
		"=SUM(A1:A1)",
		"=2^3^2",
		"=-A1",
		"=A1%",
		`="hello" & "world"`,
		"={1,2;3,4}",
		"=IF(A1>0, 1, -1)",
		"=LAMBDA(x, x*2)(5)",
		"=LET(x, 5, x*2)",
		"=#VALUE!",
		"=#N/A",
	}
	for _, formula := range valid {
		t.Run(formula, func(t *testing.T) {
			_, err := Parse(formula)
			assert.NoError(t, err)
		})
	}
}

func TestParserInvalidFormulas(t *testing.T) {
	invalid := []string{
		"=",
		"=SUM(",
		"=A1:",
		`="hello`,
		"=1+",
		"=(1+2",
	}
	for _, formula := range invalid {
		t.Run(formula, func(t *testing.T) {
			_, err := Parse(formula)
			assert.Error(t, err)
		})
	}
}

func TestParserExponentiationIsRightAssociative(t *testing.T) {
	tree, err := Parse("=2^3^2")
	require.NoError(t, err)
	bin, ok := tree.(*BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "^", bin.Op)
	left, ok := bin.Left.(*NumberLiteral)
	require.True(t, ok)
	assert.Equal(t, 2.0, left.Value)
	right, ok := bin.Right.(*BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "^", right.Op)
}

func TestParserPrecedenceLadder(t *testing.T) {
	// multiplication binds tighter than addition.
	tree, err := Parse("=1+2*3")
	require.NoError(t, err)
	bin, ok := tree.(*BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	_, ok = bin.Right.(*BinaryOp)
	require.True(t, ok)
}

func TestParserCellRefResolution(t *testing.T) {
	tree, err := Parse("=A1")
	require.NoError(t, err)
	ref, ok := tree.(*CellRef)
	require.True(t, ok)
	assert.True(t, ref.Valid)
	assert.Equal(t, 0, ref.Address.Row)
	assert.Equal(t, 0, ref.Address.Column)
}

func TestParserBareNameIsInvalidCellRef(t *testing.T) {
	tree, err := Parse("=x")
	require.NoError(t, err)
	ref, ok := tree.(*CellRef)
	require.True(t, ok)
	assert.False(t, ref.Valid)
}

func TestParserFunctionCallArguments(t *testing.T) {
	tree, err := Parse("=SUM(A1,B1,2)")
	require.NoError(t, err)
	call, ok := tree.(*FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "SUM", call.Name)
	assert.Len(t, call.Args, 3)
}
