package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNumberCoercions(t *testing.T) {
	n, errv := toNumber(NumberValue(5))
	assert.False(t, errv.IsError())
	assert.Equal(t, 5.0, n)

	n, errv = toNumber(BoolValue(true))
	assert.False(t, errv.IsError())
	assert.Equal(t, 1.0, n)

	n, errv = toNumber(NullValue())
	assert.False(t, errv.IsError())
	assert.Equal(t, 0.0, n)

	n, errv = toNumber(StringValue("42"))
	assert.False(t, errv.IsError())
	assert.Equal(t, 42.0, n)

	n, errv = toNumber(StringValue("50%"))
	assert.False(t, errv.IsError())
	assert.Equal(t, 0.5, n)

	_, errv = toNumber(StringValue("abc"))
	assert.True(t, errv.IsError())
	assert.Equal(t, ErrValue, errv.ErrKnd)
}

func TestToBoolCoercions(t *testing.T) {
	b, errv := toBool(StringValue("TRUE"))
	assert.False(t, errv.IsError())
	assert.True(t, b)

	b, errv = toBool(NumberValue(0))
	assert.False(t, errv.IsError())
	assert.False(t, b)

	_, errv = toBool(StringValue("maybe"))
	assert.True(t, errv.IsError())
}

func TestApplyComparisonSameType(t *testing.T) {
	assert.True(t, applyComparison("<", NumberValue(1), NumberValue(2)).Bool)
	assert.True(t, applyComparison("<", BoolValue(false), BoolValue(true)).Bool)
	assert.True(t, applyComparison("<", StringValue("A"), StringValue("a")).Bool)
}

func TestApplyComparisonNullOrdering(t *testing.T) {
	assert.True(t, applyComparison("<", NullValue(), NumberValue(0)).Bool)
	assert.True(t, applyComparison("=", NullValue(), NullValue()).Bool)
	assert.True(t, applyComparison(">", NumberValue(-1), NullValue()).Bool)
}

func TestApplyComparisonMixedTypeFallsBackToLexicographic(t *testing.T) {
	// The number 9 vs the text "10": mixed-type compare is lower-cased string,
	// and "9" sorts after "10", so 9 < "10" is false.
	v := applyComparison("<", NumberValue(9), StringValue("10"))
	assert.False(t, v.Bool)
}

func TestApplyArithmeticDivisionByZero(t *testing.T) {
	v := applyArithmetic("/", NumberValue(1), NumberValue(0))
	assert.True(t, v.IsError())
	assert.Equal(t, ErrDiv0, v.ErrKnd)
}

func TestApplyBinaryOpConcatenation(t *testing.T) {
	v := applyBinaryOp("&", StringValue("a"), NumberValue(1))
	assert.Equal(t, "a1", v.Str)
}

func TestMatchCriteriaOperatorPrefix(t *testing.T) {
	assert.True(t, matchCriteria(NumberValue(5), StringValue(">3")))
	assert.False(t, matchCriteria(NumberValue(5), StringValue("<=3")))
}

func TestMatchCriteriaWildcard(t *testing.T) {
	assert.True(t, matchCriteria(StringValue("hello"), StringValue("h*o")))
	assert.False(t, matchCriteria(StringValue("hello"), StringValue("h?o")))
}

func TestMatchCriteriaPlainEquality(t *testing.T) {
	assert.True(t, matchCriteria(NumberValue(3), StringValue("3")))
	assert.True(t, matchCriteria(StringValue("Yes"), StringValue("yes")))
}

func TestHarvestNumbersDirectVsRangeRule(t *testing.T) {
	// a direct numeric-looking string counts; the same string inside a range
	// does not.
	nums, errv := harvestNumbers([]Value{StringValue("3"), ArrayValue([][]Value{{StringValue("4"), NumberValue(5)}})})
	assert.False(t, errv.IsError())
	assert.Equal(t, []float64{3, 5}, nums)
}

func TestHarvestNumbersPropagatesError(t *testing.T) {
	_, errv := harvestNumbers([]Value{NumberValue(1), ErrorValue(ErrNum, "boom")})
	assert.True(t, errv.IsError())
	assert.Equal(t, ErrNum, errv.ErrKnd)
}
