package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAndOrXorNot(t *testing.T) {
	assert.True(t, eval(t, "=AND(TRUE,TRUE,1)").Bool)
	assert.False(t, eval(t, "=AND(TRUE,FALSE)").Bool)
	assert.True(t, eval(t, "=OR(FALSE,FALSE,TRUE)").Bool)
	assert.False(t, eval(t, "=OR(FALSE,FALSE)").Bool)
	assert.True(t, eval(t, "=XOR(TRUE,FALSE,FALSE)").Bool)
	assert.False(t, eval(t, "=XOR(TRUE,TRUE)").Bool)
	assert.False(t, eval(t, "=NOT(TRUE)").Bool)
}

func TestIsBlankIsNumberIsTextIsLogical(t *testing.T) {
	dc := newMapDataContext()
	assert.True(t, evalWith(t, dc, "=ISBLANK(A1)").Bool)
	assert.True(t, eval(t, `=ISNUMBER(5)`).Bool)
	assert.False(t, eval(t, `=ISNUMBER("5")`).Bool)
	assert.True(t, eval(t, `=ISTEXT("hi")`).Bool)
	assert.True(t, eval(t, "=ISLOGICAL(TRUE)").Bool)
}

func TestIsEvenIsOdd(t *testing.T) {
	assert.True(t, eval(t, "=ISEVEN(4)").Bool)
	assert.False(t, eval(t, "=ISEVEN(3)").Bool)
	assert.True(t, eval(t, "=ISODD(3)").Bool)
}

// ISERROR, ISNA, and ERROR.TYPE must observe the error rather than have it
// propagate past them.
func TestIsErrorTrapsRatherThanPropagates(t *testing.T) {
	v := eval(t, "=ISERROR(1/0)")
	assert.False(t, v.IsError())
	assert.True(t, v.Bool)

	assert.False(t, eval(t, "=ISERROR(5)").Bool)
}

func TestIsNaTrapsNaSpecifically(t *testing.T) {
	v := eval(t, "=ISNA(NA())")
	assert.False(t, v.IsError())
	assert.True(t, v.Bool)

	assert.False(t, eval(t, "=ISNA(1/0)").Bool)
	assert.False(t, eval(t, "=ISNA(5)").Bool)
}

func TestErrorTypeMapsEachErrorKind(t *testing.T) {
	v := eval(t, "=ERROR.TYPE(1/0)")
	assert.False(t, v.IsError())
	assert.Equal(t, float64(errorTypeNumber[ErrDiv0]), v.Num)

	v = eval(t, "=ERROR.TYPE(NA())")
	assert.Equal(t, float64(errorTypeNumber[ErrNA]), v.Num)
}

func TestErrorTypeOnNonErrorIsNA(t *testing.T) {
	v := eval(t, "=ERROR.TYPE(5)")
	assert.True(t, v.IsError())
	assert.Equal(t, ErrNA, v.ErrKnd)
}
