package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumHarvestsDirectNumbersAndNumericText(t *testing.T) {
	v := eval(t, `=SUM(1,2,"3")`)
	assert.Equal(t, 6.0, v.Num)
}

func TestSumIfMatchesCriteria(t *testing.T) {
	dc := newMapDataContext()
	dc.Set("Sheet1", 0, 0, NumberValue(1))
	dc.Set("Sheet1", 1, 0, NumberValue(2))
	dc.Set("Sheet1", 2, 0, NumberValue(3))
	v := evalWith(t, dc, "=SUMIF(A1:A3,\">1\")")
	assert.Equal(t, 5.0, v.Num)
}

func TestSumIfsAllCriteriaMustMatch(t *testing.T) {
	dc := newMapDataContext()
	dc.Set("Sheet1", 0, 0, NumberValue(1))
	dc.Set("Sheet1", 0, 1, StringValue("x"))
	dc.Set("Sheet1", 1, 0, NumberValue(2))
	dc.Set("Sheet1", 1, 1, StringValue("y"))
	v := evalWith(t, dc, `=SUMIFS(A1:A2,B1:B2,"x")`)
	assert.Equal(t, 1.0, v.Num)
}

func TestSumProductMultipliesPairwise(t *testing.T) {
	v := eval(t, "=SUMPRODUCT({1,2,3},{4,5,6})")
	assert.Equal(t, 32.0, v.Num)
}

func TestProductOfNoArgumentsIsZero(t *testing.T) {
	v := eval(t, "=PRODUCT()")
	assert.Equal(t, 0.0, v.Num)
}

func TestSqrtOfNegativeIsError(t *testing.T) {
	v := eval(t, "=SQRT(-1)")
	assert.True(t, v.IsError())
	assert.Equal(t, ErrNum, v.ErrKnd)
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 1.0, eval(t, "=ROUND(0.5,0)").Num)
	assert.Equal(t, -1.0, eval(t, "=ROUND(-0.5,0)").Num)
	assert.Equal(t, 1.25, eval(t, "=ROUND(1.2549,2)").Num)
}

func TestModSignFollowsDivisor(t *testing.T) {
	assert.Equal(t, 1.0, eval(t, "=MOD(7,3)").Num)
	assert.Equal(t, 2.0, eval(t, "=MOD(-7,3)").Num)
}

func TestModByZeroIsDivError(t *testing.T) {
	v := eval(t, "=MOD(1,0)")
	assert.True(t, v.IsError())
	assert.Equal(t, ErrDiv0, v.ErrKnd)
}

func TestGcdLcm(t *testing.T) {
	assert.Equal(t, 6.0, eval(t, "=GCD(12,18)").Num)
	assert.Equal(t, 36.0, eval(t, "=LCM(12,18)").Num)
}

func TestFactorialAndCombinations(t *testing.T) {
	assert.Equal(t, 120.0, eval(t, "=FACT(5)").Num)
	assert.Equal(t, 10.0, eval(t, "=COMBIN(5,2)").Num)
	assert.Equal(t, 20.0, eval(t, "=PERMUT(5,2)").Num)
}

func TestTrigIdentities(t *testing.T) {
	v := eval(t, "=SIN(0)")
	assert.InDelta(t, 0.0, v.Num, 1e-12)
	v = eval(t, "=COS(0)")
	assert.InDelta(t, 1.0, v.Num, 1e-12)
}

func TestPowerAndExp(t *testing.T) {
	assert.Equal(t, 8.0, eval(t, "=POWER(2,3)").Num)
	assert.InDelta(t, 1.0, eval(t, "=EXP(0)").Num, 1e-12)
}
