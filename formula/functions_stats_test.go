package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAverageAndAverageA(t *testing.T) {
	assert.Equal(t, 2.0, eval(t, "=AVERAGE(1,2,3)").Num)
	assert.Equal(t, 2.0, eval(t, "=AVERAGEA(1,2,3)").Num)
}

func TestAverageOfEmptySetIsDiv0(t *testing.T) {
	dc := newMapDataContext()
	v := evalWith(t, dc, "=AVERAGE(A1:A1)")
	assert.True(t, v.IsError())
	assert.Equal(t, ErrDiv0, v.ErrKnd)
}

func TestAverageIf(t *testing.T) {
	dc := newMapDataContext()
	dc.Set("Sheet1", 0, 0, NumberValue(1))
	dc.Set("Sheet1", 1, 0, NumberValue(2))
	dc.Set("Sheet1", 2, 0, NumberValue(3))
	v := evalWith(t, dc, `=AVERAGEIF(A1:A3,">1")`)
	assert.Equal(t, 2.5, v.Num)
}

func TestCountCountACountBlank(t *testing.T) {
	dc := newMapDataContext()
	dc.Set("Sheet1", 0, 0, NumberValue(1))
	dc.Set("Sheet1", 1, 0, StringValue("x"))
	v := evalWith(t, dc, "=COUNT(A1:A3)")
	assert.Equal(t, 1.0, v.Num)
	v = evalWith(t, dc, "=COUNTA(A1:A3)")
	assert.Equal(t, 2.0, v.Num)
	v = evalWith(t, dc, "=COUNTBLANK(A1:A3)")
	assert.Equal(t, 1.0, v.Num)
}

func TestMaxMinLargeSmall(t *testing.T) {
	assert.Equal(t, 9.0, eval(t, "=MAX(3,9,1)").Num)
	assert.Equal(t, 1.0, eval(t, "=MIN(3,9,1)").Num)
	assert.Equal(t, 9.0, eval(t, "=LARGE({3,9,1},1)").Num)
	assert.Equal(t, 1.0, eval(t, "=SMALL({3,9,1},1)").Num)
}

func TestMedianAndMode(t *testing.T) {
	assert.Equal(t, 3.0, eval(t, "=MEDIAN(1,2,3,4,5)").Num)
	assert.Equal(t, 2.5, eval(t, "=MEDIAN(1,2,3,4)").Num)
	assert.Equal(t, 2.0, eval(t, "=MODE(1,2,2,3)").Num)
}

func TestModeWithNoRepeatsIsNA(t *testing.T) {
	v := eval(t, "=MODE(1,2,3)")
	assert.True(t, v.IsError())
	assert.Equal(t, ErrNA, v.ErrKnd)
}

func TestStdevAndVar(t *testing.T) {
	v := eval(t, "=VAR(2,4,4,4,5,5,7,9)")
	assert.InDelta(t, 4.571428571, v.Num, 1e-6)
	v = eval(t, "=STDEV(2,4,4,4,5,5,7,9)")
	assert.InDelta(t, 2.138089935, v.Num, 1e-6)
}

func TestRankAscendingAndDescending(t *testing.T) {
	assert.Equal(t, 1.0, eval(t, "=RANK(9,{3,9,1})").Num)
	assert.Equal(t, 3.0, eval(t, "=RANK(9,{3,9,1},TRUE)").Num)
}

func TestPercentileAndQuartile(t *testing.T) {
	v := eval(t, "=PERCENTILE({1,2,3,4},0.5)")
	assert.InDelta(t, 2.5, v.Num, 1e-9)
	v = eval(t, "=QUARTILE({1,2,3,4},2)")
	assert.InDelta(t, 2.5, v.Num, 1e-9)
}

func TestGeomeanAndHarmean(t *testing.T) {
	v := eval(t, "=GEOMEAN(1,3,9)")
	assert.InDelta(t, 3.0, v.Num, 1e-9)
	v = eval(t, "=HARMEAN(1,2,4)")
	assert.InDelta(t, 1.7142857, v.Num, 1e-6)
}

func TestCorrelAndSlopeAndIntercept(t *testing.T) {
	v := eval(t, "=CORREL({1,2,3},{2,4,6})")
	assert.InDelta(t, 1.0, v.Num, 1e-9)
	v = eval(t, "=SLOPE({2,4,6},{1,2,3})")
	assert.InDelta(t, 2.0, v.Num, 1e-9)
	v = eval(t, "=INTERCEPT({2,4,6},{1,2,3})")
	assert.InDelta(t, 0.0, v.Num, 1e-9)
}

func TestFrequencyBuckets(t *testing.T) {
	v := eval(t, "=FREQUENCY({1,5,10,15},{5,10})")
	assert.True(t, v.IsArray())
	assert.Equal(t, 2.0, v.Arr.Rows[0][0].Num)
	assert.Equal(t, 1.0, v.Arr.Rows[1][0].Num)
	assert.Equal(t, 1.0, v.Arr.Rows[2][0].Num)
}

func TestNormDistCumulativeAtMean(t *testing.T) {
	v := eval(t, "=NORM.DIST(0,0,1,TRUE)")
	assert.InDelta(t, 0.5, v.Num, 1e-6)
}

func TestNormInvInvertsNormDist(t *testing.T) {
	v := eval(t, "=NORM.INV(0.5,0,1)")
	assert.InDelta(t, 0.0, v.Num, 1e-4)
}
