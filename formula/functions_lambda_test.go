package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapAppliesLambdaElementwise(t *testing.T) {
	v := eval(t, "=MAP({1;2;3},LAMBDA(x,x*2))")
	assert.True(t, v.IsArray())
	assert.Equal(t, 2.0, v.Arr.Rows[0][0].Num)
	assert.Equal(t, 4.0, v.Arr.Rows[1][0].Num)
	assert.Equal(t, 6.0, v.Arr.Rows[2][0].Num)
}

func TestMapOverTwoArrays(t *testing.T) {
	v := eval(t, "=MAP({1;2;3},{10;20;30},LAMBDA(x,y,x+y))")
	assert.Equal(t, 11.0, v.Arr.Rows[0][0].Num)
	assert.Equal(t, 33.0, v.Arr.Rows[2][0].Num)
}

func TestReduceAccumulates(t *testing.T) {
	v := eval(t, "=REDUCE(0,{1,2,3,4},LAMBDA(acc,x,acc+x))")
	assert.Equal(t, 10.0, v.Num)
}

func TestScanProducesRunningTotals(t *testing.T) {
	v := eval(t, "=SCAN(0,{1,2,3},LAMBDA(acc,x,acc+x))")
	assert.Equal(t, 1.0, v.Arr.Rows[0][0].Num)
	assert.Equal(t, 3.0, v.Arr.Rows[1][0].Num)
	assert.Equal(t, 6.0, v.Arr.Rows[2][0].Num)
}

func TestMakeArrayBuildsGridFromIndices(t *testing.T) {
	v := eval(t, "=MAKEARRAY(2,2,LAMBDA(r,c,r*10+c))")
	assert.Equal(t, 11.0, v.Arr.Rows[0][0].Num)
	assert.Equal(t, 12.0, v.Arr.Rows[0][1].Num)
	assert.Equal(t, 21.0, v.Arr.Rows[1][0].Num)
}

func TestByRowAndByColReduceEachLine(t *testing.T) {
	v := eval(t, "=BYROW({1,2;3,4},LAMBDA(row,SUM(row)))")
	assert.Equal(t, 3.0, v.Arr.Rows[0][0].Num)
	assert.Equal(t, 7.0, v.Arr.Rows[1][0].Num)

	v = eval(t, "=BYCOL({1,2;3,4},LAMBDA(col,SUM(col)))")
	assert.Equal(t, 4.0, v.Arr.Rows[0][0].Num)
	assert.Equal(t, 6.0, v.Arr.Rows[0][1].Num)
}

func TestIsOmittedInsideLambdaDetectsMissingArg(t *testing.T) {
	v := eval(t, "=LAMBDA(x,y,ISOMITTED(y))(1)")
	assert.True(t, v.Bool)
	v = eval(t, "=LAMBDA(x,y,ISOMITTED(y))(1,2)")
	assert.False(t, v.Bool)
}

func TestNonLambdaLastArgumentIsValueError(t *testing.T) {
	v := eval(t, "=MAP({1,2},5)")
	assert.True(t, v.IsError())
	assert.Equal(t, ErrValue, v.ErrKnd)
}
