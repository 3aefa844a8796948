package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareValuesOrdering(t *testing.T) {
	assert.Equal(t, -1, compareValues(NullValue(), NumberValue(0)))
	assert.Equal(t, 0, compareValues(NumberValue(5), NumberValue(5)))
	assert.Equal(t, -1, compareValues(NumberValue(1), NumberValue(2)))
	assert.True(t, compareValues(StringValue("a"), StringValue("b")) < 0)
}

func TestVlookupExactAndApproximate(t *testing.T) {
	dc := newMapDataContext()
	dc.Set("Sheet1", 0, 0, NumberValue(1))
	dc.Set("Sheet1", 0, 1, StringValue("one"))
	dc.Set("Sheet1", 1, 0, NumberValue(2))
	dc.Set("Sheet1", 1, 1, StringValue("two"))
	dc.Set("Sheet1", 2, 0, NumberValue(3))
	dc.Set("Sheet1", 2, 1, StringValue("three"))

	v := evalWith(t, dc, "=VLOOKUP(2,A1:B3,2,FALSE)")
	assert.Equal(t, "two", v.Str)

	v = evalWith(t, dc, "=VLOOKUP(2.5,A1:B3,2,TRUE)")
	assert.Equal(t, "two", v.Str)
}

func TestVlookupKeyNotFoundIsNA(t *testing.T) {
	dc := newMapDataContext()
	dc.Set("Sheet1", 0, 0, NumberValue(1))
	dc.Set("Sheet1", 0, 1, StringValue("one"))
	v := evalWith(t, dc, "=VLOOKUP(9,A1:B1,2,FALSE)")
	assert.True(t, v.IsError())
	assert.Equal(t, ErrNA, v.ErrKnd)
}

func TestIndexRowAndColumnAndWholeColumn(t *testing.T) {
	dc := newMapDataContext()
	dc.Set("Sheet1", 0, 0, NumberValue(1))
	dc.Set("Sheet1", 0, 1, NumberValue(2))
	dc.Set("Sheet1", 1, 0, NumberValue(3))
	dc.Set("Sheet1", 1, 1, NumberValue(4))

	v := evalWith(t, dc, "=INDEX(A1:B2,2,1)")
	assert.Equal(t, 3.0, v.Num)

	v = evalWith(t, dc, "=INDEX(A1:B2,0,2)")
	assert.True(t, v.IsArray())
	assert.Equal(t, 2.0, v.Arr.Rows[0][0].Num)
	assert.Equal(t, 4.0, v.Arr.Rows[1][0].Num)
}

func TestMatchExactAndOrdered(t *testing.T) {
	v := eval(t, `=MATCH(3,{1,2,3,4},0)`)
	assert.Equal(t, 3.0, v.Num)
	v = eval(t, `=MATCH(2.5,{1,2,3,4},1)`)
	assert.Equal(t, 2.0, v.Num)
}

func TestLookupVectorForm(t *testing.T) {
	v := eval(t, `=LOOKUP(2,{1,2,3},{"a","b","c"})`)
	assert.Equal(t, "b", v.Str)
}

func TestXlookupExactMatchAndDefault(t *testing.T) {
	v := eval(t, `=XLOOKUP(2,{1,2,3},{"a","b","c"})`)
	assert.Equal(t, "b", v.Str)

	v = eval(t, `=XLOOKUP(9,{1,2,3},{"a","b","c"},"missing")`)
	assert.Equal(t, "missing", v.Str)
}

func TestXlookupWildcardMatchMode(t *testing.T) {
	v := eval(t, `=XLOOKUP("b*",{"apple","banana","cherry"},{1,2,3},0,2)`)
	assert.Equal(t, 2.0, v.Num)
}

func TestXlookupSearchModeChoosesDuplicateDirection(t *testing.T) {
	v := eval(t, `=XLOOKUP(2,{1,2,2,3},{"first","second","third","fourth"},0,0,1)`)
	assert.Equal(t, "second", v.Str)

	v = eval(t, `=XLOOKUP(2,{1,2,2,3},{"first","second","third","fourth"},0,0,-1)`)
	assert.Equal(t, "third", v.Str)
}

func TestXlookupUnsupportedSearchModeIsValueError(t *testing.T) {
	v := eval(t, `=XLOOKUP(2,{1,2,3},{"a","b","c"},0,0,3)`)
	assert.True(t, v.IsError())
	assert.Equal(t, ErrValue, v.ErrKnd)
}

func TestRowsAndColumns(t *testing.T) {
	dc := newMapDataContext()
	dc.Set("Sheet1", 0, 0, NumberValue(1))
	dc.Set("Sheet1", 1, 0, NumberValue(2))
	v := evalWith(t, dc, "=ROWS(A1:A2)")
	assert.Equal(t, 2.0, v.Num)
	v = evalWith(t, dc, "=COLUMNS(A1:B1)")
	assert.Equal(t, 2.0, v.Num)
}

func TestAddressBuildsA1Reference(t *testing.T) {
	v := eval(t, "=ADDRESS(1,1)")
	assert.Equal(t, "$A$1", v.Str)
	v = eval(t, "=ADDRESS(1,1,4)")
	assert.Equal(t, "A1", v.Str)
}

func TestIndirectResolvesCell(t *testing.T) {
	dc := newMapDataContext()
	dc.Set("Sheet1", 0, 0, NumberValue(42))
	v := evalWith(t, dc, `=INDIRECT("A1")`)
	assert.Equal(t, 42.0, v.Num)
}
