package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateProducesExpectedSerial(t *testing.T) {
	// 1900-01-01 is serial 1 under this module's epoch.
	v := eval(t, "=DATE(1900,1,1)")
	assert.Equal(t, 1.0, v.Num)
}

func TestDateComponents(t *testing.T) {
	assert.Equal(t, 2024.0, eval(t, "=YEAR(DATE(2024,3,15))").Num)
	assert.Equal(t, 3.0, eval(t, "=MONTH(DATE(2024,3,15))").Num)
	assert.Equal(t, 15.0, eval(t, "=DAY(DATE(2024,3,15))").Num)
}

func TestWeekdayDefaultMode(t *testing.T) {
	// 2024-03-15 is a Friday.
	v := eval(t, "=WEEKDAY(DATE(2024,3,15))")
	assert.Equal(t, 6.0, v.Num)
}

func TestEomonthAndEdate(t *testing.T) {
	v := eval(t, "=EOMONTH(DATE(2024,2,10),0)")
	assert.Equal(t, eval(t, "=DATE(2024,2,29)").Num, v.Num)

	v = eval(t, "=EDATE(DATE(2024,1,31),1)")
	assert.Equal(t, eval(t, "=DATE(2024,2,29)").Num, v.Num)
}

func TestDatedifUnits(t *testing.T) {
	v := eval(t, `=DATEDIF(DATE(2020,1,1),DATE(2023,6,15),"Y")`)
	assert.Equal(t, 3.0, v.Num)
	v = eval(t, `=DATEDIF(DATE(2020,1,1),DATE(2023,6,15),"M")`)
	assert.Equal(t, 41.0, v.Num)
	v = eval(t, `=DATEDIF(DATE(2020,1,1),DATE(2023,6,15),"D")`)
	assert.Equal(t, eval(t, "=DATE(2023,6,15)").Num-eval(t, "=DATE(2020,1,1)").Num, v.Num)
}

func TestNetworkdaysExcludesWeekendsAndHolidays(t *testing.T) {
	// 2024-03-11 (Mon) through 2024-03-15 (Fri): 5 workdays, minus one holiday.
	v := eval(t, `=NETWORKDAYS(DATE(2024,3,11),DATE(2024,3,15),DATE(2024,3,13))`)
	assert.Equal(t, 4.0, v.Num)
}

func TestWorkdaySkipsWeekendsAndHolidays(t *testing.T) {
	// From Friday 2024-03-15, +1 workday skips the weekend to Monday
	// 2024-03-18, but Monday is listed as a holiday so it lands on Tuesday.
	v := eval(t, `=WORKDAY(DATE(2024,3,15),1,DATE(2024,3,18))`)
	assert.Equal(t, eval(t, "=DATE(2024,3,19)").Num, v.Num)
}

func TestDays360AndYearfrac(t *testing.T) {
	v := eval(t, "=DAYS360(DATE(2024,1,1),DATE(2024,2,1))")
	assert.Equal(t, 30.0, v.Num)

	v = eval(t, "=YEARFRAC(DATE(2024,1,1),DATE(2024,7,1),0)")
	assert.InDelta(t, 0.5, v.Num, 1e-9)
}

func TestDatevalueParsesIsoDate(t *testing.T) {
	v := eval(t, `=DATEVALUE("2024-03-15")`)
	assert.Equal(t, eval(t, "=DATE(2024,3,15)").Num, v.Num)
}

func TestDatevalueRejectsGarbage(t *testing.T) {
	v := eval(t, `=DATEVALUE("not a date")`)
	assert.True(t, v.IsError())
	assert.Equal(t, ErrValue, v.ErrKnd)
}
