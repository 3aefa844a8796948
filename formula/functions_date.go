package formula

import (
	"math"
	"strings"
	"time"
)

// epoch is the instant serial 0 represents: one day before 1900-01-01, so
// that serial 1 is 1900-01-01 (spec §4.6's serial-date convention).
var epoch = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)

func dateToSerial(t time.Time) float64 {
	days := t.UTC().Sub(epoch).Hours() / 24
	return days
}

func serialToDate(serial float64) time.Time {
	days := math.Floor(serial)
	frac := serial - days
	secs := math.Round(frac * 86400)
	return epoch.Add(time.Duration(days)*24*time.Hour + time.Duration(secs)*time.Second)
}

func registerDateFunctions(r *Registry) {
	r.RegisterFunction("TODAY", 0, 0, todayFn)
	r.RegisterFunction("NOW", 0, 0, nowFn)
	r.RegisterFunction("DATE", 3, 3, dateFn)
	r.RegisterFunction("YEAR", 1, 1, dateComponentFn(func(t time.Time) float64 { return float64(t.Year()) }))
	r.RegisterFunction("MONTH", 1, 1, dateComponentFn(func(t time.Time) float64 { return float64(t.Month()) }))
	r.RegisterFunction("DAY", 1, 1, dateComponentFn(func(t time.Time) float64 { return float64(t.Day()) }))
	r.RegisterFunction("HOUR", 1, 1, dateComponentFn(func(t time.Time) float64 { return float64(t.Hour()) }))
	r.RegisterFunction("MINUTE", 1, 1, dateComponentFn(func(t time.Time) float64 { return float64(t.Minute()) }))
	r.RegisterFunction("SECOND", 1, 1, dateComponentFn(func(t time.Time) float64 { return float64(t.Second()) }))
	r.RegisterFunction("TIME", 3, 3, timeFn)
	r.RegisterFunction("WEEKDAY", 1, 2, weekdayFn)
	r.RegisterFunction("WEEKNUM", 1, 2, weeknumFn)
	r.RegisterFunction("ISOWEEKNUM", 1, 1, isoWeeknumFn)
	r.RegisterFunction("EOMONTH", 2, 2, eomonthFn)
	r.RegisterFunction("EDATE", 2, 2, edateFn)
	r.RegisterFunction("DATEDIF", 3, 3, datedifFn)
	r.RegisterFunction("DAYS", 2, 2, daysFn)
	r.RegisterFunction("DAYS360", 2, 3, days360Fn)
	r.RegisterFunction("NETWORKDAYS", 2, 3, networkdaysFn)
	r.RegisterFunction("WORKDAY", 2, 3, workdayFn)
	r.RegisterFunction("DATEVALUE", 1, 1, datevalueFn)
	r.RegisterFunction("TIMEVALUE", 1, 1, timevalueFn)
	r.RegisterFunction("YEARFRAC", 2, 3, yearfracFn)
}

func todayFn(ctx *EvalContext, args []Value) Value {
	t := ctx.Clock.Now()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return NumberValue(math.Floor(dateToSerial(midnight)))
}

func nowFn(ctx *EvalContext, args []Value) Value {
	return NumberValue(dateToSerial(ctx.Clock.Now()))
}

func dateFn(ctx *EvalContext, args []Value) Value {
	y, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	m, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	d, errv := toNumber(args[2])
	if errv.IsError() {
		return errv
	}
	t := time.Date(int(y), time.Month(1), 1, 0, 0, 0, 0, time.UTC)
	t = t.AddDate(0, int(m)-1, int(d)-1)
	return NumberValue(math.Floor(dateToSerial(t)))
}

func dateComponentFn(extract func(time.Time) float64) FunctionBody {
	return func(ctx *EvalContext, args []Value) Value {
		n, errv := toNumber(args[0])
		if errv.IsError() {
			return errv
		}
		return NumberValue(extract(serialToDate(n)))
	}
}

func timeFn(ctx *EvalContext, args []Value) Value {
	h, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	m, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	s, errv := toNumber(args[2])
	if errv.IsError() {
		return errv
	}
	total := h*3600 + m*60 + s
	frac := math.Mod(total, 86400) / 86400
	if frac < 0 {
		frac += 1
	}
	return NumberValue(frac)
}

func weekdayFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	mode := 1.0
	if len(args) == 2 {
		mode, errv = toNumber(args[1])
		if errv.IsError() {
			return errv
		}
	}
	wd := int(serialToDate(n).Weekday()) // Sunday = 0
	switch int(mode) {
	case 1:
		return NumberValue(float64(wd + 1))
	case 2:
		return NumberValue(float64((wd+6)%7 + 1))
	case 3:
		return NumberValue(float64((wd + 6) % 7))
	default:
		return ErrorValue(ErrNum, "WEEKDAY: unsupported mode")
	}
}

func weeknumFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	t := serialToDate(n)
	jan1 := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	days := int(t.Sub(jan1).Hours() / 24)
	firstWd := int(jan1.Weekday())
	return NumberValue(float64((days+firstWd)/7 + 1))
}

func isoWeeknumFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	_, wk := serialToDate(n).ISOWeek()
	return NumberValue(float64(wk))
}

func eomonthFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	months, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	t := serialToDate(n)
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	target := firstOfMonth.AddDate(0, int(months)+1, -1)
	return NumberValue(math.Floor(dateToSerial(target)))
}

func edateFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	months, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	t := serialToDate(n)
	// Clamp the day to the target month's length, so Jan 31 + 1 month is the
	// last day of February rather than overflowing into March.
	first := time.Date(t.Year(), t.Month()+time.Month(int(months)), 1, 0, 0, 0, 0, time.UTC)
	day := t.Day()
	if last := lastDayOfMonth(first.Year(), int(first.Month())); day > last {
		day = last
	}
	target := first.AddDate(0, 0, day-1)
	return NumberValue(math.Floor(dateToSerial(target)))
}

// datedifFn computes the difference between two dates in the requested unit.
// Branches use explicit local bindings for the YM anniversary math rather
// than a shared mutable counter.
func datedifFn(ctx *EvalContext, args []Value) Value {
	startN, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	endN, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	unitV, errv := textOf(args[2])
	if errv.IsError() {
		return errv
	}
	unit := strings.ToUpper(unitV)
	if endN < startN {
		return ErrorValue(ErrNum, "DATEDIF: end date precedes start date")
	}
	start := serialToDate(startN)
	end := serialToDate(endN)

	switch unit {
	case "D":
		return NumberValue(math.Floor(endN) - math.Floor(startN))
	case "Y":
		years := end.Year() - start.Year()
		anniversary := start.AddDate(years, 0, 0)
		if anniversary.After(end) {
			years--
		}
		return NumberValue(float64(years))
	case "M":
		months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
		anniversary := start.AddDate(0, months, 0)
		if anniversary.After(end) {
			months--
		}
		return NumberValue(float64(months))
	case "MD":
		anchor := time.Date(end.Year(), end.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		if anchor.After(end) {
			anchor = anchor.AddDate(0, -1, 0)
		}
		days := int(end.Sub(anchor).Hours() / 24)
		return NumberValue(float64(days))
	case "YM":
		monthsTotal := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
		if time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, monthsTotal, 0).After(end) {
			monthsTotal--
		}
		ymValue := ((monthsTotal % 12) + 12) % 12
		return NumberValue(float64(ymValue))
	case "YD":
		anchor := time.Date(end.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		if anchor.After(end) {
			anchor = anchor.AddDate(-1, 0, 0)
		}
		days := int(end.Sub(anchor).Hours() / 24)
		return NumberValue(float64(days))
	default:
		return ErrorValue(ErrNum, "DATEDIF: unsupported unit")
	}
}

func daysFn(ctx *EvalContext, args []Value) Value {
	end, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	start, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	return NumberValue(math.Floor(end) - math.Floor(start))
}

func days360Fn(ctx *EvalContext, args []Value) Value {
	startN, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	endN, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	european := false
	if len(args) == 3 {
		european, errv = toBool(args[2])
		if errv.IsError() {
			return errv
		}
	}
	s := serialToDate(startN)
	e := serialToDate(endN)
	sy, sm, sd := s.Year(), int(s.Month()), s.Day()
	ey, em, ed := e.Year(), int(e.Month()), e.Day()

	if european {
		if sd == 31 {
			sd = 30
		}
		if ed == 31 {
			ed = 30
		}
	} else {
		if sd == 31 || (sm == 2 && sd == lastDayOfMonth(sy, sm)) {
			sd = 30
		}
		if ed == 31 && sd == 30 {
			ed = 30
		}
	}
	total := (ey-sy)*360 + (em-sm)*30 + (ed - sd)
	return NumberValue(float64(total))
}

func lastDayOfMonth(y, m int) int {
	return time.Date(y, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// holidaySerials flattens the optional third argument into a set of
// whole-day serials, so NETWORKDAYS/WORKDAY can exclude them alongside
// weekends.
func holidaySerials(v Value) (map[float64]bool, Value) {
	flat, errv := FlattenOrError(v)
	if errv.IsError() {
		return nil, errv
	}
	set := make(map[float64]bool, len(flat))
	for _, item := range flat {
		n, errv := toNumber(item)
		if errv.IsError() {
			return nil, errv
		}
		set[math.Floor(n)] = true
	}
	return set, Value{}
}

// networkdaysFn counts weekdays (excluding Saturday/Sunday and any date
// listed in the optional third argument) between two dates inclusive.
func networkdaysFn(ctx *EvalContext, args []Value) Value {
	startN, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	endN, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	var holidays map[float64]bool
	if len(args) == 3 {
		holidays, errv = holidaySerials(args[2])
		if errv.IsError() {
			return errv
		}
	}
	if endN < startN {
		startN, endN = endN, startN
	}
	count := 0
	for d := math.Floor(startN); d <= math.Floor(endN); d++ {
		wd := serialToDate(d).Weekday()
		if wd == time.Saturday || wd == time.Sunday || holidays[d] {
			continue
		}
		count++
	}
	return NumberValue(float64(count))
}

func workdayFn(ctx *EvalContext, args []Value) Value {
	startN, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	days, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	var holidays map[float64]bool
	if len(args) == 3 {
		holidays, errv = holidaySerials(args[2])
		if errv.IsError() {
			return errv
		}
	}
	step := 1
	remaining := int(days)
	if remaining < 0 {
		step = -1
		remaining = -remaining
	}
	cur := math.Floor(startN)
	for remaining > 0 {
		cur += float64(step)
		wd := serialToDate(cur).Weekday()
		if wd == time.Saturday || wd == time.Sunday || holidays[cur] {
			continue
		}
		remaining--
	}
	return NumberValue(cur)
}

func datevalueFn(ctx *EvalContext, args []Value) Value {
	s, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	for _, layout := range []string{"2006-01-02", "01/02/2006", "1/2/2006", "January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return NumberValue(math.Floor(dateToSerial(t)))
		}
	}
	return ErrorValue(ErrValue, "DATEVALUE: unrecognized date text")
}

func timevalueFn(ctx *EvalContext, args []Value) Value {
	s, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	for _, layout := range []string{"15:04:05", "15:04", "3:04:05 PM", "3:04 PM"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
			return NumberValue(float64(secs) / 86400)
		}
	}
	return ErrorValue(ErrValue, "TIMEVALUE: unrecognized time text")
}

func yearfracFn(ctx *EvalContext, args []Value) Value {
	startN, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	endN, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	basis := 0.0
	if len(args) == 3 {
		basis, errv = toNumber(args[2])
		if errv.IsError() {
			return errv
		}
	}
	if endN < startN {
		startN, endN = endN, startN
	}
	switch int(basis) {
	case 0:
		d360 := days360Fn(ctx, []Value{NumberValue(startN), NumberValue(endN), BoolValue(false)})
		return NumberValue(d360.Num / 360)
	case 1:
		s := serialToDate(startN)
		e := serialToDate(endN)
		yearDays := 365.0
		if isLeapYear(s.Year()) || isLeapYear(e.Year()) {
			yearDays = 366.0
		}
		return NumberValue((endN - startN) / yearDays)
	case 2:
		return NumberValue((endN - startN) / 360)
	case 3:
		return NumberValue((endN - startN) / 365)
	case 4:
		d360 := days360Fn(ctx, []Value{NumberValue(startN), NumberValue(endN), BoolValue(true)})
		return NumberValue(d360.Num / 360)
	default:
		return ErrorValue(ErrNum, "YEARFRAC: unsupported basis")
	}
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}
