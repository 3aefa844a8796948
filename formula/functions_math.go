package formula

import "math"

func registerMathFunctions(r *Registry) {
	r.RegisterFunction("SUM", 0, -1, sumFn)
	r.RegisterFunction("SUMIF", 2, 3, sumifFn)
	r.RegisterFunction("SUMIFS", 3, -1, sumifsFn)
	r.RegisterFunction("SUMPRODUCT", 1, -1, sumproductFn)
	r.RegisterFunction("PRODUCT", 0, -1, productFn)
	r.RegisterFunction("POWER", 2, 2, numFn2(math.Pow))
	r.RegisterFunction("SQRT", 1, 1, sqrtFn)
	r.RegisterFunction("ABS", 1, 1, numFn1(math.Abs))
	r.RegisterFunction("SIGN", 1, 1, signFn)
	r.RegisterFunction("TRUNC", 1, 2, truncFn)
	r.RegisterFunction("INT", 1, 1, numFn1(math.Floor))
	r.RegisterFunction("MOD", 2, 2, modFn)
	r.RegisterFunction("QUOTIENT", 2, 2, quotientFn)
	r.RegisterFunction("ROUND", 2, 2, roundFn)
	r.RegisterFunction("ROUNDUP", 2, 2, roundUpFn)
	r.RegisterFunction("ROUNDDOWN", 2, 2, roundDownFn)
	r.RegisterFunction("CEILING", 2, 2, ceilingFn)
	r.RegisterFunction("FLOOR", 2, 2, floorFn)
	r.RegisterFunction("MROUND", 2, 2, mroundFn)
	r.RegisterFunction("EVEN", 1, 1, evenFn)
	r.RegisterFunction("ODD", 1, 1, oddFn)
	r.RegisterFunction("FACT", 1, 1, factFn)
	r.RegisterFunction("COMBIN", 2, 2, combinFn)
	r.RegisterFunction("PERMUT", 2, 2, permutFn)
	r.RegisterFunction("GCD", 1, -1, gcdFn)
	r.RegisterFunction("LCM", 1, -1, lcmFn)
	r.RegisterFunction("EXP", 1, 1, numFn1(math.Exp))
	r.RegisterFunction("LN", 1, 1, lnFn)
	r.RegisterFunction("LOG", 1, 2, logFn)
	r.RegisterFunction("LOG10", 1, 1, log10Fn)
	r.RegisterFunction("PI", 0, 0, func(ctx *EvalContext, args []Value) Value { return NumberValue(math.Pi) })
	r.RegisterFunction("RAND", 0, 0, func(ctx *EvalContext, args []Value) Value { return NumberValue(ctx.Random.Float64()) })
	r.RegisterFunction("RANDBETWEEN", 2, 2, randBetweenFn)
	r.RegisterFunction("SIN", 1, 1, numFn1(math.Sin))
	r.RegisterFunction("COS", 1, 1, numFn1(math.Cos))
	r.RegisterFunction("TAN", 1, 1, numFn1(math.Tan))
	r.RegisterFunction("ASIN", 1, 1, numFn1(math.Asin))
	r.RegisterFunction("ACOS", 1, 1, numFn1(math.Acos))
	r.RegisterFunction("ATAN", 1, 1, numFn1(math.Atan))
	r.RegisterFunction("ATAN2", 2, 2, func(ctx *EvalContext, args []Value) Value { return arithNum2(args, math.Atan2) })
	r.RegisterFunction("SINH", 1, 1, numFn1(math.Sinh))
	r.RegisterFunction("COSH", 1, 1, numFn1(math.Cosh))
	r.RegisterFunction("TANH", 1, 1, numFn1(math.Tanh))
	r.RegisterFunction("DEGREES", 1, 1, numFn1(func(x float64) float64 { return x * 180 / math.Pi }))
	r.RegisterFunction("RADIANS", 1, 1, numFn1(func(x float64) float64 { return x * math.Pi / 180 }))
}

// numFn1 adapts a pure unary float function into a FunctionBody, coercing
// the single argument through toNumber first.
func numFn1(f func(float64) float64) FunctionBody {
	return func(ctx *EvalContext, args []Value) Value {
		n, errv := toNumber(args[0])
		if errv.IsError() {
			return errv
		}
		return NumberValue(f(n))
	}
}

func numFn2(f func(a, b float64) float64) FunctionBody {
	return func(ctx *EvalContext, args []Value) Value {
		return arithNum2(args, f)
	}
}

func arithNum2(args []Value, f func(a, b float64) float64) Value {
	a, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	b, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	return NumberValue(f(a, b))
}

func sumFn(ctx *EvalContext, args []Value) Value {
	nums, errv := harvestNumbers(args)
	if errv.IsError() {
		return errv
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return NumberValue(total)
}

func flattenToSlice(v Value) []Value {
	if v.IsArray() {
		var out []Value
		for _, row := range v.Arr.Rows {
			out = append(out, row...)
		}
		return out
	}
	return []Value{v}
}

func sumifFn(ctx *EvalContext, args []Value) Value {
	rangeVals := flattenToSlice(args[0])
	criteria := args[1]
	sumVals := rangeVals
	if len(args) >= 3 {
		sumVals = flattenToSlice(args[2])
	}
	total := 0.0
	for i, rv := range rangeVals {
		if i >= len(sumVals) || !matchCriteria(rv, criteria) {
			continue
		}
		if n, errv := toNumber(sumVals[i]); !errv.IsError() {
			total += n
		}
	}
	return NumberValue(total)
}

func sumifsFn(ctx *EvalContext, args []Value) Value {
	sumRange := flattenToSlice(args[0])
	pairs := args[1:]
	if len(pairs)%2 != 0 {
		return ErrorValue(ErrValue, "SUMIFS requires range/criteria pairs")
	}
	n := len(pairs) / 2
	total := 0.0
	for i := range sumRange {
		if !matchesAllCriteria(pairs, n, i) {
			continue
		}
		if v, errv := toNumber(sumRange[i]); !errv.IsError() {
			total += v
		}
	}
	return NumberValue(total)
}

func matchesAllCriteria(pairs []Value, n, i int) bool {
	for p := 0; p < n; p++ {
		critRange := flattenToSlice(pairs[2*p])
		crit := pairs[2*p+1]
		if i >= len(critRange) || !matchCriteria(critRange[i], crit) {
			return false
		}
	}
	return true
}

func sumproductFn(ctx *EvalContext, args []Value) Value {
	slices := make([][]Value, len(args))
	length := -1
	for i, a := range args {
		slices[i] = flattenToSlice(a)
		if length == -1 {
			length = len(slices[i])
		} else if len(slices[i]) != length {
			return ErrorValue(ErrValue, "SUMPRODUCT: arrays must be the same size")
		}
	}
	total := 0.0
	for i := 0; i < length; i++ {
		product := 1.0
		for _, s := range slices {
			n, errv := toNumber(s[i])
			if errv.IsError() {
				return errv
			}
			product *= n
		}
		total += product
	}
	return NumberValue(total)
}

func productFn(ctx *EvalContext, args []Value) Value {
	nums, errv := harvestNumbers(args)
	if errv.IsError() {
		return errv
	}
	if len(nums) == 0 {
		return NumberValue(0)
	}
	total := 1.0
	for _, n := range nums {
		total *= n
	}
	return NumberValue(total)
}

func sqrtFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	if n < 0 {
		return ErrorValue(ErrNum, "SQRT of a negative number")
	}
	return NumberValue(math.Sqrt(n))
}

func signFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	switch {
	case n > 0:
		return NumberValue(1)
	case n < 0:
		return NumberValue(-1)
	default:
		return NumberValue(0)
	}
}

func truncFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	digits := 0.0
	if len(args) == 2 {
		digits, errv = toNumber(args[1])
		if errv.IsError() {
			return errv
		}
	}
	scale := math.Pow(10, digits)
	return NumberValue(math.Trunc(n*scale) / scale)
}

func modFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	d, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	if d == 0 {
		return ErrorValue(ErrDiv0, "MOD by zero")
	}
	return NumberValue(n - d*math.Floor(n/d))
}

func quotientFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	d, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	if d == 0 {
		return ErrorValue(ErrDiv0, "QUOTIENT by zero")
	}
	return NumberValue(math.Trunc(n / d))
}

// roundHalfAwayFromZero is the rounding convention spec §4.6 calls for on
// ROUND, distinct from Go's round-half-to-even default.
func roundHalfAwayFromZero(x float64) float64 {
	if x >= 0 {
		return math.Floor(x + 0.5)
	}
	return math.Ceil(x - 0.5)
}

func roundFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	digits, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	scale := math.Pow(10, digits)
	return NumberValue(roundHalfAwayFromZero(n*scale) / scale)
}

func roundUpFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	digits, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	scale := math.Pow(10, digits)
	if n >= 0 {
		return NumberValue(math.Ceil(n*scale) / scale)
	}
	return NumberValue(math.Floor(n*scale) / scale)
}

func roundDownFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	digits, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	scale := math.Pow(10, digits)
	return NumberValue(math.Trunc(n*scale) / scale)
}

func ceilingFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	sig, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	if sig == 0 {
		return NumberValue(0)
	}
	if (n > 0 && sig < 0) || (n < 0 && sig > 0) {
		return ErrorValue(ErrNum, "CEILING: number and significance must share a sign")
	}
	return NumberValue(sig * math.Ceil(n/sig))
}

func floorFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	sig, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	if sig == 0 {
		return NumberValue(0)
	}
	if (n > 0 && sig < 0) || (n < 0 && sig > 0) {
		return ErrorValue(ErrNum, "FLOOR: number and significance must share a sign")
	}
	return NumberValue(sig * math.Floor(n/sig))
}

func mroundFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	mult, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	if mult == 0 {
		return NumberValue(0)
	}
	if (n > 0 && mult < 0) || (n < 0 && mult > 0) {
		return ErrorValue(ErrNum, "MROUND: number and multiple must share a sign")
	}
	return NumberValue(mult * roundHalfAwayFromZero(n/mult))
}

func evenFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	return NumberValue(roundToParity(n, 2))
}

func oddFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	return NumberValue(roundToParity(n, 1))
}

// roundToParity rounds n away from zero to the nearest integer with the
// given parity (0 for even, 1 for odd), as EVEN/ODD require.
func roundToParity(n float64, parity int) float64 {
	sign := 1.0
	mag := n
	if n < 0 {
		sign = -1
		mag = -n
	}
	rounded := math.Ceil(mag)
	if int64(rounded)%2 != int64(parity) {
		rounded++
	}
	return sign * rounded
}

func factFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	if n < 0 {
		return ErrorValue(ErrNum, "FACT of a negative number")
	}
	result := 1.0
	for i := 2.0; i <= math.Floor(n); i++ {
		result *= i
	}
	return NumberValue(result)
}

func combinFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	k, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	if k < 0 || n < 0 || k > n {
		return ErrorValue(ErrNum, "COMBIN: invalid arguments")
	}
	return NumberValue(roundHalfAwayFromZero(permutations(n, k) / factorial(math.Floor(k))))
}

func permutFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	k, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	if k < 0 || n < 0 || k > n {
		return ErrorValue(ErrNum, "PERMUT: invalid arguments")
	}
	return NumberValue(roundHalfAwayFromZero(permutations(n, k)))
}

func factorial(n float64) float64 {
	result := 1.0
	for i := 2.0; i <= n; i++ {
		result *= i
	}
	return result
}

func permutations(n, k float64) float64 {
	result := 1.0
	for i := 0.0; i < math.Floor(k); i++ {
		result *= n - i
	}
	return result
}

func gcdFn(ctx *EvalContext, args []Value) Value {
	nums, errv := harvestNumbers(args)
	if errv.IsError() {
		return errv
	}
	result := int64(0)
	for _, n := range nums {
		if n < 0 {
			return ErrorValue(ErrNum, "GCD: negative argument")
		}
		result = gcdInt(result, int64(n))
	}
	return NumberValue(float64(result))
}

func gcdInt(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcmFn(ctx *EvalContext, args []Value) Value {
	nums, errv := harvestNumbers(args)
	if errv.IsError() {
		return errv
	}
	result := int64(1)
	for _, n := range nums {
		if n < 0 {
			return ErrorValue(ErrNum, "LCM: negative argument")
		}
		v := int64(n)
		if v == 0 {
			return NumberValue(0)
		}
		g := gcdInt(result, v)
		result = result / g * v
	}
	return NumberValue(float64(result))
}

func lnFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	if n <= 0 {
		return ErrorValue(ErrNum, "LN of a non-positive number")
	}
	return NumberValue(math.Log(n))
}

func logFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	base := 10.0
	if len(args) == 2 {
		base, errv = toNumber(args[1])
		if errv.IsError() {
			return errv
		}
	}
	if n <= 0 || base <= 0 || base == 1 {
		return ErrorValue(ErrNum, "LOG: invalid arguments")
	}
	return NumberValue(math.Log(n) / math.Log(base))
}

func log10Fn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	if n <= 0 {
		return ErrorValue(ErrNum, "LOG10 of a non-positive number")
	}
	return NumberValue(math.Log10(n))
}

func randBetweenFn(ctx *EvalContext, args []Value) Value {
	lo, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	hi, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	lo, hi = math.Ceil(lo), math.Floor(hi)
	if lo > hi {
		return ErrorValue(ErrNum, "RANDBETWEEN: bottom exceeds top")
	}
	span := hi - lo + 1
	return NumberValue(lo + math.Floor(ctx.Random.Float64()*span))
}
