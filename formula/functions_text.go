package formula

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

func registerTextFunctions(r *Registry) {
	r.RegisterFunction("CONCAT", 0, -1, concatFn)
	r.RegisterFunction("CONCATENATE", 0, -1, concatenateFn)
	r.RegisterFunction("LEFT", 1, 2, leftFn)
	r.RegisterFunction("RIGHT", 1, 2, rightFn)
	r.RegisterFunction("MID", 3, 3, midFn)
	r.RegisterFunction("LEN", 1, 1, lenFn)
	r.RegisterFunction("LOWER", 1, 1, lowerFn)
	r.RegisterFunction("UPPER", 1, 1, upperFn)
	r.RegisterFunction("PROPER", 1, 1, properFn)
	r.RegisterFunction("TRIM", 1, 1, trimFn)
	r.RegisterFunction("CLEAN", 1, 1, cleanFn)
	r.RegisterFunction("FIND", 2, 3, findFn)
	r.RegisterFunction("SEARCH", 2, 3, searchFn)
	r.RegisterFunction("REPLACE", 4, 4, replaceFn)
	r.RegisterFunction("SUBSTITUTE", 3, 4, substituteFn)
	r.RegisterFunction("REPT", 2, 2, reptFn)
	r.RegisterFunction("TEXT", 2, 2, textFn)
	r.RegisterFunction("VALUE", 1, 1, valueFn)
	r.RegisterFunction("TEXTJOIN", 2, -1, textjoinFn)
	r.RegisterFunction("CHAR", 1, 1, charFn)
	r.RegisterFunction("CODE", 1, 1, codeFn)
	r.RegisterFunction("EXACT", 2, 2, exactFn)
	r.RegisterFunction("T", 1, 1, tFn)
	r.RegisterFunction("N", 1, 1, nFn)
}

func textOf(v Value) (string, Value) {
	s := Single(v)
	if s.IsError() {
		return "", s
	}
	if s.IsArray() {
		return "", ErrorValue(ErrValue, "expected text, got an array")
	}
	return displayString(s), Value{}
}

func concatFn(ctx *EvalContext, args []Value) Value {
	var sb strings.Builder
	for _, v := range Flatten(args...) {
		if v.IsError() {
			return v
		}
		sb.WriteString(displayString(v))
	}
	return StringValue(sb.String())
}

func concatenateFn(ctx *EvalContext, args []Value) Value {
	var sb strings.Builder
	for _, v := range args {
		if v.IsError() {
			return v
		}
		if v.IsArray() {
			v = v.Arr.At(0, 0)
			if v.IsError() {
				return v
			}
		}
		sb.WriteString(displayString(v))
	}
	return StringValue(sb.String())
}

func leftFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	n := 1.0
	if len(args) == 2 {
		n, errv = toNumber(args[1])
		if errv.IsError() {
			return errv
		}
	}
	runes := []rune(text)
	count := int(n)
	if count < 0 {
		return ErrorValue(ErrValue, "LEFT: length must not be negative")
	}
	if count > len(runes) {
		count = len(runes)
	}
	return StringValue(string(runes[:count]))
}

func rightFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	n := 1.0
	if len(args) == 2 {
		n, errv = toNumber(args[1])
		if errv.IsError() {
			return errv
		}
	}
	runes := []rune(text)
	count := int(n)
	if count < 0 {
		return ErrorValue(ErrValue, "RIGHT: length must not be negative")
	}
	if count > len(runes) {
		count = len(runes)
	}
	return StringValue(string(runes[len(runes)-count:]))
}

func midFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	start, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	length, errv := toNumber(args[2])
	if errv.IsError() {
		return errv
	}
	if start < 1 || length < 0 {
		return ErrorValue(ErrValue, "MID: invalid start or length")
	}
	runes := []rune(text)
	from := int(start) - 1
	if from >= len(runes) {
		return StringValue("")
	}
	to := from + int(length)
	if to > len(runes) {
		to = len(runes)
	}
	return StringValue(string(runes[from:to]))
}

func lenFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	return NumberValue(float64(len([]rune(text))))
}

func lowerFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	return StringValue(lowerCaser.String(text))
}

func upperFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	return StringValue(upperCaser.String(text))
}

// properFn capitalizes the first letter of each maximal run of letters and
// digits, lower-casing the rest of the run; any other rune (spaces,
// apostrophes, hyphens) breaks a run.
func properFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	var sb strings.Builder
	atRunStart := true
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			sb.WriteRune(r)
			atRunStart = true
			continue
		}
		if atRunStart {
			sb.WriteRune(unicode.ToUpper(r))
		} else {
			sb.WriteRune(unicode.ToLower(r))
		}
		atRunStart = false
	}
	return StringValue(sb.String())
}

func trimFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	return StringValue(strings.Join(strings.Fields(text), " "))
}

func cleanFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	var sb strings.Builder
	for _, r := range text {
		if r < 32 || r == 127 {
			continue
		}
		sb.WriteRune(r)
	}
	return StringValue(sb.String())
}

// runeIndex finds needle within haystack by rune position, not byte offset.
func runeIndex(haystack, needle string) int {
	hayRunes := []rune(haystack)
	needleRunes := []rune(needle)
	if len(needleRunes) == 0 {
		return 0
	}
	for i := 0; i+len(needleRunes) <= len(hayRunes); i++ {
		match := true
		for j, r := range needleRunes {
			if hayRunes[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func findFn(ctx *EvalContext, args []Value) Value {
	needle, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	haystack, errv := textOf(args[1])
	if errv.IsError() {
		return errv
	}
	start := 1.0
	if len(args) == 3 {
		start, errv = toNumber(args[2])
		if errv.IsError() {
			return errv
		}
	}
	runes := []rune(haystack)
	from := int(start) - 1
	if from < 0 || from > len(runes) {
		return ErrorValue(ErrValue, "FIND: start out of range")
	}
	idx := runeIndex(string(runes[from:]), needle)
	if idx < 0 {
		return ErrorValue(ErrValue, "FIND: text not found")
	}
	return NumberValue(float64(from + idx + 1))
}

func searchFn(ctx *EvalContext, args []Value) Value {
	needle, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	haystack, errv := textOf(args[1])
	if errv.IsError() {
		return errv
	}
	start := 1.0
	if len(args) == 3 {
		start, errv = toNumber(args[2])
		if errv.IsError() {
			return errv
		}
	}
	runes := []rune(haystack)
	from := int(start) - 1
	if from < 0 || from > len(runes) {
		return ErrorValue(ErrValue, "SEARCH: start out of range")
	}
	idx := runeIndex(strings.ToUpper(string(runes[from:])), strings.ToUpper(needle))
	if idx < 0 {
		return ErrorValue(ErrValue, "SEARCH: text not found")
	}
	return NumberValue(float64(from + idx + 1))
}

func replaceFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	start, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	length, errv := toNumber(args[2])
	if errv.IsError() {
		return errv
	}
	newText, errv := textOf(args[3])
	if errv.IsError() {
		return errv
	}
	runes := []rune(text)
	from := int(start) - 1
	if from < 0 {
		return ErrorValue(ErrValue, "REPLACE: start out of range")
	}
	if from > len(runes) {
		from = len(runes)
	}
	to := from + int(length)
	if to > len(runes) {
		to = len(runes)
	}
	if to < from {
		to = from
	}
	return StringValue(string(runes[:from]) + newText + string(runes[to:]))
}

func substituteFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	old, errv := textOf(args[1])
	if errv.IsError() {
		return errv
	}
	newText, errv := textOf(args[2])
	if errv.IsError() {
		return errv
	}
	if len(args) == 3 {
		return StringValue(strings.ReplaceAll(text, old, newText))
	}
	nth, errv := toNumber(args[3])
	if errv.IsError() {
		return errv
	}
	if old == "" {
		return StringValue(text)
	}
	n := int(nth)
	count := 0
	idx := 0
	for {
		rel := strings.Index(text[idx:], old)
		if rel < 0 {
			return StringValue(text)
		}
		pos := idx + rel
		count++
		if count == n {
			return StringValue(text[:pos] + newText + text[pos+len(old):])
		}
		idx = pos + len(old)
	}
}

func reptFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	n, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	if n < 0 {
		return ErrorValue(ErrValue, "REPT: count must not be negative")
	}
	return StringValue(strings.Repeat(text, int(n)))
}

// textFn implements a pragmatic subset of Excel number-format codes:
// thousands separators ("#,##0"), fixed decimal places, a literal "%"
// multiplying by 100, a literal "$" prefix, and zero-padded integer width
// ("000").
func textFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	format, errv := textOf(args[1])
	if errv.IsError() {
		return errv
	}

	percent := strings.Contains(format, "%")
	value := n
	if percent {
		value *= 100
	}
	dollar := strings.HasPrefix(format, "$")
	thousands := strings.Contains(format, ",")

	decimals := 0
	if idx := strings.IndexByte(format, '.'); idx >= 0 {
		for _, r := range format[idx+1:] {
			if r == '0' || r == '#' {
				decimals++
			} else {
				break
			}
		}
	}

	zeroWidth := 0
	intPart := format
	if idx := strings.IndexByte(format, '.'); idx >= 0 {
		intPart = format[:idx]
	}
	for _, r := range intPart {
		if r == '0' {
			zeroWidth++
		}
	}

	out := strconv.FormatFloat(value, 'f', decimals, 64)
	neg := strings.HasPrefix(out, "-")
	out = strings.TrimPrefix(out, "-")

	intStr, fracStr := out, ""
	if idx := strings.IndexByte(out, '.'); idx >= 0 {
		intStr, fracStr = out[:idx], out[idx+1:]
	}
	for len(intStr) < zeroWidth {
		intStr = "0" + intStr
	}
	if thousands {
		intStr = groupThousands(intStr)
	}

	result := intStr
	if fracStr != "" {
		result += "." + fracStr
	}
	if neg {
		result = "-" + result
	}
	if dollar {
		result = "$" + result
	}
	if percent {
		result += "%"
	}
	return StringValue(result)
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}

func valueFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	s := strings.TrimSpace(text)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ErrorValue(ErrValue, "VALUE: cannot parse "+text)
	}
	if percent {
		n /= 100
	}
	return NumberValue(n)
}

func textjoinFn(ctx *EvalContext, args []Value) Value {
	delim, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	ignoreEmpty, errv := toBool(args[1])
	if errv.IsError() {
		return errv
	}
	var parts []string
	for _, v := range Flatten(args[2:]...) {
		if v.IsError() {
			return v
		}
		s := displayString(v)
		if ignoreEmpty && s == "" {
			continue
		}
		parts = append(parts, s)
	}
	return StringValue(strings.Join(parts, delim))
}

func charFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	r := utf16.Decode([]uint16{uint16(n)})
	return StringValue(string(r))
}

func codeFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	if text == "" {
		return ErrorValue(ErrValue, "CODE: empty text")
	}
	units := utf16.Encode([]rune(text))
	return NumberValue(float64(units[0]))
}

func exactFn(ctx *EvalContext, args []Value) Value {
	a, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	b, errv := textOf(args[1])
	if errv.IsError() {
		return errv
	}
	return BoolValue(a == b)
}

func tFn(ctx *EvalContext, args []Value) Value {
	v := Single(args[0])
	if v.IsString() {
		return v
	}
	return StringValue("")
}

func nFn(ctx *EvalContext, args []Value) Value {
	v := Single(args[0])
	switch v.Kind {
	case KindNumber:
		return v
	case KindBoolean:
		if v.Bool {
			return NumberValue(1)
		}
		return NumberValue(0)
	case KindError:
		return v
	}
	return NumberValue(0)
}
