package formula

import "strings"

// compareValues orders two values the same way applyComparison does, but
// returns the raw -1/0/1 ordering VLOOKUP/MATCH/LOOKUP need to walk a
// sorted vector rather than a single boolean test.
func compareValues(left, right Value) int {
	switch {
	case left.Kind == KindNull && right.Kind == KindNull:
		return 0
	case left.Kind == KindNull:
		return -1
	case right.Kind == KindNull:
		return 1
	case left.Kind == KindNumber && right.Kind == KindNumber:
		return cmpFloat(left.Num, right.Num)
	case left.Kind == KindString && right.Kind == KindString:
		return strings.Compare(left.Str, right.Str)
	case left.Kind == KindBoolean && right.Kind == KindBoolean:
		return cmpFloat(boolFloat(left.Bool), boolFloat(right.Bool))
	}
	return strings.Compare(strings.ToLower(displayString(left)), strings.ToLower(displayString(right)))
}

func registerLookupFunctions(r *Registry) {
	r.RegisterFunction("VLOOKUP", 3, 4, vlookupFn)
	r.RegisterFunction("HLOOKUP", 3, 4, hlookupFn)
	r.RegisterFunction("INDEX", 2, 3, indexFn)
	r.RegisterFunction("MATCH", 2, 3, matchFn)
	r.RegisterFunction("LOOKUP", 2, 3, lookupFn)
	r.RegisterFunction("XLOOKUP", 3, 6, xlookupFn)
	r.RegisterFunction("ROWS", 1, 1, rowsFn)
	r.RegisterFunction("COLUMNS", 1, 1, columnsFn)
	r.RegisterFunction("ADDRESS", 2, 5, addressFn)
	r.RegisterFunction("INDIRECT", 1, 1, indirectFn)
}

func vlookupFn(ctx *EvalContext, args []Value) Value {
	key := Single(args[0])
	table := args[1]
	if !table.IsArray() {
		return ErrorValue(ErrValue, "VLOOKUP: second argument must be a range")
	}
	colIdx, errv := toNumber(args[2])
	if errv.IsError() {
		return errv
	}
	approx := true
	if len(args) == 4 {
		approx, errv = toBool(args[3])
		if errv.IsError() {
			return errv
		}
	}
	col := int(colIdx) - 1
	rows := table.Arr.Rows
	if col < 0 || (len(rows) > 0 && col >= len(rows[0])) {
		return ErrorValue(ErrRef, "VLOOKUP: column index out of range")
	}
	rowIdx := findLookupRow(key, rows, 0, approx)
	if rowIdx < 0 {
		return ErrorValue(ErrNA, "VLOOKUP: key not found")
	}
	return rows[rowIdx][col]
}

func hlookupFn(ctx *EvalContext, args []Value) Value {
	key := Single(args[0])
	table := args[1]
	if !table.IsArray() {
		return ErrorValue(ErrValue, "HLOOKUP: second argument must be a range")
	}
	rowIdxArg, errv := toNumber(args[2])
	if errv.IsError() {
		return errv
	}
	approx := true
	if len(args) == 4 {
		approx, errv = toBool(args[3])
		if errv.IsError() {
			return errv
		}
	}
	rows := table.Arr.Rows
	targetRow := int(rowIdxArg) - 1
	if targetRow < 0 || targetRow >= len(rows) {
		return ErrorValue(ErrRef, "HLOOKUP: row index out of range")
	}
	header := rows[0]
	colIdx := findLookupColumn(key, header, approx)
	if colIdx < 0 {
		return ErrorValue(ErrNA, "HLOOKUP: key not found")
	}
	return rows[targetRow][colIdx]
}

// findLookupRow scans the given column of rows for key, matching exactly or
// retaining the greatest value <= key (spec §4.6's "assumes sorted data").
func findLookupRow(key Value, rows [][]Value, col int, approx bool) int {
	if !approx {
		for i, row := range rows {
			if col < len(row) && applyComparison("=", row[col], key).Bool {
				return i
			}
		}
		return -1
	}
	best := -1
	for i, row := range rows {
		if col >= len(row) {
			continue
		}
		cmp := compareValues(row[col], key)
		if cmp > 0 {
			break
		}
		best = i
	}
	return best
}

func findLookupColumn(key Value, header []Value, approx bool) int {
	if !approx {
		for i, v := range header {
			if applyComparison("=", v, key).Bool {
				return i
			}
		}
		return -1
	}
	best := -1
	for i, v := range header {
		if compareValues(v, key) > 0 {
			break
		}
		best = i
	}
	return best
}

func indexFn(ctx *EvalContext, args []Value) Value {
	arr := args[0]
	if !arr.IsArray() {
		return ErrorValue(ErrValue, "INDEX: first argument must be a range")
	}
	row, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	col := 0.0
	if len(args) == 3 {
		col, errv = toNumber(args[2])
		if errv.IsError() {
			return errv
		}
	}
	rows := arr.Arr.Rows
	if int(row) == 0 {
		// entire column
		c := int(col) - 1
		out := make([][]Value, len(rows))
		for i, r := range rows {
			if c < 0 || c >= len(r) {
				return ErrorValue(ErrRef, "INDEX: column out of range")
			}
			out[i] = []Value{r[c]}
		}
		return ArrayValue(out)
	}
	r := int(row) - 1
	if r < 0 || r >= len(rows) {
		return ErrorValue(ErrRef, "INDEX: row out of range")
	}
	if int(col) == 0 {
		return ArrayValue([][]Value{rows[r]})
	}
	c := int(col) - 1
	if c < 0 || c >= len(rows[r]) {
		return ErrorValue(ErrRef, "INDEX: column out of range")
	}
	return rows[r][c]
}

func matchFn(ctx *EvalContext, args []Value) Value {
	key := Single(args[0])
	vector := flattenToSlice(args[1])
	matchType := 1.0
	if len(args) == 3 {
		n, errv := toNumber(args[2])
		if errv.IsError() {
			return errv
		}
		matchType = n
	}
	switch int(matchType) {
	case 0:
		for i, v := range vector {
			if applyComparison("=", v, key).Bool {
				return NumberValue(float64(i + 1))
			}
		}
		return ErrorValue(ErrNA, "MATCH: key not found")
	case 1:
		best := -1
		for i, v := range vector {
			if compareValues(v, key) > 0 {
				break
			}
			best = i
		}
		if best < 0 {
			return ErrorValue(ErrNA, "MATCH: key not found")
		}
		return NumberValue(float64(best + 1))
	case -1:
		best := -1
		for i, v := range vector {
			if compareValues(v, key) < 0 {
				break
			}
			best = i
		}
		if best < 0 {
			return ErrorValue(ErrNA, "MATCH: key not found")
		}
		return NumberValue(float64(best + 1))
	default:
		return ErrorValue(ErrValue, "MATCH: invalid match type")
	}
}

func lookupFn(ctx *EvalContext, args []Value) Value {
	key := Single(args[0])
	vector := flattenToSlice(args[1])
	resultVec := vector
	if len(args) == 3 {
		resultVec = flattenToSlice(args[2])
	}
	best := -1
	for i, v := range vector {
		if compareValues(v, key) > 0 {
			break
		}
		best = i
	}
	if best < 0 || best >= len(resultVec) {
		return ErrorValue(ErrNA, "LOOKUP: key not found")
	}
	return resultVec[best]
}

// xlookupSearchOrder turns the searchMode argument into a traversal order
// for the exact/wildcard match modes. 2/-2 (binary search ascending/
// descending) assume sorted input, which only changes lookup cost, not the
// match found, so they fold into the corresponding linear order 1/-1.
func xlookupSearchOrder(mode int, n int) ([]int, Value) {
	order := make([]int, n)
	switch mode {
	case 1, 2:
		for i := range order {
			order[i] = i
		}
	case -1, -2:
		for i := range order {
			order[i] = n - 1 - i
		}
	default:
		return nil, ErrorValue(ErrValue, "XLOOKUP: unsupported search mode")
	}
	return order, Value{}
}

func xlookupFn(ctx *EvalContext, args []Value) Value {
	key := Single(args[0])
	lookupArr := flattenToSlice(args[1])
	returnArr := flattenToSlice(args[2])
	if len(lookupArr) != len(returnArr) {
		return ErrorValue(ErrValue, "XLOOKUP: lookup and return arrays must match in size")
	}
	matchMode := 0.0
	if len(args) >= 5 {
		n, errv := toNumber(args[4])
		if errv.IsError() {
			return errv
		}
		matchMode = n
	}
	searchMode := 1.0
	if len(args) == 6 {
		n, errv := toNumber(args[5])
		if errv.IsError() {
			return errv
		}
		searchMode = n
	}
	order, errv := xlookupSearchOrder(int(searchMode), len(lookupArr))
	if errv.IsError() {
		return errv
	}
	idx := -1
	switch int(matchMode) {
	case 0:
		for _, i := range order {
			if applyComparison("=", lookupArr[i], key).Bool {
				idx = i
				break
			}
		}
	case 2:
		for _, i := range order {
			if matchCriteria(lookupArr[i], key) {
				idx = i
				break
			}
		}
	case -1:
		best := -1
		for i, v := range lookupArr {
			if compareValues(v, key) <= 0 {
				best = i
			}
		}
		idx = best
	case 1:
		for i, v := range lookupArr {
			if compareValues(v, key) >= 0 {
				idx = i
				break
			}
		}
	default:
		return ErrorValue(ErrValue, "XLOOKUP: unsupported match mode")
	}
	if idx < 0 {
		if len(args) >= 4 {
			return args[3]
		}
		return ErrorValue(ErrNA, "XLOOKUP: key not found")
	}
	return returnArr[idx]
}

func rowsFn(ctx *EvalContext, args []Value) Value {
	v := args[0]
	if !v.IsArray() {
		return NumberValue(1)
	}
	return NumberValue(float64(v.Arr.NumRows()))
}

func columnsFn(ctx *EvalContext, args []Value) Value {
	v := args[0]
	if !v.IsArray() {
		return NumberValue(1)
	}
	return NumberValue(float64(v.Arr.NumCols()))
}

func addressFn(ctx *EvalContext, args []Value) Value {
	row, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	col, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	absType := 1.0
	if len(args) >= 3 {
		absType, errv = toNumber(args[2])
		if errv.IsError() {
			return errv
		}
	}
	addr := CellAddress{Row: int(row) - 1, Column: int(col) - 1}
	switch int(absType) {
	case 1:
		addr.RowAbsolute, addr.ColumnAbsolute = true, true
	case 2:
		addr.RowAbsolute, addr.ColumnAbsolute = true, false
	case 3:
		addr.RowAbsolute, addr.ColumnAbsolute = false, true
	case 4:
		addr.RowAbsolute, addr.ColumnAbsolute = false, false
	default:
		return ErrorValue(ErrValue, "ADDRESS: invalid abs_num")
	}
	if len(args) >= 5 {
		sheetName, errv := textOf(args[4])
		if errv.IsError() {
			return errv
		}
		addr.SheetName = sheetName
	}
	return StringValue(addr.String())
}

func indirectFn(ctx *EvalContext, args []Value) Value {
	text, errv := textOf(args[0])
	if errv.IsError() {
		return errv
	}
	if start, end, ok := parseRangeText(text); ok {
		start, end = normalizeRange(start, end)
		rows := ctx.Data.GetRangeValues(ctx.resolveSheet(start), ctx.resolveSheet(end))
		for r := start.Row; r <= end.Row; r++ {
			for c := start.Column; c <= end.Column; c++ {
				ctx.addDependency(CellAddress{SheetName: start.SheetName, Row: r, Column: c})
			}
		}
		return ArrayValue(rows)
	}
	addr, err := ParseAddress(text)
	if err != nil {
		return ErrorValue(ErrRef, "INDIRECT: invalid reference text")
	}
	ctx.addDependency(addr)
	return ctx.Data.GetCellValue(ctx.resolveSheet(addr))
}

func parseRangeText(text string) (CellAddress, CellAddress, bool) {
	idx := lastColonIndex(text)
	if idx < 0 {
		return CellAddress{}, CellAddress{}, false
	}
	start, err := ParseAddress(text[:idx])
	if err != nil {
		return CellAddress{}, CellAddress{}, false
	}
	end, err := ParseAddress(text[idx+1:])
	if err != nil {
		return CellAddress{}, CellAddress{}, false
	}
	return start, end, true
}

func lastColonIndex(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}
