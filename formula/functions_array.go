package formula

import (
	"math"
	"sort"
)

func registerArrayFunctions(r *Registry) {
	r.RegisterFunction("FILTER", 2, 3, filterFn)
	r.RegisterFunction("SORT", 1, 4, sortFn)
	r.RegisterFunction("SORTBY", 2, -1, sortByFn)
	r.RegisterFunction("UNIQUE", 1, 3, uniqueFn)
	r.RegisterFunction("SEQUENCE", 1, 4, sequenceFn)
	r.RegisterFunction("RANDARRAY", 0, 5, randArrayFn)
	r.RegisterFunction("TRANSPOSE", 1, 1, transposeFn)
	r.RegisterFunction("FLATTEN", 1, 1, flattenFn)
	r.RegisterFunction("TOCOL", 1, 2, toColFn)
	r.RegisterFunction("TOROW", 1, 2, toRowFn)
	r.RegisterFunction("WRAPROWS", 2, 3, wrapRowsFn)
	r.RegisterFunction("WRAPCOLS", 2, 3, wrapColsFn)
	r.RegisterFunction("TAKE", 2, 3, takeFn)
	r.RegisterFunction("DROP", 2, 3, dropFn)
	r.RegisterFunction("EXPAND", 3, 4, expandFn)
	r.RegisterFunction("CHOOSECOLS", 2, -1, chooseColsFn)
	r.RegisterFunction("CHOOSEROWS", 2, -1, chooseRowsFn)
	r.RegisterFunction("HSTACK", 1, -1, hstackFn)
	r.RegisterFunction("VSTACK", 1, -1, vstackFn)
}

func rowsOf(v Value) [][]Value {
	if v.IsArray() {
		return v.Arr.Rows
	}
	return [][]Value{{v}}
}

func filterFn(ctx *EvalContext, args []Value) Value {
	data := rowsOf(args[0])
	mask := flattenToSlice(args[1])
	if len(mask) != len(data) {
		return ErrorValue(ErrValue, "FILTER: mask must have one entry per row")
	}
	var out [][]Value
	for i, row := range data {
		keep, errv := toBool(mask[i])
		if errv.IsError() {
			return errv
		}
		if keep {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		if len(args) == 3 {
			return args[2]
		}
		return ErrorValue(ErrNA, "FILTER: no matching rows")
	}
	return ArrayValue(out)
}

func sortFn(ctx *EvalContext, args []Value) Value {
	data := rowsOf(args[0])
	keyIdx := 1.0
	var errv Value
	if len(args) >= 2 {
		keyIdx, errv = toNumber(args[1])
		if errv.IsError() {
			return errv
		}
	}
	order := 1.0
	if len(args) >= 3 {
		order, errv = toNumber(args[2])
		if errv.IsError() {
			return errv
		}
	}
	byColumn := false
	if len(args) == 4 {
		byColumn, errv = toBool(args[3])
		if errv.IsError() {
			return errv
		}
	}
	if byColumn {
		return sortByColumn(data, int(keyIdx)-1, order)
	}
	rows := append([][]Value(nil), data...)
	idx := int(keyIdx) - 1
	sort.SliceStable(rows, func(i, j int) bool {
		if idx >= len(rows[i]) || idx >= len(rows[j]) {
			return false
		}
		cmp := compareValues(rows[i][idx], rows[j][idx])
		if order < 0 {
			return cmp > 0
		}
		return cmp < 0
	})
	return ArrayValue(rows)
}

func sortByColumn(data [][]Value, keyRow int, order float64) Value {
	if keyRow < 0 || keyRow >= len(data) {
		return ErrorValue(ErrValue, "SORT: key row out of range")
	}
	numCols := len(data[keyRow])
	cols := make([]int, numCols)
	for i := range cols {
		cols[i] = i
	}
	sort.SliceStable(cols, func(i, j int) bool {
		cmp := compareValues(data[keyRow][cols[i]], data[keyRow][cols[j]])
		if order < 0 {
			return cmp > 0
		}
		return cmp < 0
	})
	out := make([][]Value, len(data))
	for r, row := range data {
		newRow := make([]Value, numCols)
		for i, c := range cols {
			if c < len(row) {
				newRow[i] = row[c]
			}
		}
		out[r] = newRow
	}
	return ArrayValue(out)
}

func sortByFn(ctx *EvalContext, args []Value) Value {
	data := rowsOf(args[0])
	keyArgs := args[1:]
	if len(keyArgs) == 0 {
		return ErrorValue(ErrValue, "SORTBY: needs at least one key array")
	}
	type keySpec struct {
		keys  []Value
		order float64
	}
	var specs []keySpec
	i := 0
	for i < len(keyArgs) {
		keyVals := flattenToSlice(keyArgs[i])
		order := 1.0
		if i+1 < len(keyArgs) {
			if n, errv := toNumber(keyArgs[i+1]); !errv.IsError() {
				order = n
				i++
			}
		}
		specs = append(specs, keySpec{keys: keyVals, order: order})
		i++
	}
	idx := make([]int, len(data))
	for k := range idx {
		idx[k] = k
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for _, s := range specs {
			if a >= len(s.keys) || b >= len(s.keys) {
				continue
			}
			cmp := compareValues(s.keys[idx[a]], s.keys[idx[b]])
			if cmp == 0 {
				continue
			}
			if s.order < 0 {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	out := make([][]Value, len(data))
	for pos, k := range idx {
		out[pos] = data[k]
	}
	return ArrayValue(out)
}

func uniqueFn(ctx *EvalContext, args []Value) Value {
	data := rowsOf(args[0])
	byColumn := false
	var errv Value
	if len(args) >= 2 {
		byColumn, errv = toBool(args[1])
		if errv.IsError() {
			return errv
		}
	}
	exactlyOnce := false
	if len(args) == 3 {
		exactlyOnce, errv = toBool(args[2])
		if errv.IsError() {
			return errv
		}
	}
	if byColumn {
		transposed := transposeRows(data)
		result := uniqueRows(transposed, exactlyOnce)
		return ArrayValue(transposeRows(result))
	}
	return ArrayValue(uniqueRows(data, exactlyOnce))
}

func rowKey(row []Value) string {
	key := ""
	for _, v := range row {
		key += v.String() + "\x1f"
	}
	return key
}

func uniqueRows(data [][]Value, exactlyOnce bool) [][]Value {
	counts := map[string]int{}
	order := []string{}
	firstRow := map[string][]Value{}
	for _, row := range data {
		k := rowKey(row)
		if counts[k] == 0 {
			order = append(order, k)
			firstRow[k] = row
		}
		counts[k]++
	}
	var out [][]Value
	for _, k := range order {
		if exactlyOnce && counts[k] != 1 {
			continue
		}
		out = append(out, firstRow[k])
	}
	return out
}

func transposeRows(data [][]Value) [][]Value {
	if len(data) == 0 {
		return nil
	}
	cols := len(data[0])
	out := make([][]Value, cols)
	for c := 0; c < cols; c++ {
		out[c] = make([]Value, len(data))
		for r, row := range data {
			if c < len(row) {
				out[c][r] = row[c]
			} else {
				out[c][r] = NullValue()
			}
		}
	}
	return out
}

func sequenceFn(ctx *EvalContext, args []Value) Value {
	rows, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	cols := 1.0
	if len(args) >= 2 {
		cols, errv = toNumber(args[1])
		if errv.IsError() {
			return errv
		}
	}
	start := 1.0
	if len(args) >= 3 {
		start, errv = toNumber(args[2])
		if errv.IsError() {
			return errv
		}
	}
	step := 1.0
	if len(args) == 4 {
		step, errv = toNumber(args[3])
		if errv.IsError() {
			return errv
		}
	}
	out := make([][]Value, int(rows))
	n := start
	for r := range out {
		row := make([]Value, int(cols))
		for c := range row {
			row[c] = NumberValue(n)
			n += step
		}
		out[r] = row
	}
	return ArrayValue(out)
}

func randArrayFn(ctx *EvalContext, args []Value) Value {
	rows, cols := 1.0, 1.0
	lo, hi := 0.0, 1.0
	integer := false
	var errv Value
	if len(args) >= 1 {
		rows, errv = toNumber(args[0])
		if errv.IsError() {
			return errv
		}
	}
	if len(args) >= 2 {
		cols, errv = toNumber(args[1])
		if errv.IsError() {
			return errv
		}
	}
	if len(args) >= 3 {
		lo, errv = toNumber(args[2])
		if errv.IsError() {
			return errv
		}
	}
	if len(args) >= 4 {
		hi, errv = toNumber(args[3])
		if errv.IsError() {
			return errv
		}
	}
	if len(args) == 5 {
		integer, errv = toBool(args[4])
		if errv.IsError() {
			return errv
		}
	}
	out := make([][]Value, int(rows))
	for r := range out {
		row := make([]Value, int(cols))
		for c := range row {
			v := lo + ctx.Random.Float64()*(hi-lo)
			if integer {
				v = math.Floor(v)
			}
			row[c] = NumberValue(v)
		}
		out[r] = row
	}
	return ArrayValue(out)
}

func transposeFn(ctx *EvalContext, args []Value) Value {
	return ArrayValue(transposeRows(rowsOf(args[0])))
}

func flattenFn(ctx *EvalContext, args []Value) Value {
	flat := flattenToSlice(args[0])
	rows := make([][]Value, len(flat))
	for i, v := range flat {
		rows[i] = []Value{v}
	}
	return ArrayValue(rows)
}

func filteredFlatten(v Value, ignore int) []Value {
	flat := flattenToSlice(v)
	var out []Value
	for _, item := range flat {
		if (ignore == 1 || ignore == 3) && item.IsNull() {
			continue
		}
		if (ignore == 2 || ignore == 3) && item.IsError() {
			continue
		}
		out = append(out, item)
	}
	return out
}

func toColFn(ctx *EvalContext, args []Value) Value {
	ignore := 0.0
	var errv Value
	if len(args) == 2 {
		ignore, errv = toNumber(args[1])
		if errv.IsError() {
			return errv
		}
	}
	flat := filteredFlatten(args[0], int(ignore))
	rows := make([][]Value, len(flat))
	for i, v := range flat {
		rows[i] = []Value{v}
	}
	return ArrayValue(rows)
}

func toRowFn(ctx *EvalContext, args []Value) Value {
	ignore := 0.0
	var errv Value
	if len(args) == 2 {
		ignore, errv = toNumber(args[1])
		if errv.IsError() {
			return errv
		}
	}
	flat := filteredFlatten(args[0], int(ignore))
	return ArrayValue([][]Value{flat})
}

func wrapRowsFn(ctx *EvalContext, args []Value) Value {
	flat := flattenToSlice(args[0])
	width, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	pad := NullValue()
	if len(args) == 3 {
		pad = Single(args[2])
	}
	w := int(width)
	if w <= 0 {
		return ErrorValue(ErrValue, "WRAPROWS: width must be positive")
	}
	var out [][]Value
	for i := 0; i < len(flat); i += w {
		row := make([]Value, w)
		for c := 0; c < w; c++ {
			if i+c < len(flat) {
				row[c] = flat[i+c]
			} else {
				row[c] = pad
			}
		}
		out = append(out, row)
	}
	return ArrayValue(out)
}

func wrapColsFn(ctx *EvalContext, args []Value) Value {
	wrapped := wrapRowsFn(ctx, args)
	if wrapped.IsError() {
		return wrapped
	}
	return ArrayValue(transposeRows(wrapped.Arr.Rows))
}

func clampIndex(n, length int) int {
	if n < 0 {
		n = length + n
		if n < 0 {
			n = 0
		}
	}
	if n > length {
		n = length
	}
	return n
}

func takeFn(ctx *EvalContext, args []Value) Value {
	data := rowsOf(args[0])
	rowsCount, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	n := int(rowsCount)
	var rows [][]Value
	if n >= 0 {
		end := n
		if end > len(data) {
			end = len(data)
		}
		rows = data[:end]
	} else {
		start := len(data) + n
		if start < 0 {
			start = 0
		}
		rows = data[start:]
	}
	if len(args) == 3 {
		colsCount, errv := toNumber(args[2])
		if errv.IsError() {
			return errv
		}
		rows = takeColumns(rows, int(colsCount))
	}
	return ArrayValue(rows)
}

func takeColumns(data [][]Value, n int) [][]Value {
	out := make([][]Value, len(data))
	for i, row := range data {
		if n >= 0 {
			end := n
			if end > len(row) {
				end = len(row)
			}
			out[i] = row[:end]
		} else {
			start := len(row) + n
			if start < 0 {
				start = 0
			}
			out[i] = row[start:]
		}
	}
	return out
}

func dropFn(ctx *EvalContext, args []Value) Value {
	data := rowsOf(args[0])
	rowsCount, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	n := int(rowsCount)
	var rows [][]Value
	if n >= 0 {
		start := n
		if start > len(data) {
			start = len(data)
		}
		rows = data[start:]
	} else {
		end := len(data) + n
		if end < 0 {
			end = 0
		}
		rows = data[:end]
	}
	if len(args) == 3 {
		colsCount, errv := toNumber(args[2])
		if errv.IsError() {
			return errv
		}
		rows = dropColumns(rows, int(colsCount))
	}
	return ArrayValue(rows)
}

func dropColumns(data [][]Value, n int) [][]Value {
	out := make([][]Value, len(data))
	for i, row := range data {
		if n >= 0 {
			start := n
			if start > len(row) {
				start = len(row)
			}
			out[i] = row[start:]
		} else {
			end := len(row) + n
			if end < 0 {
				end = 0
			}
			out[i] = row[:end]
		}
	}
	return out
}

func expandFn(ctx *EvalContext, args []Value) Value {
	data := rowsOf(args[0])
	rowsCount, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	colsCount, errv := toNumber(args[2])
	if errv.IsError() {
		return errv
	}
	pad := ErrorValue(ErrNA, "")
	if len(args) == 4 {
		pad = Single(args[3])
	}
	targetRows := int(rowsCount)
	targetCols := int(colsCount)
	out := make([][]Value, targetRows)
	for r := 0; r < targetRows; r++ {
		row := make([]Value, targetCols)
		for c := 0; c < targetCols; c++ {
			if r < len(data) && c < len(data[r]) {
				row[c] = data[r][c]
			} else {
				row[c] = pad
			}
		}
		out[r] = row
	}
	return ArrayValue(out)
}

func resolveIndex1Based(n, length int) (int, bool) {
	if n > 0 {
		if n > length {
			return 0, false
		}
		return n - 1, true
	}
	if n < 0 {
		idx := length + n
		if idx < 0 {
			return 0, false
		}
		return idx, true
	}
	return 0, false
}

func chooseColsFn(ctx *EvalContext, args []Value) Value {
	data := rowsOf(args[0])
	numCols := 0
	if len(data) > 0 {
		numCols = len(data[0])
	}
	var indices []int
	for _, a := range args[1:] {
		n, errv := toNumber(a)
		if errv.IsError() {
			return errv
		}
		idx, ok := resolveIndex1Based(int(n), numCols)
		if !ok {
			return ErrorValue(ErrValue, "CHOOSECOLS: index out of range")
		}
		indices = append(indices, idx)
	}
	out := make([][]Value, len(data))
	for r, row := range data {
		newRow := make([]Value, len(indices))
		for i, c := range indices {
			if c < len(row) {
				newRow[i] = row[c]
			}
		}
		out[r] = newRow
	}
	return ArrayValue(out)
}

func chooseRowsFn(ctx *EvalContext, args []Value) Value {
	data := rowsOf(args[0])
	var indices []int
	for _, a := range args[1:] {
		n, errv := toNumber(a)
		if errv.IsError() {
			return errv
		}
		idx, ok := resolveIndex1Based(int(n), len(data))
		if !ok {
			return ErrorValue(ErrValue, "CHOOSEROWS: index out of range")
		}
		indices = append(indices, idx)
	}
	out := make([][]Value, len(indices))
	for i, r := range indices {
		out[i] = data[r]
	}
	return ArrayValue(out)
}

func hstackFn(ctx *EvalContext, args []Value) Value {
	grids := make([][][]Value, len(args))
	maxRows := 0
	for i, a := range args {
		grids[i] = rowsOf(a)
		if len(grids[i]) > maxRows {
			maxRows = len(grids[i])
		}
	}
	out := make([][]Value, maxRows)
	for r := 0; r < maxRows; r++ {
		var row []Value
		for _, g := range grids {
			if r < len(g) {
				row = append(row, g[r]...)
			} else if len(g) > 0 {
				for range g[0] {
					row = append(row, ErrorValue(ErrNA, ""))
				}
			}
		}
		out[r] = row
	}
	return ArrayValue(out)
}

func vstackFn(ctx *EvalContext, args []Value) Value {
	maxCols := 0
	grids := make([][][]Value, len(args))
	for i, a := range args {
		grids[i] = rowsOf(a)
		for _, row := range grids[i] {
			if len(row) > maxCols {
				maxCols = len(row)
			}
		}
	}
	var out [][]Value
	for _, g := range grids {
		for _, row := range g {
			newRow := make([]Value, maxCols)
			for c := 0; c < maxCols; c++ {
				if c < len(row) {
					newRow[c] = row[c]
				} else {
					newRow[c] = ErrorValue(ErrNA, "")
				}
			}
			out = append(out, newRow)
		}
	}
	return ArrayValue(out)
}
