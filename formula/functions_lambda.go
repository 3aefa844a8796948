package formula

func registerLambdaFunctions(r *Registry) {
	r.RegisterFunction("MAP", 2, -1, mapFn)
	r.RegisterFunction("REDUCE", 3, 3, reduceFn)
	r.RegisterFunction("SCAN", 3, 3, scanFn)
	r.RegisterFunction("MAKEARRAY", 3, 3, makeArrayFn)
	r.RegisterFunction("BYROW", 2, 2, byRowFn)
	r.RegisterFunction("BYCOL", 2, 2, byColFn)
	r.RegisterFunction("ISOMITTED", 1, 1, isOmittedFn)
}

func asLambda(v Value, fname string) (*Lambda, Value) {
	if !v.IsLambda() {
		return nil, ErrorValue(ErrValue, fname+": last argument must be a LAMBDA")
	}
	return v.Lambda, Value{}
}

func mapFn(ctx *EvalContext, args []Value) Value {
	lamV := args[len(args)-1]
	lam, errv := asLambda(lamV, "MAP")
	if errv.IsError() {
		return errv
	}
	arrays := args[:len(args)-1]
	grids := make([][][]Value, len(arrays))
	maxRows, maxCols := 0, 0
	for i, a := range arrays {
		grids[i] = rowsOf(a)
		if len(grids[i]) > maxRows {
			maxRows = len(grids[i])
		}
		if len(grids[i]) > 0 && len(grids[i][0]) > maxCols {
			maxCols = len(grids[i][0])
		}
	}
	out := make([][]Value, maxRows)
	for r := 0; r < maxRows; r++ {
		row := make([]Value, maxCols)
		for c := 0; c < maxCols; c++ {
			callArgs := make([]Value, len(grids))
			for i, g := range grids {
				if r < len(g) && c < len(g[r]) {
					callArgs[i] = g[r][c]
				} else {
					callArgs[i] = NullValue()
				}
			}
			result := applyLambdaValues(ctx, lam, callArgs)
			if result.IsError() {
				return result
			}
			row[c] = result
		}
		out[r] = row
	}
	return ArrayValue(out)
}

func reduceFn(ctx *EvalContext, args []Value) Value {
	acc := args[0]
	items := flattenToSlice(args[1])
	lam, errv := asLambda(args[2], "REDUCE")
	if errv.IsError() {
		return errv
	}
	for _, item := range items {
		acc = applyLambdaValues(ctx, lam, []Value{acc, item})
		if acc.IsError() {
			return acc
		}
	}
	return acc
}

func scanFn(ctx *EvalContext, args []Value) Value {
	acc := args[0]
	items := flattenToSlice(args[1])
	lam, errv := asLambda(args[2], "SCAN")
	if errv.IsError() {
		return errv
	}
	rows := make([][]Value, 0, len(items))
	for _, item := range items {
		acc = applyLambdaValues(ctx, lam, []Value{acc, item})
		if acc.IsError() {
			return acc
		}
		rows = append(rows, []Value{acc})
	}
	return ArrayValue(rows)
}

func makeArrayFn(ctx *EvalContext, args []Value) Value {
	rowsN, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	colsN, errv := toNumber(args[1])
	if errv.IsError() {
		return errv
	}
	lam, errv := asLambda(args[2], "MAKEARRAY")
	if errv.IsError() {
		return errv
	}
	out := make([][]Value, int(rowsN))
	for r := 0; r < int(rowsN); r++ {
		row := make([]Value, int(colsN))
		for c := 0; c < int(colsN); c++ {
			v := applyLambdaValues(ctx, lam, []Value{NumberValue(float64(r + 1)), NumberValue(float64(c + 1))})
			if v.IsError() {
				return v
			}
			row[c] = v
		}
		out[r] = row
	}
	return ArrayValue(out)
}

func byRowFn(ctx *EvalContext, args []Value) Value {
	data := rowsOf(args[0])
	lam, errv := asLambda(args[1], "BYROW")
	if errv.IsError() {
		return errv
	}
	out := make([][]Value, len(data))
	for r, row := range data {
		v := applyLambdaValues(ctx, lam, []Value{ArrayValue([][]Value{row})})
		if v.IsError() {
			return v
		}
		out[r] = []Value{v}
	}
	return ArrayValue(out)
}

func byColFn(ctx *EvalContext, args []Value) Value {
	data := transposeRows(rowsOf(args[0]))
	lam, errv := asLambda(args[1], "BYCOL")
	if errv.IsError() {
		return errv
	}
	row := make([]Value, len(data))
	for c, col := range data {
		v := applyLambdaValues(ctx, lam, []Value{ArrayValue([][]Value{col})})
		if v.IsError() {
			return v
		}
		row[c] = v
	}
	return ArrayValue([][]Value{row})
}

func isOmittedFn(ctx *EvalContext, args []Value) Value {
	v := args[0]
	return BoolValue(v.IsNull() && v.Omitted)
}
