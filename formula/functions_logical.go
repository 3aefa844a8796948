package formula

func registerLogicalFunctions(r *Registry) {
	r.RegisterFunction("AND", 1, -1, andFn)
	r.RegisterFunction("OR", 1, -1, orFn)
	r.RegisterFunction("XOR", 1, -1, xorFn)
	r.RegisterFunction("NOT", 1, 1, notFn)
	r.RegisterFunction("TRUE", 0, 0, func(ctx *EvalContext, args []Value) Value { return BoolValue(true) })
	r.RegisterFunction("FALSE", 0, 0, func(ctx *EvalContext, args []Value) Value { return BoolValue(false) })
	r.RegisterFunction("NA", 0, 0, func(ctx *EvalContext, args []Value) Value { return ErrorValue(ErrNA, "") })
	r.RegisterFunction("ISBLANK", 1, 1, isBlankFn)
	r.RegisterFunction("ISNUMBER", 1, 1, isNumberFn)
	r.RegisterFunction("ISTEXT", 1, 1, isTextFn)
	r.RegisterFunction("ISLOGICAL", 1, 1, isLogicalFn)
	r.RegisterFunction("ISEVEN", 1, 1, isEvenFn)
	r.RegisterFunction("ISODD", 1, 1, isOddFn)
	// ISERROR, ISNA, and ERROR.TYPE are special forms (evaluator.go) since
	// they must observe an Error value rather than have it propagate past
	// them before reaching here.
}

func boolsOf(args []Value) ([]bool, Value) {
	flat := Flatten(args...)
	out := make([]bool, 0, len(flat))
	for _, v := range flat {
		if v.IsError() {
			return nil, v
		}
		b, errv := toBool(v)
		if errv.IsError() {
			return nil, errv
		}
		out = append(out, b)
	}
	return out, Value{}
}

func andFn(ctx *EvalContext, args []Value) Value {
	bs, errv := boolsOf(args)
	if errv.IsError() {
		return errv
	}
	for _, b := range bs {
		if !b {
			return BoolValue(false)
		}
	}
	return BoolValue(true)
}

func orFn(ctx *EvalContext, args []Value) Value {
	bs, errv := boolsOf(args)
	if errv.IsError() {
		return errv
	}
	for _, b := range bs {
		if b {
			return BoolValue(true)
		}
	}
	return BoolValue(false)
}

func xorFn(ctx *EvalContext, args []Value) Value {
	bs, errv := boolsOf(args)
	if errv.IsError() {
		return errv
	}
	count := 0
	for _, b := range bs {
		if b {
			count++
		}
	}
	return BoolValue(count%2 == 1)
}

func notFn(ctx *EvalContext, args []Value) Value {
	b, errv := toBool(args[0])
	if errv.IsError() {
		return errv
	}
	return BoolValue(!b)
}

func isBlankFn(ctx *EvalContext, args []Value) Value  { return BoolValue(Single(args[0]).IsNull()) }
func isNumberFn(ctx *EvalContext, args []Value) Value { return BoolValue(Single(args[0]).IsNumber()) }
func isTextFn(ctx *EvalContext, args []Value) Value   { return BoolValue(Single(args[0]).IsString()) }
func isLogicalFn(ctx *EvalContext, args []Value) Value { return BoolValue(Single(args[0]).IsBool()) }

func isEvenFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	return BoolValue(int64(n)%2 == 0)
}

func isOddFn(ctx *EvalContext, args []Value) Value {
	n, errv := toNumber(args[0])
	if errv.IsError() {
		return errv
	}
	return BoolValue(int64(n)%2 != 0)
}

