package formula

import (
	"fmt"
	"strings"
)

// Evaluate is the top-level entry point (spec §4.4): a post-order walk of
// tree against ctx, returning the result value plus every cell the walk
// touched. Callers build ctx with NewEvalContext and set CurrentCell /
// DefaultSheet before calling.
func Evaluate(tree ASTNode, ctx *EvalContext) EvalResult {
	v := tree.Eval(ctx)
	return EvalResult{Value: v, Dependencies: *ctx.deps}
}

// EvaluateFormula parses formulaText and evaluates it in one step.
func EvaluateFormula(formulaText string, ctx *EvalContext) (EvalResult, error) {
	tree, err := Parse(formulaText)
	if err != nil {
		return EvalResult{}, err
	}
	return Evaluate(tree, ctx), nil
}

// specialForms bypasses ordinary eager-evaluate-every-argument dispatch for
// three reasons (spec §4.5, §9 Design Notes):
//   - reference-aware functions (ROW, COLUMN, OFFSET) need the argument's
//     address, not its evaluated value;
//   - short-circuiting/scope-introducing forms (IF family, SWITCH, CHOOSE,
//     LAMBDA, LET) must not evaluate branches they don't take, or must
//     thread a growing Scope across their own argument list;
//   - error-trapping forms (ISERROR, ISNA, ERROR.TYPE) must observe an
//     Error argument instead of having it returned before their body runs.
var specialForms = map[string]func(ctx *EvalContext, args []ASTNode) Value{
	"ROW":        rowFn,
	"COLUMN":     columnFn,
	"OFFSET":     offsetFn,
	"IF":         ifFn,
	"IFS":        ifsFn,
	"IFERROR":    ifErrorFn,
	"IFNA":       ifNAFn,
	"IFBLANK":    ifBlankFn,
	"SWITCH":     switchFn,
	"CHOOSE":     chooseFn,
	"LAMBDA":     lambdaFn,
	"LET":        letFn,
	"ISERROR":    isErrorFormFn,
	"ISNA":       isNAFormFn,
	"ERROR.TYPE": errorTypeFormFn,
}

func callFunction(ctx *EvalContext, name string, argNodes []ASTNode) Value {
	upper := strings.ToUpper(name)

	if bound, ok := ctx.Scope.Lookup(upper); ok && bound.IsLambda() {
		return invokeLambda(ctx, bound.Lambda, argNodes)
	}

	if fn, ok := specialForms[upper]; ok {
		return fn(ctx, argNodes)
	}

	entry, ok := ctx.Functions.lookup(upper)
	if !ok {
		return ErrorValue(ErrName, "unrecognized function: "+upper)
	}

	args := make([]Value, len(argNodes))
	for i, node := range argNodes {
		v := node.Eval(ctx)
		if v.IsError() {
			return v
		}
		args[i] = v
	}
	if len(args) < entry.minArgs || (entry.maxArgs >= 0 && len(args) > entry.maxArgs) {
		return ErrorValue(ErrValue, fmt.Sprintf("%s: wrong number of arguments", upper))
	}
	return entry.body(ctx, args)
}

// invokeLambda binds positional arguments into a fresh scope nested under
// the lambda's captured closure scope (spec §9 Design Notes), then
// evaluates the body in that scope. Arguments beyond the supplied count are
// bound to an omitted Null so ISOMITTED can detect them.
func invokeLambda(ctx *EvalContext, lam *Lambda, argNodes []ASTNode) Value {
	values := make([]Value, len(argNodes))
	for i, node := range argNodes {
		v := node.Eval(ctx)
		if v.IsError() {
			return v
		}
		values[i] = v
	}
	return applyLambdaValues(ctx, lam, values)
}

// applyLambdaValues invokes lam with already-evaluated arguments, used by
// MAP/REDUCE/SCAN/BYROW/BYCOL/MAKEARRAY where the caller already holds
// concrete Values rather than AST nodes.
func applyLambdaValues(ctx *EvalContext, lam *Lambda, argVals []Value) Value {
	child := lam.Closure.Child()
	for i, param := range lam.Params {
		if i < len(argVals) {
			child.Bind(param, argVals[i])
		} else {
			child.Bind(param, omittedValue())
		}
	}
	return lam.Body.Eval(ctx.withScope(child))
}

// refAddress extracts the anchor rectangle out of a bare reference
// argument node, without evaluating it to a Value.
func refAddress(node ASTNode) (start, end CellAddress, ok bool) {
	switch n := node.(type) {
	case *CellRef:
		if !n.Valid {
			return CellAddress{}, CellAddress{}, false
		}
		return n.Address, n.Address, true
	case *RangeRef:
		s, e := normalizeRange(n.Start, n.End)
		return s, e, true
	}
	return CellAddress{}, CellAddress{}, false
}

func rowFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) == 0 {
		if ctx.CurrentCell == nil {
			return ErrorValue(ErrRef, "ROW: no current cell in context")
		}
		return NumberValue(float64(ctx.CurrentCell.Row + 1))
	}
	start, _, ok := refAddress(args[0])
	if !ok {
		return ErrorValue(ErrValue, "ROW requires a cell or range reference")
	}
	return NumberValue(float64(start.Row + 1))
}

func columnFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) == 0 {
		if ctx.CurrentCell == nil {
			return ErrorValue(ErrRef, "COLUMN: no current cell in context")
		}
		return NumberValue(float64(ctx.CurrentCell.Column + 1))
	}
	start, _, ok := refAddress(args[0])
	if !ok {
		return ErrorValue(ErrValue, "COLUMN requires a cell or range reference")
	}
	return NumberValue(float64(start.Column + 1))
}

func offsetFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) < 3 {
		return ErrorValue(ErrValue, "OFFSET requires reference, rows, and cols")
	}
	start, end, ok := refAddress(args[0])
	if !ok {
		return ErrorValue(ErrRef, "OFFSET requires a cell or range reference")
	}

	rowsN, errv := evalToNumber(ctx, args[1])
	if errv.IsError() {
		return errv
	}
	colsN, errv := evalToNumber(ctx, args[2])
	if errv.IsError() {
		return errv
	}

	height := end.Row - start.Row + 1
	width := end.Column - start.Column + 1
	if len(args) >= 4 {
		h, errv := evalToNumber(ctx, args[3])
		if errv.IsError() {
			return errv
		}
		height = int(h)
	}
	if len(args) >= 5 {
		w, errv := evalToNumber(ctx, args[4])
		if errv.IsError() {
			return errv
		}
		width = int(w)
	}
	if height <= 0 || width <= 0 {
		return ErrorValue(ErrRef, "OFFSET: height and width must be positive")
	}

	newStart := CellAddress{SheetName: start.SheetName, Row: start.Row + int(rowsN), Column: start.Column + int(colsN)}
	if newStart.Row < 0 || newStart.Column < 0 || newStart.Column > MaxColumn {
		return ErrorValue(ErrRef, "OFFSET: resulting reference is out of range")
	}
	newEnd := CellAddress{SheetName: start.SheetName, Row: newStart.Row + height - 1, Column: newStart.Column + width - 1}

	if height == 1 && width == 1 {
		resolved := ctx.resolveSheet(newStart)
		ctx.addDependency(resolved)
		return ctx.Data.GetCellValue(resolved)
	}

	rs := ctx.resolveSheet(newStart)
	re := ctx.resolveSheet(newEnd)
	for r := rs.Row; r <= re.Row; r++ {
		for c := rs.Column; c <= re.Column; c++ {
			ctx.addDependency(CellAddress{SheetName: rs.SheetName, Row: r, Column: c})
		}
	}
	return ArrayValue(ctx.Data.GetRangeValues(rs, re))
}

func evalToNumber(ctx *EvalContext, node ASTNode) (float64, Value) {
	v := node.Eval(ctx)
	if v.IsError() {
		return 0, v
	}
	return toNumber(v)
}

func ifFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) == 0 {
		return ErrorValue(ErrValue, "IF requires a condition")
	}
	cond := args[0].Eval(ctx)
	if cond.IsError() {
		return cond
	}
	b, errv := toBool(cond)
	if errv.IsError() {
		return errv
	}
	if b {
		if len(args) >= 2 {
			return args[1].Eval(ctx)
		}
		return BoolValue(true)
	}
	if len(args) >= 3 {
		return args[2].Eval(ctx)
	}
	return BoolValue(false)
}

func ifsFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args)%2 != 0 {
		return ErrorValue(ErrValue, "IFS requires condition/value pairs")
	}
	for i := 0; i+1 < len(args); i += 2 {
		cond := args[i].Eval(ctx)
		if cond.IsError() {
			return cond
		}
		b, errv := toBool(cond)
		if errv.IsError() {
			return errv
		}
		if b {
			return args[i+1].Eval(ctx)
		}
	}
	return ErrorValue(ErrNA, "IFS: no condition matched")
}

func ifErrorFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) != 2 {
		return ErrorValue(ErrValue, "IFERROR requires two arguments")
	}
	v := args[0].Eval(ctx)
	if v.IsError() {
		return args[1].Eval(ctx)
	}
	return v
}

func ifNAFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) != 2 {
		return ErrorValue(ErrValue, "IFNA requires two arguments")
	}
	v := args[0].Eval(ctx)
	if v.IsError() && v.ErrKnd == ErrNA {
		return args[1].Eval(ctx)
	}
	return v
}

func ifBlankFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) != 2 {
		return ErrorValue(ErrValue, "IFBLANK requires two arguments")
	}
	v := args[0].Eval(ctx)
	if v.IsError() {
		return v
	}
	if v.IsNull() {
		return args[1].Eval(ctx)
	}
	return v
}

// isErrorFormFn, isNAFormFn, and errorTypeFormFn are special forms rather
// than ordinary registry entries because they must observe an Error value,
// not have it propagate past them before their body runs (spec §4.5's
// "Error arguments propagate unless explicitly trapped by... ISERROR/
// ISNA/ERROR.TYPE").
func isErrorFormFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) != 1 {
		return ErrorValue(ErrValue, "ISERROR requires one argument")
	}
	return BoolValue(Single(args[0].Eval(ctx)).IsError())
}

func isNAFormFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) != 1 {
		return ErrorValue(ErrValue, "ISNA requires one argument")
	}
	v := Single(args[0].Eval(ctx))
	return BoolValue(v.IsError() && v.ErrKnd == ErrNA)
}

func errorTypeFormFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) != 1 {
		return ErrorValue(ErrValue, "ERROR.TYPE requires one argument")
	}
	v := Single(args[0].Eval(ctx))
	if !v.IsError() {
		return ErrorValue(ErrNA, "ERROR.TYPE: argument is not an error")
	}
	n, ok := errorTypeNumber[v.ErrKnd]
	if !ok {
		return ErrorValue(ErrNA, "ERROR.TYPE: unrecognized error kind")
	}
	return NumberValue(n)
}

func switchFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) < 1 {
		return ErrorValue(ErrValue, "SWITCH requires an expression")
	}
	target := args[0].Eval(ctx)
	if target.IsError() {
		return target
	}
	rest := args[1:]
	for i := 0; i+1 < len(rest); i += 2 {
		caseV := rest[i].Eval(ctx)
		if caseV.IsError() {
			return caseV
		}
		if applyComparison("=", target, caseV).Bool {
			return rest[i+1].Eval(ctx)
		}
	}
	if len(rest)%2 == 1 {
		return rest[len(rest)-1].Eval(ctx)
	}
	return ErrorValue(ErrNA, "SWITCH: no matching case")
}

func chooseFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) < 2 {
		return ErrorValue(ErrValue, "CHOOSE requires an index and at least one value")
	}
	idxV := args[0].Eval(ctx)
	if idxV.IsError() {
		return idxV
	}
	n, errv := toNumber(idxV)
	if errv.IsError() {
		return errv
	}
	i := int(n)
	if i < 1 || i > len(args)-1 {
		return ErrorValue(ErrValue, "CHOOSE: index out of range")
	}
	return args[i].Eval(ctx)
}

// lambdaFn builds a Lambda value from parameter name nodes (each must be a
// bare name, parsed as a CellRef since the lexer can't distinguish a
// parameter name from a column-only address at lex time) plus a final,
// unevaluated body node (spec §9 Design Notes).
func lambdaFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) < 1 {
		return ErrorValue(ErrValue, "LAMBDA requires a body")
	}
	params := make([]string, 0, len(args)-1)
	for _, node := range args[:len(args)-1] {
		ref, ok := node.(*CellRef)
		if !ok {
			return ErrorValue(ErrValue, "LAMBDA: parameter must be a bare name")
		}
		params = append(params, ref.Lexeme)
	}
	body := args[len(args)-1]
	return LambdaVal(&Lambda{Params: params, Body: body, Closure: ctx.Scope})
}

// letFn binds name/value pairs into one growing scope, each value
// expression seeing the names bound before it, then evaluates a final
// calculation expression in that scope.
func letFn(ctx *EvalContext, args []ASTNode) Value {
	if len(args) < 3 || len(args)%2 != 1 {
		return ErrorValue(ErrValue, "LET requires name/value pairs and a calculation")
	}
	child := ctx.Scope.Child()
	scoped := ctx.withScope(child)
	pairs := args[:len(args)-1]
	for i := 0; i+1 < len(pairs); i += 2 {
		nameNode, ok := pairs[i].(*CellRef)
		if !ok {
			return ErrorValue(ErrValue, "LET: name must be a bare identifier")
		}
		val := pairs[i+1].Eval(scoped)
		if val.IsError() {
			return val
		}
		child.Bind(nameNode.Lexeme, val)
	}
	return args[len(args)-1].Eval(scoped)
}
