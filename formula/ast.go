package formula

// ASTNode is a node in the parsed formula tree (spec §4.2). Each node knows
// how to evaluate itself given a context; this is the "syntax tree... model
// with sum type" shape, expressed as a Go interface with one implementation
// per variant rather than a single tagged struct, since the payloads differ
// too much in shape to share fields usefully.
type ASTNode interface {
	Eval(ctx *EvalContext) Value
	Pos() int
}

type NumberLiteral struct {
	Value float64
	pos   int
}

func (n *NumberLiteral) Eval(ctx *EvalContext) Value { return NumberValue(n.Value) }
func (n *NumberLiteral) Pos() int                    { return n.pos }

type StringLiteral struct {
	Value string
	pos   int
}

func (n *StringLiteral) Eval(ctx *EvalContext) Value { return StringValue(n.Value) }
func (n *StringLiteral) Pos() int                    { return n.pos }

type BooleanLiteral struct {
	Value bool
	pos   int
}

func (n *BooleanLiteral) Eval(ctx *EvalContext) Value { return BoolValue(n.Value) }
func (n *BooleanLiteral) Pos() int                    { return n.pos }

type ErrorLiteral struct {
	Kind ErrorKind
	pos  int
}

func (n *ErrorLiteral) Eval(ctx *EvalContext) Value { return ErrorValue(n.Kind, string(n.Kind)) }
func (n *ErrorLiteral) Pos() int                    { return n.pos }

// CellRef is a name token resolved at parse time against the address
// grammar. When Valid is false (the lexeme does not parse as a full A1
// address — e.g. a bare LAMBDA parameter like "x"), evaluation falls
// through to the Scope, and failing that, #NAME?. When Valid is true, the
// Scope is still consulted first (spec §9 Design Notes), so a LET binding
// can shadow a name that happens to also be a legal address.
type CellRef struct {
	Lexeme  string
	Address CellAddress
	Valid   bool
	pos     int
}

func (n *CellRef) Eval(ctx *EvalContext) Value {
	if v, ok := ctx.Scope.Lookup(n.Lexeme); ok {
		return v
	}
	if !n.Valid {
		return ErrorValue(ErrName, "unrecognized name: "+n.Lexeme)
	}
	addr := ctx.resolveSheet(n.Address)
	ctx.addDependency(addr)
	return ctx.Data.GetCellValue(addr)
}

func (n *CellRef) Pos() int { return n.pos }

// RangeRef is two colon-joined endpoints (spec §4.2, §4.3).
type RangeRef struct {
	Start CellAddress
	End   CellAddress
	pos   int
}

func (n *RangeRef) Eval(ctx *EvalContext) Value {
	start, end := normalizeRange(n.Start, n.End)
	start = ctx.resolveSheet(start)
	end = ctx.resolveSheet(end)

	for r := start.Row; r <= end.Row; r++ {
		for c := start.Column; c <= end.Column; c++ {
			ctx.addDependency(CellAddress{SheetName: start.SheetName, Row: r, Column: c})
		}
	}
	rows := ctx.Data.GetRangeValues(start, end)
	return ArrayValue(rows)
}

func (n *RangeRef) Pos() int { return n.pos }

// normalizeRange orders two endpoints so Start <= End on both axes,
// regardless of which corner the formula author typed first.
func normalizeRange(a, b CellAddress) (CellAddress, CellAddress) {
	start, end := a, b
	if start.Column > end.Column {
		start.Column, end.Column = end.Column, start.Column
	}
	if start.Row > end.Row {
		start.Row, end.Row = end.Row, start.Row
	}
	return start, end
}

// FunctionCall is a built-in or LET/LAMBDA-bound invocation. Args are kept
// unevaluated so reference-aware functions (ROW, OFFSET, INDIRECT, ...) can
// inspect the argument shape before any evaluation happens (spec §4.5).
type FunctionCall struct {
	Name string
	Args []ASTNode
	pos  int
}

func (n *FunctionCall) Eval(ctx *EvalContext) Value {
	return callFunction(ctx, n.Name, n.Args)
}

func (n *FunctionCall) Pos() int { return n.pos }

type BinaryOp struct {
	Op    string
	Left  ASTNode
	Right ASTNode
	pos   int
}

func (n *BinaryOp) Eval(ctx *EvalContext) Value {
	left := n.Left.Eval(ctx)
	if left.IsError() {
		return left
	}
	right := n.Right.Eval(ctx)
	if right.IsError() {
		return right
	}
	return applyBinaryOp(n.Op, left, right)
}

func (n *BinaryOp) Pos() int { return n.pos }

// UnaryOp covers prefix +/- and postfix % (spec §4.1, §4.2).
type UnaryOp struct {
	Op      string
	Operand ASTNode
	Postfix bool
	pos     int
}

func (n *UnaryOp) Eval(ctx *EvalContext) Value {
	v := n.Operand.Eval(ctx)
	if v.IsError() {
		return v
	}
	return applyUnaryOp(n.Op, n.Postfix, v)
}

func (n *UnaryOp) Pos() int { return n.pos }

// ArrayLiteral is a brace-delimited constant grid, "{1,2;3,4}" (spec §4.2).
type ArrayLiteral struct {
	Rows [][]ASTNode
	pos  int
}

func (n *ArrayLiteral) Eval(ctx *EvalContext) Value {
	rows := make([][]Value, len(n.Rows))
	for i, row := range n.Rows {
		values := make([]Value, len(row))
		for j, cell := range row {
			v := cell.Eval(ctx)
			if v.IsError() {
				return v
			}
			values[j] = v
		}
		rows[i] = values
	}
	return ArrayValue(rows)
}

func (n *ArrayLiteral) Pos() int { return n.pos }
