package formula

// Dependency is a single cell the evaluator touched while producing a
// result (spec §3). No deduplication is performed; callers that want a set
// can fold the slice into one.
type Dependency struct {
	SheetID string
	Row     int
	Column  int
}

// DataContext is the interface the embedding application implements to
// supply cell and range contents (spec §6).
type DataContext interface {
	// GetCellValue returns the current value of a cell, or a Null value for
	// an unpopulated one.
	GetCellValue(addr CellAddress) Value
	// GetRangeValues returns a rectangular, row-major grid of values for the
	// inclusive rectangle between start and end (already normalized by the
	// evaluator so start <= end on both axes).
	GetRangeValues(start, end CellAddress) [][]Value
}

// EvalContext carries everything one Evaluate call needs: the caller's data
// access, the function registry, injected clock/entropy, the current-cell
// anchor for zero-arg ROW/COLUMN, the LET/LAMBDA name Scope, and the
// accumulated dependency list.
type EvalContext struct {
	Data         DataContext
	Functions    *Registry
	Clock        Clock
	Random       RandomSource
	CurrentCell  *CellAddress
	DefaultSheet string
	Scope        *Scope

	// deps is a pointer shared across every withScope copy of this context,
	// so a dependency recorded deep inside a LAMBDA body is still visible to
	// the top-level Evaluate call that started the walk.
	deps *[]Dependency
}

// NewEvalContext builds a context ready for one top-level Evaluate call.
func NewEvalContext(data DataContext, functions *Registry) *EvalContext {
	deps := make([]Dependency, 0)
	return &EvalContext{
		Data:      data,
		Functions: functions,
		Clock:     WallClock{},
		Random:    DefaultRandomSource{},
		Scope:     NewScope(),
		deps:      &deps,
	}
}

// withScope returns a shallow copy of ctx with Scope replaced, used when
// entering a LAMBDA/LET body. The deps pointer is copied, not the slice
// itself, so accumulation during the child scope's evaluation still lands
// in the same backing slice the top-level call reads from.
func (ctx *EvalContext) withScope(s *Scope) *EvalContext {
	cp := *ctx
	cp.Scope = s
	return &cp
}

func (ctx *EvalContext) addDependency(addr CellAddress) {
	*ctx.deps = append(*ctx.deps, Dependency{
		SheetID: ctx.sheetOf(addr),
		Row:     addr.Row,
		Column:  addr.Column,
	})
}

func (ctx *EvalContext) sheetOf(addr CellAddress) string {
	if addr.SheetName != "" {
		return addr.SheetName
	}
	return ctx.DefaultSheet
}

// resolveSheet fills in the default sheet name on an address that omitted
// one, for passing along to DataContext.
func (ctx *EvalContext) resolveSheet(addr CellAddress) CellAddress {
	if addr.SheetName == "" {
		addr.SheetName = ctx.DefaultSheet
	}
	return addr
}

// EvalResult is what a top-level Evaluate call returns.
type EvalResult struct {
	Value        Value
	Dependencies []Dependency
}
