// Package plan defines the flattened execution plan that combinator trees are
// compiled into.
//
// A Plan is an imperative program: a set of functions whose bodies are
// ordered statements operating on typed, function-scoped locals. Control flow
// is expressed with nested labeled blocks, loops, conditionals and breaks, so
// a plan can be lowered to any target that has blocks and labeled jumps. Plans
// are pure data. Lower turns a plan into a Program of Go closures once; the
// Program is then reused for every input.
package plan

import (
	"fmt"

	"github.com/dhamidi/parsekit/scanner"
)

type (
	// Plan is a compiled combinator tree. Main is the entry function; Funcs
	// holds every function, including Main, indexed by Func.Index.
	Plan struct {
		Funcs []*Func
		Main  *Func
	}

	// Func is a named unit of the plan. Deferred combinators are planned as
	// functions so that cyclic grammars compile to finite plans.
	Func struct {
		Index  int
		Name   string
		Locals Locals
		Body   Block
		Result Fragment
	}

	// Locals records how many locals of each kind a function frame needs.
	Locals struct {
		Bools     int
		Ints      int
		Positions int
		Values    int
	}

	// Block is an ordered sequence of statements.
	Block struct {
		Stmts []Stmt
	}

	// Stmt is an operation in a block.
	Stmt interface {
		stmt()
	}

	// BoolVar is a function-scoped boolean local.
	BoolVar int

	// IntVar is a function-scoped integer local. Offsets are stored in ints.
	IntVar int

	// PosVar is a function-scoped local holding a scanner position.
	PosVar int

	// ValueVar is a function-scoped local holding a parsed value.
	ValueVar int

	// Label names a block or loop that a BreakStmt can jump out of. The zero
	// Label is never assigned.
	Label int
)

// Fragment is the contribution of one combinator to a plan: the statements
// to run and the locals that hold its outcome once they have run.
type Fragment struct {
	Stmts   []Stmt
	Success BoolVar
	Value   ValueVar
	Start   IntVar
	End     IntVar
}

// Add appends statements to the fragment.
func (f *Fragment) Add(stmts ...Stmt) {
	f.Stmts = append(f.Stmts, stmts...)
}

// Env is the runtime state a Program executes against.
type Env interface {
	Scanner() *scanner.Scanner
}

// MatchFunc recognizes a primitive at the scanner's cursor. On failure the
// cursor may be left anywhere; MatchStmt restores it.
type MatchFunc func(s *scanner.Scanner) (any, bool)

// InvokeFunc runs an external parser. On failure it must leave the cursor
// where it found it.
type InvokeFunc func(env Env) (value any, start, end int, ok bool)

func (a Plan) String() string {
	return fmt.Sprintf("Plan (%d funcs)", len(a.Funcs))
}

func (a Func) String() string {
	return fmt.Sprintf("Func %s (%d statements)", a.Name, len(a.Body.Stmts))
}

func (a Block) String() string {
	return fmt.Sprintf("Block (%d statements)", len(a.Stmts))
}

func (l Label) String() string {
	return fmt.Sprintf("L%d", int(l))
}

// BlockStmt runs a nested block. A BreakStmt with the block's label ends it.
type BlockStmt struct {
	Label Label
	Block Block
}

// BreakStmt jumps to the end of the enclosing block or loop with Label.
type BreakStmt struct {
	Label Label
}

// LoopStmt runs Block repeatedly until a BreakStmt with Label is reached.
type LoopStmt struct {
	Label Label
	Block Block
}

// IfStmt runs Then when Cond is true and Else otherwise.
type IfStmt struct {
	Cond BoolVar
	Then Block
	Else Block
}

// AssignBoolStmt assigns a constant to a boolean local.
type AssignBoolStmt struct {
	Value  bool
	Target BoolVar
}

// AssignIntStmt assigns a constant to an integer local.
type AssignIntStmt struct {
	Value  int
	Target IntVar
}

// CopyIntStmt assigns one integer local to another.
type CopyIntStmt struct {
	Source IntVar
	Target IntVar
}

// IncrementStmt adds one to an integer local.
type IncrementStmt struct {
	Target IntVar
}

// LessThanStmt sets Target to whether A < Value.
type LessThanStmt struct {
	A      IntVar
	Value  int
	Target BoolVar
}

// EqualIntStmt sets Target to whether A == B.
type EqualIntStmt struct {
	A      IntVar
	B      IntVar
	Target BoolVar
}

// SavePositionStmt stores the cursor position.
type SavePositionStmt struct {
	Target PosVar
}

// ResetPositionStmt moves the cursor back to a stored position.
type ResetPositionStmt struct {
	Source PosVar
}

// OffsetStmt stores the cursor offset.
type OffsetStmt struct {
	Target IntVar
}

// SeekStmt moves the cursor forward to the offset held by Offset.
type SeekStmt struct {
	Offset IntVar
}

// SkipWhiteSpaceStmt advances the cursor past white space.
type SkipWhiteSpaceStmt struct{}

// EofStmt sets Target to whether the cursor is at the end of the input.
type EofStmt struct {
	Target BoolVar
}

// MatchStmt runs a scanner primitive. When SkipWhiteSpace is set white space
// is skipped first; Start is the offset after skipping. On failure the
// cursor is restored to where it was before skipping.
type MatchStmt struct {
	Name           string
	SkipWhiteSpace bool
	Match          MatchFunc
	Success        BoolVar
	Value          ValueVar
	Start          IntVar
	End            IntVar
}

// DispatchStmt reads the rune under the cursor, optionally after skipping
// white space, and runs the case the table maps it to, or Default.
type DispatchStmt struct {
	SkipWhiteSpace bool
	Table          map[rune]int
	Cases          []Block
	Default        Block
}

// CallStmt runs a function with a fresh frame and copies its result
// fragment into the caller's locals.
type CallStmt struct {
	Func    int
	Success BoolVar
	Value   ValueVar
	Start   IntVar
	End     IntVar
}

// InvokeStmt runs a parser that has no plan of its own.
type InvokeStmt struct {
	Name    string
	Invoke  InvokeFunc
	Success BoolVar
	Value   ValueVar
	Start   IntVar
	End     IntVar
}

// ConstStmt assigns a constant value.
type ConstStmt struct {
	Value  any
	Target ValueVar
}

// CopyValueStmt assigns one value local to another.
type CopyValueStmt struct {
	Source ValueVar
	Target ValueVar
}

// MakeStmt assigns a freshly constructed value, such as an empty list.
type MakeStmt struct {
	New    func() any
	Target ValueVar
}

// AppendStmt appends Elem to the list held by List.
type AppendStmt struct {
	Append func(list, elem any) any
	Elem   ValueVar
	List   ValueVar
}

// TupleStmt combines several values into one.
type TupleStmt struct {
	Make    func(values []any) any
	Sources []ValueVar
	Target  ValueVar
}

// TransformStmt applies a pure function to a value.
type TransformStmt struct {
	Transform func(any) any
	Source    ValueVar
	Target    ValueVar
}

// PredicateStmt evaluates a predicate over a value.
type PredicateStmt struct {
	Predicate func(any) bool
	Source    ValueVar
	Target    BoolVar
}

// SpanStmt applies a function to a value and the span [Start, End) of the
// input.
type SpanStmt struct {
	Transform func(value any, span scanner.Span) any
	Source    ValueVar
	Start     IntVar
	End       IntVar
	Target    ValueVar
}

func (BlockStmt) stmt()          {}
func (BreakStmt) stmt()          {}
func (LoopStmt) stmt()           {}
func (IfStmt) stmt()             {}
func (AssignBoolStmt) stmt()     {}
func (AssignIntStmt) stmt()      {}
func (CopyIntStmt) stmt()        {}
func (IncrementStmt) stmt()      {}
func (LessThanStmt) stmt()       {}
func (EqualIntStmt) stmt()       {}
func (SavePositionStmt) stmt()   {}
func (ResetPositionStmt) stmt()  {}
func (OffsetStmt) stmt()         {}
func (SeekStmt) stmt()           {}
func (SkipWhiteSpaceStmt) stmt() {}
func (EofStmt) stmt()            {}
func (MatchStmt) stmt()          {}
func (DispatchStmt) stmt()       {}
func (CallStmt) stmt()           {}
func (InvokeStmt) stmt()         {}
func (ConstStmt) stmt()          {}
func (CopyValueStmt) stmt()      {}
func (MakeStmt) stmt()           {}
func (AppendStmt) stmt()         {}
func (TupleStmt) stmt()          {}
func (TransformStmt) stmt()      {}
func (PredicateStmt) stmt()      {}
func (SpanStmt) stmt()           {}
