package plan

import (
	"errors"
	"fmt"

	"github.com/dhamidi/parsekit/scanner"
)

var ErrInvalidPlan = errors.New("invalid plan")

// exec runs one lowered statement. It returns the label of a pending break,
// or zero to continue with the next statement.
type exec func(fr *frame) Label

type frame struct {
	env   Env
	sc    *scanner.Scanner
	bools []bool
	ints  []int
	pos   []scanner.Position
	vals  []any
}

func newFrame(env Env, locals Locals) *frame {
	return &frame{
		env:   env,
		sc:    env.Scanner(),
		bools: make([]bool, locals.Bools),
		ints:  make([]int, locals.Ints),
		pos:   make([]scanner.Position, locals.Positions),
		vals:  make([]any, locals.Values),
	}
}

type loweredFunc struct {
	name   string
	locals Locals
	result Fragment
	body   exec
}

// Program is a Plan lowered to Go closures. It holds no per-call state and may
// be run concurrently against different environments.
type Program struct {
	plan  *Plan
	funcs []*loweredFunc
	main  *loweredFunc
}

// Outcome is the result of running a Program.
type Outcome struct {
	Matched bool
	Start   int
	End     int
	Value   any
}

func (p *Program) Plan() *Plan {
	return p.plan
}

// Run executes the program against env's scanner, starting at its cursor.
func (p *Program) Run(env Env) Outcome {
	return p.main.run(env)
}

func (f *loweredFunc) run(env Env) Outcome {
	fr := newFrame(env, f.locals)
	f.body(fr)
	return Outcome{
		Matched: fr.bools[f.result.Success],
		Start:   fr.ints[f.result.Start],
		End:     fr.ints[f.result.End],
		Value:   fr.vals[f.result.Value],
	}
}

// Lower validates p and turns it into a Program.
func Lower(p *Plan) (*Program, error) {
	if p == nil || p.Main == nil {
		return nil, fmt.Errorf("%w: no entry function", ErrInvalidPlan)
	}

	prog := &Program{
		plan:  p,
		funcs: make([]*loweredFunc, len(p.Funcs)),
	}
	for i, f := range p.Funcs {
		if f.Index != i {
			return nil, fmt.Errorf("%w: func %s has index %d at position %d", ErrInvalidPlan, f.Name, f.Index, i)
		}
		prog.funcs[i] = &loweredFunc{name: f.Name, locals: f.Locals, result: f.Result}
	}

	for i, f := range p.Funcs {
		l := &lowerer{prog: prog}
		body, err := l.block(f.Body)
		if err != nil {
			return nil, fmt.Errorf("func %s: %w", f.Name, err)
		}
		prog.funcs[i].body = body
	}

	prog.main = prog.funcs[p.Main.Index]
	return prog, nil
}

type lowerer struct {
	prog   *Program
	labels []Label
}

func (l *lowerer) push(label Label) error {
	if label == 0 {
		return fmt.Errorf("%w: zero label", ErrInvalidPlan)
	}
	for _, x := range l.labels {
		if x == label {
			return fmt.Errorf("%w: label %v nested in itself", ErrInvalidPlan, label)
		}
	}
	l.labels = append(l.labels, label)
	return nil
}

func (l *lowerer) pop() {
	l.labels = l.labels[:len(l.labels)-1]
}

func (l *lowerer) inScope(label Label) bool {
	for _, x := range l.labels {
		if x == label {
			return true
		}
	}
	return false
}

func (l *lowerer) block(b Block) (exec, error) {
	execs := make([]exec, 0, len(b.Stmts))
	for _, s := range b.Stmts {
		e, err := l.stmt(s)
		if err != nil {
			return nil, err
		}
		execs = append(execs, e)
	}

	switch len(execs) {
	case 0:
		return func(*frame) Label { return 0 }, nil
	case 1:
		return execs[0], nil
	}

	return func(fr *frame) Label {
		for _, e := range execs {
			if label := e(fr); label != 0 {
				return label
			}
		}
		return 0
	}, nil
}

func (l *lowerer) labeled(label Label, b Block) (exec, error) {
	if err := l.push(label); err != nil {
		return nil, err
	}
	defer l.pop()
	return l.block(b)
}

func (l *lowerer) stmt(s Stmt) (exec, error) {
	switch s := s.(type) {
	case BlockStmt:
		inner, err := l.labeled(s.Label, s.Block)
		if err != nil {
			return nil, err
		}
		label := s.Label
		return func(fr *frame) Label {
			if pending := inner(fr); pending != label {
				return pending
			}
			return 0
		}, nil

	case BreakStmt:
		if !l.inScope(s.Label) {
			return nil, fmt.Errorf("%w: break to %v outside its block", ErrInvalidPlan, s.Label)
		}
		label := s.Label
		return func(*frame) Label { return label }, nil

	case LoopStmt:
		inner, err := l.labeled(s.Label, s.Block)
		if err != nil {
			return nil, err
		}
		label := s.Label
		return func(fr *frame) Label {
			for {
				if pending := inner(fr); pending != 0 {
					if pending == label {
						return 0
					}
					return pending
				}
			}
		}, nil

	case IfStmt:
		then, err := l.block(s.Then)
		if err != nil {
			return nil, err
		}
		var els exec
		if len(s.Else.Stmts) > 0 {
			if els, err = l.block(s.Else); err != nil {
				return nil, err
			}
		}
		cond := s.Cond
		return func(fr *frame) Label {
			if fr.bools[cond] {
				return then(fr)
			}
			if els != nil {
				return els(fr)
			}
			return 0
		}, nil

	case AssignBoolStmt:
		value, target := s.Value, s.Target
		return func(fr *frame) Label {
			fr.bools[target] = value
			return 0
		}, nil

	case AssignIntStmt:
		value, target := s.Value, s.Target
		return func(fr *frame) Label {
			fr.ints[target] = value
			return 0
		}, nil

	case CopyIntStmt:
		source, target := s.Source, s.Target
		return func(fr *frame) Label {
			fr.ints[target] = fr.ints[source]
			return 0
		}, nil

	case IncrementStmt:
		target := s.Target
		return func(fr *frame) Label {
			fr.ints[target]++
			return 0
		}, nil

	case LessThanStmt:
		a, value, target := s.A, s.Value, s.Target
		return func(fr *frame) Label {
			fr.bools[target] = fr.ints[a] < value
			return 0
		}, nil

	case EqualIntStmt:
		a, b, target := s.A, s.B, s.Target
		return func(fr *frame) Label {
			fr.bools[target] = fr.ints[a] == fr.ints[b]
			return 0
		}, nil

	case SavePositionStmt:
		target := s.Target
		return func(fr *frame) Label {
			fr.pos[target] = fr.sc.Cursor.Position()
			return 0
		}, nil

	case ResetPositionStmt:
		source := s.Source
		return func(fr *frame) Label {
			fr.sc.Cursor.ResetPosition(fr.pos[source])
			return 0
		}, nil

	case OffsetStmt:
		target := s.Target
		return func(fr *frame) Label {
			fr.ints[target] = fr.sc.Cursor.Offset()
			return 0
		}, nil

	case SeekStmt:
		offset := s.Offset
		return func(fr *frame) Label {
			fr.sc.Cursor.AdvanceTo(fr.ints[offset])
			return 0
		}, nil

	case SkipWhiteSpaceStmt:
		return func(fr *frame) Label {
			fr.sc.SkipWhiteSpace()
			return 0
		}, nil

	case EofStmt:
		target := s.Target
		return func(fr *frame) Label {
			fr.bools[target] = fr.sc.Cursor.Eof()
			return 0
		}, nil

	case MatchStmt:
		return l.match(s)

	case DispatchStmt:
		return l.dispatch(s)

	case CallStmt:
		if s.Func < 0 || s.Func >= len(l.prog.funcs) {
			return nil, fmt.Errorf("%w: call to unknown func %d", ErrInvalidPlan, s.Func)
		}
		callee := l.prog.funcs[s.Func]
		success, value, start, end := s.Success, s.Value, s.Start, s.End
		return func(fr *frame) Label {
			out := callee.run(fr.env)
			fr.bools[success] = out.Matched
			fr.vals[value] = out.Value
			fr.ints[start] = out.Start
			fr.ints[end] = out.End
			return 0
		}, nil

	case InvokeStmt:
		if s.Invoke == nil {
			return nil, fmt.Errorf("%w: invoke %s has no function", ErrInvalidPlan, s.Name)
		}
		invoke := s.Invoke
		success, value, start, end := s.Success, s.Value, s.Start, s.End
		return func(fr *frame) Label {
			v, st, en, ok := invoke(fr.env)
			fr.bools[success] = ok
			if ok {
				fr.vals[value] = v
				fr.ints[start] = st
				fr.ints[end] = en
			}
			return 0
		}, nil

	case ConstStmt:
		value, target := s.Value, s.Target
		return func(fr *frame) Label {
			fr.vals[target] = value
			return 0
		}, nil

	case CopyValueStmt:
		source, target := s.Source, s.Target
		return func(fr *frame) Label {
			fr.vals[target] = fr.vals[source]
			return 0
		}, nil

	case MakeStmt:
		if s.New == nil {
			return nil, fmt.Errorf("%w: make without constructor", ErrInvalidPlan)
		}
		construct, target := s.New, s.Target
		return func(fr *frame) Label {
			fr.vals[target] = construct()
			return 0
		}, nil

	case AppendStmt:
		if s.Append == nil {
			return nil, fmt.Errorf("%w: append without function", ErrInvalidPlan)
		}
		appendFn, elem, list := s.Append, s.Elem, s.List
		return func(fr *frame) Label {
			fr.vals[list] = appendFn(fr.vals[list], fr.vals[elem])
			return 0
		}, nil

	case TupleStmt:
		if s.Make == nil {
			return nil, fmt.Errorf("%w: tuple without constructor", ErrInvalidPlan)
		}
		makeFn, sources, target := s.Make, s.Sources, s.Target
		return func(fr *frame) Label {
			values := make([]any, len(sources))
			for i, src := range sources {
				values[i] = fr.vals[src]
			}
			fr.vals[target] = makeFn(values)
			return 0
		}, nil

	case TransformStmt:
		if s.Transform == nil {
			return nil, fmt.Errorf("%w: transform without function", ErrInvalidPlan)
		}
		transform, source, target := s.Transform, s.Source, s.Target
		return func(fr *frame) Label {
			fr.vals[target] = transform(fr.vals[source])
			return 0
		}, nil

	case PredicateStmt:
		if s.Predicate == nil {
			return nil, fmt.Errorf("%w: predicate without function", ErrInvalidPlan)
		}
		predicate, source, target := s.Predicate, s.Source, s.Target
		return func(fr *frame) Label {
			fr.bools[target] = predicate(fr.vals[source])
			return 0
		}, nil

	case SpanStmt:
		if s.Transform == nil {
			return nil, fmt.Errorf("%w: span without function", ErrInvalidPlan)
		}
		transform, source, start, end, target := s.Transform, s.Source, s.Start, s.End, s.Target
		return func(fr *frame) Label {
			span := scanner.NewSpan(fr.sc.Buffer(), fr.ints[start], fr.ints[end])
			fr.vals[target] = transform(fr.vals[source], span)
			return 0
		}, nil
	}

	return nil, fmt.Errorf("%w: unsupported statement %T", ErrInvalidPlan, s)
}

func (l *lowerer) match(s MatchStmt) (exec, error) {
	if s.Match == nil {
		return nil, fmt.Errorf("%w: match %s has no function", ErrInvalidPlan, s.Name)
	}
	match, skip := s.Match, s.SkipWhiteSpace
	success, value, start, end := s.Success, s.Value, s.Start, s.End
	return func(fr *frame) Label {
		sc := fr.sc
		entry := sc.Cursor.Position()
		if skip {
			sc.SkipWhiteSpace()
		}
		from := sc.Cursor.Offset()
		v, ok := match(sc)
		if !ok {
			sc.Cursor.ResetPosition(entry)
			fr.bools[success] = false
			return 0
		}
		fr.bools[success] = true
		fr.vals[value] = v
		fr.ints[start] = from
		fr.ints[end] = sc.Cursor.Offset()
		return 0
	}, nil
}

func (l *lowerer) dispatch(s DispatchStmt) (exec, error) {
	cases := make([]exec, len(s.Cases))
	for i, c := range s.Cases {
		e, err := l.block(c)
		if err != nil {
			return nil, err
		}
		cases[i] = e
	}
	for ch, i := range s.Table {
		if i < 0 || i >= len(cases) {
			return nil, fmt.Errorf("%w: dispatch of %q to missing case %d", ErrInvalidPlan, ch, i)
		}
	}
	var def exec
	if len(s.Default.Stmts) > 0 {
		var err error
		if def, err = l.block(s.Default); err != nil {
			return nil, err
		}
	}

	table, skip := s.Table, s.SkipWhiteSpace
	return func(fr *frame) Label {
		if skip {
			fr.sc.SkipWhiteSpace()
		}
		if i, ok := table[fr.sc.Cursor.Current()]; ok {
			return cases[i](fr)
		}
		if def != nil {
			return def(fr)
		}
		return 0
	}, nil
}
