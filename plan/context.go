package plan

// Context carries the state shared by every combinator while a tree is being
// compiled: the numbering of labels, the function being planned (which owns
// the locals being declared), and the functions planned so far.
type Context struct {
	// DiscardResult tells the combinator being compiled that its caller only
	// needs the success flag and the span, not the value.
	DiscardResult bool

	number int
	funcs  []*Func
	byKey  map[any]*Func
	curr   *Func
	err    error
}

func NewContext() *Context {
	return &Context{
		byKey: make(map[any]*Func),
	}
}

// NextNumber returns a number unique within this context.
func (c *Context) NextNumber() int {
	c.number++
	return c.number
}

// NextLabel returns a label unique within this context.
func (c *Context) NextLabel() Label {
	return Label(c.NextNumber())
}

func (c *Context) DeclareBool() BoolVar {
	v := BoolVar(c.curr.Locals.Bools)
	c.curr.Locals.Bools++
	return v
}

func (c *Context) DeclareInt() IntVar {
	v := IntVar(c.curr.Locals.Ints)
	c.curr.Locals.Ints++
	return v
}

func (c *Context) DeclarePosition() PosVar {
	v := PosVar(c.curr.Locals.Positions)
	c.curr.Locals.Positions++
	return v
}

func (c *Context) DeclareValue() ValueVar {
	v := ValueVar(c.curr.Locals.Values)
	c.curr.Locals.Values++
	return v
}

// NewFragment declares the outcome locals of a combinator and initializes its
// success flag.
func (c *Context) NewFragment(success bool) Fragment {
	f := Fragment{
		Success: c.DeclareBool(),
		Value:   c.DeclareValue(),
		Start:   c.DeclareInt(),
		End:     c.DeclareInt(),
	}
	f.Add(AssignBoolStmt{Value: success, Target: f.Success})
	return f
}

// Func plans the function identified by key once. The function is registered
// before build runs, so a build that reaches the same key again gets the
// function under construction instead of recursing.
func (c *Context) Func(key any, name string, build func() Fragment) *Func {
	if f, ok := c.byKey[key]; ok {
		return f
	}

	f := &Func{Index: len(c.funcs), Name: name}
	c.funcs = append(c.funcs, f)
	c.byKey[key] = f

	prev, prevDiscard := c.curr, c.DiscardResult
	c.curr, c.DiscardResult = f, false

	result := build()
	f.Body = Block{Stmts: result.Stmts}
	result.Stmts = nil
	f.Result = result

	c.curr, c.DiscardResult = prev, prevDiscard
	return f
}

type mainKey struct{}

// Plan plans build as the entry function and returns the finished plan, or
// the first error recorded with Fail.
func (c *Context) Plan(name string, build func() Fragment) (*Plan, error) {
	main := c.Func(mainKey{}, name, build)
	if c.err != nil {
		return nil, c.err
	}
	return &Plan{Funcs: c.funcs, Main: main}, nil
}

// Fail records an error that makes the plan unusable. Only the first error is
// kept; compilation continues so that callers need not check after each step.
func (c *Context) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *Context) Err() error {
	return c.err
}
