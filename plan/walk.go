package plan

// Visitor is called for every statement reached by Walk. Returning false
// skips the statement's nested blocks.
type Visitor func(s Stmt) bool

// Walk visits the statements of b in order, depth first.
func Walk(b Block, visit Visitor) {
	for _, s := range b.Stmts {
		if !visit(s) {
			continue
		}
		switch s := s.(type) {
		case BlockStmt:
			Walk(s.Block, visit)
		case LoopStmt:
			Walk(s.Block, visit)
		case IfStmt:
			Walk(s.Then, visit)
			Walk(s.Else, visit)
		case DispatchStmt:
			for _, c := range s.Cases {
				Walk(c, visit)
			}
			Walk(s.Default, visit)
		}
	}
}

// Count returns the number of statements in every function of p.
func Count(p *Plan) int {
	n := 0
	for _, f := range p.Funcs {
		Walk(f.Body, func(Stmt) bool {
			n++
			return true
		})
	}
	return n
}
