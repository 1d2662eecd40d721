package graph

// detectCycles runs a depth-first traversal over the induced path graph.
// Order-only inputs participate: a cycle through them still deadlocks the
// backend's scheduler even though it never affects staleness.
//
// Classic three-state DFS: nodes move from unvisited through the recursion
// stack to permanently done. Hitting a node already on the stack means a
// cycle; the error carries the full path for diagnosability.
func (g *Graph) detectCycles() error {
	consumers := make(map[*FileNode][]*Edge, len(g.Nodes))
	for _, e := range g.Edges {
		for _, lists := range [][]*FileNode{e.Inputs, e.Implicit, e.OrderOnly} {
			for _, in := range lists {
				consumers[in] = append(consumers[in], e)
			}
		}
	}

	done := make(map[*FileNode]bool, len(g.Nodes))
	onStack := make(map[*FileNode]bool)
	var stack []*FileNode

	var visit func(n *FileNode) error
	visit = func(n *FileNode) error {
		if done[n] {
			return nil
		}
		if onStack[n] {
			// Slice the recursion stack from the first occurrence of n to
			// report the complete cycle.
			var cyclePath []string
			start := 0
			for i, s := range stack {
				if s == n {
					start = i
					break
				}
			}
			for _, s := range stack[start:] {
				cyclePath = append(cyclePath, s.Path)
			}
			cyclePath = append(cyclePath, n.Path)
			return &CycleError{Path: cyclePath}
		}

		onStack[n] = true
		stack = append(stack, n)

		for _, e := range consumers[n] {
			for _, out := range e.Outputs {
				if err := visit(out); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, n)
		done[n] = true
		return nil
	}

	for _, n := range g.Nodes {
		if !done[n] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}
