package asg

func (n *Node) dependenciesWithRole(roles ...SlotRole) []*Node {
	var result []*Node
	for i, slot := range n.kind.Slots {
		matches := false
		for _, role := range roles {
			if slot.Role == role {
				matches = true
				break
			}
		}
		if !matches {
			continue
		}
		switch value := n.values[i].(type) {
		case *Node:
			if value != nil {
				result = append(result, value)
			}
		case []*Node:
			for _, element := range value {
				if element != nil {
					result = append(result, element)
				}
			}
		}
	}
	return result
}

func (n *Node) DataDependencies() []*Node { return n.dependenciesWithRole(RoleDataInput) }
func (n *Node) TypeDependencies() []*Node { return n.dependenciesWithRole(RoleTypeInput) }
func (n *Node) SequencingDependencies() []*Node {
	return n.dependenciesWithRole(RoleSequencingPredecessor)
}
func (n *Node) SequencingDestinations() []*Node {
	return n.dependenciesWithRole(RoleSequencingDestination)
}
func (n *Node) SyntacticDependencies() []*Node {
	return n.dependenciesWithRole(RoleSyntacticPredecessor)
}

// AllDependencies lists every edge target a topological order must respect.
func (n *Node) AllDependencies() []*Node {
	return n.dependenciesWithRole(RoleDataInput, RoleTypeInput, RoleSequencingPredecessor, RoleSyntacticPredecessor)
}

// TopoSort returns every node reachable from roots, dependencies first.
func TopoSort(roots ...*Node) []*Node {
	var result []*Node
	visited := make(map[*Node]bool)
	var visit func(node *Node)
	visit = func(node *Node) {
		if node == nil || visited[node] {
			return
		}
		visited[node] = true
		for _, dependency := range node.AllDependencies() {
			visit(dependency)
		}
		for _, destination := range node.SequencingDestinations() {
			visit(destination)
		}
		result = append(result, node)
	}
	for _, root := range roots {
		visit(root)
	}
	return result
}

// IsReachableBackwards reports whether from can be reached from to by
// following only sequencing predecessor edges. A SequenceConvergence also
// leads back to the ConditionalBranch it closes, since the branch regions
// start at their own SequenceEntry.
func IsReachableBackwards(to, from *Node) bool {
	visited := make(map[*Node]bool)
	pending := []*Node{to}
	for len(pending) > 0 {
		node := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if node == from {
			return true
		}
		if visited[node] {
			continue
		}
		visited[node] = true
		pending = append(pending, node.SequencingDependencies()...)
		if node.IsA(SequenceConvergence) {
			if divergence := node.Node("divergence"); divergence != nil {
				pending = append(pending, divergence)
			}
		}
	}
	return false
}
