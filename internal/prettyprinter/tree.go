package prettyprinter

import (
	"fmt"

	"github.com/funvibe/sysmel/internal/asg"
	"github.com/xlab/treeprint"
)

// Tree renders the graph below root as an indented tree. Nodes are expanded
// once; later occurrences print as a back reference.
func Tree(root *asg.Node) string {
	v := &treeVisitor{root: treeprint.New(), visited: make(map[*asg.Node]bool)}
	v.visit(v.root, "", root)
	return v.root.String()
}

type treeVisitor struct {
	root    treeprint.Tree
	visited map[*asg.Node]bool
}

func (v *treeVisitor) visit(parent treeprint.Tree, slot string, node *asg.Node) {
	label := node.String()
	if slot != "" {
		label = slot + ": " + label
	}
	if v.visited[node] {
		parent.AddNode(fmt.Sprintf("%s ^", label))
		return
	}
	v.visited[node] = true

	t := parent.AddBranch(label)
	values := node.Values()
	for i, s := range node.Kind().Slots {
		// Syntactic predecessors only order the source; they would
		// duplicate the whole tree.
		if !s.Role.IsEdge() || s.Role == asg.RoleSyntacticPredecessor {
			continue
		}
		for _, target := range edgeTargets(values[i]) {
			v.visit(t, s.Name, target)
		}
	}
}
