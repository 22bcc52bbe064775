package prettyprinter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/funvibe/sysmel/internal/asg"
	"github.com/pkg/errors"
)

// Edge colors of the dot rendering.
const (
	colorSequencing  = "blue"
	colorEffect      = "red"
	colorData        = "green"
	colorType        = "yellow"
	colorDestination = "cyan"
)

// edgeColor returns the color of the edge from node through slot.
func edgeColor(node *asg.Node, slot asg.Slot) string {
	switch slot.Role {
	case asg.RoleDataInput:
		return colorData
	case asg.RoleTypeInput:
		return colorType
	case asg.RoleSequencingDestination:
		return colorDestination
	case asg.RoleSequencingPredecessor:
		// Ordering of value-producing nodes is an effect; pure control
		// nodes only sequence.
		if node.IsA(asg.KindTypedValue) {
			return colorEffect
		}
		return colorSequencing
	}
	return colorSequencing
}

// WriteDot writes a Graphviz rendering of everything reachable from roots.
func WriteDot(w io.Writer, roots ...*asg.Node) error {
	out := bufio.NewWriter(w)
	fmt.Fprintln(out, "digraph ASG {")
	fmt.Fprintln(out, "  node [shape=box];")

	nodes := asg.TopoSort(roots...)
	for _, node := range nodes {
		fmt.Fprintf(out, "  N%d [label=%s];\n", node.ID(), quote(nodeLabel(node)))
	}
	for _, node := range nodes {
		values := node.Values()
		for i, slot := range node.Kind().Slots {
			if !slot.Role.IsEdge() {
				continue
			}
			color := edgeColor(node, slot)
			for _, target := range edgeTargets(values[i]) {
				fmt.Fprintf(out, "  N%d -> N%d [label=%s, color=%s];\n", node.ID(), target.ID(), quote(slot.Name), color)
			}
		}
	}

	fmt.Fprintln(out, "}")
	return errors.Wrap(out.Flush(), "writing dot graph")
}

// ToDot renders roots as a dot document.
func ToDot(roots ...*asg.Node) string {
	var out strings.Builder
	_ = WriteDot(&out, roots...)
	return out.String()
}

// ToDotFileNamed writes the dot rendering of roots to path.
func ToDotFileNamed(path string, roots ...*asg.Node) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating dot file %s", path)
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "closing dot file %s", path)
		}
	}()
	return WriteDot(file, roots...)
}

func edgeTargets(value interface{}) []*asg.Node {
	switch v := value.(type) {
	case *asg.Node:
		if v != nil {
			return []*asg.Node{v}
		}
	case []*asg.Node:
		targets := make([]*asg.Node, 0, len(v))
		for _, node := range v {
			if node != nil {
				targets = append(targets, node)
			}
		}
		return targets
	}
	return nil
}

func nodeLabel(node *asg.Node) string {
	attributes := node.PrintedDataAttributes()
	if len(attributes) == 0 {
		return node.Kind().Name
	}
	return node.Kind().Name + "\n" + strings.Join(attributes, "\n")
}

func quote(text string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + replacer.Replace(text) + `"`
}
