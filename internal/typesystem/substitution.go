// Package typesystem implements beta substitution of bound arguments and
// captured values into dependent types and values.
package typesystem

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/transform"
)

const betaAlgorithmName = "beta-substitution"

// Subst maps beta-replaceable nodes (arguments, captured values) to their values.
type Subst struct {
	replacements map[*asg.Node]*asg.Node
	domain       *roaring.Bitmap
}

func NewSubst() *Subst {
	return &Subst{replacements: make(map[*asg.Node]*asg.Node), domain: roaring.NewBitmap()}
}

// Bind adds a replacement to the substitution.
func (s *Subst) Bind(from, to *asg.Node) {
	s.replacements[from] = to
	s.domain.Add(from.ID())
}

func (s *Subst) Lookup(node *asg.Node) (*asg.Node, bool) {
	value, ok := s.replacements[node]
	return value, ok
}

func (s *Subst) Len() int { return len(s.replacements) }

func (s *Subst) IsEmpty() bool { return len(s.replacements) == 0 }

// Affects reports whether node depends on any substituted node.
func (s *Subst) Affects(node *asg.Node) bool {
	return !s.IsEmpty() && node.BetaReplaceableDependencies().Intersects(s.domain)
}

var betaDefinition = transform.NewDefinition[*substitution](betaAlgorithmName).
	On(asg.Argument, (*substitution).replaceLeaf).
	On(asg.CapturedValue, (*substitution).replaceLeaf).
	On(asg.KindNode, (*substitution).rebuild)

type substitution struct {
	subst   *Subst
	builder *asg.Builder
	run     *transform.Run[*substitution]
}

// Apply substitutes s into node. The empty substitution returns node as is.
func (s *Subst) Apply(builder *asg.Builder, node *asg.Node) *asg.Node {
	if node == nil || !s.Affects(node) {
		return node
	}
	algorithm := &substitution{subst: s, builder: builder}
	algorithm.run = transform.NewRun(betaDefinition, algorithm, builder.Logger())
	return algorithm.run.Transform(node)
}

func (a *substitution) apply(node *asg.Node) *asg.Node {
	if node == nil || !a.subst.Affects(node) {
		return node
	}
	return a.run.Transform(node)
}

// replaceLeaf substitutes a bound placeholder. Unbound placeholders are
// rebuilt when their type depends on a bound one.
func (a *substitution) replaceLeaf(node *asg.Node) *asg.Node {
	if replacement, ok := a.subst.Lookup(node); ok {
		return replacement
	}
	return a.rebuild(node)
}

func (a *substitution) rebuild(node *asg.Node) *asg.Node {
	if !a.subst.Affects(node) {
		return node
	}
	values := node.Values()
	for i, slot := range node.Kind().Slots {
		if !slot.Role.IsEdge() || slot.Role == asg.RoleSyntacticPredecessor {
			continue
		}
		switch value := values[i].(type) {
		case *asg.Node:
			values[i] = a.apply(value)
		case []*asg.Node:
			elements := make([]*asg.Node, len(value))
			for j, element := range value {
				elements[j] = a.apply(element)
			}
			values[i] = elements
		}
	}
	return a.builder.Rebuild(node.Kind(), asg.ExpandedFrom(betaAlgorithmName, asg.SyntaxExpansion, node), values)
}
