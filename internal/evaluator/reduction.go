package evaluator

import (
	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/transform"
	"go.uber.org/zap"
)

const reductionAlgorithmName = "reduction"

var reductionDefinition = transform.NewDefinition[*Reducer](reductionAlgorithmName).
	OnWhen(asg.Application, isPureApplication, (*Reducer).reduceApplication).
	On(asg.KindSyntax, (*Reducer).keep).
	OnWhen(asg.KindNode, isControlNode, (*Reducer).keep).
	On(asg.KindNode, (*Reducer).reduceAttributes)

func isPureApplication(node *asg.Node) bool { return node.IsPureDataNode() }

func isControlNode(node *asg.Node) bool { return node.IsSequencingNode() || !node.Kind().Has(asg.FlagPureData) }

// Reducer constant-folds pure compile-time primitive applications.
type Reducer struct {
	builder *asg.Builder
	run     *transform.Run[*Reducer]
	logger  *zap.Logger
}

func NewReducer(builder *asg.Builder) *Reducer {
	reducer := &Reducer{builder: builder, logger: builder.Logger()}
	reducer.run = transform.NewRun(reductionDefinition, reducer, reducer.logger)
	return reducer
}

// Reduce returns the reduced form of node; fully reduced nodes are returned unchanged.
func (r *Reducer) Reduce(node *asg.Node) *asg.Node {
	return r.run.Transform(node)
}

func (r *Reducer) keep(node *asg.Node) *asg.Node { return node }

// reduceAttributes rebuilds node only when one of its inputs reduced to something else.
func (r *Reducer) reduceAttributes(node *asg.Node) *asg.Node {
	values := node.Values()
	changed := false
	for i, slot := range node.Kind().Slots {
		if slot.Role != asg.RoleDataInput && slot.Role != asg.RoleTypeInput {
			continue
		}
		switch value := values[i].(type) {
		case *asg.Node:
			if value == nil {
				continue
			}
			if reduced := r.Reduce(value); reduced != value {
				values[i], changed = reduced, true
			}
		case []*asg.Node:
			var elements []*asg.Node
			for j, element := range value {
				reduced := r.Reduce(element)
				if reduced != element && elements == nil {
					elements = append(make([]*asg.Node, 0, len(value)), value[:j]...)
				}
				if elements != nil {
					elements = append(elements, reduced)
				}
			}
			if elements != nil {
				values[i], changed = elements, true
			}
		}
	}
	if !changed {
		return node
	}
	return r.builder.Rebuild(node.Kind(), asg.ExpandedFrom(reductionAlgorithmName, asg.ReductionExpansion, node), values)
}

func (r *Reducer) reduceApplication(node *asg.Node) *asg.Node {
	reduced := r.reduceAttributes(node)
	functional := reduced.Node("functional")
	if !functional.IsPureCompileTimePrimitive() {
		return reduced
	}
	arguments := reduced.Nodes("arguments")
	for _, argument := range arguments {
		if !argument.Kind().IsLiteral() {
			return reduced
		}
	}
	implementation := ImplementationOf(functional)
	if implementation == nil || implementation.Fold == nil {
		return reduced
	}
	folded := implementation.Fold(r.builder, asg.ExpandedFrom(reductionAlgorithmName, asg.ReductionExpansion, node), reduced.Type(), arguments)
	if folded == nil {
		return reduced
	}
	r.logger.Debug("folded primitive application",
		zap.String("primitive", functional.Str("name")), zap.Stringer("result", folded))
	return folded
}
