package analyzer

import (
	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/symbols"
)

// branchRegion is the analyzed control region of one conditional branch.
type branchRegion struct {
	builder    *asg.Builder
	entryPoint *asg.Node
	result     *asg.Node
	exitPoint  *asg.Node
}

// analyzeBranch analyzes expression in a child builder, starting a new
// control region at a SequenceEntry. A missing expression yields void.
func (a *Analyzer) analyzeBranch(source, expression *asg.Node) *branchRegion {
	builder := a.builder.NewChild()
	scope := a.withScope(symbols.NewLexicalEnvironment(a.environment), builder)
	region := &branchRegion{builder: builder}
	region.entryPoint = builder.Build(asg.SequenceEntry, a.expansionOf(source))
	if expression != nil {
		region.result = scope.Analyze(expression)
	} else {
		region.result = scope.voidLiteral(source)
	}
	region.exitPoint = builder.CurrentPredecessor()
	return region
}

// expandIfThenElse lowers a conditional into a ConditionalBranch whose two
// regions meet at a SequenceConvergence. When both branches agree on a result
// type the value is merged with a Phi, otherwise the conditional is void.
func (a *Analyzer) expandIfThenElse(node *asg.Node) *asg.Node {
	derivation := a.expansionOf(node)
	condition := a.AnalyzeWithExpectedType(node.Node("condition"), a.topLevel().Boolean())
	trueBranch := a.analyzeBranch(node, node.Node("trueExpression"))
	falseBranch := a.analyzeBranch(node, node.Node("falseExpression"))

	branch := a.builder.Build(asg.ConditionalBranch, derivation, condition, trueBranch.entryPoint, falseBranch.entryPoint)

	resultType := a.typeOf(trueBranch.result)
	if !resultType.UnificationEquals(a.typeOf(falseBranch.result)) {
		a.builder.Build(asg.SequenceConvergence, derivation, branch,
			[]*asg.Node{trueBranch.exitPoint, falseBranch.exitPoint})
		return a.voidLiteral(node)
	}

	trueValue := trueBranch.builder.Build(asg.PhiValue, derivation, resultType, trueBranch.result)
	falseValue := falseBranch.builder.Build(asg.PhiValue, derivation, resultType, falseBranch.result)
	a.builder.Build(asg.SequenceConvergence, derivation, branch, []*asg.Node{trueValue, falseValue})
	return a.builder.Build(asg.Phi, derivation, resultType, []*asg.Node{trueValue, falseValue})
}
