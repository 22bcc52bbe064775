package analyzer

import (
	"fmt"

	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/symbols"
	"go.uber.org/zap"
)

// functionalSignature is the analyzed argument list of a Pi, Sigma or lambda.
type functionalSignature struct {
	environment *symbols.FunctionalAnalysisEnvironment
	builder     *asg.Builder
	arguments   []*asg.Node
	resultType  *asg.Node // nil when omitted
	isVariadic  bool
}

// argumentsOfPattern converts the argument pattern of a functional dependent
// type into argument syntax nodes.
func (a *Analyzer) argumentsOfPattern(source, pattern *asg.Node) ([]*asg.Node, bool) {
	if pattern == nil {
		return nil, false
	}
	elements := []*asg.Node{pattern}
	if pattern.IsA(asg.SyntaxTuple) {
		elements = pattern.Nodes("elements")
	}
	arguments := make([]*asg.Node, len(elements))
	for i, element := range elements {
		arguments[i] = a.argumentSyntax(source, element)
	}
	return arguments, len(arguments) > 0 && arguments[len(arguments)-1].Bool("isVariadic")
}

// argumentSyntax turns one element of an argument pattern into a
// SyntaxArgument. An element that is not a binding is an anonymous argument
// whose type is the element.
func (a *Analyzer) argumentSyntax(source, element *asg.Node) *asg.Node {
	switch {
	case element.IsA(asg.SyntaxArgument):
		return element
	case element.IsA(asg.SyntaxBindableName):
		return a.builder.ForSyntaxExpansionBuild(algorithmName, element, asg.SyntaxArgument, nil,
			element.Bool("isImplicit"), element.Bool("isExistential"), element.Bool("isVariadic"),
			element.Node("typeExpression"), element.Node("nameExpression"))
	}
	return a.builder.ForSyntaxExpansionBuild(algorithmName, source, asg.SyntaxArgument, nil,
		false, false, false, element, nil)
}

// analyzeSignature analyzes argument declarations in a new function scope.
// The first argument type is analyzed in the enclosing environment; later
// ones see the earlier arguments.
func (a *Analyzer) analyzeSignature(source *asg.Node, argumentNodes []*asg.Node, resultTypeExpression *asg.Node, isVariadic bool) *functionalSignature {
	builder := a.builder.NewChild()
	environment := symbols.NewFunctionalAnalysisEnvironment(a.environment, builder)
	signature := &functionalSignature{builder: builder, isVariadic: isVariadic}

	for i, argumentNode := range argumentNodes {
		if !argumentNode.IsA(asg.SyntaxArgument) {
			a.makeError(argumentNode, diagnostics.ErrA005, "expected an argument declaration")
			continue
		}
		var scope *Analyzer
		if i == 0 {
			scope = a.withScope(a.environment, builder)
		} else {
			scope = a.withScope(environment, builder)
		}

		name, nameError := scope.evaluateName(argumentNode.Node("nameExpression"))
		if nameError != nil {
			continue
		}
		var argumentType *asg.Node
		if typeExpression := argumentNode.Node("typeExpression"); typeExpression != nil {
			argumentType = scope.analyzeType(typeExpression)
		} else {
			a.makeError(argumentNode, diagnostics.ErrA004, fmt.Sprintf("argument %s requires a type", name))
			argumentType = a.topLevel().Abort()
		}

		argument := builder.Build(asg.Argument, a.expansionOf(argumentNode), argumentType,
			len(signature.arguments), environment.Level(), name,
			argumentNode.Bool("isImplicit"), argumentNode.Bool("isExistential"), argumentNode.Bool("isVariadic"))
		signature.arguments = append(signature.arguments, argument)
		environment = environment.AddArgumentBinding(name, argument)
	}

	signature.environment = environment
	if resultTypeExpression != nil {
		signature.resultType = a.withScope(environment, builder).analyzeType(resultTypeExpression)
	}
	return signature
}

func (a *Analyzer) expandFunctionalDependentType(node *asg.Node) *asg.Node {
	arguments, isVariadic := a.argumentsOfPattern(node, node.Node("argumentPattern"))
	pi := a.builder.ForSyntaxExpansionBuild(algorithmName, node, asg.SyntaxPi, nil,
		arguments, isVariadic, node.Node("resultType"))
	return a.delegate(node, pi)
}

func (a *Analyzer) expandPi(node *asg.Node) *asg.Node {
	signature := a.analyzeSignature(node, node.Nodes("arguments"), node.Node("resultType"), node.Bool("isVariadic"))
	resultType := signature.resultType
	if resultType == nil {
		resultType = a.topLevel().Void()
	}
	return a.builder.Build(asg.PiType, a.expansionOf(node), signature.arguments, signature.isVariadic, resultType)
}

func (a *Analyzer) expandSigma(node *asg.Node) *asg.Node {
	signature := a.analyzeSignature(node, node.Nodes("arguments"), node.Node("resultType"), false)
	resultType := signature.resultType
	if resultType == nil {
		resultType = a.topLevel().Void()
	}
	return a.builder.Build(asg.SigmaType, a.expansionOf(node), signature.arguments, resultType)
}

// expandLambda analyzes the body in its own control region, starting at a
// fresh SequenceEntry. Outer values used by the body become captures.
func (a *Analyzer) expandLambda(node *asg.Node) *asg.Node {
	signature := a.analyzeSignature(node, node.Nodes("arguments"), node.Node("resultType"), node.Bool("isVariadic"))
	derivation := a.expansionOf(node)

	builder := signature.builder
	builder.SetCurrentPredecessor(nil)
	entryPoint := builder.Build(asg.SequenceEntry, derivation)
	body := a.withScope(signature.environment, builder)
	var result *asg.Node
	if bodyNode := node.Node("body"); bodyNode != nil {
		result = body.AnalyzeWithExpectedType(bodyNode, signature.resultType)
	} else {
		result = body.coerce(body.voidLiteral(node), signature.resultType, node)
	}
	exitPoint := builder.CurrentPredecessor()

	resultType := signature.resultType
	if resultType == nil {
		resultType = a.typeOf(result)
	}
	piType := a.builder.Build(asg.PiType, derivation, signature.arguments, signature.isVariadic, resultType)

	state := signature.environment.FunctionState()
	captures := state.Captures()
	placeholders := make([]*asg.Node, len(captures))
	capturedValues := make([]*asg.Node, len(captures))
	for i, capture := range captures {
		placeholders[i] = capture.Placeholder
		capturedValues[i] = capture.Original.Value
	}
	if len(captures) > 0 {
		a.logger().Debug("lambda captures enclosing values", zap.Int("count", len(captures)))
	}
	return a.builder.Build(asg.Lambda, derivation, piType, signature.arguments,
		placeholders, capturedValues, entryPoint, result, exitPoint)
}
