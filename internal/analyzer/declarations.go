package analyzer

import (
	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/config"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/symbols"
)

// expandAssignment desugars the three forms of `store := value`.
func (a *Analyzer) expandAssignment(node *asg.Node) *asg.Node {
	store := node.Node("store")
	value := node.Node("value")
	switch {
	case store.IsA(asg.SyntaxFunctionalDependentType):
		return a.delegate(node, a.lambdaFromSignature(node, store, value))
	case store.IsA(asg.SyntaxBindableName) && isFunctionDefinitionPattern(store):
		return a.delegate(node, a.functionBindingDefinition(node, store, value))
	}
	selector := a.builder.ForSyntaxExpansionBuild(algorithmName, node, asg.SyntaxLiteralSymbol, nil, config.AssignSelector)
	send := a.builder.ForSyntaxExpansionBuild(algorithmName, node, asg.SyntaxMessageSend, nil, store, selector, []*asg.Node{value})
	return a.delegate(node, send)
}

// isFunctionDefinitionPattern matches `name(arguments) => Result`, where the
// functional type follows the bound name.
func isFunctionDefinitionPattern(pattern *asg.Node) bool {
	typeExpression := pattern.Node("typeExpression")
	return typeExpression.IsA(asg.SyntaxFunctionalDependentType) && pattern.Bool("hasPostTypeExpression")
}

func (a *Analyzer) functionBindingDefinition(source, pattern, body *asg.Node) *asg.Node {
	lambda := a.lambdaFromSignature(source, pattern.Node("typeExpression"), body)
	return a.builder.ForSyntaxExpansionBuild(algorithmName, source, asg.SyntaxBindingDefinition, nil,
		nil, pattern.Node("nameExpression"), lambda, pattern.Bool("isMutable"), false)
}

// lambdaFromSignature builds the lambda syntax for a functional dependent type
// whose body is given separately.
func (a *Analyzer) lambdaFromSignature(source, signature, body *asg.Node) *asg.Node {
	arguments, isVariadic := a.argumentsOfPattern(source, signature.Node("argumentPattern"))
	return a.builder.ForSyntaxExpansionBuild(algorithmName, source, asg.SyntaxLambda, nil,
		arguments, isVariadic, signature.Node("resultType"), body)
}

func (a *Analyzer) expandBindPattern(node *asg.Node) *asg.Node {
	pattern := node.Node("pattern")
	value := node.Node("value")
	switch {
	case pattern.IsA(asg.SyntaxBindableName) && isFunctionDefinitionPattern(pattern):
		return a.delegate(node, a.functionBindingDefinition(node, pattern, value))
	case pattern.IsA(asg.SyntaxBindableName):
		return a.delegate(node, a.builder.ForSyntaxExpansionBuild(algorithmName, node, asg.SyntaxBindingDefinition, nil,
			pattern.Node("typeExpression"), pattern.Node("nameExpression"), value, pattern.Bool("isMutable"), false))
	case pattern.IsA(asg.SyntaxIdentifier):
		name := a.builder.ForSyntaxExpansionBuild(algorithmName, pattern, asg.SyntaxLiteralSymbol, nil, pattern.Str("value"))
		return a.delegate(node, a.builder.ForSyntaxExpansionBuild(algorithmName, node, asg.SyntaxBindingDefinition, nil,
			nil, name, value, false, false))
	}
	var inner []*asg.Node
	if value != nil {
		inner = append(inner, a.Analyze(value))
	}
	return a.makeError(node, diagnostics.ErrA005, "expected a binding pattern", inner...)
}

// expandBindingDefinition analyzes the value and makes it visible to the
// rest of the current scope.
func (a *Analyzer) expandBindingDefinition(node *asg.Node) *asg.Node {
	var expectedType *asg.Node
	if typeExpression := node.Node("typeExpression"); typeExpression != nil {
		expectedType = a.analyzeType(typeExpression)
	}
	name, nameError := a.evaluateName(node.Node("nameExpression"))
	valueExpression := node.Node("valueExpression")
	if valueExpression == nil {
		return a.makeError(node, diagnostics.ErrA005, "a binding definition requires a value", nameError)
	}
	value := a.AnalyzeWithExpectedType(valueExpression, expectedType)
	if nameError != nil {
		return nameError
	}
	if name != "" {
		a.environment = symbols.ChildWithSymbolBinding(a.environment, name, value)
	}
	return value
}

// evaluateName returns the name denoted by a name expression. Anonymous names
// are the empty string. A malformed name yields an error node.
func (a *Analyzer) evaluateName(expression *asg.Node) (string, *asg.Node) {
	switch {
	case expression == nil:
		return "", nil
	case expression.IsA(asg.SyntaxLiteralSymbol), expression.IsA(asg.SyntaxIdentifier):
		return expression.Str("value"), nil
	}
	value := a.Analyze(expression)
	if value.IsA(asg.LiteralSymbol) {
		return value.Str("value"), nil
	}
	if value.IsA(asg.Error) {
		return "", value
	}
	return "", a.makeError(expression, diagnostics.ErrA008, "a name must be a symbol", value)
}
