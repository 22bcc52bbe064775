package analyzer

import (
	"fmt"

	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/config"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/symbols"
	"go.uber.org/zap"
)

func (a *Analyzer) literal(node *asg.Node, kind *asg.Kind, typeName string) *asg.Node {
	return a.builder.Build(kind, a.expansionOf(node), a.topLevel().TypeNamed(typeName), node.Value("value"))
}

func (a *Analyzer) expandLiteralInteger(node *asg.Node) *asg.Node {
	return a.literal(node, asg.LiteralInteger, config.IntegerTypeName)
}

func (a *Analyzer) expandLiteralFloat(node *asg.Node) *asg.Node {
	return a.literal(node, asg.LiteralFloat, config.DefaultFloatType)
}

func (a *Analyzer) expandLiteralCharacter(node *asg.Node) *asg.Node {
	return a.literal(node, asg.LiteralCharacter, config.DefaultCharType)
}

func (a *Analyzer) expandLiteralString(node *asg.Node) *asg.Node {
	return a.literal(node, asg.LiteralString, config.StringTypeName)
}

func (a *Analyzer) expandLiteralSymbol(node *asg.Node) *asg.Node {
	return a.literal(node, asg.LiteralSymbol, config.SymbolTypeName)
}

// expandSyntaxError turns a front-end error into an error node. The inner
// nodes are still analyzed so that their own errors are reported as well.
func (a *Analyzer) expandSyntaxError(node *asg.Node) *asg.Node {
	var inner []*asg.Node
	for _, element := range node.Nodes("innerNodes") {
		inner = append(inner, a.Analyze(element))
	}
	return a.makeError(node, diagnostics.ErrA009, node.Str("message"), inner...)
}

func (a *Analyzer) expandIdentifier(node *asg.Node) *asg.Node {
	name := node.Str("value")
	bindings := symbols.OverloadSet(a.environment.LookSymbolBindingListRecursively(name))
	switch len(bindings) {
	case 0:
		return a.makeError(node, diagnostics.ErrA001, fmt.Sprintf("unbound identifier %s", name))
	case 1:
		return a.delegate(node, bindings[0].Value)
	}
	diagnostics.Fatalf("identifier %s resolves to %d overloaded bindings outside of an application", name, len(bindings))
	return nil
}

func (a *Analyzer) expandSequence(node *asg.Node) *asg.Node {
	elements := node.Nodes("elements")
	if len(elements) == 0 {
		return a.voidLiteral(node)
	}
	var result *asg.Node
	for _, element := range elements {
		result = a.Analyze(element)
	}
	return result
}

// expandTuple builds a product type when every element denotes a type, and a
// tuple value otherwise.
func (a *Analyzer) expandTuple(node *asg.Node) *asg.Node {
	syntaxElements := node.Nodes("elements")
	if len(syntaxElements) == 0 {
		return a.voidLiteral(node)
	}
	elements := make([]*asg.Node, len(syntaxElements))
	allTypes := true
	for i, element := range syntaxElements {
		elements[i] = a.Analyze(element)
		allTypes = allTypes && elements[i].Kind().IsType()
	}
	if allTypes {
		return a.builder.Build(asg.ProductType, a.expansionOf(node), elements)
	}
	types := make([]*asg.Node, len(elements))
	for i, element := range elements {
		types[i] = a.typeOf(element)
	}
	productType := a.builder.Build(asg.ProductType, a.expansionOf(node), types)
	return a.builder.Build(asg.Tuple, a.expansionOf(node), productType, elements)
}

// expandLexicalBlock analyzes the body in a nested scope that shares the
// control region of the enclosing one.
func (a *Analyzer) expandLexicalBlock(node *asg.Node) *asg.Node {
	block := a.withScope(symbols.NewLexicalEnvironment(a.environment), a.builder)
	body := node.Node("body")
	if body == nil {
		return a.voidLiteral(node)
	}
	result := block.Analyze(body)
	a.logger().Debug("analyzed lexical block", zap.Stringer("result", result))
	return result
}
