package analyzer

import (
	"fmt"

	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/evaluator"
	"github.com/funvibe/sysmel/internal/symbols"
	"github.com/funvibe/sysmel/internal/transform"
	"go.uber.org/zap"
)

const algorithmName = "expand-and-typecheck"

var expandAndTypecheck *transform.Definition[*Analyzer]

func init() {
	expandAndTypecheck = transform.NewDefinition[*Analyzer](algorithmName).
		On(asg.KindTypechecked, (*Analyzer).expandTypechecked).
		On(asg.SyntaxLiteralInteger, (*Analyzer).expandLiteralInteger).
		On(asg.SyntaxLiteralFloat, (*Analyzer).expandLiteralFloat).
		On(asg.SyntaxLiteralCharacter, (*Analyzer).expandLiteralCharacter).
		On(asg.SyntaxLiteralString, (*Analyzer).expandLiteralString).
		On(asg.SyntaxLiteralSymbol, (*Analyzer).expandLiteralSymbol).
		On(asg.SyntaxError, (*Analyzer).expandSyntaxError).
		On(asg.SyntaxIdentifier, (*Analyzer).expandIdentifier).
		On(asg.SyntaxAssignment, (*Analyzer).expandAssignment).
		On(asg.SyntaxBindableName, (*Analyzer).expandMisplacedPattern).
		On(asg.SyntaxArgument, (*Analyzer).expandMisplacedPattern).
		On(asg.SyntaxBindPattern, (*Analyzer).expandBindPattern).
		On(asg.SyntaxBindingDefinition, (*Analyzer).expandBindingDefinition).
		On(asg.SyntaxFunctionalDependentType, (*Analyzer).expandFunctionalDependentType).
		On(asg.SyntaxPi, (*Analyzer).expandPi).
		On(asg.SyntaxSigma, (*Analyzer).expandSigma).
		On(asg.SyntaxLambda, (*Analyzer).expandLambda).
		On(asg.SyntaxSequence, (*Analyzer).expandSequence).
		On(asg.SyntaxTuple, (*Analyzer).expandTuple).
		On(asg.SyntaxLexicalBlock, (*Analyzer).expandLexicalBlock).
		On(asg.SyntaxIfThenElse, (*Analyzer).expandIfThenElse).
		On(asg.SyntaxApplication, (*Analyzer).expandApplication).
		On(asg.SyntaxMessageSend, (*Analyzer).expandMessageSend)
}

// Analyzer is one instance of the expand-and-typecheck algorithm, bound to a
// single scope. Nested scopes (function bodies, branches, blocks) get their
// own instance with its own memo table.
type Analyzer struct {
	context *Context
	parent  *Analyzer
	// environment is the current lexical environment of this scope. Binding
	// definitions replace it with a child environment; it is never shared
	// with another Analyzer instance.
	environment symbols.Environment
	builder     *asg.Builder
	reducer     *evaluator.Reducer
	run         *transform.Run[*Analyzer]
}

func newAnalyzer(context *Context, parent *Analyzer, environment symbols.Environment, builder *asg.Builder) *Analyzer {
	a := &Analyzer{
		context:     context,
		parent:      parent,
		environment: environment,
		builder:     builder,
		reducer:     evaluator.NewReducer(builder),
	}
	a.run = transform.NewRun(expandAndTypecheck, a, context.Logger)
	a.run.PostProcess = a.postProcessResult
	return a
}

// withScope creates an analyzer for a nested scope.
func (a *Analyzer) withScope(environment symbols.Environment, builder *asg.Builder) *Analyzer {
	return newAnalyzer(a.context, a, environment, builder)
}

func (a *Analyzer) Builder() *asg.Builder { return a.builder }

func (a *Analyzer) topLevel() *symbols.TopLevelEnvironment {
	return a.environment.TopLevelTargetEnvironment()
}

func (a *Analyzer) logger() *zap.Logger { return a.context.Logger }

// postProcessResult runs every result through the reduction algorithm.
func (a *Analyzer) postProcessResult(result *asg.Node) *asg.Node {
	return a.reducer.Reduce(result)
}

// Analyze expands and typechecks node in the current scope.
func (a *Analyzer) Analyze(node *asg.Node) *asg.Node {
	return a.run.Transform(node)
}

func (a *Analyzer) delegate(from, to *asg.Node) *asg.Node {
	return a.run.Delegate(from, to)
}

// AnalyzeWithExpectedType analyzes node and coerces the result to expectedType.
func (a *Analyzer) AnalyzeWithExpectedType(node, expectedType *asg.Node) *asg.Node {
	return a.coerce(a.Analyze(node), expectedType, node)
}

// analyzeType analyzes node, requiring the result to denote a type. Errors are
// reported and replaced by Abort so that they do not cascade.
func (a *Analyzer) analyzeType(node *asg.Node) *asg.Node {
	value := a.Analyze(node)
	if value.IsA(asg.Error) {
		return a.topLevel().Abort()
	}
	if !a.isTypeValue(value) {
		a.makeError(node, diagnostics.ErrA004, fmt.Sprintf("expected a type, got a value of type %s", a.typeOf(value).PrettyString()), value)
		return a.topLevel().Abort()
	}
	return value
}

// typeOf returns the type of a typed node. Types live in universes.
func (a *Analyzer) typeOf(node *asg.Node) *asg.Node {
	if node == nil {
		return nil
	}
	if node.Kind().IsType() {
		if node.IsA(asg.TypeUniverse) {
			return a.topLevel().TypeUniverseWithIndex(node.Int("index") + 1)
		}
		return a.topLevel().TypeUniverseWithIndex(0)
	}
	return node.Type()
}

func (a *Analyzer) isTypeValue(node *asg.Node) bool {
	if node == nil {
		return false
	}
	if node.Kind().IsType() {
		return true
	}
	return a.typeOf(node).IsA(asg.TypeUniverse)
}

func (a *Analyzer) expansionOf(node *asg.Node) asg.Derivation {
	return asg.ExpandedFrom(algorithmName, asg.SyntaxExpansion, node)
}

// makeError builds a bottom-typed error node in place of source and records
// the diagnostic. Analysis always continues after an error.
func (a *Analyzer) makeError(source *asg.Node, code diagnostics.ErrorCode, message string, inner ...*asg.Node) *asg.Node {
	var innerNodes []*asg.Node
	for _, node := range inner {
		if node != nil {
			innerNodes = append(innerNodes, node)
		}
	}
	position := source.Derivation().SourcePosition()
	a.context.report(diagnostics.NewError(code, position, message))
	return a.builder.Build(asg.Error, a.expansionOf(source), a.topLevel().Abort(), message, innerNodes)
}

func (a *Analyzer) voidLiteral(source *asg.Node) *asg.Node {
	return a.topLevel().VoidLiteral(a.builder, a.expansionOf(source))
}

func (a *Analyzer) expandTypechecked(node *asg.Node) *asg.Node {
	return node
}

func (a *Analyzer) expandMisplacedPattern(node *asg.Node) *asg.Node {
	return a.makeError(node, diagnostics.ErrA005, "a binding pattern cannot be used as a value")
}
