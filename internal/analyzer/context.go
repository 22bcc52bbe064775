package analyzer

import (
	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/config"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/symbols"
	"github.com/funvibe/sysmel/internal/token"
	"go.uber.org/zap"
)

// Context holds the state shared by every analysis of one compilation target:
// the root builder, the lazily created top-level environment and the
// diagnostics collected so far.
type Context struct {
	Target config.CompilationTarget
	Logger *zap.Logger

	builder     *asg.Builder
	topLevel    *symbols.TopLevelEnvironment
	diagnostics diagnostics.List
}

// NewContext creates an analysis context for target.
func NewContext(target config.CompilationTarget, logger *zap.Logger) *Context {
	return NewContextWithBuilder(target, asg.NewBuilder(logger))
}

// NewContextWithBuilder creates an analysis context whose nodes share builder
// with an earlier stage, such as the syntax loader.
func NewContextWithBuilder(target config.CompilationTarget, builder *asg.Builder) *Context {
	return &Context{
		Target:  target,
		Logger:  builder.Logger(),
		builder: builder,
	}
}

// Builder returns the root builder of the context.
func (c *Context) Builder() *asg.Builder { return c.builder }

// TopLevelEnvironment returns the environment of built-in types and primitive
// functions of the target. It is created once and then reused.
func (c *Context) TopLevelEnvironment() *symbols.TopLevelEnvironment {
	if c.topLevel == nil {
		c.topLevel = symbols.NewTopLevelEnvironment(c.Target, c.builder)
		RegisterBuiltins(c.topLevel)
		c.Logger.Debug("created top-level environment",
			zap.String("target", c.Target.Name), zap.Int("bindings", len(c.topLevel.BindingNames())))
	}
	return c.topLevel
}

// NewScriptEnvironment creates the environment of a script in source.
func (c *Context) NewScriptEnvironment(source *token.SourceCode) *symbols.ScriptEnvironment {
	return symbols.NewScriptEnvironmentFor(c.TopLevelEnvironment(), source)
}

// NewAnalyzer creates the analyzer of an outermost scope. Its builder is a
// child of the root builder.
func (c *Context) NewAnalyzer(environment symbols.Environment) *Analyzer {
	return newAnalyzer(c, nil, environment, c.builder.NewChild())
}

// ExpandAndTypecheck analyzes node in environment.
func (c *Context) ExpandAndTypecheck(environment symbols.Environment, node *asg.Node) *asg.Node {
	return c.NewAnalyzer(environment).Analyze(node)
}

// ExpandTopLevelScript analyzes the syntax graph of one script and wraps it
// in a TopLevelScript node with explicit control entry and exit.
func (c *Context) ExpandTopLevelScript(source *token.SourceCode, node *asg.Node) *asg.Node {
	a := c.NewAnalyzer(c.NewScriptEnvironment(source))
	return a.ExpandTopLevelScript(node)
}

// ExpandTopLevelScript analyzes node as the body of a script.
func (a *Analyzer) ExpandTopLevelScript(node *asg.Node) *asg.Node {
	derivation := a.expansionOf(node)
	a.builder.SetCurrentPredecessor(nil)
	entryPoint := a.builder.Build(asg.SequenceEntry, derivation)
	result := a.Analyze(node)
	exitPoint := a.builder.CurrentPredecessor()
	return a.builder.Build(asg.TopLevelScript, derivation, a.typeOf(result), entryPoint, result, exitPoint)
}

func (c *Context) report(err *diagnostics.DiagnosticError) {
	c.Logger.Debug("semantic error", zap.String("code", string(err.Code)), zap.String("message", err.Message))
	c.diagnostics.Add(err)
}

// Diagnostics returns the semantic errors found so far, ordered by position.
func (c *Context) Diagnostics() []*diagnostics.DiagnosticError {
	return c.diagnostics.Sorted()
}

// Err combines all diagnostics into one error, or returns nil.
func (c *Context) Err() error {
	return c.diagnostics.Err()
}
