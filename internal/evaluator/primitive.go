// Package evaluator implements compile-time evaluation: the primitive
// function implementations and the reduction algorithm that folds pure
// compile-time primitive applications into literals.
package evaluator

import (
	"github.com/funvibe/sysmel/internal/asg"
	"go.uber.org/zap"
)

// FoldFunc evaluates a primitive over literal arguments. It returns nil when
// the application cannot be folded (e.g. division by zero).
type FoldFunc func(builder *asg.Builder, derivation asg.Derivation, resultType *asg.Node, arguments []*asg.Node) *asg.Node

// MacroFunc rewrites the unanalyzed argument syntax of a macro call site.
type MacroFunc func(context *MacroContext, arguments []*asg.Node) *asg.Node

// MacroContext is the compile-time value describing a macro call site.
type MacroContext struct {
	Builder    *asg.Builder
	CallSite   *asg.Node
	Macro      *asg.Node
	Derivation asg.Derivation
	Logger     *zap.Logger
}

// Build creates a syntax node derived from the macro expansion.
func (c *MacroContext) Build(kind *asg.Kind, values ...interface{}) *asg.Node {
	return c.Builder.Build(kind, c.Derivation, values...)
}

// Implementation is the opaque payload of a LiteralPrimitiveFunction node.
type Implementation struct {
	Fold   FoldFunc
	Expand MacroFunc
}

// ImplementationOf returns the implementation attached to a primitive function node.
func ImplementationOf(primitive *asg.Node) *Implementation {
	if primitive == nil || !primitive.IsA(asg.LiteralPrimitiveFunction) {
		return nil
	}
	implementation, _ := primitive.Value("implementation").(*Implementation)
	return implementation
}

// PrimitiveDefinition describes one entry of the primitive function menu.
type PrimitiveDefinition struct {
	Name           string
	ArgumentTypes  []*asg.Node
	ResultType     *asg.Node
	IsVariadic     bool
	IsPure         bool
	IsCompileTime  bool
	IsMacro        bool
	Implementation *Implementation
}

// Build creates the function type and the primitive function literal.
func (d PrimitiveDefinition) Build(builder *asg.Builder) *asg.Node {
	typeKind := asg.FunctionType
	if d.IsMacro {
		typeKind = asg.MacroFunctionType
	}
	functionType := builder.Build(typeKind, asg.NoDerivation, d.ArgumentTypes, d.IsVariadic, d.ResultType)
	return builder.Build(asg.LiteralPrimitiveFunction, asg.NoDerivation,
		functionType, d.Name, d.IsPure, d.IsCompileTime, d.IsMacro, d.Implementation)
}
