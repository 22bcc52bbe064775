package analyzer

import (
	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/config"
	"github.com/funvibe/sysmel/internal/evaluator"
	"github.com/funvibe/sysmel/internal/symbols"
)

// RegisterBuiltins adds the primitive function menu and the built-in macros
// to a freshly created top-level environment.
func RegisterBuiltins(env *symbols.TopLevelEnvironment) {
	builder := env.Builder()
	for _, definition := range evaluator.NumericPrimitives(numericTypesOf(env)) {
		env.AddBinding(definition.Name, definition.Build(builder))
	}
	for _, definition := range macroPrimitives(env) {
		env.AddBinding(definition.Name, definition.Build(builder))
	}
}

func numericTypesOf(env *symbols.TopLevelEnvironment) evaluator.NumericTypes {
	named := func(names ...string) []*asg.Node {
		result := make([]*asg.Node, len(names))
		for i, name := range names {
			result[i] = env.TypeNamed(name)
		}
		return result
	}
	return evaluator.NumericTypes{
		Integers: named(config.IntegerTypeName,
			"Int8", "Int16", "Int32", "Int64", "UInt8", "UInt16", "UInt32", "UInt64",
			config.SizeTypeName, config.UIntPtrTypeName, config.IntPtrTypeName),
		Characters: named("Char8", "Char16", "Char32"),
		Floats:     named(config.Float32TypeName, config.Float64TypeName),
		Boolean:    env.Boolean(),
	}
}

func macroPrimitives(env *symbols.TopLevelEnvironment) []evaluator.PrimitiveDefinition {
	astNode := env.TypeNamed(config.ASTNodeTypeName)
	macro := func(name string, arity int, expand evaluator.MacroFunc) evaluator.PrimitiveDefinition {
		arguments := make([]*asg.Node, arity)
		for i := range arguments {
			arguments[i] = astNode
		}
		return evaluator.PrimitiveDefinition{
			Name:           name,
			ArgumentTypes:  arguments,
			ResultType:     astNode,
			IsPure:         true,
			IsCompileTime:  true,
			IsMacro:        true,
			Implementation: &evaluator.Implementation{Expand: expand},
		}
	}
	return []evaluator.PrimitiveDefinition{
		macro(config.IfThenSelector, 2, expandIfThen),
		macro(config.IfThenElseSelector, 3, expandIfThenElse),
	}
}

func expandIfThen(context *evaluator.MacroContext, arguments []*asg.Node) *asg.Node {
	return context.Build(asg.SyntaxIfThenElse, nil, arguments[0], arguments[1], nil)
}

func expandIfThenElse(context *evaluator.MacroContext, arguments []*asg.Node) *asg.Node {
	return context.Build(asg.SyntaxIfThenElse, nil, arguments[0], arguments[1], arguments[2])
}
