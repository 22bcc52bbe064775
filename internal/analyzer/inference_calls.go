package analyzer

import (
	"fmt"
	"strings"

	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/config"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/evaluator"
	"github.com/funvibe/sysmel/internal/symbols"
	"github.com/funvibe/sysmel/internal/typesystem"
	"go.uber.org/zap"
)

func (a *Analyzer) expandApplication(node *asg.Node) *asg.Node {
	functionalNode := node.Node("functional")
	arguments := node.Nodes("arguments")
	if functionalNode.IsA(asg.SyntaxIdentifier) {
		bindings := symbols.OverloadSet(a.environment.LookSymbolBindingListRecursively(functionalNode.Str("value")))
		if len(bindings) > 1 {
			return a.applyOverloaded(node, functionalNode.Str("value"), bindings, arguments)
		}
	}
	return a.applyFunctional(node, a.Analyze(functionalNode), arguments)
}

// applyFunctional dispatches on the type of the analyzed functional value.
func (a *Analyzer) applyFunctional(source, functional *asg.Node, arguments []*asg.Node) *asg.Node {
	functionalType := a.typeOf(functional)
	switch {
	case functional.IsA(asg.Error), functionalType.IsA(asg.BottomType):
		inner := append([]*asg.Node{functional}, a.analyzeAll(arguments)...)
		return a.builder.Build(asg.Error, a.expansionOf(source), a.topLevel().Abort(), "application of an error value", inner)
	case functionalType.IsA(asg.MacroFunctionType):
		return a.applyMacro(source, functional, functionalType, arguments)
	case functionalType.IsA(asg.FunctionType):
		return a.applyFunctionType(source, functional, functionalType, a.analyzeAll(arguments))
	case functionalType.IsA(asg.PiType):
		return a.applyPi(source, functional, functionalType, arguments)
	case functionalType.IsA(asg.TypeUniverse):
		return a.applyTypeCoercion(source, functional, arguments)
	}
	return a.makeError(source, diagnostics.ErrA006,
		fmt.Sprintf("a value of type %s cannot be applied", functionalType.PrettyString()),
		append([]*asg.Node{functional}, a.analyzeAll(arguments)...)...)
}

func (a *Analyzer) analyzeAll(nodes []*asg.Node) []*asg.Node {
	result := make([]*asg.Node, len(nodes))
	for i, node := range nodes {
		result[i] = a.Analyze(node)
	}
	return result
}

// arityMessage describes a mismatch between required and given argument counts.
func arityMessage(required int, isVariadic bool, given int) string {
	if isVariadic {
		return fmt.Sprintf("expected at least %d arguments but %d were given", required, given)
	}
	return fmt.Sprintf("expected %d arguments but %d were given", required, given)
}

func arityMatches(required int, isVariadic bool, given int) bool {
	if isVariadic {
		return given >= required
	}
	return given == required
}

// parameterTypeAt returns the declared type of argument i, repeating the
// variadic tail type.
func parameterTypeAt(parameters []*asg.Node, isVariadic bool, i int) *asg.Node {
	switch {
	case i < len(parameters):
		return parameters[i]
	case isVariadic && len(parameters) > 0:
		return parameters[len(parameters)-1]
	}
	return nil
}

// applyFunctionType applies a simple function. The application is built even
// when the arity is wrong; the result is then an error wrapping it.
func (a *Analyzer) applyFunctionType(source, functional, functionType *asg.Node, arguments []*asg.Node) *asg.Node {
	parameters := functionType.Nodes("arguments")
	isVariadic := functionType.Bool("isVariadic")
	required := len(parameters)
	if isVariadic {
		required--
	}

	coerced := make([]*asg.Node, len(arguments))
	for i, argument := range arguments {
		coerced[i] = a.coerce(argument, parameterTypeAt(parameters, isVariadic, i), source)
	}
	application := a.builder.Build(asg.Application, a.expansionOf(source),
		functionType.Node("resultType"), functional, coerced)
	if !arityMatches(required, isVariadic, len(arguments)) {
		return a.makeError(source, diagnostics.ErrA003, arityMessage(required, isVariadic, len(arguments)), application)
	}
	return application
}

// applyPi applies a dependent function. Each argument is bound in a beta
// substitution that is applied to the later argument types and to the result
// type. Implicit arguments are inferred from the types of explicit ones.
func (a *Analyzer) applyPi(source, functional, piType *asg.Node, argumentNodes []*asg.Node) *asg.Node {
	parameters := piType.Nodes("arguments")
	isVariadic := piType.Bool("isVariadic")
	var explicit []*asg.Node
	implicit := make(map[*asg.Node]bool)
	for _, parameter := range parameters {
		if parameter.Bool("isImplicit") {
			implicit[parameter] = true
		} else {
			explicit = append(explicit, parameter)
		}
	}
	required := len(explicit)
	if isVariadic {
		required--
	}

	subst := typesystem.NewSubst()
	values := make(map[*asg.Node]*asg.Node, len(parameters))
	var extra []*asg.Node
	for i, argumentNode := range argumentNodes {
		parameter := parameterTypeAt(explicit, isVariadic, i)
		if parameter == nil {
			extra = append(extra, a.Analyze(argumentNode))
			continue
		}
		expectedType := subst.Apply(a.builder, parameter.Type())
		var value *asg.Node
		if implicit[expectedType] {
			if _, bound := subst.Lookup(expectedType); !bound {
				value = a.Analyze(argumentNode)
				subst.Bind(expectedType, a.typeOf(value))
				values[expectedType] = a.typeOf(value)
			}
		}
		if value == nil {
			value = a.AnalyzeWithExpectedType(argumentNode, expectedType)
		}
		if i < len(explicit) {
			subst.Bind(parameter, value)
			values[parameter] = value
		} else {
			extra = append(extra, value)
		}
	}

	var arguments []*asg.Node
	var missingImplicit []string
	for _, parameter := range parameters {
		value, ok := values[parameter]
		if !ok {
			if implicit[parameter] {
				missingImplicit = append(missingImplicit, parameter.Str("name"))
			}
			continue
		}
		arguments = append(arguments, value)
	}
	arguments = append(arguments, extra...)

	resultType := subst.Apply(a.builder, piType.Node("resultType"))
	application := a.builder.Build(asg.Application, a.expansionOf(source), resultType, functional, arguments)
	switch {
	case !arityMatches(required, isVariadic, len(argumentNodes)):
		return a.makeError(source, diagnostics.ErrA003, arityMessage(required, isVariadic, len(argumentNodes)), application)
	case len(missingImplicit) > 0:
		return a.makeError(source, diagnostics.ErrA003,
			fmt.Sprintf("cannot infer implicit arguments %s", strings.Join(missingImplicit, ", ")), application)
	}
	return application
}

// applyTypeCoercion treats `T(value)` as a conversion of value to T.
func (a *Analyzer) applyTypeCoercion(source, typ *asg.Node, arguments []*asg.Node) *asg.Node {
	if len(arguments) != 1 {
		return a.makeError(source, diagnostics.ErrA003, arityMessage(1, false, len(arguments)),
			append([]*asg.Node{typ}, a.analyzeAll(arguments)...)...)
	}
	if !typ.Kind().IsType() {
		return a.makeError(source, diagnostics.ErrA006,
			fmt.Sprintf("cannot coerce to %s, which is not known at compile time", typ.PrettyString()), typ)
	}
	return a.AnalyzeWithExpectedType(arguments[0], typ)
}

// applyMacro expands a macro over the unanalyzed argument syntax and analyzes
// the expansion in place of the call site.
func (a *Analyzer) applyMacro(source, macro, macroType *asg.Node, arguments []*asg.Node) *asg.Node {
	if !macro.IsA(asg.LiteralPrimitiveFunction) {
		diagnostics.Fatalf("macro %s is not a primitive; macro lambdas are not supported", macro)
	}
	parameters := macroType.Nodes("arguments")
	isVariadic := macroType.Bool("isVariadic")
	required := len(parameters)
	if isVariadic {
		required--
	}
	if !arityMatches(required, isVariadic, len(arguments)) {
		return a.makeError(source, diagnostics.ErrA003,
			fmt.Sprintf("macro %s %s", macro.Str("name"), arityMessage(required, isVariadic, len(arguments))), macro)
	}
	implementation := evaluator.ImplementationOf(macro)
	if implementation == nil || implementation.Expand == nil {
		diagnostics.Fatalf("macro %s has no expansion", macro.Str("name"))
	}
	context := &evaluator.MacroContext{
		Builder:    a.builder,
		CallSite:   source,
		Macro:      macro,
		Derivation: asg.MacroExpandedFrom(algorithmName, source, macro),
		Logger:     a.logger(),
	}
	expansion := implementation.Expand(context, arguments)
	a.logger().Debug("expanded macro", zap.String("macro", macro.Str("name")), zap.Stringer("expansion", expansion))
	return a.delegate(source, expansion)
}

// applyOverloaded picks the first binding whose function type accepts the
// analyzed arguments, preferring exact type matches over coercions.
func (a *Analyzer) applyOverloaded(source *asg.Node, name string, bindings []*symbols.Binding, argumentNodes []*asg.Node) *asg.Node {
	arguments := a.analyzeAll(argumentNodes)
	for _, exact := range []bool{true, false} {
		for _, binding := range bindings {
			functionType := a.typeOf(binding.Value)
			if !functionType.IsA(asg.FunctionType) || !a.acceptsArguments(functionType, arguments, exact) {
				continue
			}
			a.logger().Debug("resolved overload",
				zap.String("name", name), zap.Int("candidates", len(bindings)), zap.Bool("exact", exact))
			return a.applyFunctionType(source, binding.Value, functionType, arguments)
		}
	}
	types := make([]string, len(arguments))
	for i, argument := range arguments {
		types[i] = a.typeOf(argument).PrettyString()
	}
	return a.makeError(source, diagnostics.ErrA007,
		fmt.Sprintf("no overload of %s accepts arguments of types (%s)", name, strings.Join(types, ", ")), arguments...)
}

func (a *Analyzer) acceptsArguments(functionType *asg.Node, arguments []*asg.Node, exact bool) bool {
	parameters := functionType.Nodes("arguments")
	isVariadic := functionType.Bool("isVariadic")
	required := len(parameters)
	if isVariadic {
		required--
	}
	if !arityMatches(required, isVariadic, len(arguments)) {
		return false
	}
	for i, argument := range arguments {
		parameter := parameterTypeAt(parameters, isVariadic, i)
		if exact && !a.typeOf(argument).UnificationEquals(parameter) {
			return false
		}
		if !exact && !a.canCoerce(argument, parameter) {
			return false
		}
	}
	return true
}

// messageSelector returns the selector of a message send as a string.
func (a *Analyzer) messageSelector(node *asg.Node) (string, *asg.Node) {
	return a.evaluateName(node.Node("selector"))
}

func isApplySelector(selector string) bool {
	return selector == config.ApplySelector || selector == "value" || strings.HasPrefix(selector, "value:")
}

// expandMessageSend resolves `receiver selector: arguments`. Functional
// receivers with an apply selector are applied directly, type receivers with
// one argument coerce it, and every other send becomes an application of the
// function bound to the selector with the receiver as first argument.
func (a *Analyzer) expandMessageSend(node *asg.Node) *asg.Node {
	selector, selectorError := a.messageSelector(node)
	if selectorError != nil {
		return selectorError
	}
	arguments := node.Nodes("arguments")
	receiverNode := node.Node("receiver")

	var receiver *asg.Node
	if receiverNode != nil {
		receiver = a.Analyze(receiverNode)
		receiverType := a.typeOf(receiver)
		switch {
		case isApplySelector(selector) && (receiverType.IsA(asg.FunctionType) || receiverType.IsA(asg.PiType) || receiverType.IsA(asg.MacroFunctionType)):
			return a.applyFunctional(node, receiver, arguments)
		case selector == config.ApplySelector && receiver.Kind().IsType():
			return a.applyTypeCoercion(node, receiver, arguments)
		}
		arguments = append([]*asg.Node{receiver}, arguments...)
	}

	identifier := a.builder.ForSyntaxExpansionBuild(algorithmName, node, asg.SyntaxIdentifier, nil, selector)
	application := a.builder.ForSyntaxExpansionBuild(algorithmName, node, asg.SyntaxApplication, nil,
		identifier, arguments, "message")
	return a.delegate(node, application)
}
