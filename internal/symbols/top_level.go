package symbols

import (
	"fmt"

	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/config"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/evaluator"
	"github.com/funvibe/sysmel/internal/token"
)

// TopLevelEnvironment is the root of every environment chain of one
// compilation target. It owns the interned built-in types, the primitive
// function bindings and the type universe cache. It is append-only.
type TopLevelEnvironment struct {
	Target   config.CompilationTarget
	builder  *asg.Builder
	bindings map[string][]*Binding
	types    map[string]*asg.Node
	names    []string
	universe map[int64]*asg.Node
}

// NewTopLevelEnvironment creates the environment and registers the primitive
// base types of target. Primitive functions are added by the caller.
func NewTopLevelEnvironment(target config.CompilationTarget, builder *asg.Builder) *TopLevelEnvironment {
	env := &TopLevelEnvironment{
		Target:   target,
		builder:  builder,
		bindings: make(map[string][]*Binding),
		types:    make(map[string]*asg.Node),
		universe: make(map[int64]*asg.Node),
	}
	env.registerBaseTypes()
	return env
}

func (e *TopLevelEnvironment) Scope() ScopeType                                { return ScopeTopLevel }
func (e *TopLevelEnvironment) Parent() Environment                             { return nil }
func (e *TopLevelEnvironment) TopLevelTargetEnvironment() *TopLevelEnvironment { return e }
func (e *TopLevelEnvironment) FunctionState() *FunctionState                   { return nil }

// Builder returns the root builder owning the built-in nodes.
func (e *TopLevelEnvironment) Builder() *asg.Builder { return e.builder }

func (e *TopLevelEnvironment) LookSymbolBindingListRecursively(name string) []*Binding {
	bindings := e.bindings[name]
	result := make([]*Binding, len(bindings))
	copy(result, bindings)
	return result
}

// AddBinding registers a global binding. Several bindings may share a name.
func (e *TopLevelEnvironment) AddBinding(name string, value *asg.Node) *Binding {
	binding := &Binding{Name: name, Value: value, scope: e}
	if _, exists := e.bindings[name]; !exists {
		e.names = append(e.names, name)
	}
	e.bindings[name] = append(e.bindings[name], binding)
	return binding
}

// BindingNames lists the bound names in registration order.
func (e *TopLevelEnvironment) BindingNames() []string {
	result := make([]string, len(e.names))
	copy(result, e.names)
	return result
}

// TypeNamed returns a registered built-in type.
func (e *TopLevelEnvironment) TypeNamed(name string) *asg.Node {
	typ, ok := e.types[name]
	if !ok {
		diagnostics.Fatalf("built-in type %s is not registered", name)
	}
	return typ
}

// LookupType returns a registered built-in type, if any.
func (e *TopLevelEnvironment) LookupType(name string) (*asg.Node, bool) {
	typ, ok := e.types[name]
	return typ, ok
}

// TypeUniverseWithIndex returns the interned universe Type@index.
func (e *TopLevelEnvironment) TypeUniverseWithIndex(index int64) *asg.Node {
	if universe, ok := e.universe[index]; ok {
		return universe
	}
	universe := e.builder.Build(asg.TypeUniverse, asg.NoDerivation, index)
	e.universe[index] = universe
	return universe
}

func (e *TopLevelEnvironment) Void() *asg.Node    { return e.TypeNamed(config.VoidTypeName) }
func (e *TopLevelEnvironment) Abort() *asg.Node   { return e.TypeNamed(config.AbortTypeName) }
func (e *TopLevelEnvironment) Boolean() *asg.Node { return e.TypeNamed(config.BooleanTypeName) }
func (e *TopLevelEnvironment) Integer() *asg.Node { return e.TypeNamed(config.IntegerTypeName) }

// VoidLiteral returns the unique value of Void.
func (e *TopLevelEnvironment) VoidLiteral(builder *asg.Builder, derivation asg.Derivation) *asg.Node {
	return builder.Build(asg.LiteralUnit, derivation, e.Void())
}

// BooleanLiteral builds true or false as an injection into Boolean.
func (e *TopLevelEnvironment) BooleanLiteral(builder *asg.Builder, derivation asg.Derivation, value bool) *asg.Node {
	return evaluator.BooleanLiteral(builder, derivation, e.Boolean(), value)
}

func (e *TopLevelEnvironment) addType(name string, typ *asg.Node) *asg.Node {
	typ = e.builder.Unify(typ).Node
	e.types[name] = typ
	e.AddBinding(name, typ)
	return typ
}

func (e *TopLevelEnvironment) build(kind *asg.Kind, values ...interface{}) *asg.Node {
	return e.builder.Build(kind, asg.NoDerivation, values...)
}

func (e *TopLevelEnvironment) registerBaseTypes() {
	pointerSize := int64(e.Target.PointerSize)
	pointerAlignment := int64(e.Target.PointerAlignment)

	e.addType(config.IntegerTypeName, e.build(asg.BaseType, config.IntegerTypeName, 0, 0))
	e.addType(config.SymbolTypeName, e.build(asg.BaseType, config.SymbolTypeName, pointerSize, pointerAlignment))
	e.addType(config.StringTypeName, e.build(asg.BaseType, config.StringTypeName, 2*pointerSize, pointerAlignment))
	e.addType(config.ASTNodeTypeName, e.build(asg.BaseType, config.ASTNodeTypeName, pointerSize, pointerAlignment))

	e.addType(config.VoidTypeName, e.build(asg.UnitType, config.VoidTypeName, 0, 1))
	e.addType(config.AbortTypeName, e.build(asg.BottomType, config.AbortTypeName, 0, 1))
	falseType := e.addType(config.FalseTypeName, e.build(asg.UnitType, config.FalseTypeName, 0, 1))
	trueType := e.addType(config.TrueTypeName, e.build(asg.UnitType, config.TrueTypeName, 0, 1))
	e.addType(config.BooleanTypeName, e.build(asg.SumType, []*asg.Node{falseType, trueType}))

	for _, size := range []int64{1, 2, 4} {
		name := fmt.Sprintf("Char%d", size*8)
		e.addType(name, e.build(asg.PrimitiveCharacterType, name, size, size))
	}
	for _, size := range []int64{1, 2, 4, 8} {
		signed := fmt.Sprintf("Int%d", size*8)
		unsigned := fmt.Sprintf("UInt%d", size*8)
		e.addType(signed, e.build(asg.PrimitiveIntegerType, signed, size, size, true))
		e.addType(unsigned, e.build(asg.PrimitiveIntegerType, unsigned, size, size, false))
	}
	for _, size := range []int64{4, 8} {
		name := fmt.Sprintf("Float%d", size*8)
		e.addType(name, e.build(asg.PrimitiveFloatType, name, size, size))
	}

	e.addType(config.SizeTypeName, e.build(asg.PrimitiveIntegerType, config.SizeTypeName, pointerSize, pointerAlignment, false))
	e.addType(config.UIntPtrTypeName, e.build(asg.PrimitiveIntegerType, config.UIntPtrTypeName, pointerSize, pointerAlignment, false))
	e.addType(config.IntPtrTypeName, e.build(asg.PrimitiveIntegerType, config.IntPtrTypeName, pointerSize, pointerAlignment, true))

	universe := e.TypeUniverseWithIndex(0)
	e.types[config.TypeUniverseName] = universe
	e.AddBinding(config.TypeUniverseName, universe)

	e.AddBinding(config.VoidLiteralName, e.VoidLiteral(e.builder, asg.NoDerivation))
	e.AddBinding(config.FalseLiteralName, e.BooleanLiteral(e.builder, asg.NoDerivation, false))
	e.AddBinding(config.TrueLiteralName, e.BooleanLiteral(e.builder, asg.NoDerivation, true))
}

// NewScriptEnvironmentFor creates the environment of one script, binding its
// name and directory as string literals.
func NewScriptEnvironmentFor(parent Environment, source *token.SourceCode) *ScriptEnvironment {
	top := parent.TopLevelTargetEnvironment()
	name, directory := "", ""
	if source != nil {
		name, directory = source.Name, source.Directory
	}
	env := NewScriptEnvironment(parent, name, directory)
	stringType := top.TypeNamed(config.StringTypeName)
	env.bind(config.ScriptNameBinding, top.builder.Build(asg.LiteralString, asg.NoDerivation, stringType, name))
	env.bind(config.SourceDirectoryBinding, top.builder.Build(asg.LiteralString, asg.NoDerivation, stringType, directory))
	if source != nil {
		env.bind(config.SourceFileBinding, top.builder.Build(asg.LiteralString, asg.NoDerivation, stringType, source.Directory+"/"+source.Name))
	}
	return env
}
