package symbols

import (
	"testing"

	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/config"
	"github.com/funvibe/sysmel/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTopLevel(t *testing.T) *TopLevelEnvironment {
	t.Helper()
	return NewTopLevelEnvironment(config.DefaultTarget(), asg.NewBuilder(nil))
}

func values(bindings []*Binding) []*asg.Node {
	result := make([]*asg.Node, len(bindings))
	for i, binding := range bindings {
		result[i] = binding.Value
	}
	return result
}

func TestTopLevelTypes(t *testing.T) {
	top := newTopLevel(t)

	boolean := top.Boolean()
	require.True(t, boolean.IsA(asg.SumType))
	assert.Equal(t, []*asg.Node{top.TypeNamed(config.FalseTypeName), top.TypeNamed(config.TrueTypeName)}, boolean.Nodes("variants"))

	assert.Equal(t, int64(8), top.TypeNamed(config.SizeTypeName).Int("size"))
	assert.True(t, top.TypeNamed("Int16").Bool("isSigned"))
	assert.False(t, top.TypeNamed("UInt16").Bool("isSigned"))

	_, ok := top.LookupType("Quaternion")
	assert.False(t, ok)
	assert.Same(t, top.TypeUniverseWithIndex(0), top.TypeNamed(config.TypeUniverseName))
	assert.NotSame(t, top.TypeUniverseWithIndex(0), top.TypeUniverseWithIndex(1))
}

func TestTopLevelPointerSizedTypesFollowTarget(t *testing.T) {
	target, err := config.TargetNamed("wasm32")
	require.NoError(t, err)
	top := NewTopLevelEnvironment(target, asg.NewBuilder(nil))

	assert.Equal(t, int64(4), top.TypeNamed(config.UIntPtrTypeName).Int("size"))
	assert.Equal(t, int64(8), top.TypeNamed(config.StringTypeName).Int("size"))
}

func TestPersistentChain(t *testing.T) {
	top := newTopLevel(t)
	builder := top.Builder()
	one := builder.Build(asg.LiteralInteger, asg.NoDerivation, top.Integer(), 1)
	two := builder.Build(asg.LiteralInteger, asg.NoDerivation, top.Integer(), 2)

	script := NewScriptEnvironmentFor(top, token.NewSourceCode("/src/main.yaml"))
	first := ChildWithSymbolBinding(script, "x", one)
	second := ChildWithSymbolBinding(first, "x", two)

	assert.Empty(t, script.LookSymbolBindingListRecursively("x"))
	assert.Equal(t, []*asg.Node{one}, values(first.LookSymbolBindingListRecursively("x")))
	assert.Equal(t, []*asg.Node{two, one}, values(second.LookSymbolBindingListRecursively("x")))
	assert.Same(t, top, second.TopLevelTargetEnvironment())
	assert.Nil(t, second.FunctionState())

	name := script.LookSymbolBindingListRecursively(config.ScriptNameBinding)
	require.Len(t, name, 1)
	assert.Equal(t, "main.yaml", name[0].Value.Str("value"))
}

func TestOverloadSetStopsAtShadowingScope(t *testing.T) {
	top := newTopLevel(t)
	integer := top.Integer()

	plus := OverloadSet(top.LookSymbolBindingListRecursively("+"))
	assert.Empty(t, plus, "no primitives are registered without the analyzer")

	builder := top.Builder()
	f := builder.Build(asg.LiteralInteger, asg.NoDerivation, integer, 1)
	g := builder.Build(asg.LiteralInteger, asg.NoDerivation, integer, 2)
	top.AddBinding("f", f)
	top.AddBinding("f", g)
	assert.Equal(t, []*asg.Node{f, g}, values(OverloadSet(top.LookSymbolBindingListRecursively("f"))))

	h := builder.Build(asg.LiteralInteger, asg.NoDerivation, integer, 3)
	shadowed := NewLexicalEnvironment(ChildWithSymbolBinding(top, "f", h))
	assert.Equal(t, []*asg.Node{h}, values(OverloadSet(shadowed.LookSymbolBindingListRecursively("f"))))
	assert.Len(t, shadowed.LookSymbolBindingListRecursively("f"), 3)
	assert.Nil(t, OverloadSet(nil))
}

func TestFunctionalEnvironmentCapturesEnclosingArguments(t *testing.T) {
	top := newTopLevel(t)
	builder := top.Builder().NewChild()
	integer := top.Integer()

	outer := NewFunctionalAnalysisEnvironment(top, builder)
	require.Equal(t, int64(0), outer.Level())
	x := builder.Build(asg.Argument, asg.NoDerivation, integer, 0, outer.Level(), "x", false, false, false)
	outer = outer.AddArgumentBinding("x", x)

	own := outer.LookSymbolBindingListRecursively("x")
	require.Len(t, own, 1)
	assert.Same(t, x, own[0].Value)
	assert.False(t, own[0].IsCapture())

	inner := NewFunctionalAnalysisEnvironment(NewLexicalEnvironment(outer), builder)
	assert.Equal(t, int64(1), inner.Level())

	captured := inner.LookSymbolBindingListRecursively("x")
	require.Len(t, captured, 1)
	require.True(t, captured[0].IsCapture())
	placeholder := captured[0].Value
	assert.True(t, placeholder.IsA(asg.CapturedValue))
	assert.Same(t, integer, placeholder.Type())
	assert.Equal(t, int64(1), placeholder.Int("level"))
	assert.Same(t, own[0], captured[0].Captured)

	again := inner.LookSymbolBindingListRecursively("x")
	assert.Same(t, captured[0], again[0], "a binding is captured once")

	captures := inner.FunctionState().Captures()
	require.Len(t, captures, 1)
	assert.Same(t, placeholder, captures[0].Placeholder)
	assert.Empty(t, outer.FunctionState().Captures())
}

func TestFunctionalEnvironmentDoesNotCaptureConstants(t *testing.T) {
	top := newTopLevel(t)
	builder := top.Builder().NewChild()
	integer := top.Integer()
	outer := NewFunctionalAnalysisEnvironment(top, builder)
	constant := builder.Build(asg.LiteralInteger, asg.NoDerivation, integer, 42)
	scope := ChildWithSymbolBinding(outer, "answer", constant)

	inner := NewFunctionalAnalysisEnvironment(scope, builder)
	bindings := inner.LookSymbolBindingListRecursively("answer")
	require.Len(t, bindings, 1)
	assert.Same(t, constant, bindings[0].Value)
	assert.False(t, bindings[0].IsCapture())
	assert.Empty(t, inner.FunctionState().Captures())

	integerBindings := inner.LookSymbolBindingListRecursively(config.IntegerTypeName)
	require.Len(t, integerBindings, 1)
	assert.Same(t, integer, integerBindings[0].Value)
}

func TestAnonymousArgumentsAreRecordedButNotBound(t *testing.T) {
	top := newTopLevel(t)
	builder := top.Builder().NewChild()
	env := NewFunctionalAnalysisEnvironment(top, builder)
	anonymous := builder.Build(asg.Argument, asg.NoDerivation, top.Integer(), 0, 0, "", false, false, false)
	env = env.AddArgumentBinding("", anonymous)

	assert.Equal(t, []*asg.Node{anonymous}, env.FunctionState().Arguments())
	assert.Empty(t, env.LookSymbolBindingListRecursively(""))
}
