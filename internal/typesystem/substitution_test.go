package typesystem

import (
	"testing"

	"github.com/funvibe/sysmel/internal/asg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type substitutionFixture struct {
	builder  *asg.Builder
	integer  *asg.Node
	universe *asg.Node
}

func newSubstitutionFixture() *substitutionFixture {
	builder := asg.NewBuilder(nil)
	return &substitutionFixture{
		builder:  builder,
		integer:  builder.Build(asg.BaseType, asg.NoDerivation, "Integer", 0, 0),
		universe: builder.Build(asg.TypeUniverse, asg.NoDerivation, 0),
	}
}

func (f *substitutionFixture) argument(typ *asg.Node, index int, name string) *asg.Node {
	return f.builder.Build(asg.Argument, asg.NoDerivation, typ, index, 0, name, false, false, false)
}

func (f *substitutionFixture) integerLiteral(value int64) *asg.Node {
	return f.builder.Build(asg.LiteralInteger, asg.NoDerivation, f.integer, value)
}

func TestSubstReplacesArguments(t *testing.T) {
	f := newSubstitutionFixture()
	x := f.argument(f.integer, 0, "x")
	y := f.argument(f.integer, 1, "y")
	pair := f.builder.Build(asg.ProductType, asg.NoDerivation, []*asg.Node{f.integer, f.integer})
	tuple := f.builder.Build(asg.Tuple, asg.NoDerivation, pair, []*asg.Node{x, y})

	subst := NewSubst()
	subst.Bind(x, f.integerLiteral(5))
	require.True(t, subst.Affects(tuple))

	result := subst.Apply(f.builder, tuple)
	require.True(t, result.IsA(asg.Tuple))
	elements := result.Nodes("elements")
	assert.Equal(t, int64(5), elements[0].BigInt("value").Int64())
	assert.Same(t, y, elements[1])

	subst.Bind(y, f.integerLiteral(6))
	assert.Equal(t, 2, subst.Len())
	closed := subst.Apply(f.builder, tuple)
	assert.True(t, closed.BetaReplaceableDependencies().IsEmpty())
}

func TestSubstLeavesUnaffectedNodesAlone(t *testing.T) {
	f := newSubstitutionFixture()
	x := f.argument(f.integer, 0, "x")
	unrelated := f.argument(f.integer, 1, "unrelated")
	literal := f.integerLiteral(1)

	empty := NewSubst()
	assert.True(t, empty.IsEmpty())
	assert.Same(t, x, empty.Apply(f.builder, x))
	assert.Nil(t, empty.Apply(f.builder, nil))

	subst := NewSubst()
	subst.Bind(x, literal)
	assert.False(t, subst.Affects(unrelated))
	assert.Same(t, unrelated, subst.Apply(f.builder, unrelated))
	assert.Same(t, literal, subst.Apply(f.builder, literal))
	assert.Same(t, literal, subst.Apply(f.builder, x))

	replacement, ok := subst.Lookup(x)
	assert.True(t, ok)
	assert.Same(t, literal, replacement)
}

func TestSubstInstantiatesDependentResultTypes(t *testing.T) {
	f := newSubstitutionFixture()
	typeArgument := f.argument(f.universe, 0, "T")
	value := f.argument(typeArgument, 1, "value")
	identity := f.builder.Build(asg.PiType, asg.NoDerivation, []*asg.Node{typeArgument, value}, false, typeArgument)

	subst := NewSubst()
	subst.Bind(typeArgument, f.integer)
	instantiated := subst.Apply(f.builder, identity.Node("resultType"))
	assert.Same(t, f.integer, instantiated)

	retyped := subst.Apply(f.builder, value)
	require.True(t, retyped.IsA(asg.Argument))
	assert.Same(t, f.integer, retyped.Type())
	assert.Equal(t, "value", retyped.Str("name"))
}

func TestSubstResultsAreInterned(t *testing.T) {
	f := newSubstitutionFixture()
	x := f.argument(f.integer, 0, "x")
	pair := f.builder.Build(asg.ProductType, asg.NoDerivation, []*asg.Node{f.integer, f.integer})
	tuple := f.builder.Build(asg.Tuple, asg.NoDerivation, pair, []*asg.Node{x, x})

	subst := NewSubst()
	subst.Bind(x, f.integerLiteral(7))
	first := subst.Apply(f.builder, tuple)
	second := subst.Apply(f.builder, tuple)
	assert.Same(t, first, second)

	expected := f.builder.Build(asg.Tuple, asg.NoDerivation, pair, []*asg.Node{f.integerLiteral(7), f.integerLiteral(7)})
	assert.Same(t, expected, first)
}
