package analyzer_test

import (
	"strings"
	"testing"

	"github.com/funvibe/sysmel/internal/analyzer"
	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/config"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/syntaxfile"
	"github.com/funvibe/sysmel/internal/token"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// analyzeScript loads document as a syntax graph and expands it as a script.
func analyzeScript(t *testing.T, document string) (*analyzer.Context, *asg.Node) {
	t.Helper()
	context := analyzer.NewContext(config.DefaultTarget(), nil)
	source := token.NewSourceCode("test.yaml")
	syntax, err := syntaxfile.Load(context.Builder(), source, []byte(strings.TrimSpace(document)))
	require.NoError(t, err)

	script := context.ExpandTopLevelScript(source, syntax)
	require.True(t, script.IsA(asg.TopLevelScript), "got %s", script)
	return context, script
}

func errorCodes(context *analyzer.Context) []diagnostics.ErrorCode {
	var codes []diagnostics.ErrorCode
	for _, err := range context.Diagnostics() {
		codes = append(codes, err.Code)
	}
	return codes
}

func requireNoDiagnostics(t *testing.T, context *analyzer.Context) {
	t.Helper()
	require.NoError(t, context.Err())
}

func nodesOfKind(root *asg.Node, kind *asg.Kind) []*asg.Node {
	var result []*asg.Node
	for _, node := range asg.TopoSort(root) {
		if node.IsA(kind) {
			result = append(result, node)
		}
	}
	return result
}

func TestEmptyTupleIsVoid(t *testing.T) {
	context, script := analyzeScript(t, `kind: Tuple`)
	requireNoDiagnostics(t, context)

	top := context.TopLevelEnvironment()
	result := script.Node("result")
	assert.Same(t, top.VoidLiteral(context.Builder(), asg.NoDerivation), result)
	assert.Same(t, top.Void(), script.Type())
}

func TestLiteralsGetDefaultTypes(t *testing.T) {
	tests := []struct {
		document string
		kind     *asg.Kind
		typeName string
	}{
		{`{integer: 42}`, asg.LiteralInteger, config.IntegerTypeName},
		{`{float: 2.5}`, asg.LiteralFloat, config.Float64TypeName},
		{`{character: "a"}`, asg.LiteralCharacter, config.Char32TypeName},
		{`{string: hello}`, asg.LiteralString, config.StringTypeName},
		{`{symbol: hello}`, asg.LiteralSymbol, config.SymbolTypeName},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			context, script := analyzeScript(t, tt.document)
			requireNoDiagnostics(t, context)
			result := script.Node("result")
			assert.True(t, result.IsA(tt.kind), "got %s", result)
			assert.Same(t, context.TopLevelEnvironment().TypeNamed(tt.typeName), result.Type())
		})
	}
}

func TestTupleOfTypesIsProductType(t *testing.T) {
	context, script := analyzeScript(t, `
kind: Tuple
elements: [{identifier: Integer}, {identifier: Boolean}]
`)
	requireNoDiagnostics(t, context)
	top := context.TopLevelEnvironment()

	result := script.Node("result")
	require.True(t, result.IsA(asg.ProductType), "got %s", result)
	assert.Equal(t, []*asg.Node{top.Integer(), top.Boolean()}, result.Nodes("elements"))
}

func TestTupleOfValues(t *testing.T) {
	context, script := analyzeScript(t, `
kind: Tuple
elements: [{integer: 1}, {string: two}]
`)
	requireNoDiagnostics(t, context)

	result := script.Node("result")
	require.True(t, result.IsA(asg.Tuple), "got %s", result)
	assert.Equal(t, "(Integer, String)", result.Type().PrettyString())
}

func TestUnboundIdentifierIsDiagnosedWithoutAborting(t *testing.T) {
	context, script := analyzeScript(t, `
- {identifier: missing}
- {integer: 7}
`)
	diagnosticsList := context.Diagnostics()
	require.Len(t, diagnosticsList, 1)
	assert.Equal(t, diagnostics.ErrA001, diagnosticsList[0].Code)
	assert.Equal(t, "unbound identifier missing", diagnosticsList[0].Message)
	assert.Equal(t, 1, diagnosticsList[0].Position.StartLine)
	assert.Equal(t, "test.yaml", diagnosticsList[0].File)

	errorNodes := nodesOfKind(script, asg.Error)
	assert.Empty(t, errorNodes, "the error value is not part of the script result")
	assert.Equal(t, int64(7), script.Node("result").BigInt("value").Int64())
}

func TestErrorNodesAreAbortTyped(t *testing.T) {
	context, script := analyzeScript(t, `{identifier: missing}`)
	result := script.Node("result")
	require.True(t, result.IsA(asg.Error))
	assert.Same(t, context.TopLevelEnvironment().Abort(), result.Type())
	assert.Error(t, context.Err())
}

func TestMessageSendFoldsPrimitiveArithmetic(t *testing.T) {
	context, script := analyzeScript(t, `
kind: MessageSend
receiver: {integer: 1}
selector: {symbol: +}
arguments: [{integer: 2}]
`)
	requireNoDiagnostics(t, context)

	result := script.Node("result")
	require.True(t, result.IsA(asg.LiteralInteger), "got %s", result)
	assert.Equal(t, int64(3), result.BigInt("value").Int64())
	assert.Same(t, context.TopLevelEnvironment().Integer(), result.Type())
	assert.Empty(t, nodesOfKind(script, asg.Application), "folded applications leave no trace")
}

func TestNoMatchingOverload(t *testing.T) {
	context, script := analyzeScript(t, `
kind: MessageSend
receiver: {integer: 1}
selector: {symbol: +}
arguments: [{string: two}]
`)
	assert.Equal(t, []diagnostics.ErrorCode{diagnostics.ErrA007}, errorCodes(context))
	assert.Contains(t, context.Diagnostics()[0].Message, "no overload of + accepts arguments of types (Integer, String)")
	assert.True(t, script.Node("result").IsA(asg.Error))
}

func TestIfThenElseMergesValuesWithPhi(t *testing.T) {
	context, script := analyzeScript(t, `
kind: MessageSend
selector: {symbol: "if:then:else:"}
arguments: [{identifier: "true"}, {integer: 1}, {integer: 2}]
`)
	requireNoDiagnostics(t, context)
	integer := context.TopLevelEnvironment().Integer()

	phi := script.Node("result")
	require.True(t, phi.IsA(asg.Phi), "got %s", phi)
	assert.Same(t, integer, phi.Type())

	values := phi.Nodes("values")
	require.Len(t, values, 2)
	for i, value := range values {
		assert.True(t, value.IsA(asg.PhiValue))
		assert.Same(t, integer, value.Type())
		assert.Equal(t, int64(i+1), value.Node("value").BigInt("value").Int64())
		assert.True(t, value.Predecessor().IsA(asg.SequenceEntry))
	}

	convergence := phi.Predecessor()
	require.True(t, convergence.IsA(asg.SequenceConvergence), "got %s", convergence)
	assert.Equal(t, values, convergence.Nodes("predecessors"))

	branch := convergence.Node("divergence")
	require.True(t, branch.IsA(asg.ConditionalBranch))
	assert.Same(t, values[0].Predecessor(), branch.Node("trueDestination"))
	assert.Same(t, values[1].Predecessor(), branch.Node("falseDestination"))
	assert.Same(t, context.TopLevelEnvironment().BooleanLiteral(context.Builder(), asg.NoDerivation, true), branch.Node("condition"))

	assert.Same(t, phi, script.Node("exitPoint"))
	assert.True(t, asg.IsReachableBackwards(script.Node("exitPoint"), script.Node("entryPoint")))
}

func TestIfThenWithoutElseIsVoid(t *testing.T) {
	context, script := analyzeScript(t, `
kind: MessageSend
selector: {symbol: "if:then:"}
arguments: [{identifier: "false"}, {integer: 1}]
`)
	requireNoDiagnostics(t, context)

	result := script.Node("result")
	assert.Same(t, context.TopLevelEnvironment().Void(), result.Type())
	assert.Empty(t, nodesOfKind(script, asg.Phi))

	convergence := script.Node("exitPoint")
	require.True(t, convergence.IsA(asg.SequenceConvergence), "got %s", convergence)
	assert.Len(t, convergence.Nodes("predecessors"), 2)
	assert.True(t, asg.IsReachableBackwards(convergence, script.Node("entryPoint")))
}

func TestIfConditionMustBeBoolean(t *testing.T) {
	context, _ := analyzeScript(t, `
kind: IfThenElse
condition: {integer: 1}
trueExpression: {integer: 2}
falseExpression: {integer: 3}
`)
	require.Equal(t, []diagnostics.ErrorCode{diagnostics.ErrA002}, errorCodes(context))
	assert.Equal(t, "type mismatch: expected (False | True), got Integer", context.Diagnostics()[0].Message)
}

func TestMacroArityIsChecked(t *testing.T) {
	context, _ := analyzeScript(t, `
kind: Application
functional: {identifier: "if:then:"}
arguments: [{identifier: "true"}]
`)
	require.Equal(t, []diagnostics.ErrorCode{diagnostics.ErrA003}, errorCodes(context))
	assert.Equal(t, "macro if:then: expected 2 arguments but 1 were given", context.Diagnostics()[0].Message)
}

const identityFunction = `
- kind: BindingDefinition
  nameExpression: {symbol: identity}
  valueExpression:
    kind: Lambda
    arguments:
      - kind: Argument
        typeExpression: {identifier: Integer}
        nameExpression: {symbol: x}
    resultType: {identifier: Integer}
    body: {identifier: x}
`

func TestLambdaApplicationArity(t *testing.T) {
	tests := []struct {
		name      string
		arguments string
		wantCodes []diagnostics.ErrorCode
		message   string
	}{
		{name: "exact", arguments: "[{integer: 5}]"},
		{name: "too few", arguments: "[]", wantCodes: []diagnostics.ErrorCode{diagnostics.ErrA003}, message: "expected 1 arguments but 0 were given"},
		{name: "too many", arguments: "[{integer: 1}, {integer: 2}, {integer: 3}]", wantCodes: []diagnostics.ErrorCode{diagnostics.ErrA003}, message: "expected 1 arguments but 3 were given"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			context, script := analyzeScript(t, identityFunction+`
- kind: Application
  functional: {identifier: identity}
  arguments: `+tt.arguments+"\n")
			if diff := cmp.Diff(tt.wantCodes, errorCodes(context)); diff != "" {
				t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
			}

			result := script.Node("result")
			if tt.message != "" {
				assert.Equal(t, tt.message, context.Diagnostics()[0].Message)
				require.True(t, result.IsA(asg.Error))
				result = result.Nodes("innerNodes")[0]
			}
			require.True(t, result.IsA(asg.Application), "got %s", result)
			assert.True(t, result.Node("functional").IsA(asg.Lambda))
			assert.Same(t, context.TopLevelEnvironment().Integer(), result.Type())
		})
	}
}

func TestLambdaStructure(t *testing.T) {
	context, script := analyzeScript(t, identityFunction)
	requireNoDiagnostics(t, context)
	integer := context.TopLevelEnvironment().Integer()

	lambda := script.Node("result")
	require.True(t, lambda.IsA(asg.Lambda), "got %s", lambda)
	arguments := lambda.Nodes("arguments")
	require.Len(t, arguments, 1)
	assert.Equal(t, "x", arguments[0].Str("name"))
	assert.Same(t, integer, arguments[0].Type())

	assert.Same(t, arguments[0], lambda.Node("result"))
	assert.True(t, lambda.Node("entryPoint").IsA(asg.SequenceEntry))
	assert.Same(t, lambda.Node("entryPoint"), lambda.Node("exitPoint"))
	assert.Empty(t, lambda.Nodes("captures"))

	piType := lambda.Type()
	require.True(t, piType.IsA(asg.PiType))
	assert.Equal(t, arguments, piType.Nodes("arguments"))
	assert.Same(t, integer, piType.Node("resultType"))
}

func TestNestedLambdaCapturesOuterArgument(t *testing.T) {
	context, script := analyzeScript(t, `
kind: Lambda
arguments:
  - {kind: Argument, typeExpression: {identifier: Integer}, nameExpression: {symbol: x}}
body:
  kind: Lambda
  arguments:
    - {kind: Argument, typeExpression: {identifier: Integer}, nameExpression: {symbol: y}}
  body: {identifier: x}
`)
	requireNoDiagnostics(t, context)

	outer := script.Node("result")
	require.True(t, outer.IsA(asg.Lambda))
	assert.Empty(t, outer.Nodes("captures"))
	x := outer.Nodes("arguments")[0]

	inner := outer.Node("result")
	require.True(t, inner.IsA(asg.Lambda), "got %s", inner)
	captures := inner.Nodes("captures")
	require.Len(t, captures, 1)
	assert.True(t, captures[0].IsA(asg.CapturedValue))
	assert.Equal(t, "x", captures[0].Str("name"))
	assert.Equal(t, int64(1), captures[0].Int("level"))
	assert.Equal(t, []*asg.Node{x}, inner.Nodes("capturedValues"))
	assert.Same(t, captures[0], inner.Node("result"))

	y := inner.Nodes("arguments")[0]
	assert.NotEqual(t, x.Int("level"), y.Int("level"))
}

func TestShadowingResolvesToNearestBinding(t *testing.T) {
	context, script := analyzeScript(t, `
- {kind: BindingDefinition, nameExpression: {symbol: x}, valueExpression: {integer: 1}}
- {kind: BindingDefinition, nameExpression: {symbol: x}, valueExpression: {integer: 2}}
- {identifier: x}
`)
	requireNoDiagnostics(t, context)
	assert.Equal(t, int64(2), script.Node("result").BigInt("value").Int64())
}

func TestBindPatternOfIdentifier(t *testing.T) {
	context, script := analyzeScript(t, `
kind: LexicalBlock
body:
  - {kind: BindPattern, pattern: {identifier: answer}, value: {integer: 42}}
  - kind: MessageSend
    receiver: {identifier: answer}
    selector: {symbol: "*"}
    arguments: [{integer: 2}]
`)
	requireNoDiagnostics(t, context)
	assert.Equal(t, int64(84), script.Node("result").BigInt("value").Int64())
}

func TestBindingsDoNotEscapeBlocks(t *testing.T) {
	context, _ := analyzeScript(t, `
- kind: LexicalBlock
  body: {kind: BindingDefinition, nameExpression: {symbol: hidden}, valueExpression: {integer: 1}}
- {identifier: hidden}
`)
	assert.Equal(t, []diagnostics.ErrorCode{diagnostics.ErrA001}, errorCodes(context))
}

func TestTypedBindingCoercesValue(t *testing.T) {
	context, script := analyzeScript(t, `
- kind: BindingDefinition
  typeExpression: {identifier: Int8}
  nameExpression: {symbol: small}
  valueExpression: {integer: 300}
- {identifier: small}
`)
	requireNoDiagnostics(t, context)
	result := script.Node("result")
	assert.Same(t, context.TopLevelEnvironment().TypeNamed("Int8"), result.Type())
	assert.Equal(t, int64(44), result.BigInt("value").Int64())
}

func TestTypedBindingMismatch(t *testing.T) {
	context, _ := analyzeScript(t, `
kind: BindingDefinition
typeExpression: {identifier: Integer}
nameExpression: {symbol: name}
valueExpression: {string: text}
`)
	require.Equal(t, []diagnostics.ErrorCode{diagnostics.ErrA002}, errorCodes(context))
	assert.Equal(t, "type mismatch: expected Integer, got String", context.Diagnostics()[0].Message)
}

func TestTypeApplicationCoerces(t *testing.T) {
	context, script := analyzeScript(t, `
kind: Application
functional: {identifier: UInt8}
arguments: [{integer: -1}]
`)
	requireNoDiagnostics(t, context)
	result := script.Node("result")
	assert.Same(t, context.TopLevelEnvironment().TypeNamed("UInt8"), result.Type())
	assert.Equal(t, int64(255), result.BigInt("value").Int64())
}

func TestArgumentWithoutType(t *testing.T) {
	context, script := analyzeScript(t, `
kind: Lambda
arguments: [{kind: Argument, nameExpression: {symbol: x}}]
body: {identifier: x}
`)
	assert.Equal(t, []diagnostics.ErrorCode{diagnostics.ErrA004}, errorCodes(context))
	lambda := script.Node("result")
	require.True(t, lambda.IsA(asg.Lambda))
	assert.Same(t, context.TopLevelEnvironment().Abort(), lambda.Nodes("arguments")[0].Type())
}

func TestNotATypeInTypePosition(t *testing.T) {
	context, _ := analyzeScript(t, `
kind: Pi
arguments: [{kind: Argument, typeExpression: {integer: 3}, nameExpression: {symbol: x}}]
`)
	assert.Equal(t, []diagnostics.ErrorCode{diagnostics.ErrA004}, errorCodes(context))
	assert.Equal(t, "expected a type, got a value of type Integer", context.Diagnostics()[0].Message)
}

func TestPiDefaultsResultToVoid(t *testing.T) {
	context, script := analyzeScript(t, `
kind: FunctionalDependentType
argumentPattern: {kind: BindableName, typeExpression: {identifier: Integer}, nameExpression: {symbol: n}}
`)
	requireNoDiagnostics(t, context)
	pi := script.Node("result")
	require.True(t, pi.IsA(asg.PiType), "got %s", pi)
	assert.Same(t, context.TopLevelEnvironment().Void(), pi.Node("resultType"))
	assert.Equal(t, "(n: Integer) => Void", pi.PrettyString())
}

func TestApplyingANonFunction(t *testing.T) {
	context, _ := analyzeScript(t, `
kind: Application
functional: {integer: 3}
arguments: [{integer: 4}]
`)
	assert.Equal(t, []diagnostics.ErrorCode{diagnostics.ErrA006}, errorCodes(context))
}

func TestSyntaxErrorsPassThrough(t *testing.T) {
	context, _ := analyzeScript(t, `
kind: Error
message: unexpected token
innerNodes: [{identifier: missing}]
`)
	assert.ElementsMatch(t, []diagnostics.ErrorCode{diagnostics.ErrA009, diagnostics.ErrA001}, errorCodes(context))
}

func TestAnalyzingTypedNodesIsIdentity(t *testing.T) {
	context := analyzer.NewContext(config.DefaultTarget(), nil)
	top := context.TopLevelEnvironment()
	literal := context.Builder().Build(asg.LiteralInteger, asg.NoDerivation, top.Integer(), 9)
	assert.Same(t, literal, context.ExpandAndTypecheck(top, literal))
	assert.Same(t, top.Boolean(), context.ExpandAndTypecheck(top, top.Boolean()))
}

func TestScriptBindings(t *testing.T) {
	context, script := analyzeScript(t, `{identifier: __ScriptName__}`)
	requireNoDiagnostics(t, context)
	assert.Equal(t, "test.yaml", script.Node("result").Str("value"))
}

func TestAssignmentToSignatureDefinesLambda(t *testing.T) {
	context, script := analyzeScript(t, `
kind: Assignment
store:
  kind: FunctionalDependentType
  argumentPattern: {kind: BindableName, typeExpression: {identifier: Integer}, nameExpression: {symbol: n}}
  resultType: {identifier: Integer}
value: {identifier: n}
`)
	requireNoDiagnostics(t, context)

	lambda := script.Node("result")
	require.True(t, lambda.IsA(asg.Lambda), "got %s", lambda)
	arguments := lambda.Nodes("arguments")
	require.Len(t, arguments, 1)
	assert.Equal(t, "n", arguments[0].Str("name"))
	assert.Same(t, arguments[0], lambda.Node("result"))
	assert.Equal(t, "(n: Integer) => Integer", lambda.Type().PrettyString())
}

func TestAssignmentToNamedSignatureBindsFunction(t *testing.T) {
	context, script := analyzeScript(t, `
- kind: Assignment
  store:
    kind: BindableName
    nameExpression: {symbol: twice}
    hasPostTypeExpression: true
    typeExpression:
      kind: FunctionalDependentType
      argumentPattern: {kind: BindableName, typeExpression: {identifier: Integer}, nameExpression: {symbol: n}}
      resultType: {identifier: Integer}
  value:
    kind: MessageSend
    receiver: {identifier: n}
    selector: {symbol: "*"}
    arguments: [{integer: 2}]
- {identifier: twice}
`)
	requireNoDiagnostics(t, context)

	lambda := script.Node("result")
	require.True(t, lambda.IsA(asg.Lambda), "got %s", lambda)
	body := lambda.Node("result")
	require.True(t, body.IsA(asg.Application), "got %s", body)
	assert.Same(t, context.TopLevelEnvironment().Integer(), body.Type())
}
