package pipeline_test

import (
	"testing"

	"github.com/funvibe/sysmel/internal/analyzer"
	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/pipeline"
	"github.com/funvibe/sysmel/internal/syntaxfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func run(t *testing.T, input string) *pipeline.PipelineContext {
	t.Helper()
	ctx := pipeline.NewPipelineContext(input).WithLogger(zaptest.NewLogger(t)).WithFile("/work/main.yaml")
	return pipeline.New(&syntaxfile.LoaderProcessor{}, &analyzer.SemanticAnalyzerProcessor{}).Run(ctx)
}

func TestPipelineAnalyzesLoadedGraph(t *testing.T) {
	ctx := run(t, `
kind: MessageSend
receiver: {integer: 20}
selector: {symbol: +}
arguments: [{integer: 22}]
`)
	require.False(t, ctx.Failed(), "errors: %v, fatal: %v", ctx.Errors, ctx.Fatal)
	require.NotNil(t, ctx.SyntaxRoot)
	require.True(t, ctx.Result.IsA(asg.TopLevelScript))
	assert.Equal(t, int64(42), ctx.Result.Node("result").BigInt("value").Int64())
}

func TestPipelineCollectsSemanticErrors(t *testing.T) {
	ctx := run(t, `
- {identifier: first}
- {identifier: second}
`)
	assert.True(t, ctx.Failed())
	assert.NoError(t, ctx.Fatal)
	require.Len(t, ctx.Errors, 2)
	assert.Equal(t, diagnostics.ErrA001, ctx.Errors[0].Code)
	assert.Equal(t, "main.yaml:2:3: error[A001]: unbound identifier first", ctx.Errors[0].Error())
}

func TestPipelineStopsAfterLoadErrors(t *testing.T) {
	ctx := run(t, `{kind: Nonsense}`)
	require.Len(t, ctx.Errors, 1)
	assert.Equal(t, diagnostics.ErrS002, ctx.Errors[0].Code)
	assert.Nil(t, ctx.SyntaxRoot)
	assert.Nil(t, ctx.Result)
}

func TestPipelineReportsInternalErrors(t *testing.T) {
	ctx := run(t, `{identifier: "+"}`)
	require.Error(t, ctx.Fatal)
	assert.True(t, diagnostics.IsInternal(ctx.Fatal))
	assert.Contains(t, ctx.Fatal.Error(), "identifier + resolves to")
	assert.Nil(t, ctx.Result)
}
