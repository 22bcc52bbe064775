package analyzer

import (
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/pipeline"
	"go.uber.org/zap"
)

// SemanticAnalyzerProcessor expands and typechecks the loaded syntax graph.
type SemanticAnalyzerProcessor struct{}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.SyntaxRoot == nil || ctx.Fatal != nil {
		return ctx
	}

	context := NewContextWithBuilder(ctx.Target, ctx.Builder)
	if err := sap.analyze(ctx, context); err != nil {
		ctx.Logger.Error("semantic analysis aborted", zap.Error(err))
		ctx.Fatal = err
	}
	ctx.Errors = append(ctx.Errors, context.Diagnostics()...)
	return ctx
}

func (sap *SemanticAnalyzerProcessor) analyze(ctx *pipeline.PipelineContext, context *Context) (err error) {
	defer diagnostics.Recover(&err)
	ctx.Result = context.ExpandTopLevelScript(ctx.SourceCode, ctx.SyntaxRoot)
	ctx.Logger.Debug("semantic analysis finished",
		zap.Stringer("result", ctx.Result), zap.Int("errors", len(context.Diagnostics())))
	return nil
}
