package syntaxfile

import (
	"github.com/funvibe/sysmel/internal/pipeline"
	"go.uber.org/zap"
)

// LoaderProcessor turns the pipeline input into a syntax graph.
type LoaderProcessor struct{}

func (lp *LoaderProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	loader := NewLoader(ctx.Builder, ctx.SourceCode)
	root, err := loader.Load([]byte(ctx.Input))
	if err != nil {
		// A partially loaded graph is not analyzed.
		ctx.Errors = append(ctx.Errors, loader.Diagnostics()...)
		return ctx
	}
	ctx.SyntaxRoot = root
	ctx.Logger.Debug("loaded syntax graph", zap.String("file", ctx.FilePath), zap.Stringer("root", root))
	return ctx
}
