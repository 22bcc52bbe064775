package prettyprinter

import (
	"fmt"
	"io"

	"github.com/funvibe/sysmel/internal/pipeline"
	"go.uber.org/zap"
)

// DotProcessor writes the analyzed graph to a dot file.
type DotProcessor struct {
	Path string
}

func (dp *DotProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Result == nil || dp.Path == "" {
		return ctx
	}
	if err := ToDotFileNamed(dp.Path, ctx.Result); err != nil {
		ctx.Logger.Error("cannot write dot graph", zap.String("path", dp.Path), zap.Error(err))
		ctx.Fatal = err
		return ctx
	}
	ctx.Logger.Debug("wrote dot graph", zap.String("path", dp.Path))
	return ctx
}

// TreeProcessor prints the analyzed graph as a tree.
type TreeProcessor struct {
	Out io.Writer
}

func (tp *TreeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Result == nil || tp.Out == nil {
		return ctx
	}
	fmt.Fprint(tp.Out, Tree(ctx.Result))
	return ctx
}
