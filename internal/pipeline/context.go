package pipeline

import (
	"github.com/funvibe/sysmel/internal/asg"
	"github.com/funvibe/sysmel/internal/config"
	"github.com/funvibe/sysmel/internal/diagnostics"
	"github.com/funvibe/sysmel/internal/token"
	"go.uber.org/zap"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries the state passed between stages.
type PipelineContext struct {
	Input      string
	FilePath   string
	SourceCode *token.SourceCode
	Target     config.CompilationTarget
	Logger     *zap.Logger

	// Builder owns every node of the run, syntax and typed alike.
	Builder *asg.Builder

	SyntaxRoot *asg.Node // Set by the syntax loader
	Result     *asg.Node // Set by semantic analysis

	Errors []*diagnostics.DiagnosticError
	// Fatal holds an internal compiler error that aborted a stage.
	Fatal error
}

// NewPipelineContext creates a context for input targeting the default target.
func NewPipelineContext(input string) *PipelineContext {
	logger := zap.NewNop()
	return &PipelineContext{
		Input:   input,
		Target:  config.DefaultTarget(),
		Logger:  logger,
		Builder: asg.NewBuilder(logger),
	}
}

// WithFile records the path input was read from.
func (ctx *PipelineContext) WithFile(path string) *PipelineContext {
	ctx.FilePath = path
	ctx.SourceCode = token.NewSourceCode(path)
	return ctx
}

// WithLogger replaces the logger. It must be called before any node is built.
func (ctx *PipelineContext) WithLogger(logger *zap.Logger) *PipelineContext {
	ctx.Logger = logger
	ctx.Builder = asg.NewBuilder(logger)
	return ctx
}

// Failed reports whether any stage produced errors.
func (ctx *PipelineContext) Failed() bool {
	return ctx.Fatal != nil || len(ctx.Errors) > 0
}
