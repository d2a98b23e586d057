package charts

import (
	"context"
	"fmt"
	"time"

	"github.com/alt-coder/chartflow/core"
)

// Generator turns a prose description into chart specs. Implemented by the
// llm package; stubbed in tests.
type Generator interface {
	GenerateSpecs(ctx context.Context, prompt string) ([]Spec, error)
}

// Pipeline assembles rendering flows for incoming requests. One pipeline is
// shared by all tasks; every FlowFor call builds a fresh node graph.
type Pipeline struct {
	renderer *Renderer
	gen      Generator
	log      core.Logger
	retries  int
	wait     time.Duration
}

// PipelineOption configures a pipeline.
type PipelineOption func(*Pipeline)

// WithGenerator enables prompt requests.
func WithGenerator(gen Generator) PipelineOption {
	return func(p *Pipeline) { p.gen = gen }
}

// WithLogger injects the logger handed to every node and flow.
func WithLogger(log core.Logger) PipelineOption {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithRenderRetry sets the retry policy applied to rendering and generation
// nodes.
func WithRenderRetry(retries int, wait time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.retries = retries
		p.wait = wait
	}
}

// NewPipeline builds a pipeline over the renderer.
func NewPipeline(renderer *Renderer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		renderer: renderer,
		log:      core.NopLogger{},
		retries:  1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FlowFor validates the request and assembles the matching flow:
//
//   - prompt request:        prompt → validate → render(batch) → publish
//   - single inline chart:   validate → render
//   - inline dashboard:      render(batch|parallel-batch) → publish
//
// The flow writes its artifact paths to shared[KeyArtifacts].
func (p *Pipeline) FlowFor(req *Request, shared core.SharedContext) (*core.Flow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	shared[KeyRequest] = req

	if req.Prompt != "" {
		return p.promptFlow(shared)
	}
	shared[KeySpecs] = req.Charts
	if len(req.Charts) == 1 {
		return p.singleFlow(shared)
	}
	return p.dashboardFlow(req, shared)
}

func (p *Pipeline) promptFlow(shared core.SharedContext) (*core.Flow, error) {
	if p.gen == nil {
		return nil, fmt.Errorf("prompt requests need a configured generator")
	}
	prompt := core.NewNode("prompt", &promptLifecycle{gen: p.gen},
		core.WithRetry(p.retries, p.wait), core.WithLogger(p.log))
	validate := core.NewNode("validate", &validateLifecycle{}, core.WithLogger(p.log))
	render := core.NewBatchNode("render", &renderBatchLifecycle{renderer: p.renderer},
		core.WithRetry(p.retries, p.wait), core.WithLogger(p.log))
	publish := core.NewNode("publish", &publishLifecycle{renderer: p.renderer}, core.WithLogger(p.log))

	prompt.Next(validate, ActionValidate)
	validate.Next(render, ActionRender)
	render.Next(publish, ActionPublish)

	return core.NewFlow(prompt, shared, core.WithFlowLogger(p.log))
}

func (p *Pipeline) singleFlow(shared core.SharedContext) (*core.Flow, error) {
	validate := core.NewNode("validate", &validateLifecycle{}, core.WithLogger(p.log))
	render := core.NewNode("render", &renderOneLifecycle{renderer: p.renderer},
		core.WithRetry(p.retries, p.wait), core.WithLogger(p.log))

	validate.Next(render, ActionRender)

	return core.NewFlow(validate, shared, core.WithFlowLogger(p.log))
}

func (p *Pipeline) dashboardFlow(req *Request, shared core.SharedContext) (*core.Flow, error) {
	for i := range req.Charts {
		if err := req.Charts[i].Validate(); err != nil {
			return nil, err
		}
	}

	impl := &renderBatchLifecycle{renderer: p.renderer}
	opts := []core.Option{core.WithRetry(p.retries, p.wait), core.WithLogger(p.log)}
	publish := core.NewNode("publish", &publishLifecycle{renderer: p.renderer}, core.WithLogger(p.log))

	if req.Parallel {
		render := core.NewParallelBatchNode("render", impl, opts...)
		render.Next(publish, ActionPublish)
		return core.NewParallelBatchFlow(render, shared, core.WithFlowLogger(p.log))
	}
	render := core.NewBatchNode("render", impl, opts...)
	render.Next(publish, ActionPublish)
	return core.NewBatchFlow(render, shared, core.WithFlowLogger(p.log))
}
