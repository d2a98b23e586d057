package charts

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"

	"github.com/alt-coder/chartflow/core"
)

// Shared-context keys used by the rendering flows.
const (
	KeyRequest   = "request"   // *Request
	KeySpecs     = "specs"     // []Spec, validated
	KeyArtifacts = "artifacts" // []string, rendered file paths
)

// Edge labels of the rendering graph.
const (
	ActionValidate core.Action = "validate"
	ActionRender   core.Action = "render"
	ActionPublish  core.Action = "publish"
)

// promptLifecycle turns the request's prose prompt into chart specs via the
// configured generator.
type promptLifecycle struct {
	core.BaseLifecycle
	gen Generator
}

func (p *promptLifecycle) Prep(_ context.Context, shared core.SharedContext) (any, error) {
	req, ok := shared[KeyRequest].(*Request)
	if !ok || req.Prompt == "" {
		return nil, fmt.Errorf("shared context carries no prompt")
	}
	return req.Prompt, nil
}

func (p *promptLifecycle) Exec(ctx context.Context, prepResult any) (any, error) {
	return p.gen.GenerateSpecs(ctx, prepResult.(string))
}

func (p *promptLifecycle) Post(_ context.Context, shared core.SharedContext, _, execResult any) (core.Action, error) {
	specs := execResult.([]Spec)
	if len(specs) == 0 {
		return core.NoAction, fmt.Errorf("generator produced no chart specs")
	}
	shared[KeySpecs] = specs
	return ActionValidate, nil
}

// validateLifecycle checks every spec in the shared context and rejects the
// flow before anything is rendered.
type validateLifecycle struct {
	core.BaseLifecycle
}

func (v *validateLifecycle) Prep(_ context.Context, shared core.SharedContext) (any, error) {
	specs, ok := shared[KeySpecs].([]Spec)
	if !ok {
		return nil, fmt.Errorf("shared context carries no chart specs")
	}
	return specs, nil
}

func (v *validateLifecycle) Exec(_ context.Context, prepResult any) (any, error) {
	specs := prepResult.([]Spec)
	for i := range specs {
		if err := specs[i].Validate(); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

func (v *validateLifecycle) Post(_ context.Context, shared core.SharedContext, _, execResult any) (core.Action, error) {
	shared[KeySpecs] = execResult
	return ActionRender, nil
}

// renderOneLifecycle renders a single-chart request.
type renderOneLifecycle struct {
	core.BaseLifecycle
	renderer *Renderer
}

func (r *renderOneLifecycle) Prep(_ context.Context, shared core.SharedContext) (any, error) {
	specs, ok := shared[KeySpecs].([]Spec)
	if !ok || len(specs) == 0 {
		return nil, fmt.Errorf("shared context carries no chart specs")
	}
	return specs[0], nil
}

func (r *renderOneLifecycle) Exec(ctx context.Context, prepResult any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	spec := prepResult.(Spec)
	return r.renderer.Render(&spec)
}

func (r *renderOneLifecycle) Post(_ context.Context, shared core.SharedContext, _, execResult any) (core.Action, error) {
	shared[KeyArtifacts] = []string{execResult.(string)}
	return core.NoAction, nil
}

// renderBatchLifecycle renders one chart per batch item. Rendered paths are
// collected on the lifecycle itself and written to the shared context only in
// Post, which runs once the fan-out has joined.
type renderBatchLifecycle struct {
	renderer *Renderer

	mu    sync.Mutex
	paths []string
}

func (r *renderBatchLifecycle) Prep(_ context.Context, shared core.SharedContext) (any, error) {
	specs, ok := shared[KeySpecs].([]Spec)
	if !ok {
		return nil, fmt.Errorf("shared context carries no chart specs")
	}
	return specs, nil
}

func (r *renderBatchLifecycle) ExecItem(ctx context.Context, item any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	spec := item.(Spec)
	path, err := r.renderer.Render(&spec)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	return path, nil
}

func (r *renderBatchLifecycle) Post(_ context.Context, shared core.SharedContext, _, _ any) (core.Action, error) {
	r.mu.Lock()
	paths := append([]string(nil), r.paths...)
	r.mu.Unlock()
	shared[KeyArtifacts] = paths
	return ActionPublish, nil
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Dashboard</title></head>
<body>
<h1>Dashboard</h1>
<ul>
{{- range . }}
<li><a href="{{ . }}">{{ . }}</a></li>
{{- end }}
</ul>
</body>
</html>
`))

// publishLifecycle writes a dashboard index page linking every rendered
// chart and appends it to the artifact list.
type publishLifecycle struct {
	core.BaseLifecycle
	renderer *Renderer
}

func (p *publishLifecycle) Prep(_ context.Context, shared core.SharedContext) (any, error) {
	paths, ok := shared[KeyArtifacts].([]string)
	if !ok {
		return nil, fmt.Errorf("shared context carries no artifacts")
	}
	return paths, nil
}

func (p *publishLifecycle) Exec(_ context.Context, prepResult any) (any, error) {
	paths := prepResult.([]string)
	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = filepath.Base(path)
	}

	indexPath := filepath.Join(p.renderer.OutDir(), fileName("dashboard"))
	f, err := os.Create(indexPath)
	if err != nil {
		return nil, fmt.Errorf("creating dashboard index: %w", err)
	}
	defer f.Close()
	if err := indexTemplate.Execute(f, names); err != nil {
		return nil, fmt.Errorf("writing dashboard index: %w", err)
	}
	return indexPath, nil
}

func (p *publishLifecycle) Post(_ context.Context, shared core.SharedContext, prepResult, execResult any) (core.Action, error) {
	shared[KeyArtifacts] = append(prepResult.([]string), execResult.(string))
	return core.NoAction, nil
}
