package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alt-coder/chartflow/charts"
)

const specSystemPrompt = `You translate chart descriptions into JSON.
Respond with a JSON array of chart objects and nothing else. Each object has:
  "type": one of "bar", "line", "pie"
  "title": short chart title
  "subtitle": optional
  "labels": array of category names
  "series": array of {"name": string, "values": array of numbers}
Every series must have exactly as many values as there are labels.`

// SpecGenerator turns prose chart descriptions into chart specs through an
// LLM provider. It implements charts.Generator.
type SpecGenerator struct {
	provider Provider
}

// NewSpecGenerator builds a generator over the provider.
func NewSpecGenerator(provider Provider) *SpecGenerator {
	return &SpecGenerator{provider: provider}
}

// GenerateSpecs asks the provider for chart specs matching the prompt. The
// response must be a JSON array (or single object) of chart specs; code
// fences are tolerated.
func (g *SpecGenerator) GenerateSpecs(ctx context.Context, prompt string) ([]charts.Spec, error) {
	response, err := g.provider.CallLLM(ctx, []Message{
		{Role: RoleSystem, Content: specSystemPrompt},
		{Role: RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", g.provider.GetName(), err)
	}

	payload := stripFences(response.Content)
	var specs []charts.Spec
	if err := json.Unmarshal([]byte(payload), &specs); err != nil {
		// Some models return a bare object for single-chart prompts.
		var single charts.Spec
		if err2 := json.Unmarshal([]byte(payload), &single); err2 != nil {
			return nil, fmt.Errorf("parsing generated specs: %w", err)
		}
		specs = []charts.Spec{single}
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("provider %s returned no chart specs", g.provider.GetName())
	}
	return specs, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
