package charts

import (
	"fmt"
)

// Type identifies the chart kind a spec renders to.
type Type string

const (
	TypeBar  Type = "bar"
	TypeLine Type = "line"
	TypePie  Type = "pie"
)

// Series is one named sequence of values plotted against the spec's labels.
type Series struct {
	Name   string    `json:"name" yaml:"name"`
	Values []float64 `json:"values" yaml:"values"`
}

// Spec is a declarative chart description, the unit of work the rendering
// flows operate on.
type Spec struct {
	Type     Type     `json:"type" yaml:"type"`
	Title    string   `json:"title" yaml:"title"`
	Subtitle string   `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Labels   []string `json:"labels" yaml:"labels"`
	Series   []Series `json:"series" yaml:"series"`
}

// Validate checks the spec is renderable: a known type, a title, labels, and
// at least one series whose length matches the labels. Pie charts take
// exactly one series.
func (s *Spec) Validate() error {
	switch s.Type {
	case TypeBar, TypeLine, TypePie:
	case "":
		return fmt.Errorf("chart type is required")
	default:
		return fmt.Errorf("unsupported chart type %q", s.Type)
	}
	if s.Title == "" {
		return fmt.Errorf("chart title is required")
	}
	if len(s.Labels) == 0 {
		return fmt.Errorf("chart %q: labels are required", s.Title)
	}
	if len(s.Series) == 0 {
		return fmt.Errorf("chart %q: at least one series is required", s.Title)
	}
	if s.Type == TypePie && len(s.Series) != 1 {
		return fmt.Errorf("chart %q: pie charts take exactly one series, got %d", s.Title, len(s.Series))
	}
	for _, series := range s.Series {
		if len(series.Values) != len(s.Labels) {
			return fmt.Errorf("chart %q: series %q has %d values for %d labels",
				s.Title, series.Name, len(series.Values), len(s.Labels))
		}
	}
	return nil
}

// Request is the caller-facing task payload: either inline chart specs or a
// prose prompt to be turned into one.
type Request struct {
	// Prompt describes the desired chart in natural language. Requires a
	// configured LLM provider.
	Prompt string `json:"prompt,omitempty"`

	// Charts are inline specs to render.
	Charts []Spec `json:"charts,omitempty"`

	// Parallel switches multi-chart rendering from sequential to concurrent.
	Parallel bool `json:"parallel,omitempty"`
}

// Validate rejects empty and ambiguous requests.
func (r *Request) Validate() error {
	if r.Prompt == "" && len(r.Charts) == 0 {
		return fmt.Errorf("request needs a prompt or at least one chart")
	}
	if r.Prompt != "" && len(r.Charts) > 0 {
		return fmt.Errorf("request takes a prompt or inline charts, not both")
	}
	return nil
}
