package charts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"
)

// Renderer turns chart specs into self-contained HTML files under a single
// output directory.
type Renderer struct {
	outDir string
}

// NewRenderer creates the output directory if needed.
func NewRenderer(outDir string) (*Renderer, error) {
	if outDir == "" {
		return nil, fmt.Errorf("renderer output directory is required")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Renderer{outDir: outDir}, nil
}

// OutDir returns the directory rendered files are written to.
func (r *Renderer) OutDir() string { return r.outDir }

// Render writes the spec as an HTML file and returns its path. The spec is
// assumed to be validated.
func (r *Renderer) Render(spec *Spec) (string, error) {
	path := filepath.Join(r.outDir, fileName(spec.Title))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating chart file: %w", err)
	}
	defer f.Close()

	switch spec.Type {
	case TypeBar:
		err = renderBar(spec, f)
	case TypeLine:
		err = renderLine(spec, f)
	case TypePie:
		err = renderPie(spec, f)
	default:
		err = fmt.Errorf("unsupported chart type %q", spec.Type)
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("rendering %q: %w", spec.Title, err)
	}
	return path, nil
}

func renderBar(spec *Spec, f *os.File) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}))
	bar.SetXAxis(spec.Labels)
	for _, s := range spec.Series {
		data := make([]opts.BarData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(s.Name, data)
	}
	return bar.Render(f)
}

func renderLine(spec *Spec, f *os.File) error {
	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}))
	line.SetXAxis(spec.Labels)
	for _, s := range spec.Series {
		data := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, data)
	}
	return line.Render(f)
}

func renderPie(spec *Spec, f *os.File) error {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}))
	s := spec.Series[0]
	data := make([]opts.PieData, len(s.Values))
	for i, v := range s.Values {
		label := ""
		if i < len(spec.Labels) {
			label = spec.Labels[i]
		}
		data[i] = opts.PieData{Name: label, Value: v}
	}
	pie.AddSeries(s.Name, data)
	return pie.Render(f)
}

// fileName derives a filesystem-safe name from the chart title, suffixed
// with a short random id so repeated renders never collide.
func fileName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "chart"
	}
	return fmt.Sprintf("%s-%s.html", slug, uuid.NewString()[:8])
}
