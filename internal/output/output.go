package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/open-wander/samplerate/internal/samplerate"
	"github.com/open-wander/samplerate/internal/store"
	"github.com/open-wander/samplerate/internal/timeguess"
)

// Renderer writes estimation results.
type Renderer interface {
	Result(res *samplerate.Result) error
	Failure(source string, err error) error
	Patterns(patterns []timeguess.Pattern) error
	Estimates(estimates []store.Estimate) error
}

// New returns the renderer for format ("json" or anything else for text).
func New(format string, w io.Writer) Renderer {
	if strings.EqualFold(format, "json") {
		return NewJSONRenderer(w)
	}
	return NewTextRenderer(w)
}

// ---------------------------------------------------------------------------
// Text Renderer
// ---------------------------------------------------------------------------

var (
	styleHz      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true) // green
	styleSource  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))            // cyan
	styleDetail  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))           // gray
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// TextRenderer prints one human-readable line per result.
type TextRenderer struct {
	w io.Writer
}

func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (r *TextRenderer) Result(res *samplerate.Result) error {
	var b strings.Builder
	if res.Source != "" {
		b.WriteString(styleSource.Render(res.Source))
		b.WriteString(" ")
	}
	b.WriteString(styleHz.Render(FormatHz(res.Hz)))

	detail := fmt.Sprintf("(%d samples", res.Samples)
	if res.Intervals > 0 {
		detail += fmt.Sprintf(", mean interval %.3f ms", res.MeanIntervalMs())
	}
	if !res.Pattern.IsZero() {
		detail += ", pattern " + res.Pattern.String()
	}
	detail += ")"
	b.WriteString(" ")
	b.WriteString(styleDetail.Render(detail))

	if res.Skipped > 0 {
		b.WriteString(" ")
		b.WriteString(styleWarning.Render(fmt.Sprintf("%d row(s) skipped", res.Skipped)))
	}

	_, err := fmt.Fprintln(r.w, b.String())
	return err
}

func (r *TextRenderer) Failure(source string, failure error) error {
	line := styleError.Render("error") + " " + failure.Error()
	if source != "" {
		line = styleSource.Render(source) + " " + line
	}
	_, err := fmt.Fprintln(r.w, line)
	return err
}

func (r *TextRenderer) Patterns(patterns []timeguess.Pattern) error {
	for i, p := range patterns {
		if _, err := fmt.Fprintf(r.w, "%d  %s\n", i+1, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextRenderer) Estimates(estimates []store.Estimate) error {
	if len(estimates) == 0 {
		_, err := fmt.Fprintln(r.w, styleDetail.Render("no stored estimates"))
		return err
	}
	for _, e := range estimates {
		line := fmt.Sprintf("%s  %s %s %s",
			styleDetail.Render(e.CreatedAt.Local().Format("2006-01-02 15:04:05")),
			styleSource.Render(e.Source),
			styleHz.Render(FormatHz(e.Hz)),
			styleDetail.Render(e.ID),
		)
		if _, err := fmt.Fprintln(r.w, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatHz formats a frequency with a unit suited to its magnitude.
func FormatHz(hz float64) string {
	switch {
	case hz >= 1e6:
		return fmt.Sprintf("%.6g MHz", hz/1e6)
	case hz >= 1e3:
		return fmt.Sprintf("%.6g kHz", hz/1e3)
	default:
		return fmt.Sprintf("%.6g Hz", hz)
	}
}

// ---------------------------------------------------------------------------
// JSON Renderer
// ---------------------------------------------------------------------------

// JSONRenderer prints one JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONRenderer) Result(res *samplerate.Result) error {
	return r.enc.Encode(res)
}

func (r *JSONRenderer) Failure(source string, failure error) error {
	return r.enc.Encode(struct {
		Source string `json:"source,omitempty"`
		Error  string `json:"error"`
	}{source, failure.Error()})
}

func (r *JSONRenderer) Patterns(patterns []timeguess.Pattern) error {
	return r.enc.Encode(struct {
		Patterns []timeguess.Pattern `json:"patterns"`
	}{patterns})
}

func (r *JSONRenderer) Estimates(estimates []store.Estimate) error {
	for _, e := range estimates {
		if err := r.enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
