// Package template renders processed courses for terminal and file
// output.
package template

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-chapterize/internal/format"
	"github.com/alnah/go-chapterize/internal/pipeline"
)

// Template name constants.
// Use these instead of string literals for compile-time safety.
const (
	Table    = "table"
	Markdown = "markdown"
	JSON     = "json"
)

// ---------------------------------------------------------------------------
// Name type - represents a validated template name
// ---------------------------------------------------------------------------

// Name represents a validated output template name.
// Zero value is invalid and must not be used with Render().
// Use ParseName to create from user input, or the pre-parsed constants.
type Name struct {
	name string
}

// Pre-parsed template name constants for use in code.
var (
	TableName    = Name{name: Table}
	MarkdownName = Name{name: Markdown}
	JSONName     = Name{name: JSON}
)

// ParseName validates and parses a template name string.
// Returns ErrUnknown if the name is not recognized.
func ParseName(s string) (Name, error) {
	if s == "" {
		return Name{}, fmt.Errorf("template name cannot be empty: %w", ErrUnknown)
	}
	if _, ok := renderers[s]; !ok {
		return Name{}, fmt.Errorf("unknown template %q: %w", s, ErrUnknown)
	}
	return Name{name: s}, nil
}

// MustParseName parses a template name, panicking if invalid.
// Use only for compile-time constants and tests.
func MustParseName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the template name string.
// Returns empty string for zero value.
func (n Name) String() string {
	return n.name
}

// IsZero returns true if this is the zero value (no template set).
func (n Name) IsZero() bool {
	return n.name == ""
}

// nameOrder defines the canonical order for Names(), used for CLI help
// and error messages.
var nameOrder = []string{
	Table,
	Markdown,
	JSON,
}

type renderFunc func(w io.Writer, out *pipeline.Outcome) error

var renderers = map[string]renderFunc{
	Table:    renderTable,
	Markdown: renderMarkdown,
	JSON:     renderJSON,
}

// Names returns the list of available template names in stable order.
func Names() []string {
	result := make([]string, len(nameOrder))
	copy(result, nameOrder)
	return result
}

// Render writes the outcome to w in this template's format.
// Panics if called on a zero Name.
func (n Name) Render(w io.Writer, out *pipeline.Outcome) error {
	if n.name == "" {
		panic("template.Name.Render called on zero value")
	}
	return renderers[n.name](w, out)
}

// ---------------------------------------------------------------------------
// Renderers
// ---------------------------------------------------------------------------

func renderTable(w io.Writer, out *pipeline.Outcome) error {
	if _, err := fmt.Fprintf(w, "%s\n", out.Title); err != nil {
		return err
	}
	if out.DurationSec != nil {
		if _, err := fmt.Fprintf(w, "duration: %s\n", format.Seconds(*out.DurationSec)); err != nil {
			return err
		}
	}
	for _, ch := range out.Chapters {
		if _, err := fmt.Fprintf(w, "\n%d. %s\n", ch.OrderIndex+1, ch.Title); err != nil {
			return err
		}
		for _, seg := range ch.Segments {
			if _, err := fmt.Fprintf(w, "   %-14s %s\n", format.Range(seg.Start, seg.End), seg.Title); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderMarkdown(w io.Writer, out *pipeline.Outcome) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", out.Title)
	if out.SourceURL != "" {
		fmt.Fprintf(&b, "\nSource: %s\n", out.SourceURL)
	}
	for _, ch := range out.Chapters {
		fmt.Fprintf(&b, "\n## %d. %s\n\n", ch.OrderIndex+1, ch.Title)
		for _, seg := range ch.Segments {
			fmt.Fprintf(&b, "- **%s** %s", format.Range(seg.Start, seg.End), seg.Title)
			if seg.Desc != "" {
				fmt.Fprintf(&b, ": %s", seg.Desc)
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderJSON(w io.Writer, out *pipeline.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
