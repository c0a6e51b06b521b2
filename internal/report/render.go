// Package report renders bias detection results for people and machines.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/KaramelBytes/fairloom-cli/internal/bias"
	"github.com/KaramelBytes/fairloom-cli/internal/utils"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Format selects an output encoding.
type Format string

const (
	Markdown Format = "markdown"
	JSON     Format = "json"
	YAML     Format = "yaml"
	Table    Format = "table"
)

// ParseFormat accepts the names used on the command line. Empty means Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return Markdown, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "table":
		return Table, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use markdown, json, yaml, or table)", s)
	}
}

// Ordered returns the reports sorted by attribute name.
func Ordered(reports map[string]bias.Report) []bias.Report {
	out := make([]bias.Report, 0, len(reports))
	for _, r := range reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Attribute < out[j].Attribute })
	return out
}

// Render writes reports to w in the given format.
func Render(w io.Writer, reports map[string]bias.Report, format Format) error {
	ordered := Ordered(reports)
	switch format {
	case JSON:
		b, err := utils.PrettyJSON(ordered)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ordered); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case Table:
		return renderTable(w, ordered)
	case Markdown, "":
		return renderMarkdown(w, ordered)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func renderTable(w io.Writer, reports []bias.Report) error {
	if len(reports) == 0 {
		_, _ = fmt.Fprintln(w, "(0 attributes)")
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Attribute", "Target", "Chi2", "df", "p-value", "Alpha", "Biased", "Distribution"})
	for _, r := range reports {
		t.AppendRow(table.Row{
			r.Attribute,
			r.Target,
			fmt.Sprintf("%.4f", r.Statistic),
			r.DegreesOfFreedom,
			formatP(r.PValue),
			r.Alpha,
			verdict(r.Biased),
			distribution(r.Distribution, ", "),
		})
	}
	t.Render()
	return nil
}

func renderMarkdown(w io.Writer, reports []bias.Report) error {
	var b strings.Builder
	b.WriteString("# Bias Report\n\n")
	if len(reports) == 0 {
		b.WriteString("No attributes analyzed.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	biased := 0
	for _, r := range reports {
		if r.Biased {
			biased++
		}
	}
	b.WriteString(fmt.Sprintf("Target: %s\n", reports[0].Target))
	b.WriteString(fmt.Sprintf("Attributes flagged: %d of %d\n\n", biased, len(reports)))
	b.WriteString("| Attribute | Chi2 | df | p-value | Alpha | Biased |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, r := range reports {
		b.WriteString(fmt.Sprintf("| %s | %.4f | %d | %s | %g | %s |\n",
			r.Attribute, r.Statistic, r.DegreesOfFreedom, formatP(r.PValue), r.Alpha, verdict(r.Biased)))
	}
	for _, r := range reports {
		b.WriteString(fmt.Sprintf("\n## %s\n\n", r.Attribute))
		b.WriteString(fmt.Sprintf("Observations: %d\n\n", r.Observations))
		b.WriteString(distribution(r.Distribution, "\n"))
		b.WriteString("\n")
	}
	b.WriteString("\nNote: each attribute is tested independently at its alpha; no multiple-comparison correction is applied.\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func distribution(d bias.Distribution, sep string) string {
	parts := make([]string, 0, len(d))
	for _, vs := range d.Sorted() {
		item := fmt.Sprintf("%s: %.1f%%", vs.Value, vs.Share*100)
		if sep == "\n" {
			item = "- " + item
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, sep)
}

func formatP(p float64) string {
	if p < 1e-4 {
		return fmt.Sprintf("%.2e", p)
	}
	return fmt.Sprintf("%.4f", p)
}

func verdict(biased bool) string {
	if biased {
		return "yes"
	}
	return "no"
}
