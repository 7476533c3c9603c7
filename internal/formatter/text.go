package formatter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/lionweb-community/lionweb-dev-tools/internal/diff"
	"github.com/lionweb-community/lionweb-dev-tools/internal/validator"
)

// UseColor resolves a color mode (auto, always, never) for the given output.
func UseColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if f == nil || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer renders issues and diff results as plain text lines.
type Printer struct {
	writer io.Writer

	errorColor   *color.Color
	warningColor *color.Color
	addColor     *color.Color
	deleteColor  *color.Color
	headerColor  *color.Color
}

func NewPrinter(w io.Writer, useColor bool) *Printer {
	p := &Printer{
		writer:       w,
		errorColor:   color.New(color.FgRed),
		warningColor: color.New(color.FgYellow),
		addColor:     color.New(color.FgGreen),
		deleteColor:  color.New(color.FgRed),
		headerColor:  color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.errorColor, p.warningColor, p.addColor, p.deleteColor, p.headerColor} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) Header(title string) {
	fmt.Fprintln(p.writer, p.headerColor.Sprint(title))
}

// Issues writes one line per issue.
func (p *Printer) Issues(issues []validator.Issue) {
	for _, i := range issues {
		c := p.errorColor
		if i.Severity == validator.LevelWarning {
			c = p.warningColor
		}
		if i.Path.IsRoot() {
			fmt.Fprintf(p.writer, "%s %s\n", c.Sprintf("[%s]", i.Kind), i.Message)
			continue
		}
		fmt.Fprintf(p.writer, "%s %s: %s\n", c.Sprintf("[%s]", i.Kind), i.Path, i.Message)
	}
}

// Diff writes a diff result. Matched entries are only listed when verbose is set.
func (p *Printer) Diff(res diff.Result, verbose bool) {
	for _, e := range res.Errors {
		fmt.Fprintf(p.writer, "%s %s\n", p.errorColor.Sprint("!"), e)
	}
	for _, e := range res.Deleted {
		fmt.Fprintf(p.writer, "%s %s %s\n", p.deleteColor.Sprint("-"), e.Path, p.deleteColor.Sprint(e.Value))
	}
	for _, e := range res.Added {
		fmt.Fprintf(p.writer, "%s %s %s\n", p.addColor.Sprint("+"), e.Path, p.addColor.Sprint(e.Value))
	}
	for _, c := range res.Changed {
		fmt.Fprintf(p.writer, "~ %s %s\n", c.Path, p.inline(c.Old, c.New))
	}
	if verbose {
		for _, e := range res.Matched {
			fmt.Fprintf(p.writer, "= %s %s\n", e.Path, e.Value)
		}
	}
	if res.Equal() {
		fmt.Fprintln(p.writer, "no differences")
	}
}

// inline renders a change. Property values get a character level diff where
// deletions read [-x-] and insertions {+y+}; other values are shown as old -> new.
func (p *Printer) inline(from, to diff.Value) string {
	a, okA := from.(diff.PropertyValue)
	b, okB := to.(diff.PropertyValue)
	if !okA || !okB || a.Value == nil || b.Value == nil {
		return fmt.Sprintf("%s -> %s", p.deleteColor.Sprint(from), p.addColor.Sprint(to))
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(*a.Value, *b.Value, false))
	var sb strings.Builder
	sb.WriteByte('"')
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString(p.deleteColor.Sprint("[-" + d.Text + "-]"))
		case diffmatchpatch.DiffInsert:
			sb.WriteString(p.addColor.Sprint("{+" + d.Text + "+}"))
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
