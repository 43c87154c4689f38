package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"quartz/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	posColor  = color.New(color.FgHiBlack)
)

// Render writes a human-readable report for every diagnostic in the bag,
// with the offending source line and a caret underline.
func Render(w io.Writer, fs *source.FileSet, bag *Bag) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		renderOne(w, fs, d)
	}
}

func renderOne(w io.Writer, fs *source.FileSet, d Diagnostic) {
	sev := severityPrinter(d.Severity)
	if fs == nil || d.Primary == (source.Span{}) {
		fmt.Fprintf(w, "%s[%s]: %s\n", sev.Sprint(strings.ToLower(d.Severity.String())), d.Code, d.Message)
		return
	}
	file := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s[%s]: %s\n", sev.Sprint(strings.ToLower(d.Severity.String())), d.Code, d.Message)
	fmt.Fprintf(w, "  %s %s:%d:%d\n", posColor.Sprint("-->"), file.Path, start.Line, start.Col)

	line := file.GetLine(start.Line)
	if line != "" {
		fmt.Fprintf(w, "   | %s\n", line)
		fmt.Fprintf(w, "   | %s%s\n", strings.Repeat(" ", caretIndent(line, start.Col)), sev.Sprint(carets(line, start.Col, d.Primary.Len())))
	}
	for _, n := range d.Notes {
		fmt.Fprintf(w, "   %s %s\n", posColor.Sprint("note:"), n.Msg)
	}
}

// caretIndent measures the display width of the line prefix before the caret,
// so tabs and wide runes do not skew the underline.
func caretIndent(line string, col uint32) int {
	prefix := line
	if int(col)-1 < len(line) {
		prefix = line[:col-1]
	}
	return runewidth.StringWidth(prefix)
}

func carets(line string, col, n uint32) string {
	if n == 0 {
		n = 1
	}
	end := int(col-1) + int(n)
	if end > len(line) {
		end = len(line)
	}
	width := 1
	if int(col)-1 < end {
		width = runewidth.StringWidth(line[col-1 : end])
		if width == 0 {
			width = 1
		}
	}
	return strings.Repeat("^", width)
}

func severityPrinter(sev Severity) *color.Color {
	switch sev {
	case SevError:
		return errColor
	case SevWarning:
		return warnColor
	default:
		return infoColor
	}
}
