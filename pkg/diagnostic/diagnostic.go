// Package diagnostic renders errors anchored to a position in a GraphQL
// document as an annotated excerpt of the document.
package diagnostic

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

const tabWidth = 4

var (
	gutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Diagnostic is a message anchored to a position in a source document. Line
// and Column are 1-based; Length is the number of characters underlined.
type Diagnostic struct {
	File    string
	Source  string
	Line    int
	Column  int
	Length  int
	Message string
	Help    string
}

// Render renders the diagnostic:
//
//	 --> schema.graphql:2:11
//	2 |   friend: Usr
//	  |           ^^^ type 'Usr' is not defined
//	  = help: did you mean `User`?
//
// Without a usable line only the message and help are rendered.
func (d Diagnostic) Render() string {
	var b strings.Builder
	line, ok := d.sourceLine()
	if !ok {
		b.WriteString("  " + d.Message + "\n")
	} else {
		num := strconv.Itoa(d.Line)
		blank := strings.Repeat(" ", len(num))
		pipe := gutterStyle.Render("|")

		fmt.Fprintf(&b, "%s%s %s:%d:%d\n", blank, gutterStyle.Render("-->"), d.File, d.Line, d.column())
		fmt.Fprintf(&b, "%s %s %s\n", gutterStyle.Render(num), pipe, expandTabs(line))
		fmt.Fprintf(&b, "%s %s %s\n", blank, pipe, d.underline(line))
	}
	if d.Help != "" {
		b.WriteString("  = help: " + d.Help + "\n")
	}
	return b.String()
}

func (d Diagnostic) sourceLine() (string, bool) {
	if d.Line < 1 {
		return "", false
	}
	lines := strings.Split(d.Source, "\n")
	if d.Line > len(lines) {
		return "", false
	}
	return strings.TrimSuffix(lines[d.Line-1], "\r"), true
}

func (d Diagnostic) column() int {
	return max(d.Column, 1)
}

// underline places carets under the span, clamped to the end of the line so
// a span running past it still shows one caret.
func (d Diagnostic) underline(line string) string {
	col := d.column()
	width := utf8.RuneCountInString(line)
	if col > width+1 {
		col = width + 1
	}
	length := min(max(d.Length, 1), max(width-col+1, 1))

	prefix := expandTabs(string([]rune(line)[:col-1]))
	out := strings.Repeat(" ", utf8.RuneCountInString(prefix)) + errorStyle.Render(strings.Repeat("^", length))
	if d.Message != "" {
		out += " " + errorStyle.Render(d.Message)
	}
	return out
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if r == '\t' {
			pad := tabWidth - n%tabWidth
			b.WriteString(strings.Repeat(" ", pad))
			n += pad
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
