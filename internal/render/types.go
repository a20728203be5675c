package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Span is a run of text with one style.
type Span struct {
	Text  string
	Style lipgloss.Style
}

// Line is a sequence of spans.
type Line struct {
	Spans []Span
}

// Width is the display width of the line.
func (l Line) Width() int {
	w := 0
	for _, sp := range l.Spans {
		w += runewidth.StringWidth(sp.Text)
	}
	return w
}

// LinesToStrings renders styled lines to strings.
func LinesToStrings(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		var sb strings.Builder
		for _, sp := range line.Spans {
			if sp.Text == "" {
				continue
			}
			sb.WriteString(sp.Style.Render(sp.Text))
		}
		out = append(out, sb.String())
	}
	return out
}

// LinesToPlainStrings drops styling and keeps the text.
func LinesToPlainStrings(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		var sb strings.Builder
		for _, sp := range line.Spans {
			sb.WriteString(sp.Text)
		}
		out = append(out, sb.String())
	}
	return out
}

// PrefixLines prepends initial to the first line and subsequent to the rest.
func PrefixLines(lines []Line, initial Span, subsequent Span) []Line {
	out := make([]Line, 0, len(lines))
	for i, l := range lines {
		spans := make([]Span, 0, len(l.Spans)+1)
		if i == 0 {
			spans = append(spans, initial)
		} else {
			spans = append(spans, subsequent)
		}
		spans = append(spans, l.Spans...)
		out = append(out, Line{Spans: spans})
	}
	return out
}

// wrapLine breaks a line at display width, keeping whitespace. Continuation
// lines are indented by indent spaces.
func wrapLine(line Line, width, indent int) []Line {
	if width <= 0 || line.Width() <= width {
		return []Line{line}
	}
	if indent >= width {
		indent = 0
	}
	pad := strings.Repeat(" ", indent)

	out := []Line{}
	current := Line{}
	w := 0
	for _, sp := range line.Spans {
		var text strings.Builder
		for _, r := range sp.Text {
			rw := runewidth.RuneWidth(r)
			if w+rw > width && w > indentWidthOf(len(out), indent) {
				if text.Len() > 0 {
					current.Spans = append(current.Spans, Span{Text: text.String(), Style: sp.Style})
					text.Reset()
				}
				out = append(out, current)
				current = Line{Spans: []Span{{Text: pad}}}
				w = indent
			}
			text.WriteRune(r)
			w += rw
		}
		if text.Len() > 0 {
			current.Spans = append(current.Spans, Span{Text: text.String(), Style: sp.Style})
		}
	}
	if len(current.Spans) > 0 {
		out = append(out, current)
	}
	return out
}

// indentWidthOf is the width a line starts at: continuation lines begin indented.
func indentWidthOf(emitted, indent int) int {
	if emitted == 0 {
		return 0
	}
	return indent
}
