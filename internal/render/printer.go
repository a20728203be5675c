package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"transcript-cli/internal/outcome"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"
)

// Options controls presentation. The zero value renders styled, unwrapped output.
type Options struct {
	// StripStyling emits plain text; icons are kept.
	StripStyling bool
	// Width wraps lines to this display width when > 0.
	Width int
	// Renderer overrides the renderer bound to the output writer, e.g. to keep
	// colors when rendering into a buffer for the pager.
	Renderer *lipgloss.Renderer
}

const (
	iconSystem    = "🖥️"
	iconMonologue = "💭"
	iconAssistant = "🤖"
	iconUser      = "🧑"
	iconHeartbeat = "💓"
	iconFunction  = "⚡"
	iconSuccess   = "🟢"
	iconError     = "🔴"
	iconMemory    = "🧠"
	functionTag   = "[function]"
	callTag       = "[call]"
)

// Printer writes events to an io.Writer, one or more lines per event.
type Printer struct {
	w      io.Writer
	opts   Options
	styles styles
	md     goldmark.Markdown
	label  string
}

// NewPrinter creates a Printer; a nil writer means stdout.
func NewPrinter(w io.Writer, opts Options) *Printer {
	if w == nil {
		w = os.Stdout
	}
	r := opts.Renderer
	if r == nil {
		r = lipgloss.NewRenderer(w)
	}
	return &Printer{
		w:      w,
		opts:   opts,
		styles: newStyles(r, opts.StripStyling),
		md:     goldmark.New(),
	}
}

// Label sets a "[n] " prefix for the first line of the next event.
func (p *Printer) Label(n int) {
	p.label = fmt.Sprintf("[%d] ", n)
}

// FlushLabel writes a pending label on its own line. It is a no-op when the
// label was already consumed by an event.
func (p *Printer) FlushLabel() error {
	if p.label == "" {
		return nil
	}
	label := strings.TrimRight(p.label, " ")
	p.label = ""
	_, err := fmt.Fprintln(p.w, label)
	return err
}

// Emit renders ev. Events that produce no lines write nothing and keep the
// pending label.
func (p *Printer) Emit(ev Event) error {
	lines := p.Lines(ev)
	if len(lines) == 0 {
		return nil
	}
	indent := 0
	if len(lines[0].Spans) > 0 {
		indent = runewidth.StringWidth(lines[0].Spans[0].Text)
	}
	if p.label != "" {
		lines[0].Spans = append([]Span{{Text: p.label}}, lines[0].Spans...)
		indent += runewidth.StringWidth(p.label)
		p.label = ""
	}
	if p.opts.Width > 0 {
		wrapped := make([]Line, 0, len(lines))
		for _, l := range lines {
			wrapped = append(wrapped, wrapLine(l, p.opts.Width, indent)...)
		}
		lines = wrapped
	}

	var rendered []string
	if p.opts.StripStyling {
		rendered = LinesToPlainStrings(lines)
	} else {
		rendered = LinesToStrings(lines)
	}
	for _, line := range rendered {
		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return err
		}
	}
	return nil
}

// Lines builds the styled lines for ev without writing them.
func (p *Printer) Lines(ev Event) []Line {
	st := p.styles
	switch ev.Kind {
	case KindSystem:
		return iconLines(iconSystem+" [system] ", st.system, ev.Text, st.system)
	case KindMonologue:
		return iconLines(iconMonologue+" ", st.monologue, ev.Text, st.monologue)
	case KindAssistant:
		return p.assistantLines(ev.Text)
	case KindUser:
		return iconLines(iconUser+" ", st.user, ev.Text, st.user)
	case KindHeartbeat:
		return iconLines(iconHeartbeat+" ", st.user, ev.Text, st.user)
	case KindUserSystem:
		return iconLines(iconSystem+" ", st.user, ev.Text, st.user)
	case KindFunction:
		return p.outcomeLines(ev.Outcome)
	case KindFunctionData:
		return iconLines(functionPrefix(""), st.function, ev.Text, st.function)
	case KindFunctionCall:
		return iconLines(iconFunction+" "+callTag+" ", st.function, ev.Text, st.function)
	case KindUnknownRole:
		return iconLines("Unknown role: ", st.warning, ev.Text, st.warning)
	case KindWarning:
		return iconLines("", st.warning, ev.Text, st.warning)
	case KindRaw:
		return plainLines(ev.Text)
	default:
		return plainLines(ev.Text)
	}
}

func (p *Printer) outcomeLines(o outcome.Outcome) []Line {
	st := p.styles
	switch o.Kind {
	case outcome.KindSuppressed:
		return nil
	case outcome.KindSuccess:
		return iconLines(functionPrefix(iconSuccess), st.ok, o.Detail, st.ok)
	case outcome.KindError:
		return iconLines(functionPrefix(iconError), st.function, o.Detail, st.function)
	case outcome.KindMemoryUpdate:
		lines := iconLines(functionPrefix(iconMemory), st.memory, "updating memory with "+o.Op, st.memory)
		lines = append(lines, detailLines("\t ", o.OldContent, st.diffOld)...)
		return append(lines, detailLines("\t→ ", o.NewContent, st.diffNew)...)
	case outcome.KindMemorySearch:
		lines := iconLines(functionPrefix(iconMemory), st.memory, "updating memory with "+o.Op, st.memory)
		return append(lines, detailLines("\t", fmt.Sprintf("query: %s, page: %d", o.Query, o.Page), st.function)...)
	case outcome.KindStatus:
		style := st.function
		if o.OK {
			style = st.ok
		}
		return iconLines(functionPrefix(""), style, o.Detail, style)
	default:
		// running notices and unrecognized results show the raw text
		return iconLines(functionPrefix(""), st.function, o.Detail, st.function)
	}
}

func (p *Printer) assistantLines(text string) []Line {
	st := p.styles
	prefix := iconAssistant + " "
	if p.opts.StripStyling {
		return iconLines(prefix, st.assistant, text, st.assistant)
	}
	raw := strings.Split(text, "\n")
	body := make([]Line, 0, len(raw))
	for _, line := range raw {
		body = append(body, Line{Spans: highlightCode(p.md, line, st.assistant, st.code)})
	}
	indent := strings.Repeat(" ", runewidth.StringWidth(prefix))
	return PrefixLines(body, Span{Text: prefix, Style: st.assistant}, Span{Text: indent, Style: st.assistant})
}

func functionPrefix(icon string) string {
	return iconFunction + icon + " " + functionTag + " "
}

// iconLines prefixes the first line of body with prefix and indents the rest
// to the prefix width.
func iconLines(prefix string, prefixStyle lipgloss.Style, body string, bodyStyle lipgloss.Style) []Line {
	raw := strings.Split(body, "\n")
	lines := make([]Line, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, Line{Spans: []Span{{Text: line, Style: bodyStyle}}})
	}
	indent := strings.Repeat(" ", runewidth.StringWidth(prefix))
	return PrefixLines(lines, Span{Text: prefix, Style: prefixStyle}, Span{Text: indent, Style: bodyStyle})
}

func detailLines(lead, body string, style lipgloss.Style) []Line {
	return iconLines(lead, style, body, style)
}

func plainLines(text string) []Line {
	raw := strings.Split(text, "\n")
	out := make([]Line, 0, len(raw))
	for _, line := range raw {
		out = append(out, Line{Spans: []Span{{Text: line}}})
	}
	return out
}
