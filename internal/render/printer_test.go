package render

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"transcript-cli/internal/outcome"

	"github.com/yuin/goldmark"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func plainPrinter(buf *bytes.Buffer) *Printer {
	return NewPrinter(buf, Options{StripStyling: true})
}

func TestPrinterEmitPlain(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want string
	}{
		{name: "system", ev: Event{Kind: KindSystem, Text: "boot"}, want: "🖥️ [system] boot\n"},
		{name: "monologue", ev: Event{Kind: KindMonologue, Text: "thinking..."}, want: "💭 thinking...\n"},
		{name: "assistant", ev: Event{Kind: KindAssistant, Text: "hi"}, want: "🤖 hi\n"},
		{name: "user", ev: Event{Kind: KindUser, Text: "not json"}, want: "🧑 not json\n"},
		{name: "heartbeat", ev: Event{Kind: KindHeartbeat, Text: `{"reason":"tick"}`}, want: "💓 {\"reason\":\"tick\"}\n"},
		{name: "user system", ev: Event{Kind: KindUserSystem, Text: `{"message":"x"}`}, want: "🖥️ {\"message\":\"x\"}\n"},
		{name: "unknown role", ev: Event{Kind: KindUnknownRole, Text: "???"}, want: "Unknown role: ???\n"},
		{name: "function data", ev: Event{Kind: KindFunctionData, Text: `{"a":1}`}, want: "⚡ [function] {\"a\":1}\n"},
		{name: "function call", ev: Event{Kind: KindFunctionCall, Text: "pause(minutes=1)"}, want: "⚡ [call] pause(minutes=1)\n"},
		{name: "raw", ev: Event{Kind: KindRaw, Text: `{"role":"user"}`}, want: "{\"role\":\"user\"}\n"},
		{name: "multi-line indents continuation", ev: Event{Kind: KindUser, Text: "a\nb"}, want: "🧑 a\n   b\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := plainPrinter(&buf).Emit(tc.ev); err != nil {
				t.Fatalf("Emit: %v", err)
			}
			if got := buf.String(); got != tc.want {
				t.Fatalf("output = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPrinterFunctionOutcomes(t *testing.T) {
	cases := []struct {
		name string
		out  outcome.Outcome
		want string
	}{
		{name: "success", out: outcome.Outcome{Kind: outcome.KindSuccess, Detail: "Success: saved"}, want: "⚡🟢 [function] Success: saved\n"},
		{name: "error", out: outcome.Outcome{Kind: outcome.KindError, Detail: "Error: boom"}, want: "⚡🔴 [function] Error: boom\n"},
		{name: "running", out: outcome.Outcome{Kind: outcome.KindRunning, Detail: "Running x()"}, want: "⚡ [function] Running x()\n"},
		{name: "status", out: outcome.Outcome{Kind: outcome.KindStatus, Detail: `{"status": "OK"}`, OK: true}, want: "⚡ [function] {\"status\": \"OK\"}\n"},
		{name: "suppressed", out: outcome.Outcome{Kind: outcome.KindSuppressed, Detail: "Running send_message()"}, want: ""},
		{
			name: "memory update",
			out:  outcome.Outcome{Kind: outcome.KindMemoryUpdate, Op: "core_memory_replace", OldContent: "likes tea", NewContent: "likes coffee"},
			want: "⚡🧠 [function] updating memory with core_memory_replace\n\t likes tea\n\t→ likes coffee\n",
		},
		{
			name: "memory search",
			out:  outcome.Outcome{Kind: outcome.KindMemorySearch, Op: "archival_memory_search", Query: "x", Page: 1},
			want: "⚡🧠 [function] updating memory with archival_memory_search\n\tquery: x, page: 1\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := plainPrinter(&buf).Emit(Event{Kind: KindFunction, Outcome: tc.out}); err != nil {
				t.Fatalf("Emit: %v", err)
			}
			if got := buf.String(); got != tc.want {
				t.Fatalf("output = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPrinterLabel(t *testing.T) {
	var buf bytes.Buffer
	p := plainPrinter(&buf)

	p.Label(3)
	if err := p.Emit(Event{Kind: KindSystem, Text: "boot"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := p.FlushLabel(); err != nil {
		t.Fatalf("FlushLabel: %v", err)
	}

	p.Label(2)
	if err := p.Emit(Event{Kind: KindFunction, Outcome: outcome.Outcome{Kind: outcome.KindSuppressed}}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := p.FlushLabel(); err != nil {
		t.Fatalf("FlushLabel: %v", err)
	}

	want := "[3] 🖥️ [system] boot\n[2]\n"
	if got := buf.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestPrinterWrap(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{StripStyling: true, Width: 10})
	if err := p.Emit(Event{Kind: KindRaw, Text: "abcdefghijklmno"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := "abcdefghij\nklmno\n"
	if got := buf.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestPrinterWrapIndentsContinuation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{StripStyling: true, Width: 8})
	if err := p.Emit(Event{Kind: KindUser, Text: "abcdefgh"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	// "🧑 " is three cells wide.
	want := "🧑 abcde\n   fgh\n"
	if got := buf.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestPrinterStyledNonTTYMatchesPlainText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{})
	if err := p.Emit(Event{Kind: KindAssistant, Text: "run `go test` now"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := "🤖 run `go test` now"
	if got := strings.TrimRight(stripANSI(buf.String()), "\n"); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestHighlightCode(t *testing.T) {
	md := goldmark.New()
	var st styles
	spans := highlightCode(md, "run `go test` now", st.assistant, st.code)
	var texts []string
	for _, sp := range spans {
		texts = append(texts, sp.Text)
	}
	want := []string{"run `", "go test", "` now"}
	if strings.Join(texts, "|") != strings.Join(want, "|") {
		t.Fatalf("spans = %q, want %q", texts, want)
	}

	if got := highlightCode(md, "no code here", st.assistant, st.code); len(got) != 1 || got[0].Text != "no code here" {
		t.Fatalf("plain line spans = %#v", got)
	}
}

func TestKindString(t *testing.T) {
	if got := KindFunctionCall.String(); got != "function_call" {
		t.Fatalf("KindFunctionCall.String() = %q, want %q", got, "function_call")
	}
	if got := Kind(99).String(); got != "unknown" {
		t.Fatalf("Kind(99).String() = %q, want %q", got, "unknown")
	}
}
