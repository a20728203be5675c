package outcome

import (
	"reflect"
	"testing"
)

func TestClassify_Prefixes(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		verbose bool
		want    Kind
	}{
		{name: "success", in: "Success: saved", want: KindSuccess},
		{name: "error", in: "Error: boom", want: KindError},
		{name: "success wins over error text", in: "Success: Error: nested", want: KindSuccess},
		{name: "error wins over running text", in: "Error: Running x()", want: KindError},
		{name: "success without space is not success", in: "Success:saved", want: KindUnrecognized},
		{name: "running verbose", in: "Running core_memory_replace(old_content='a', new_content='b')", verbose: true, want: KindRunning},
		{name: "running generic", in: "Running pause_heartbeats(minutes=5)", want: KindRunning},
		{name: "running unparseable generic", in: "Running something odd", want: KindRunning},
		{name: "send_message suppressed", in: "Running send_message(message='hi')", want: KindSuppressed},
		{name: "send_message dict suppressed", in: "Running send_message({'message': 'hi'})", want: KindSuppressed},
		{name: "send_message substring fallback", in: "Running send_message with odd text", want: KindSuppressed},
		{name: "send_message verbose", in: "Running send_message(message='hi')", verbose: true, want: KindRunning},
		{name: "status ok", in: `{"status": "OK", "message": null}`, want: KindStatus},
		{name: "status failed", in: `{"status": "Failed"}`, want: KindStatus},
		{name: "json scalar", in: `42`, want: KindStatus},
		{name: "not json", in: "hello there", want: KindUnrecognized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.in, tc.verbose)
			if got.Kind != tc.want {
				t.Fatalf("Classify(%q, %v).Kind = %v, want %v", tc.in, tc.verbose, got.Kind, tc.want)
			}
			if got.Detail != tc.in {
				t.Fatalf("Detail = %q, want %q", got.Detail, tc.in)
			}
		})
	}
}

func TestClassify_StatusOK(t *testing.T) {
	if got := Classify(`{"status": "OK"}`, false); !got.OK {
		t.Fatalf("expected OK status, got %#v", got)
	}
	for _, in := range []string{`{"status": "Failed"}`, `{"status": true}`, `{"message": "OK"}`, `"OK"`, `[]`} {
		if got := Classify(in, false); got.Kind != KindStatus || got.OK {
			t.Fatalf("Classify(%q) = %#v, want non-ok status", in, got)
		}
	}
}

func TestClassify_MemorySearch(t *testing.T) {
	got := Classify("Running archival_memory_search(query='x', page=1)", false)
	if got.Kind != KindMemorySearch {
		t.Fatalf("Kind = %v, want memory_search (failure=%#v)", got.Kind, got.Failure)
	}
	if got.Query != "x" || got.Page != 1 || got.Op != MemorySearchFunc {
		t.Fatalf("unexpected outcome: %#v", got)
	}
}

func TestClassify_MemorySearchDefaultsPage(t *testing.T) {
	got := Classify(`Running archival_memory_search({"query": "cats", "page": None})`, false)
	if got.Kind != KindMemorySearch || got.Query != "cats" || got.Page != 0 {
		t.Fatalf("unexpected outcome: %#v", got)
	}
}

func TestClassify_MemoryUpdate(t *testing.T) {
	got := Classify(`Running core_memory_replace(name='human', old_content='likes tea', new_content="likes \"green\" tea")`, false)
	if got.Kind != KindMemoryUpdate {
		t.Fatalf("Kind = %v, want memory_update (failure=%#v)", got.Kind, got.Failure)
	}
	want := Outcome{
		Kind:       KindMemoryUpdate,
		Detail:     got.Detail,
		Op:         "core_memory_replace",
		OldContent: "likes tea",
		NewContent: `likes "green" tea`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestClassify_MalformedMemoryArgumentsFallBack(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		reason string
	}{
		{name: "code injection", in: "Running core_memory_replace(__import__('os').system('rm -rf /'))", reason: ReasonPatternMismatch},
		{name: "unterminated", in: "Running core_memory_replace(old_content='a", reason: ReasonPatternMismatch},
		{name: "no parens", in: "Running core_memory_replace", reason: ReasonPatternMismatch},
		{name: "trailing text", in: "Running core_memory_replace(old_content='a', new_content='b') now", reason: ReasonPatternMismatch},
		{name: "missing new_content", in: "Running core_memory_replace(old_content='a')", reason: ReasonMemoryArguments},
		{name: "append has no old_content", in: "Running core_memory_append(name='human', content='x')", reason: ReasonMemoryArguments},
		{name: "search without query", in: "Running archival_memory_search(page=1)", reason: ReasonMemoryArguments},
		{name: "search page not int", in: "Running archival_memory_search(query='x', page='one')", reason: ReasonMemoryArguments},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.in, false)
			if got.Kind != KindUnrecognized {
				t.Fatalf("Kind = %v, want unrecognized", got.Kind)
			}
			if got.Failure == nil || got.Failure.Reason != tc.reason || got.Failure.Severity != SeverityDebug {
				t.Fatalf("unexpected failure: %#v", got.Failure)
			}
			if got.Detail != tc.in {
				t.Fatalf("Detail = %q, want input", got.Detail)
			}
		})
	}
}

func TestClassify_UnexpectedShapeIsWarn(t *testing.T) {
	got := Classify("the function did a thing", false)
	if got.Failure == nil || got.Failure.Severity != SeverityWarn || got.Failure.Reason != ReasonUnexpectedShape {
		t.Fatalf("unexpected failure: %#v", got.Failure)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	inputs := []string{
		"Success: ok",
		"Error: no",
		"Running archival_memory_search(query='x', page=2)",
		"Running core_memory_replace(old_content='a', new_content='b')",
		"Running core_memory_replace(broken",
		"Running send_message(message='hi')",
		`{"status": "OK"}`,
		"???",
	}
	for _, in := range inputs {
		first := Classify(in, false)
		second := Classify(in, false)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("Classify(%q) not idempotent: %#v vs %#v", in, first, second)
		}
	}
}
