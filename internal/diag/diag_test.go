package diag

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"transcript-cli/internal/logger"
)

func TestRecorder_CountsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(logger.NewBuffered("diag", &buf))

	r.SetEntry(2)
	r.Debug("payload", KindParseFailure, "user content is not json", errors.New("invalid character"))
	r.SetEntry(5)
	r.Warn("classifier", KindUnexpectedShape, "did not recognize function message", nil)
	r.Debug("classifier", KindParseFailure, "again", nil)

	if got := r.Count(KindParseFailure); got != 2 {
		t.Fatalf("Count(parse_failure) = %d, want 2", got)
	}
	if got := r.Count(KindUnknownRole); got != 0 {
		t.Fatalf("Count(unknown_role) = %d, want 0", got)
	}

	recs := r.Records()
	if len(recs) != 3 {
		t.Fatalf("len(Records) = %d, want 3", len(recs))
	}
	if recs[0].Entry != 2 || recs[1].Entry != 5 {
		t.Fatalf("unexpected entry positions: %d, %d", recs[0].Entry, recs[1].Entry)
	}
	if recs[0].Pass == "" || recs[0].Pass != r.Pass() {
		t.Fatalf("record pass = %q, recorder pass = %q", recs[0].Pass, r.Pass())
	}

	out := buf.String()
	if !strings.Contains(out, "[DEBUG] [diag] [kind=parse_failure] render fallback: user content is not json") {
		t.Fatalf("expected debug line, got:\n%s", out)
	}
	if !strings.Contains(out, "[WARNING] [diag] [kind=unexpected_shape]") {
		t.Fatalf("expected warn line, got:\n%s", out)
	}
	if !strings.Contains(out, "error=invalid character") {
		t.Fatalf("expected error field, got:\n%s", out)
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.SetEntry(1)
	r.Debug("x", KindParseFailure, "ignored", nil)
	if r.Count(KindParseFailure) != 0 || r.Records() != nil || r.Pass() != "" {
		t.Fatalf("nil recorder should record nothing")
	}
}

func TestRecorder_SummaryAndDistinctPasses(t *testing.T) {
	a := NewRecorder(logger.NewBuffered("diag", &bytes.Buffer{}))
	b := NewRecorder(logger.NewBuffered("diag", &bytes.Buffer{}))
	if a.Pass() == b.Pass() {
		t.Fatalf("expected distinct pass ids")
	}
	a.Warn("router", KindUnknownRole, "alien", nil)
	a.Warn("router", KindUnknownRole, "alien", nil)
	if got := a.Summary()[KindUnknownRole]; got != 2 {
		t.Fatalf("Summary()[unknown_role] = %d, want 2", got)
	}
}
