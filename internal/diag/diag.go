// Package diag records fallbacks taken while rendering a transcript so that
// swallowed failures stay queryable after the pass.
package diag

import (
	"sync"

	"transcript-cli/internal/logger"

	"github.com/google/uuid"
)

// Kind names a category of recorded failure.
type Kind string

const (
	KindParseFailure       Kind = "parse_failure"
	KindPatternMismatch    Kind = "pattern_mismatch"
	KindMemoryArguments    Kind = "memory_arguments"
	KindUnexpectedShape    Kind = "unexpected_shape"
	KindMalformedArguments Kind = "malformed_arguments"
	KindMissingReply       Kind = "missing_reply"
	KindUnknownRole        Kind = "unknown_role"
)

// Severity mirrors the log level a record was written at.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "debug"
	}
}

// Record is one recorded failure.
type Record struct {
	Pass      string
	Entry     int
	Component string
	Kind      Kind
	Severity  Severity
	Detail    string
	Err       error
}

// Recorder collects records for one render pass. A nil *Recorder drops everything.
type Recorder struct {
	mu      sync.Mutex
	pass    string
	entry   int
	log     *logger.LogEntry
	records []Record
}

// NewRecorder starts a pass with a fresh id. log may be nil.
func NewRecorder(log *logger.LogEntry) *Recorder {
	if log == nil {
		log = logger.Named("diag")
	}
	return &Recorder{pass: uuid.NewString(), entry: -1, log: log}
}

// Pass returns the pass id attached to every record.
func (r *Recorder) Pass() string {
	if r == nil {
		return ""
	}
	return r.pass
}

// SetEntry sets the transcript position attached to subsequent records.
func (r *Recorder) SetEntry(index int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.entry = index
	r.mu.Unlock()
}

// Debug records a failure that degraded silently.
func (r *Recorder) Debug(component string, kind Kind, detail string, err error) {
	r.add(component, kind, SeverityDebug, detail, err)
}

// Warn records a failure that was surfaced to the operator.
func (r *Recorder) Warn(component string, kind Kind, detail string, err error) {
	r.add(component, kind, SeverityWarn, detail, err)
}

// Error records a failure that aborted rendering of an entry.
func (r *Recorder) Error(component string, kind Kind, detail string, err error) {
	r.add(component, kind, SeverityError, detail, err)
}

func (r *Recorder) add(component string, kind Kind, sev Severity, detail string, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	rec := Record{
		Pass:      r.pass,
		Entry:     r.entry,
		Component: component,
		Kind:      kind,
		Severity:  sev,
		Detail:    detail,
		Err:       err,
	}
	r.records = append(r.records, rec)
	r.mu.Unlock()

	entry := r.log.WithFields(logger.Fields{
		"kind":  string(kind),
		"pass":  rec.Pass,
		"entry": rec.Entry,
		"from":  component,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	switch sev {
	case SeverityError:
		entry.Errorf("render failed: %s", detail)
	case SeverityWarn:
		entry.Warnf("render anomaly: %s", detail)
	default:
		entry.Debugf("render fallback: %s", detail)
	}
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []Record {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.records...)
}

// Count returns how many records have the given kind.
func (r *Recorder) Count(kind Kind) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.Kind == kind {
			n++
		}
	}
	return n
}

// Summary counts records per kind.
func (r *Recorder) Summary() map[Kind]int {
	out := map[Kind]int{}
	for _, rec := range r.Records() {
		out[rec.Kind]++
	}
	return out
}
