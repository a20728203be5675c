// Package outcome classifies function-result messages into outcome categories.
package outcome

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	prefixSuccess = "Success: "
	prefixError   = "Error: "
	prefixRunning = "Running "

	// MemorySearchFunc is the memory operation rendered as a query/page summary.
	MemorySearchFunc = "archival_memory_search"
	// SendMessageFunc delivers the assistant reply; its running notice is redundant.
	SendMessageFunc = "send_message"
)

// Kind is the outcome category of a function message.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindSuccess
	KindError
	KindRunning
	KindMemoryUpdate
	KindMemorySearch
	KindStatus
	// KindSuppressed produces no output.
	KindSuppressed
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	case KindRunning:
		return "running"
	case KindMemoryUpdate:
		return "memory_update"
	case KindMemorySearch:
		return "memory_search"
	case KindStatus:
		return "status"
	case KindSuppressed:
		return "suppressed"
	default:
		return "unrecognized"
	}
}

// Severity of a classification fallback.
type Severity int

const (
	// SeverityDebug failures degrade silently to raw text.
	SeverityDebug Severity = iota
	// SeverityWarn failures mean the upstream result format was unexpected.
	SeverityWarn
)

// Fallback reasons carried by Failure.Reason.
const (
	ReasonPatternMismatch = "pattern_mismatch"
	ReasonMemoryArguments = "memory_arguments"
	ReasonUnexpectedShape = "unexpected_shape"
)

// Failure describes why classification fell back to KindUnrecognized.
type Failure struct {
	Reason   string
	Severity Severity
	Err      error
}

var (
	errNotJSON         = errors.New("not a recognized function result")
	errMissingArgument = errors.New("missing argument")
)

// Outcome is the classified form of one function message.
type Outcome struct {
	Kind Kind
	// Detail is the original message text.
	Detail string

	// Op is the memory operation name (MemoryUpdate, MemorySearch).
	Op         string
	OldContent string
	NewContent string
	Query      string
	Page       int

	// OK is set for KindStatus payloads whose status is "OK".
	OK bool

	Failure *Failure
}

// Classify determines the outcome of a function message. verbose keeps running
// notices verbatim. Classify is pure.
func Classify(text string, verbose bool) Outcome {
	switch {
	case strings.HasPrefix(text, prefixSuccess):
		return Outcome{Kind: KindSuccess, Detail: text}
	case strings.HasPrefix(text, prefixError):
		return Outcome{Kind: KindError, Detail: text}
	case strings.HasPrefix(text, prefixRunning):
		if verbose {
			return Outcome{Kind: KindRunning, Detail: text}
		}
		return classifyRunning(text)
	default:
		return classifyStatus(text)
	}
}

func classifyRunning(text string) Outcome {
	call, callErr := ParseCall(strings.TrimSpace(strings.TrimPrefix(text, prefixRunning)))
	if callErr == nil && call.Name == SendMessageFunc {
		return Outcome{Kind: KindSuppressed, Detail: text}
	}
	if strings.Contains(text, "memory") {
		if callErr != nil {
			return unrecognized(text, ReasonPatternMismatch, SeverityDebug, callErr)
		}
		return memoryOutcome(text, call)
	}
	if callErr != nil && strings.Contains(text, SendMessageFunc) {
		return Outcome{Kind: KindSuppressed, Detail: text}
	}
	return Outcome{Kind: KindRunning, Detail: text}
}

func memoryOutcome(text string, call Call) Outcome {
	if call.Name == MemorySearchFunc {
		query, ok := call.Args["query"]
		if !ok {
			return unrecognized(text, ReasonMemoryArguments, SeverityDebug, fmt.Errorf("%w: query", errMissingArgument))
		}
		page := 0
		if v, ok := call.Args["page"]; ok {
			switch v.Kind {
			case ValueInt:
				page = int(v.Int)
			case ValueNull:
			default:
				return unrecognized(text, ReasonMemoryArguments, SeverityDebug, fmt.Errorf("page is not an integer: %s", v))
			}
		}
		return Outcome{Kind: KindMemorySearch, Detail: text, Op: call.Name, Query: query.String(), Page: page}
	}
	oldContent, okOld := call.Args["old_content"]
	newContent, okNew := call.Args["new_content"]
	if !okOld || !okNew {
		missing := "old_content"
		if okOld {
			missing = "new_content"
		}
		return unrecognized(text, ReasonMemoryArguments, SeverityDebug, fmt.Errorf("%w: %s", errMissingArgument, missing))
	}
	return Outcome{
		Kind:       KindMemoryUpdate,
		Detail:     text,
		Op:         call.Name,
		OldContent: oldContent.String(),
		NewContent: newContent.String(),
	}
}

func classifyStatus(text string) Outcome {
	if !gjson.Valid(text) {
		return unrecognized(text, ReasonUnexpectedShape, SeverityWarn, errNotJSON)
	}
	doc := gjson.Parse(text)
	ok := doc.IsObject() && doc.Get("status").Type == gjson.String && doc.Get("status").Str == "OK"
	return Outcome{Kind: KindStatus, Detail: text, OK: ok}
}

func unrecognized(text, reason string, sev Severity, err error) Outcome {
	return Outcome{
		Kind:    KindUnrecognized,
		Detail:  text,
		Failure: &Failure{Reason: reason, Severity: sev, Err: err},
	}
}
