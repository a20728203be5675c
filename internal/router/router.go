// Package router dispatches a single transcript entry to its rendering path.
package router

import (
	"context"
	"fmt"

	"transcript-cli/internal/diag"
	"transcript-cli/internal/logger"
	"transcript-cli/internal/outcome"
	"transcript-cli/internal/payload"
	"transcript-cli/internal/render"
	"transcript-cli/internal/transcript"

	"github.com/tidwall/gjson"
)

var log = logger.Named("router")

const unrecognizedWarning = "Warning: did not recognize function message"

// Options controls routing. The zero value is the normal, non-verbose path.
type Options struct {
	// Debug shows heartbeats and keeps running-function notices verbatim.
	Debug bool
	// Raw skips payload probing for user content.
	Raw bool
}

// ArgumentsError reports assistant call arguments that could not be decoded.
// The reply they carry is unrecoverable.
type ArgumentsError struct {
	Function  string
	Arguments string
	Reason    string
}

func (e *ArgumentsError) Error() string {
	return fmt.Sprintf("malformed arguments for %s: %s", e.Function, e.Reason)
}

// Router emits the events for one entry at a time.
type Router struct {
	emit render.Emitter
	rec  *diag.Recorder
}

// New creates a Router writing to emit. rec may be nil.
func New(emit render.Emitter, rec *diag.Recorder) *Router {
	return &Router{emit: emit, rec: rec}
}

// Route renders e. Only malformed assistant call arguments and emitter
// failures are returned; every other anomaly degrades to visible text.
func (r *Router) Route(ctx context.Context, e transcript.Entry, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch e.Role {
	case transcript.RoleSystem:
		return r.send(render.KindSystem, e.Content.String())
	case transcript.RoleAssistant:
		return r.assistant(e)
	case transcript.RoleUser:
		return r.user(e, opts)
	case transcript.RoleFunction:
		return r.function(e, opts)
	default:
		r.rec.Warn("router", diag.KindUnknownRole, fmt.Sprintf("role %q", e.RoleName), nil)
		return r.send(render.KindUnknownRole, e.Content.String())
	}
}

func (r *Router) assistant(e transcript.Entry) error {
	if !e.Content.Empty() {
		if err := r.send(render.KindMonologue, e.Content.String()); err != nil {
			return err
		}
	}
	if e.FunctionCall == nil {
		return nil
	}

	call := e.FunctionCall
	args := call.Arguments
	if !gjson.Valid(args) {
		return r.badArguments(call, "arguments are not valid JSON")
	}
	doc := gjson.Parse(args)
	if !doc.IsObject() {
		return r.badArguments(call, "arguments are not a JSON object")
	}
	msg := doc.Get("message")
	if !msg.Exists() || msg.Type == gjson.Null {
		r.rec.Debug("router", diag.KindMissingReply, fmt.Sprintf("%s call carries no message", call.Name), nil)
		return r.send(render.KindFunctionCall, fmt.Sprintf("%s(%s)", call.Name, args))
	}
	reply := msg.Raw
	if msg.Type == gjson.String {
		reply = msg.Str
	}
	return r.send(render.KindAssistant, reply)
}

func (r *Router) badArguments(call *transcript.FunctionCall, reason string) error {
	err := &ArgumentsError{Function: call.Name, Arguments: call.Arguments, Reason: reason}
	r.rec.Error("router", diag.KindMalformedArguments, reason, err)
	return err
}

func (r *Router) user(e transcript.Entry, opts Options) error {
	if e.Content.IsStructured() {
		return r.send(render.KindUser, e.Content.String())
	}
	text := e.Content.Text
	if opts.Raw {
		return r.send(render.KindUser, text)
	}

	p := payload.Parse(text)
	switch p.Kind {
	case payload.KindText:
		r.rec.Debug("payload", diag.KindParseFailure, "user content is not a JSON object", p.Err)
		return r.send(render.KindUser, text)
	case payload.KindGeneric:
		return r.send(render.KindUser, p.FieldsJSON())
	case payload.KindUserMessage:
		return r.send(render.KindUser, p.FieldsJSON())
	case payload.KindHeartbeat:
		if !opts.Debug {
			log.Debugf("heartbeat hidden")
			return nil
		}
		return r.send(render.KindHeartbeat, p.FieldsJSON())
	case payload.KindSystemMessage:
		return r.send(render.KindUserSystem, p.FieldsJSON())
	default:
		return r.send(render.KindUser, text)
	}
}

func (r *Router) function(e transcript.Entry, opts Options) error {
	if e.Content.IsStructured() {
		return r.send(render.KindFunctionData, e.Content.String())
	}

	o := outcome.Classify(e.Content.Text, opts.Debug)
	if f := o.Failure; f != nil {
		kind := failureKind(f.Reason)
		if f.Severity == outcome.SeverityWarn {
			r.rec.Warn("classifier", kind, o.Detail, f.Err)
			if err := r.send(render.KindWarning, unrecognizedWarning); err != nil {
				return err
			}
		} else {
			r.rec.Debug("classifier", kind, o.Detail, f.Err)
		}
	}
	if o.Kind == outcome.KindSuppressed {
		log.Debugf("suppressed function message: %s", o.Detail)
	}
	return r.emit.Emit(render.Event{Kind: render.KindFunction, Outcome: o})
}

func (r *Router) send(kind render.Kind, text string) error {
	return r.emit.Emit(render.Event{Kind: kind, Text: text})
}

func failureKind(reason string) diag.Kind {
	switch reason {
	case outcome.ReasonPatternMismatch:
		return diag.KindPatternMismatch
	case outcome.ReasonMemoryArguments:
		return diag.KindMemoryArguments
	case outcome.ReasonUnexpectedShape:
		return diag.KindUnexpectedShape
	default:
		return diag.KindParseFailure
	}
}
