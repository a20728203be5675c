// Package sequence renders a whole transcript in order.
package sequence

import (
	"context"
	"fmt"
	"strings"

	"transcript-cli/internal/diag"
	"transcript-cli/internal/logger"
	"transcript-cli/internal/render"
	"transcript-cli/internal/router"
	"transcript-cli/internal/transcript"
)

var log = logger.Named("sequence")

// Mode selects how entries are rendered.
type Mode string

const (
	ModeFull   Mode = "full"
	ModeSimple Mode = "simple"
	ModeRaw    Mode = "raw"
)

// ParseMode accepts full, simple and raw; empty means full.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFull:
		return ModeFull, nil
	case ModeSimple:
		return ModeSimple, nil
	case ModeRaw:
		return ModeRaw, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want full, simple or raw)", s)
	}
}

// Sink receives events plus the optional position labels.
type Sink interface {
	render.Emitter
	Label(n int)
	FlushLabel() error
}

// Options for one pass.
type Options struct {
	Mode Mode
	// Indexed prefixes each entry with a descending position (full mode only).
	Indexed bool
	Debug   bool
}

// Result summarizes a completed pass.
type Result struct {
	Pass     string
	Rendered int
	Records  []diag.Record
}

// Processor walks entries and hands each one to the router.
type Processor struct {
	sink   Sink
	rec    *diag.Recorder
	router *router.Router
}

// New creates a Processor. rec may be nil.
func New(sink Sink, rec *diag.Recorder) *Processor {
	return &Processor{sink: sink, rec: rec, router: router.New(sink, rec)}
}

// Process renders entries strictly in order and stops at the first
// unrecoverable error, returning it with the entry position.
func (p *Processor) Process(ctx context.Context, entries []transcript.Entry, opts Options) (Result, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeFull
	}
	res := Result{Pass: p.rec.Pass()}
	log.WithField("pass", res.Pass).Debugf("rendering %d entries in %s mode", len(entries), mode)

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return p.finish(res), err
		}
		p.rec.SetEntry(i)

		var err error
		switch mode {
		case ModeRaw:
			err = p.sink.Emit(render.Event{Kind: render.KindRaw, Text: e.RawString()})
		case ModeSimple:
			err = p.simple(ctx, e)
		default:
			if opts.Indexed {
				p.sink.Label(len(entries) - i)
			}
			err = p.router.Route(ctx, e, router.Options{Debug: opts.Debug})
			if err == nil && opts.Indexed {
				err = p.sink.FlushLabel()
			}
		}
		if err != nil {
			return p.finish(res), fmt.Errorf("entry %d (%s): %w", i+1, roleName(e), err)
		}
		res.Rendered++
	}
	return p.finish(res), nil
}

func (p *Processor) simple(ctx context.Context, e transcript.Entry) error {
	switch e.Role {
	case transcript.RoleSystem:
		return p.sink.Emit(render.Event{Kind: render.KindSystem, Text: e.Content.String()})
	case transcript.RoleAssistant:
		return p.sink.Emit(render.Event{Kind: render.KindAssistant, Text: e.Content.String()})
	case transcript.RoleUser:
		return p.router.Route(ctx, e, router.Options{Raw: true})
	default:
		p.rec.Warn("sequence", diag.KindUnknownRole, fmt.Sprintf("role %q in simple mode", roleName(e)), nil)
		return p.sink.Emit(render.Event{Kind: render.KindUnknownRole, Text: e.Content.String()})
	}
}

func (p *Processor) finish(res Result) Result {
	res.Records = p.rec.Records()
	return res
}

func roleName(e transcript.Entry) string {
	if e.RoleName != "" {
		return e.RoleName
	}
	return e.Role.String()
}
