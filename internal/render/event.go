// Package render turns classified transcript events into terminal lines.
package render

import "transcript-cli/internal/outcome"

// Kind is the semantic event being rendered.
type Kind int

const (
	KindSystem Kind = iota
	// KindMonologue is assistant-authored internal reasoning.
	KindMonologue
	// KindAssistant is the user-facing assistant reply.
	KindAssistant
	KindUser
	KindHeartbeat
	// KindUserSystem is a system_message delivered on the user role.
	KindUserSystem
	// KindFunction carries a classified function outcome.
	KindFunction
	// KindFunctionData is function content that arrived as structured data.
	KindFunctionData
	// KindFunctionCall is an assistant call whose arguments carry no reply.
	KindFunctionCall
	KindUnknownRole
	KindWarning
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindSystem:
		return "system"
	case KindMonologue:
		return "monologue"
	case KindAssistant:
		return "assistant"
	case KindUser:
		return "user"
	case KindHeartbeat:
		return "heartbeat"
	case KindUserSystem:
		return "user_system"
	case KindFunction:
		return "function"
	case KindFunctionData:
		return "function_data"
	case KindFunctionCall:
		return "function_call"
	case KindUnknownRole:
		return "unknown_role"
	case KindWarning:
		return "warning"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Event is one classified unit of output.
type Event struct {
	Kind Kind
	Text string
	// Outcome is set for KindFunction.
	Outcome outcome.Outcome
}

// Emitter accepts classified events. Emit must finish writing before it returns.
type Emitter interface {
	Emit(ev Event) error
}
