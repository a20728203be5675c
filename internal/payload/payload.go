// Package payload probes user-role message content for a structured event
// payload (a JSON object with a "type" discriminator).
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Kind is the shape a user message content was recognized as.
type Kind int

const (
	// KindText is content that did not decode as a JSON object.
	KindText Kind = iota
	KindUserMessage
	KindHeartbeat
	KindSystemMessage
	// KindGeneric is a JSON object with a missing or unknown "type".
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindUserMessage:
		return "user_message"
	case KindHeartbeat:
		return "heartbeat"
	case KindSystemMessage:
		return "system_message"
	case KindGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

var (
	errNotObject    = errors.New("content is not a JSON object")
	errTrailingData = errors.New("content has data after the JSON object")
)

// Payload is the transient result of Parse.
type Payload struct {
	Kind Kind
	Raw  string
	// Fields is the decoded object with numbers kept as json.Number. For the
	// typed kinds the "type" key is removed; KindGeneric keeps the full object.
	Fields map[string]any
	// rest is the source object minus "type", compacted but otherwise byte for byte.
	rest string
	// Err is the decode failure behind KindText.
	Err error
}

// Parse classifies text. It never fails: undecodable input is KindText.
func Parse(text string) Payload {
	fields, err := decodeObject(text)
	if err != nil {
		return Payload{Kind: KindText, Raw: text, Err: err}
	}
	typ, _ := fields["type"].(string)
	kind := kindOf(typ)
	if kind == KindGeneric {
		return Payload{Kind: KindGeneric, Raw: text, Fields: fields, rest: compact(text)}
	}
	delete(fields, "type")
	p := Payload{Kind: kind, Raw: text, Fields: fields}
	if stripped, err := sjson.Delete(text, "type"); err == nil {
		p.rest = compact(stripped)
	}
	return p
}

func compact(text string) string {
	return string(pretty.Ugly([]byte(text)))
}

func kindOf(typ string) Kind {
	switch typ {
	case "user_message":
		return KindUserMessage
	case "heartbeat":
		return KindHeartbeat
	case "system_message":
		return KindSystemMessage
	default:
		return KindGeneric
	}
}

func decodeObject(text string) (map[string]any, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		if json.Valid(trimmed) {
			return nil, errNotObject
		}
	}
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	if fields == nil {
		return nil, errNotObject
	}
	return fields, nil
}

// FieldsJSON renders the payload fields as compact JSON. Keys keep their
// source order and values their source text.
func (p Payload) FieldsJSON() string {
	if p.Fields == nil {
		return p.Raw
	}
	if p.rest != "" {
		return p.rest
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p.Fields); err != nil {
		return p.Raw
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
