package transcript

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/pretty"
)

// Role is the closed set of transcript roles. Unrecognized strings map to RoleUnknown.
type Role int

const (
	RoleUnknown Role = iota
	RoleSystem
	RoleAssistant
	RoleUser
	RoleFunction
)

// ParseRole converts a wire role string into a Role.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "system":
		return RoleSystem
	case "assistant":
		return RoleAssistant
	case "user":
		return RoleUser
	case "function":
		return RoleFunction
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleAssistant:
		return "assistant"
	case RoleUser:
		return "user"
	case RoleFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Content is a message body: absent, a string, or already-decoded structured data.
type Content struct {
	Text string
	// Data holds non-string JSON content (objects, arrays, numbers, bools).
	// Numbers decode as json.Number.
	Data any
	set  bool
	// raw is the compacted source of structured content.
	raw []byte
}

// Text builds string content.
func Text(s string) Content {
	return Content{Text: s, set: true}
}

// Structured builds content from an already-decoded value.
func Structured(v any) Content {
	return Content{Data: v, set: true}
}

// IsNull reports whether the content was absent or JSON null.
func (c Content) IsNull() bool {
	return !c.set
}

// IsStructured reports whether the content arrived as non-string data.
func (c Content) IsStructured() bool {
	return c.set && c.Data != nil
}

// Empty reports whether there is nothing to show.
func (c Content) Empty() bool {
	if c.IsStructured() {
		return false
	}
	return c.Text == ""
}

// String returns the text, or compact JSON for structured content. Decoded
// content keeps its source text.
func (c Content) String() string {
	if !c.IsStructured() {
		return c.Text
	}
	if len(c.raw) > 0 {
		return string(c.raw)
	}
	data, err := encodeJSON(c.Data)
	if err != nil {
		return ""
	}
	return string(data)
}

// encodeJSON is json.Marshal without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = Content{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = Text(s)
		return nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*c = Structured(v)
	c.raw = pretty.Ugly(trimmed)
	return nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	switch {
	case c.IsNull():
		return []byte("null"), nil
	case c.IsStructured():
		if len(c.raw) > 0 {
			return c.raw, nil
		}
		return encodeJSON(c.Data)
	default:
		return encodeJSON(c.Text)
	}
}

// FunctionCall is the descriptor attached to an assistant entry that invoked a tool.
type FunctionCall struct {
	Name string `json:"name"`
	// Arguments is an opaque JSON string; replies carry a "message" field.
	Arguments string `json:"arguments"`
}

// Entry is one transcript message. Entries are read-only once loaded.
type Entry struct {
	Role         Role
	RoleName     string
	Content      Content
	FunctionCall *FunctionCall
	// Raw is the entry exactly as it appeared in the input, when known.
	Raw json.RawMessage
}

type wireEntry struct {
	Role         string        `json:"role"`
	Content      Content       `json:"content"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	// A blank descriptor ({} or empty name and arguments) means no call.
	if fc := w.FunctionCall; fc != nil && fc.Name == "" && strings.TrimSpace(fc.Arguments) == "" {
		w.FunctionCall = nil
	}
	*e = Entry{
		Role:         ParseRole(w.Role),
		RoleName:     w.Role,
		Content:      w.Content,
		FunctionCall: w.FunctionCall,
		Raw:          append(json.RawMessage(nil), bytes.TrimSpace(data)...),
	}
	return nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	name := e.RoleName
	if name == "" {
		name = e.Role.String()
	}
	return encodeJSON(wireEntry{Role: name, Content: e.Content, FunctionCall: e.FunctionCall})
}

// RawString returns the unmodified input representation, re-encoding when the
// entry was built in code.
func (e Entry) RawString() string {
	if len(e.Raw) > 0 {
		return string(e.Raw)
	}
	data, err := encodeJSON(e)
	if err != nil {
		return ""
	}
	return string(data)
}
