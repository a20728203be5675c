package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"transcript-cli/internal/logger"

	"github.com/openai/openai-go/v3"
	"github.com/tidwall/gjson"
)

var log = logger.Named("transcript")

// ErrEmpty is returned when the input holds no transcript data.
var ErrEmpty = errors.New("transcript is empty")

// Load reads a transcript document. Accepted shapes:
//   - a JSON array of messages
//   - an object with a "messages" array
//   - an OpenAI chat completion object ("choices")
//   - a single message object
//   - JSON Lines, one message per line
func Load(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if !gjson.ValidBytes(data) {
		return loadLines(data)
	}
	doc := gjson.ParseBytes(data)
	switch {
	case doc.IsArray():
		return decodeEntries([]byte(doc.Raw))
	case doc.IsObject() && doc.Get("messages").IsArray():
		return decodeEntries([]byte(doc.Get("messages").Raw))
	case doc.IsObject() && doc.Get("choices").IsArray():
		return fromChatCompletion(data)
	case doc.IsObject() && doc.Get("role").Exists():
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		return []Entry{e}, nil
	default:
		return nil, fmt.Errorf("unsupported transcript shape: %s", doc.Type)
	}
}

// LoadFile loads a transcript from path; "-" or "" reads stdin.
func LoadFile(path string) ([]Entry, error) {
	if path == "" || path == "-" {
		return Load(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func decodeEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return entries, nil
}

func loadLines(data []byte) ([]Entry, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var entries []Entry
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	return entries, nil
}

// fromChatCompletion turns each choice of a chat completion response into an
// assistant entry. The call descriptor is the legacy function_call, or else the
// first function tool call; further tool calls are logged and skipped.
func fromChatCompletion(data []byte) ([]Entry, error) {
	var completion openai.ChatCompletion
	if err := json.Unmarshal(data, &completion); err != nil {
		return nil, fmt.Errorf("decode chat completion: %w", err)
	}
	choices := gjson.GetBytes(data, "choices").Array()
	entries := make([]Entry, 0, len(completion.Choices))
	for i, choice := range completion.Choices {
		msg := choice.Message
		e := Entry{Role: RoleAssistant, RoleName: "assistant"}
		if msg.Content != "" {
			e.Content = Text(msg.Content)
		}
		if msg.FunctionCall.Name != "" {
			e.FunctionCall = &FunctionCall{Name: msg.FunctionCall.Name, Arguments: msg.FunctionCall.Arguments}
		}
		for _, call := range msg.ToolCalls {
			if call.Function.Name == "" {
				continue
			}
			if e.FunctionCall != nil {
				log.WithField("choice", i).Warnf("skipping extra tool call %s", call.Function.Name)
				continue
			}
			e.FunctionCall = &FunctionCall{Name: call.Function.Name, Arguments: call.Function.Arguments}
		}
		if i < len(choices) {
			e.Raw = json.RawMessage(choices[i].Get("message").Raw)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
