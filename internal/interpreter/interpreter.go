// Package interpreter extracts tool calls from the JSON returned by the analysis API.
//
// The API has answered in several shapes over time. Each shape is a matcher in
// an ordered list; the first matcher that recognizes the response decides the
// result, and a response no matcher recognizes yields no tool calls.
package interpreter

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"reportingest/internal/domain"
)

// ErrMissingName is wrapped by a ParseError when a call carries no function name.
var ErrMissingName = errors.New("tool call has no name")

// ParseError reports a tool call whose arguments could not be decoded. The call
// is dropped from the result.
type ParseError struct {
	Shape string
	Index int
	Name  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s call %d (%q): %v", e.Shape, e.Index, e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Result is the outcome of interpreting one response.
type Result struct {
	// Shape names the matcher that recognized the response, empty if none did.
	Shape          string
	Calls          []domain.ToolCall
	ConversationID string
}

// candidate is a call located by a matcher, before its arguments are decoded.
type candidate struct {
	name   string
	args   gjson.Result
	callID string
	// parseString allows a JSON-encoded string in args.
	parseString bool
}

type shape struct {
	name  string
	match func(root gjson.Result) ([]candidate, bool)
}

// shapes is ordered by priority.
var shapes = []shape{
	{name: "chat_completion", match: matchChatCompletion},
	{name: "tool_calls", match: matchToolCalls},
	{name: "function_call", match: matchFunctionCall},
	{name: "functionCall", match: matchHubFunctionCall},
}

// Interpret returns the tool calls found in raw, never nil. Calls whose arguments
// fail to decode are omitted and reported through the returned error, which joins
// one *ParseError per dropped call.
func Interpret(raw []byte) ([]domain.ToolCall, error) {
	res, err := Parse(raw)
	return res.Calls, err
}

// Parse is Interpret plus the matched shape name and conversation id.
func Parse(raw []byte) (Result, error) {
	res := Result{Calls: []domain.ToolCall{}}
	if !gjson.ValidBytes(raw) {
		return res, nil
	}
	root := gjson.ParseBytes(raw)
	res.ConversationID = conversationID(root)

	for _, s := range shapes {
		found, ok := s.match(root)
		if !ok {
			continue
		}
		res.Shape = s.name

		var errs []error
		for i, c := range found {
			call, err := decode(c)
			if err != nil {
				errs = append(errs, &ParseError{Shape: s.name, Index: i, Name: c.name, Err: err})
				continue
			}
			res.Calls = append(res.Calls, call)
		}
		return res, errors.Join(errs...)
	}
	return res, nil
}

// ConversationID returns the optional conversation identifier of a response.
func ConversationID(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	return conversationID(gjson.ParseBytes(raw))
}

func conversationID(root gjson.Result) string {
	for _, path := range []string{"conversationID", "conversationId", "conversation_id"} {
		if v := root.Get(path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// matchChatCompletion: {"choices":[{"message":{"tool_calls":[{"id","function":{"name","arguments"}}]}}]}
func matchChatCompletion(root gjson.Result) ([]candidate, bool) {
	calls := root.Get("choices.0.message.tool_calls")
	if !calls.IsArray() {
		return nil, false
	}
	var out []candidate
	for _, tc := range calls.Array() {
		out = append(out, candidate{
			name:        tc.Get("function.name").String(),
			args:        tc.Get("function.arguments"),
			callID:      tc.Get("id").String(),
			parseString: true,
		})
	}
	return out, true
}

// matchToolCalls: {"tool_calls":[...]} with either the nested function object or
// flat name/arguments on each call.
func matchToolCalls(root gjson.Result) ([]candidate, bool) {
	calls := root.Get("tool_calls")
	if !calls.IsArray() {
		return nil, false
	}
	var out []candidate
	for _, tc := range calls.Array() {
		name := tc.Get("function.name").String()
		if name == "" {
			name = tc.Get("name").String()
		}
		args := tc.Get("function.arguments")
		if !args.Exists() {
			args = tc.Get("arguments")
		}
		out = append(out, candidate{
			name:        name,
			args:        args,
			callID:      tc.Get("id").String(),
			parseString: true,
		})
	}
	return out, true
}

// matchFunctionCall: {"function_call":{"name","arguments"}}
func matchFunctionCall(root gjson.Result) ([]candidate, bool) {
	fc := root.Get("function_call")
	if !fc.IsObject() {
		return nil, false
	}
	return []candidate{{
		name:        fc.Get("name").String(),
		args:        fc.Get("arguments"),
		parseString: true,
	}}, true
}

// matchHubFunctionCall: {"functionCall":{"name","arguments":{...},"callId"}}
func matchHubFunctionCall(root gjson.Result) ([]candidate, bool) {
	fc := root.Get("functionCall")
	if !fc.IsObject() {
		return nil, false
	}
	return []candidate{{
		name:   fc.Get("name").String(),
		args:   fc.Get("arguments"),
		callID: fc.Get("callId").String(),
	}}, true
}

func decode(c candidate) (domain.ToolCall, error) {
	if c.name == "" {
		return domain.ToolCall{}, ErrMissingName
	}

	var raw json.RawMessage
	switch {
	case !c.args.Exists():
	case c.args.Type == gjson.String && c.parseString:
		if !gjson.Valid(c.args.Str) {
			return domain.ToolCall{}, fmt.Errorf("arguments are not valid JSON: %.80q", c.args.Str)
		}
		raw = json.RawMessage(c.args.Str)
	default:
		raw = json.RawMessage(c.args.Raw)
	}

	args := map[string]any{}
	if len(raw) > 0 {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return domain.ToolCall{}, fmt.Errorf("decoding arguments: %w", err)
		}
		if m, ok := v.(map[string]any); ok {
			args = m
		}
	}

	return domain.ToolCall{
		Name:         c.name,
		Arguments:    args,
		RawArguments: raw,
		CallID:       c.callID,
	}, nil
}
