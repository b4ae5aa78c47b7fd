package interpreter_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportingest/internal/interpreter"
)

func TestInterpret_ChatCompletion_StringArguments(t *testing.T) {
	raw := []byte(`{
		"choices": [{
			"message": {
				"role": "assistant",
				"tool_calls": [
					{"id": "call_1", "type": "function", "function": {"name": "chiusura_pos", "arguments": "{\"data\":\"2024-01-01\",\"totale\":100}"}},
					{"id": "call_2", "type": "function", "function": {"name": "daily_report_spielo", "arguments": {"totale": 5}}}
				]
			}
		}]
	}`)

	res, err := interpreter.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "chat_completion", res.Shape)
	require.Len(t, res.Calls, 2)

	assert.Equal(t, "chiusura_pos", res.Calls[0].Name)
	assert.Equal(t, "call_1", res.Calls[0].CallID)
	assert.Equal(t, "2024-01-01", res.Calls[0].Arguments["data"])
	assert.Equal(t, float64(100), res.Calls[0].Arguments["totale"])
	assert.JSONEq(t, `{"data":"2024-01-01","totale":100}`, string(res.Calls[0].RawArguments))

	assert.Equal(t, "daily_report_spielo", res.Calls[1].Name)
	assert.Equal(t, float64(5), res.Calls[1].Arguments["totale"])
}

func TestInterpret_TopLevelToolCalls_FlatAndNested(t *testing.T) {
	raw := []byte(`{"tool_calls": [
		{"function": {"name": "report_novoline_range", "arguments": "{\"from\":\"2024-01-01\"}"}},
		{"name": "chiusura_pos", "arguments": {"ora": "21:00"}}
	]}`)

	res, err := interpreter.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "tool_calls", res.Shape)
	require.Len(t, res.Calls, 2)
	assert.Equal(t, "report_novoline_range", res.Calls[0].Name)
	assert.Equal(t, "2024-01-01", res.Calls[0].Arguments["from"])
	assert.Equal(t, "chiusura_pos", res.Calls[1].Name)
	assert.Equal(t, "21:00", res.Calls[1].Arguments["ora"])
}

func TestInterpret_SingleFunctionCall(t *testing.T) {
	raw := []byte(`{"function_call": {"name": "chiusura_pos", "arguments": "{\"totale\": 12.5}"}}`)

	calls, err := interpreter.Interpret(raw)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "chiusura_pos", calls[0].Name)
	assert.Equal(t, 12.5, calls[0].Arguments["totale"])
}

func TestInterpret_HubFunctionCall(t *testing.T) {
	raw := []byte(`{
		"conversationID": "conv-42",
		"functionCall": {"name": "chiusura_pos", "arguments": {"data": "2024-01-01", "totale": 100, "nomeAzienda": "Acme"}, "callId": "abc"}
	}`)

	res, err := interpreter.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "functionCall", res.Shape)
	assert.Equal(t, "conv-42", res.ConversationID)
	require.Len(t, res.Calls, 1)
	assert.Equal(t, "abc", res.Calls[0].CallID)
	assert.Equal(t, "Acme", res.Calls[0].Arguments["nomeAzienda"])
}

func TestInterpret_HubFunctionCall_StringArgumentsNotParsed(t *testing.T) {
	raw := []byte(`{"functionCall": {"name": "x", "arguments": "{\"a\":1}"}}`)

	calls, err := interpreter.Interpret(raw)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Arguments)
	assert.Equal(t, `"{\"a\":1}"`, string(calls[0].RawArguments))
}

func TestInterpret_PriorityOrder(t *testing.T) {
	raw := []byte(`{
		"functionCall": {"name": "from_hub", "arguments": {}},
		"tool_calls": [{"name": "from_tool_calls", "arguments": {}}]
	}`)

	calls, err := interpreter.Interpret(raw)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "from_tool_calls", calls[0].Name)
}

func TestInterpret_NoMatch(t *testing.T) {
	cases := map[string]string{
		"plain message": `{"message": "non ho capito"}`,
		"not json":      `<html>oops</html>`,
		"array root":    `[1,2,3]`,
		"empty":         ``,
		"tool_calls obj": `{"tool_calls": {"name": "x"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			calls, err := interpreter.Interpret([]byte(body))
			assert.NoError(t, err)
			assert.NotNil(t, calls)
			assert.Empty(t, calls)
		})
	}
}

func TestInterpret_EmptyToolCallsArrayMatches(t *testing.T) {
	raw := []byte(`{"choices":[{"message":{"tool_calls":[]}}], "functionCall": {"name": "x"}}`)

	res, err := interpreter.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "chat_completion", res.Shape)
	assert.Empty(t, res.Calls)
}

func TestInterpret_MalformedArgumentsDropsOnlyThatCall(t *testing.T) {
	raw := []byte(`{"tool_calls": [
		{"function": {"name": "chiusura_pos", "arguments": "{not json"}},
		{"function": {"name": "daily_report_spielo", "arguments": "{}"}}
	]}`)

	calls, err := interpreter.Interpret(raw)
	require.Error(t, err)

	var perr *interpreter.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "chiusura_pos", perr.Name)
	assert.Equal(t, 0, perr.Index)

	require.Len(t, calls, 1)
	assert.Equal(t, "daily_report_spielo", calls[0].Name)
}

func TestInterpret_MalformedSingleCallYieldsNoCalls(t *testing.T) {
	raw := []byte(`{"function_call": {"name": "chiusura_pos", "arguments": "totale: 5"}}`)

	calls, err := interpreter.Interpret(raw)
	var perr *interpreter.ParseError
	assert.True(t, errors.As(err, &perr))
	assert.NotNil(t, calls)
	assert.Empty(t, calls)
}

func TestInterpret_MissingName(t *testing.T) {
	raw := []byte(`{"tool_calls": [{"arguments": {}}]}`)

	calls, err := interpreter.Interpret(raw)
	assert.ErrorIs(t, err, interpreter.ErrMissingName)
	assert.Empty(t, calls)
}

func TestConversationID(t *testing.T) {
	assert.Equal(t, "c1", interpreter.ConversationID([]byte(`{"conversationID":"c1"}`)))
	assert.Equal(t, "c2", interpreter.ConversationID([]byte(`{"conversationId":"c2"}`)))
	assert.Equal(t, "", interpreter.ConversationID([]byte(`{"conversationID":7}`)))
	assert.Equal(t, "", interpreter.ConversationID([]byte(`nope`)))
}
