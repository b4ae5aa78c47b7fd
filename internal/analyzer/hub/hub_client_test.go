package hub_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportingest/internal/analyzer"
	"reportingest/internal/analyzer/hub"
	"reportingest/internal/config"
	"reportingest/internal/port"
)

func newTestClient(serverURL string) *hub.Client {
	return hub.NewClient(&config.HubConfig{
		Endpoint:    serverURL,
		TimeoutSecs: 5,
	}, "test-hub-key")
}

func TestClient_Analyze_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-hub-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "analizza questo report", body["message"])
		assert.Equal(t, "https://img.example.com/a.jpg", body["imageUrl"])

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"conversationID":"c1","functionCall":{"name":"chiusura_pos","arguments":{}}}`))
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).Analyze(context.Background(), port.AnalyzeInput{
		ImageURL: "https://img.example.com/a.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, "hub", out.Provider)
	assert.JSONEq(t, `{"conversationID":"c1","functionCall":{"name":"chiusura_pos","arguments":{}}}`, string(out.Raw))
}

func TestClient_Analyze_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Analyze(context.Background(), port.AnalyzeInput{ImageURL: "u"})

	require.Error(t, err)
	var statusErr *analyzer.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream down", statusErr.Body)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_Analyze_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Analyze(context.Background(), port.AnalyzeInput{ImageURL: "u"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestClient_Analyze_CustomMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "leggi lo scontrino", body["message"])
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := hub.NewClient(&config.HubConfig{Endpoint: server.URL, Message: "leggi lo scontrino"}, "k")
	_, err := c.Analyze(context.Background(), port.AnalyzeInput{ImageURL: "u"})
	assert.NoError(t, err)
}

func TestClient_SendStatus(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-hub-key", r.Header.Get("X-API-Key"))
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestClient(server.URL).SendStatus(context.Background(), "Report salvato", "conv-7")

	require.NoError(t, err)
	assert.Equal(t, "Report salvato", received["message"])
	assert.Equal(t, "conv-7", received["conversationID"])
	assert.NotContains(t, received, "imageUrl")
}

func TestClient_SendStatus_OmitsEmptyConversation(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
	}))
	defer server.Close()

	require.NoError(t, newTestClient(server.URL).SendStatus(context.Background(), "ok", ""))
	assert.NotContains(t, received, "conversationID")
}

func TestClient_SendStatus_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	err := newTestClient(server.URL).SendStatus(context.Background(), "ok", "")
	var statusErr *analyzer.StatusError
	assert.True(t, errors.As(err, &statusErr))
}
