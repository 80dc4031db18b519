package retrieval

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/creditwise/chat-gateway/internal/cache"
	"github.com/creditwise/chat-gateway/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore() cache.Store {
	return cache.NewMemoryStore(cache.TTLs{Data: time.Minute, Response: time.Hour})
}

func TestClientFetchFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "credit", req.Domain)
		assert.Equal(t, "test@example.com", req.Entity)
		json.NewEncoder(w).Encode(queryResponse{Records: []Record{{"score": 720}}})
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{URL: srv.URL}, slog.Default())
	result := client.Fetch(context.Background(), "credit", "test@example.com")
	assert.True(t, result.Found)
	require.Len(t, result.Records, 1)
}

func TestClientFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{URL: srv.URL}, slog.Default())
	result := client.Fetch(context.Background(), "phone", "nobody@example.com")
	assert.False(t, result.Found)
	assert.NotEmpty(t, result.Message, "negative results must carry a message the model can explain")
}

func TestClientFetchServiceDown(t *testing.T) {
	client := NewClient(ClientConfig{URL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, slog.Default())
	result := client.Fetch(context.Background(), "credit", "test@example.com")
	assert.False(t, result.Found)
}

func TestExecutorFetchesAllDomains(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(queryResponse{Records: []Record{{"domain": req.Domain}}})
	}))
	defer srv.Close()

	exec := NewExecutor(NewClient(ClientConfig{URL: srv.URL}, slog.Default()), testStore(), slog.Default())
	raw, err := exec.Execute(context.Background(), provider.ToolCall{
		Name:      ToolName,
		Arguments: `{"entity":"test@example.com","domains":["credit","transaction"]}`,
	})
	require.NoError(t, err)

	var payload ToolPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Len(t, payload.Results, 2)
	assert.Equal(t, "credit", payload.Results[0].Domain)
	assert.Equal(t, "transaction", payload.Results[1].Domain)
	assert.True(t, payload.Results[0].Found)
}

func TestExecutorUsesDataCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		json.NewEncoder(w).Encode(queryResponse{Records: []Record{{"score": 700}}})
	}))
	defer srv.Close()

	exec := NewExecutor(NewClient(ClientConfig{URL: srv.URL}, slog.Default()), testStore(), slog.Default())
	call := provider.ToolCall{Name: ToolName, Arguments: `{"entity":"test@example.com","domains":["credit"]}`}

	_, err := exec.Execute(context.Background(), call)
	require.NoError(t, err)
	_, err = exec.Execute(context.Background(), call)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second execution must be served from cache")
}

func TestExecutorSingleDomainString(t *testing.T) {
	args, err := ParseArgs(`{"entity":"jane doe","domain":"phone"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"phone"}, args.Domains)
}

func TestExecutorBadArguments(t *testing.T) {
	exec := NewExecutor(NewClient(ClientConfig{URL: "http://127.0.0.1:1"}, slog.Default()), testStore(), slog.Default())
	raw, err := exec.Execute(context.Background(), provider.ToolCall{Name: ToolName, Arguments: `not json`})
	require.NoError(t, err, "bad arguments must degrade to a structured no-data payload")

	var payload ToolPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.Len(t, payload.Results, 1)
	assert.False(t, payload.Results[0].Found)
}

func TestDescriptorsShape(t *testing.T) {
	descs := Descriptors()
	require.Len(t, descs, 1)
	assert.Equal(t, ToolName, descs[0].Name)
	assert.Equal(t, "object", descs[0].Parameters["type"])
}
