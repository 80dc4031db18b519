package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClientSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var req chatCompletionsRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "gpt-4o-mini" {
			t.Errorf("Expected model gpt-4o-mini, got %s", req.Model)
		}
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "get_customer_data" {
			t.Errorf("Expected advertised tool, got %+v", req.Tools)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "",
				"tool_calls": [{"id": "call_1", "type": "function",
					"function": {"name": "get_customer_data", "arguments": "{\"domain\":\"credit\",\"entity\":\"test@example.com\"}"}}]},
				"finish_reason": "tool_calls"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(&OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewOpenAIClient failed: %v", err)
	}

	resp, err := client.Send(context.Background(), &Request{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: RoleUser, Content: "credit for test@example.com"}},
		Tools: []ToolDescriptor{{
			Name:       "get_customer_data",
			Parameters: map[string]interface{}{"type": "object"},
		}},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("Expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	if resp.ToolCalls[0].Name != "get_customer_data" {
		t.Errorf("Expected get_customer_data, got %s", resp.ToolCalls[0].Name)
	}
	if resp.TotalTokens != 15 {
		t.Errorf("Expected 15 total tokens, got %d", resp.TotalTokens)
	}
}

func TestOpenAIClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, _ := NewOpenAIClient(&OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-bad"})
	_, err := client.Send(context.Background(), &Request{Model: "gpt-4o-mini"})
	if err == nil {
		t.Fatal("Expected error")
	}
	provErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if provErr.Kind != KindAuth {
		t.Errorf("Expected auth kind, got %s", provErr.Kind)
	}
	if provErr.Retryable() {
		t.Error("Auth errors must not be retryable")
	}
}

func TestGroqDefaults(t *testing.T) {
	client, err := NewGroqClient(&GroqConfig{APIKey: "gsk-test"})
	if err != nil {
		t.Fatalf("NewGroqClient failed: %v", err)
	}
	limits := client.Limits()
	if limits.ContextWindow != 8192 {
		t.Errorf("Expected 8192 context window, got %d", limits.ContextWindow)
	}
}

func TestGoogleClientSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateContentRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.SystemInstruction == nil {
			t.Error("Expected system instruction")
		}
		if len(req.Tools) != 1 {
			t.Errorf("Expected tools, got %+v", req.Tools)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [
				{"functionCall": {"name": "get_customer_data", "args": {"domain": "phone", "entity": "test@example.com"}}}
			]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 8, "candidatesTokenCount": 4, "totalTokenCount": 12}
		}`))
	}))
	defer srv.Close()

	client, err := NewGoogleClient(&GoogleConfig{BaseURL: srv.URL, APIKey: "test"})
	if err != nil {
		t.Fatalf("NewGoogleClient failed: %v", err)
	}

	resp, err := client.Send(context.Background(), &Request{
		Model: "gemini-2.0-flash",
		Messages: []Message{
			{Role: RoleSystem, Content: "You answer customer data questions."},
			{Role: RoleUser, Content: "phone for test@example.com"},
		},
		Tools: []ToolDescriptor{{Name: "get_customer_data"}},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("Expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	var args map[string]string
	json.Unmarshal([]byte(resp.ToolCalls[0].Arguments), &args)
	if args["domain"] != "phone" {
		t.Errorf("Expected phone domain arg, got %+v", args)
	}
}
