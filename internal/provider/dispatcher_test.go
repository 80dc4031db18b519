package provider

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/creditwise/chat-gateway/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name   string
	calls  int
	models []string
	resp   *Response
	err    error
}

func (f *fakeProvider) Send(ctx context.Context, req *Request) (*Response, error) {
	f.calls++
	f.models = append(f.models, req.Model)
	if f.err != nil {
		return nil, f.err
	}
	resp := *f.resp
	resp.Provider = f.name
	return &resp, nil
}

func (f *fakeProvider) Limits() Limits {
	return Limits{ContextWindow: 8192, Timeout: 5 * time.Second}
}

func (f *fakeProvider) Name() string { return f.name }

func testDispatcher(t *testing.T, primary, fallback Provider) *Dispatcher {
	t.Helper()
	providers := map[string]Provider{"openai": primary}
	routeCfg := config.ModelRoute{Name: "gpt-4o-mini", Provider: "openai", NativeModel: "gpt-4o-mini-2024"}
	if fallback != nil {
		providers["groq"] = fallback
		routeCfg.Fallback = "groq"
		routeCfg.FallbackModel = "llama-3.1-8b-instant"
	}
	d, err := NewDispatcherWithProviders([]config.ModelRoute{routeCfg}, providers, slog.Default())
	require.NoError(t, err)
	return d
}

func TestDispatcherRoutesToNativeModel(t *testing.T) {
	primary := &fakeProvider{name: "openai", resp: &Response{Content: "hi"}}
	d := testDispatcher(t, primary, nil)

	resp, err := d.Send(context.Background(), "gpt-4o-mini", &Request{})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Content)
	assert.Equal(t, []string{"gpt-4o-mini-2024"}, primary.models)
}

func TestDispatcherRetriesRetryableOnAlternate(t *testing.T) {
	primary := &fakeProvider{name: "openai", err: &Error{Provider: "openai", Kind: KindTimeout}}
	fallback := &fakeProvider{name: "groq", resp: &Response{Content: "from groq"}}
	d := testDispatcher(t, primary, fallback)

	resp, err := d.Send(context.Background(), "gpt-4o-mini", &Request{})
	require.NoError(t, err)
	assert.Equal(t, "from groq", resp.Content)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, []string{"llama-3.1-8b-instant"}, fallback.models)
}

func TestDispatcherTerminalErrorNotRetried(t *testing.T) {
	primary := &fakeProvider{name: "openai", err: &Error{Provider: "openai", Kind: KindAuth}}
	fallback := &fakeProvider{name: "groq", resp: &Response{Content: "unused"}}
	d := testDispatcher(t, primary, fallback)

	_, err := d.Send(context.Background(), "gpt-4o-mini", &Request{})
	require.Error(t, err)
	assert.Equal(t, 0, fallback.calls, "terminal errors must never retry")
}

func TestDispatcherUnknownModel(t *testing.T) {
	primary := &fakeProvider{name: "openai", resp: &Response{}}
	d := testDispatcher(t, primary, nil)

	_, err := d.Send(context.Background(), "unrouted", &Request{})
	require.Error(t, err)
}

func TestDispatcherListModels(t *testing.T) {
	primary := &fakeProvider{name: "openai", resp: &Response{}}
	d := testDispatcher(t, primary, nil)
	assert.Equal(t, []string{"gpt-4o-mini"}, d.ListModels())
}

func TestErrorRetryable(t *testing.T) {
	cases := map[ErrorKind]bool{
		KindTimeout:     true,
		KindUnavailable: true,
		KindAuth:        false,
		KindBadRequest:  false,
	}
	for kind, want := range cases {
		e := &Error{Provider: "p", Kind: kind}
		assert.Equal(t, want, e.Retryable(), "kind %s", kind)
	}
}

func TestClassifyStatusKinds(t *testing.T) {
	assert.Equal(t, KindAuth, classifyStatus("p", 401, "").Kind)
	assert.Equal(t, KindUnavailable, classifyStatus("p", 503, "").Kind)
	assert.Equal(t, KindUnavailable, classifyStatus("p", 429, "").Kind)
	assert.Equal(t, KindTimeout, classifyStatus("p", 504, "").Kind)
	assert.Equal(t, KindBadRequest, classifyStatus("p", 422, "").Kind)
}
