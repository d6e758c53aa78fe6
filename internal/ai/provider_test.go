package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func chatCompletionServer(t *testing.T, content string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
}

func TestOpenAIProviderGenerate(t *testing.T) {
	srv := chatCompletionServer(t, ` {"summary":"s","tone":"neutral"} `, func(r *http.Request) {
		require.Equal(t, "Bearer oa-key", r.Header.Get("Authorization"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "gpt-test", body["model"])
	})
	defer srv.Close()

	p, err := NewProvider("OpenAI", map[string]interface{}{"api_key": "oa-key", "base_url": srv.URL + "/"})
	require.NoError(t, err)
	require.Equal(t, "openai", p.Name())
	out, err := NewGenerator(p, "gpt-test").Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, `{"summary":"s","tone":"neutral"}`, out)
}

func TestOpenRouterProviderSendsAttributionHeaders(t *testing.T) {
	srv := chatCompletionServer(t, "ok", func(r *http.Request) {
		require.Equal(t, "https://textlens.example", r.Header.Get("HTTP-Referer"))
		require.Equal(t, "textlens", r.Header.Get("X-Title"))
	})
	defer srv.Close()

	p, err := NewProvider("openrouter", map[string]interface{}{
		"api_key":      "or-key",
		"base_url":     srv.URL,
		"http_referer": "https://textlens.example",
		"x_title":      "textlens",
	})
	require.NoError(t, err)
	out, err := p.Generate(context.Background(), "any/model", "prompt")
	require.NoError(t, err)
	require.Equal(t, "ok", out)
}

func TestProvidersWithoutKey(t *testing.T) {
	for _, name := range []string{"gemini", "openai", "openrouter"} {
		p, err := NewProvider(name, map[string]interface{}{})
		require.NoError(t, err)
		_, err = p.Generate(context.Background(), "m", "prompt")
		require.ErrorIs(t, err, ErrProviderNotConfigured, name)
	}
}

func TestNewProviderErrors(t *testing.T) {
	_, err := NewProvider("", nil)
	require.Error(t, err)
	_, err = NewProvider("unknown", map[string]interface{}{})
	require.Error(t, err)
	_, err = NewProvider("gemini", nil)
	require.Error(t, err)
}

type staticGenerator struct {
	out   string
	err   error
	calls int
}

func (g *staticGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	return g.out, g.err
}

func TestGroupGeneratorFallback(t *testing.T) {
	first := &staticGenerator{err: errors.New("quota")}
	second := &staticGenerator{out: "second"}
	third := &staticGenerator{out: "third"}
	g := NewGroupGenerator([]GeneratorEntry{
		{Name: "first", Generator: first},
		{Name: "second", Generator: second},
		{Name: "third", Generator: third},
	})
	out, err := g.Generate(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, "second", out)
	require.Equal(t, 1, first.calls)
	require.Equal(t, 0, third.calls)
}

func TestGroupGeneratorAllFail(t *testing.T) {
	last := errors.New("last")
	g := NewGroupGenerator([]GeneratorEntry{
		{Name: "a", Generator: &staticGenerator{err: errors.New("first")}},
		{Name: "b", Generator: &staticGenerator{err: last}},
	})
	_, err := g.Generate(context.Background(), "p")
	require.ErrorIs(t, err, last)
}

func TestGroupGeneratorSingleAndEmpty(t *testing.T) {
	only := &staticGenerator{out: "x"}
	require.Same(t, only, NewGroupGenerator([]GeneratorEntry{{Name: "only", Generator: only}}))
	require.Nil(t, NewGroupGenerator(nil))
}
