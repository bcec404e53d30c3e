// ABOUTME: Tests for the Gemini HTTP client.
// ABOUTME: Uses httptest to verify request shape and response handling.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRequestShape(t *testing.T) {
	var captured generateRequest
	var capturedPath, capturedKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"type\":\"output\",\"output\":\"hi\"}"}]}}]}`
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))
	defer srv.Close()

	c := New("gemini-2.0-flash", "test-key", WithBaseURL(srv.URL))

	reply, err := c.Generate(context.Background(), "system text", []Turn{
		{Role: "user", Text: `{"type":"user","user":"hello"}`},
		{Role: "model", Text: `{"type":"plan","plan":"greet back"}`},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"output","output":"hi"}`, reply)

	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", capturedPath)
	assert.Equal(t, "test-key", capturedKey)

	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "system text", captured.SystemInstruction.Parts[0].Text)

	require.Len(t, captured.Contents, 2)
	assert.Equal(t, "user", captured.Contents[0].Role)
	assert.Equal(t, "model", captured.Contents[1].Role)
	assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMIMEType)
}

func TestGenerateConcatenatesParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := `{"candidates":[{"content":{"parts":[{"text":"part one "},{"text":"part two"}]}}]}`
		w.Write([]byte(resp))
	}))
	defer srv.Close()

	c := New("m", "k", WithBaseURL(srv.URL))
	reply, err := c.Generate(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "part one part two", reply)
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	c := New("m", "bad-key", WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestGenerateNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := New("m", "k", WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := New("m", "k", WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))
	_, err := c.Generate(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestNewFromEnvMissingKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	_, err := NewFromEnv("m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvAPIKey)
}

func TestNewFromEnvWithKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "secret")
	c, err := NewFromEnv("m")
	require.NoError(t, err)
	assert.NotNil(t, c)
}
