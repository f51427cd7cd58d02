package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NomadCrew/nomad-crew-planner/errors"
)

type activity struct {
	Title     string `json:"title"`
	StartTime string `json:"startTime"`
}

func answer(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []interface{}{map[string]string{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	})
	return string(b)
}

func TestGenerateJSON_Success(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("x-goog-api-key"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(answer(`[{"title":"Louvre","startTime":"2024-05-01T10:00"}]`)))
	}))
	defer server.Close()

	c := NewClient("key-1", WithBaseURL(server.URL), WithModel("test-model"))
	var out []activity
	err := c.GenerateJSON(context.Background(), Request{
		Prompt:    "extract",
		Schema:    ArrayOf(Object(map[string]*Schema{"title": String()}, "title")),
		UseSearch: true,
	}, &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Louvre", out[0].Title)

	genCfg := got["generationConfig"].(map[string]interface{})
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	schema := genCfg["responseSchema"].(map[string]interface{})
	assert.Equal(t, "ARRAY", schema["type"])
	assert.Len(t, got["tools"], 1)
}

func TestGenerateJSON_SearchToolDisabled(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(answer(`[]`)))
	}))
	defer server.Close()

	c := NewClient("k", WithBaseURL(server.URL), WithSearchTool(false))
	var out []activity
	require.NoError(t, c.GenerateJSON(context.Background(), Request{Prompt: "p", UseSearch: true}, &out))
	_, hasTools := got["tools"]
	assert.False(t, hasTools)
	assert.Empty(t, out)
}

func TestGenerateJSON_CodeFencedAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(answer("```json\n[{\"title\":\"Dinner\"}]\n```")))
	}))
	defer server.Close()

	c := NewClient("k", WithBaseURL(server.URL))
	var out []activity
	require.NoError(t, c.GenerateJSON(context.Background(), Request{Prompt: "p"}, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Dinner", out[0].Title)
}

func TestGenerateJSON_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType apperrors.ErrorType
	}{
		{name: "non-2xx", status: http.StatusTooManyRequests, body: `{"error":{"code":429,"message":"quota exceeded"}}`, wantType: apperrors.ServiceError},
		{name: "not json envelope", status: http.StatusOK, body: `<html>`, wantType: apperrors.ParseError},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, wantType: apperrors.ParseError},
		{name: "model text not json", status: http.StatusOK, body: answer(`Here are your activities`), wantType: apperrors.ParseError},
		{name: "blocked prompt", status: http.StatusOK, body: `{"promptFeedback":{"blockReason":"SAFETY"}}`, wantType: apperrors.ServiceError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient("k", WithBaseURL(server.URL))
			var out []activity
			err := c.GenerateJSON(context.Background(), Request{Prompt: "p"}, &out)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), err.Error())
		})
	}
}

func TestGenerateJSON_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := NewClient("k", WithBaseURL(server.URL), WithTimeout(50*time.Millisecond))
	var out []activity
	err := c.GenerateJSON(context.Background(), Request{Prompt: "p"}, &out)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TimeoutError))
}

func TestGenerateJSON_NotConfigured(t *testing.T) {
	c := NewClient("")
	var out []activity
	assert.ErrorIs(t, c.GenerateJSON(context.Background(), Request{Prompt: "p"}, &out), ErrNotConfigured)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `[1]`, stripCodeFence("```json\n[1]\n```"))
	assert.Equal(t, `[1]`, stripCodeFence("```\n[1]```"))
	assert.Equal(t, `[1]`, stripCodeFence("  [1] "))
}
