package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaot623/gogo/chatrelay/internal/domain"
	"github.com/xiaot623/gogo/chatrelay/internal/stream"
)

func TestSSEClientRendersStream(t *testing.T) {
	var got domain.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}

		emitter, err := stream.NewSSEEmitter(w)
		if err != nil {
			t.Errorf("NewSSEEmitter failed: %v", err)
			return
		}
		for _, ev := range []domain.Event{
			domain.MessageEvent("Hola "),
			domain.MessageEvent("de vuelta"),
			domain.SourcesEvent([]domain.Source{{Title: "Doc", URL: "https://example.com"}}),
			domain.UsageEvent(domain.Usage{Input: 1, Output: 2}),
			domain.CompleteEvent(),
		} {
			if err := emitter.Emit(r.Context(), ev); err != nil {
				t.Errorf("Emit failed: %v", err)
				return
			}
		}
	}))
	defer server.Close()

	var out bytes.Buffer
	client := NewSSEClient(server.URL)
	err := client.Send(context.Background(), buildRequest("Hola", "conv-1", 3, -1), NewRenderer(&out).Handle)
	require.NoError(t, err)

	assert.Equal(t, "Hola", got.Message)
	require.NotNil(t, got.ConversationID)
	assert.Equal(t, "conv-1", *got.ConversationID)
	require.NotNil(t, got.Settings)
	assert.Equal(t, 3, *got.Settings.TopK)
	assert.Nil(t, got.Settings.Temperature)

	assert.Equal(t, "Hola de vuelta\n\nSources:\n  1. Doc https://example.com\n\n[usage] input=1 output=2\n", out.String())
}

func TestRendererError(t *testing.T) {
	var out bytes.Buffer
	frame, err := stream.Frame(domain.ErrorEvent(domain.ErrorCodeUpstream, "boom"))
	require.NoError(t, err)

	require.NoError(t, stream.Read(bytes.NewReader(frame), NewRenderer(&out).Handle))
	assert.Equal(t, "\n[UPSTREAM_ERROR] boom\n", out.String())
}

func TestBuildRequestDefaults(t *testing.T) {
	req := buildRequest("hi", "", 0, -1)
	assert.Nil(t, req.ConversationID)
	assert.Nil(t, req.Settings)
}
