package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

func TestFrameWireFormat(t *testing.T) {
	cases := []struct {
		event domain.Event
		want  string
	}{
		{domain.MessageEvent("hola"), `data: {"type":"message","data":{"content":"hola"}}` + "\n\n"},
		{domain.SourcesEvent([]domain.Source{{Title: "T", URL: "https://u", Snippet: "s"}}),
			`data: {"type":"sources","data":{"sources":[{"title":"T","url":"https://u","snippet":"s"}]}}` + "\n\n"},
		{domain.UsageEvent(domain.Usage{Input: 5, Output: 15}), `data: {"type":"usage","data":{"usage":{"input":5,"output":15}}}` + "\n\n"},
		{domain.CompleteEvent(), `data: {"type":"complete","data":{"ok":true}}` + "\n\n"},
		{domain.ErrorEvent(domain.ErrorCodeUpstream, "boom"), `data: {"type":"error","data":{"message":"boom","code":"UPSTREAM_ERROR"}}` + "\n\n"},
	}
	for _, tc := range cases {
		t.Run(string(tc.event.Type), func(t *testing.T) {
			got, err := Frame(tc.event)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestFrameEscapesNewlines(t *testing.T) {
	got, err := Frame(domain.MessageEvent("line one\n\nline two"))
	require.NoError(t, err)

	// A raw blank line inside the payload would end the record early.
	body := strings.TrimSuffix(string(got), "\n\n")
	assert.NotContains(t, body, "\n")
}

func TestFrameUnmarshalableData(t *testing.T) {
	_, err := Frame(domain.Event{Type: domain.EventTypeMessage, Data: make(chan int)})
	assert.Error(t, err)
}

func TestSSEEmitterHeadersAndRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	em, err := NewSSEEmitter(rec)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, em.Emit(ctx, domain.MessageEvent("first")))
	require.NoError(t, em.Emit(ctx, domain.MessageEvent("second")))
	require.NoError(t, em.Emit(ctx, domain.CompleteEvent()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "identity", rec.Header().Get("Content-Encoding"))
	assert.True(t, rec.Flushed)

	records, err := ReadAll(rec.Body)
	require.NoError(t, err)
	require.Len(t, records, 3)

	var msg domain.MessageEventData
	require.NoError(t, records[1].Decode(&msg))
	assert.Equal(t, "second", msg.Content)
	assert.Equal(t, domain.EventTypeComplete, records[2].Type)
}

func TestSSEEmitterStopsAfterCancel(t *testing.T) {
	rec := httptest.NewRecorder()
	em, err := NewSSEEmitter(rec)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = em.Emit(ctx, domain.MessageEvent("late"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Body.String())
}

type plainWriter struct {
	header http.Header
}

func (w *plainWriter) Header() http.Header         { return w.header }
func (w *plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (w *plainWriter) WriteHeader(int)             {}

func TestSSEEmitterRequiresFlusher(t *testing.T) {
	_, err := NewSSEEmitter(&plainWriter{header: http.Header{}})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}

func TestReadMultilineAndComments(t *testing.T) {
	input := ": keepalive\n" +
		"data: {\"type\":\"message\",\n" +
		"data: \"data\":{\"content\":\"x\"}}\n\n" +
		"event: ignored\n" +
		"data: {\"type\":\"complete\",\"data\":{\"ok\":true}}"

	records, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.EventTypeMessage, records[0].Type)
	assert.Equal(t, domain.EventTypeComplete, records[1].Type)
}

func TestReadInvalidRecord(t *testing.T) {
	_, err := ReadAll(strings.NewReader("data: {nope\n\n"))
	assert.Error(t, err)
}
