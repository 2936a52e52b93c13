package v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

type wsEnvelope struct {
	Type domain.EventType `json:"type"`
	Data map[string]any   `json:"data"`
}

func dialChat(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/chat/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntilTerminal reads envelopes up to and including a complete or error event.
func readUntilTerminal(t *testing.T, conn *websocket.Conn) []wsEnvelope {
	t.Helper()
	var out []wsEnvelope
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var env wsEnvelope
		require.NoError(t, conn.ReadJSON(&env))
		out = append(out, env)
		if env.Type.IsTerminal() {
			return out
		}
	}
}

func TestChatWebSocketRelaysSequentially(t *testing.T) {
	h, _ := newTestHandler(t, newWebhookStub(t, http.StatusOK, `{"output":"Hola de vuelta","usage":{"input":3,"output":4}}`))
	conn := dialChat(t, h)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"Hola"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"otra vez"}`)))

	for i := 0; i < 2; i++ {
		events := readUntilTerminal(t, conn)
		require.Len(t, events, 3)
		assert.Equal(t, domain.EventTypeMessage, events[0].Type)
		assert.Equal(t, "Hola de vuelta", events[0].Data["content"])
		assert.Equal(t, domain.EventTypeUsage, events[1].Type)
		assert.Equal(t, domain.EventTypeComplete, events[2].Type)
	}
}

func TestChatWebSocketInvalidMessage(t *testing.T) {
	h, _ := newTestHandler(t, newWebhookStub(t, http.StatusOK, `{"output":"ok"}`))
	conn := dialChat(t, h)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	events := readUntilTerminal(t, conn)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeError, events[0].Type)
	assert.Equal(t, string(domain.ErrorCodeValidation), events[0].Data["code"])

	// The connection stays usable.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"Hola"}`)))
	events = readUntilTerminal(t, conn)
	assert.Equal(t, domain.EventTypeComplete, events[len(events)-1].Type)
}
