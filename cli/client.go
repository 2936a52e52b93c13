package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/xiaot623/gogo/chatrelay/internal/domain"
	"github.com/xiaot623/gogo/chatrelay/internal/stream"
)

// Sender sends one chat request and reports each event until the terminal one.
type Sender interface {
	Send(ctx context.Context, req *domain.ChatRequest, handler stream.RecordHandler) error
	Close() error
}

// SSEClient posts to /api/chat/send and reads the event stream.
type SSEClient struct {
	url        string
	httpClient *http.Client
}

// NewSSEClient creates a client for the relay at baseURL.
func NewSSEClient(baseURL string) *SSEClient {
	return &SSEClient{
		url:        baseURL + "/api/chat/send",
		httpClient: &http.Client{},
	}
}

func (c *SSEClient) Send(ctx context.Context, req *domain.ChatRequest, handler stream.RecordHandler) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("relay returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return stream.Read(resp.Body, handler)
}

func (c *SSEClient) Close() error {
	return nil
}

// WSClient keeps one WebSocket open to /api/chat/ws.
type WSClient struct {
	conn *websocket.Conn
}

// NewWSClient dials the relay WebSocket at url.
func NewWSClient(url string) (*WSClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &WSClient{conn: conn}, nil
}

func (c *WSClient) Send(ctx context.Context, req *domain.ChatRequest, handler stream.RecordHandler) error {
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var rec stream.Record
		if err := c.conn.ReadJSON(&rec); err != nil {
			return fmt.Errorf("read event: %w", err)
		}
		if err := handler(rec); err != nil {
			return err
		}
		if rec.Type.IsTerminal() {
			return nil
		}
	}
}

func (c *WSClient) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
