// Package main provides a simple CLI client for the chat relay.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "Relay base URL")
	transport := flag.String("transport", "sse", "Transport: sse or ws")
	conversationID := flag.String("conversation", "", "Conversation ID")
	topK := flag.Int("top-k", 0, "topK override (0 uses the relay default)")
	temperature := flag.Float64("temperature", -1, "temperature override (negative uses the relay default)")
	flag.Parse()

	log.SetFlags(log.Ltime)

	sender, err := newSender(*transport, *addr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer sender.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	renderer := NewRenderer(os.Stdout)
	fmt.Printf("Connected to %s over %s.\n", *addr, *transport)
	fmt.Println("Type a message and press Enter to send. /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() || ctx.Err() != nil {
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/quit" {
			fmt.Println("Bye!")
			return
		}

		req := buildRequest(input, *conversationID, *topK, *temperature)
		if err := sender.Send(ctx, req, renderer.Handle); err != nil {
			log.Printf("Send error: %v", err)
		}
	}
}

func newSender(transport, addr string) (Sender, error) {
	switch transport {
	case "sse":
		return NewSSEClient(strings.TrimSuffix(addr, "/")), nil
	case "ws":
		url := strings.TrimSuffix(addr, "/") + "/api/chat/ws"
		url = "ws" + strings.TrimPrefix(url, "http")
		return NewWSClient(url)
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

func buildRequest(message, conversationID string, topK int, temperature float64) *domain.ChatRequest {
	req := &domain.ChatRequest{Message: message}
	if conversationID != "" {
		req.ConversationID = &conversationID
	}
	if topK > 0 || temperature >= 0 {
		req.Settings = &domain.RequestedSettings{}
		if topK > 0 {
			req.Settings.TopK = &topK
		}
		if temperature >= 0 {
			req.Settings.Temperature = &temperature
		}
	}
	return req
}
