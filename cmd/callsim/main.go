// Package main provides a CLI that plays the call channel role against the
// bridge: it dials the llm websocket, sends transcript events, and prints
// the streamed responses.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kenniferm/eunoia-backend/internal/protocol"
)

// Client simulates one call channel.
type Client struct {
	conn *websocket.Conn
	done chan struct{}

	mu         sync.Mutex
	transcript []protocol.Utterance
	responseID int
	agentBuf   strings.Builder
}

// NewClient dials the bridge for a fresh call id.
func NewClient(baseURL, callID string) (*Client, error) {
	addr := strings.TrimSuffix(baseURL, "/") + "/llm-websocket/" + callID
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		conn: conn,
		done: make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// SendUserTurn appends a user utterance and requests a response.
func (c *Client) SendUserTurn(content string) error {
	c.mu.Lock()
	c.transcript = append(c.transcript, protocol.Utterance{
		Role:    protocol.RoleUser,
		Content: content,
	})
	c.responseID++
	event := protocol.InboundEvent{
		InteractionType: protocol.InteractionResponseRequired,
		ResponseID:      c.responseID,
		Transcript:      append([]protocol.Utterance(nil), c.transcript...),
	}
	c.mu.Unlock()

	return c.conn.WriteJSON(event)
}

// SendPing sends a ping_pong probe.
func (c *Client) SendPing() error {
	return c.conn.WriteJSON(protocol.InboundEvent{
		InteractionType: protocol.InteractionPingPong,
		Timestamp:       time.Now().UnixMilli(),
	})
}

// ReadMessages reads and prints responses from the bridge, accumulating
// agent fragments into the transcript so later turns carry them back.
func (c *Client) ReadMessages() {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Read error: %v", err)
				}
				fmt.Println("\nCall ended by agent.")
				return
			}

			var probe map[string]interface{}
			if err := json.Unmarshal(data, &probe); err != nil {
				log.Printf("Unmarshal error: %v", err)
				continue
			}

			if rt, ok := probe["response_type"].(string); ok {
				fmt.Printf("\n[%s] %s\n", rt, string(data))
				continue
			}

			var res protocol.OutboundResponse
			if err := json.Unmarshal(data, &res); err != nil {
				log.Printf("Unmarshal response error: %v", err)
				continue
			}

			fmt.Print(res.Content)
			c.mu.Lock()
			c.agentBuf.WriteString(res.Content)
			if res.ContentComplete {
				if c.agentBuf.Len() > 0 {
					c.transcript = append(c.transcript, protocol.Utterance{
						Role:    protocol.RoleAgent,
						Content: c.agentBuf.String(),
					})
					c.agentBuf.Reset()
				}
				fmt.Println()
			}
			c.mu.Unlock()

			if res.EndCall {
				fmt.Println("[agent requested hangup]")
			}
		}
	}
}

func main() {
	addr := flag.String("addr", "ws://localhost:8080", "bridge base address")
	callID := flag.String("call", "", "call id (random when empty)")
	flag.Parse()

	log.SetFlags(log.Ltime)

	id := *callID
	if id == "" {
		id = "sim_" + uuid.New().String()[:8]
	}

	fmt.Printf("Opening call %s against %s...\n", id, *addr)

	client, err := NewClient(*addr, id)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	fmt.Println("Connected. Type a message and press Enter to speak.")
	fmt.Println("Commands: /ping to probe, /quit to exit")
	fmt.Println()

	go client.ReadMessages()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		client.Close()
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/ping":
			if err := client.SendPing(); err != nil {
				log.Fatalf("Ping failed: %v", err)
			}
		default:
			if err := client.SendUserTurn(line); err != nil {
				log.Fatalf("Send failed: %v", err)
			}
		}
	}
}
