// Package telephony provides a client for the call provider's control API.
package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the telephony control API client.
type Client struct {
	baseURL        string
	apiKey         string
	transferNumber string
	httpClient     *http.Client
}

// NewClient creates a new telephony control client. transferNumber is the
// destination for transfer_call handoffs.
func NewClient(baseURL, apiKey, transferNumber string, timeout time.Duration) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		apiKey:         apiKey,
		transferNumber: transferNumber,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RegisterCallRequest registers an upcoming call with the provider.
type RegisterCallRequest struct {
	AgentID                string `json:"agent_id"`
	AudioWebsocketProtocol string `json:"audio_websocket_protocol"`
	AudioEncoding          string `json:"audio_encoding"`
	SampleRate             int    `json:"sample_rate"`
}

// RegisterCallResponse carries the provider-assigned call details.
type RegisterCallResponse struct {
	CallID         string `json:"call_id"`
	AgentID        string `json:"agent_id"`
	CallStatus     string `json:"call_status"`
	SampleRate     int    `json:"sample_rate"`
	StartTimestamp int64  `json:"start_timestamp,omitempty"`
}

// PhoneNumber represents a provisioned phone number.
type PhoneNumber struct {
	PhoneNumber string `json:"phone_number"`
	AgentID     string `json:"agent_id"`
	AreaCode    int    `json:"area_code,omitempty"`
}

// CreatePhoneNumberRequest provisions a new number bound to an agent.
type CreatePhoneNumberRequest struct {
	AreaCode int    `json:"area_code"`
	AgentID  string `json:"agent_id"`
}

// CreatePhoneCallRequest starts an outbound call.
type CreatePhoneCallRequest struct {
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`
	AgentID    string `json:"agent_id"`
}

// RegisterCall registers a call so the provider can open the llm websocket.
func (c *Client) RegisterCall(ctx context.Context, req *RegisterCallRequest) (*RegisterCallResponse, error) {
	var resp RegisterCallResponse
	if err := c.post(ctx, "/register-call", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePhoneNumber provisions a new number routed to the given agent.
func (c *Client) CreatePhoneNumber(ctx context.Context, req *CreatePhoneNumberRequest) (*PhoneNumber, error) {
	var resp PhoneNumber
	if err := c.post(ctx, "/create-phone-number", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePhoneNumber releases a provisioned number.
func (c *Client) DeletePhoneNumber(ctx context.Context, number string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/delete-phone-number/"+number, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telephony API error [%d]: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// CreatePhoneCall starts an outbound call from a provisioned number.
func (c *Client) CreatePhoneCall(ctx context.Context, req *CreatePhoneCallRequest) error {
	return c.post(ctx, "/create-phone-call", req, nil)
}

// EndCall hangs up an ongoing call.
func (c *Client) EndCall(ctx context.Context, callID string) error {
	return c.post(ctx, "/end-call/"+callID, struct{}{}, nil)
}

// TransferCall hands the call leg to the configured transfer destination.
func (c *Client) TransferCall(ctx context.Context, callID string) error {
	body := map[string]string{"transfer_to": c.transferNumber}
	return c.post(ctx, "/transfer-call/"+callID, body, nil)
}

// post sends a JSON request and decodes the JSON response into out when
// out is non-nil.
func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("telephony API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// setHeaders sets common request headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
