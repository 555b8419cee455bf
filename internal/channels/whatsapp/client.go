package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultGraphAPIBase = "https://graph.facebook.com/v18.0"
	defaultHTTPTimeout  = 10 * time.Second
	defaultMaxElapsed   = 30 * time.Second
)

// Client sends messages through the WhatsApp Cloud API. Transient
// failures (network errors, 5xx) are retried with exponential backoff;
// 4xx responses are permanent.
type Client struct {
	accessToken   string
	phoneNumberID string
	graphAPIBase  string
	httpClient    *http.Client
	maxElapsed    time.Duration
}

// NewClient creates a Cloud API client for one business phone number.
func NewClient(accessToken, phoneNumberID string) *Client {
	return &Client{
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		graphAPIBase:  defaultGraphAPIBase,
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
		maxElapsed:    defaultMaxElapsed,
	}
}

// SetGraphAPIBase overrides the Graph API base URL (useful for testing).
func (c *Client) SetGraphAPIBase(base string) {
	c.graphAPIBase = base
}

// SendTextMessage sends a plain text message to a WhatsApp number.
func (c *Client) SendTextMessage(ctx context.Context, to, text string) (*SendResponse, error) {
	req := SendRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             SendText{Body: text},
	}

	var resp *SendResponse
	op := backoff.NewExponentialBackOff()
	op.MaxElapsedTime = c.maxElapsed

	err := backoff.Retry(func() error {
		var err error
		resp, err = c.send(ctx, req)
		return err
	}, backoff.WithContext(op, ctx))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("whatsapp: marshal send request: %w", err))
	}

	url := fmt.Sprintf("%s/%s/messages", c.graphAPIBase, c.phoneNumberID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("whatsapp: create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: send message: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: read response: %w", err)
	}

	var sendResp SendResponse
	if err := json.Unmarshal(respBody, &sendResp); err != nil && httpResp.StatusCode < 300 {
		return nil, backoff.Permanent(fmt.Errorf("whatsapp: decode response: %w", err))
	}

	switch {
	case httpResp.StatusCode >= 500:
		return nil, fmt.Errorf("whatsapp: server error %d", httpResp.StatusCode)
	case httpResp.StatusCode >= 400:
		msg := httpResp.Status
		if sendResp.Error != nil {
			msg = sendResp.Error.Message
		}
		return nil, backoff.Permanent(fmt.Errorf("whatsapp: permanent error: %s", msg))
	}
	return &sendResp, nil
}
