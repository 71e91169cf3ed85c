package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorillago3318/portal/internal/config"
)

// Client sends text messages through the WhatsApp Cloud API.
type Client struct {
	phoneNumberID string
	accessToken   string
	baseURL       string
	httpClient    *http.Client
}

// NewClient creates a WhatsApp client from config
func NewClient(cfg config.WhatsAppConfig) *Client {
	return &Client{
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		baseURL:       cfg.APIBaseURL,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether credentials are present. Messages are skipped
// with a log line when they are not, so local environments work without a
// Meta app.
func (c *Client) Configured() bool {
	return c.phoneNumberID != "" && c.accessToken != ""
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// SendText sends a plain text message to the given phone number
func (c *Client) SendText(ctx context.Context, to, body string) error {
	if !c.Configured() {
		log.Printf("WhatsApp not configured, skipping message to %s", to)
		return nil
	}

	msg := textMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
	}
	msg.Text.Body = body

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal whatsapp message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp API returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
