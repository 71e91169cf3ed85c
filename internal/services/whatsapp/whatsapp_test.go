package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorillago3318/portal/internal/config"
)

func TestSendTextPostsCloudAPIPayload(t *testing.T) {
	var captured struct {
		path    string
		auth    string
		payload map[string]interface{}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(config.WhatsAppConfig{
		PhoneNumberID: "12345",
		AccessToken:   "test-token",
		APIBaseURL:    server.URL,
	})

	err := client.SendText(context.Background(), "60123456789", "hello there")
	require.NoError(t, err)

	assert.Equal(t, "/12345/messages", captured.path)
	assert.Equal(t, "Bearer test-token", captured.auth)
	assert.Equal(t, "whatsapp", captured.payload["messaging_product"])
	assert.Equal(t, "60123456789", captured.payload["to"])
	assert.Equal(t, "text", captured.payload["type"])

	text, ok := captured.payload["text"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "hello there", text["body"])
}

func TestSendTextReturnsErrorOnAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid token"}}`))
	}))
	defer server.Close()

	client := NewClient(config.WhatsAppConfig{
		PhoneNumberID: "12345",
		AccessToken:   "bad-token",
		APIBaseURL:    server.URL,
	})

	err := client.SendText(context.Background(), "60123456789", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSendTextSkipsWhenUnconfigured(t *testing.T) {
	client := NewClient(config.WhatsAppConfig{})

	err := client.SendText(context.Background(), "60123456789", "hello")
	assert.NoError(t, err, "unconfigured client must be a no-op, not a failure")
}
