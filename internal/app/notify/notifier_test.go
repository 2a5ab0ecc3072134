package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendSelectionLink(t *testing.T) {
	var received linkMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	n := NewGatewayNotifier(server.URL)
	err := n.SendSelectionLink(context.Background(), "buyer@example.com", "email", "http://localhost:8080/selection?token=abc")
	require.NoError(t, err)

	assert.Equal(t, "buyer@example.com", received.Destination)
	assert.Equal(t, "email", received.Channel)
	assert.Equal(t, "http://localhost:8080/selection?token=abc", received.Link)
	assert.NotEmpty(t, received.Message)
}

func TestSendSelectionLinkGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := NewGatewayNotifier(server.URL)
	err := n.SendSelectionLink(context.Background(), "buyer@example.com", "email", "http://localhost:8080/selection?token=abc")
	assert.Error(t, err)
}
