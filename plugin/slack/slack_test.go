package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientPost(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient("")
	message := InChannel("Today's WFH/OOO statuses:").WithAttachment("Ann - OOO\nBob - WFH")
	require.NoError(t, client.Post(context.Background(), srv.URL, message))

	assert.Equal(t, ResponseTypeInChannel, got.ResponseType)
	assert.Equal(t, "Today's WFH/OOO statuses:", got.Text)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "Ann - OOO\nBob - WFH", got.Attachments[0].Text)
}

func TestClientPostRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient("")
	err := client.Post(context.Background(), srv.URL, Ephemeral("oops"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_payload")
}

func TestClientPostWebhook(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Run("unconfigured", func(t *testing.T) {
		client := NewClient("")
		require.Error(t, client.PostWebhook(context.Background(), InChannel("hi")))
	})

	t.Run("configured", func(t *testing.T) {
		client := NewClient(srv.URL)
		require.NoError(t, client.PostWebhook(context.Background(), InChannel("hi")))
		assert.Equal(t, 1, hits)
	})
}
