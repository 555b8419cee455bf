package whatsapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendTextMessageRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.out"}]}`))
	}))
	defer srv.Close()

	c := NewClient("token", "pn-1")
	c.SetGraphAPIBase(srv.URL)
	c.maxElapsed = 5 * time.Second

	resp, err := c.SendTextMessage(context.Background(), "9715550001", "hello")
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.out", resp.Messages[0].ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendTextMessagePermanentOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid recipient","type":"OAuthException","code":100}}`))
	}))
	defer srv.Close()

	c := NewClient("token", "pn-1")
	c.SetGraphAPIBase(srv.URL)

	_, err := c.SendTextMessage(context.Background(), "bad", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestSendTextMessageSetsAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "/pn-1/messages", r.URL.Path)
		_, _ = w.Write([]byte(`{"messages":[{"id":"x"}]}`))
	}))
	defer srv.Close()

	c := NewClient("token", "pn-1")
	c.SetGraphAPIBase(srv.URL)

	_, err := c.SendTextMessage(context.Background(), "9715550001", "hi")
	require.NoError(t, err)
}
