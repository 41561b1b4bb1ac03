package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	body := []byte(`{"type":"scrape.completed"}`)
	sig := Sign("s3cret", body)

	assert.True(t, Verify("s3cret", body, sig))
	assert.False(t, Verify("other", body, sig))
	assert.False(t, Verify("s3cret", []byte("tampered"), sig))
	assert.False(t, Verify("s3cret", body, sig[len("sha256="):]))
}

func TestDeliver(t *testing.T) {
	var got struct {
		sig   string
		event Event
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.sig = r.Header.Get(SignatureHeader)
		assert.True(t, Verify("key", body, got.sig))
		assert.NoError(t, json.Unmarshal(body, &got.event))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ev := NewEvent(EventScrapeCompleted, "job-1", map[string]int{"total": 12})
	require.NoError(t, New().Deliver(context.Background(), srv.URL, "key", ev))

	assert.Equal(t, EventScrapeCompleted, got.event.Type)
	assert.Equal(t, "job-1", got.event.JobID)
	assert.NotZero(t, got.event.Timestamp)
}

func TestDeliver_NoSecretNoSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(SignatureHeader))
	}))
	defer srv.Close()

	require.NoError(t, New().Deliver(context.Background(), srv.URL, "", NewEvent(EventScrapeFailed, "j", nil)))
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New().Deliver(context.Background(), srv.URL, "", NewEvent(EventScrapeFailed, "j", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestDeliverAsync_Retries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	n := New()
	n.Delays = []time.Duration{0, time.Millisecond, time.Millisecond, time.Millisecond}

	select {
	case <-n.DeliverAsync(srv.URL, "", NewEvent(EventScrapeCompleted, "j", nil)):
	case <-time.After(5 * time.Second):
		t.Fatal("delivery did not finish")
	}
	assert.Equal(t, int32(3), calls.Load())
}
