package fraud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkRequest() CheckRequest {
	return CheckRequest{
		Sender:   "0x1111111111111111111111111111111111111111",
		Receiver: "0x2222222222222222222222222222222222222222",
		Amount:   "1.5",
		Token:    "ETH",
	}
}

func TestCheckApproved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1.5", body["amount"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"prediction":             "legit",
			"prediction_probability": 0.12,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	verdict, err := c.Check(context.Background(), checkRequest())
	require.NoError(t, err)

	assert.False(t, verdict.Rejected)
	assert.Equal(t, "legit", verdict.Label)
	assert.NotEmpty(t, verdict.Raw)
}

func TestCheckRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"prediction": "fraudulent"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	verdict, err := c.Check(context.Background(), checkRequest())
	require.NoError(t, err)
	assert.True(t, verdict.Rejected)
}

// Older revisions of the service keyed the verdict on "status".
func TestCheckStatusAlias(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "fraudulent"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	verdict, err := c.Check(context.Background(), checkRequest())
	require.NoError(t, err)
	assert.True(t, verdict.Rejected)
}

// The service is untrusted: anything short of a well-formed verdict is an
// error, never an implicit approval.
func TestCheckFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "model unavailable"})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "no verdict field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]float64{"prediction_probability": 0.5})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, 5*time.Second)
			_, err := c.Check(context.Background(), checkRequest())
			assert.ErrorIs(t, err, ErrServiceUnavailable)
		})
	}
}

func TestCheckUnreachableService(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	_, err := c.Check(context.Background(), checkRequest())
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestCheckTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, 50*time.Millisecond)
	_, err := c.Check(context.Background(), checkRequest())
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestReportFraud(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logFraud", r.URL.Path)
		calls.Add(1)

		var entry AuditEntry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&entry))
		assert.Equal(t, "100", entry.Amount)

		json.NewEncoder(w).Encode(map[string]string{"status": "logged"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	err := c.ReportFraud(context.Background(), AuditEntry{
		Sender:   "0x1111111111111111111111111111111111111111",
		Receiver: "0x2222222222222222222222222222222222222222",
		Amount:   "100",
		Token:    "MTK",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestReportFraudFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	err := c.ReportFraud(context.Background(), AuditEntry{})
	assert.Error(t, err)
}
