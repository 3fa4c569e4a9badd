package acquisition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
)

func testConfig(serverURL string) config.AcquisitionConfig {
	cfg := config.Default().Acquisition
	cfg.PriceURL = serverURL
	cfg.TweetURL = serverURL
	cfg.RequestsPerSecond = 0
	cfg.MaxRetries = 2
	cfg.RetryBackoff = time.Millisecond
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestClientGet(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantErr   bool
	}{
		{"success", []int{200}, 1, false},
		{"retries server errors", []int{503, 500, 200}, 3, false},
		{"retries rate limiting", []int{429, 200}, 2, false},
		{"gives up after max retries", []int{503, 503, 503, 503}, 3, true},
		{"client errors are not retried", []int{404, 200}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				w.WriteHeader(tt.statuses[n-1])
				_, _ = w.Write([]byte("payload"))
			}))
			defer server.Close()

			client := NewClient("test", testConfig(server.URL))
			body, err := client.Get(context.Background(), server.URL, nil)

			assert.Equal(t, tt.wantCalls, calls.Load())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNetwork))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "payload", string(body))
		})
	}
}

func TestClientGet_SendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer secret")
	_, err := NewClient("test", testConfig(server.URL)).Get(context.Background(), server.URL, header)
	require.NoError(t, err)
}

func TestClientGet_CancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryBackoff = time.Hour
	client := NewClient("test", cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, server.URL, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientBackOffSchedule(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.RetryBackoff = 100 * time.Millisecond
	schedule := NewClient("test", cfg).newBackOff()

	// each wait is the doubled interval +-50%
	bounds := [][2]time.Duration{
		{50 * time.Millisecond, 150 * time.Millisecond},
		{100 * time.Millisecond, 300 * time.Millisecond},
		{200 * time.Millisecond, 600 * time.Millisecond},
	}
	for i, b := range bounds {
		wait := schedule.NextBackOff()
		assert.GreaterOrEqual(t, wait, b[0], "retry %d", i+1)
		assert.LessOrEqual(t, wait, b[1], "retry %d", i+1)
	}
}

func TestClientBackOffSchedule_LongInitialInterval(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.RetryBackoff = time.Hour
	wait := NewClient("test", cfg).newBackOff().NextBackOff()
	assert.GreaterOrEqual(t, wait, 30*time.Minute)
}

func TestStatusErrorIsRetryable(t *testing.T) {
	assert.True(t, (&StatusError{StatusCode: 429}).IsRetryable())
	assert.True(t, (&StatusError{StatusCode: 502}).IsRetryable())
	assert.False(t, (&StatusError{StatusCode: 401}).IsRetryable())
}
