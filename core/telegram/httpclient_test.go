package telegram

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func okResponse() *http.Response {
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}
}

func TestRetryTransportRetriesDialErrors(t *testing.T) {
	calls := 0
	var bodies []string
	rt := &retryTransport{maxRetries: 2, backoff: time.Millisecond, base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if calls == 1 {
			return nil, &net.OpError{Op: "dial", Err: errors.New("connection refused")}
		}
		return okResponse(), nil
	})}

	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendMessage", strings.NewReader("text=hi"))
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"text=hi", "text=hi"}, bodies)
}

func TestRetryTransportGivesUpOnPermanentErrors(t *testing.T) {
	calls := 0
	rt := &retryTransport{maxRetries: 3, backoff: time.Millisecond, base: roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("x509: certificate signed by unknown authority")
	})}
	req, _ := http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	_, err := rt.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryTransportStopsAfterMaxRetries(t *testing.T) {
	calls := 0
	rt := &retryTransport{maxRetries: 2, backoff: time.Millisecond, base: roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return nil, &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	})}
	req, _ := http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getMe", nil)
	_, err := rt.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
