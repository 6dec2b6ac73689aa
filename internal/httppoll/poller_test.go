package httppoll

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// statusServer answers the scripted status sequence, repeating the last
// entry once the script is exhausted.
func statusServer(t *testing.T, statuses []int, body string) *httptest.Server {
	t.Helper()
	var n atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		i := int(n.Add(1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		w.WriteHeader(statuses[i])
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testClient returns a poller with instant fake sleeps and a controllable
// clock that advances by one interval per sleep.
func testClient(interval time.Duration) (*Client, *int) {
	sleeps := 0
	now := time.Now()
	c := NewClient(nil)
	c.sleep = func(time.Duration) {
		sleeps++
		now = now.Add(interval)
	}
	c.now = func() time.Time { return now }
	return c, &sleeps
}

func TestPoll_DoneAfterTwoAccepted(t *testing.T) {
	t.Parallel()

	srv := statusServer(t, []int{202, 202, 200}, "all done")
	c, sleeps := testClient(time.Second)

	body, err := c.Poll(context.Background(), srv.URL, nil, time.Minute, time.Second)
	require.NoError(t, err)
	require.Equal(t, "all done", body)
	require.Equal(t, 2, *sleeps)
}

func TestPoll_TimeoutDistinctFromStatusFailure(t *testing.T) {
	t.Parallel()

	srv := statusServer(t, []int{202}, "still running")
	c, _ := testClient(time.Second)

	_, err := c.Poll(context.Background(), srv.URL, nil, 3*time.Second, time.Second)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTimeout)

	var statusErr *StatusError
	require.False(t, errors.As(err, &statusErr))
}

func TestPoll_NonTerminalStatusFailsImmediately(t *testing.T) {
	t.Parallel()

	srv := statusServer(t, []int{500}, "exploded")
	c, sleeps := testClient(time.Second)

	_, err := c.Poll(context.Background(), srv.URL, nil, time.Minute, time.Second)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 500, statusErr.Code)
	require.Equal(t, "exploded", statusErr.Body)
	require.Zero(t, *sleeps)
	require.NotErrorIs(t, err, ErrTimeout)
}

func TestPoll_TransportErrorFailsImmediately(t *testing.T) {
	t.Parallel()

	c, sleeps := testClient(time.Second)
	_, err := c.Poll(context.Background(), "http://127.0.0.1:1/nothing-here", nil, time.Minute, time.Second)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTimeout)
	require.Zero(t, *sleeps)
}

func TestPoll_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := statusServer(t, []int{202}, "still running")
	c, _ := testClient(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Poll(ctx, srv.URL, nil, time.Minute, time.Second)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPoll_SendsHeaders(t *testing.T) {
	t.Parallel()

	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("X-Correlation"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c, _ := testClient(time.Second)
	headers := http.Header{}
	headers.Set("X-Correlation", "run-42")

	_, err := c.Poll(context.Background(), srv.URL, headers, time.Minute, time.Second)
	require.NoError(t, err)
	require.Equal(t, "run-42", got.Load())
}
