package httpclient

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPClient(t *testing.T) {
	t.Run("returns configured client", func(t *testing.T) {
		client := GetHTTPClient(nil)
		require.NotNil(t, client)
		assert.Nil(t, client.Logger)
		assert.NotNil(t, client.CheckRetry)
	})

	t.Run("adds default headers", func(t *testing.T) {
		var gotHeader atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeader.Store(r.Header.Get("X-Scanner"))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := GetHTTPClient(map[string]string{"X-Scanner": "complyscan"})
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "complyscan", gotHeader.Load())
	})

	t.Run("retries on 500", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := GetHTTPClient(nil)
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.GreaterOrEqual(t, calls.Load(), int32(2))
	})

	t.Run("does not retry on 404", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := GetHTTPClient(nil)
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestHeaderRoundTripper_NoNext(t *testing.T) {
	hrt := &HeaderRoundTripper{}
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	_, err = hrt.RoundTrip(req)
	assert.Error(t, err)
}
