package cmd

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRouter(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{name: "metrics", path: "/metrics", expectedStatus: http.StatusOK, expectedBody: "go_goroutines"},
		{name: "health", path: "/healthz", expectedStatus: http.StatusOK, expectedBody: "ok"},
		{name: "unknown", path: "/incidents", expectedStatus: http.StatusNotFound},
	}

	srv := httptest.NewServer(metricsRouter())
	defer srv.Close()

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + test.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, test.expectedStatus, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), test.expectedBody)
		})
	}
}

func TestStartMetricsServer(t *testing.T) {
	t.Run("disabled without an address", func(t *testing.T) {
		stop, err := startMetricsServer("")
		require.NoError(t, err)
		assert.NoError(t, stop(testContext(t)))
	})

	t.Run("serves until stopped", func(t *testing.T) {
		stop, err := startMetricsServer("127.0.0.1:0")
		require.NoError(t, err)
		assert.NoError(t, stop(testContext(t)))
	})

	t.Run("bad address", func(t *testing.T) {
		_, err := startMetricsServer("not an address")
		assert.Error(t, err)
	})
}
