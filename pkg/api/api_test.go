package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clcollins/heroes/pkg/api"
	"github.com/clcollins/heroes/pkg/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string) *api.Client {
	t.Helper()
	c, err := api.NewClient(api.Config{BaseURL: url, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		baseURL   string
		expectErr bool
	}{
		{name: "http base URL", baseURL: "http://localhost:3333", expectErr: false},
		{name: "https base URL with path", baseURL: "https://example.com/api/", expectErr: false},
		{name: "empty base URL", baseURL: "", expectErr: true},
		{name: "base URL without scheme", baseURL: "localhost:3333", expectErr: true},
		{name: "unsupported scheme", baseURL: "ftp://example.com", expectErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := api.NewClient(api.Config{BaseURL: test.baseURL})
			if test.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListAvailableIncidentsPages(t *testing.T) {
	fake := fakeapi.New(api.SampleIncidents(12), 5)
	srv := httptest.NewServer(fake.Router())
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	tests := []struct {
		page        int
		expectedLen int
		firstID     int64
	}{
		{page: 1, expectedLen: 5, firstID: 1},
		{page: 2, expectedLen: 5, firstID: 6},
		{page: 3, expectedLen: 2, firstID: 11},
		{page: 4, expectedLen: 0},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("page %d", test.page), func(t *testing.T) {
			p, err := c.ListAvailableIncidentsWithContext(context.Background(), test.page)
			require.NoError(t, err)
			assert.Equal(t, test.page, p.Number)
			assert.Len(t, p.Incidents, test.expectedLen)
			assert.True(t, p.HasTotal)
			assert.Equal(t, 12, p.TotalCount)
			if test.expectedLen > 0 {
				assert.Equal(t, test.firstID, p.Incidents[0].ID)
			}
		})
	}

	assert.Equal(t, 4, fake.Requests())
}

func TestListAvailableIncidentsRequest(t *testing.T) {
	var gotPath, gotPage, gotAgent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPage = r.URL.Query().Get("page")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("x-total-count", "1")
		_, _ = w.Write([]byte(`[{"id": 7, "name": "APAD", "title": "Cadelinha", "value": 120.5}]`))
	}))
	defer srv.Close()

	c, err := api.NewClient(api.Config{BaseURL: srv.URL + "/v1", UserAgent: "heroes-test"})
	require.NoError(t, err)

	p, err := c.ListAvailableIncidentsWithContext(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, "/v1/incidents/available", gotPath)
	assert.Equal(t, "3", gotPage)
	assert.Equal(t, "heroes-test", gotAgent)
	assert.Equal(t, []api.Incident{{ID: 7, Name: "APAD", Title: "Cadelinha", Value: 120.5}}, p.Incidents)
	assert.Equal(t, 1, p.TotalCount)
}

func TestListAvailableIncidentsErrors(t *testing.T) {
	tests := []struct {
		name         string
		handler      http.HandlerFunc
		expectedKind api.ErrorKind
		expectedCode int
	}{
		{
			name: "non-2xx status is a server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			expectedKind: api.KindServer,
			expectedCode: http.StatusInternalServerError,
		},
		{
			name: "not found is a server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expectedKind: api.KindServer,
			expectedCode: http.StatusNotFound,
		},
		{
			name: "object body is malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Total-Count", "3")
				_, _ = w.Write([]byte(`{"id": 1}`))
			},
			expectedKind: api.KindMalformed,
			expectedCode: http.StatusOK,
		},
		{
			name: "truncated body is malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[{"id": 1,`))
			},
			expectedKind: api.KindMalformed,
			expectedCode: http.StatusOK,
		},
		{
			name: "non-integer total count is malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Total-Count", "twelve")
				_, _ = w.Write([]byte(`[]`))
			},
			expectedKind: api.KindMalformed,
			expectedCode: http.StatusOK,
		},
		{
			name: "negative total count is malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Total-Count", "-1")
				_, _ = w.Write([]byte(`[]`))
			},
			expectedKind: api.KindMalformed,
			expectedCode: http.StatusOK,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv := httptest.NewServer(test.handler)
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			p, err := c.ListAvailableIncidentsWithContext(context.Background(), 2)
			assert.Nil(t, p)

			var apiErr *api.Error
			require.True(t, errors.As(err, &apiErr), "expected *api.Error, got %v", err)
			assert.Equal(t, test.expectedKind, apiErr.Kind)
			assert.Equal(t, test.expectedCode, apiErr.StatusCode)
			assert.Equal(t, 2, apiErr.Page)
		})
	}
}

func TestListAvailableIncidentsMissingTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	p, err := newTestClient(t, srv.URL).ListAvailableIncidentsWithContext(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, p.HasTotal)
	assert.Equal(t, 0, p.TotalCount)
	assert.NotNil(t, p.Incidents)
	assert.Empty(t, p.Incidents)
}

func TestListAvailableIncidentsNetworkErrors(t *testing.T) {
	t.Run("closed server is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := newTestClient(t, url).ListAvailableIncidentsWithContext(context.Background(), 1)
		assert.True(t, api.IsKind(err, api.KindNetwork))
	})

	t.Run("cancelled context is a network error wrapping the cancellation", func(t *testing.T) {
		srv := httptest.NewServer(fakeapi.New(api.SampleIncidents(3), 5).Router())
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestClient(t, srv.URL).ListAvailableIncidentsWithContext(ctx, 1)
		assert.True(t, api.IsKind(err, api.KindNetwork))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid page is rejected before any request", func(t *testing.T) {
		c := newTestClient(t, "http://127.0.0.1:1")
		_, err := c.ListAvailableIncidentsWithContext(context.Background(), 0)
		assert.Error(t, err)
		assert.Equal(t, api.ErrorKind(""), api.KindOf(err))
	})
}
