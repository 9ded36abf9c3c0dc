package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clcollins/heroes/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestListAvailable(t *testing.T) {
	s := New(api.SampleIncidents(12), 0)
	h := s.Router()

	tests := []struct {
		target      string
		expectedIDs []int64
	}{
		{target: "/incidents/available?page=1", expectedIDs: []int64{1, 2, 3, 4, 5}},
		{target: "/incidents/available?page=3", expectedIDs: []int64{11, 12}},
		{target: "/incidents/available?page=4", expectedIDs: []int64{}},
		{target: "/incidents/available", expectedIDs: []int64{1, 2, 3, 4, 5}},
		{target: "/incidents/available?page=-2", expectedIDs: []int64{1, 2, 3, 4, 5}},
		{target: "/incidents/available?page=abc", expectedIDs: []int64{1, 2, 3, 4, 5}},
	}

	for _, test := range tests {
		t.Run(test.target, func(t *testing.T) {
			rec := get(t, h, test.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "12", rec.Header().Get(api.TotalCountHeader))
			assert.Equal(t, api.TotalCountHeader, rec.Header().Get("Access-Control-Expose-Headers"))
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var incidents []api.Incident
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &incidents))
			require.NotNil(t, incidents, "an empty page is [] rather than null")

			ids := make([]int64, 0, len(incidents))
			for _, i := range incidents {
				ids = append(ids, i.ID)
			}
			assert.Equal(t, test.expectedIDs, ids)
		})
	}

	assert.Equal(t, len(tests), s.Requests())
}

func TestFailPage(t *testing.T) {
	s := New(api.SampleIncidents(12), 5)
	h := s.Router()

	s.FailPage(2, http.StatusServiceUnavailable)

	assert.Equal(t, http.StatusOK, get(t, h, "/incidents/available?page=1").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/incidents/available?page=2").Code)

	s.FailPage(2, 0)
	assert.Equal(t, http.StatusOK, get(t, h, "/incidents/available?page=2").Code)
	assert.Equal(t, 3, s.Requests())
}

func TestGetIncident(t *testing.T) {
	h := New(api.SampleIncidents(3), 5).Router()

	tests := []struct {
		name           string
		target         string
		expectedStatus int
	}{
		{name: "existing incident", target: "/incidents/2", expectedStatus: http.StatusOK},
		{name: "unknown incident", target: "/incidents/99", expectedStatus: http.StatusNotFound},
		{name: "non-numeric id", target: "/incidents/abc", expectedStatus: http.StatusBadRequest},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := get(t, h, test.target)
			assert.Equal(t, test.expectedStatus, rec.Code)

			if test.expectedStatus == http.StatusOK {
				var incident api.Incident
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &incident))
				assert.Equal(t, int64(2), incident.ID)
				assert.NotEmpty(t, incident.Name)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	rec := get(t, New(nil, 0).Router(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestClientAgainstFakeServer(t *testing.T) {
	ts := httptest.NewServer(New(api.SampleIncidents(7), 5).Router())
	defer ts.Close()

	c, err := api.NewClient(api.Config{BaseURL: ts.URL})
	require.NoError(t, err)

	p, err := c.ListAvailableIncidentsWithContext(testContext(t), 2)
	require.NoError(t, err)
	assert.Len(t, p.Incidents, 2)
	assert.True(t, p.HasTotal)
	assert.Equal(t, 7, p.TotalCount)
}
