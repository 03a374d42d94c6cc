package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf/internal/domain"
)

func TestGetDashboard(t *testing.T) {
	dune := testBook(1, "Dune")
	dune.ReadingStatus = domain.StatusInProgress
	dune.Category = []string{"Sci-Fi"}
	emma := testBook(2, "Emma")
	emma.ReadingStatus = domain.StatusFinished
	ts := setupTestServer(t, dune, emma)

	resp := ts.api.Get("/api/v1/dashboard")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	dash := decode[DashboardResponse](t, resp)
	assert.Equal(t, 2, dash.Summary.TotalBooks)
	assert.Equal(t, 1, dash.Summary.ReadingBooks)
	assert.Equal(t, 1, dash.Summary.FinishedBooks)
	require.Len(t, dash.Summary.Reading, 1)
	assert.Equal(t, "Dune", dash.Summary.Reading[0].Title)
	assert.False(t, dash.IsError)
}

func TestGetDashboard_StaleFigures(t *testing.T) {
	ts := setupTestServer(t, testBook(1, "Dune"))
	require.Equal(t, http.StatusOK, ts.api.Get("/api/v1/dashboard").Code)
	ts.backend.SetDown(true)
	require.Error(t, ts.store.Revalidate(t.Context()))

	dash := decode[DashboardResponse](t, ts.api.Get("/api/v1/dashboard"))

	assert.Equal(t, 1, dash.Summary.TotalBooks)
	assert.True(t, dash.IsError)
	assert.NotEmpty(t, dash.Error)
}

func TestGetDashboard_Unavailable(t *testing.T) {
	ts := setupTestServer(t)
	ts.backend.SetDown(true)

	resp := ts.api.Get("/api/v1/dashboard")

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "LOAD_FAILED", decode[APIError](t, resp).Code)
}
