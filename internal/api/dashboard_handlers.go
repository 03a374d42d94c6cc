package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookshelf/internal/dashboard"
)

func (s *Server) registerDashboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard",
		Summary:     "Dashboard",
		Description: "Returns totals, the most recently added books, books in progress and tag counts",
		Tags:        []string{"Dashboard"},
	}, s.handleGetDashboard)
}

// DashboardResponse is the overview plus the load state it was computed from.
type DashboardResponse struct {
	Summary dashboard.Summary `json:"summary"`
	IsError bool              `json:"isError" doc:"The most recent load failed and the figures may be stale"`
	Error   string            `json:"error,omitempty"`
}

// DashboardOutput wraps the dashboard for Huma.
type DashboardOutput struct {
	Body DashboardResponse
}

func (s *Server) handleGetDashboard(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Loaded && snap.IsError {
		return nil, snap.Err
	}

	resp := DashboardResponse{
		Summary: dashboard.Summarize(snap.Books),
		IsError: snap.IsError,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	return &DashboardOutput{Body: resp}, nil
}
