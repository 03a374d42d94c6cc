package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

// handleHealthCheck never triggers a load; it reports what the store holds.
func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"books":  s.checkBooks(),
		"search": s.checkSearch(),
		"sse":    s.checkSSEManager(),
	}

	overall := statusHealthy
	for _, c := range components {
		switch c.Status {
		case statusUnhealthy:
			overall = statusUnhealthy
		case statusDegraded:
			if overall == statusHealthy {
				overall = statusDegraded
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkBooks reports the last load outcome. A failed load with stale data
// still being served is degraded, not unhealthy.
func (s *Server) checkBooks() ComponentHealth {
	if s.services == nil || s.services.Books == nil {
		return ComponentHealth{Status: statusUnhealthy, Message: "book store not configured"}
	}

	snap := s.services.Books.Snapshot()
	switch {
	case snap.IsError && snap.Loaded:
		return ComponentHealth{Status: statusDegraded, Message: "serving stale data: " + snap.Err.Error()}
	case snap.IsError:
		return ComponentHealth{Status: statusUnhealthy, Message: snap.Err.Error()}
	case snap.IsLoading:
		return ComponentHealth{Status: statusHealthy, Message: "not loaded yet"}
	default:
		return ComponentHealth{Status: statusHealthy, Message: pluralize(len(snap.Books), "book")}
	}
}

func (s *Server) checkSearch() ComponentHealth {
	if s.services == nil || s.services.Search == nil {
		return ComponentHealth{Status: statusDegraded, Message: "search index not configured"}
	}
	return ComponentHealth{Status: statusHealthy}
}

func (s *Server) checkSSEManager() ComponentHealth {
	if s.services == nil || s.services.Events == nil {
		return ComponentHealth{Status: statusDegraded, Message: "SSE manager not configured"}
	}
	return ComponentHealth{
		Status:  statusHealthy,
		Message: pluralize(s.services.Events.ClientCount(), "connected client"),
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
