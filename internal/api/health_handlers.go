package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/connectapp/connect-server/internal/taxonomy"
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
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
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

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	dbHealth := s.checkDatabase(ctx)
	components["database"] = dbHealth
	if dbHealth.Status != "healthy" {
		overall = "unhealthy"
	}

	taxHealth := s.checkTaxonomy()
	components["taxonomy"] = taxHealth
	if taxHealth.Status != "healthy" && overall == "healthy" {
		overall = "degraded"
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkDatabase verifies the store answers a ping.
func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	// Handle nil store (e.g., in tests)
	if s.store == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "database not configured",
		}
	}

	start := time.Now()
	err := s.store.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "database ping failed",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkTaxonomy reports how many domains the active taxonomy has.
func (s *Server) checkTaxonomy() ComponentHealth {
	if s.services == nil || s.services.Taxonomy == nil || s.services.Taxonomy.Current() == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "taxonomy not configured",
		}
	}

	n := len(s.services.Taxonomy.Current().Names())
	return ComponentHealth{Status: "healthy", Message: strconv.Itoa(n) + " domains"}
}

func (s *Server) registerTaxonomyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTaxonomy",
		Method:      http.MethodGet,
		Path:        "/api/v1/taxonomy",
		Summary:     "Get taxonomy",
		Description: "Returns the active domain taxonomy in classification order. " +
			"Tags matching no keyword fall into the \"other\" bucket.",
		Tags: []string{"Taxonomy"},
	}, s.handleGetTaxonomy)
}

// TaxonomyResponse describes the active taxonomy.
type TaxonomyResponse struct {
	Domains     []taxonomy.Domain `json:"domains" doc:"Domains in classification order; the first matching domain wins"`
	BucketOrder []string          `json:"bucket_order" doc:"Order used to pick a primary domain, domains then other"`
}

// TaxonomyOutput wraps the taxonomy for Huma.
type TaxonomyOutput struct {
	Body TaxonomyResponse
}

func (s *Server) handleGetTaxonomy(_ context.Context, _ *struct{}) (*TaxonomyOutput, error) {
	tax := s.services.Taxonomy.Current()
	return &TaxonomyOutput{Body: TaxonomyResponse{
		Domains:     tax.Domains(),
		BucketOrder: tax.BucketOrder(),
	}}, nil
}
