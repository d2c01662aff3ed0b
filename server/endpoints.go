package server

import (
	"github.com/kbukum/multimongo/condition"
	"github.com/kbukum/multimongo/di"
	"github.com/kbukum/multimongo/server/endpoint"
)

// Sources feeds the operational endpoints.
type Sources struct {
	Service   string
	Version   string
	Health    endpoint.HealthChecker
	Container di.Container
	Report    func() *condition.Report
}

// RegisterEndpoints mounts the operational routes. Routes whose source is
// missing are skipped.
func (s *Server) RegisterEndpoints(src Sources) {
	r := s.engine
	r.GET("/health", endpoint.Health(src.Service, src.Version, src.Health))
	r.GET("/alive", endpoint.Liveness(src.Service))
	r.GET("/ready", endpoint.Readiness(src.Service, src.Health))
	r.GET("/version", endpoint.Version(src.Service))
	if src.Report != nil {
		r.GET("/conditions", endpoint.Conditions(src.Report))
	}
	if src.Container != nil {
		r.GET("/beans", endpoint.Beans(src.Container))
		r.GET("/mongo/connections", endpoint.Connections(src.Container))
	}
}
