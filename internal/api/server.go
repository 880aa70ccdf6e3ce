package api

import (
	"context"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/algoparity/parity-go/internal/stream"
	"github.com/algoparity/parity-go/internal/temporal/querier"
)

// Server is the HTTP API server for the release pipeline.
type Server struct {
	querier querier.PipelineQuerier
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a Server with the given querier, CORS origins, and OIDC settings.
// When auth is enabled the OIDC provider is resolved via discovery at startup.
func New(q querier.PipelineQuerier, corsOrigins []string, authCfg OIDCConfig) (*Server, error) {
	s := &Server{querier: q, mux: http.NewServeMux()}
	s.routes()

	var handler http.Handler = s.mux
	if authCfg.Enabled {
		provider, err := oidc.NewProvider(context.Background(), authCfg.IssuerURL)
		if err != nil {
			return nil, err
		}
		handler = oidcAuth(provider, authCfg.Audience)(handler)
	}
	s.handler = requestID(logging(cors(corsOrigins, handler)))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/pipelines", s.handleListPipelines)
	s.mux.HandleFunc("POST /api/v1/pipelines", s.handleStartPipeline)
	s.mux.HandleFunc("GET /api/v1/pipelines/{id}", s.handleGetPipeline)
	s.mux.HandleFunc("GET /api/v1/pipelines/{id}/report", s.handleGetReport)
	s.mux.HandleFunc("GET /api/v1/pipelines/{id}/stream", stream.StreamHandler(s.querier, stream.DefaultConfig()))
}
