// internal/api/server.go

// Package api exposes the routing engine to the surrounding inventory
// service: item intake + routing, explicit re-routes, and the channel
// registry for UI consumers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"

	stderrors "marketplace-routing/internal/common/errors"
	"marketplace-routing/internal/common/logger"
	"marketplace-routing/pkg/channels"
)

// Server wires the HTTP handlers.
type Server struct {
	handlers *Handlers
	registry *channels.ChannelRegistry
	logger   logger.Logger
	schema   *gojsonschema.Schema
}

// NewServer builds the server. registry may be nil when the channel
// listing endpoint is not needed (tests).
func NewServer(h *Handlers, registry *channels.ChannelRegistry, log logger.Logger) (*Server, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(intakeSchema))
	if err != nil {
		return nil, fmt.Errorf("compile intake schema: %w", err)
	}
	return &Server{
		handlers: h,
		registry: registry,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
		schema:   schema,
	}, nil
}

// Mux returns the fully-routed handler.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/items/route", s.handlers.RouteItem(s.schema))
	mux.HandleFunc("POST /api/v1/items/{id}/reroute", s.handlers.RerouteItem)
	mux.HandleFunc("GET /api/v1/channels", s.listChannels)
	mux.HandleFunc("GET /healthz", s.health)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)

	return mux
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listChannels(w http.ResponseWriter, _ *http.Request) {
	if s.registry == nil {
		s.logger.Debug("channel registry not loaded", nil)
		writeJSON(w, http.StatusOK, map[string]interface{}{"channels": []string{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"channels": s.registry.Channels})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Code: string(stderrors.ErrCodeInternal), Message: err.Error()}

	if stdErr, ok := err.(*stderrors.StandardError); ok {
		body = errorBody{
			Code:      string(stdErr.Code),
			Message:   stdErr.Message,
			Details:   stdErr.Details,
			Retryable: stdErr.Retryable,
		}
		switch stdErr.Code {
		case stderrors.ErrCodeItemValidationFailed, stderrors.ErrCodeInvalidAttributeValue:
			status = http.StatusBadRequest
		case stderrors.ErrCodeItemNotFound:
			status = http.StatusNotFound
		case stderrors.ErrCodeQuotaLedgerUnavailable:
			// Fail closed: the caller retries rather than bypassing quota.
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, map[string]errorBody{"error": body})
}
