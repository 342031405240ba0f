package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"studio/internal/address"
	"studio/internal/errs"
	"studio/internal/index"
	"studio/internal/master"
	"studio/internal/models"
	"studio/internal/storage"
)

// handleIndex returns basic service information
// GET / - Returns service info and available endpoints
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"service":     "studio",
		"version":     "1.0.0",
		"description": "Tiered contract factory engine",
		"master":      s.studio.Master.Address().String(),
		"endpoints": map[string]string{
			"GET /":                                           "This page - Service information",
			"GET /health":                                     "Health check endpoint",
			"GET /metrics":                                    "Prometheus metrics for monitoring",
			"GET /admin":                                      "Master admin state",
			"GET /factories":                                  "Factories deployed by the master",
			"GET /factories/{role}":                           "One factory (token, nft or governance)",
			"GET /factories/{role}/admin":                     "Factory admin state",
			"GET /factories/{role}/wasm":                      "Kind to code hash registry",
			"GET /factories/{role}/count":                     "Deployment counts",
			"GET /factories/{role}/deployments":               "Deployments (supports ?cursor=, ?limit=)",
			"GET /factories/{role}/deployments/kind/{kind}":   "Deployments of one kind",
			"GET /factories/{role}/deployments/principal/{a}": "Deployments administered or owned by an address",
			"GET /contracts/{address}":                        "Mirrored deployment record",
			"GET /events":                                     "Mirrored events (supports ?contract=, ?type=, ?limit=, ?offset=)",
		},
	}
	s.sendJSON(w, http.StatusOK, info)
}

// handleHealth returns health status
// GET /health - Health check for monitoring systems
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	if err := s.repository.Ping(r.Context()); err != nil {
		slog.Warn("Storage ping failed", "error", err)
		status, code = "degraded", http.StatusServiceUnavailable
	}

	s.sendJSON(w, code, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"service":   "studio",
	})
}

// handleMasterAdmin returns the master's admin state
// GET /admin
func (s *Server) handleMasterAdmin(w http.ResponseWriter, r *http.Request) {
	m := s.studio.Master
	resp := models.AdminResponse{
		Contract: m.Address().String(),
		Admin:    m.Admin().String(),
		Paused:   m.Paused(),
	}
	if p, ok := m.PendingAdmin(); ok {
		resp.Pending = p.String()
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// handleListFactories lists the master's directory in role order
// GET /factories
func (s *Server) handleListFactories(w http.ResponseWriter, r *http.Request) {
	deployed := s.studio.Master.DeployedFactories()
	resp := models.FactoryListResponse{
		Master:    s.studio.Master.Address().String(),
		Factories: make([]models.FactoryResponse, 0, len(deployed)),
		Total:     len(deployed),
	}
	for _, info := range deployed {
		v, err := s.factory(info.Role)
		if err != nil {
			slog.Error("Factory in directory is unreachable", "role", info.Role, "address", info.Address, "error", err)
		}
		resp.Factories = append(resp.Factories, factoryResponse(info, v))
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// handleGetFactory returns one factory
// GET /factories/{role}
func (s *Server) handleGetFactory(w http.ResponseWriter, r *http.Request) {
	info, v, ok := s.resolve(w, r)
	if !ok {
		return
	}
	s.sendJSON(w, http.StatusOK, factoryResponse(info, v))
}

// GET /factories/{role}/admin
func (s *Server) handleFactoryAdmin(w http.ResponseWriter, r *http.Request) {
	_, v, ok := s.resolve(w, r)
	if !ok {
		return
	}
	resp := models.AdminResponse{
		Contract: v.Address().String(),
		Admin:    v.Admin().String(),
		Paused:   v.Paused(),
	}
	if p, ok := v.PendingAdmin(); ok {
		resp.Pending = p.String()
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// GET /factories/{role}/wasm
func (s *Server) handleFactoryWasm(w http.ResponseWriter, r *http.Request) {
	_, v, ok := s.resolve(w, r)
	if !ok {
		return
	}
	s.sendJSON(w, http.StatusOK, models.WasmResponse{
		Factory: v.Address().String(),
		Entries: v.wasm(),
	})
}

// GET /factories/{role}/count
func (s *Server) handleFactoryCount(w http.ResponseWriter, r *http.Request) {
	_, v, ok := s.resolve(w, r)
	if !ok {
		return
	}
	s.sendJSON(w, http.StatusOK, models.CountResponse{
		Factory: v.Address().String(),
		Total:   v.Count(),
		ByKind:  v.countByKind(),
	})
}

// handleListDeployments pages through a factory's deployments
// GET /factories/{role}/deployments?cursor=...&limit=50
func (s *Server) handleListDeployments(w http.ResponseWriter, r *http.Request) {
	_, v, ok := s.resolve(w, r)
	if !ok {
		return
	}
	cursor, limit := pagination(r)
	resp, err := v.deployed(cursor, limit)
	if err != nil {
		s.sendError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// GET /factories/{role}/deployments/kind/{kind}
func (s *Server) handleDeploymentsByKind(w http.ResponseWriter, r *http.Request) {
	_, v, ok := s.resolve(w, r)
	if !ok {
		return
	}
	cursor, limit := pagination(r)
	resp, err := v.byKind(chi.URLParam(r, "kind"), cursor, limit)
	if err != nil {
		s.sendError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// GET /factories/{role}/deployments/principal/{address}
func (s *Server) handleDeploymentsByPrincipal(w http.ResponseWriter, r *http.Request) {
	_, v, ok := s.resolve(w, r)
	if !ok {
		return
	}
	p, err := address.Parse(chi.URLParam(r, "address"))
	if err != nil {
		s.sendError(w, errs.InvalidField("address", "%v", err))
		return
	}
	cursor, limit := pagination(r)
	resp, err := v.byPrincipal(p, cursor, limit)
	if err != nil {
		s.sendError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// handleGetContract returns the mirrored record of a deployment
// GET /contracts/{address}
func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	contract, err := s.repository.GetDeployment(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		s.sendError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, contract)
}

// handleListEvents lists mirrored events
// GET /events?contract=C...&type=deployed&limit=50&offset=0
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.EventFilter{
		ContractID: query.Get("contract"),
		EventType:  query.Get("type"),
		Limit:      50,
	}
	if parsed, err := strconv.Atoi(query.Get("limit")); err == nil && parsed > 0 && parsed <= 200 {
		filter.Limit = parsed
	}
	if parsed, err := strconv.Atoi(query.Get("offset")); err == nil && parsed >= 0 {
		filter.Offset = parsed
	}

	list, err := s.repository.ListEvents(r.Context(), filter)
	if err != nil {
		s.sendError(w, err)
		return
	}
	if list == nil {
		list = []models.ContractEvent{}
	}
	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"events": list,
		"total":  len(list),
	})
}

// resolve reads {role} and returns the directory entry and live factory.
// It writes the error response itself and reports false on failure.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (master.FactoryInfo, factoryView, bool) {
	role, err := master.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		s.sendError(w, errs.InvalidField("role", "%v", err))
		return master.FactoryInfo{}, nil, false
	}
	info, ok := s.studio.Master.Factory(role)
	if !ok {
		s.sendError(w, errs.ErrRoleNotFilled)
		return master.FactoryInfo{}, nil, false
	}
	v, err := s.factory(role)
	if err != nil {
		s.sendError(w, err)
		return master.FactoryInfo{}, nil, false
	}
	return info, v, true
}

// pagination reads ?cursor= and ?limit=. A missing or malformed limit is
// left at zero for the index to default.
func pagination(r *http.Request) (string, int) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	return query.Get("cursor"), limit
}

func (s *Server) sendJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// sendError maps err onto a status and writes an ErrorResponse.
func (s *Server) sendError(w http.ResponseWriter, err error) {
	code := errs.HTTPStatus(err)
	switch {
	case errors.Is(err, index.ErrInvalidCursor):
		code = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		code = http.StatusNotFound
	}
	if code >= http.StatusInternalServerError {
		slog.Error("API request failed", "error", err)
	}

	s.sendJSON(w, code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: err.Error(),
		Code:    errs.Code(err),
	})
}
