package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/recordgate/recordgate/pkg/backend"
	"github.com/recordgate/recordgate/pkg/engine"
	"github.com/recordgate/recordgate/pkg/message"
)

// Server holds the API server state.
type Server struct {
	service RecordService
	config  ServerConfig
	metrics *Metrics
	log     zerolog.Logger
}

// NewServer creates a new API server.
func NewServer(service RecordService, config ServerConfig, metrics *Metrics, log zerolog.Logger) *Server {
	return &Server{
		service: service,
		config:  config,
		metrics: metrics,
		log:     log,
	}
}

// handleHealth reports gateway liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleCreateRecord creates a single record on a layout. The whole request
// fails on any error.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	opts, req, ok := s.decodeRequest(w, r, false)
	if !ok {
		s.metrics.RecordOperation("create", false, time.Since(start))
		return
	}

	resp, err := s.service.Create(r.Context(), req, opts)
	if err != nil {
		s.metrics.RecordOperation("create", false, time.Since(start))
		s.sendOperationError(w, err)
		return
	}
	s.metrics.RecordOperation("create", true, time.Since(start))
	sendMessage(w, resp)
}

// handleGetRecord reads one record by literal id or "field=value" unique key.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := recordID(w, r)
	if !ok {
		s.metrics.RecordOperation("read", false, time.Since(start))
		return
	}
	opts, ok := s.options(w, r)
	if !ok {
		s.metrics.RecordOperation("read", false, time.Since(start))
		return
	}

	resp, err := s.service.Read(r.Context(), id, opts)
	if err != nil {
		s.metrics.RecordOperation("read", false, time.Since(start))
		s.sendOperationError(w, err)
		return
	}
	s.metrics.RecordOperation("read", true, time.Since(start))
	sendMessage(w, resp)
}

// handleUpdateRecord updates one record addressed by the URL identifier.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := recordID(w, r)
	if !ok {
		s.metrics.RecordOperation("update", false, time.Since(start))
		return
	}
	opts, req, ok := s.decodeRequest(w, r, false)
	if !ok {
		s.metrics.RecordOperation("update", false, time.Since(start))
		return
	}
	req.SetRecordID(req.RecordByIndex(0), id)

	resp, err := s.service.Update(r.Context(), req, opts)
	if err != nil {
		s.metrics.RecordOperation("update", false, time.Since(start))
		s.sendOperationError(w, err)
		return
	}
	s.metrics.RecordOperation("update", true, time.Since(start))
	sendMessage(w, resp)
}

// handleDeleteRecord deletes one record addressed by the URL identifier.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := recordID(w, r)
	if !ok {
		s.metrics.RecordOperation("delete", false, time.Since(start))
		return
	}
	opts, ok := s.options(w, r)
	if !ok {
		s.metrics.RecordOperation("delete", false, time.Since(start))
		return
	}

	req := message.New()
	req.AddRecord(message.NewRecordWithID(id))

	resp, err := s.service.Delete(r.Context(), req, opts)
	if err != nil {
		s.metrics.RecordOperation("delete", false, time.Since(start))
		s.sendOperationError(w, err)
		return
	}
	s.metrics.RecordOperation("delete", true, time.Since(start))
	sendMessage(w, resp)
}

// handleBulkCreate creates a batch of records; per-record failures become
// multistatus entries in a 200 response.
func (s *Server) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	s.bulk(w, r, "create", s.service.Create)
}

// handleBulkUpdate updates a batch of records addressed by their meta
// recordIDs (literal ids or "field=value" keys).
func (s *Server) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	s.bulk(w, r, "update", s.service.Update)
}

// handleBulkDelete deletes a batch of records addressed by their meta
// recordIDs.
func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	s.bulk(w, r, "delete", s.service.Delete)
}

type bulkOp func(ctx context.Context, req *message.Message, opts engine.Options) (*message.Message, error)

func (s *Server) bulk(w http.ResponseWriter, r *http.Request, name string, op bulkOp) {
	start := time.Now()
	opts, req, ok := s.decodeRequest(w, r, true)
	if !ok {
		s.metrics.RecordOperation(name, false, time.Since(start))
		return
	}

	resp, err := op(r.Context(), req, opts)
	if err != nil {
		s.metrics.RecordOperation(name, false, time.Since(start))
		s.sendOperationError(w, err)
		return
	}
	s.metrics.RecordOperation(name, true, time.Since(start))
	s.metrics.RecordMultistatus(resp.MultistatusCount())
	sendMessage(w, resp)
}

// handleRunScript executes a named backend procedure with an optional
// parameter and returns whatever records it produced.
func (s *Server) handleRunScript(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	opts, ok := s.options(w, r)
	if !ok {
		s.metrics.RecordOperation("script", false, time.Since(start))
		return
	}
	script := chi.URLParam(r, "script")
	param := r.URL.Query().Get("param")

	resp, err := s.service.RunScript(r.Context(), script, param, opts)
	if err != nil {
		s.metrics.RecordOperation("script", false, time.Since(start))
		s.sendOperationError(w, err)
		return
	}
	s.metrics.RecordOperation("script", true, time.Since(start))
	sendMessage(w, resp)
}

// decodeRequest parses the request body and query options. The body must
// carry at least one record.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, bulk bool) (engine.Options, *message.Message, bool) {
	opts, ok := s.options(w, r)
	if !ok {
		return opts, nil, false
	}
	opts.Bulk = bulk

	req, err := decodeMessage(r.Body)
	if err != nil {
		sendError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return opts, nil, false
	}
	if req.RecordCount() == 0 {
		sendError(w, "Request carries no records", http.StatusBadRequest)
		return opts, nil, false
	}
	return opts, req, true
}

// options builds engine options from the route and query string.
func (s *Server) options(w http.ResponseWriter, r *http.Request) (engine.Options, bool) {
	q := r.URL.Query()

	containers, err := engine.ParseContainerPolicy(q.Get("containers"))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return engine.Options{}, false
	}

	opts := engine.Options{
		Layout:           chi.URLParam(r, "layout"),
		SuppressData:     boolParam(q.Get("suppress")),
		Append:           boolParam(q.Get("append")),
		UpdateElseCreate: boolParam(q.Get("create")),
		Containers:       containers,
	}

	var pre, post *backend.Hook
	if name := q.Get("pre_script"); name != "" {
		pre = &backend.Hook{Script: name, Param: q.Get("pre_script_param")}
	}
	if name := q.Get("post_script"); name != "" {
		post = &backend.Hook{Script: name, Param: q.Get("post_script_param")}
	}
	opts.Hooks = backend.NewScriptHooks(pre, post)

	return opts, true
}

func boolParam(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// recordID extracts and unescapes the {id} route parameter.
func recordID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid record identifier encoding", http.StatusBadRequest)
		return "", false
	}
	if id == "" {
		sendError(w, "Record identifier is required", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

// sendOperationError maps an engine failure to its HTTP status.
func (s *Server) sendOperationError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrNoIdentifier):
		status = http.StatusBadRequest
	default:
		var be *backend.Error
		if errors.As(err, &be) && be.Code == backend.CodeNoMatch {
			status = http.StatusNotFound
		}
	}
	s.log.Error().Err(err).Int("status", status).Msg("record operation failed")
	sendError(w, err.Error(), status)
}
