package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/wolfman30/support-agent-router/internal/agent"
	"github.com/wolfman30/support-agent-router/internal/audit"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

const maxRequestBody = 64 << 10

// ErrNoInput is the error text returned for an empty request.
const ErrNoInput = "No input provided"

// Gate processes one user message end to end.
type Gate interface {
	Process(ctx context.Context, text, sessionID string) agent.Response
}

// Auditor records processed requests.
type Auditor interface {
	Record(ctx context.Context, ev audit.Event) error
}

// SupportRequest is the inbound body for POST /v1/requests.
type SupportRequest struct {
	Input     string `json:"input"`
	SessionID string `json:"session_id,omitempty"`
}

// RequestHandler exposes the safety gate over HTTP.
type RequestHandler struct {
	gate    Gate
	auditor Auditor
	logger  *logging.Logger
	now     func() time.Time
}

// NewRequestHandler builds the handler. auditor may be nil.
func NewRequestHandler(gate Gate, auditor Auditor, logger *logging.Logger) *RequestHandler {
	if gate == nil {
		panic("handlers: gate cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RequestHandler{gate: gate, auditor: auditor, logger: logger, now: time.Now}
}

// Create routes one message.
// POST /v1/requests
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SupportRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		jsonError(w, ErrNoInput, http.StatusBadRequest)
		return
	}

	resp := h.gate.Process(r.Context(), req.Input, strings.TrimSpace(req.SessionID))
	h.record(r, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *RequestHandler) record(r *http.Request, resp agent.Response) {
	if h.auditor == nil {
		return
	}
	requestID := middleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}
	if err := h.auditor.Record(r.Context(), audit.NewEvent(requestID, resp, h.now())); err != nil {
		h.logger.Warn("failed to publish audit event", "request_id", requestID, "error", err)
	}
}
