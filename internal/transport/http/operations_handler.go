package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "stocksentiment/internal/errors"
	"stocksentiment/internal/infrastructure"
	"stocksentiment/internal/operations"
)

// AllSteps selects every registered step in POST /api/operations/{step}
const AllSteps = "all"

// StartOperationRequest is the optional body of POST /api/operations/{step}
type StartOperationRequest struct {
	CorpusIDs []int `json:"corpus_ids,omitempty"`
}

// Bind validates the decoded body
func (req *StartOperationRequest) Bind(r *http.Request) error {
	for _, id := range req.CorpusIDs {
		if id < 1 {
			return apperrors.NewAppValidationError("corpus ids must be positive")
		}
	}
	return nil
}

// OperationStatusResponse is the body of GET /api/operations/status
type OperationStatusResponse struct {
	Running bool                           `json:"running"`
	Current *operations.OperationResponse `json:"current,omitempty"`
	Last    *operations.OperationResponse `json:"last,omitempty"`
}

// OperationsHandler starts pipeline steps and reports their progress
type OperationsHandler struct {
	base         context.Context
	manager      *operations.Manager
	errorHandler *apperrors.ErrorHandler
	logger       *slog.Logger
}

// NewOperationsHandler creates a new operations handler. Started operations
// run under base, so cancelling it stops them.
func NewOperationsHandler(base context.Context, manager *operations.Manager, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *OperationsHandler {
	return &OperationsHandler{
		base:         base,
		manager:      manager,
		errorHandler: errorHandler,
		logger:       infrastructure.WithComponent(logger, "operations_handler"),
	}
}

// Routes returns the operations routes
func (h *OperationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListSteps)
	r.Get("/status", h.Status)
	r.Post("/{step}", h.Start)
	return r
}

// ListSteps handles GET /api/operations
func (h *OperationsHandler) ListSteps(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.manager.Registry().Types())
}

// Status handles GET /api/operations/status
func (h *OperationsHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := OperationStatusResponse{Running: h.manager.Running()}
	if current, ok := h.manager.Current(); ok {
		resp.Current = current
	}
	if last, ok := h.manager.Last(); ok {
		resp.Last = last
	}
	render.JSON(w, r, resp)
}

// Start handles POST /api/operations/{step}. The operation runs in the
// background and outlives the request; 202 carries its initial snapshot.
// The request ID, when present, becomes the operation ID.
func (h *OperationsHandler) Start(w http.ResponseWriter, r *http.Request) {
	step := chi.URLParam(r, "step")

	var body StartOperationRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apperrors.InvalidParameter("request body", err.Error()))
		return
	}
	if err := body.Bind(r); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	req := operations.OperationRequest{
		ID:        infrastructure.GetTraceID(r.Context()),
		CorpusIDs: body.CorpusIDs,
	}
	if step != AllSteps {
		req.Steps = []string{step}
	}

	resp, err := h.manager.Start(h.base, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.toAPIError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "operation started",
		slog.String("operation_id", resp.ID),
		slog.String("step", step),
		slog.Any("order", resp.Order))

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, resp)
}

func (h *OperationsHandler) toAPIError(err error) error {
	if errors.Is(err, operations.ErrOperationBusy) {
		current := ""
		if op, ok := h.manager.Current(); ok {
			current = op.ID
		}
		return apperrors.OperationRunning(current)
	}

	switch operations.GetErrorType(err) {
	case operations.ErrorTypeNotFound:
		return apperrors.NewWithDetails(http.StatusNotFound, "STEP_NOT_FOUND", err.Error(), h.manager.Registry().ListIDs())
	case operations.ErrorTypeValidation, operations.ErrorTypeDependency:
		return apperrors.New(http.StatusBadRequest, "INVALID_OPERATION", err.Error())
	}
	return err
}
