package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
	"stocksentiment/internal/exporter"
	"stocksentiment/internal/infrastructure"
	"stocksentiment/pkg/contracts/domain"
)

// CorpusListResponse is the body of GET /api/corpora
type CorpusListResponse struct {
	Corpora []domain.CorpusReport `json:"corpora"`
	Count   int                   `json:"count"`
}

// CorpusHandler serves the reports persisted by the wrangle step
type CorpusHandler struct {
	dir          string
	errorHandler *apperrors.ErrorHandler
	logger       *slog.Logger
}

// NewCorpusHandler creates a handler reading reports from paths.CorporaDir
func NewCorpusHandler(paths *config.Paths, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *CorpusHandler {
	return &CorpusHandler{
		dir:          paths.CorporaDir,
		errorHandler: errorHandler,
		logger:       infrastructure.WithComponent(logger, "corpus_handler"),
	}
}

// Routes returns the corpus routes
func (h *CorpusHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}

// List handles GET /api/corpora
func (h *CorpusHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := exporter.LoadReports(h.dir)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, CorpusListResponse{Corpora: reports, Count: len(reports)})
}

// Get handles GET /api/corpora/{id}
func (h *CorpusHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		h.errorHandler.HandleError(w, r, apperrors.InvalidParameter("corpus id", raw))
		return
	}

	report, err := exporter.LoadReport(h.dir, id)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeNotFound) {
			err = apperrors.NotFoundError("corpus " + raw)
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, report)
}
