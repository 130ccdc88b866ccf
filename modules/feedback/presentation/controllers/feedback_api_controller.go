package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/incidence"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/staging"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/excel"
	"github.com/arbportal/feedback-portal/modules/feedback/infrastructure/stagingstore"
	"github.com/arbportal/feedback-portal/modules/feedback/services"
	"github.com/arbportal/feedback-portal/pkg/application"
	"github.com/arbportal/feedback-portal/pkg/configuration"
)

type FeedbackAPIController struct {
	app        application.Application
	ingest     *services.IngestService
	staged     *services.StagingService
	incidences *services.IncidenceService
	apiPrefix  string
}

func NewFeedbackAPIController(app application.Application) application.Controller {
	return &FeedbackAPIController{
		app:        app,
		ingest:     app.Service(services.IngestService{}).(*services.IngestService),
		staged:     app.Service(services.StagingService{}).(*services.StagingService),
		incidences: app.Service(services.IncidenceService{}).(*services.IncidenceService),
		apiPrefix:  "/feedback/api",
	}
}

func (c *FeedbackAPIController) Key() string {
	return c.apiPrefix
}

func (c *FeedbackAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/uploads", c.Upload).Methods(http.MethodPost)

	api.HandleFunc("/staged", c.ListStaged).Methods(http.MethodGet)
	api.HandleFunc("/staged/{id}", c.GetStaged).Methods(http.MethodGet)
	api.HandleFunc("/staged/{id}:confirm", c.ConfirmStaged).Methods(http.MethodPost)
	api.HandleFunc("/staged/{id}:discard", c.DiscardStaged).Methods(http.MethodPost)

	api.HandleFunc("/incidences", c.ListIncidences).Methods(http.MethodGet)
	api.HandleFunc("/incidences/{id}", c.GetIncidence).Methods(http.MethodGet)
}

func (c *FeedbackAPIController) Upload(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	r.Body = http.MaxBytesReader(w, r.Body, conf.Upload.MaxSize)
	if err := r.ParseMultipartForm(conf.Upload.MaxMemory); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "UPLOAD_INVALID_FORM", err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "UPLOAD_MISSING_FILE", "multipart field \"file\" is required")
		return
	}
	defer func() { _ = file.Close() }()

	cs, err := c.ingest.ProcessUpload(r.Context(), file, header.Filename)
	if err != nil {
		writeUploadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cs)
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		unsupported  *excel.UnsupportedFileError
		structure    *excel.WorkbookStructureError
		unrecognized *schemadef.UnrecognizedSchemaError
		mismatch     *services.SectorMismatchError
	)
	switch {
	case errors.As(err, &unsupported):
		writeAPIError(w, r, http.StatusUnsupportedMediaType, "UPLOAD_NOT_XLSX", unsupported.Error())
	case errors.As(err, &structure):
		writeAPIError(w, r, http.StatusUnprocessableEntity, "WORKBOOK_STRUCTURE", structure.Error())
	case errors.As(err, &unrecognized):
		writeAPIError(w, r, http.StatusUnprocessableEntity, "SCHEMA_UNRECOGNIZED", unrecognized.Error())
	case errors.As(err, &mismatch):
		writeAPIError(w, r, http.StatusUnprocessableEntity, "SECTOR_MISMATCH", mismatch.Error())
	case errors.Is(err, incidence.ErrNotFound):
		writeAPIError(w, r, http.StatusNotFound, "INCIDENCE_NOT_FOUND", err.Error())
	default:
		writeAPIError(w, r, http.StatusInternalServerError, "FEEDBACK_INTERNAL", err.Error())
	}
}

func (c *FeedbackAPIController) ListStaged(w http.ResponseWriter, r *http.Request) {
	items, malformed, err := c.staged.List(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "FEEDBACK_INTERNAL", err.Error())
		return
	}
	if items == nil {
		items = []*staging.ChangeSet{}
	}
	writeJSON(w, http.StatusOK, StagedListResponse{Items: items, Malformed: malformed})
}

func (c *FeedbackAPIController) GetStaged(w http.ResponseWriter, r *http.Request) {
	cs, err := c.staged.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStagedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (c *FeedbackAPIController) ConfirmStaged(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeAPIError(w, r, http.StatusBadRequest, "FEEDBACK_INVALID_BODY", err.Error())
		return
	}

	result, err := c.staged.Confirm(r.Context(), mux.Vars(r)["id"], req.Override)
	if err != nil {
		var (
			blocked  *services.UnresolvedViolationsError
			conflict *incidence.ConcurrentModificationError
		)
		switch {
		case errors.As(err, &blocked):
			writeJSON(w, http.StatusConflict, struct {
				APIError
				Violations any `json:"violations"`
			}{
				APIError: APIError{
					Code:    "VIOLATIONS_UNRESOLVED",
					Message: blocked.Error(),
					Meta:    map[string]string{"request_id": ensureRequestID(w, r)},
				},
				Violations: blocked.Violations,
			})
		case errors.As(err, &conflict):
			writeAPIError(w, r, http.StatusConflict, "CONFLICT_DETECTED", conflict.Error())
		default:
			writeStagedError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toIncidenceResponse(result))
}

func (c *FeedbackAPIController) DiscardStaged(w http.ResponseWriter, r *http.Request) {
	if err := c.staged.Discard(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStagedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func writeStagedError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, stagingstore.ErrStagedNotFound):
		writeAPIError(w, r, http.StatusNotFound, "STAGED_NOT_FOUND", err.Error())
	case errors.Is(err, incidence.ErrNotFound):
		writeAPIError(w, r, http.StatusNotFound, "INCIDENCE_NOT_FOUND", err.Error())
	default:
		writeAPIError(w, r, http.StatusBadRequest, "STAGED_INVALID", err.Error())
	}
}

func (c *FeedbackAPIController) ListIncidences(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	query := ListIncidencesQuery{
		Sector: r.URL.Query().Get("sector"),
		Limit:  conf.PageSize,
		Offset: 0,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "FEEDBACK_INVALID_QUERY", "limit must be an integer")
			return
		}
		query.Limit = n
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "FEEDBACK_INVALID_QUERY", "offset must be an integer")
			return
		}
		query.Offset = n
	}
	if query.Limit > conf.MaxPageSize {
		query.Limit = conf.MaxPageSize
	}
	if err := validate.Struct(query); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "FEEDBACK_INVALID_QUERY", err.Error())
		return
	}

	items, total, err := c.incidences.GetPaginated(r.Context(), &incidence.FindParams{
		Sector: schemadef.Sector(query.Sector),
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "FEEDBACK_INTERNAL", err.Error())
		return
	}

	out := IncidenceListResponse{
		Items:  make([]IncidenceResponse, 0, len(items)),
		Total:  total,
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	for _, inc := range items {
		out.Items = append(out.Items, toIncidenceResponse(inc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *FeedbackAPIController) GetIncidence(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "FEEDBACK_INVALID_QUERY", "id must be an integer")
		return
	}
	inc, err := c.incidences.GetByID(r.Context(), id)
	if errors.Is(err, incidence.ErrNotFound) {
		writeAPIError(w, r, http.StatusNotFound, "INCIDENCE_NOT_FOUND", err.Error())
		return
	}
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "FEEDBACK_INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toIncidenceResponse(inc))
}
