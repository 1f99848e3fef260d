// AngelaMos | 2026
// handler.go

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shoplytics/backoffice/internal/core"
	"github.com/shoplytics/backoffice/internal/middleware"
	"github.com/shoplytics/backoffice/internal/storage"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/shops/{shopID}/reports", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/", h.ListByShop)
	})

	r.Route("/reports/{reportID}", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Patch("/seen", h.SetSeen)
		r.Delete("/", h.Delete)
		r.Get("/file", h.Download)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	analystID := middleware.GetUserID(r.Context())

	shopID, err := parseIDParam(r, "shopID")
	if err != nil {
		core.BadRequest(w, "invalid shop id")
		return
	}

	req := CreateReportRequest{
		Name:    r.FormValue("name"),
		Comment: r.FormValue("comment"),
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		core.BadRequest(w, "report file required")
		return
	}
	defer file.Close()

	report, err := h.service.Create(r.Context(), analystID, shopID, req, file)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "shop")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, reasonOf(err))
		case errors.Is(err, storage.ErrTooLarge):
			core.BadRequest(w, "report file exceeds size limit")
		case errors.Is(err, storage.ErrUnsupportedType):
			core.BadRequest(w, "unsupported report file type")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, ToReportResponse(report))
}

func (h *Handler) ListByShop(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	callerRole := middleware.GetUserRole(r.Context())

	shopID, err := parseIDParam(r, "shopID")
	if err != nil {
		core.BadRequest(w, "invalid shop id")
		return
	}

	params := ListReportsParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
	}

	reports, total, err := h.service.ListByShop(
		r.Context(),
		callerID,
		callerRole,
		shopID,
		params,
	)
	if err != nil {
		h.writeReportError(w, err, "shop")
		return
	}

	params.Normalize()
	core.Paginated(
		w,
		ToReportResponseList(reports),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	callerRole := middleware.GetUserRole(r.Context())

	reportID, err := parseIDParam(r, "reportID")
	if err != nil {
		core.BadRequest(w, "invalid report id")
		return
	}

	report, err := h.service.Get(r.Context(), callerID, callerRole, reportID)
	if err != nil {
		h.writeReportError(w, err, "report")
		return
	}

	core.OK(w, ToReportResponse(report))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())

	reportID, err := parseIDParam(r, "reportID")
	if err != nil {
		core.BadRequest(w, "invalid report id")
		return
	}

	var req UpdateReportRequest
	if err := decodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	report, err := h.service.Update(r.Context(), callerID, reportID, req)
	if err != nil {
		h.writeReportError(w, err, "report")
		return
	}

	core.OK(w, ToReportResponse(report))
}

func (h *Handler) SetSeen(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())

	reportID, err := parseIDParam(r, "reportID")
	if err != nil {
		core.BadRequest(w, "invalid report id")
		return
	}

	var req SetSeenRequest
	if err := decodeJSON(r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	report, err := h.service.SetSeen(r.Context(), callerID, reportID, req.Seen)
	if err != nil {
		h.writeReportError(w, err, "report")
		return
	}

	core.OK(w, ToReportResponse(report))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())

	reportID, err := parseIDParam(r, "reportID")
	if err != nil {
		core.BadRequest(w, "invalid report id")
		return
	}

	if err := h.service.Delete(r.Context(), callerID, reportID); err != nil {
		h.writeReportError(w, err, "report")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	callerRole := middleware.GetUserRole(r.Context())

	reportID, err := parseIDParam(r, "reportID")
	if err != nil {
		core.BadRequest(w, "invalid report id")
		return
	}

	report, file, err := h.service.OpenFile(
		r.Context(),
		callerID,
		callerRole,
		reportID,
	)
	if err != nil {
		h.writeReportError(w, err, "report")
		return
	}
	defer file.Close()

	filename := report.Name + filepath.Ext(report.FilePath)
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filename),
	)

	info, err := file.Stat()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	http.ServeContent(w, r, filename, info.ModTime(), file)
}

func (h *Handler) writeReportError(
	w http.ResponseWriter,
	err error,
	resource string,
) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, reasonOf(err))
	default:
		core.InternalServerError(w, err)
	}
}

// reasonOf strips the wrapped sentinel suffix, leaving the rule's message.
func reasonOf(err error) string {
	msg := err.Error()
	suffix := ": " + core.ErrForbidden.Error()
	if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
		return msg[:len(msg)-len(suffix)]
	}
	return msg
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
