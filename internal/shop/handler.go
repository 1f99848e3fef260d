// AngelaMos | 2026
// handler.go

package shop

import (
	"encoding/json"
	"errors"
	"net/http"
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
	authenticator, managerOnly func(http.Handler) http.Handler,
) {
	r.Route("/shops", func(r chi.Router) {
		r.Use(authenticator)

		// Readable by a staffed analyst as well as the owner.
		r.Get("/{shopID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(managerOnly)

			r.Post("/", h.Create)
			r.Get("/", h.List)
			r.Put("/{shopID}", h.Update)
			r.Delete("/{shopID}", h.Delete)
			r.Put("/{shopID}/avatar", h.UpdateAvatar)
			r.Patch("/{shopID}/owner", h.ChangeOwner)
			r.Patch("/{shopID}/staff", h.UpdateStaff)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	managerID := middleware.GetUserID(r.Context())

	var req CreateShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	shop, err := h.service.Create(r.Context(), managerID, req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToShopResponse(shop))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	managerID := middleware.GetUserID(r.Context())

	params := ListShopsParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
	}

	shops, total, err := h.service.List(r.Context(), managerID, params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	params.Normalize()
	core.Paginated(w, ToShopResponseList(shops), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	callerRole := middleware.GetUserRole(r.Context())

	shopID, err := parseIDParam(r, "shopID")
	if err != nil {
		core.BadRequest(w, "invalid shop id")
		return
	}

	card, err := h.service.Get(r.Context(), callerID, callerRole, shopID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "shop")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, card)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())

	shopID, err := parseIDParam(r, "shopID")
	if err != nil {
		core.BadRequest(w, "invalid shop id")
		return
	}

	var req UpdateShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	shop, err := h.service.Update(r.Context(), callerID, shopID, req)
	if err != nil {
		h.writeShopError(w, err)
		return
	}

	core.OK(w, ToShopResponse(shop))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())

	shopID, err := parseIDParam(r, "shopID")
	if err != nil {
		core.BadRequest(w, "invalid shop id")
		return
	}

	if err := h.service.Delete(r.Context(), callerID, shopID); err != nil {
		h.writeShopError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())

	shopID, err := parseIDParam(r, "shopID")
	if err != nil {
		core.BadRequest(w, "invalid shop id")
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		core.BadRequest(w, "avatar file required")
		return
	}
	defer file.Close()

	shop, err := h.service.UpdateAvatar(r.Context(), callerID, shopID, file)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "shop")
		case errors.Is(err, core.ErrForbidden):
			core.Forbidden(w, reasonOf(err))
		case errors.Is(err, storage.ErrTooLarge):
			core.BadRequest(w, "avatar exceeds size limit")
		case errors.Is(err, storage.ErrUnsupportedType):
			core.BadRequest(w, "avatar must be an image")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToShopResponse(shop))
}

func (h *Handler) ChangeOwner(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())

	shopID, err := parseIDParam(r, "shopID")
	if err != nil {
		core.BadRequest(w, "invalid shop id")
		return
	}

	var req ChangeOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.ChangeOwner(r.Context(), callerID, shopID, req.ManagerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSameOwner):
			core.Forbidden(w, ErrSameOwner.Error())
		case core.IsAppError(err):
			core.JSONError(w, err)
		default:
			h.writeShopError(w, err)
		}
		return
	}

	core.OK(w, resp)
}

func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())

	shopID, err := parseIDParam(r, "shopID")
	if err != nil {
		core.BadRequest(w, "invalid shop id")
		return
	}

	op, err := ParseStaffOperation(r.URL.Query().Get("operation"))
	if err != nil {
		core.Forbidden(w, err.Error())
		return
	}

	var req UpdateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	card, err := h.service.UpdateStaff(
		r.Context(),
		callerID,
		shopID,
		op,
		req.AnalystIDs,
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyStaffed):
			core.Forbidden(w, ErrAlreadyStaffed.Error())
		case errors.Is(err, ErrNotStaffed):
			core.Forbidden(w, ErrNotStaffed.Error())
		default:
			h.writeShopError(w, err)
		}
		return
	}

	core.OK(w, card)
}

func (h *Handler) writeShopError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "shop")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, reasonOf(err))
	default:
		core.InternalServerError(w, err)
	}
}

// reasonOf strips the wrapped sentinel suffix, leaving the guard's reason.
func reasonOf(err error) string {
	msg := err.Error()
	if idx := len(msg) - len(": "+core.ErrForbidden.Error()); idx > 0 &&
		msg[idx:] == ": "+core.ErrForbidden.Error() {
		return msg[:idx]
	}
	return msg
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
