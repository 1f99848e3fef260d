// AngelaMos | 2026
// handler_test.go

package shop

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/shoplytics/backoffice/internal/middleware"
)

// The operation tag is vetted before anything touches the database, so a
// handler with no backing service is enough here.
func TestUpdateStaffRejectsMalformedOperationTag(t *testing.T) {
	h := NewHandler(nil)

	req := httptest.NewRequest(
		http.MethodPatch,
		"/shops/1/staff?operation=promote",
		strings.NewReader(`{"analyst_ids":[1]}`),
	)

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("shopID", "1")
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = context.WithValue(ctx, middleware.UserIDKey, int64(10))
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	h.UpdateStaff(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "unrecognized staff operation")
}

func TestUpdateStaffRejectsEmptyBatch(t *testing.T) {
	h := NewHandler(nil)

	req := httptest.NewRequest(
		http.MethodPatch,
		"/shops/1/staff?operation=add",
		strings.NewReader(`{"analyst_ids":[]}`),
	)

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("shopID", "1")
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = context.WithValue(ctx, middleware.UserIDKey, int64(10))
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	h.UpdateStaff(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
