package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequire(t *testing.T) {
	h := Require("grade:set")(okHandler())

	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r) // no role in context
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(WithRole(r.Context(), "student"))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(WithRole(r.Context(), "teacher"))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireOwnerOr(t *testing.T) {
	owner := func(r *http.Request) string { return "u-42" }
	h := RequireOwnerOr("grade:view", owner)(okHandler())

	// The owner passes regardless of role.
	r := httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(WithRole(WithSubject(r.Context(), "u-42"), "student"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	// A different student is rejected.
	r = httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(WithRole(WithSubject(r.Context(), "u-7"), "student"))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A teacher with the permission passes.
	r = httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(WithRole(WithSubject(r.Context(), "t-1"), "teacher"))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}
