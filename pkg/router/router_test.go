package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		path, pattern string
		want          bool
	}{
		{"/api/v1/analyses/abc", "/api/v1/analyses/*", true},
		{"/api/v1/analyses/abc/report", "/api/v1/analyses/*/report", true},
		{"/api/v1/analyses/abc/extra/report", "/api/v1/analyses/*/report", false},
		{"/api/v1/analyses", "/api/v1/analyses/*", false},
		{"/swagger/index.html", "/swagger/*", true},
		{"/swagger/doc/json", "/swagger/*", true},
		{"/other/index.html", "/swagger/*", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchPattern(tc.path, tc.pattern), "%s vs %s", tc.path, tc.pattern)
	}
}

func TestRouterDispatch(t *testing.T) {
	r := New()
	r.GET("/api/v1/analyses", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("list"))
	})
	r.GET("/api/v1/analyses/*/report", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("report"))
	})
	r.GET("/api/v1/analyses/*", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("detail"))
	})
	r.POST("/api/v1/analyses", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, "list", get("/api/v1/analyses").Body.String())
	assert.Equal(t, "report", get("/api/v1/analyses/abc/report").Body.String(),
		"earlier registered pattern wins")
	assert.Equal(t, "detail", get("/api/v1/analyses/abc").Body.String())
	assert.Equal(t, http.StatusNotFound, get("/nope").Code)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyses", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/analyses", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "method mismatch is not found")
}
