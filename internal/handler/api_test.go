package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/centaura/cms/internal/db"
	"github.com/centaura/cms/internal/logger"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	testUsername = "editor"
	testPassword = "correct-horse"
)

// stubHTMLRender 记录最近一次渲染的模板名与数据，不输出任何内容。
type stubHTMLRender struct {
	name string
	data gin.H
}

type stubHTMLInstance struct{}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.name = name
	r.data, _ = data.(gin.H)
	return &stubHTMLInstance{}
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

type testServer struct {
	t      *testing.T
	api    *API
	router *gin.Engine
	html   *stubHTMLRender
	jar    map[string]*http.Cookie
	csrf   string
}

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

// newTestServer 按生产路由的结构挂载接口与后台页面。
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidatorTagNames()

	gdb := setupHandlerTestDB(t)
	if _, err := db.EnsureUser(gdb, testUsername, testPassword); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	api := NewAPI(gdb, logger.Nop(), t.TempDir(), "/static/uploads")
	html := &stubHTMLRender{}

	r := gin.New()
	r.HTMLRender = html
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))

	apiGroup := r.Group("/api")
	apiGroup.GET("/homepage", api.GetHomepage)
	apiGroup.GET("/auth/csrf", api.CSRFToken)
	apiGroup.POST("/auth/login", api.Login)
	apiGroup.GET("/auth/session", api.Session)
	apiGroup.POST("/auth/logout", APIAuthRequired(), CSRFProtected(), api.Logout)

	protected := apiGroup.Group("")
	protected.Use(APIAuthRequired(), CSRFProtected())
	protected.POST("/media-assets/upload", api.UploadMedia)
	api.RegisterResources(apiGroup, protected)

	dashboard := r.Group("/dashboard")
	dashboard.Use(CSRFProtected())
	dashboard.GET("/login", api.ShowLogin)
	dashboard.POST("/login", api.DashboardLogin)
	dashboard.GET("/logout", api.DashboardLogout)
	auth := dashboard.Group("")
	auth.Use(AuthRequired())
	auth.GET("", api.ShowDashboard)
	auth.GET("/gallery", api.ShowGallery)
	auth.POST("/gallery/upload", api.UploadGalleryImage)
	auth.POST("/gallery/:id/delete", api.DeleteGalleryImage)
	api.RegisterDashboard(auth)

	return &testServer{t: t, api: api, router: r, html: html, jar: map[string]*http.Cookie{}}
}

func (s *testServer) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.csrf != "" {
		req.Header.Set(CSRFHeader, s.csrf)
	}
	for _, c := range s.jar {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		s.jar[c.Name] = c
	}
	return rec
}

func (s *testServer) doJSON(method, path string, payload interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	if payload == nil {
		return s.do(method, path, nil, "")
	}
	body, err := json.Marshal(payload)
	require.NoError(s.t, err)
	return s.do(method, path, bytes.NewReader(body), "application/json")
}

func (s *testServer) login() {
	s.t.Helper()
	rec := s.doJSON(http.MethodPost, "/api/auth/login", gin.H{"username": testUsername, "password": testPassword})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Username  string `json:"username"`
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(s.t, testUsername, resp.Username)
	require.NotEmpty(s.t, resp.CSRFToken)
	s.csrf = resp.CSRFToken
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestWriteWithoutSessionIsRejected(t *testing.T) {
	s := newTestServer(t)

	rec := s.doJSON(http.MethodPost, "/api/stats", gin.H{"label": "Exits", "value": "120+"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.doJSON(http.MethodDelete, "/api/hero/1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	count, err := s.api.Content().Stats.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestWriteWithoutCSRFTokenIsForbidden(t *testing.T) {
	s := newTestServer(t)
	s.login()

	token := s.csrf
	s.csrf = ""
	rec := s.doJSON(http.MethodPost, "/api/stats", gin.H{"label": "Exits", "value": "120+"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.csrf = "not-the-token"
	rec = s.doJSON(http.MethodPost, "/api/stats", gin.H{"label": "Exits", "value": "120+"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.csrf = token
	rec = s.doJSON(http.MethodPost, "/api/stats", gin.H{"label": "Exits", "value": "120+"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newTestServer(t)

	rec := s.doJSON(http.MethodPost, "/api/auth/login", gin.H{"username": testUsername, "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.doJSON(http.MethodPost, "/api/auth/login", gin.H{"username": testUsername})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[map[string]interface{}](t, rec)
	assert.Contains(t, body["fields"], "password")
}

func TestSessionAndLogout(t *testing.T) {
	s := newTestServer(t)

	rec := s.doJSON(http.MethodGet, "/api/auth/session", nil)
	assert.Equal(t, false, decodeBody[map[string]interface{}](t, rec)["authenticated"])

	s.login()
	rec = s.doJSON(http.MethodGet, "/api/auth/session", nil)
	session := decodeBody[map[string]interface{}](t, rec)
	assert.Equal(t, true, session["authenticated"])
	assert.Equal(t, testUsername, session["username"])

	rec = s.doJSON(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.doJSON(http.MethodPost, "/api/stats", gin.H{"label": "Exits", "value": "120+"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCollectionCreateListOrdering(t *testing.T) {
	s := newTestServer(t)
	s.login()

	for _, payload := range []gin.H{
		{"label": "Second", "value": "2", "sort_order": 2},
		{"label": "First", "value": "1", "sort_order": 1},
		{"label": "Also second", "value": "2b", "sort_order": 2},
	} {
		rec := s.doJSON(http.MethodPost, "/api/stats", payload)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.doJSON(http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeBody[[]db.Stat](t, rec)
	require.Len(t, items, 3)
	assert.Equal(t, "First", items[0].Label)
	assert.Equal(t, "Second", items[1].Label)
	assert.Equal(t, "Also second", items[2].Label)
}

func TestCollectionUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.doJSON(http.MethodPost, "/api/faqs", gin.H{"question": "How long?", "answer": "Usually 18 months."})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[db.FAQ](t, rec)

	rec = s.doJSON(http.MethodPut, fmt.Sprintf("/api/faqs/%d", created.ID), gin.H{"question": "How long does it take?", "answer": "It depends."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[db.FAQ](t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "How long does it take?", updated.Question)

	rec = s.doJSON(http.MethodDelete, fmt.Sprintf("/api/faqs/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.doJSON(http.MethodGet, fmt.Sprintf("/api/faqs/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMissingItemReturnsNotFound(t *testing.T) {
	s := newTestServer(t)
	s.login()

	assert.Equal(t, http.StatusNotFound, s.doJSON(http.MethodGet, "/api/faqs/999", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.doJSON(http.MethodGet, "/api/faqs/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.doJSON(http.MethodPut, "/api/faqs/999", gin.H{"question": "q", "answer": "a"}).Code)
	assert.Equal(t, http.StatusNotFound, s.doJSON(http.MethodDelete, "/api/faqs/999", nil).Code)
}

func TestSingletonCreateUpserts(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.doJSON(http.MethodPost, "/api/hero", gin.H{"title": "First headline"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeBody[db.Hero](t, rec)

	rec = s.doJSON(http.MethodPost, "/api/hero", gin.H{"title": "Second headline"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	second := decodeBody[db.Hero](t, rec)
	assert.Equal(t, first.ID, second.ID)

	rec = s.doJSON(http.MethodGet, "/api/hero", nil)
	items := decodeBody[[]db.Hero](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Second headline", items[0].Title)
}

func TestValidationErrorsAreReportedPerField(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.doJSON(http.MethodPost, "/api/testimonials", gin.H{"content": "Great outcome.", "rating": 6})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error  string              `json:"error"`
		Fields map[string][]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, []string{"This field is required."}, body.Fields["name"])
	assert.NotEmpty(t, body.Fields["rating"])

	rec = s.doJSON(http.MethodPost, "/api/services", gin.H{"title": "Audit", "description": "d", "image_url": "not a url"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Enter a valid URL."}, body.Fields["image_url"])
}

func TestMalformedBodyIsRejected(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.do(http.MethodPost, "/api/faqs", strings.NewReader("{not json"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/stats", strings.NewReader(`{"label":"x","value":"1","sort_order":"first"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[map[string]interface{}](t, rec)
	assert.Contains(t, body["fields"], "sort_order")
}

func TestChildWithMissingParentIsRejected(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.doJSON(http.MethodPost, "/api/process-steps", gin.H{
		"process_section": 42,
		"number":          "01",
		"title":           "Diagnose",
		"description":     "Benchmark value.",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Fields map[string][]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{`Invalid pk "42" - object does not exist.`}, body.Fields["process_section"])
}

func TestSingletonDeleteCascades(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.doJSON(http.MethodPost, "/api/comparison-table", gin.H{"title": "Centaura vs. Brokers"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	table := decodeBody[db.ComparisonTable](t, rec)

	rec = s.doJSON(http.MethodPost, "/api/comparison-features", gin.H{"comparison_table": table.ID, "name": "Value work"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	feature := decodeBody[db.ComparisonTableFeature](t, rec)
	assert.True(t, feature.Centaura)
	assert.False(t, feature.Typical)

	rec = s.doJSON(http.MethodDelete, fmt.Sprintf("/api/comparison-table/%d", table.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.doJSON(http.MethodGet, "/api/comparison-features", nil)
	assert.Empty(t, decodeBody[[]db.ComparisonTableFeature](t, rec))
}

func TestReadsArePublic(t *testing.T) {
	s := newTestServer(t)

	rec := s.doJSON(http.MethodGet, "/api/services", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = s.doJSON(http.MethodGet, "/api/homepage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	homepage := decodeBody[map[string]json.RawMessage](t, rec)
	for _, key := range []string{"hero", "stats", "services", "case_studies", "footer", "image_gallery"} {
		assert.Contains(t, homepage, key)
	}
	assert.JSONEq(t, "[]", string(homepage["image_gallery"]))
}
