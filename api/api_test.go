package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/studio-portfolio-backend/config"
	"github.com/rpupo63/studio-portfolio-backend/mocks"
	"github.com/rpupo63/studio-portfolio-backend/models"
	"github.com/rpupo63/studio-portfolio-backend/services"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	handler  http.Handler
	projects *mocks.MockProjectStore
	users    *mocks.MockUserStore
	objects  *mocks.MockStorage
	auth     *services.AuthService
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()

	projects := mocks.NewMockProjectStore()
	users := mocks.NewMockUserStore()
	objects := mocks.NewMockStorage()

	auth, err := services.NewAuthService(users, "test-secret", time.Hour, zerolog.Nop(), services.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	svcs := &services.Services{
		Projects: services.NewProjectService(projects, objects, zerolog.Nop()),
		Orders:   services.NewOrderService(projects, zerolog.Nop()),
		Auth:     auth,
	}

	c := config.Config{"ACCEPTED_ORIGINS": "https://studio.example", "COOKIE_SECURE": "false"}
	handler := newRouter(svcs, fakePinger{}, withConfig(c), withStartupTime(time.Now()))

	return &testEnv{handler: handler, projects: projects, users: users, objects: objects, auth: auth}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	_, err := e.auth.Setup(context.Background(), "studio", "correct-horse")
	require.NoError(t, err)
	session, err := e.auth.Login(context.Background(), "studio", "correct-horse")
	require.NoError(t, err)
	return session.Token
}

func (e *testEnv) userToken(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("visitor-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, e.users.Add(context.Background(), &models.User{Name: "visitor", PasswordHash: string(hash), Role: models.RoleUser}))
	session, err := e.auth.Login(context.Background(), "visitor", "visitor-pass")
	require.NoError(t, err)
	return session.Token
}

func jsonRequest(method, target string, body any, token string) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

type filePart struct {
	field, name, contentType, body string
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files []filePart, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestResponder_OversizedResponseIsServerError(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponder(zerolog.Nop()).WriteJSON(w, strings.Repeat("x", maxResponseBytes))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode[ErrorResponse](t, w)
	assert.Equal(t, "Response too large", body.Error)
	assert.Contains(t, body.Details, "10 MB")
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Database)
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	env := setupTestRouter(t)
	svcs := &services.Services{
		Projects: services.NewProjectService(env.projects, env.objects, zerolog.Nop()),
		Orders:   services.NewOrderService(env.projects, zerolog.Nop()),
		Auth:     env.auth,
	}
	handler := newRouter(svcs, fakePinger{err: errors.New("down")})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	env := setupTestRouter(t)
	env.adminToken(t)

	wrong := env.do(jsonRequest(http.MethodPost, "/auth/session", CredentialsRequest{Name: "studio", Password: "nope-nope"}, ""))
	unknown := env.do(jsonRequest(http.MethodPost, "/auth/session", CredentialsRequest{Name: "ghost", Password: "correct-horse"}, ""))

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Empty(t, wrong.Result().Cookies())
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	env := setupTestRouter(t)
	env.adminToken(t)

	w := env.do(jsonRequest(http.MethodPost, "/auth/session", CredentialsRequest{Name: "studio", Password: "correct-horse"}, ""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	session := decode[services.Session](t, w)
	assert.Equal(t, models.RoleAdmin, session.Role)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, session.Token, cookie.Value)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)

	// The cookie alone authorizes admin routes.
	req := httptest.NewRequest(http.MethodGet, "/admin/projects", nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusOK, env.do(req).Code)

	logout := env.do(httptest.NewRequest(http.MethodDelete, "/auth/session", nil))
	assert.Equal(t, http.StatusOK, logout.Code)
	require.NotEmpty(t, logout.Result().Cookies())
	assert.Equal(t, -1, logout.Result().Cookies()[0].MaxAge)
}

func TestSetup_OnlyOnce(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(jsonRequest(http.MethodPost, "/auth/setup", CredentialsRequest{Name: "studio", Password: "correct-horse"}, ""))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "correct-horse")
	assert.NotContains(t, w.Body.String(), "passwordHash")

	w = env.do(jsonRequest(http.MethodPost, "/auth/setup", CredentialsRequest{Name: "other", Password: "correct-horse"}, ""))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminPage_Redirects(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/admin/projects", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth?from=%2Fadmin%2Fprojects", w.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/admin/projects", nil)
	req.Header.Set("Authorization", "Bearer "+env.userToken(t))
	w = env.do(req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/unauthorized", w.Header().Get("Location"))
}

func TestAdminAPI_RequiresAdmin(t *testing.T) {
	env := setupTestRouter(t)
	body := ReorderRequest{IDs: []string{uuid.NewString()}}

	w := env.do(jsonRequest(http.MethodPut, "/project/order", body, ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(jsonRequest(http.MethodPut, "/project/order", body, "not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(jsonRequest(http.MethodPut, "/project/order", body, env.userToken(t)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(httptest.NewRequest(http.MethodDelete, "/project/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func seedProjects(env *testEnv, n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range n {
		p := &models.Project{Title: "Project", Slug: uuid.NewString(), Location: "x", Description: "y", CoverImage: "c", DisplayOrder: i}
		env.projects.Seed(p)
		ids[i] = p.ID
	}
	return ids
}

func TestReorder(t *testing.T) {
	env := setupTestRouter(t)
	token := env.adminToken(t)
	ids := seedProjects(env, 3)

	body := map[string]any{"projects": []map[string]any{
		{"id": ids[2].String(), "displayOrder": 0},
		{"id": ids[0].String(), "displayOrder": 1},
		{"id": ids[1].String(), "displayOrder": 2},
	}}
	w := env.do(jsonRequest(http.MethodPut, "/project/order", body, token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(3), decode[ReorderResponse](t, w).Modified)

	w = env.do(jsonRequest(http.MethodPut, "/project/order", body, token))
	assert.Equal(t, int64(0), decode[ReorderResponse](t, w).Modified)

	w = env.do(httptest.NewRequest(http.MethodGet, "/projects", nil))
	page := decode[services.ProjectPage](t, w)
	require.Len(t, page.Projects, 3)
	assert.Equal(t, ids[2], page.Projects[0].ID)
}

func TestReorder_Errors(t *testing.T) {
	env := setupTestRouter(t)
	token := env.adminToken(t)
	ids := seedProjects(env, 2)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"empty", ReorderRequest{}, http.StatusBadRequest},
		{"malformed", ReorderRequest{IDs: []string{"nope"}}, http.StatusBadRequest},
		{"duplicate", ReorderRequest{IDs: []string{ids[0].String(), ids[0].String()}}, http.StatusBadRequest},
		{"unknown", ReorderRequest{IDs: []string{ids[1].String(), uuid.NewString(), ids[0].String()}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(jsonRequest(http.MethodPut, "/project/order", tt.body, token))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, ids, env.projects.Order(), "failed requests write nothing")

	req := httptest.NewRequest(http.MethodPut, "/project/order", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, env.do(req).Code)
}

func TestCreateUpdateDeleteProject(t *testing.T) {
	env := setupTestRouter(t)
	token := env.adminToken(t)

	fields := map[string]string{
		"title":       "My House",
		"location":    "Porto",
		"description": "Stone house",
		"category":    "interior",
		"tags":        `["stone","stone","river"]`,
	}
	files := []filePart{
		{"coverImage", "cover.jpg", "image/jpeg", "c"},
		{"projectImage-1", "b.png", "image/png", "b"},
		{"projectImage-0", "a.png", "image/png", "a"},
	}

	w := env.do(multipartRequest(t, http.MethodPost, "/project", fields, files, token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Project](t, w)
	assert.Equal(t, "my-house", created.Slug)
	assert.Equal(t, models.CategoryInterior, created.Category)
	assert.Equal(t, []string{"stone", "river"}, []string(created.Tags))
	require.Len(t, created.GalleryImages, 2)
	assert.Contains(t, created.GalleryImages[0], "gallery-a-")
	assert.Contains(t, created.GalleryImages[1], "gallery-b-")

	w = env.do(multipartRequest(t, http.MethodPost, "/project", fields, files, token))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "my-house-1", decode[models.Project](t, w).Slug)

	w = env.do(httptest.NewRequest(http.MethodGet, "/project/slug/my-house", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/project/slug-check?title=My+House", nil))
	assert.Equal(t, services.SlugSuggestion{Exists: true, SuggestedSlug: "my-house-2"}, decode[services.SlugSuggestion](t, w))

	removed, _ := json.Marshal([]string{created.GalleryImages[0]})
	w = env.do(multipartRequest(t, http.MethodPut, "/project/"+created.ID.String(),
		map[string]string{"client": "Rui", "removedImages": string(removed)}, nil, token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Project](t, w)
	assert.Equal(t, "Rui", updated.Client)
	assert.Equal(t, "My House", updated.Title)
	assert.Len(t, updated.GalleryImages, 1)
	assert.False(t, env.objects.Has(created.GalleryImages[0]))

	w = env.do(jsonRequest(http.MethodDelete, "/project/"+created.ID.String(), nil, token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, env.objects.Has(created.CoverImage))

	w = env.do(httptest.NewRequest(http.MethodGet, "/project/"+created.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProject_ValidationFields(t *testing.T) {
	env := setupTestRouter(t)
	token := env.adminToken(t)

	w := env.do(multipartRequest(t, http.MethodPost, "/project", map[string]string{"title": "Only title"}, nil, token))
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[ErrorResponse](t, w)
	assert.Contains(t, resp.Fields, "location")
	assert.Contains(t, resp.Fields, "description")
	assert.Contains(t, resp.Fields, "coverImage")
	assert.NotContains(t, resp.Fields, "title")

	w = env.do(jsonRequest(http.MethodPost, "/project", map[string]string{"title": "x"}, token))
	assert.Equal(t, http.StatusBadRequest, w.Code, "json body is not a multipart form")

	w = env.do(multipartRequest(t, http.MethodPost, "/project",
		map[string]string{"title": "t", "location": "l", "description": "d", "tags": "not json"},
		[]filePart{{"coverImage", "c.jpg", "image/jpeg", "c"}}, token))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(multipartRequest(t, http.MethodPost, "/project",
		map[string]string{"title": "t", "location": "l", "description": "d"},
		[]filePart{{"coverImage", "c.gif", "image/gif", "c"}}, token))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestGalleryEndpoints(t *testing.T) {
	env := setupTestRouter(t)
	token := env.adminToken(t)
	ids := seedProjects(env, 1)

	w := env.do(multipartRequest(t, http.MethodPost, "/project/gallery",
		map[string]string{"projectId": ids[0].String()},
		[]filePart{{"galleryImage", "extra.webp", "image/webp", "e"}}, token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	added := decode[GalleryImageResponse](t, w)
	assert.True(t, env.objects.Has(added.ImageURL))

	target := "/project/gallery?" + url.Values{"projectId": {ids[0].String()}, "imageUrl": {added.ImageURL}}.Encode()
	w = env.do(jsonRequest(http.MethodDelete, target, nil, token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, env.objects.Has(added.ImageURL))

	w = env.do(jsonRequest(http.MethodDelete, target, nil, token))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(multipartRequest(t, http.MethodPost, "/project/gallery",
		map[string]string{"projectId": ids[0].String()}, nil, token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectsList_Filters(t *testing.T) {
	env := setupTestRouter(t)
	seedProjects(env, 3)

	w := env.do(httptest.NewRequest(http.MethodGet, "/projects?category=product", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[services.ProjectPage](t, w).Projects)

	w = env.do(httptest.NewRequest(http.MethodGet, "/projects?limit=2&page=2", nil))
	page := decode[services.ProjectPage](t, w)
	assert.Len(t, page.Projects, 1)
	assert.Equal(t, int64(3), page.Total)

	w = env.do(httptest.NewRequest(http.MethodGet, "/projects?category=garden", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/project/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/projects", nil)
	req.Header.Set("Origin", "https://studio.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := env.do(req)
	assert.Equal(t, "https://studio.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/projects", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w = env.do(req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
