package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vtarasov/blog-service/internal/config"
	"github.com/vtarasov/blog-service/internal/middleware"
	"github.com/vtarasov/blog-service/internal/repository/inmemory"
	"github.com/vtarasov/blog-service/internal/service"
	"github.com/vtarasov/blog-service/internal/token"
)

type testServer struct {
	router *mux.Router
	store  *inmemory.Store
	cfg    *config.Config
}

// newTestServer wires the handler stack the same way cmd/api does
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := inmemory.New()
	tokens := token.NewManager("test-secret", time.Hour)
	svc := service.NewService(store, logger, tokens, nil)
	cfg := &config.Config{
		UploadDir: t.TempDir(),
		BaseURL:   "http://api.test",
		ClientURL: "http://client.test",
	}
	h := NewHandler(svc, logger, cfg)

	r := mux.NewRouter()
	auth := middleware.AuthMiddleware(tokens, store, logger)
	optionalAuth := middleware.OptionalAuthMiddleware(tokens, store)
	admin := middleware.AdminMiddleware(tokens, store, logger)

	r.HandleFunc("/", h.Health).Methods("GET")
	r.HandleFunc("/feed.xml", h.Feed).Methods("GET")
	r.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/api/auth/user/{id}", h.GetUser).Methods("GET")
	r.Handle("/api/posts", optionalAuth(http.HandlerFunc(h.ListPosts))).Methods("GET")
	r.Handle("/api/posts/{id}", optionalAuth(http.HandlerFunc(h.GetPost))).Methods("GET")

	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(auth)
	authRouter.HandleFunc("/api/auth", h.CurrentUser).Methods("GET")
	authRouter.HandleFunc("/api/auth/profile", h.UpdateProfile).Methods("PUT")
	authRouter.HandleFunc("/api/posts", h.CreatePost).Methods("POST")
	authRouter.HandleFunc("/api/posts/{id}", h.UpdatePost).Methods("PUT")
	authRouter.HandleFunc("/api/posts/{id}", h.DeletePost).Methods("DELETE")
	authRouter.HandleFunc("/api/posts/{id}/like", h.ToggleLike).Methods("PATCH")
	authRouter.HandleFunc("/api/posts/{id}/comments", h.AddComment).Methods("POST")
	authRouter.HandleFunc("/api/posts/{id}/comments/{commentID}", h.DeleteComment).Methods("DELETE")
	authRouter.HandleFunc("/api/upload", h.Upload).Methods("POST")

	adminRouter := r.PathPrefix("/").Subrouter()
	adminRouter.Use(admin)
	adminRouter.HandleFunc("/api/admin/users", h.AdminListUsers).Methods("GET")
	adminRouter.HandleFunc("/api/admin/users/{id}", h.AdminDeleteUser).Methods("DELETE")
	adminRouter.HandleFunc("/api/admin/posts", h.AdminListPosts).Methods("GET")
	adminRouter.HandleFunc("/api/admin/posts/{id}", h.AdminDeletePost).Methods("DELETE")
	adminRouter.HandleFunc("/api/admin/make-admin", h.MakeAdmin).Methods("POST")
	adminRouter.HandleFunc("/api/analytics/stats", h.Stats).Methods("GET")
	adminRouter.HandleFunc("/api/analytics/recent-activity", h.RecentActivity).Methods("GET")

	return &testServer{router: r, store: store, cfg: cfg}
}

func (s *testServer) do(t *testing.T, method, path, authToken string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if authToken != "" {
		req.Header.Set(middleware.AuthHeader, authToken)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *testServer) registerUser(t *testing.T, username, email, password string) string {
	t.Helper()
	rec := s.do(t, "POST", "/api/auth/register", "", map[string]string{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["token"].(string)
}

func TestRegisterLoginFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "POST", "/api/auth/register", "", map[string]string{
		"username": "a", "email": "a@x.com", "password": "p",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])

	rec = s.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid credentials", decodeBody(t, rec)["message"])

	rec = s.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "p",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["token"])
}

func TestRegisterDuplicate(t *testing.T) {
	s := newTestServer(t)
	s.registerUser(t, "a", "a@x.com", "p")

	rec := s.do(t, "POST", "/api/auth/register", "", map[string]string{
		"username": "b", "email": "a@x.com", "password": "p",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "already exists")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "POST", "/api/posts", "", map[string]string{"title": "T", "content": "C"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, "GET", "/api/auth", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPostLifecycle(t *testing.T) {
	s := newTestServer(t)
	authorToken := s.registerUser(t, "alice", "a@x.com", "p")
	readerToken := s.registerUser(t, "bob", "b@x.com", "p")

	rec := s.do(t, "POST", "/api/posts", authorToken, map[string]any{
		"title": "Hello", "content": "<p>World</p>", "tags": []string{"go"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	postID := int64(decodeBody(t, rec)["id"].(float64))

	rec = s.do(t, "GET", fmt.Sprintf("/api/posts/%d", postID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decodeBody(t, rec)["author_name"])

	// Like toggle pair
	rec = s.do(t, "PATCH", fmt.Sprintf("/api/posts/%d/like", postID), readerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(1), body["likes"])

	rec = s.do(t, "PATCH", fmt.Sprintf("/api/posts/%d/like", postID), readerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["likes"])

	// Comment, then only the author may delete
	rec = s.do(t, "POST", fmt.Sprintf("/api/posts/%d/comments", postID), readerToken, map[string]string{"text": "nice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	commentID := int64(decodeBody(t, rec)["id"].(float64))

	rec = s.do(t, "DELETE", fmt.Sprintf("/api/posts/%d/comments/%d", postID, commentID), authorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, "DELETE", fmt.Sprintf("/api/posts/%d/comments/%d", postID, commentID), readerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, "GET", fmt.Sprintf("/api/posts/%d", postID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["comments"])

	// Stranger cannot edit, author can
	rec = s.do(t, "PUT", fmt.Sprintf("/api/posts/%d", postID), readerToken, map[string]string{"title": "X", "content": "Y"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, "DELETE", fmt.Sprintf("/api/posts/%d", postID), authorToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, "GET", fmt.Sprintf("/api/posts/%d", postID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	userToken := s.registerUser(t, "alice", "a@x.com", "p")
	adminToken := s.registerUser(t, "root", "root@x.com", "p")
	_, err := s.store.SetAdminByEmail("root@x.com")
	require.NoError(t, err)

	rec := s.do(t, "GET", "/api/analytics/stats", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, "GET", "/api/analytics/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["total_users"])

	rec = s.do(t, "GET", "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, "POST", "/api/admin/make-admin", adminToken, map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, "GET", "/api/analytics/recent-activity", userToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "promoted user passes the admin gate")
}

func TestFeed(t *testing.T) {
	s := newTestServer(t)
	authorToken := s.registerUser(t, "alice", "a@x.com", "p")

	rec := s.do(t, "POST", "/api/posts", authorToken, map[string]any{
		"title": "Feed Me", "content": "<p>body</p>", "tags": []string{"go"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, "GET", "/feed.xml", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/rss+xml")
	assert.Contains(t, rec.Body.String(), "<title>Feed Me</title>")
	assert.Contains(t, rec.Body.String(), "<category>go</category>")
}

func TestUpload(t *testing.T) {
	s := newTestServer(t)
	authToken := s.registerUser(t, "alice", "a@x.com", "p")

	makeBody := func(fieldName, fileName string) (*bytes.Buffer, string) {
		buf := &bytes.Buffer{}
		w := multipart.NewWriter(buf)
		part, err := w.CreateFormFile(fieldName, fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf, w.FormDataContentType()
	}

	body, contentType := makeBody("image", "cover.png")
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.AuthHeader, authToken)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	url := decodeBody(t, rec)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "http://api.test/uploads/"))

	name := strings.TrimPrefix(url, "http://api.test/uploads/")
	_, err := os.Stat(filepath.Join(s.cfg.UploadDir, name))
	assert.NoError(t, err, "uploaded file stored on disk")

	// Unsupported extension is rejected
	body, contentType = makeBody("image", "evil.exe")
	req = httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.AuthHeader, authToken)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Oversized uploads get a distinct rejection
	big := &bytes.Buffer{}
	mw := multipart.NewWriter(big)
	part, err := mw.CreateFormFile("image", "big.png")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), maxUploadSize+1))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req = httptest.NewRequest("POST", "/api/upload", big)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.AuthHeader, authToken)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "file too large", decodeBody(t, rec)["message"])
}
