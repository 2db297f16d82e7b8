package site

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pkt.systems/pslog"

	"github.com/wxmohd/walaa-dev/internal/config"
	"github.com/wxmohd/walaa-dev/internal/mail"
	"github.com/wxmohd/walaa-dev/internal/store"
)

type testSite struct {
	srv     *Server
	store   *store.Store
	sent    []mail.Message
	sendErr error
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.Default()
	cfg.AdminUsername = "walaa"
	cfg.AdminPassword = "s3cret"

	ts := &testSite{store: st}
	srv, err := New(Options{
		Config: cfg,
		Store:  st,
		Sender: mail.SenderFunc(func(ctx context.Context, msg mail.Message) error {
			ts.sent = append(ts.sent, msg)
			return ts.sendErr
		}),
		Logger: pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true}),
		Now:    func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	ts.srv = srv
	return ts
}

func (ts *testSite) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, req)
	return w
}

func (ts *testSite) get(path string) *httptest.ResponseRecorder {
	return ts.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (ts *testSite) login(t *testing.T) *http.Cookie {
	t.Helper()
	form := url.Values{"username": {"walaa"}, "password": {"s3cret"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := ts.do(req)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	for _, c := range w.Result().Cookies() {
		if c.Name == adminCookie {
			return c
		}
	}
	t.Fatal("no admin cookie set")
	return nil
}

func TestPages(t *testing.T) {
	ts := newTestSite(t)

	w := ts.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Walaa Mohamed")
	assert.Contains(t, body, `class="nav-link active" href="/" data-section="home"`)
	assert.Contains(t, body, "AI Threat Detection")
	assert.Contains(t, body, "<strong>Go</strong>", "project descriptions are rendered markdown")
	assert.Contains(t, body, `id="contact-form"`)
	assert.Contains(t, body, `data-duration-ms="1500"`)

	w = ts.get("/projects")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="nav-link active" href="/projects" data-section="projects"`)

	assert.Equal(t, http.StatusNotFound, ts.get("/blog").Code)
	assert.Equal(t, http.StatusOK, ts.get("/static/app.js").Code)
	assert.Equal(t, http.StatusOK, ts.get("/healthz").Code)
}

func TestContactEndpoint(t *testing.T) {
	ts := newTestSite(t)

	req := httptest.NewRequest(http.MethodPost, "/api/contact",
		strings.NewReader(`{"name":"A","email":"a@b.com","message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := ts.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Email sent successfully"}`, w.Body.String())

	require.Len(t, ts.sent, 1)
	assert.Equal(t, "your-email@example.com", ts.sent[0].To)
	assert.Equal(t, "your-verified-sender@example.com", ts.sent[0].From)

	msgs, err := ts.store.ListMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Body)

	w = ts.get("/api/contact")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Method not allowed"}`, w.Body.String())

	ts.sendErr = errors.New("sendgrid: 401 invalid key")
	req = httptest.NewRequest(http.MethodPost, "/api/contact",
		strings.NewReader(`{"name":"A","email":"a@b.com","message":"hi"}`))
	w = ts.do(req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Error sending email"}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	ts := newTestSite(t)
	ts.get("/")
	ts.get("/about")
	ts.get("/api/contact")

	w := ts.get("/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `portfolio_page_views_total{section="home"} 1`)
	assert.Contains(t, body, `portfolio_page_views_total{section="about"} 1`)
	assert.Contains(t, body, `portfolio_contact_submissions_total{result="method_not_allowed"} 1`)
}

func TestVisitorTracking(t *testing.T) {
	ts := newTestSite(t)
	ctx := context.Background()

	ts.get("/")
	ts.get("/static/style.css")
	ts.get("/admin/login")
	ts.get("/missing")

	dnt := httptest.NewRequest(http.MethodGet, "/about", nil)
	dnt.Header.Set("DNT", "1")
	ts.do(dnt)

	visits, err := ts.store.RecentVisits(ctx, 10)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, "/", visits[0].Path)
	assert.Len(t, visits[0].HashedIP, 16)
	assert.NotContains(t, visits[0].HashedIP, "192.0.2.1")
}

func TestAdmin(t *testing.T) {
	ts := newTestSite(t)
	ctx := context.Background()
	require.NoError(t, ts.store.SaveMessage(ctx, store.Message{
		ID: "m-1", Name: "Grace", Email: "grace@example.com", Body: "Loved the site", Delivered: true,
		ReceivedAt: time.Now(),
	}))

	w := ts.get("/admin/dashboard")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	form := url.Values{"username": {"walaa"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = ts.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")

	cookie := ts.login(t)
	authed := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.AddCookie(cookie)
		return ts.do(req)
	}

	w = authed(http.MethodGet, "/admin/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Loved the site")

	w = authed(http.MethodGet, "/admin/api/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var stats store.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.TotalMessages)

	w = authed(http.MethodGet, "/admin/export/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "admin-stats.json")

	w = authed(http.MethodGet, "/admin/api/messages")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "grace@example.com")

	assert.Equal(t, http.StatusOK, authed(http.MethodDelete, "/admin/messages/m-1").Code)
	assert.Equal(t, http.StatusNotFound, authed(http.MethodDelete, "/admin/messages/m-1").Code)

	w = authed(http.MethodGet, "/admin/logout")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestNew_RequiresSender(t *testing.T) {
	_, err := New(Options{Config: config.Default()})
	assert.Error(t, err)
}

func TestNew_WithoutStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv, err := New(Options{
		Config: config.Default(),
		Sender: mail.SenderFunc(func(ctx context.Context, msg mail.Message) error { return nil }),
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv.Maintain(ctx)
}

func TestAdmin_LockedInReleaseWithoutCredentials(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	var logs bytes.Buffer
	srv, err := New(Options{
		Config: config.Default(),
		Store:  st,
		Sender: mail.SenderFunc(func(ctx context.Context, msg mail.Message) error { return nil }),
		Logger: pslog.NewWithOptions(&logs, pslog.Options{Mode: pslog.ModeStructured, NoColor: true}),
	})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "admin area disabled")

	serve := func(req *http.Request) int {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		return w.Code
	}

	form := url.Values{"username": {"admin"}, "password": {"admin123"}}
	login := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	login.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusNotFound, serve(login))
	assert.Equal(t, http.StatusNotFound, serve(httptest.NewRequest(http.MethodGet, "/admin/api/messages", nil)))
	assert.Equal(t, http.StatusNotFound, serve(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)))
	assert.Equal(t, http.StatusOK, serve(httptest.NewRequest(http.MethodGet, "/privacy", nil)))

	assert.Equal(t, http.StatusOK, serve(httptest.NewRequest(http.MethodGet, "/", nil)))
	visits, err := st.RecentVisits(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, visits, 1, "visitor tracking stays on")
}

func TestAdmin_DefaultCredentialsOutsideRelease(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	a, err := newAdmin(st, "", "", pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured}), time.Now)
	require.NoError(t, err)
	assert.False(t, a.locked)
	assert.Equal(t, "admin", a.username)
	assert.Equal(t, "admin123", a.password)
}
