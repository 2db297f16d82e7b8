package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pkt.systems/pslog"

	"github.com/wxmohd/walaa-dev/internal/contact"
	"github.com/wxmohd/walaa-dev/internal/mail"
	"github.com/wxmohd/walaa-dev/internal/store"
)

type fakeInbox struct {
	saved []store.Message
	err   error
}

func (f *fakeInbox) SaveMessage(ctx context.Context, m store.Message) error {
	f.saved = append(f.saved, m)
	return f.err
}

type harness struct {
	router  *gin.Engine
	sent    []mail.Message
	sendErr error
	inbox   *fakeInbox
	counter *prometheus.CounterVec
	logs    *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		router: gin.New(),
		inbox:  &fakeInbox{},
		counter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_contact_submissions_total",
		}, []string{"result"}),
		logs: &bytes.Buffer{},
	}
	logger := pslog.NewWithOptions(h.logs, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.InfoLevel,
	})
	sender := mail.SenderFunc(func(ctx context.Context, msg mail.Message) error {
		h.sent = append(h.sent, msg)
		return h.sendErr
	})
	NewHandler(HandlerConfig{
		Sender:      sender,
		To:          "owner@example.com",
		From:        "sender@example.com",
		Inbox:       h.inbox,
		Submissions: h.counter,
		Logger:      logger,
		Now:         func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}).Register(h.router)
	return h
}

func (h *harness) send(method, contentType, body string) (*httptest.ResponseRecorder, contact.Response) {
	req := httptest.NewRequest(method, contact.Endpoint, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var resp contact.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func (h *harness) do(method, body string) (*httptest.ResponseRecorder, contact.Response) {
	return h.send(method, "application/json", body)
}

func filled(f *contact.Flow) {
	f.Set(contact.FieldName, "A")
	f.Set(contact.FieldEmail, "a@b.com")
	f.Set(contact.FieldMessage, "hi")
}

func TestHandle_Success(t *testing.T) {
	h := newHarness(t)

	w, resp := h.do(http.MethodPost, `{"name":"A","email":"a@b.com","message":"hi"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contact.Response{Success: true, Message: MsgSent}, resp)

	require.Len(t, h.sent, 1)
	msg := h.sent[0]
	assert.Equal(t, "owner@example.com", msg.To)
	assert.Equal(t, "sender@example.com", msg.From)
	assert.Equal(t, "a@b.com", msg.ReplyTo)
	assert.Equal(t, "New Contact Form Submission from A", msg.Subject)

	require.Len(t, h.inbox.saved, 1)
	assert.True(t, h.inbox.saved[0].Delivered)
	assert.Equal(t, "hi", h.inbox.saved[0].Body)
	assert.NotEmpty(t, h.inbox.saved[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.counter.WithLabelValues(ResultSent)))
}

func TestHandle_FormPost(t *testing.T) {
	h := newHarness(t)

	form := url.Values{"name": {"A"}, "email": {"a@b.com"}, "message": {"hi"}}
	w, resp := h.send(http.MethodPost, "application/x-www-form-urlencoded", form.Encode())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contact.Response{Success: true, Message: MsgSent}, resp)
	require.Len(t, h.sent, 1)
	assert.Equal(t, "a@b.com", h.sent[0].ReplyTo)

	w, resp = h.send(http.MethodPost, "application/x-www-form-urlencoded", "name=A&email=a%40b.com&message=")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, contact.Response{Success: false, Message: MsgMissingFields}, resp)
	assert.Len(t, h.sent, 1)
}

func TestHandle_MissingField(t *testing.T) {
	h := newHarness(t)

	for _, body := range []string{
		`{"name":"A","email":"a@b.com"}`,
		`{"name":"A","email":"a@b.com","message":""}`,
		`not json`,
		``,
	} {
		w, resp := h.do(http.MethodPost, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, contact.Response{Success: false, Message: MsgMissingFields}, resp, body)
	}
	assert.Empty(t, h.sent)
	assert.Empty(t, h.inbox.saved)
	assert.Equal(t, 4.0, testutil.ToFloat64(h.counter.WithLabelValues(ResultInvalid)))
}

func TestHandle_MethodNotAllowed(t *testing.T) {
	h := newHarness(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w, resp := h.do(method, "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, contact.Response{Success: false, Message: MsgMethodNotAllowed}, resp)
		assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
	}
	assert.Empty(t, h.sent)
}

func TestHandle_ProviderErrorIsNotLeaked(t *testing.T) {
	h := newHarness(t)
	h.sendErr = &mail.ProviderError{Provider: "sendgrid", StatusCode: 401, Body: "secret-api-detail"}

	w, resp := h.do(http.MethodPost, `{"name":"A","email":"a@b.com","message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, contact.Response{Success: false, Message: MsgSendFailed}, resp)
	assert.NotContains(t, w.Body.String(), "secret-api-detail")

	assert.Contains(t, h.logs.String(), "secret-api-detail", "underlying error is logged")
	require.Len(t, h.inbox.saved, 1)
	assert.False(t, h.inbox.saved[0].Delivered)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.counter.WithLabelValues(ResultFailed)))
}

func TestHandle_InboxFailureDoesNotChangeAnswer(t *testing.T) {
	h := newHarness(t)
	h.inbox.err = errors.New("database is locked")

	w, resp := h.do(http.MethodPost, `{"name":"A","email":"a@b.com","message":"hi"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestCompose_EscapesHTML(t *testing.T) {
	msg, err := Compose(contact.Fields{
		Name:    "<b>Eve</b>",
		Email:   "eve@example.com",
		Message: `<script>alert("x")</script>`,
	}, "to@example.com", "from@example.com")
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.HTML, "&lt;b&gt;Eve&lt;/b&gt;")
	assert.Contains(t, msg.Text, `Message: <script>alert("x")</script>`)
	assert.Equal(t, "New Contact Form Submission from <b>Eve</b>", msg.Subject)
}

func TestFlowOverHTTPRelay(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.router)
	defer srv.Close()

	flow := contact.NewFlow(contact.NewHTTPRelay(srv.URL+contact.Endpoint), contact.WithResetDelay(time.Hour))
	defer flow.Close()
	filled(flow)
	require.NoError(t, flow.Submit(context.Background()))
	assert.Equal(t, contact.Succeeded, flow.Snapshot().Status)

	h.sendErr = errors.New("smtp down")
	flow2 := contact.NewFlow(contact.NewHTTPRelay(srv.URL+contact.Endpoint))
	filled(flow2)
	err := flow2.Submit(context.Background())

	var relayErr *contact.RelayError
	require.True(t, errors.As(err, &relayErr))
	assert.Equal(t, http.StatusInternalServerError, relayErr.StatusCode)
	assert.Equal(t, MsgSendFailed, relayErr.Message)
	assert.Equal(t, contact.Failed, flow2.Snapshot().Status)
}
