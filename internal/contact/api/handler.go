// Package api serves the contact endpoint: it validates submissions, forwards
// them by email and keeps a copy in the inbox.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"pkt.systems/pslog"

	"github.com/wxmohd/walaa-dev/internal/contact"
	"github.com/wxmohd/walaa-dev/internal/mail"
	"github.com/wxmohd/walaa-dev/internal/store"
)

// Public answers of the endpoint. Internal errors never reach the caller.
const (
	MsgMethodNotAllowed = "Method not allowed"
	MsgMissingFields    = "Missing required fields"
	MsgSent             = "Email sent successfully"
	MsgSendFailed       = "Error sending email"
)

// Values of the result label on the submissions counter.
const (
	ResultSent             = "sent"
	ResultInvalid          = "invalid"
	ResultFailed           = "failed"
	ResultMethodNotAllowed = "method_not_allowed"
)

// Inbox keeps a copy of every accepted submission.
type Inbox interface {
	SaveMessage(ctx context.Context, m store.Message) error
}

// HandlerConfig wires the endpoint to its collaborators. Sender, To and From
// are required; the rest is optional.
type HandlerConfig struct {
	Sender mail.Sender
	To     string
	From   string

	Inbox       Inbox
	Submissions *prometheus.CounterVec
	Logger      pslog.Logger
	Now         func() time.Time
}

// Handler serves the contact endpoint.
type Handler struct {
	cfg HandlerConfig
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Handler{cfg: cfg}
}

// request accepts the JSON body sent by the browser client as well as a
// native form post.
type request struct {
	Name    string `json:"name" form:"name" binding:"required"`
	Email   string `json:"email" form:"email" binding:"required"`
	Message string `json:"message" form:"message" binding:"required"`
}

// Register mounts the handler on every method of contact.Endpoint so that
// non-POST requests get the JSON 405 instead of gin's default 404.
func (h *Handler) Register(r gin.IRoutes) {
	r.Any(contact.Endpoint, h.Handle)
}

func (h *Handler) Handle(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		h.count(ResultMethodNotAllowed)
		c.Header("Allow", http.MethodPost)
		c.JSON(http.StatusMethodNotAllowed, contact.Response{Success: false, Message: MsgMethodNotAllowed})
		return
	}

	var req request
	if err := c.ShouldBind(&req); err != nil {
		h.count(ResultInvalid)
		c.JSON(http.StatusBadRequest, contact.Response{Success: false, Message: MsgMissingFields})
		return
	}
	fields := contact.Fields{Name: req.Name, Email: req.Email, Message: req.Message}

	ctx := c.Request.Context()
	log := h.logger(ctx)

	msg, err := Compose(fields, h.cfg.To, h.cfg.From)
	if err == nil {
		err = h.cfg.Sender.Send(ctx, msg)
	}
	h.record(ctx, log, fields, err)

	if err != nil {
		h.count(ResultFailed)
		log.With("err", err).Error("error sending contact email")
		c.JSON(http.StatusInternalServerError, contact.Response{Success: false, Message: MsgSendFailed})
		return
	}

	h.count(ResultSent)
	log.Info("contact email sent", "reply_to", fields.Email)
	c.JSON(http.StatusOK, contact.Response{Success: true, Message: MsgSent})
}

func (h *Handler) record(ctx context.Context, log pslog.Logger, fields contact.Fields, sendErr error) {
	if h.cfg.Inbox == nil {
		return
	}
	m := store.Message{
		ID:         uuid.NewString(),
		Name:       fields.Name,
		Email:      fields.Email,
		Body:       fields.Message,
		Delivered:  sendErr == nil,
		ReceivedAt: h.cfg.Now(),
	}
	if sendErr != nil {
		m.Error = sendErr.Error()
	}
	if err := h.cfg.Inbox.SaveMessage(ctx, m); err != nil {
		log.With("err", err).Warn("could not store contact message")
	}
}

func (h *Handler) count(result string) {
	if h.cfg.Submissions != nil {
		h.cfg.Submissions.WithLabelValues(result).Inc()
	}
}

func (h *Handler) logger(ctx context.Context) pslog.Logger {
	if h.cfg.Logger != nil {
		return h.cfg.Logger
	}
	return pslog.Ctx(ctx)
}
