// Package site serves the portfolio: the single page with its four sections,
// the contact endpoint, the admin area and the operational endpoints.
package site

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"pkt.systems/pslog"

	"github.com/wxmohd/walaa-dev/internal/config"
	"github.com/wxmohd/walaa-dev/internal/contact"
	"github.com/wxmohd/walaa-dev/internal/contact/api"
	"github.com/wxmohd/walaa-dev/internal/mail"
	"github.com/wxmohd/walaa-dev/internal/section"
	"github.com/wxmohd/walaa-dev/internal/store"
	"github.com/wxmohd/walaa-dev/internal/terminal"
)

// SplashDuration is how long the loading screen shows on first paint.
const SplashDuration = 1500 * time.Millisecond

//go:embed templates/*.html static
var assets embed.FS

// Options are the dependencies of a Server. Config and Sender are required.
// Without a Store the admin area, visitor tracking and the inbox are off.
type Options struct {
	Config *config.Config
	Sender mail.Sender
	Store  *store.Store
	Logger pslog.Logger
	Now    func() time.Time
}

type Server struct {
	engine  *gin.Engine
	content *Content
	metrics *metrics
	admin   *admin
	logger  pslog.Logger
}

type navItem struct {
	ID    section.ID
	Label string
	Path  string
}

var navLabels = map[section.ID]string{
	section.Home:     "Home",
	section.About:    "About",
	section.Projects: "Projects",
	section.Contact:  "Contact",
}

func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Sender == nil {
		return nil, errors.New("site: config and sender are required")
	}
	if opts.Logger == nil {
		opts.Logger = pslog.Ctx(context.Background())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	content, err := BuildContent()
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"sectionPath": section.Path,
		"ms":          func(d time.Duration) int64 { return d.Milliseconds() },
	}).ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}

	s := &Server{
		engine:  gin.New(),
		content: content,
		metrics: newMetrics(),
		logger:  opts.Logger,
	}

	r := s.engine
	r.Use(gin.Recovery(), s.requestLogger())
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(static))

	var inbox api.Inbox
	if opts.Store != nil {
		s.admin, err = newAdmin(opts.Store, opts.Config.AdminUsername, opts.Config.AdminPassword, opts.Logger, opts.Now)
		if err != nil {
			return nil, err
		}
		if opts.Config.TrackVisitors {
			r.Use(s.admin.trackVisitors())
		}
		s.admin.register(r)
		inbox = opts.Store
	}

	for _, id := range section.Order {
		r.GET(section.Path(id), s.page(id))
	}

	api.NewHandler(api.HandlerConfig{
		Sender:      opts.Sender,
		To:          opts.Config.ContactToEmail,
		From:        opts.Config.ContactFromEmail,
		Inbox:       inbox,
		Submissions: s.metrics.submissions,
		Logger:      opts.Logger,
		Now:         opts.Now,
	}).Register(r)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Config.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	}
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Maintain runs the visitor retention cleanup now and then daily until ctx
// ends. It returns immediately when the admin area is disabled.
func (s *Server) Maintain(ctx context.Context) {
	if s.admin == nil {
		return
	}
	s.admin.cleanupVisits(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.admin.cleanupVisits(ctx)
		}
	}
}

func (s *Server) page(initial section.ID) gin.HandlerFunc {
	nav := make([]navItem, 0, len(section.Order))
	for _, id := range section.Order {
		nav = append(nav, navItem{ID: id, Label: navLabels[id], Path: section.Path(id)})
	}
	return func(c *gin.Context) {
		s.metrics.pageViews.WithLabelValues(string(initial)).Inc()
		c.HTML(http.StatusOK, "index.html", gin.H{
			"title":           "Walaa Mohamed | Creative Developer",
			"active":          initial,
			"nav":             nav,
			"content":         s.content,
			"terminalText":    terminal.Render(terminal.DefaultScript),
			"splash":          SplashDuration,
			"contactEndpoint": contact.Endpoint,
			"year":            time.Now().Year(),
		})
	}
}

// requestLogger puts the logger on the request context and logs every
// request once it completes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(pslog.ContextWithLogger(c.Request.Context(), s.logger))
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
