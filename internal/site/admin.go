package site

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"pkt.systems/pslog"

	"github.com/wxmohd/walaa-dev/internal/store"
)

const (
	adminCookie = "admin_token"
	// visitRetention is how long hashed visitor rows are kept.
	visitRetention = 12 * 30 * 24 * time.Hour
)

// admin is the privacy-conscious admin area: visitor stats with hashed IPs
// and the contact inbox.
type admin struct {
	store    *store.Store
	username string
	password string
	token    string
	salt     string
	logger   pslog.Logger
	now      func() time.Time

	// locked disables the login and every authenticated route.
	locked bool
}

func newAdmin(st *store.Store, username, password string, logger pslog.Logger, now func() time.Time) (*admin, error) {
	token, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("generating admin token: %w", err)
	}
	salt, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("generating hashing salt: %w", err)
	}

	// Release mode never falls back to the default credentials.
	locked := false
	if username == "" || password == "" {
		if gin.Mode() == gin.ReleaseMode {
			locked = true
			logger.Error("admin area disabled, set ADMIN_USERNAME and ADMIN_PASSWORD")
		} else {
			if username == "" {
				username = "admin"
				logger.Warn("using default admin username, set ADMIN_USERNAME")
			}
			if password == "" {
				password = "admin123"
				logger.Warn("using default admin password, set ADMIN_PASSWORD")
			}
		}
	}
	return &admin{
		store:    st,
		username: username,
		password: password,
		token:    token,
		salt:     salt,
		logger:   logger,
		now:      now,
		locked:   locked,
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashIP is stable per address for the lifetime of the process.
func (a *admin) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + a.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (a *admin) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || !equal(token, a.token) {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// trackVisitors records page views with hashed addresses. Static files,
// admin pages, the API and visitors sending DNT are skipped.
func (a *admin) trackVisitors() gin.HandlerFunc {
	skip := []string{"/static/", "/admin/", "/api/", "/favicon", "/privacy", "/metrics", "/healthz"}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range skip {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}
		if c.GetHeader("DNT") == "1" || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		visit := store.Visit{
			HashedIP:  a.hashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			Timestamp: a.now(),
		}
		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		if err := a.store.RecordVisit(context.WithoutCancel(c.Request.Context()), visit); err != nil {
			a.logger.With("err", err).Warn("error recording visitor")
		}
	}
}

// cleanupVisits drops visitor rows past the retention window.
func (a *admin) cleanupVisits(ctx context.Context) {
	n, err := a.store.CleanupVisits(ctx, a.now().Add(-visitRetention))
	if err != nil {
		a.logger.With("err", err).Error("error cleaning up old visitor data")
		return
	}
	if n > 0 {
		a.logger.Info("privacy cleanup removed old visitor records", "rows", n)
	}
}

func (a *admin) register(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{"title": "Privacy Policy"})
	})

	if a.locked {
		return
	}

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		if equal(username, a.username) && equal(password, a.password) {
			c.SetCookie(adminCookie, a.token, 3600*24, "/admin", "", false, true)
			a.logger.Info("admin login", "from", a.hashIP(c.ClientIP()))
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		a.logger.Warn("failed admin login", "from", a.hashIP(c.ClientIP()))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"title": "Admin Login",
			"error": "Invalid credentials",
		})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	g := r.Group("/admin")
	g.Use(a.requireLogin())

	g.GET("/dashboard", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context(), a.now())
		if err != nil {
			a.logger.With("err", err).Error("error loading admin stats")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"title": "Error",
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"title": "Dashboard",
			"stats": stats,
		})
	})

	g.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context(), a.now())
		if err != nil {
			a.logger.With("err", err).Error("error loading admin stats")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	g.GET("/api/messages", func(c *gin.Context) {
		msgs, err := a.store.ListMessages(c.Request.Context(), 200)
		if err != nil {
			a.logger.With("err", err).Error("error listing messages")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
			return
		}
		c.JSON(http.StatusOK, msgs)
	})

	g.DELETE("/messages/:id", func(c *gin.Context) {
		id := c.Param("id")
		err := a.store.DeleteMessage(c.Request.Context(), id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		case err != nil:
			a.logger.With("err", err).Error("error deleting message", "id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		default:
			a.logger.Info("message deleted", "id", id, "by", a.hashIP(c.ClientIP()))
			c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
		}
	})

	g.POST("/privacy/cleanup", func(c *gin.Context) {
		go a.cleanupVisits(context.WithoutCancel(c.Request.Context()))
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup initiated"})
	})

	g.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context(), a.now())
		if err != nil {
			a.logger.With("err", err).Error("error exporting admin stats")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		c.JSON(http.StatusOK, stats)
	})
}
