// Package handler maps the dashboard's user intents onto the controllers.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"campusride/internal/auth"
	"campusride/internal/dashboard"
	"campusride/internal/directory"
	"campusride/internal/logging"
	"campusride/internal/metrics"
	"campusride/internal/notify"
	"campusride/internal/session"
	"campusride/internal/store"
)

// BrowserHeader scopes the persisted key space to one client.
const BrowserHeader = "X-Browser-ID"

const (
	ctxKV      = "kv"
	ctxBrowser = "browser"
	ctxView    = "view"
)

// Options configures token issuing.
type Options struct {
	JWTIssuer     string
	JWTSigningKey string
	AccessTTL     time.Duration
}

type Handler struct {
	deps     dashboard.Deps
	kv       store.KV
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	opts     Options
	ws       *workspaces
}

// New builds a Handler. kv is the unscoped store; each request works on its
// browser's namespace of it.
func New(deps dashboard.Deps, kv store.KV, m *metrics.Metrics, opts Options) *Handler {
	if m == nil {
		m = metrics.New()
	}
	deps.Logger = logging.OrDiscard(deps.Logger)
	deps.Notifier = notify.OrDiscard(deps.Notifier)
	return &Handler{
		deps:     deps,
		kv:       kv,
		notifier: deps.Notifier,
		metrics:  m,
		logger:   deps.Logger,
		opts:     opts,
		ws:       newWorkspaces(),
	}
}

// Register mounts the /v1 routes.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/v1", h.browserScope())

	v1.POST("/session/login", h.Login)
	v1.GET("/session", h.RestoreSession)
	v1.POST("/session/logout", h.Logout)
	v1.GET("/preferences/dark-mode", h.DarkMode)
	v1.POST("/preferences/dark-mode", h.ToggleDarkMode)

	authed := v1.Group("", auth.BearerAuth(h.opts.JWTSigningKey, h.opts.JWTIssuer), h.requireSession())
	authed.GET("/dashboard", h.Dashboard)
	authed.GET("/announcements", h.Announcements)
	authed.GET("/routes/:id/map", h.RouteMap)

	student := authed.Group("/student", requireRole(directory.RoleStudent))
	student.GET("/availability", h.Availability)
	student.POST("/availability/confirm", h.ConfirmAvailability)
	student.POST("/availability/cancel/prompt", h.RequestCancel)
	student.DELETE("/availability/cancel/prompt", h.AbortCancel)
	student.POST("/availability/cancel", h.CancelAvailability)

	driver := authed.Group("/driver", requireRole(directory.RoleDriver))
	driver.GET("/roster", h.Roster)
	driver.PUT("/route", h.SelectRoute)
	driver.POST("/pickups", h.MarkPickup)

	admin := authed.Group("/admin", requireRole(directory.RoleAdmin))
	admin.GET("/analytics", h.Analytics)
	admin.POST("/announcements", h.SendAnnouncement)
}

// ---------- Workspaces ----------

// workspace holds the volatile state of one browser: the dispatched view
// with its roster, cancel prompt or compose draft. Requests of the same
// browser are serialised on mu.
type workspace struct {
	mu     sync.Mutex
	userID string
	view   dashboard.View
}

type workspaces struct {
	mu   sync.Mutex
	byID map[string]*workspace
}

func newWorkspaces() *workspaces {
	return &workspaces{byID: make(map[string]*workspace)}
}

func (w *workspaces) get(browserID string) *workspace {
	w.mu.Lock()
	defer w.mu.Unlock()
	ws, ok := w.byID[browserID]
	if !ok {
		ws = &workspace{}
		w.byID[browserID] = ws
	}
	return ws
}

// viewFor returns the cached view for sess, dispatching a new one when the
// identity changed. Caller holds ws.mu.
func (h *Handler) viewFor(ctx context.Context, ws *workspace, sess *session.Session) (dashboard.View, error) {
	if ws.view != nil && ws.userID == sess.Identity.ID {
		return ws.view, nil
	}
	v, err := dashboard.Dispatch(ctx, sess, h.deps)
	if err != nil {
		return nil, err
	}
	ws.userID, ws.view = sess.Identity.ID, v
	return v, nil
}

func (ws *workspace) reset() {
	ws.userID, ws.view = "", nil
}

// ---------- Middleware ----------

func (h *Handler) browserScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(BrowserHeader))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + BrowserHeader + " header"})
			return
		}
		c.Set(ctxBrowser, id)
		c.Set(ctxKV, store.ForBrowser(h.kv, id))

		ws := h.ws.get(id)
		ws.mu.Lock()
		defer ws.mu.Unlock()
		c.Next()
	}
}

// requireSession binds the bearer token to the browser's restored session,
// so a token outlives neither logout nor a different login.
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := auth.ClaimsFrom(c)
		sess, ok := h.manager(c).Restore(c.Request.Context())
		if !ok || sess.Identity.ID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
			return
		}
		v, err := h.viewFor(c.Request.Context(), h.workspace(c), sess)
		if err != nil {
			h.dispatchFailed(c, err)
			return
		}
		c.Set(ctxView, v)
		c.Next()
	}
}

func requireRole(role directory.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := viewFrom(c)
		if v == nil || v.Identity().Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "requires " + role.String() + " role"})
			return
		}
		c.Next()
	}
}

// ---------- Helpers ----------

func (h *Handler) browserKV(c *gin.Context) store.KV {
	return c.MustGet(ctxKV).(store.KV)
}

func (h *Handler) workspace(c *gin.Context) *workspace {
	return h.ws.get(c.GetString(ctxBrowser))
}

func (h *Handler) manager(c *gin.Context) *session.Manager {
	return session.NewManager(h.deps.Directory, h.browserKV(c), h.notifier, h.logger)
}

func viewFrom(c *gin.Context) dashboard.View {
	v, ok := c.Get(ctxView)
	if !ok {
		return nil
	}
	view, _ := v.(dashboard.View)
	return view
}

func (h *Handler) dispatchFailed(c *gin.Context, err error) {
	h.logger.Error("dashboard dispatch failed", slog.Any("error", err))
	msg := "internal error"
	if errors.Is(err, dashboard.ErrUnknownRole) {
		msg = "unknown role"
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
}
