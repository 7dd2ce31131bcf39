package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusride/internal/auth"
	"campusride/internal/session"
)

// ---------- Session ----------

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates, persists the session and issues an access token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	sess, n, err := h.manager(c).Login(ctx, req.Username, req.Password)
	switch {
	case errors.Is(err, session.ErrMissingCredentials):
		h.metrics.LoginsTotal.WithLabelValues("incomplete").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, session.ErrInvalidCredentials):
		h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "notification": n})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	ws := h.workspace(c)
	ws.reset()
	v, err := h.viewFor(ctx, ws, sess)
	if err != nil {
		h.manager(c).Clear(ctx, &sess.Identity)
		h.dispatchFailed(c, err)
		return
	}

	tok, err := auth.Issue(sess.Identity.ID, sess.Identity.Role.String(), h.opts.JWTIssuer, h.opts.JWTSigningKey, h.opts.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	h.metrics.LoginsTotal.WithLabelValues("success").Inc()

	c.JSON(http.StatusOK, gin.H{
		"access_token": tok.AccessToken,
		"expires_at":   tok.ExpiresAt.Unix(),
		"user":         sess.Identity,
		"dashboard":    v.Summary(),
		"notification": n,
	})
}

// RestoreSession reports the persisted session of this browser, if any.
func (h *Handler) RestoreSession(c *gin.Context) {
	ctx := c.Request.Context()
	sess, ok := h.manager(c).Restore(ctx)
	if !ok {
		h.workspace(c).reset()
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	v, err := h.viewFor(ctx, h.workspace(c), sess)
	if err != nil {
		h.dispatchFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          sess.Identity,
		"dashboard":     v.Summary(),
	})
}

// Logout always succeeds.
func (h *Handler) Logout(c *gin.Context) {
	n := h.manager(c).Logout(c.Request.Context())
	h.workspace(c).reset()
	h.metrics.LogoutsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"notification": n})
}

// ---------- Preferences ----------

func (h *Handler) DarkMode(c *gin.Context) {
	p := session.LoadPreferences(c.Request.Context(), h.browserKV(c), h.logger)
	c.JSON(http.StatusOK, gin.H{"dark_mode": p.DarkMode()})
}

func (h *Handler) ToggleDarkMode(c *gin.Context) {
	ctx := c.Request.Context()
	p := session.LoadPreferences(ctx, h.browserKV(c), h.logger)
	c.JSON(http.StatusOK, gin.H{"dark_mode": p.ToggleDarkMode(ctx)})
}
