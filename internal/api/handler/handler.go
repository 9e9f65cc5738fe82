// Package handler exposes the services over HTTP with gin.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shahmeerabdul/GIKomplain/internal/account"
	"github.com/shahmeerabdul/GIKomplain/internal/api/middleware"
	"github.com/shahmeerabdul/GIKomplain/internal/api/respond"
	"github.com/shahmeerabdul/GIKomplain/internal/auth"
	"github.com/shahmeerabdul/GIKomplain/internal/comment"
	"github.com/shahmeerabdul/GIKomplain/internal/complaint"
	"github.com/shahmeerabdul/GIKomplain/internal/report"
	"github.com/shahmeerabdul/GIKomplain/internal/storage"
	"github.com/shahmeerabdul/GIKomplain/internal/upload"
)

// Pinger reports whether the backing stores are reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services every route delegates to.
type Handler struct {
	Accounts   *account.Service
	Complaints *complaint.Service
	Comments   *comment.Service
	Reports    *report.Service
	Uploads    *upload.Store
	Events     storage.EventBus
	Health     Pinger

	// SecureCookies marks the session cookie Secure (outside dev).
	SecureCookies bool
	Log           zerolog.Logger
}

func (h *Handler) fail(c *gin.Context, err error) {
	respond.Error(c, h.Log, err)
}

// actor returns the authenticated caller or writes 401.
func (h *Handler) actor(c *gin.Context) (auth.Identity, bool) {
	id, err := middleware.IdentityFrom(c)
	if err != nil {
		h.fail(c, err)
		return auth.Identity{}, false
	}
	return id, true
}

// Healthz pings the database and Redis.
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.Health != nil {
		if err := h.Health.Ping(ctx); err != nil {
			h.Log.Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
