package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shahmeerabdul/GIKomplain/internal/account"
	"github.com/shahmeerabdul/GIKomplain/internal/api/middleware"
	"github.com/shahmeerabdul/GIKomplain/internal/api/respond"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req account.RegisterCommand
	if err := respond.Bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	u, err := h.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Account created. Please log in.", "user": u})
}

// Login sets the session cookie and returns the user.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := respond.Bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	sess, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.TokenCookieName, sess.Token, maxAge, "/", "", h.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"user": sess.User})
}

// Logout revokes the presented token and clears the cookie. It never fails.
func (h *Handler) Logout(c *gin.Context) {
	_ = h.Accounts.Logout(c.Request.Context(), middleware.TokenFrom(c))
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.TokenCookieName, "", -1, "/", "", h.SecureCookies, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	u, err := h.Accounts.Me(c.Request.Context(), actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *Handler) ListDepartments(c *gin.Context) {
	depts, err := h.Accounts.ListDepartments(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": depts})
}
