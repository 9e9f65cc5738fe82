package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shahmeerabdul/GIKomplain/internal/account"
	"github.com/shahmeerabdul/GIKomplain/internal/api/respond"
)

func (h *Handler) ReportSummary(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	sum, err := h.Reports.Summary(c.Request.Context(), actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *Handler) ListUsers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	users, err := h.Accounts.ListUsers(c.Request.Context(), actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) CreateUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var cmd account.CreateUserCommand
	if err := respond.Bind(c, &cmd); err != nil {
		h.fail(c, err)
		return
	}
	u, err := h.Accounts.CreateUser(c.Request.Context(), actor, cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var cmd account.UpdateUserCommand
	if err := respond.Bind(c, &cmd); err != nil {
		h.fail(c, err)
		return
	}
	u, err := h.Accounts.UpdateUser(c.Request.Context(), actor, c.Param("id"), cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.Accounts.DeleteUser(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
