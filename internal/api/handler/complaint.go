package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shahmeerabdul/GIKomplain/internal/api/respond"
	"github.com/shahmeerabdul/GIKomplain/internal/complaint"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
)

func (h *Handler) ListMyComplaints(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	list, err := h.Complaints.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": list})
}

func (h *Handler) SubmitComplaint(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var cmd complaint.SubmitCommand
	if err := respond.Bind(c, &cmd); err != nil {
		h.fail(c, err)
		return
	}
	created, err := h.Complaints.Submit(c.Request.Context(), actor, cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"complaint": created})
}

// ListDepartmentQueue accepts ?status=A,B and ?sort=oldest|newest.
func (h *Handler) ListDepartmentQueue(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	f := complaint.QueueFilter{OldestFirst: c.Query("sort") == "oldest"}
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" && raw != "ALL" {
			f.Statuses = append(f.Statuses, models.Status(raw))
		}
	}
	list, err := h.Complaints.ListForDepartment(c.Request.Context(), actor, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": list})
}

func (h *Handler) GetComplaint(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	got, err := h.Complaints.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaint": got})
}

func (h *Handler) TransitionComplaint(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var cmd complaint.TransitionCommand
	if err := respond.Bind(c, &cmd); err != nil {
		h.fail(c, err)
		return
	}
	updated, err := h.Complaints.Transition(c.Request.Context(), actor, c.Param("id"), cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaint": updated})
}

func (h *Handler) AuditTrail(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	logs, err := h.Complaints.AuditTrail(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auditLogs": logs})
}
