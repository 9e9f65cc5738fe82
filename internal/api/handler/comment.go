package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shahmeerabdul/GIKomplain/internal/api/respond"
)

type postCommentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) ListComments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	thread, err := h.Comments.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": thread})
}

func (h *Handler) PostComment(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req postCommentRequest
	if err := respond.Bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	cm, err := h.Comments.Post(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": cm})
}
