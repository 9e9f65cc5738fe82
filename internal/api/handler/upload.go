package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
)

// multipartOverhead is allowed on top of the file size for form framing.
const multipartOverhead = 64 << 10

// Upload stores the multipart field "file" and returns its public URL.
func (h *Handler) Upload(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}
	if h.Uploads.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Uploads.MaxBytes+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.fail(c, apperr.Validation("file is too large", map[string]string{"file": "exceeds the upload limit"}))
		return
	}
	if err != nil {
		h.fail(c, apperr.Validation("no file uploaded", map[string]string{"file": "is required"}))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, apperr.Internal(err))
		return
	}
	defer f.Close()

	stored, err := h.Uploads.Save(c.Request.Context(), fh.Filename, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}
