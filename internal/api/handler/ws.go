package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shahmeerabdul/GIKomplain/internal/api/middleware"
	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
	"github.com/shahmeerabdul/GIKomplain/internal/livefeed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ComplaintEvents upgrades to a websocket streaming the events of one
// complaint to a caller who may read it. Access is checked again before
// every event, so a deleted or reassigned user stops receiving them.
func (h *Handler) ComplaintEvents(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, err := h.Complaints.Get(c.Request.Context(), actor, id); err != nil {
		h.fail(c, err)
		return
	}
	if h.Events == nil {
		h.fail(c, apperr.Unavailable("live events are not enabled"))
		return
	}

	token := middleware.TokenFrom(c)
	authorize := func(ctx context.Context) error {
		current, err := h.Accounts.Authenticate(ctx, token)
		if err != nil {
			return err
		}
		_, err = h.Complaints.Get(ctx, current, id)
		return err
	}

	client, err := livefeed.Subscribe(c.Request.Context(), h.Events, id, authorize, h.Log)
	if err != nil {
		h.fail(c, apperr.Internal(err))
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.Log.Debug().Err(err).Msg("websocket upgrade failed")
		client.Close()
		return
	}
	client.Run(conn)
}
