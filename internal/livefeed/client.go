package livefeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"github.com/shahmeerabdul/GIKomplain/internal/storage"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Authorizer is asked before every delivered event whether the peer may
// still read the complaint. An error ends the stream.
type Authorizer func(ctx context.Context) error

// Client streams the events of one complaint to one websocket connection.
type Client struct {
	ComplaintID string
	Conn        *websocket.Conn
	ctx         context.Context
	events      <-chan models.ComplaintEvent
	cancel      func()
	authorize   Authorizer
	log         zerolog.Logger
}

// Subscribe attaches a new client for complaintID to bus. Events published
// from now on are buffered until Run. authorize may be nil.
func Subscribe(ctx context.Context, bus storage.EventBus, complaintID string, authorize Authorizer, log zerolog.Logger) (*Client, error) {
	events, cancel, err := bus.SubscribeComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	return &Client{
		ComplaintID: complaintID,
		ctx:         ctx,
		events:      events,
		cancel:      cancel,
		authorize:   authorize,
		log:         log.With().Str("complaint_id", complaintID).Logger(),
	}, nil
}

// Close ends the subscription of a client that never ran.
func (c *Client) Close() {
	c.cancel()
}

// Run pumps between the subscription and conn until the peer goes away or
// the subscription ends. It blocks.
func (c *Client) Run(conn *websocket.Conn) {
	c.Conn = conn
	go c.readPump()
	c.writePump()
}

// readPump only services control frames. Anything the peer sends is
// discarded; a read error ends the subscription.
func (c *Client) readPump() {
	defer c.cancel()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.cancel()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.events:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if c.authorize != nil {
				if err := c.authorize(c.ctx); err != nil {
					c.log.Info().Err(err).Msg("read access revoked, closing event stream")
					c.Conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "access revoked"))
					return
				}
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				c.log.Error().Err(err).Msg("failed to encode event")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
