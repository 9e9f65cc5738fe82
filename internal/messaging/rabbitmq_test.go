package messaging

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	ev := models.ComplaintEvent{
		Type:        models.EventStatusChanged,
		ComplaintID: "c-1",
		ActorID:     "u-1",
		Status:      models.StatusEscalated,
		Details:     "Escalated: vendor",
		At:          at,
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	msg := Message(ev, body)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "STATUS_CHANGED", msg.Type)
	assert.Equal(t, at, msg.Timestamp)
	assert.Equal(t, "c-1", msg.Headers["complaint_id"])
	assert.Equal(t, "ESCALATED", msg.Headers["status"])

	var decoded models.ComplaintEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, ev, decoded)
}
