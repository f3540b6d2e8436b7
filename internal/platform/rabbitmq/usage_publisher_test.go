package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuromentor/internal/model"
)

func TestNewUsagePublishing(t *testing.T) {
	occurred := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	event := model.UsageEvent{UserID: 3, SessionID: 9, Tokens: 120, NewSession: true, OccurredAt: occurred}

	msg, err := NewUsagePublishing(event)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, usageEventType, msg.Type)
	assert.Equal(t, occurred, msg.Timestamp)
	_, err = uuid.Parse(msg.MessageId)
	assert.NoError(t, err)

	var decoded model.UsageEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, event, decoded)
}

func TestNewUsagePublishingStampsMissingTime(t *testing.T) {
	msg, err := NewUsagePublishing(model.UsageEvent{UserID: 1})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Minute)
}

func TestNewDisabledWithoutURL(t *testing.T) {
	conn, err := New(context.Background(), "", "test")
	require.NoError(t, err)
	assert.Nil(t, conn)
}
