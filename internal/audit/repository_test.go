package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay/pkg/models"
)

func sampleMessage() models.OutboundMessage {
	return models.NewOutboundMessageBuilder().
		WithHeader("monitor-notification-matcher.filing", "req-1", "monitor_email").
		WithCompany(models.CompanyDetails{CompanyNumber: "00006400", CompanyName: "THE GIRLS DAY SCHOOL TRUST"}).
		WithFiling(models.FilingHistory{Type: "AP01", Description: "Appointment", Date: "2025-02-04"}, true).
		WithEnvelope(models.Envelope{UserID: "user-1", NotifiedAt: "2025-02-05T10:00:00Z"}).
		Build()
}

func TestNewRecord(t *testing.T) {
	msg := sampleMessage()

	record, err := NewRecord(msg)
	require.NoError(t, err)

	assert.Equal(t, "monitor-notification-matcher.filing", record.AppID)
	assert.Equal(t, "req-1", record.MessageID)
	assert.Equal(t, "monitor_email", record.MessageType)
	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, "2025-02-05T10:00:00Z", record.CreatedAt)

	var data models.OutboundMessageData
	require.NoError(t, json.Unmarshal([]byte(record.Data), &data))
	assert.Equal(t, msg.Data, data)
	assert.True(t, data.IsDelete)
}
