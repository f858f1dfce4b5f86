package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-booking/internal/bus"
)

func TestNotificationService_LogsKnownEvents(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	svc := NewNotificationService()

	raw, err := json.Marshal(bus.BookingReadyPayload{BookingID: 7})
	require.NoError(t, err)
	svc.Handle(context.Background(), bus.RawEnvelope{Type: bus.EventBookingReady, Payload: raw})

	assert.Contains(t, buf.String(), `"booking_id":7`)
	assert.Contains(t, buf.String(), "booking ready")
}

func TestNotificationService_IgnoresUnknownEvent(t *testing.T) {
	svc := NewNotificationService()
	assert.NotPanics(t, func() {
		svc.Handle(context.Background(), bus.RawEnvelope{Type: "SomeUnrelatedEvent", Payload: json.RawMessage(`{}`)})
	})
}
