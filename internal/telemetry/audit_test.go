package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatly-service/internal/mocks"
	"chatly-service/internal/telemetry"
)

func TestAuditEmitterPublishesEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.chatly", "chatly-service", "test")

	publisher.On("Publish", mock.Anything, "audit.chatly", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(telemetry.AuditEnvelope)
		if !ok {
			return false
		}
		return envelope.EventType == "audit_log" &&
			envelope.Service == "chatly-service" &&
			envelope.Environment == "test" &&
			envelope.RequestID == "req-1" &&
			envelope.Payload.Level == "info" &&
			envelope.Payload.Text == "request accepted"
	})).Return(nil).Once()

	userID := "user-1"
	emitter.Emit(context.Background(), telemetry.AuditEntry{
		Level:     "info",
		Text:      "request accepted",
		RequestID: "req-1",
		UserID:    &userID,
	})

	publisher.AssertExpectations(t)
}

func TestAuditEmitterNilPublisherIsNoop(t *testing.T) {
	emitter := telemetry.NewAuditEmitter(nil, "audit.chatly", "chatly-service", "test")
	emitter.Emit(context.Background(), telemetry.AuditEntry{Level: "info", Text: "dropped"})
}

func TestAuditEmitterSwallowsPublishError(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.chatly", "chatly-service", "test")

	publisher.On("Publish", mock.Anything, "audit.chatly", mock.Anything).
		Return(assert.AnError).Once()

	emitter.Emit(context.Background(), telemetry.AuditEntry{Level: "warn", Text: "still fine", RequestID: "req-2"})
	publisher.AssertExpectations(t)
}

func TestAuditEnvelopeOptionalUser(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.chatly", "chatly-service", "test")

	publisher.On("Publish", mock.Anything, "audit.chatly", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(telemetry.AuditEnvelope)
		require.True(t, ok)
		return envelope.UserID == nil
	})).Return(nil).Once()

	emitter.Emit(context.Background(), telemetry.AuditEntry{Level: "info", Text: "anonymous action", RequestID: "req-3"})
	publisher.AssertExpectations(t)
}
