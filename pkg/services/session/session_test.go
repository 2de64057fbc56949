package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/eid-foundation/bankid-session/pkg/qr"
	"github.com/eid-foundation/bankid-session/pkg/services"
)

func testOrder() services.Order {
	return services.Order{
		OrderRef:      "order-1",
		QrStartToken:  "qst",
		QrStartSecret: "qss",
		StartedAt:     time.Date(2020, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSession_ApplyCollect(t *testing.T) {
	t.Run("it stores the latest result", func(t *testing.T) {
		s := New(testOrder())
		s.ApplyCollect(&services.CollectResult{OrderRef: "order-1", Status: services.StatusPending, HintCode: "userSign"})

		assert.Equal(t, services.StatusPending, s.Status())
		assert.Equal(t, "userSign", s.Latest().HintCode)
	})

	t.Run("it captures the credential on completion", func(t *testing.T) {
		s := New(testOrder())
		s.ApplyCollect(&services.CollectResult{OrderRef: "order-1", Status: services.StatusComplete, Token: "abc"})

		assert.Equal(t, services.StatusComplete, s.Status())
		assert.Equal(t, "abc", s.Credential())
	})

	t.Run("the record is frozen once terminal", func(t *testing.T) {
		s := New(testOrder())
		s.ApplyCollect(&services.CollectResult{OrderRef: "order-1", Status: services.StatusFailed, HintCode: "userCancel"})
		s.ApplyCollect(&services.CollectResult{OrderRef: "order-1", Status: services.StatusComplete, Token: "late"})

		assert.Equal(t, services.StatusFailed, s.Status())
		assert.Equal(t, "userCancel", s.Latest().HintCode)
		assert.Empty(t, s.Credential())
	})
}

func TestSession_RefreshQr(t *testing.T) {
	order := testOrder()
	s := New(order)

	frame := s.RefreshQr(order.StartedAt.Add(5 * time.Second))

	assert.Equal(t, 5, frame.ElapsedSeconds)
	assert.Equal(t, qr.FrameFor(order, order.StartedAt.Add(5*time.Second)), s.Qr())
}

func TestSession_UserMessage(t *testing.T) {
	t.Run("before the first poll", func(t *testing.T) {
		s := New(testOrder())
		assert.Equal(t, "Start your BankID app.", s.UserMessage())
	})

	t.Run("a cancelled order maps to its hint message", func(t *testing.T) {
		s := New(testOrder())
		s.ApplyCollect(&services.CollectResult{Status: services.StatusFailed, HintCode: "userCancel"})
		assert.Equal(t, "Action cancelled.", s.UserMessage())
	})

	t.Run("a completed order reports success", func(t *testing.T) {
		s := New(testOrder())
		s.ApplyCollect(&services.CollectResult{Status: services.StatusComplete})
		assert.Equal(t, "Identification successful.", s.UserMessage())
	})

	t.Run("an unknown hint code on a failed order falls back", func(t *testing.T) {
		s := New(testOrder())
		s.ApplyCollect(&services.CollectResult{Status: services.StatusFailed, HintCode: "somethingNew"})
		assert.Equal(t, "Unknown error. Please try again.", s.UserMessage())
	})
}
