package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eid-foundation/bankid-session/pkg/services"
)

// scriptedCollector replays a fixed sequence of collect responses and counts requests.
type scriptedCollector struct {
	mu        sync.Mutex
	responses []collectResponse
	requests  int
}

type collectResponse struct {
	result *services.CollectResult
	err    error
}

func (s *scriptedCollector) Collect(ctx context.Context, orderRef string) (*services.CollectResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.requests
	s.requests++
	if index >= len(s.responses) {
		index = len(s.responses) - 1
	}
	return s.responses[index].result, s.responses[index].err
}

func (s *scriptedCollector) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func pending(hintCode string) collectResponse {
	return collectResponse{result: &services.CollectResult{OrderRef: "order-1", Status: services.StatusPending, HintCode: hintCode}}
}

func TestPoller_Run(t *testing.T) {
	t.Run("it polls until complete and stops", func(t *testing.T) {
		collector := &scriptedCollector{responses: []collectResponse{
			pending("outstandingTransaction"),
			pending("userSign"),
			{result: &services.CollectResult{OrderRef: "order-1", Status: services.StatusComplete, Token: "abc"}},
		}}

		var seen []services.OrderStatus
		p := &Poller{Client: collector, Interval: time.Millisecond, OnResult: func(result *services.CollectResult) {
			seen = append(seen, result.Status)
		}}

		result, err := p.Run(context.Background(), "order-1")
		require.NoError(t, err)
		assert.Equal(t, services.StatusComplete, result.Status)
		assert.Equal(t, "abc", result.Token)
		assert.Equal(t, []services.OrderStatus{services.StatusPending, services.StatusPending, services.StatusComplete}, seen)
		assert.Equal(t, 3, collector.requestCount())

		// no further requests after the terminal status
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 3, collector.requestCount())
	})

	t.Run("an explicit failed status is terminal", func(t *testing.T) {
		collector := &scriptedCollector{responses: []collectResponse{
			pending("outstandingTransaction"),
			{result: &services.CollectResult{OrderRef: "order-1", Status: services.StatusFailed, HintCode: "userCancel"}},
		}}
		p := &Poller{Client: collector, Interval: time.Millisecond}

		result, err := p.Run(context.Background(), "order-1")
		require.NoError(t, err)
		assert.Equal(t, services.StatusFailed, result.Status)
		assert.Equal(t, "userCancel", result.HintCode)
		assert.Equal(t, 2, collector.requestCount())
	})

	t.Run("a transport failure does not fail the order", func(t *testing.T) {
		collector := &scriptedCollector{responses: []collectResponse{
			{err: errors.New("connection refused")},
			{err: errors.New("connection refused")},
			{result: &services.CollectResult{OrderRef: "order-1", Status: services.StatusComplete}},
		}}
		p := &Poller{Client: collector, Interval: time.Millisecond}

		result, err := p.Run(context.Background(), "order-1")
		require.NoError(t, err)
		assert.Equal(t, services.StatusComplete, result.Status)
		assert.Equal(t, 3, collector.requestCount())
	})

	t.Run("cancellation stops the loop", func(t *testing.T) {
		collector := &scriptedCollector{responses: []collectResponse{pending("outstandingTransaction")}}
		p := &Poller{Client: collector, Interval: time.Millisecond}

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		result, err := p.Run(ctx, "order-1")
		assert.Nil(t, result)
		assert.Equal(t, context.Canceled, err)

		requestsAtCancel := collector.requestCount()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, requestsAtCancel, collector.requestCount())
	})

	t.Run("a result resolving after cancellation is discarded", func(t *testing.T) {
		blocked := make(chan struct{})
		applied := false
		p := &Poller{
			Client: collectFunc(func(ctx context.Context, orderRef string) (*services.CollectResult, error) {
				<-blocked
				return &services.CollectResult{OrderRef: orderRef, Status: services.StatusComplete}, nil
			}),
			Interval: time.Millisecond,
			OnResult: func(*services.CollectResult) { applied = true },
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			_, err := p.Run(ctx, "order-1")
			done <- err
		}()

		time.Sleep(5 * time.Millisecond)
		cancel()
		close(blocked)

		assert.Equal(t, context.Canceled, <-done)
		assert.False(t, applied)
	})
}

// collectFunc adapts a function to the services.OrderCollector interface
type collectFunc func(ctx context.Context, orderRef string) (*services.CollectResult, error)

func (f collectFunc) Collect(ctx context.Context, orderRef string) (*services.CollectResult, error) {
	return f(ctx, orderRef)
}
