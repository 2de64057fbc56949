package signing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eid-foundation/bankid-session/pkg/services"
	"github.com/eid-foundation/bankid-session/pkg/uservisible"
)

var testMeta = uservisible.Metadata{
	Author:       "A",
	CreationDate: "D",
	Language:     "L",
	ModDate:      "M",
}

var testDocument = []byte("%PDF-original")

func startedOrder() *services.Order {
	return &services.Order{
		OrderRef:      "order-1",
		QrStartToken:  "qst",
		QrStartSecret: "qss",
		StartedAt:     time.Now(),
	}
}

func completion() *services.CollectResult {
	return &services.CollectResult{
		OrderRef: "order-1",
		Status:   services.StatusComplete,
		CompletionData: &services.CompletionData{
			User:      services.SignerIdentity{GivenName: "Tolvan", Surname: "Tolvansson", PersonalNumber: "190001019801"},
			Signature: "c2ln",
		},
	}
}

// prepared takes a fresh coordinator through document acceptance and order start.
func prepared(t *testing.T, provider *services.MockProvider, config Config) *Coordinator {
	t.Helper()
	provider.EXPECT().StartSigning(gomock.Any(), gomock.Any()).Return(startedOrder(), nil)

	c := New(provider, config)
	require.NoError(t, c.AcceptDocument(testDocument))
	require.NoError(t, c.MetadataAvailable(context.Background(), testMeta))
	require.Equal(t, StatePolling, c.State())
	return c
}

func TestCoordinator_AcceptDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	c := New(services.NewMockProvider(ctrl), Config{})

	assert.NoError(t, c.AcceptDocument(testDocument))
	assert.Equal(t, StateAwaitingMetadata, c.State())
	assert.Equal(t, ErrDocumentAlreadyAccepted, c.AcceptDocument(testDocument))
}

func TestCoordinator_MetadataAvailable(t *testing.T) {
	t.Run("it encodes the statement and starts the order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		provider := services.NewMockProvider(ctrl)

		var request services.StartSigningRequest
		provider.EXPECT().StartSigning(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r services.StartSigningRequest) (*services.Order, error) {
				request = r
				return startedOrder(), nil
			})

		c := New(provider, Config{})
		require.NoError(t, c.AcceptDocument(testDocument))
		require.NoError(t, c.MetadataAvailable(context.Background(), testMeta))

		assert.Equal(t, "0.0.0.0", request.EndUserIP)
		assert.Equal(t, uservisible.Format, request.UserVisibleDataFormat)
		decoded, err := uservisible.Decode(request.UserVisibleData)
		require.NoError(t, err)
		assert.Contains(t, decoded, "Author: A")
		assert.Contains(t, decoded, "Last modified: M")

		assert.Equal(t, StatePolling, c.State())
		assert.Equal(t, "order-1", c.Session().Order().OrderRef)
	})

	t.Run("the statement is built exactly once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		provider := services.NewMockProvider(ctrl)
		provider.EXPECT().StartSigning(gomock.Any(), gomock.Any()).Return(startedOrder(), nil).Times(1)

		c := New(provider, Config{})
		require.NoError(t, c.AcceptDocument(testDocument))
		require.NoError(t, c.MetadataAvailable(context.Background(), testMeta))
		// a repeated metadata notification must not re-encode or re-request
		require.NoError(t, c.MetadataAvailable(context.Background(), testMeta))
		assert.Equal(t, StatePolling, c.State())
	})

	t.Run("a start failure is recoverable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		provider := services.NewMockProvider(ctrl)
		provider.EXPECT().StartSigning(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
		provider.EXPECT().StartSigning(gomock.Any(), gomock.Any()).Return(startedOrder(), nil)

		c := New(provider, Config{})
		require.NoError(t, c.AcceptDocument(testDocument))

		assert.Error(t, c.MetadataAvailable(context.Background(), testMeta))
		assert.Equal(t, StateAwaitingMetadata, c.State())

		// the user may try again
		assert.NoError(t, c.MetadataAvailable(context.Background(), testMeta))
		assert.Equal(t, StatePolling, c.State())
	})

	t.Run("missing metadata is rejected before any order is requested", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		c := New(services.NewMockProvider(ctrl), Config{})
		require.NoError(t, c.AcceptDocument(testDocument))

		assert.Equal(t, uservisible.ErrMissingMetadata, c.MetadataAvailable(context.Background(), uservisible.Metadata{}))
		assert.Equal(t, StateAwaitingMetadata, c.State())
	})
}

func TestCoordinator_Run(t *testing.T) {
	t.Run("pending, pending, complete uploads once and stores the artifact", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		provider := services.NewMockProvider(ctrl)
		c := prepared(t, provider, Config{Interval: time.Millisecond})

		gomock.InOrder(
			provider.EXPECT().Collect(gomock.Any(), "order-1").Return(&services.CollectResult{OrderRef: "order-1", Status: services.StatusPending, HintCode: "outstandingTransaction"}, nil),
			provider.EXPECT().Collect(gomock.Any(), "order-1").Return(&services.CollectResult{OrderRef: "order-1", Status: services.StatusPending, HintCode: "userSign"}, nil),
			provider.EXPECT().Collect(gomock.Any(), "order-1").Return(completion(), nil),
		)
		provider.EXPECT().ExchangeDocument(gomock.Any(), testDocument, completion().CompletionData.User).Return([]byte("%PDF-signed"), nil).Times(1)

		require.NoError(t, c.Run(context.Background()))

		assert.Equal(t, StateDone, c.State())
		signed, ok := c.SignedDocument()
		assert.True(t, ok)
		assert.Equal(t, []byte("%PDF-signed"), signed)
		assert.Equal(t, services.StatusComplete, c.Session().Status())

		// a second completion notification for the same order is ignored
		require.NoError(t, c.OnCompletion(context.Background(), completion()))
	})

	t.Run("a failed order performs no exchange", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		provider := services.NewMockProvider(ctrl)
		c := prepared(t, provider, Config{Interval: time.Millisecond})

		gomock.InOrder(
			provider.EXPECT().Collect(gomock.Any(), "order-1").Return(&services.CollectResult{OrderRef: "order-1", Status: services.StatusPending}, nil),
			provider.EXPECT().Collect(gomock.Any(), "order-1").Return(&services.CollectResult{OrderRef: "order-1", Status: services.StatusFailed, HintCode: "userCancel"}, nil),
		)

		require.NoError(t, c.Run(context.Background()))

		assert.Equal(t, StateFailed, c.State())
		assert.Equal(t, "Action cancelled.", c.Session().UserMessage())
		_, ok := c.SignedDocument()
		assert.False(t, ok)
	})

	t.Run("an exchange failure leaves the flow complete without artifact", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		provider := services.NewMockProvider(ctrl)
		c := prepared(t, provider, Config{Interval: time.Millisecond})

		provider.EXPECT().Collect(gomock.Any(), "order-1").Return(completion(), nil)
		provider.EXPECT().ExchangeDocument(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("upload failed"))

		require.NoError(t, c.Run(context.Background()))

		assert.Equal(t, StateComplete, c.State())
		_, ok := c.SignedDocument()
		assert.False(t, ok)
	})

	t.Run("it refuses to run before the order is started", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		c := New(services.NewMockProvider(ctrl), Config{})

		assert.Equal(t, services.ErrOrderNotStarted, c.Run(context.Background()))
	})

	t.Run("an unavailable locator never fails the flow", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		provider := services.NewMockProvider(ctrl)
		locator := services.NewMockLocator(ctrl)
		locator.EXPECT().CurrentPosition(gomock.Any()).Return(nil, errors.New("denied")).AnyTimes()

		c := prepared(t, provider, Config{Interval: time.Millisecond, Locator: locator})

		provider.EXPECT().Collect(gomock.Any(), "order-1").Return(completion(), nil)
		provider.EXPECT().ExchangeDocument(gomock.Any(), gomock.Any(), gomock.Any()).Return([]byte("%PDF-signed"), nil)

		require.NoError(t, c.Run(context.Background()))
		assert.Equal(t, StateDone, c.State())
	})
}
