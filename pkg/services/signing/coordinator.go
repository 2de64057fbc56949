/*
 * BankID session
 * Copyright (C) 2026. eID foundation
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package signing orchestrates the document signing flow on top of the
// authentication primitives: statement preparation, order start, polling and
// the completion-triggered document exchange.
package signing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eid-foundation/bankid-session/logging"
	"github.com/eid-foundation/bankid-session/pkg/services"
	"github.com/eid-foundation/bankid-session/pkg/services/poller"
	"github.com/eid-foundation/bankid-session/pkg/services/session"
	"github.com/eid-foundation/bankid-session/pkg/uservisible"
)

// State is the position of the signing flow in its state machine. The
// run-exactly-once guards (statement preparation, document exchange) are
// transitions of this machine rather than booleans.
type State string

const (
	// StateIdle means no document has been accepted yet
	StateIdle State = "idle"
	// StateAwaitingMetadata means the document is known, its metadata is not
	StateAwaitingMetadata State = "awaiting-metadata"
	// StateRequesting means the signing order is being requested at the provider
	StateRequesting State = "requesting"
	// StatePolling means the order is started and collect polling may run
	StatePolling State = "polling"
	// StateComplete means the order completed, no signed artifact has been obtained
	StateComplete State = "complete"
	// StateFailed means the provider rejected or expired the order. Terminal.
	StateFailed State = "failed"
	// StateUploading means the document exchange is in flight
	StateUploading State = "uploading"
	// StateDone means the signed artifact has been obtained. Terminal.
	StateDone State = "done"
)

// ErrDocumentAlreadyAccepted is returned when a second document is offered to the same flow
var ErrDocumentAlreadyAccepted = errors.New("document already accepted")

// ErrNoCompletionData is returned when a completed order carries no signer identity
var ErrNoCompletionData = errors.New("completed order carries no completion data")

// Config holds the signing flow settings.
type Config struct {
	// EndUserIP is the fixed network-origin placeholder passed on order start.
	EndUserIP string
	// Interval overrides the collect cadence, zero means the default.
	Interval time.Duration
	// Locator optionally supplies position fixes for telemetry. May be nil,
	// absence is a no-op, never a failure.
	Locator services.Locator
}

// Coordinator drives one signing flow for one document. It owns the
// user-visible data and the signed artifact and reads, never mutates, the
// session record.
type Coordinator struct {
	provider services.Provider
	config   Config

	mu       sync.Mutex
	state    State
	document []byte
	visible  *uservisible.Data
	session  *session.Session
	signed   []byte
}

// New returns an idle signing coordinator.
func New(provider services.Provider, config Config) *Coordinator {
	if config.EndUserIP == "" {
		config.EndUserIP = "0.0.0.0"
	}
	return &Coordinator{provider: provider, config: config, state: StateIdle}
}

// State returns the current flow state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the order session, nil until the order has been started.
func (c *Coordinator) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// UserVisibleData returns the prepared statement, nil until metadata arrived.
func (c *Coordinator) UserVisibleData() *uservisible.Data {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// SignedDocument returns the signed artifact once the exchange succeeded.
func (c *Coordinator) SignedDocument() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signed, c.state == StateDone
}

// AcceptDocument hands the source document to the flow. Only one document is
// accepted per flow.
func (c *Coordinator) AcceptDocument(document []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return ErrDocumentAlreadyAccepted
	}
	c.document = document
	c.state = StateAwaitingMetadata
	return nil
}

// MetadataAvailable prepares the user-visible statement from the document
// metadata and requests the signing order. The statement is built exactly
// once: a repeated metadata notification on a flow that has moved on is
// ignored. A start failure is recoverable, the flow falls back to awaiting
// metadata and can be started again by user action.
func (c *Coordinator) MetadataAvailable(ctx context.Context, meta uservisible.Metadata) error {
	c.mu.Lock()
	if c.state != StateAwaitingMetadata {
		state := c.state
		c.mu.Unlock()
		logging.Log().WithField("state", state).Debug("user-visible data already prepared, ignoring metadata notification")
		return nil
	}

	visible, err := uservisible.Build(meta)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.visible = visible
	c.state = StateRequesting
	c.mu.Unlock()

	order, err := c.provider.StartSigning(ctx, services.StartSigningRequest{
		EndUserIP:             c.config.EndUserIP,
		UserVisibleData:       visible.Encoded,
		UserVisibleDataFormat: visible.Format,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateAwaitingMetadata
		logging.Log().WithError(err).Error("could not start signing order")
		return err
	}
	c.session = session.New(*order)
	c.state = StatePolling
	return nil
}

// Run polls the order until it resolves. A completed order triggers the
// document exchange, a failed one moves the flow to its terminal failed
// state. Cancelling the context stops polling and returns the context error.
func (c *Coordinator) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StatePolling || c.session == nil {
		c.mu.Unlock()
		return services.ErrOrderNotStarted
	}
	sess := c.session
	c.mu.Unlock()

	p := &poller.Poller{
		Client:   c.provider,
		Interval: c.config.Interval,
		OnResult: func(result *services.CollectResult) {
			sess.ApplyCollect(result)
			c.capturePosition(ctx)
		},
	}

	result, err := p.Run(ctx, sess.Order().OrderRef)
	if err != nil {
		return err
	}

	if result.Status == services.StatusFailed {
		c.setState(StateFailed)
		logging.Log().WithField("hintCode", result.HintCode).Info("signing order failed")
		return nil
	}

	c.setState(StateComplete)
	return c.OnCompletion(ctx, result)
}

// OnCompletion performs the document exchange for a completed order. The
// exchange runs at most once: a flow that is already uploading or done
// ignores further completion notifications. An exchange failure is non-fatal,
// the flow stays complete without a signed artifact.
func (c *Coordinator) OnCompletion(ctx context.Context, result *services.CollectResult) error {
	c.mu.Lock()
	if c.state != StateComplete {
		state := c.state
		c.mu.Unlock()
		logging.Log().WithField("state", state).Debug("ignoring completion notification")
		return nil
	}
	if result == nil || result.CompletionData == nil {
		c.mu.Unlock()
		return ErrNoCompletionData
	}
	document := c.document
	signer := result.CompletionData.User
	c.state = StateUploading
	c.mu.Unlock()

	signed, err := c.provider.ExchangeDocument(ctx, document, signer)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// the session stays complete, just without a signed artifact
		c.state = StateComplete
		logging.Log().WithError(err).Error("document exchange failed")
		return nil
	}
	c.signed = signed
	c.state = StateDone
	return nil
}

func (c *Coordinator) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// capturePosition opportunistically records a position fix for telemetry.
// No locator, a denied fix or an error are all no-ops.
func (c *Coordinator) capturePosition(ctx context.Context) {
	if c.config.Locator == nil {
		return
	}
	position, err := c.config.Locator.CurrentPosition(ctx)
	if err != nil || position == nil {
		logging.Log().Debug("no position fix available")
		return
	}
	logging.Log().WithFields(logrus.Fields{
		"latitude":  position.Latitude,
		"longitude": position.Longitude,
	}).Debug("position fix captured")
}
