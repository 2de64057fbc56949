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

package pkg

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eid-foundation/bankid-session/logging"
	"github.com/eid-foundation/bankid-session/pkg/launch"
	"github.com/eid-foundation/bankid-session/pkg/services"
	"github.com/eid-foundation/bankid-session/pkg/services/bankid"
	"github.com/eid-foundation/bankid-session/pkg/services/poller"
	"github.com/eid-foundation/bankid-session/pkg/services/session"
	"github.com/eid-foundation/bankid-session/pkg/services/signing"
	"github.com/eid-foundation/bankid-session/pkg/uservisible"
)

// FlowKind distinguishes authentication from signing sessions.
type FlowKind string

const (
	// AuthenticationFlow identifies a login order session
	AuthenticationFlow FlowKind = "authentication"
	// SigningFlow identifies a document signing order session
	SigningFlow FlowKind = "signing"
)

// FlowClient is the interface the API and CLI layers program against.
type FlowClient interface {
	StartAuthentication(ctx context.Context) (*ActiveSession, error)
	StartSigning(ctx context.Context, document []byte, meta uservisible.Metadata) (*ActiveSession, error)
	SessionByID(id string) (*ActiveSession, error)
	StopSession(id string) error
	FetchDocument(ctx context.Context) ([]byte, error)
	LaunchURL(id string) (string, error)
}

// ActiveSession is one running or resolved order session held by the registry.
type ActiveSession struct {
	ID          string
	Kind        FlowKind
	Session     *session.Session
	Coordinator *signing.Coordinator
	cancel      context.CancelFunc
}

// Stop tears the session down: the polling loop halts and any response still
// in flight is discarded.
func (a *ActiveSession) Stop() {
	a.cancel()
}

// Flows is the top-level registry of order sessions. Each session runs its
// own polling goroutine bound to a cancellable context, sessions share no
// state with each other.
type Flows struct {
	Config     FlowsConfig
	Provider   services.Provider
	Locator    services.Locator
	configOnce sync.Once

	mu       sync.RWMutex
	sessions map[string]*ActiveSession
}

// FlowsConfig holds the flow-level settings.
type FlowsConfig struct {
	ProviderURL  string
	EndUserIP    string
	RedirectURL  string
	PollInterval time.Duration
}

var instance *Flows
var oneInstance sync.Once

// Instance returns the singleton Flows registry.
func Instance() *Flows {
	oneInstance.Do(func() {
		instance = &Flows{Config: FlowsConfig{}}
	})
	return instance
}

var _ FlowClient = (*Flows)(nil)

// Configure wires the provider client from the config. Safe to call more
// than once, only the first call has effect.
func (f *Flows) Configure() error {
	f.configOnce.Do(func() {
		if f.Provider == nil {
			f.Provider = bankid.NewClient(bankid.Config{Address: f.Config.ProviderURL})
		}
		if f.Config.EndUserIP == "" {
			f.Config.EndUserIP = "0.0.0.0"
		}
		if f.sessions == nil {
			f.sessions = map[string]*ActiveSession{}
		}
	})
	return nil
}

// StartAuthentication starts an authentication order and begins polling it in
// the background. The returned session exposes QR frames, status and, on
// completion, the session-scoped bearer credential.
func (f *Flows) StartAuthentication(ctx context.Context) (*ActiveSession, error) {
	order, err := f.Provider.StartAuthentication(ctx, services.StartAuthenticationRequest{EndUserIP: f.Config.EndUserIP})
	if err != nil {
		return nil, err
	}

	sess := session.New(*order)
	pollCtx, cancel := context.WithCancel(context.Background())
	active := f.register(AuthenticationFlow, sess, nil, cancel)

	go func() {
		p := &poller.Poller{Client: f.Provider, Interval: f.Config.PollInterval, OnResult: sess.ApplyCollect}
		if _, err := p.Run(pollCtx, order.OrderRef); err != nil {
			logging.Log().WithError(err).WithField("orderRef", order.OrderRef).Debug("authentication polling stopped")
		}
	}()

	return active, nil
}

// StartSigning accepts a document plus its metadata, starts the signing order
// and runs the signing flow in the background.
func (f *Flows) StartSigning(ctx context.Context, document []byte, meta uservisible.Metadata) (*ActiveSession, error) {
	coordinator := signing.New(f.Provider, signing.Config{
		EndUserIP: f.Config.EndUserIP,
		Interval:  f.Config.PollInterval,
		Locator:   f.Locator,
	})
	if err := coordinator.AcceptDocument(document); err != nil {
		return nil, err
	}
	if err := coordinator.MetadataAvailable(ctx, meta); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	active := f.register(SigningFlow, coordinator.Session(), coordinator, cancel)

	go func() {
		if err := coordinator.Run(runCtx); err != nil {
			logging.Log().WithError(err).WithField("session", active.ID).Debug("signing flow stopped")
		}
	}()

	return active, nil
}

// SessionByID looks up a running or resolved session.
func (f *Flows) SessionByID(id string) (*ActiveSession, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	active, ok := f.sessions[id]
	if !ok {
		return nil, services.ErrSessionNotFound
	}
	return active, nil
}

// StopSession tears a session down and removes it from the registry.
func (f *Flows) StopSession(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	active, ok := f.sessions[id]
	if !ok {
		return services.ErrSessionNotFound
	}
	active.Stop()
	delete(f.sessions, id)
	return nil
}

// FetchDocument retrieves the source document to be signed from the provider.
func (f *Flows) FetchDocument(ctx context.Context) ([]byte, error) {
	return f.Provider.FetchDocument(ctx)
}

// LaunchURL builds the device hand-off deep link for a session.
func (f *Flows) LaunchURL(id string) (string, error) {
	active, err := f.SessionByID(id)
	if err != nil {
		return "", err
	}
	return launch.URL(active.Session.Order().AutoStartToken, f.Config.RedirectURL), nil
}

func (f *Flows) register(kind FlowKind, sess *session.Session, coordinator *signing.Coordinator, cancel context.CancelFunc) *ActiveSession {
	active := &ActiveSession{
		ID:          uuid.New().String(),
		Kind:        kind,
		Session:     sess,
		Coordinator: coordinator,
		cancel:      cancel,
	}
	f.mu.Lock()
	if f.sessions == nil {
		f.sessions = map[string]*ActiveSession{}
	}
	f.sessions[active.ID] = active
	f.mu.Unlock()
	return active
}
