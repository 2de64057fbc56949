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

// Package session holds the mutable state of one running order session.
package session

import (
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/eid-foundation/bankid-session/logging"
	"github.com/eid-foundation/bankid-session/pkg/qr"
	"github.com/eid-foundation/bankid-session/pkg/services"
)

// Session is the single mutable record of one order session. The poller
// writes collect results, the QR generator writes frames, everything else
// only reads. Two sessions share no state.
type Session struct {
	mu         sync.RWMutex
	order      services.Order
	latest     *services.CollectResult
	frame      qr.Frame
	credential string
}

// New seeds a session with the order returned by the provider.
func New(order services.Order) *Session {
	return &Session{order: order}
}

// Order returns the immutable order this session runs for.
func (s *Session) Order() services.Order {
	return s.order
}

// ApplyCollect stores the latest collect result. Once a terminal status has
// been applied the record is frozen, later writes are ignored. The bearer
// credential of a completed authentication order is kept session-scoped, it
// is never shared between sessions.
func (s *Session) ApplyCollect(result *services.CollectResult) {
	if result == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest != nil && s.latest.Status.Terminal() {
		return
	}
	s.latest = result

	if result.Status == services.StatusComplete && result.Token != "" {
		s.credential = result.Token
		logCredentialClaims(result.Token)
	}
}

// RefreshQr recomputes the animated QR frame for the given wall-clock time
// and returns it.
func (s *Session) RefreshQr(now time.Time) qr.Frame {
	frame := qr.FrameFor(s.order, now)
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
	return frame
}

// Qr returns the most recently computed QR frame.
func (s *Session) Qr() qr.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// Status returns the latest observed order status, or StatusPending when no
// collect result has been applied yet.
func (s *Session) Status() services.OrderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return services.StatusPending
	}
	return s.latest.Status
}

// Latest returns the latest collect result, nil before the first poll resolved.
func (s *Session) Latest() *services.CollectResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Credential returns the bearer credential obtained when an authentication
// order completed, empty otherwise.
func (s *Session) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// UserMessage maps the latest status and hint code to a human-readable message.
func (s *Session) UserMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return MessageFor(services.StatusPending, "")
	}
	return MessageFor(s.latest.Status, s.latest.HintCode)
}

// logCredentialClaims surfaces subject and expiry of the received credential
// in the logs. The claims are read unverified, signature verification is the
// provider's concern.
func logCredentialClaims(credential string) {
	claims := jwt.StandardClaims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(credential, &claims); err != nil {
		logging.Log().Debug("credential is not a JWT, keeping it opaque")
		return
	}
	logging.Log().WithField("subject", claims.Subject).WithField("expiresAt", claims.ExpiresAt).Info("credential received")
}
