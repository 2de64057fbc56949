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

// Package poller drives the collect operation for a single order until the
// order reaches a terminal status.
package poller

import (
	"context"
	"time"

	"github.com/eid-foundation/bankid-session/logging"
	"github.com/eid-foundation/bankid-session/pkg/services"
)

// DefaultInterval is the collect cadence of the reference behaviour.
const DefaultInterval = 2 * time.Second

// Poller repeatedly collects the status of one order at a fixed cadence.
// Collect calls are serialized: a tick is only scheduled after the previous
// response resolved, so results can never be applied out of order.
type Poller struct {
	Client   services.OrderCollector
	Interval time.Duration
	// OnResult is invoked for every successfully collected result, in order.
	OnResult func(result *services.CollectResult)
}

// New returns a poller with the default cadence.
func New(client services.OrderCollector) *Poller {
	return &Poller{Client: client, Interval: DefaultInterval}
}

// Run polls the order until a terminal status is observed and returns the
// terminal result. Cancelling the context deterministically stops the loop,
// a response that resolves after cancellation is discarded, not applied.
// A transport-level collect failure is logged and the cadence continues, it
// does not fail the order. Only an explicit failed status terminates it.
func (p *Poller) Run(ctx context.Context, orderRef string) (*services.CollectResult, error) {
	interval := p.Interval
	if interval == 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			result, err := p.Client.Collect(ctx, orderRef)
			if ctx.Err() != nil {
				// stopped while the request was in flight, discard the late result
				return nil, ctx.Err()
			}
			if err != nil {
				logging.Log().WithError(err).WithField("orderRef", orderRef).Warn("collect request failed, continuing at fixed interval")
				continue
			}

			if p.OnResult != nil {
				p.OnResult(result)
			}
			if result.Status.Terminal() {
				return result, nil
			}
		}
	}
}
