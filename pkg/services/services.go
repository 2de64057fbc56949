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

package services

import "context"

// OrderStarter starts authentication and signing orders at the identity provider.
type OrderStarter interface {
	StartAuthentication(ctx context.Context, request StartAuthenticationRequest) (*Order, error)
	StartSigning(ctx context.Context, request StartSigningRequest) (*Order, error)
}

// OrderCollector performs the collect operation which reports order status.
type OrderCollector interface {
	Collect(ctx context.Context, orderRef string) (*CollectResult, error)
}

// DocumentExchanger fetches the document to be signed and exchanges the
// original document plus signer identity for its signed counterpart.
type DocumentExchanger interface {
	FetchDocument(ctx context.Context) ([]byte, error)
	ExchangeDocument(ctx context.Context, document []byte, signer SignerIdentity) ([]byte, error)
}

// Provider is the full identity-provider surface consumed by the flows.
type Provider interface {
	OrderStarter
	OrderCollector
	DocumentExchanger
}

// Locator is an optional capability supplying a geographic position fix.
// Absence of a fix must never fail a flow, results only enrich telemetry.
type Locator interface {
	CurrentPosition(ctx context.Context) (*Position, error)
}
