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

import (
	"errors"
	"time"
)

// OrderStatus describes the state of an order as reported by the collect operation.
type OrderStatus string

const (
	// StatusPending indicates the order has not been confirmed or rejected yet
	StatusPending OrderStatus = "pending"
	// StatusFailed indicates the provider rejected or expired the order. Terminal.
	StatusFailed OrderStatus = "failed"
	// StatusComplete indicates the user confirmed the order. Terminal.
	StatusComplete OrderStatus = "complete"
)

// Terminal tells whether no further collect calls should be made for this status.
func (s OrderStatus) Terminal() bool {
	return s == StatusFailed || s == StatusComplete
}

// Order is one authentication or signing transaction as handed out by the provider.
// It is immutable after creation and discarded when the session ends.
type Order struct {
	OrderRef       string    `json:"orderRef"`
	AutoStartToken string    `json:"autoStartToken"`
	QrStartToken   string    `json:"qrStartToken"`
	QrStartSecret  string    `json:"qrStartSecret"`
	StartedAt      time.Time `json:"-"`
}

// SignerIdentity holds the identity of the user as disclosed by the provider on completion.
type SignerIdentity struct {
	GivenName      string `json:"givenName"`
	Name           string `json:"name"`
	PersonalNumber string `json:"personalNumber"`
	Surname        string `json:"surname"`
}

// CompletionData contains the signer identity and the cryptographic artifacts
// returned when a signing order completes.
type CompletionData struct {
	User            SignerIdentity `json:"user"`
	Signature       string         `json:"signature"`
	OcspResponse    string         `json:"ocspResponse"`
	BankIDIssueData string         `json:"bankIdIssueData"`
}

// CollectResult is the outcome of a single collect call. Only the latest
// result for an order is relevant, no history is kept.
type CollectResult struct {
	OrderRef       string          `json:"orderRef"`
	Status         OrderStatus     `json:"status"`
	HintCode       string          `json:"hintCode,omitempty"`
	Token          string          `json:"token,omitempty"`
	CompletionData *CompletionData `json:"completionData,omitempty"`
}

// Position is a geographic position fix used for optional telemetry enrichment.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ErrSessionNotFound is returned when there is no session known for a given session ID
var ErrSessionNotFound = errors.New("session not found")

// ErrOrderNotStarted is returned when an operation requires a started order
var ErrOrderNotStarted = errors.New("order not started")
