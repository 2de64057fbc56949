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

// CollectRequest is the body of the collect operation.
type CollectRequest struct {
	OrderRef string `json:"orderRef"`
}

// StartAuthenticationRequest contains all information to start an authentication order.
type StartAuthenticationRequest struct {
	EndUserIP string `json:"endUserIp"`
}

// StartSigningRequest contains all information to start a signing order.
// UserVisibleData carries the transport-encoded statement of what is being
// signed, UserVisibleDataFormat names the encoding scheme used.
type StartSigningRequest struct {
	EndUserIP             string `json:"endUserIp"`
	UserVisibleData       string `json:"userVisibleData"`
	UserVisibleDataFormat string `json:"userVisibleDataFormat"`
}

// StartOrderResult is the provider's answer to a start request.
type StartOrderResult struct {
	OrderRef       string `json:"orderRef"`
	AutoStartToken string `json:"autoStartToken"`
	QrStartToken   string `json:"qrStartToken"`
	QrStartSecret  string `json:"qrStartSecret"`
}

// CollectEnvelope is the raw collect response shape. The completion data
// travels nested under "response" for signing orders.
type CollectEnvelope struct {
	OrderRef string      `json:"orderRef"`
	Status   OrderStatus `json:"status"`
	HintCode string      `json:"hintCode,omitempty"`
	Token    string      `json:"token,omitempty"`
	Response *struct {
		CompletionData *CompletionData `json:"completionData"`
	} `json:"response,omitempty"`
}

// AsCollectResult flattens the envelope into a CollectResult.
func (e CollectEnvelope) AsCollectResult() *CollectResult {
	result := &CollectResult{
		OrderRef: e.OrderRef,
		Status:   e.Status,
		HintCode: e.HintCode,
		Token:    e.Token,
	}
	if e.Response != nil {
		result.CompletionData = e.Response.CompletionData
	}
	return result
}
