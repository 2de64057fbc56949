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

package qr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/eid-foundation/bankid-session/pkg/services"
)

// Frame is one tick of the animated QR code. It is superseded on every tick
// and never persisted.
type Frame struct {
	Token          string
	ElapsedSeconds int
}

// Refresh computes the rolling authentication code for the animated QR code:
// HMAC-SHA256 over the decimal representation of elapsedSeconds, keyed with
// the UTF-8 bytes of the order's qrStartSecret, hex encoded.
// Deterministic, no side effects. An empty secret yields a well-formed but
// useless digest, validating the secret is the caller's concern.
func Refresh(secret string, elapsedSeconds int) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.Itoa(elapsedSeconds)))
	return hex.EncodeToString(mac.Sum(nil))
}

// FrameFor produces the displayable QR payload for the given order at the
// given wall-clock time: bankid.<qrStartToken>.<elapsedSeconds>.<authCode>.
// Elapsed time is clamped to zero so clock skew can never produce a negative
// counter.
func FrameFor(order services.Order, now time.Time) Frame {
	elapsed := int(now.Sub(order.StartedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	return Frame{
		Token:          fmt.Sprintf("bankid.%s.%d.%s", order.QrStartToken, elapsed, Refresh(order.QrStartSecret, elapsed)),
		ElapsedSeconds: elapsed,
	}
}
