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

// Package launch builds the device hand-off URL which opens the native
// identification app on the same device.
package launch

import (
	"fmt"
	"net/url"
)

// URL builds the app deep link from the order's auto start token. The caller
// is returned to returnURL once the app is done. An empty token produces a
// syntactically valid but useless URL, validating it is the caller's concern.
func URL(autoStartToken string, returnURL string) string {
	return fmt.Sprintf("bankid:///?autostarttoken=%s&redirect=%s", autoStartToken, url.QueryEscape(returnURL))
}
