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

package logging

import "github.com/sirupsen/logrus"

// ModuleName is attached to every log entry produced by this module.
const ModuleName = "BankID session"

// Log returns the logger instance for this module.
func Log() *logrus.Entry {
	return logrus.StandardLogger().WithField("module", ModuleName)
}
