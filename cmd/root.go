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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eid-foundation/bankid-session/configuration"
	"github.com/eid-foundation/bankid-session/engine"
	"github.com/eid-foundation/bankid-session/logging"
	"github.com/eid-foundation/bankid-session/pkg"
)

var e = engine.NewEngine()
var rootCmd = e.Cmd

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().AddFlagSet(e.FlagSet)
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	// flags are parsed by Execute, inject the configuration just before the
	// selected subcommand runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if dir := viper.GetString(pkg.ConfConfigPath); dir != "" {
			if err := configuration.Initialize(dir, "bankid-session"); err != nil {
				panic(err)
			}
			cfg, err := configuration.GetInstance()
			if err != nil {
				panic(err)
			}
			viper.Set(pkg.ConfAddress, cfg.Address)
			viper.Set(pkg.ConfProviderURL, cfg.ProviderURL)
			viper.Set(pkg.ConfEndUserIP, cfg.EndUserIP)
			viper.Set(pkg.ConfRedirectURL, cfg.RedirectURL)
			viper.Set(pkg.ConfPollInterval, cfg.PollInterval)
		}

		flows := pkg.Instance()
		flows.Config.ProviderURL = viper.GetString(pkg.ConfProviderURL)
		flows.Config.EndUserIP = viper.GetString(pkg.ConfEndUserIP)
		flows.Config.RedirectURL = viper.GetString(pkg.ConfRedirectURL)
		flows.Config.PollInterval = viper.GetDuration(pkg.ConfPollInterval)

		if err := e.Configure(); err != nil {
			panic(err)
		}
		logging.Log().Debugf("configured with provider %s", flows.Config.ProviderURL)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
