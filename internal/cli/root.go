// pdse-go: Pixel Dungeon save edit suite
// Copyright (C) 2026  Jonas Mehl
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package cli wires flags, logging, and the session together.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmehl/pdse-go/internal/bridge"
	"github.com/jmehl/pdse-go/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "pdse",
	Short: "Edit a Pixel Dungeon save in place on a connected device",
	Long: `pdse pulls a Shattered Pixel Dungeon save file from a connected
Android device, heals the hero, repairs worn items, stocks essential
consumables, tops up multipliable stacks, and pushes the result back.

A pretty-printed staging copy of the document is kept in the working
directory while the edit is in flight; if a run is interrupted, the next
run on the same working directory resumes from it instead of fetching
again.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// Execute runs the root command and exits non-zero on any failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().IntP("slot", "s", 1, "save slot to edit")
	rootCmd.Flags().StringP("verbosity", "v", "quiet", "log verbosity: quiet, info or debug")
	rootCmd.Flags().StringP("workdir", "w", "", "working directory (default: a fresh temporary directory)")
	rootCmd.Flags().BoolP("no-save", "n", false, "mutate and report without pushing back; keeps the staging file")
	rootCmd.Flags().Bool("uncurse", false, "also lift curses from items")
	rootCmd.Flags().String("adb", "", "adb binary to use (default: resolved through PATH)")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	viper.SetEnvPrefix("PDSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		panic(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, err := newLogger(viper.GetString("verbosity"))
	if err != nil {
		return err
	}

	cfg := session.Config{
		Slot:    viper.GetInt("slot"),
		WorkDir: viper.GetString("workdir"),
		NoSave:  viper.GetBool("no-save"),
		Uncurse: viper.GetBool("uncurse"),
	}

	s, err := session.New(cfg, bridge.NewADB(viper.GetString("adb")), log)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Run(cmd.Context())
}

// newLogger maps the verbosity flag onto a slog text handler on stderr.
func newLogger(verbosity string) (*slog.Logger, error) {
	var level slog.Level

	switch verbosity {
	case "quiet":
		level = slog.LevelError
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		return nil, fmt.Errorf("unknown verbosity %q", verbosity)
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}
