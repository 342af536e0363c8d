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

// Package bridge moves raw save files between the device and the local
// working directory.
package bridge

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Transfer fetches and pushes one save slot's raw bytes. Both calls block
// until the underlying transport finishes; any failure is fatal to the
// session.
type Transfer interface {
	Fetch(ctx context.Context, slot int, dst string) error
	Push(ctx context.Context, slot int, src string) error
}

// defaultRemote is the game's per-slot save path on the device.
const defaultRemote = "/sdcard/Android/data/com.shatteredpixel.shatteredpixeldungeon/files/game%d/game.dat"

// ADB shells out to the Android debug bridge for transfers.
type ADB struct {
	bin    string
	remote string
	run    func(ctx context.Context, name string, args ...string) error
}

// NewADB returns a Transfer backed by the given adb binary; an empty name
// resolves through PATH.
func NewADB(bin string) *ADB {
	if bin == "" {
		bin = "adb"
	}

	return &ADB{bin: bin, remote: defaultRemote, run: runCommand}
}

func (a *ADB) remotePath(slot int) string {
	return fmt.Sprintf(a.remote, slot)
}

// Fetch pulls the slot's save file from the device into dst.
func (a *ADB) Fetch(ctx context.Context, slot int, dst string) error {
	return a.run(ctx, a.bin, "pull", a.remotePath(slot), dst)
}

// Push uploads src over the slot's save file on the device.
func (a *ADB) Push(ctx context.Context, slot int, src string) error {
	return a.run(ctx, a.bin, "push", src, a.remotePath(slot))
}

// runCommand executes the tool and surfaces its stderr in the error, so
// adb's own diagnostic reaches the user.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	verb := name
	if len(args) > 0 {
		verb = name + " " + args[0]
	}

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", verb, err, msg)
		}

		return fmt.Errorf("%s: %w", verb, err)
	}

	return nil
}
