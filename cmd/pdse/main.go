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

/*
pdse edits a Shattered Pixel Dungeon save file on a connected Android
device: it pulls the save over adb, heals the hero, repairs worn items,
stocks essential consumables, tops up multipliable stacks, and pushes the
result back.

Usage:

	pdse [--slot N] [--verbosity quiet|info|debug] [--workdir DIR] [--no-save] [--uncurse]
*/
package main

import "github.com/jmehl/pdse-go/internal/cli"

func main() {
	cli.Execute()
}
