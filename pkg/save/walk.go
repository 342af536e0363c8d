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

package save

import "iter"

// Walk returns a fresh traversal over every item the hero owns: the
// equipped weapon, the equipped armor, and the inventory, descending into
// nested containers. Each reachable item is yielded exactly once, as a
// live reference into the document.
//
// A container's contents come out before the container itself: a bag has
// its own durability and quantity to check, after whatever it holds.
func Walk(hero Item) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, slot := range []string{KeyWeapon, KeyArmor} {
			if it, ok := asItem(hero[slot]); ok {
				if !walkItem(it, yield) {
					return
				}
			}
		}

		walkContents(hero, yield)
	}
}

// walkItem yields the item after its nested contents, if any.
func walkItem(it Item, yield func(Item) bool) bool {
	if !walkContents(it, yield) {
		return false
	}

	return yield(it)
}

func walkContents(it Item, yield func(Item) bool) bool {
	inv, ok := it[KeyInventory].([]any)
	if !ok {
		return true
	}

	for _, v := range inv {
		if sub, ok := asItem(v); ok {
			if !walkItem(sub, yield) {
				return false
			}
		}
	}

	return true
}
