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

import (
	"errors"
	"fmt"
)

// Document is the whole parsed save: a JSON object holding at least a
// hero entry. It is mutated in place and never copied.
type Document map[string]any

// Item is one game object: the hero itself, a weapon, a piece of armor,
// or an inventory entry. Items carrying their own inventory field are
// containers and nest to arbitrary depth.
type Item map[string]any

// Field names of the save document.
const (
	KeyHero      = "hero"
	KeyWeapon    = "weapon"
	KeyArmor     = "armor"
	KeyInventory = "inventory"
	KeyClass     = "__className"

	KeyHP         = "HP"
	KeyHT         = "HT"
	KeyDurability = "durability"
	KeyQuantity   = "quantity"
	KeyCursed     = "cursed"
	KeyLevel      = "level"
	KeyLevelKnown = "levelKnown"
)

var errNoHero = errors.New("document has no hero entry")

// Hero returns the hero object of the document.
func Hero(doc Document) (Item, error) {
	it, ok := asItem(doc[KeyHero])
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrFormat, errNoHero)
	}

	return it, nil
}

// Class returns the item's class identifier, or "" when absent.
func (it Item) Class() string {
	s, _ := it[KeyClass].(string)
	return s
}

// Num returns a numeric field of the item.
func (it Item) Num(key string) (float64, bool) {
	v, ok := it[key].(float64)
	return v, ok
}

// SetNum sets a numeric field of the item.
func (it Item) SetNum(key string, v float64) {
	it[key] = v
}

// asItem views a decoded JSON value as an Item without copying it.
func asItem(v any) (Item, bool) {
	switch m := v.(type) {
	case map[string]any:
		return Item(m), true
	case Item:
		return m, true
	}

	return nil, false
}
