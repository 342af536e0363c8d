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

import "strings"

// Rule is one named in-place transformation of the document. Rules are
// idempotent: re-applying after a prior application changes nothing.
type Rule struct {
	Name  string
	Apply func(Document) error
}

// Rules returns the mutation rules in their fixed execution order. The
// rules are independent of each other; the order only matters for
// reproducible logs. Uncurse is off by default and joins the set only on
// request.
func Rules(uncurse bool) []Rule {
	rs := []Rule{
		{Name: "heal", Apply: Heal},
		{Name: "bless", Apply: Bless},
	}

	if uncurse {
		rs = append(rs, Rule{Name: "uncurse", Apply: Uncurse})
	}

	return append(rs,
		Rule{Name: "ensure-essentials", Apply: EnsureEssentials},
		Rule{Name: "multiply", Apply: Multiply},
	)
}

const (
	fullDurability = 100
	minStack       = 10
)

const classPrefix = "com.shatteredpixel.shatteredpixeldungeon."

const classMagicMapping = classPrefix + "items.scrolls.ScrollOfMagicMapping"

// essentials are the item templates guaranteed to exist in the hero's
// inventory after a run.
var essentials = []Item{
	{
		KeyClass:      classMagicMapping,
		KeyQuantity:   float64(minStack),
		KeyCursed:     false,
		KeyLevel:      float64(0),
		KeyLevelKnown: false,
	},
}

// multiplyPrefixes lists the consumable categories whose stacks are
// topped up, plus two classes that sit outside any category package.
var (
	multiplyPrefixes = []string{
		classPrefix + "items.food.",
		classPrefix + "items.potions.",
		classPrefix + "plants.",
		classPrefix + "items.scrolls.",
		classPrefix + "items.stones.",
	}

	multiplyClasses = []string{
		classPrefix + "items.Stylus",
		classPrefix + "items.Torch",
	}
)

// Heal raises the hero's current health to its maximum.
func Heal(doc Document) error {
	hero, err := Hero(doc)
	if err != nil {
		return err
	}

	hp, okHP := hero.Num(KeyHP)
	ht, okHT := hero.Num(KeyHT)

	if okHP && okHT && hp < ht {
		hero.SetNum(KeyHP, ht)
	}

	return nil
}

// Bless restores every worn-down item to full durability. Items that do
// not carry a durability field are untouched, as are items already at or
// above full.
func Bless(doc Document) error {
	hero, err := Hero(doc)
	if err != nil {
		return err
	}

	for it := range Walk(hero) {
		if d, ok := it.Num(KeyDurability); ok && d < fullDurability {
			it.SetNum(KeyDurability, fullDurability)
		}
	}

	return nil
}

// Uncurse lifts the curse flag from every cursed item. It is kept out of
// the default rule set; see Rules.
func Uncurse(doc Document) error {
	hero, err := Hero(doc)
	if err != nil {
		return err
	}

	for it := range Walk(hero) {
		if c, ok := it[KeyCursed].(bool); ok && c {
			it[KeyCursed] = false
		}
	}

	return nil
}

// EnsureEssentials appends a fresh copy of each essential template whose
// class is absent from the owned-item set. A single matching item anywhere
// in the hero's possession, whatever its quantity or state, suppresses the
// append.
func EnsureEssentials(doc Document) error {
	hero, err := Hero(doc)
	if err != nil {
		return err
	}

	owned := make(map[string]bool)
	for it := range Walk(hero) {
		owned[it.Class()] = true
	}

	for _, tpl := range essentials {
		if owned[tpl.Class()] {
			continue
		}

		fresh := make(map[string]any, len(tpl))
		for k, v := range tpl {
			fresh[k] = v
		}

		inv, _ := hero[KeyInventory].([]any)
		hero[KeyInventory] = append(inv, fresh)
	}

	return nil
}

// Multiply raises the stack of every multipliable consumable to at least
// minStack. Quantities are never lowered; items without a quantity field
// or outside the multipliable classes are untouched.
func Multiply(doc Document) error {
	hero, err := Hero(doc)
	if err != nil {
		return err
	}

	for it := range Walk(hero) {
		if !multipliable(it.Class()) {
			continue
		}

		if q, ok := it.Num(KeyQuantity); ok && q < minStack {
			it.SetNum(KeyQuantity, minStack)
		}
	}

	return nil
}

func multipliable(class string) bool {
	for _, p := range multiplyPrefixes {
		if strings.HasPrefix(class, p) {
			return true
		}
	}

	for _, c := range multiplyClasses {
		if class == c {
			return true
		}
	}

	return false
}
