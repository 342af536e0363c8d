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

package save_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmehl/pdse-go/pkg/save"
)

const (
	classScroll  = "com.shatteredpixel.shatteredpixeldungeon.items.scrolls.ScrollOfRage"
	classMapping = "com.shatteredpixel.shatteredpixeldungeon.items.scrolls.ScrollOfMagicMapping"
	classTorch   = "com.shatteredpixel.shatteredpixeldungeon.items.Torch"
	classSword   = "com.shatteredpixel.shatteredpixeldungeon.items.weapon.melee.Sword"
)

func num(t *testing.T, it save.Item, key string) float64 {
	t.Helper()

	v, ok := it.Num(key)
	require.True(t, ok, "missing numeric field %q", key)

	return v
}

func inventory(t *testing.T, hero save.Item) []save.Item {
	t.Helper()

	raw, ok := hero[save.KeyInventory].([]any)
	require.True(t, ok)

	items := make([]save.Item, 0, len(raw))
	for _, v := range raw {
		switch m := v.(type) {
		case map[string]any:
			items = append(items, save.Item(m))
		case save.Item:
			items = append(items, m)
		default:
			t.Fatalf("inventory entry is not an item: %T", v)
		}
	}

	return items
}

func TestHeal(t *testing.T) {
	tests := []struct {
		name   string
		hp, ht float64
		want   float64
	}{
		{name: "wounded hero is healed", hp: 5, ht: 20, want: 20},
		{name: "full health is a no-op", hp: 20, ht: 20, want: 20},
		{name: "overfull health is kept", hp: 25, ht: 20, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := save.Document{save.KeyHero: map[string]any{
				save.KeyHP: tt.hp,
				save.KeyHT: tt.ht,
			}}

			require.NoError(t, save.Heal(doc))

			hero := heroOf(t, doc)
			assert.Equal(t, tt.want, num(t, hero, save.KeyHP))
			assert.Equal(t, tt.ht, num(t, hero, save.KeyHT))
		})
	}
}

func TestBless(t *testing.T) {
	doc := mustParse(t, `{"hero": {
		"weapon": {"__className": "w", "durability": 50},
		"armor": {"__className": "a", "durability": 150},
		"inventory": [
			{"__className": "bag", "durability": 99, "inventory": [
				{"__className": "inner", "durability": 1}
			]},
			{"__className": "plain"}
		]
	}}`)

	require.NoError(t, save.Bless(doc))

	hero := heroOf(t, doc)

	var got = map[string]any{}
	for it := range save.Walk(hero) {
		got[it.Class()] = it[save.KeyDurability]
	}

	assert.Equal(t, float64(100), got["w"], "worn item restored to exactly 100")
	assert.Equal(t, float64(150), got["a"], "above-full durability untouched")
	assert.Equal(t, float64(100), got["bag"])
	assert.Equal(t, float64(100), got["inner"], "nested item restored")
	assert.Nil(t, got["plain"], "no durability field grown")
}

func TestUncurse(t *testing.T) {
	doc := mustParse(t, `{"hero": {
		"weapon": {"__className": "w", "cursed": true},
		"inventory": [
			{"__className": "a", "cursed": false},
			{"__className": "b"}
		]
	}}`)

	require.NoError(t, save.Uncurse(doc))

	hero := heroOf(t, doc)
	for it := range save.Walk(hero) {
		if c, ok := it[save.KeyCursed].(bool); ok {
			assert.False(t, c, "item %s still cursed", it.Class())
		} else {
			assert.Equal(t, "b", it.Class(), "no cursed field grown")
		}
	}
}

func TestUncurseIsOptIn(t *testing.T) {
	names := func(rs []save.Rule) []string {
		var out []string
		for _, r := range rs {
			out = append(out, r.Name)
		}
		return out
	}

	assert.Equal(t,
		[]string{"heal", "bless", "ensure-essentials", "multiply"},
		names(save.Rules(false)))

	assert.Equal(t,
		[]string{"heal", "bless", "uncurse", "ensure-essentials", "multiply"},
		names(save.Rules(true)))
}

func TestEnsureEssentials(t *testing.T) {
	t.Run("empty inventory gains one mapping scroll", func(t *testing.T) {
		doc := mustParse(t, `{"hero": {"HP": 1, "HT": 1, "inventory": []}}`)

		require.NoError(t, save.EnsureEssentials(doc))

		items := inventory(t, heroOf(t, doc))
		require.Len(t, items, 1)

		it := items[0]
		assert.Equal(t, classMapping, it.Class())
		assert.Equal(t, float64(10), num(t, it, save.KeyQuantity))
		assert.Equal(t, false, it[save.KeyCursed])
		assert.Equal(t, float64(0), num(t, it, save.KeyLevel))
		assert.Equal(t, false, it[save.KeyLevelKnown])
	})

	t.Run("existing scroll suppresses the append", func(t *testing.T) {
		doc := mustParse(t, `{"hero": {"inventory": [
			{"__className": "`+classMapping+`", "quantity": 1, "cursed": true}
		]}}`)

		require.NoError(t, save.EnsureEssentials(doc))

		items := inventory(t, heroOf(t, doc))
		assert.Len(t, items, 1, "no duplicate essential")
		assert.Equal(t, float64(1), num(t, items[0], save.KeyQuantity), "existing item untouched")
	})

	t.Run("scroll inside a bag counts as owned", func(t *testing.T) {
		doc := mustParse(t, `{"hero": {"inventory": [
			{"__className": "bag", "inventory": [
				{"__className": "`+classMapping+`", "quantity": 2}
			]}
		]}}`)

		require.NoError(t, save.EnsureEssentials(doc))

		items := inventory(t, heroOf(t, doc))
		assert.Len(t, items, 1)
	})
}

func TestMultiply(t *testing.T) {
	tests := []struct {
		name     string
		class    string
		quantity any
		want     any
	}{
		{name: "low scroll stack topped up", class: classScroll, quantity: float64(3), want: float64(10)},
		{name: "tall stack kept", class: classScroll, quantity: float64(15), want: float64(15)},
		{name: "singleton torch topped up", class: classTorch, quantity: float64(1), want: float64(10)},
		{name: "non-consumable kept", class: classSword, quantity: float64(3), want: float64(3)},
		{name: "no quantity field untouched", class: classScroll, quantity: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := map[string]any{save.KeyClass: tt.class}
			if tt.quantity != nil {
				item[save.KeyQuantity] = tt.quantity
			}

			doc := save.Document{save.KeyHero: map[string]any{
				save.KeyInventory: []any{item},
			}}

			require.NoError(t, save.Multiply(doc))

			assert.Equal(t, tt.want, item[save.KeyQuantity])
		})
	}
}

func TestRulesIdempotent(t *testing.T) {
	const source = `{"hero": {
		"HP": 1, "HT": 30,
		"weapon": {"__className": "` + classSword + `", "durability": 10, "cursed": true},
		"inventory": [
			{"__className": "` + classScroll + `", "quantity": 1},
			{"__className": "bag", "inventory": [
				{"__className": "` + classTorch + `", "quantity": 2}
			]}
		]
	}}`

	apply := func(doc save.Document) {
		for _, r := range save.Rules(true) {
			require.NoError(t, r.Apply(doc))
		}
	}

	normalize := func(doc save.Document) save.Document {
		b, err := save.MarshalPretty(doc)
		require.NoError(t, err)

		out, err := save.ParseDocument(b)
		require.NoError(t, err)

		return out
	}

	once := mustParse(t, source)
	apply(once)

	twice := mustParse(t, source)
	apply(twice)
	apply(twice)

	assert.Equal(t, normalize(once), normalize(twice))
}
