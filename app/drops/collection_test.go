package drops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clogMarkup = `== Bosses ==
=== Abyssal Sire ===
{{plink|Abyssal orphan}} {{plink|Unsired}}
{{plink|Abyssal orphan}}
=== The Nightmare ===
{{Plink|Little nightmare|pic=Little nightmare.png}}
=== Fortis Colosseum ===
{{plink|Smol heredit}}
=== Empty ===
Nothing here.
`

func TestParseCollectionLog(t *testing.T) {
	clog := ParseCollectionLog(clogMarkup)

	assert.Equal(t, CollectionLog{
		"Abyssal Sire":     {"Abyssal orphan", "Unsired"},
		"The Nightmare":    {"Little nightmare"},
		"Fortis Colosseum": {"Smol heredit"},
	}, clog)
}

func TestCollectionLogItems(t *testing.T) {
	clog := ParseCollectionLog(clogMarkup)

	items, ok := clog.Items("Abyssal Sire", nil)
	require.True(t, ok)
	assert.Equal(t, []string{"Abyssal orphan", "Unsired"}, items)

	items, ok = clog.Items("Nightmare", nil)
	require.True(t, ok)
	assert.Equal(t, []string{"Little nightmare"}, items)

	items, ok = clog.Items("Sol Heredit", []string{"Fortis Colosseum"})
	require.True(t, ok)
	assert.Equal(t, []string{"Smol heredit"}, items)

	items, ok = clog.Items("abyssal sire", nil)
	require.True(t, ok)
	assert.Len(t, items, 2)

	_, ok = clog.Items("Zulrah", nil)
	assert.False(t, ok)
}

func TestCollectionLogItemsCaseFoldIsStable(t *testing.T) {
	clog := CollectionLog{
		"ZULRAH": {"Pet snakeling"},
		"Zulrah": {"Tanzanite mutagen"},
		"zULRAH": {"Jar of swamp"},
	}

	for range 20 {
		items, ok := clog.Items("zulrah", nil)
		require.True(t, ok)
		assert.Equal(t, []string{"Pet snakeling"}, items)
	}
}

func TestCollectionLogItemsStripsArticle(t *testing.T) {
	clog := CollectionLog{"Gauntlet": {"Youngllef"}}

	items, ok := clog.Items("The Gauntlet", nil)
	require.True(t, ok)
	assert.Equal(t, []string{"Youngllef"}, items)
}

func TestFilterByName(t *testing.T) {
	records := []Record{
		{Name: "Abyssal orphan", Rate: 0.001},
		{Name: "Coins", Rate: 0.5},
		{Name: "UNSIRED", Rate: 0.01},
	}

	filtered := FilterByName(records, []string{"abyssal orphan", " Unsired "})
	require.Len(t, filtered, 2)
	assert.Equal(t, "Abyssal orphan", filtered[0].Name)
	assert.Equal(t, "UNSIRED", filtered[1].Name)
}

func TestDedupe(t *testing.T) {
	records := []Record{
		{Name: "Dragon bones", Rate: 0.5},
		{Name: "Coins", Rate: 0.25},
		{Name: "dragon bones", Rate: 0.1},
	}

	unique := Dedupe(records)
	require.Len(t, unique, 2)
	assert.Equal(t, 0.5, unique[0].Rate)
	assert.Equal(t, "Coins", unique[1].Name)
}

func TestWithItemIDs(t *testing.T) {
	records := []Record{
		{Name: "Abyssal whip", ItemID: Unparseable},
		{Name: "Dragon bones", ItemID: 536},
		{Name: "Mystery", ItemID: 0},
	}
	ids := map[string]int{"abyssal whip": 4151, "dragon bones": 1, "mystery": 7}

	resolved := WithItemIDs(records, ids)
	assert.Equal(t, 4151, resolved[0].ItemID)
	assert.Equal(t, 536, resolved[1].ItemID)
	assert.Equal(t, 7, resolved[2].ItemID)

	assert.Equal(t, Unparseable, records[0].ItemID)
}
