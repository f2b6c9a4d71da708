package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bckpockets/droppy-scraper/app/drops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFilename(t *testing.T) {
	tests := map[string]string{
		"Abyssal Sire":             "abyssal_sire",
		"Kree'arra":                "kree_arra",
		"Reward casket (beginner)": "reward_casket_beginner",
		"  K'ril Tsutsaroth!! ":    "k_ril_tsutsaroth",
		"Shades of Mort'ton":       "shades_of_mort_ton",
		"TzHaar":                   "tzhaar",
		"???":                      "",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizeFilename(in), in)
	}
}

func TestWriteSource(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	source := drops.Source{
		Name: "Abyssal Sire",
		Drops: []drops.Record{
			{Name: "Abyssal orphan", Rate: 1.0 / 2560, RateDisplay: "1/2,560", ItemID: 13262},
			{Name: "Unsired", Rate: 0.01, RateDisplay: "1/100", ItemID: -1},
		},
	}

	id, err := w.WriteSource(source)
	require.NoError(t, err)
	assert.Equal(t, "abyssal_sire", id)

	data, err := os.ReadFile(filepath.Join(dir, "abyssal_sire.json"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Abyssal Sire", raw["name"])

	list := raw["drops"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "Abyssal orphan", first["name"])
	assert.Equal(t, 1.0/2560, first["rate"])
	assert.Equal(t, "1/2,560", first["rateDisplay"])
	assert.Equal(t, float64(13262), first["itemId"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteSourceRejectsEmptyIdentifier(t *testing.T) {
	_, err := NewWriter(t.TempDir()).WriteSource(drops.Source{Name: "!!"})
	assert.Error(t, err)
}

func TestWriteIndexAndAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	w := NewWriter(dir)

	require.NoError(t, w.WriteIndex(Index{
		Sources: []string{"callisto", "artio"},
		Aliases: map[string][]string{"callisto and artio": {"callisto", "artio"}},
	}))
	require.NoError(t, w.WriteAll(map[string]drops.Source{
		"callisto": {Name: "Callisto", Drops: []drops.Record{{Name: "Callisto cub", Rate: 0.001, RateDisplay: "1/1,000", ItemID: 13178}}},
	}))

	var index Index
	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &index))
	assert.Equal(t, []string{"callisto", "artio"}, index.Sources)
	assert.Equal(t, []string{"callisto", "artio"}, index.Aliases["callisto and artio"])

	var all map[string]drops.Source
	data, err = os.ReadFile(filepath.Join(dir, AllFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &all))
	assert.Equal(t, "Callisto cub", all["callisto"].Drops[0].Name)
}

func TestWriteIndexEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewWriter(dir).WriteIndex(Index{}))

	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sources": [], "aliases": {}}`, string(data))
}

func TestRemoveSource(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	id, err := w.WriteSource(drops.Source{Name: "Zalcano", Drops: []drops.Record{}})
	require.NoError(t, err)

	require.NoError(t, w.RemoveSource(id))
	_, err = os.Stat(filepath.Join(dir, "zalcano.json"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, w.RemoveSource(id), "removing twice is fine")
	assert.Error(t, w.RemoveSource(""))
}
