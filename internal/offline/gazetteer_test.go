package offline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGazetteer_HebrewAlias(t *testing.T) {
	name, start, end, ok := DefaultGazetteer().Match("שובר מתנה לרשת פוקס מחכה לך")
	require.True(t, ok)
	assert.Equal(t, "Fox", name)
	assert.Equal(t, "פוקס", "שובר מתנה לרשת פוקס מחכה לך"[start:end])
}

func TestGazetteer_SpecificEntryBeatsPrefix(t *testing.T) {
	name, _, _, ok := DefaultGazetteer().Match("sale at Fox Home this week")
	require.True(t, ok)
	assert.Equal(t, "Fox Home", name, "Fox Home registered before Fox")

	name, _, _, ok = DefaultGazetteer().Match("gift card for Golf & Co")
	require.True(t, ok)
	assert.Equal(t, "Golf & Co", name)
}

func TestGazetteer_CaseInsensitive(t *testing.T) {
	name, _, _, ok := DefaultGazetteer().Match("your FOX voucher")
	require.True(t, ok)
	assert.Equal(t, "Fox", name)
}

func TestGazetteer_BoundaryRequired(t *testing.T) {
	_, _, _, ok := DefaultGazetteer().Match("firefox browser update")
	assert.False(t, ok, "fox inside another word is not a store")
}

func TestGazetteer_NoMatch(t *testing.T) {
	_, _, _, ok := DefaultGazetteer().Match("נתראה מחר בערב")
	assert.False(t, ok)
}

func TestLoadGazetteer_AppendsAfterBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merchants.yaml")
	data := `
- name: Corner Bakery
  aliases: ["Corner Bakery", "המאפיה בפינה"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	g, err := LoadGazetteer(path)
	require.NoError(t, err)

	name, _, _, ok := g.Match("voucher for Corner Bakery")
	require.True(t, ok)
	assert.Equal(t, "Corner Bakery", name)

	// Built-in vocabulary still wins when both occur.
	name, _, _, ok = g.Match("Fox or Corner Bakery")
	require.True(t, ok)
	assert.Equal(t, "Fox", name)
}

func TestLoadGazetteer_MissingFile(t *testing.T) {
	_, err := LoadGazetteer(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
