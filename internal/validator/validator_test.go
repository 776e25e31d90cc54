package validator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/cardsight/internal/card"
	"github.com/arcanaland/cardsight/internal/config"
	"github.com/arcanaland/cardsight/internal/testutils"
)

const manifest = `[catalog]
id = "synthetic"
name = "Synthetic Blocks"
version = "1.0"
`

func standardDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutils.WriteCatalog(t, dir, testutils.CardSize, card.StandardNames()...)
	return dir
}

func TestValidCatalog(t *testing.T) {
	dir := standardDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.toml"), []byte(manifest), 0o644))
	testutils.WritePNG(t, filepath.Join(dir, "back.png"), testutils.Back(config.Size{W: 50, H: 70}))

	results, err := NewValidator(dir, config.DefaultCardBack).Validate()
	require.NoError(t, err)
	assert.Empty(t, results.Errors)
	assert.Empty(t, results.Warnings)
}

func TestMissingCardsAndManifest(t *testing.T) {
	dir := standardDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "queen_of_hearts.png")))
	testutils.WriteCatalog(t, dir, testutils.CardSize, "joker")

	results, err := NewValidator(dir, config.DefaultCardBack).Validate()
	require.NoError(t, err)
	assert.Equal(t, []string{"missing card: queen_of_hearts"}, results.Errors)
	assert.Contains(t, results.Warnings, "catalog.toml not found")
	assert.Contains(t, results.Warnings, "unknown card joker will count as 0")
	assert.Contains(t, results.Warnings, `card back image "back" not found, the draw pile will not be drawn`)
}

func TestInconsistentSizesAndBadImages(t *testing.T) {
	dir := standardDir(t)
	testutils.WriteCatalog(t, dir, config.Size{W: 50, H: 72}, "ace_of_spades")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2_of_clubs.png"), []byte("not a png"), 0o644))

	results, err := NewValidator(dir, "").Validate()
	require.NoError(t, err)
	require.Len(t, results.Errors, 2)
	assert.Contains(t, results.Errors[0], "unreadable image 2_of_clubs.png")
	assert.Equal(t, "missing card: 2_of_clubs", results.Errors[1])
	assert.Equal(t, []string{"1 images are 50x72, most are 100x145: [ace_of_spades]"}, results.Warnings[1:])
}

func TestManifestRequiresIdentity(t *testing.T) {
	dir := standardDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.toml"), []byte("[catalog]\nversion = \"1\"\n"), 0o644))

	results, err := NewValidator(dir, "").Validate()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"catalog.id is required in catalog.toml",
		"catalog.name is required in catalog.toml",
	}, results.Errors)
}

func TestEmptyAndMissingDirectory(t *testing.T) {
	results, err := NewValidator(t.TempDir(), "").Validate()
	require.NoError(t, err)
	assert.Equal(t, []string{"no card images found"}, results.Errors)

	_, err = NewValidator(filepath.Join(t.TempDir(), "missing"), "").Validate()
	assert.Error(t, err)
}
