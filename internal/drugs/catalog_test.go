package drugs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_ByID(t *testing.T) {
	c := Default()

	d, ok := c.ByID("metformin")
	require.True(t, ok)
	assert.Equal(t, "Metformin", d.Name)
	assert.Equal(t, "Diabetes", d.Category)

	_, ok = c.ByID("placebo")
	assert.False(t, ok)

	// Lookup is tolerant of case and whitespace.
	_, ok = c.ByID("  Metformin ")
	assert.True(t, ok)
}

func TestCatalog_Search(t *testing.T) {
	c := Default()

	t.Run("by substring", func(t *testing.T) {
		results := c.Search("para", "")
		require.Len(t, results, 1)
		assert.Equal(t, "paracetamol", results[0].ID)
	})

	t.Run("by category", func(t *testing.T) {
		results := c.Search("", "Antibiotic")
		assert.Len(t, results, 2)
	})

	t.Run("substring and category", func(t *testing.T) {
		results := c.Search("doxy", "Antibiotic")
		require.Len(t, results, 1)
		assert.Equal(t, "doxycycline", results[0].ID)
	})

	t.Run("empty term matches all", func(t *testing.T) {
		assert.Len(t, c.Search("", ""), len(c.All()))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, c.Search("placebo", ""))
	})
}

func TestCatalog_Categories(t *testing.T) {
	cats := Default().Categories()
	assert.Contains(t, cats, "Cardiovascular")
	assert.Contains(t, cats, "Antibiotic")
	assert.IsIncreasing(t, cats)
}

func TestCatalog_ResolveScan(t *testing.T) {
	c := Default()

	t.Run("json payload", func(t *testing.T) {
		d, ok := c.ResolveScan(`{"drugId": "aspirin"}`)
		require.True(t, ok)
		assert.Equal(t, "aspirin", d.ID)
	})

	t.Run("url payload", func(t *testing.T) {
		d, ok := c.ResolveScan("https://example.com/drug/losartan?src=qr")
		require.True(t, ok)
		assert.Equal(t, "losartan", d.ID)
	})

	t.Run("exact name", func(t *testing.T) {
		d, ok := c.ResolveScan("Aspirin (Low-Dose)")
		require.True(t, ok)
		assert.Equal(t, "aspirin", d.ID)
	})

	t.Run("generic name case-insensitive", func(t *testing.T) {
		d, ok := c.ResolveScan("paracetamol")
		require.True(t, ok)
		assert.Equal(t, "paracetamol", d.ID)
	})

	t.Run("unknown payload", func(t *testing.T) {
		_, ok := c.ResolveScan("garbage text")
		assert.False(t, ok)

		_, ok = c.ResolveScan("")
		assert.False(t, ok)
	})

	t.Run("unknown id in valid url", func(t *testing.T) {
		_, ok := c.ResolveScan("https://example.com/drug/placebo")
		assert.False(t, ok)
	})
}
