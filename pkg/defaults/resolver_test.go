package defaults

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprout/entities"
	"sprout/pkg/protocol"
)

func fl(v float64) *float64 { return &v }

func basilVariety() *entities.Variety {
	return &entities.Variety{
		VarietyID: 1,
		Name:      "Genovese Basil",
		Category:  "leafy-herbs",
		Timeline: []entities.StageThreshold{
			{Stage: "germination", StartDays: 0},
			{Stage: "vegetative", StartDays: 21},
			{Stage: "flowering", StartDays: 60},
		},
		Protocols: &entities.CareProtocols{
			Fertilizing: map[string]entities.FertilizingEntry{
				"vegetative": {
					Products: []entities.FertilizerProduct{
						{Product: "Neptune's Harvest Fish + Seaweed", Dilution: "1 tbsp/gal", Method: "soil-drench"},
					},
					StartDays: 3,
				},
			},
		},
	}
}

const bookYAML = `
categories:
  leafy-herbs:
    vegetative:
      watering:
        amount: 0.5
        unit: gal
      fertilizing:
        products:
          - product: "Generic fish emulsion"
            dilution: "1 tbsp/gal"
universal:
  watering:
    amount: 0.3
    unit: gal
`

func writeBook(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "CategoryDefaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadBook(t *testing.T) {
	b, err := LoadBook(writeBook(t, bookYAML))
	require.NoError(t, err)

	rec, ok := b.categoryRec("leafy-herbs", "vegetative")
	require.True(t, ok)
	require.NotNil(t, rec.Watering)
	assert.Equal(t, 0.5, rec.Watering.Amount)

	// universal section in the file overrides the builtin watering but
	// the unset fertilizing half falls back
	assert.Equal(t, 0.3, b.Universal.Watering.Amount)
	require.NotNil(t, b.Universal.Fertilizing)
	assert.Equal(t, builtinUniversal.Fertilizing.Products, b.Universal.Fertilizing.Products)
}

func TestLoadBookMissingFile(t *testing.T) {
	b, err := LoadBook(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, builtinUniversal.Watering, b.Universal.Watering)

	b, err = LoadBook("")
	require.NoError(t, err)
	assert.Equal(t, builtinUniversal.Watering, b.Universal.Watering)
}

func TestLoadBookMalformed(t *testing.T) {
	_, err := LoadBook(writeBook(t, "categories: [not, a, map]"))
	assert.Error(t, err)
}

func TestRecommendProtocolTier(t *testing.T) {
	b, err := LoadBook(writeBook(t, bookYAML))
	require.NoError(t, err)
	r := NewResolver(b)

	rec := r.Recommend(basilVariety(), "vegetative", protocol.Fertilizing)
	assert.True(t, rec.Found)
	assert.Equal(t, ConfidenceHigh, rec.Confidence)
	assert.Equal(t, SourceProtocol, rec.Source)
	require.Len(t, rec.Fertilizers, 1)
	assert.Equal(t, "Neptune's Harvest Fish + Seaweed", rec.Fertilizers[0].Product)
	assert.Contains(t, rec.Reasoning, "Genovese Basil")
	assert.Contains(t, rec.Reasoning, "vegetative")
}

func TestRecommendCategoryTier(t *testing.T) {
	b, err := LoadBook(writeBook(t, bookYAML))
	require.NoError(t, err)
	r := NewResolver(b)

	// no watering protocol for vegetative → category book answers
	rec := r.Recommend(basilVariety(), "vegetative", protocol.Watering)
	assert.True(t, rec.Found)
	assert.Equal(t, ConfidenceMedium, rec.Confidence)
	assert.Equal(t, SourceCategory, rec.Source)
	require.NotNil(t, rec.Water)
	assert.Equal(t, 0.5, rec.Water.Amount)
	assert.Contains(t, rec.Reasoning, "leafy-herbs")
}

func TestRecommendUniversalTier(t *testing.T) {
	b, err := LoadBook(writeBook(t, bookYAML))
	require.NoError(t, err)
	r := NewResolver(b)

	// category book has no flowering cell for leafy-herbs
	rec := r.Recommend(basilVariety(), "flowering", protocol.Watering)
	assert.True(t, rec.Found)
	assert.Equal(t, ConfidenceLow, rec.Confidence)
	assert.Equal(t, SourceUniversal, rec.Source)
	require.NotNil(t, rec.Water)
	assert.Equal(t, 0.3, rec.Water.Amount)
	assert.Contains(t, rec.Reasoning, "universal fallback")
}

func TestRecommendProtocolBeatsCategory(t *testing.T) {
	b, err := LoadBook(writeBook(t, bookYAML))
	require.NoError(t, err)
	r := NewResolver(b)

	v := basilVariety()
	v.Protocols.Watering = map[string]entities.WateringEntry{
		"vegetative": {Amount: fl(0.75), Unit: "gal"},
	}

	rec := r.Recommend(v, "vegetative", protocol.Watering)
	assert.Equal(t, ConfidenceHigh, rec.Confidence)
	assert.Equal(t, 0.75, rec.Water.Amount)
}

func TestRecommendUnknownVariety(t *testing.T) {
	b, err := LoadBook("")
	require.NoError(t, err)
	r := NewResolver(b)

	rec := r.Recommend(nil, "vegetative", protocol.Watering)
	assert.False(t, rec.Found)
	assert.Empty(t, rec.Confidence)
	assert.Equal(t, "variety not found; no defaults available", rec.Reasoning)
}

func TestReloadSwapsBook(t *testing.T) {
	path := writeBook(t, bookYAML)
	b, err := LoadBook(path)
	require.NoError(t, err)
	r := NewResolver(b)

	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  leafy-herbs:
    vegetative:
      watering:
        amount: 0.6
        unit: gal
`), 0o644))
	require.NoError(t, r.Reload(path))

	rec := r.Recommend(basilVariety(), "vegetative", protocol.Watering)
	assert.Equal(t, 0.6, rec.Water.Amount)
	// universal section gone from the file → builtin watering returns
	rec = r.Recommend(basilVariety(), "flowering", protocol.Watering)
	assert.Equal(t, builtinUniversal.Watering.Amount, rec.Water.Amount)
}
