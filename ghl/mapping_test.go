package ghl

import (
	"context"
	"testing"

	"github.com/leadfoundry/roical/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFieldMappingsCoverAllFields(t *testing.T) {
	defaults := DefaultFieldMappings()

	assert.Len(t, defaults, 14)
	for _, field := range models.ROIFields {
		key, ok := defaults[field]
		assert.True(t, ok, "missing default mapping for %s", field)
		assert.Contains(t, key, "roi_")
	}
}

func TestFieldMappingsAbsentReturnsDefaults(t *testing.T) {
	mapping, err := FieldMappings(context.Background(), NewMemoryStore(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultFieldMappings(), mapping)
}

func TestFieldMappingsStoredReturnsVerbatim(t *testing.T) {
	store := NewMemoryStore(map[string]string{
		KeyFieldMappings: `{"currentLeads":"roi_leads"}`,
	})

	mapping, err := FieldMappings(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"currentLeads": "roi_leads"}, mapping)
}

func TestFieldMappingsInvalidJSON(t *testing.T) {
	store := NewMemoryStore(map[string]string{
		KeyFieldMappings: `{not json`,
	})

	_, err := FieldMappings(context.Background(), store)
	assert.Error(t, err)
}

func TestSaveFieldMappingsRoundTrip(t *testing.T) {
	store := NewMemoryStore(nil)
	custom := map[string]string{"currentCPA": "acquisition_cost"}

	require.NoError(t, SaveFieldMappings(context.Background(), store, custom))

	mapping, err := FieldMappings(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, custom, mapping)
}

func TestLoadNotesConfig(t *testing.T) {
	cfg, err := LoadNotesConfig(context.Background(), NewMemoryStore(nil))
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "", cfg.Template)

	store := NewMemoryStore(map[string]string{
		KeyNotesEnabled:  "true",
		KeyNotesTemplate: "Hi {{firstName}}",
	})
	cfg, err = LoadNotesConfig(context.Background(), store)
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "Hi {{firstName}}", cfg.Template)

	// Anything other than the literal "true" is disabled
	store = NewMemoryStore(map[string]string{KeyNotesEnabled: "yes"})
	cfg, err = LoadNotesConfig(context.Background(), store)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestProjectCustomFieldsDropsUnmapped(t *testing.T) {
	data := models.ROIData{
		"currentLeads": 100.0,
		"currentSales": 5.0,
	}
	mapping := map[string]string{"currentLeads": "roi_leads"}

	custom := ProjectCustomFields(data, mapping)
	assert.Equal(t, map[string]any{"roi_leads": 100.0}, custom)
}

func TestProjectCustomFieldsDropsAbsentData(t *testing.T) {
	data := models.ROIData{"currentLeads": 100.0}

	custom := ProjectCustomFields(data, DefaultFieldMappings())
	assert.Equal(t, map[string]any{"roi_current_leads": 100.0}, custom)
}

func TestProjectCustomFieldsIgnoresUnknownDataKeys(t *testing.T) {
	data := models.ROIData{"notARealField": 1.0}

	custom := ProjectCustomFields(data, DefaultFieldMappings())
	assert.Empty(t, custom)
}
