package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsAreComplete(t *testing.T) {
	s := DefaultSettings()
	assert.NotEmpty(t, s.BrandName)
	assert.NotEmpty(t, s.BillingOptions)
	assert.NotEmpty(t, s.Categories)
	assert.Greater(t, s.MinOrderValue, 0.0)
	assert.True(t, s.HideOutOfStock)
}

func TestMergeSettingsKeepsDefaultsForAbsentKeys(t *testing.T) {
	merged, err := MergeSettings(map[string]interface{}{
		"brandName":     "ACME",
		"minOrderValue": 250,
	})
	require.NoError(t, err)

	assert.Equal(t, "ACME", merged.BrandName)
	assert.Equal(t, 250.0, merged.MinOrderValue)
	assert.Equal(t, DefaultSettings().BillingOptions, merged.BillingOptions)
	assert.Equal(t, DefaultSettings().PrimaryColor, merged.PrimaryColor)
}

func TestMergeSettingsWeaklyTypedInput(t *testing.T) {
	// JSON from older clients carries numbers as strings
	merged, err := MergeSettings(map[string]interface{}{
		"minOrderValue":  "750.50",
		"hideOutOfStock": "false",
	})
	require.NoError(t, err)
	assert.Equal(t, 750.5, merged.MinOrderValue)
	assert.False(t, merged.HideOutOfStock)
}

func TestMergeSettingsNestedCampaigns(t *testing.T) {
	merged, err := MergeSettings(map[string]interface{}{
		"campaigns": map[string]interface{}{
			"isActiveBirthday": true,
			"birthdayPrompt":   "happy birthday",
		},
	})
	require.NoError(t, err)
	assert.True(t, merged.Campaigns.BirthdayActive)
	assert.Equal(t, "happy birthday", merged.Campaigns.BirthdayPrompt)
	// untouched nested defaults survive
	assert.Equal(t, DefaultSettings().Campaigns.InactiveDays, merged.Campaigns.InactiveDays)
}

func TestOrderCode(t *testing.T) {
	assert.Equal(t, "Z", Order{ID: 35}.Code())
	assert.Equal(t, "10", Order{ID: 36}.Code())
}
