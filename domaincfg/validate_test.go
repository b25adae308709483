package domaincfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullConfig() *DomainConfig {
	return &DomainConfig{
		Name:             "career_coaching",
		DisplayName:      "Career Coaching",
		Description:      "Career development knowledge base.",
		KnowledgeSources: []string{"career_frameworks"},
		Methodologies:    []string{"Ikigai"},
		RetrievalPreferences: map[string]float64{
			"methodology": 0.5,
			"case_study":  0.5,
		},
		FilteringRules: FilteringRules{
			MinimumRelevanceScore: 0.3,
			BoostFactors:          map[string]float64{"methodology_match": 1.3},
			PenaltyFactors:        map[string]float64{"complexity_mismatch": 0.8},
		},
		PersonalizationWeights: PersonalizationWeights{
			MethodologyPreference: 0.3,
			ComplexityPreference:  0.2,
			GoalAlignment:         0.3,
			LifeAreaBonus:         0.2,
		},
		MetadataSchema:     map[string][]string{"methodology": nil},
		EscalationTriggers: []string{"self-harm"},
	}
}

func TestValidateFullConfig(t *testing.T) {
	result := Validate(fullConfig())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 1.0, result.Completeness)
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DomainConfig)
		field  string
	}{
		{"missing name", func(c *DomainConfig) { c.Name = "" }, "name"},
		{"missing display name", func(c *DomainConfig) { c.DisplayName = "" }, "display_name"},
		{"missing description", func(c *DomainConfig) { c.Description = "" }, "description"},
		{"missing knowledge sources", func(c *DomainConfig) { c.KnowledgeSources = nil }, "knowledge_sources"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fullConfig()
			tt.mutate(cfg)
			result := Validate(cfg)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], tt.field)
		})
	}
}

func TestValidateRanges(t *testing.T) {
	t.Run("retrieval preference outside range", func(t *testing.T) {
		cfg := fullConfig()
		cfg.RetrievalPreferences["methodology"] = 1.5
		result := Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("minimum relevance score outside range", func(t *testing.T) {
		cfg := fullConfig()
		cfg.FilteringRules.MinimumRelevanceScore = -0.1
		result := Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("personalization weight outside range", func(t *testing.T) {
		cfg := fullConfig()
		cfg.PersonalizationWeights.GoalAlignment = 2.0
		result := Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("penalty factor above one", func(t *testing.T) {
		cfg := fullConfig()
		cfg.FilteringRules.PenaltyFactors["complexity_mismatch"] = 1.2
		result := Validate(cfg)
		assert.False(t, result.Valid)
	})

	t.Run("weight sum drift is a warning only", func(t *testing.T) {
		cfg := fullConfig()
		cfg.RetrievalPreferences = map[string]float64{"methodology": 0.5, "case_study": 0.3}
		result := Validate(cfg)
		assert.True(t, result.Valid)
		assert.NotEmpty(t, result.Warnings)
	})
}

func TestValidateCompleteness(t *testing.T) {
	cfg := &DomainConfig{
		Name:             "minimal",
		DisplayName:      "Minimal",
		Description:      "Bare minimum config.",
		KnowledgeSources: []string{"src"},
	}
	result := Validate(cfg)
	assert.True(t, result.Valid)
	assert.Equal(t, 0.4, result.Completeness)
}

func TestDeepMerge(t *testing.T) {
	base := map[string]any{
		"name": "life_coaching",
		"filtering_rules": map[string]any{
			"minimum_relevance_score": 0.3,
			"boost_factors": map[string]any{
				"methodology_match": 1.3,
			},
		},
		"methodologies": []any{"GROW Model", "Wheel of Life"},
	}
	override := map[string]any{
		"filtering_rules": map[string]any{
			"minimum_relevance_score": 0.5,
		},
		"methodologies": []any{"Ikigai"},
	}

	merged := deepMerge(base, override)

	rules := merged["filtering_rules"].(map[string]any)
	assert.Equal(t, 0.5, rules["minimum_relevance_score"])
	// Sibling nested keys survive
	boosts := rules["boost_factors"].(map[string]any)
	assert.Equal(t, 1.3, boosts["methodology_match"])
	// Arrays replaced wholesale, not concatenated
	assert.Equal(t, []any{"Ikigai"}, merged["methodologies"])
	// Base untouched
	assert.Equal(t, 0.3, base["filtering_rules"].(map[string]any)["minimum_relevance_score"])
}
