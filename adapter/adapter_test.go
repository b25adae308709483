package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attuneworks/groundwork/core"
	"github.com/attuneworks/groundwork/domaincfg"
)

func lifeCoachingConfig() *domaincfg.DomainConfig {
	return &domaincfg.DomainConfig{
		Name:             "life_coaching",
		DisplayName:      "Life Coaching",
		Description:      "Holistic life coaching knowledge base.",
		KnowledgeSources: []string{"coaching_methodologies"},
		Methodologies:    []string{"GROW Model", "Wheel of Life", "Values Clarification"},
		FilteringRules: domaincfg.FilteringRules{
			MinimumRelevanceScore: 0.3,
			BoostFactors: map[string]float64{
				"methodology_match": 1.3,
				"life_area_match":   1.15,
				"high_evidence":     1.1,
			},
			PenaltyFactors: map[string]float64{
				"complexity_mismatch": 0.8,
			},
		},
		PersonalizationWeights: domaincfg.PersonalizationWeights{
			MethodologyPreference: 0.1,
			GoalAlignment:         0.1,
		},
		EscalationTriggers: []string{"self-harm", "suicide", "hurt myself"},
	}
}

func TestNew(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		a, err := NewLifeCoaching(lifeCoachingConfig())
		require.NoError(t, err)
		assert.Equal(t, "life_coaching", a.Domain())
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := New(nil, Vocabulary{})
		assert.ErrorIs(t, err, ErrConfigRequired)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := lifeCoachingConfig()
		cfg.Name = ""
		_, err := New(cfg, Vocabulary{})
		var dcErr *core.DomainConfigError
		require.True(t, errors.As(err, &dcErr))
	})
}

func TestEnhanceQuery(t *testing.T) {
	a, err := NewLifeCoaching(lifeCoachingConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("methodology and life area appended", func(t *testing.T) {
		dctx := &core.DomainContext{PreferredMethodology: "GROW Model"}
		enhancement, err := a.EnhanceQuery(ctx, "I'm stressed about work and sleep", dctx)
		require.NoError(t, err)

		assert.NotEmpty(t, enhancement.AddedContext)
		assert.Contains(t, enhancement.EnhancedQuery, "GROW Model")
		assert.Equal(t, "I'm stressed about work and sleep", enhancement.OriginalQuery)
		assert.Equal(t, 0.85, enhancement.Confidence)
		assert.False(t, enhancement.Escalation)
	})

	t.Run("goals appended", func(t *testing.T) {
		dctx := &core.DomainContext{CurrentGoals: []string{"sleep better"}}
		enhancement, err := a.EnhanceQuery(ctx, "how do I build a routine", dctx)
		require.NoError(t, err)
		assert.Contains(t, enhancement.EnhancedQuery, "sleep better")
		assert.Contains(t, enhancement.AddedContext, "goal: sleep better")
	})

	t.Run("escalation trigger detected", func(t *testing.T) {
		enhancement, err := a.EnhanceQuery(ctx, "I keep thinking about self-harm", nil)
		require.NoError(t, err)
		assert.True(t, enhancement.Escalation)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := a.EnhanceQuery(cancelled, "anything", nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFilterResults(t *testing.T) {
	a, err := NewLifeCoaching(lifeCoachingConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("methodology match ranks strictly higher", func(t *testing.T) {
		results := []*core.SearchResult{
			{ChunkId: 1, Content: "generic advice", Score: 0.7,
				Metadata: map[string]string{core.MetaMethodology: "Wheel of Life"}},
			{ChunkId: 2, Content: "grow advice", Score: 0.7,
				Metadata: map[string]string{core.MetaMethodology: "GROW Model"}},
		}
		dctx := &core.DomainContext{PreferredMethodology: "GROW Model"}

		filtered, err := a.FilterResults(ctx, results, dctx)
		require.NoError(t, err)
		require.Len(t, filtered, 2)
		assert.Equal(t, core.ID(2), filtered[0].ChunkId)
		assert.Greater(t, filtered[0].BoostedScore, filtered[1].BoostedScore)
		assert.Equal(t, 1.3, filtered[0].AppliedFactors["methodology_match"])
	})

	t.Run("no stated preference applies no methodology scoring", func(t *testing.T) {
		results := []*core.SearchResult{
			{ChunkId: 1, Content: "generic advice", Score: 0.5},
			{ChunkId: 2, Content: "grow advice", Score: 0.5,
				Metadata: map[string]string{core.MetaMethodology: "GROW Model"}},
		}
		// Session context without a methodology preference: the domain's
		// default methodology must not boost results as if requested.
		dctx := &core.DomainContext{SessionId: "session-1"}

		filtered, err := a.FilterResults(ctx, results, dctx)
		require.NoError(t, err)
		require.Len(t, filtered, 2)
		for _, fr := range filtered {
			assert.Equal(t, float32(0.5), fr.BoostedScore)
			assert.NotContains(t, fr.AppliedFactors, "methodology_match")
			assert.NotContains(t, fr.AppliedFactors, "personalization.methodology_preference")
		}
	})

	t.Run("below minimum relevance rejected", func(t *testing.T) {
		results := []*core.SearchResult{
			{ChunkId: 1, Content: "weak match", Score: 0.2},
			{ChunkId: 2, Content: "strong match", Score: 0.8},
		}
		filtered, err := a.FilterResults(ctx, results, nil)
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, core.ID(2), filtered[0].ChunkId)
	})

	t.Run("complexity mismatch penalized", func(t *testing.T) {
		results := []*core.SearchResult{
			{ChunkId: 1, Score: 0.6,
				Metadata: map[string]string{core.MetaComplexityLevel: "advanced"}},
		}
		dctx := &core.DomainContext{Complexity: core.ComplexityBeginner}

		filtered, err := a.FilterResults(ctx, results, dctx)
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.InDelta(t, 0.48, float64(filtered[0].BoostedScore), 0.001)
		assert.Equal(t, 0.8, filtered[0].AppliedFactors["complexity_mismatch"])
	})

	t.Run("scoring is deterministic", func(t *testing.T) {
		results := []*core.SearchResult{
			{ChunkId: 1, Content: "sleep better habits", Score: 0.5,
				Metadata: map[string]string{core.MetaMethodology: "GROW Model", core.MetaEvidenceLevel: "high"}},
		}
		dctx := &core.DomainContext{
			PreferredMethodology: "GROW Model",
			CurrentGoals:         []string{"sleep better"},
		}

		first, err := a.FilterResults(ctx, results, dctx)
		require.NoError(t, err)
		second, err := a.FilterResults(ctx, results, dctx)
		require.NoError(t, err)
		assert.Equal(t, first[0].BoostedScore, second[0].BoostedScore)
		assert.Equal(t, first[0].AppliedFactors, second[0].AppliedFactors)
	})

	t.Run("original score preserved", func(t *testing.T) {
		results := []*core.SearchResult{
			{ChunkId: 1, Score: 0.9,
				Metadata: map[string]string{core.MetaEvidenceLevel: "high"}},
		}
		filtered, err := a.FilterResults(ctx, results, nil)
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, float32(0.9), filtered[0].OriginalScore)
		assert.Greater(t, filtered[0].BoostedScore, filtered[0].OriginalScore)
	})
}

func TestDetectLifeArea(t *testing.T) {
	a, err := NewLifeCoaching(lifeCoachingConfig())
	require.NoError(t, err)

	assert.Equal(t, "career", a.DetectLifeArea("my boss is driving me crazy", nil))
	assert.Equal(t, "health", a.DetectLifeArea("I can't sleep at night", nil))
	assert.Equal(t, "relationships", a.DetectLifeArea("my partner and I keep fighting", nil))

	t.Run("context fallback", func(t *testing.T) {
		dctx := &core.DomainContext{LifeArea: "personal_growth"}
		assert.Equal(t, "personal_growth", a.DetectLifeArea("no keywords here", dctx))
	})

	t.Run("no signal", func(t *testing.T) {
		assert.Equal(t, "", a.DetectLifeArea("no keywords here", nil))
	})
}

func TestGetRecommendedMethodology(t *testing.T) {
	a, err := NewLifeCoaching(lifeCoachingConfig())
	require.NoError(t, err)

	t.Run("supported preference wins", func(t *testing.T) {
		dctx := &core.DomainContext{PreferredMethodology: "Wheel of Life"}
		assert.Equal(t, "Wheel of Life", a.GetRecommendedMethodology("any query", dctx))
	})

	t.Run("unsupported preference ignored", func(t *testing.T) {
		dctx := &core.DomainContext{PreferredMethodology: "Tarot"}
		assert.Equal(t, "GROW Model", a.GetRecommendedMethodology("I feel stuck", dctx))
	})

	t.Run("keyword trigger", func(t *testing.T) {
		assert.Equal(t, "Wheel of Life", a.GetRecommendedMethodology("I need more balance", nil))
	})

	t.Run("first configured fallback", func(t *testing.T) {
		assert.Equal(t, "GROW Model", a.GetRecommendedMethodology("nothing matches", nil))
	})

	t.Run("no methodologies configured", func(t *testing.T) {
		cfg := lifeCoachingConfig()
		cfg.Methodologies = nil
		bare, err := New(cfg, Vocabulary{})
		require.NoError(t, err)
		assert.Equal(t, "", bare.GetRecommendedMethodology("anything", nil))
	})
}

func TestHybridSearchEnabled(t *testing.T) {
	t.Run("defaults to enabled", func(t *testing.T) {
		a, err := NewLifeCoaching(lifeCoachingConfig())
		require.NoError(t, err)
		assert.True(t, a.HybridSearchEnabled())
	})

	t.Run("config can disable", func(t *testing.T) {
		cfg := lifeCoachingConfig()
		disabled := false
		cfg.HybridSearch = &disabled
		a, err := NewLifeCoaching(cfg)
		require.NoError(t, err)
		assert.False(t, a.HybridSearchEnabled())
	})
}

func TestDetectEscalation(t *testing.T) {
	a, err := NewLifeCoaching(lifeCoachingConfig())
	require.NoError(t, err)

	assert.True(t, a.DetectEscalation("I want to hurt myself"))
	assert.True(t, a.DetectEscalation("thoughts of SUICIDE"))
	assert.False(t, a.DetectEscalation("I'm stressed about work"))
}
