package domaincfg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attuneworks/groundwork/core"
)

const validConfigYAML = `name: life_coaching
display_name: Life Coaching
description: Holistic life coaching knowledge base.
knowledge_sources:
  - coaching_methodologies
  - goal_setting_frameworks
methodologies:
  - GROW Model
  - Wheel of Life
retrieval_preferences:
  methodology: 0.4
  case_study: 0.3
  exercise: 0.3
filtering_rules:
  minimum_relevance_score: 0.3
  boost_factors:
    methodology_match: 1.3
    life_area_match: 1.2
  penalty_factors:
    complexity_mismatch: 0.8
personalization_weights:
  methodology_preference: 0.3
  complexity_preference: 0.2
  goal_alignment: 0.3
  life_area_bonus: 0.2
metadata_schema:
  methodology: []
  life_area: [career, relationships, health, personal_growth]
escalation_triggers:
  - self-harm
  - suicide
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644))
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "life_coaching.yaml", validConfigYAML)

	loader, err := NewLoader(dir)
	require.NoError(t, err)
	defer loader.Close()

	ctx := context.Background()

	result, err := loader.Load(ctx, "life_coaching")
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Equal(t, "life_coaching", result.Config.Name)
	assert.Equal(t, "Life Coaching", result.Config.DisplayName)
	assert.Len(t, result.Config.KnowledgeSources, 2)
	assert.Equal(t, 1.3, result.Config.FilteringRules.BoostFactors["methodology_match"])
	assert.Equal(t, 0.3, result.Config.PersonalizationWeights.MethodologyPreference)
	assert.Contains(t, result.Config.EscalationTriggers, "self-harm")
	assert.Equal(t, filepath.Join(dir, "life_coaching.yaml"), result.Source)

	t.Run("second load served from cache", func(t *testing.T) {
		cached, err := loader.Load(ctx, "life_coaching")
		require.NoError(t, err)
		assert.True(t, cached.Cached)
	})

	t.Run("unknown domain", func(t *testing.T) {
		_, err := loader.Load(ctx, "astrology")
		assert.ErrorIs(t, err, ErrConfigNotFound)
		var dcErr *core.DomainConfigError
		require.True(t, errors.As(err, &dcErr))
		assert.Equal(t, "astrology", dcErr.Domain)
	})
}

func TestLoaderMissingName(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "nameless.yaml", `display_name: Nameless
description: A config without a name.
knowledge_sources: [src]
`)

	loader, err := NewLoader(dir)
	require.NoError(t, err)
	defer loader.Close()

	_, err = loader.Load(context.Background(), "nameless")
	assert.ErrorIs(t, err, ErrConfigInvalid)
	var dcErr *core.DomainConfigError
	require.True(t, errors.As(err, &dcErr))
	assert.Equal(t, "name", dcErr.Field)
}

func TestLoaderReloadBypassesCache(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "life_coaching.yaml", validConfigYAML)

	loader, err := NewLoader(dir, WithCacheTTL(time.Hour))
	require.NoError(t, err)
	defer loader.Close()

	ctx := context.Background()

	first, err := loader.Load(ctx, "life_coaching")
	require.NoError(t, err)
	assert.Equal(t, "Life Coaching", first.Config.DisplayName)

	// Change the file on disk; the cached Load must not see it
	writeConfig(t, dir, "life_coaching.yaml", validConfigYAML+"\n")
	writeConfig(t, dir, "life_coaching.yaml",
		"name: life_coaching\ndisplay_name: Renamed\ndescription: d\nknowledge_sources: [src]\n")

	cached, err := loader.Load(ctx, "life_coaching")
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Equal(t, "Life Coaching", cached.Config.DisplayName)

	reloaded, err := loader.Reload(ctx, "life_coaching")
	require.NoError(t, err)
	assert.False(t, reloaded.Cached)
	assert.Equal(t, "Renamed", reloaded.Config.DisplayName)

	// Reload refreshed the cache for subsequent loads
	after, err := loader.Load(ctx, "life_coaching")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", after.Config.DisplayName)
}

func TestLoaderEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "life_coaching.yaml", validConfigYAML)
	writeConfig(t, dir, "life_coaching.production.yaml", `filtering_rules:
  minimum_relevance_score: 0.5
`)

	loader, err := NewLoader(dir, WithEnvironment("production"))
	require.NoError(t, err)
	defer loader.Close()

	result, err := loader.Load(context.Background(), "life_coaching")
	require.NoError(t, err)

	// Overridden value applies
	assert.Equal(t, 0.5, result.Config.FilteringRules.MinimumRelevanceScore)
	// Sibling keys of the overridden nested map survive the merge
	assert.Equal(t, 1.3, result.Config.FilteringRules.BoostFactors["methodology_match"])
	assert.Equal(t, 0.8, result.Config.FilteringRules.PenaltyFactors["complexity_mismatch"])
	// Untouched top-level fields survive too
	assert.Equal(t, "Life Coaching", result.Config.DisplayName)
	assert.Equal(t, filepath.Join(dir, "life_coaching.production.yaml"), result.Source)
}

func TestLoaderLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "life_coaching.yaml", validConfigYAML)
	writeConfig(t, dir, "broken.yaml", "display_name: Broken\n")
	writeConfig(t, dir, "life_coaching.production.yaml", "name: x\n")
	writeConfig(t, dir, "notes.txt", "not a config")

	loader, err := NewLoader(dir)
	require.NoError(t, err)
	defer loader.Close()

	results, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.NotNil(t, results["life_coaching"].Config)
	assert.Nil(t, results["broken"].Config)
	assert.NotEmpty(t, results["broken"].Errors)
}

func TestLoaderClosed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "life_coaching.yaml", validConfigYAML)

	loader, err := NewLoader(dir)
	require.NoError(t, err)
	require.NoError(t, loader.Close())

	_, err = loader.Load(context.Background(), "life_coaching")
	assert.ErrorIs(t, err, ErrLoaderClosed)
}

func TestLoaderWatch(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "life_coaching.yaml", validConfigYAML)

	loader, err := NewLoader(dir, WithCacheTTL(time.Hour))
	require.NoError(t, err)
	defer loader.Close()

	ctx := context.Background()
	require.NoError(t, loader.Watch(ctx))
	assert.ErrorIs(t, loader.Watch(ctx), ErrWatcherRunning)

	_, err = loader.Load(ctx, "life_coaching")
	require.NoError(t, err)

	writeConfig(t, dir, "life_coaching.yaml",
		"name: life_coaching\ndisplay_name: Watched\ndescription: d\nknowledge_sources: [src]\n")

	// The watcher refreshes the cache shortly after the write lands
	assert.Eventually(t, func() bool {
		result, err := loader.Load(ctx, "life_coaching")
		return err == nil && result.Config.DisplayName == "Watched"
	}, 5*time.Second, 50*time.Millisecond)
}
