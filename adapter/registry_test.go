package adapter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attuneworks/groundwork/core"
	"github.com/attuneworks/groundwork/domaincfg"
)

func testLoader(t *testing.T) *domaincfg.Loader {
	t.Helper()
	dir := t.TempDir()
	content := `name: life_coaching
display_name: Life Coaching
description: Holistic life coaching knowledge base.
knowledge_sources: [coaching_methodologies]
methodologies: [GROW Model]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "life_coaching.yaml"), []byte(content), 0o644))

	loader, err := domaincfg.NewLoader(dir)
	require.NoError(t, err)
	t.Cleanup(func() { loader.Close() })
	return loader
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(testLoader(t))
	ctx := context.Background()

	t.Run("unregistered domain", func(t *testing.T) {
		_, err := registry.Get(ctx, "life_coaching")
		assert.ErrorIs(t, err, ErrNotRegistered)
		var dcErr *core.DomainConfigError
		require.True(t, errors.As(err, &dcErr))
		assert.Equal(t, "life_coaching", dcErr.Domain)
		assert.False(t, registry.IsRegistered("life_coaching"))
	})

	registry.Register("life_coaching", NewLifeCoaching)
	assert.True(t, registry.IsRegistered("life_coaching"))

	t.Run("lazy singleton", func(t *testing.T) {
		first, err := registry.Get(ctx, "life_coaching")
		require.NoError(t, err)
		second, err := registry.Get(ctx, "life_coaching")
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("clear instances keeps registrations", func(t *testing.T) {
		before, err := registry.Get(ctx, "life_coaching")
		require.NoError(t, err)

		registry.ClearInstances()
		assert.True(t, registry.IsRegistered("life_coaching"))

		after, err := registry.Get(ctx, "life_coaching")
		require.NoError(t, err)
		assert.NotSame(t, before, after)
	})

	t.Run("missing config file", func(t *testing.T) {
		registry.Register("astrology", NewLifeCoaching)
		_, err := registry.Get(ctx, "astrology")
		assert.ErrorIs(t, err, domaincfg.ErrConfigNotFound)
	})
}
