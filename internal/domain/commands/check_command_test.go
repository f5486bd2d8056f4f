//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/harbinger/config"
	"github.com/rios0rios0/harbinger/internal/domain/commands"
	"github.com/rios0rios0/harbinger/internal/domain/entities"
	domainRepos "github.com/rios0rios0/harbinger/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/harbinger/internal/infrastructure/repositories"
	doubles "github.com/rios0rios0/harbinger/test/infrastructure/repositorydoubles"
)

type checkFixture struct {
	checkerRegistry  *infraRepos.CheckerRegistry
	notifierRegistry *infraRepos.NotifierRegistry
	references       *doubles.SpyReferenceRepository
	sink             *doubles.SpyNotifierRepository
	command          *commands.CheckCommand
}

func newCheckFixture(checkers ...*doubles.SpyCheckerRepository) *checkFixture {
	checkerRegistry := infraRepos.NewCheckerRegistry()
	for _, checker := range checkers {
		checkerRegistry.Register(checker)
	}

	sink := &doubles.SpyNotifierRepository{SinkName: "github"}
	notifierRegistry := infraRepos.NewNotifierRegistry()
	notifierRegistry.Register("github", func(_ bool) domainRepos.NotifierRepository {
		return sink
	})

	references := doubles.NewSpyReferenceRepository()
	factory := func(_ string) domainRepos.ReferenceRepository { return references }

	return &checkFixture{
		checkerRegistry:  checkerRegistry,
		notifierRegistry: notifierRegistry,
		references:       references,
		sink:             sink,
		command:          commands.NewCheckCommand(checkerRegistry, notifierRegistry, factory),
	}
}

func testConfig(deps map[string]config.DependencyConfig) *config.Config {
	return &config.Config{
		RefDir:       "/tmp/refs",
		NotifyRepo:   "test-org/test-repo",
		Notifier:     "github",
		Token:        "configured-token",
		Dependencies: deps,
	}
}

func TestCheckCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should attempt every dependency when one fetch fails", func(t *testing.T) {
		t.Parallel()

		// given
		broken := &doubles.SpyCheckerRepository{
			PluginName: "broken",
			VersionErr: entities.ErrFetch,
		}
		working := &doubles.SpyCheckerRepository{
			PluginName: "working",
			Record:     entities.VersionRecord{"version": "1.0"},
		}
		fixture := newCheckFixture(broken, working)

		cfg := testConfig(map[string]config.DependencyConfig{
			"dep-a": {Plugin: "working"},
			"dep-b": {Plugin: "broken"},
			"dep-c": {Plugin: "working"},
		})

		// when
		err := fixture.command.Execute(context.Background(), cfg, commands.CheckOptions{})

		// then: the batch reports the failure but every sibling completed
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 3")
		assert.Len(t, working.VersionCalls, 2)
		assert.Len(t, broken.VersionCalls, 1)
		assert.True(t, fixture.references.Exists("dep-a"))
		assert.True(t, fixture.references.Exists("dep-c"))
	})

	t.Run("should fail the dependency when its plugin is unknown", func(t *testing.T) {
		t.Parallel()

		// given
		working := &doubles.SpyCheckerRepository{
			PluginName: "working",
			Record:     entities.VersionRecord{"version": "1.0"},
		}
		fixture := newCheckFixture(working)

		cfg := testConfig(map[string]config.DependencyConfig{
			"dep-a": {Plugin: "nonexistent"},
			"dep-b": {Plugin: "working"},
		})

		// when
		err := fixture.command.Execute(context.Background(), cfg, commands.CheckOptions{})

		// then
		require.Error(t, err)
		assert.Len(t, working.VersionCalls, 1)
		assert.True(t, fixture.references.Exists("dep-b"))
	})

	t.Run("should succeed when every dependency completes", func(t *testing.T) {
		t.Parallel()

		// given
		checker := &doubles.SpyCheckerRepository{
			PluginName: "working",
			Record:     entities.VersionRecord{"version": "2.0"},
			Changelog:  "notes",
		}
		fixture := newCheckFixture(checker)
		fixture.references.Records["dep-a"] = entities.VersionRecord{"version": "1.0"}

		cfg := testConfig(map[string]config.DependencyConfig{
			"dep-a": {Plugin: "working"},
		})

		// when
		err := fixture.command.Execute(context.Background(), cfg, commands.CheckOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, fixture.sink.PostedEvents, 1)
		assert.Equal(t, "Upstream release of dependency: dep-a", fixture.sink.PostedEvents[0].Title)
	})

	t.Run("should only check the dependency named by the filter", func(t *testing.T) {
		t.Parallel()

		// given
		checker := &doubles.SpyCheckerRepository{
			PluginName: "working",
			Record:     entities.VersionRecord{"version": "1.0"},
		}
		fixture := newCheckFixture(checker)

		cfg := testConfig(map[string]config.DependencyConfig{
			"dep-a": {Plugin: "working"},
			"dep-b": {Plugin: "working"},
		})
		opts := commands.CheckOptions{DependencyName: "dep-b"}

		// when
		err := fixture.command.Execute(context.Background(), cfg, opts)

		// then
		require.NoError(t, err)
		require.Len(t, checker.VersionCalls, 1)
		assert.Equal(t, "dep-b", checker.VersionCalls[0].Name)
	})

	t.Run("should fail when the notifier type is unknown", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := newCheckFixture()
		cfg := testConfig(map[string]config.DependencyConfig{
			"dep-a": {Plugin: "working"},
		})
		cfg.Notifier = "carrier-pigeon"

		// when
		err := fixture.command.Execute(context.Background(), cfg, commands.CheckOptions{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "carrier-pigeon")
	})

	t.Run("should prefer the CLI token over the configured one", func(t *testing.T) {
		t.Parallel()

		// given
		checker := &doubles.SpyCheckerRepository{
			PluginName: "working",
			Record:     entities.VersionRecord{"version": "2.0"},
		}
		fixture := newCheckFixture(checker)
		fixture.references.Records["dep-a"] = entities.VersionRecord{"version": "1.0"}

		cfg := testConfig(map[string]config.DependencyConfig{
			"dep-a": {Plugin: "working"},
		})
		opts := commands.CheckOptions{Token: "cli-token"}

		// when
		err := fixture.command.Execute(context.Background(), cfg, opts)

		// then
		require.NoError(t, err)
		require.Len(t, fixture.sink.PostedAuths, 1)
		assert.Equal(t, "cli-token", fixture.sink.PostedAuths[0].Token)
	})
}
