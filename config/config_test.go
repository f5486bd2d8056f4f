//go:build unit

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/harbinger/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "harbinger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
refdir: ./references
notify_repo: org/project
token: inline-token
dependencies:
  cfitsio:
    plugin: tarball
    params:
      url: https://example.com/cfitsio_latest.tar.gz
      version_file: cfitsio/fitsio.h
      version_marker: CFITSIO_VERSION
  libxyz:
    plugin: gittags
    params:
      url: https://example.com/libxyz.git
`

//nolint:tparallel // some subtests use t.Setenv which is incompatible with t.Parallel on parent
func TestLoad(t *testing.T) {
	t.Run("should load a valid configuration", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, validConfig)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "./references", cfg.RefDir)
		assert.Equal(t, "org/project", cfg.NotifyRepo)
		assert.Equal(t, "inline-token", cfg.Token)
		assert.Len(t, cfg.Dependencies, 2)
	})

	t.Run("should default the notifier to github", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, validConfig)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "github", cfg.Notifier)
	})

	t.Run("should expand environment variables in the token", func(t *testing.T) {
		// given
		t.Setenv("HARBINGER_TEST_TOKEN", "from-env")
		path := writeConfig(t, `
refdir: ./references
notify_repo: org/project
token: ${HARBINGER_TEST_TOKEN}
dependencies:
  dep:
    plugin: tarball
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Token)
	})

	t.Run("should fail on an unreadable file", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.Error(t, err)
	})

	t.Run("should fail on invalid YAML", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, "{{{ not yaml")

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
	})

	t.Run("should fail without a refdir", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
notify_repo: org/project
dependencies:
  dep:
    plugin: tarball
`)

		// when
		_, err := config.Load(path)

		// then
		require.ErrorContains(t, err, "refdir")
	})

	t.Run("should fail on a malformed notify_repo", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
refdir: ./references
notify_repo: just-a-name
dependencies:
  dep:
    plugin: tarball
`)

		// when
		_, err := config.Load(path)

		// then
		require.ErrorContains(t, err, "owner/name")
	})

	t.Run("should fail without dependencies", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
refdir: ./references
notify_repo: org/project
`)

		// when
		_, err := config.Load(path)

		// then
		require.ErrorContains(t, err, "at least one dependency")
	})

	t.Run("should fail fast when a dependency has no plugin", func(t *testing.T) {
		t.Parallel()

		// given: no name-derived fallback exists, this must be explicit
		path := writeConfig(t, `
refdir: ./references
notify_repo: org/project
dependencies:
  cfitsio:
    params:
      url: https://example.com/archive.tar.gz
`)

		// when
		_, err := config.Load(path)

		// then
		require.ErrorContains(t, err, `dependencies["cfitsio"].plugin is required`)
	})
}

//nolint:tparallel // some subtests use t.Setenv which is incompatible with t.Parallel on parent
func TestResolveToken(t *testing.T) {
	t.Run("should return empty string for empty input", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.Empty(t, config.ResolveToken(""))
	})

	t.Run("should return inline token unchanged", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.Equal(t, "ghp_abc123xyz", config.ResolveToken("ghp_abc123xyz"))
	})

	t.Run("should expand an environment variable reference", func(t *testing.T) {
		// given
		t.Setenv("HARBINGER_RESOLVE_TOKEN", "secret")

		// when / then
		assert.Equal(t, "secret", config.ResolveToken("${HARBINGER_RESOLVE_TOKEN}"))
	})

	t.Run("should read the token from a file path", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("file-token\n"), 0o600))

		// when / then
		assert.Equal(t, "file-token", config.ResolveToken(path))
	})
}

func TestDependencyList(t *testing.T) {
	t.Parallel()

	t.Run("should return dependencies sorted by name", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := &config.Config{
			Dependencies: map[string]config.DependencyConfig{
				"zlib":    {Plugin: "tarball"},
				"cfitsio": {Plugin: "tarball"},
				"libxyz":  {Plugin: "gittags"},
			},
		}

		// when
		deps := cfg.DependencyList()

		// then
		require.Len(t, deps, 3)
		assert.Equal(t, "cfitsio", deps[0].Name)
		assert.Equal(t, "libxyz", deps[1].Name)
		assert.Equal(t, "zlib", deps[2].Name)
	})
}
