//go:build unit

package tarball_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
	"github.com/rios0rios0/harbinger/internal/infrastructure/repositories/checker/tarball"
	builders "github.com/rios0rios0/harbinger/test/domain/entitybuilders"
)

const headerFile = `/* fitsio.h */
#define CFITSIO_MAJOR 4
#define CFITSIO_VERSION 4.4.0
#define CFITSIO_SONAME 10
`

const changesFile = `Version 4.4.0 (April 2024)
- fixed the flux capacitor
- improved error messages

Version 4.3.1 (September 2023)
- older changes
`

// buildArchive creates an in-memory .tar.gz with the given members.
func buildArchive(t *testing.T, members map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)

	for name, content := range members {
		//nolint:exhaustruct // Minimal Header with required fields only
		require.NoError(t, tarWriter.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tarWriter.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, tarWriter.Close())
	require.NoError(t, gzWriter.Close())
	return buf.Bytes()
}

func serveArchive(t *testing.T, archive []byte) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(archive)
	}))
	t.Cleanup(server.Close)
	return server
}

func cfitsioDependency(url string) entities.Dependency {
	return builders.NewDependencyBuilder().
		WithName("cfitsio").
		WithPlugin("tarball").
		WithParam("url", url).
		WithParam("version_file", "cfitsio/fitsio.h").
		WithParam("version_marker", "CFITSIO_VERSION").
		WithParam("soname_marker", "CFITSIO_SONAME").
		WithParam("changelog_file", "cfitsio/docs/changes.txt").
		Build()
}

func TestTarballGetVersion(t *testing.T) {
	t.Parallel()

	t.Run("should extract version and soname from the archive", func(t *testing.T) {
		t.Parallel()

		// given
		archive := buildArchive(t, map[string]string{
			"cfitsio/fitsio.h":         headerFile,
			"cfitsio/docs/changes.txt": changesFile,
		})
		server := serveArchive(t, archive)
		checker := tarball.NewCheckerRepository()
		dep := cfitsioDependency(server.URL + "/cfitsio_latest.tar.gz")

		// when
		record, err := checker.GetVersion(context.Background(), dep, entities.AuthContext{}, t.TempDir())

		// then
		require.NoError(t, err)
		assert.Equal(t, "4.4.0", record.Version())
		assert.Equal(t, "10", record["soname"])
	})

	t.Run("should fail when required params are missing", func(t *testing.T) {
		t.Parallel()

		// given
		checker := tarball.NewCheckerRepository()
		dep := builders.NewDependencyBuilder().WithPlugin("tarball").Build()

		// when
		_, err := checker.GetVersion(context.Background(), dep, entities.AuthContext{}, t.TempDir())

		// then
		require.ErrorIs(t, err, entities.ErrFetch)
	})

	t.Run("should fail on a non-200 response", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(server.Close)
		checker := tarball.NewCheckerRepository()
		dep := cfitsioDependency(server.URL + "/missing.tar.gz")

		// when
		_, err := checker.GetVersion(context.Background(), dep, entities.AuthContext{}, t.TempDir())

		// then
		require.ErrorIs(t, err, entities.ErrFetch)
	})

	t.Run("should fail when the version marker is absent", func(t *testing.T) {
		t.Parallel()

		// given
		archive := buildArchive(t, map[string]string{
			"cfitsio/fitsio.h":         "/* nothing here */\n",
			"cfitsio/docs/changes.txt": changesFile,
		})
		server := serveArchive(t, archive)
		checker := tarball.NewCheckerRepository()
		dep := cfitsioDependency(server.URL + "/cfitsio_latest.tar.gz")

		// when
		_, err := checker.GetVersion(context.Background(), dep, entities.AuthContext{}, t.TempDir())

		// then
		require.ErrorIs(t, err, entities.ErrFetch)
	})
}

func TestTarballGetChangelog(t *testing.T) {
	t.Parallel()

	t.Run("should return only the latest changelog section", func(t *testing.T) {
		t.Parallel()

		// given
		archive := buildArchive(t, map[string]string{
			"cfitsio/fitsio.h":         headerFile,
			"cfitsio/docs/changes.txt": changesFile,
		})
		server := serveArchive(t, archive)
		checker := tarball.NewCheckerRepository()
		dep := cfitsioDependency(server.URL + "/cfitsio_latest.tar.gz")
		workDir := t.TempDir()

		newRecord, err := checker.GetVersion(context.Background(), dep, entities.AuthContext{}, workDir)
		require.NoError(t, err)
		oldRecord := entities.VersionRecord{"version": "4.3.1", "soname": "10"}

		// when
		changelog, err := checker.GetChangelog(
			context.Background(), oldRecord, newRecord, dep, entities.AuthContext{}, workDir)

		// then
		require.NoError(t, err)
		assert.Contains(t, changelog, "fixed the flux capacitor")
		assert.NotContains(t, changelog, "older changes")
		assert.Contains(t, changelog, "cfitsio/docs/changes.txt")
		assert.NotContains(t, changelog, "NOTE")
	})

	t.Run("should warn when the soname changed", func(t *testing.T) {
		t.Parallel()

		// given
		archive := buildArchive(t, map[string]string{
			"cfitsio/fitsio.h":         headerFile,
			"cfitsio/docs/changes.txt": changesFile,
		})
		server := serveArchive(t, archive)
		checker := tarball.NewCheckerRepository()
		dep := cfitsioDependency(server.URL + "/cfitsio_latest.tar.gz")
		workDir := t.TempDir()

		newRecord, err := checker.GetVersion(context.Background(), dep, entities.AuthContext{}, workDir)
		require.NoError(t, err)
		oldRecord := entities.VersionRecord{"version": "4.3.1", "soname": "9"}

		// when
		changelog, err := checker.GetChangelog(
			context.Background(), oldRecord, newRecord, dep, entities.AuthContext{}, workDir)

		// then
		require.NoError(t, err)
		assert.Contains(t, changelog, "`soname`")
		assert.Contains(t, changelog, `"9"`)
		assert.Contains(t, changelog, `"10"`)
	})

	t.Run("should re-fetch the archive in a fresh work directory", func(t *testing.T) {
		t.Parallel()

		// given
		archive := buildArchive(t, map[string]string{
			"cfitsio/fitsio.h":         headerFile,
			"cfitsio/docs/changes.txt": changesFile,
		})
		server := serveArchive(t, archive)
		checker := tarball.NewCheckerRepository()
		dep := cfitsioDependency(server.URL + "/cfitsio_latest.tar.gz")
		oldRecord := entities.VersionRecord{"version": "4.3.1"}
		newRecord := entities.VersionRecord{"version": "4.4.0"}

		// when: no prior GetVersion call populated this directory
		changelog, err := checker.GetChangelog(
			context.Background(), oldRecord, newRecord, dep, entities.AuthContext{}, t.TempDir())

		// then
		require.NoError(t, err)
		assert.Contains(t, changelog, "fixed the flux capacitor")
	})

	t.Run("should fall back to a plain message without a changelog file", func(t *testing.T) {
		t.Parallel()

		// given
		checker := tarball.NewCheckerRepository()
		dep := builders.NewDependencyBuilder().WithPlugin("tarball").Build()
		oldRecord := entities.VersionRecord{"version": "1.0"}
		newRecord := entities.VersionRecord{"version": "1.1"}

		// when
		changelog, err := checker.GetChangelog(
			context.Background(), oldRecord, newRecord, dep, entities.AuthContext{}, t.TempDir())

		// then
		require.NoError(t, err)
		assert.Contains(t, changelog, `"1.0"`)
		assert.Contains(t, changelog, `"1.1"`)
	})
}
