// Package tarball implements the release checker for upstream projects that
// publish a source archive with the version embedded in a source file
// (e.g. a C header carrying a VERSION define and a SONAME define).
package tarball

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
	domainRepos "github.com/rios0rios0/harbinger/internal/domain/repositories"
)

const (
	checkerName = "tarball"

	paramURL              = "url"
	paramVersionFile      = "version_file"
	paramVersionMarker    = "version_marker"
	paramSonameMarker     = "soname_marker"
	paramChangelogFile    = "changelog_file"
	paramChangelogSection = "changelog_section"

	defaultChangelogSection = "Version"
	changelogFallbackLines  = 20

	retryMax = 3
	dirMode  = 0o755
	fileMode = 0o644
)

// TarballCheckerRepository downloads a release archive and scans named
// members for version markers. All artifacts land in the caller's work
// directory.
type TarballCheckerRepository struct{}

// NewCheckerRepository creates the tarball checker.
func NewCheckerRepository() domainRepos.CheckerRepository {
	return &TarballCheckerRepository{}
}

func (c *TarballCheckerRepository) Name() string { return checkerName }

// GetVersion downloads the archive and extracts the version (and optional
// soname) markers from the configured source file.
func (c *TarballCheckerRepository) GetVersion(
	ctx context.Context,
	dep entities.Dependency,
	_ entities.AuthContext,
	workDir string,
) (entities.VersionRecord, error) {
	url := dep.Params[paramURL]
	versionFile := dep.Params[paramVersionFile]
	versionMarker := dep.Params[paramVersionMarker]
	if url == "" || versionFile == "" || versionMarker == "" {
		return nil, fmt.Errorf(
			"%w: tarball checker for %q requires %q, %q and %q params",
			entities.ErrFetch, dep.Name, paramURL, paramVersionFile, paramVersionMarker,
		)
	}

	if err := c.fetchArchive(ctx, dep, workDir); err != nil {
		return nil, err
	}

	lines, err := readExtracted(workDir, versionFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %q not found in archive for %q: %v",
			entities.ErrFetch, versionFile, dep.Name, err)
	}

	version, ok := markerValue(lines, versionMarker)
	if !ok {
		return nil, fmt.Errorf("%w: no line matching %q in %q for %q",
			entities.ErrFetch, versionMarker, versionFile, dep.Name)
	}

	record := entities.VersionRecord{entities.VersionKey: version}
	if sonameMarker := dep.Params[paramSonameMarker]; sonameMarker != "" {
		if soname, found := markerValue(lines, sonameMarker); found {
			record["soname"] = soname
		}
	}

	return record, nil
}

// GetChangelog extracts the most recent section of the archive's changelog
// file and appends warnings for any tracked field that changed.
func (c *TarballCheckerRepository) GetChangelog(
	ctx context.Context,
	oldRecord, newRecord entities.VersionRecord,
	dep entities.Dependency,
	_ entities.AuthContext,
	workDir string,
) (string, error) {
	changelog := fmt.Sprintf("Version changed from %q to %q.",
		oldRecord.Version(), newRecord.Version())

	changelogFile := dep.Params[paramChangelogFile]
	if changelogFile != "" {
		lines, err := readExtracted(workDir, changelogFile)
		if err != nil {
			// GetVersion extracted into the same work directory within one
			// check cycle; a missing file means a fresh directory, so fetch
			// the archive again.
			if fetchErr := c.fetchArchive(ctx, dep, workDir); fetchErr != nil {
				return "", fetchErr
			}
			lines, err = readExtracted(workDir, changelogFile)
			if err != nil {
				return "", fmt.Errorf("%w: %q not found in archive for %q: %v",
					entities.ErrFetch, changelogFile, dep.Name, err)
			}
		}

		section := dep.Params[paramChangelogSection]
		if section == "" {
			section = defaultChangelogSection
		}

		changelog = latestChangelogSection(lines, section) + fmt.Sprintf(
			"\n\n(For complete changelog information, consult %s inside the release archive.)",
			changelogFile,
		)
	}

	return changelog + entities.FieldChangeWarnings(oldRecord, newRecord), nil
}

// fetchArchive downloads the gzipped tarball and extracts the members the
// dependency's params reference into workDir.
func (c *TarballCheckerRepository) fetchArchive(
	ctx context.Context,
	dep entities.Dependency,
	workDir string,
) error {
	wanted := make(map[string]bool)
	for _, key := range []string{paramVersionFile, paramChangelogFile} {
		if member := dep.Params[key]; member != "" {
			wanted[member] = true
		}
	}

	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, dep.Params[paramURL], nil)
	if err != nil {
		return fmt.Errorf("%w: invalid URL for %q: %v", entities.ErrFetch, dep.Name, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: downloading %q: %v", entities.ErrFetch, dep.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: downloading %q: unexpected status %s",
			entities.ErrFetch, dep.Name, resp.Status)
	}

	if extractErr := extractMembers(resp.Body, wanted, workDir); extractErr != nil {
		return fmt.Errorf("%w: extracting archive for %q: %v",
			entities.ErrFetch, dep.Name, extractErr)
	}

	return nil
}

// extractMembers streams a .tar.gz and writes the wanted members under dir.
func extractMembers(archive io.Reader, wanted map[string]bool, dir string) error {
	gzReader, err := gzip.NewReader(archive)
	if err != nil {
		return fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer func() { _ = gzReader.Close() }()

	tarReader := tar.NewReader(gzReader)
	remaining := len(wanted)

	for remaining > 0 {
		header, nextErr := tarReader.Next()
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			return fmt.Errorf("failed to read archive: %w", nextErr)
		}

		name := strings.TrimPrefix(header.Name, "./")
		if header.Typeflag != tar.TypeReg || !wanted[name] {
			continue
		}

		if writeErr := writeExtracted(dir, name, tarReader); writeErr != nil {
			return writeErr
		}
		remaining--
	}

	return nil
}

func writeExtracted(dir, member string, content io.Reader) error {
	path, err := extractedPath(dir, member)
	if err != nil {
		return err
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(path), dirMode); mkdirErr != nil {
		return fmt.Errorf("failed to create extraction dir: %w", mkdirErr)
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer func() { _ = out.Close() }()

	if _, copyErr := io.Copy(out, content); copyErr != nil {
		return fmt.Errorf("failed to extract %q: %w", member, copyErr)
	}

	return nil
}

// extractedPath resolves an archive member inside dir, rejecting traversal.
func extractedPath(dir, member string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(member))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) ||
		filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("archive member %q escapes the work directory", member)
	}
	return filepath.Join(dir, cleaned), nil
}

func readExtracted(dir, member string) ([]string, error) {
	path, err := extractedPath(dir, member)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return strings.Split(string(data), "\n"), nil
}

// markerValue finds the first line containing marker and returns its last
// whitespace-separated field, unquoted. Handles lines like:
//
//	#define CFITSIO_VERSION 4.4.0
func markerValue(lines []string, marker string) (string, bool) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.Contains(trimmed, marker) {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}
		return strings.Trim(fields[len(fields)-1], `"'`), true
	}
	return "", false
}

// latestChangelogSection returns the first section of the changelog, where a
// section opens at a line containing sectionWord and closes at the next such
// line. When no section is found, the first lines of the file are returned.
func latestChangelogSection(lines []string, sectionWord string) string {
	var section []string
	open := false

	for _, line := range lines {
		isHeading := strings.Contains(strings.TrimSpace(line), sectionWord)
		if isHeading && open {
			break
		}
		if isHeading {
			open = true
		}
		if open {
			section = append(section, line)
		}
	}

	if len(section) == 0 {
		end := changelogFallbackLines
		if end > len(lines) {
			end = len(lines)
		}
		section = lines[:end]
	}

	return strings.TrimRight(strings.Join(section, "\n"), "\n")
}
