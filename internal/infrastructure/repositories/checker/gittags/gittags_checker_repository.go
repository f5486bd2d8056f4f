// Package gittags implements the release checker for upstream projects that
// tag releases in a git repository. Tags are listed over the wire (ls-remote)
// without cloning.
package gittags

import (
	"context"
	"fmt"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
	domainRepos "github.com/rios0rios0/harbinger/internal/domain/repositories"
)

const (
	checkerName = "gittags"

	paramURL = "url"
)

// GitTagsCheckerRepository reports the highest release tag of a remote git
// repository as the current version.
type GitTagsCheckerRepository struct{}

// NewCheckerRepository creates the gittags checker.
func NewCheckerRepository() domainRepos.CheckerRepository {
	return &GitTagsCheckerRepository{}
}

func (c *GitTagsCheckerRepository) Name() string { return checkerName }

// GetVersion lists remote tags and returns the highest one.
func (c *GitTagsCheckerRepository) GetVersion(
	ctx context.Context,
	dep entities.Dependency,
	auth entities.AuthContext,
	_ string,
) (entities.VersionRecord, error) {
	tags, err := listRemoteTags(ctx, dep, auth)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: no tags found for %q", entities.ErrFetch, dep.Name)
	}

	return entities.VersionRecord{entities.VersionKey: tags[0]}, nil
}

// GetChangelog lists the tags published between the old and the new version.
func (c *GitTagsCheckerRepository) GetChangelog(
	ctx context.Context,
	oldRecord, newRecord entities.VersionRecord,
	dep entities.Dependency,
	auth entities.AuthContext,
	_ string,
) (string, error) {
	changelog := fmt.Sprintf("New tag %q published (previous reference was %q).",
		newRecord.Version(), oldRecord.Version())

	tags, err := listRemoteTags(ctx, dep, auth)
	if err == nil {
		if between := tagsBetween(tags, oldRecord.Version(), newRecord.Version()); len(between) > 0 {
			var b strings.Builder
			b.WriteString("Tags published since the last check:\n")
			for _, tag := range between {
				b.WriteString("- " + tag + "\n")
			}
			changelog = strings.TrimRight(b.String(), "\n")
		}
	}

	return changelog + entities.FieldChangeWarnings(oldRecord, newRecord), nil
}

// listRemoteTags performs an ls-remote against the configured URL and
// returns tag names sorted highest-first.
func listRemoteTags(
	ctx context.Context,
	dep entities.Dependency,
	auth entities.AuthContext,
) ([]string, error) {
	url := dep.Params[paramURL]
	if url == "" {
		return nil, fmt.Errorf("%w: gittags checker for %q requires %q param",
			entities.ErrFetch, dep.Name, paramURL)
	}

	//nolint:exhaustruct // Minimal RemoteConfig with required fields only
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	var authMethod transport.AuthMethod
	if auth.HasToken() {
		authMethod = &githttp.BasicAuth{Username: "x-access-token", Password: auth.Token}
	}

	//nolint:exhaustruct // Minimal ListOptions with required fields only
	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: authMethod})
	if err != nil {
		return nil, fmt.Errorf("%w: listing tags of %q: %v", entities.ErrFetch, dep.Name, err)
	}

	var tags []string
	for _, ref := range refs {
		if !ref.Name().IsTag() {
			continue
		}
		tag := ref.Name().Short()
		if strings.HasSuffix(tag, "^{}") {
			continue // peeled duplicate of an annotated tag
		}
		tags = append(tags, tag)
	}

	sortVersionsDescending(tags)
	return tags, nil
}

// tagsBetween returns the tags newer than oldVersion up to and including
// newVersion, oldest first. Non-semver tags fall back to string comparison.
func tagsBetween(tags []string, oldVersion, newVersion string) []string {
	var between []string
	for _, tag := range tags {
		if compareVersions(tag, oldVersion) > 0 && compareVersions(tag, newVersion) <= 0 {
			between = append(between, tag)
		}
	}
	sortVersionsAscending(between)
	return between
}

func sortVersionsAscending(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) < 0
	})
}

func sortVersionsDescending(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) > 0
	})
}

func compareVersions(left, right string) int {
	l := normalizeVersion(left)
	r := normalizeVersion(right)
	if semver.IsValid(l) && semver.IsValid(r) {
		return semver.Compare(l, r)
	}
	return strings.Compare(left, right)
}

func normalizeVersion(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
