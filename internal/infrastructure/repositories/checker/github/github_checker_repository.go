// Package github implements the release checker for upstream projects
// hosted on GitHub, using published releases (or tags as a fallback).
package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
	domainRepos "github.com/rios0rios0/harbinger/internal/domain/repositories"
)

const (
	checkerName = "github"

	paramRepo = "repo"
	perPage   = 100
)

// GitHubCheckerRepository reads the latest release of a GitHub repository.
type GitHubCheckerRepository struct{}

// NewCheckerRepository creates the github checker.
func NewCheckerRepository() domainRepos.CheckerRepository {
	return &GitHubCheckerRepository{}
}

func (c *GitHubCheckerRepository) Name() string { return checkerName }

// GetVersion returns the tag name of the latest release. Repositories that
// tag without publishing releases fall back to the highest tag on the first
// page of the tag listing.
func (c *GitHubCheckerRepository) GetVersion(
	ctx context.Context,
	dep entities.Dependency,
	auth entities.AuthContext,
	_ string,
) (entities.VersionRecord, error) {
	owner, name, err := upstreamRepo(dep)
	if err != nil {
		return nil, err
	}

	client := newClient(auth)

	release, resp, err := client.Repositories.GetLatestRelease(ctx, owner, name)
	if err == nil {
		return entities.VersionRecord{entities.VersionKey: release.GetTagName()}, nil
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return nil, fmt.Errorf("%w: latest release of %s/%s: %v",
			entities.ErrFetch, owner, name, err)
	}

	// No releases published; use the most recent tag instead.
	tags, _, err := client.Repositories.ListTags(ctx, owner, name,
		&gh.ListOptions{PerPage: perPage})
	if err != nil {
		return nil, fmt.Errorf("%w: listing tags of %s/%s: %v",
			entities.ErrFetch, owner, name, err)
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: %s/%s has no releases or tags",
			entities.ErrFetch, owner, name)
	}

	return entities.VersionRecord{entities.VersionKey: tags[0].GetName()}, nil
}

// GetChangelog returns the release notes body of the new version when
// available, plus warnings for any tracked field that changed.
func (c *GitHubCheckerRepository) GetChangelog(
	ctx context.Context,
	oldRecord, newRecord entities.VersionRecord,
	dep entities.Dependency,
	auth entities.AuthContext,
	_ string,
) (string, error) {
	owner, name, err := upstreamRepo(dep)
	if err != nil {
		return "", err
	}

	changelog := fmt.Sprintf("Version changed from %q to %q.",
		oldRecord.Version(), newRecord.Version())

	client := newClient(auth)
	release, _, err := client.Repositories.GetReleaseByTag(ctx, owner, name, newRecord.Version())
	if err == nil && strings.TrimSpace(release.GetBody()) != "" {
		changelog = strings.TrimSpace(release.GetBody()) + fmt.Sprintf(
			"\n\n(Release notes for %s, from https://github.com/%s/%s/releases)",
			newRecord.Version(), owner, name,
		)
	}

	return changelog + entities.FieldChangeWarnings(oldRecord, newRecord), nil
}

func newClient(auth entities.AuthContext) *gh.Client {
	client := gh.NewClient(nil)
	if auth.HasToken() {
		client = client.WithAuthToken(auth.Token)
	}
	return client
}

func upstreamRepo(dep entities.Dependency) (string, string, error) {
	owner, name, ok := strings.Cut(dep.Params[paramRepo], "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf(
			"%w: github checker for %q requires %q param as \"owner/name\"",
			entities.ErrFetch, dep.Name, paramRepo,
		)
	}
	return owner, name, nil
}
