// Package github implements the notification sink that posts detected
// releases as issues on a GitHub repository.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
	domainRepos "github.com/rios0rios0/harbinger/internal/domain/repositories"
)

const (
	notifierName = "github"
	perPage      = 100
)

// GitHubNotifierRepository creates (or comments on) an issue titled after
// the dependency in the target repository. In dry-run mode it logs the
// formatted event and never touches the network.
type GitHubNotifierRepository struct {
	dryRun bool
}

// NewNotifierRepository creates the GitHub sink.
func NewNotifierRepository(dryRun bool) domainRepos.NotifierRepository {
	return &GitHubNotifierRepository{dryRun: dryRun}
}

func (n *GitHubNotifierRepository) Name() string { return notifierName }

// Post delivers the event. When an open issue with the event title already
// exists, the body is appended as a comment so repeated releases of one
// dependency thread into a single issue.
func (n *GitHubNotifierRepository) Post(
	ctx context.Context,
	event entities.NotificationEvent,
	auth entities.AuthContext,
) error {
	if n.dryRun {
		logger.Infof("[dry-run] would post to %s:\n%s\n\n%s", event.Repo, event.Title, event.Body)
		return nil
	}

	if !auth.HasToken() {
		return fmt.Errorf("%w: no token supplied for posting to %q", entities.ErrAuth, event.Repo)
	}

	owner, name, ok := strings.Cut(event.Repo, "/")
	if !ok || owner == "" || name == "" {
		return fmt.Errorf("%w: notification target %q is not of the form \"owner/name\"",
			entities.ErrDelivery, event.Repo)
	}

	client := gh.NewClient(nil).WithAuthToken(auth.Token)

	existing, err := n.findOpenIssue(ctx, client, owner, name, event.Title)
	if err != nil {
		return err
	}

	if existing != 0 {
		logger.Infof("Appending to existing issue #%d in %s", existing, event.Repo)
		_, _, err = client.Issues.CreateComment(ctx, owner, name, existing,
			//nolint:exhaustruct // Minimal IssueComment with required fields only
			&gh.IssueComment{Body: &event.Body})
		return wrapAPIError(err, "comment on issue")
	}

	logger.Infof("Creating issue in %s: %s", event.Repo, event.Title)
	//nolint:exhaustruct // Minimal IssueRequest with required fields only
	_, _, err = client.Issues.Create(ctx, owner, name, &gh.IssueRequest{
		Title: &event.Title,
		Body:  &event.Body,
	})
	return wrapAPIError(err, "create issue")
}

// findOpenIssue returns the number of the first open issue matching title,
// or 0 when none exists.
func (n *GitHubNotifierRepository) findOpenIssue(
	ctx context.Context,
	client *gh.Client,
	owner, name, title string,
) (int, error) {
	//nolint:exhaustruct // Minimal list options with required fields only
	opts := &gh.IssueListByRepoOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	for {
		issues, resp, err := client.Issues.ListByRepo(ctx, owner, name, opts)
		if err != nil {
			return 0, wrapAPIError(err, "list issues")
		}

		for _, issue := range issues {
			if issue.GetTitle() == title {
				return issue.GetNumber(), nil
			}
		}

		if resp.NextPage == 0 {
			return 0, nil
		}
		opts.Page = resp.NextPage
	}
}

// wrapAPIError maps GitHub API failures onto the sink error taxonomy.
func wrapAPIError(err error, action string) error {
	if err == nil {
		return nil
	}

	var apiErr *gh.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		status := apiErr.Response.StatusCode
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return fmt.Errorf("%w: %s: %v", entities.ErrAuth, action, err)
		}
	}

	return fmt.Errorf("%w: %s: %v", entities.ErrDelivery, action, err)
}
