package entities

import "fmt"

const issueTitlePrefix = "Upstream release of dependency: "

// NotificationEvent is one formatted message headed for the issue tracker.
// It exists only for the duration of a single post attempt.
type NotificationEvent struct {
	Title string // Issue title, derived from the dependency name
	Body  string // Boilerplate preamble plus the plugin's changelog text
	Repo  string // Target repository as "owner/name"
}

// NewNotificationEvent composes the event for a detected release of depName.
func NewNotificationEvent(depName, changelog, repo string) NotificationEvent {
	preamble := fmt.Sprintf(
		"This is a message from an automated system that monitors `%s` releases.",
		depName,
	)
	return NotificationEvent{
		Title: issueTitlePrefix + depName,
		Body:  preamble + "\n\n" + changelog,
		Repo:  repo,
	}
}
