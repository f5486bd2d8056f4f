package entities

// Dependency identifies one upstream project whose releases are tracked.
type Dependency struct {
	Name   string            // Dependency name (may contain path separators)
	Plugin string            // Checker plugin key (e.g. "tarball", "gittags")
	Params map[string]string // Plugin-specific parameters
}

// AuthContext carries the credentials passed explicitly to every checker and
// notifier call. It is constructed once per run and never mutated.
type AuthContext struct {
	Token string // API token for the code-hosting service ("" for anonymous)
}

// HasToken reports whether a credential is present.
func (a AuthContext) HasToken() bool {
	return a.Token != ""
}
