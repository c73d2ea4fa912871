package gitlab

import "fmt"

// NamingStrategy selects how a node's folder name is derived from the remote
// entity.
type NamingStrategy string

// Supported naming strategies.
const (
	// NamingPath uses the path-safe slug of the remote entity.
	NamingPath NamingStrategy = "path"
	// NamingName uses the human-readable display name.
	NamingName NamingStrategy = "name"
	// NamingBranch uses the path slug and appends the project's resolved
	// default branch as a trailing path segment.
	NamingBranch NamingStrategy = "branch"
)

// ParseNamingStrategy validates a naming strategy string.
func ParseNamingStrategy(value string) (NamingStrategy, error) {
	switch NamingStrategy(value) {
	case NamingPath, NamingName, NamingBranch:
		return NamingStrategy(value), nil
	default:
		return "", fmt.Errorf("invalid naming strategy %q (expected path, name, or branch)", value)
	}
}

// CloneMethod selects which remote URL variant is recorded on project nodes.
type CloneMethod string

// Supported clone methods.
const (
	CloneSSH  CloneMethod = "ssh"
	CloneHTTP CloneMethod = "http"
)

// ParseCloneMethod validates a clone method string.
func ParseCloneMethod(value string) (CloneMethod, error) {
	switch CloneMethod(value) {
	case CloneSSH, CloneHTTP:
		return CloneMethod(value), nil
	default:
		return "", fmt.Errorf("invalid clone method %q (expected ssh or http)", value)
	}
}

// BuilderOptions configures tree discovery.
type BuilderOptions struct {
	// Naming selects the folder naming strategy (default NamingPath).
	Naming NamingStrategy
	// Method selects ssh or http clone URLs (default CloneSSH).
	Method CloneMethod
	// Token is embedded into http clone URLs unless HideToken is set.
	Token string
	// HideToken suppresses token embedding in http clone URLs.
	HideToken bool
	// Archived narrows project listings: nil fetches all projects, true only
	// archived ones, false only active ones.
	Archived *bool
	// IncludeShared also lists projects shared into each group.
	IncludeShared bool
	// ProtectedBranches fetches each project's protected branch patterns for
	// worktree mirroring during sync.
	ProtectedBranches bool
	// GroupSearch narrows the top-level group listing by a search term.
	GroupSearch string
}

func (options BuilderOptions) namingStrategy() NamingStrategy {
	if options.Naming == "" {
		return NamingPath
	}
	return options.Naming
}

func (options BuilderOptions) cloneMethod() CloneMethod {
	if options.Method == "" {
		return CloneSSH
	}
	return options.Method
}
