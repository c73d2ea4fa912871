// Package gitlab discovers the group/subgroup/project hierarchy of a GitLab
// server and builds the in-memory tree consumed by the filter and sync
// engines. The remote API is reached through the narrow Client capability
// interface so that the builder can be exercised against fakes.
package gitlab

import "errors"

// Sentinel errors classifying remote API failures. Authentication failures
// are fatal at construction time; the remaining kinds are recoverable and
// cause the affected branch of the tree to be skipped.
var (
	ErrAuthentication = errors.New("gitlab authentication failed")
	ErrNotFound       = errors.New("gitlab resource not found")
	ErrForbidden      = errors.New("gitlab access forbidden")
	ErrList           = errors.New("gitlab listing failed")
)

// Group is the subset of a GitLab group consumed by the tree builder.
type Group struct {
	ID     int
	Name   string
	Path   string
	WebURL string
}

// Project is the subset of a GitLab project consumed by the tree builder.
type Project struct {
	ID            int
	Name          string
	Path          string
	SSHURL        string
	HTTPURL       string
	DefaultBranch string
}

// User identifies the authenticated GitLab user.
type User struct {
	ID       int
	Username string
}

// Client lists groups, projects, and branches from a GitLab server. Every
// method may fail independently; implementations classify failures with the
// sentinel errors above.
type Client interface {
	// CurrentUser returns the authenticated user.
	CurrentUser() (User, error)
	// ListTopLevelGroups returns groups without a parent group, optionally
	// narrowed by a search term. A nil archived selector fetches all groups.
	ListTopLevelGroups(archived *bool, search string) ([]Group, error)
	// ListSubgroups returns the immediate subgroups of a group.
	ListSubgroups(groupID int) ([]Group, error)
	// GetGroup fetches one group, typically to resolve a subgroup reference.
	GetGroup(groupID int) (Group, error)
	// ListProjects returns the projects directly owned by a group.
	ListProjects(groupID int, archived *bool) ([]Project, error)
	// ListSharedProjects returns the projects shared into a group.
	ListSharedProjects(groupID int) ([]Project, error)
	// ListUserProjects returns the projects owned by a user.
	ListUserProjects(userID int, archived *bool) ([]Project, error)
	// ListProtectedBranches returns the protected branch name patterns of a
	// project.
	ListProtectedBranches(projectID int) ([]string, error)
}
