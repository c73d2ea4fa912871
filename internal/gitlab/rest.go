package gitlab

import (
	"fmt"
	"net/http"

	gogitlab "gitlab.com/gitlab-org/api/client-go"
)

const listPageSize = 100

// restClient implements Client over the GitLab REST API, handling pagination
// transparently and classifying failures into the package sentinel errors.
type restClient struct {
	api *gogitlab.Client
}

// NewRESTClient connects to the GitLab server at baseURL using the personal
// access token and verifies the credentials. An invalid token surfaces as
// ErrAuthentication, which callers treat as fatal.
func NewRESTClient(baseURL string, token string) (Client, error) {
	api, clientError := gogitlab.NewClient(token, gogitlab.WithBaseURL(baseURL))
	if clientError != nil {
		return nil, fmt.Errorf("initialize gitlab client for %s: %w", baseURL, clientError)
	}
	client := &restClient{api: api}
	if _, authenticationError := client.CurrentUser(); authenticationError != nil {
		return nil, authenticationError
	}
	return client, nil
}

// CurrentUser returns the user that owns the access token.
func (client *restClient) CurrentUser() (User, error) {
	user, response, callError := client.api.Users.CurrentUser()
	if callError != nil {
		return User{}, classify("get current user", response, callError)
	}
	return User{ID: user.ID, Username: user.Username}, nil
}

// ListTopLevelGroups returns every group without a parent, optionally
// narrowed by a search term. The groups API has no archived filter; archived
// selection applies to project listings only.
func (client *restClient) ListTopLevelGroups(archived *bool, search string) ([]Group, error) {
	options := &gogitlab.ListGroupsOptions{
		ListOptions:  gogitlab.ListOptions{PerPage: listPageSize},
		TopLevelOnly: gogitlab.Ptr(true),
	}
	if search != "" {
		options.Search = gogitlab.Ptr(search)
	}
	var groups []Group
	for {
		page, response, callError := client.api.Groups.ListGroups(options)
		if callError != nil {
			return nil, classify("list top-level groups", response, callError)
		}
		for _, remoteGroup := range page {
			groups = append(groups, convertGroup(remoteGroup))
		}
		if response.NextPage == 0 {
			break
		}
		options.Page = response.NextPage
	}
	return groups, nil
}

// ListSubgroups returns the immediate subgroups of the group.
func (client *restClient) ListSubgroups(groupID int) ([]Group, error) {
	options := &gogitlab.ListSubGroupsOptions{
		ListOptions: gogitlab.ListOptions{PerPage: listPageSize},
	}
	var groups []Group
	for {
		page, response, callError := client.api.Groups.ListSubGroups(groupID, options)
		if callError != nil {
			return nil, classify(fmt.Sprintf("list subgroups of group %d", groupID), response, callError)
		}
		for _, remoteGroup := range page {
			groups = append(groups, convertGroup(remoteGroup))
		}
		if response.NextPage == 0 {
			break
		}
		options.Page = response.NextPage
	}
	return groups, nil
}

// GetGroup fetches one group by identifier.
func (client *restClient) GetGroup(groupID int) (Group, error) {
	remoteGroup, response, callError := client.api.Groups.GetGroup(groupID, &gogitlab.GetGroupOptions{})
	if callError != nil {
		return Group{}, classify(fmt.Sprintf("get group %d", groupID), response, callError)
	}
	return convertGroup(remoteGroup), nil
}

// ListProjects returns the projects directly owned by the group.
func (client *restClient) ListProjects(groupID int, archived *bool) ([]Project, error) {
	options := &gogitlab.ListGroupProjectsOptions{
		ListOptions: gogitlab.ListOptions{PerPage: listPageSize},
		Archived:    archived,
		WithShared:  gogitlab.Ptr(false),
	}
	var projects []Project
	for {
		page, response, callError := client.api.Groups.ListGroupProjects(groupID, options)
		if callError != nil {
			return nil, classify(fmt.Sprintf("list projects of group %d", groupID), response, callError)
		}
		for _, remoteProject := range page {
			projects = append(projects, convertProject(remoteProject))
		}
		if response.NextPage == 0 {
			break
		}
		options.Page = response.NextPage
	}
	return projects, nil
}

// ListSharedProjects returns the projects shared into the group.
func (client *restClient) ListSharedProjects(groupID int) ([]Project, error) {
	remoteGroup, response, callError := client.api.Groups.GetGroup(groupID, &gogitlab.GetGroupOptions{
		WithProjects: gogitlab.Ptr(true),
	})
	if callError != nil {
		return nil, classify(fmt.Sprintf("list shared projects of group %d", groupID), response, callError)
	}
	var projects []Project
	for _, remoteProject := range remoteGroup.SharedProjects {
		projects = append(projects, convertProject(remoteProject))
	}
	return projects, nil
}

// ListUserProjects returns the projects owned by the user.
func (client *restClient) ListUserProjects(userID int, archived *bool) ([]Project, error) {
	options := &gogitlab.ListProjectsOptions{
		ListOptions: gogitlab.ListOptions{PerPage: listPageSize},
		Archived:    archived,
	}
	var projects []Project
	for {
		page, response, callError := client.api.Projects.ListUserProjects(userID, options)
		if callError != nil {
			return nil, classify(fmt.Sprintf("list projects of user %d", userID), response, callError)
		}
		for _, remoteProject := range page {
			projects = append(projects, convertProject(remoteProject))
		}
		if response.NextPage == 0 {
			break
		}
		options.Page = response.NextPage
	}
	return projects, nil
}

// ListProtectedBranches returns the protected branch name patterns of the
// project.
func (client *restClient) ListProtectedBranches(projectID int) ([]string, error) {
	options := &gogitlab.ListProtectedBranchesOptions{
		ListOptions: gogitlab.ListOptions{PerPage: listPageSize},
	}
	var branchNames []string
	for {
		page, response, callError := client.api.ProtectedBranches.ListProtectedBranches(projectID, options)
		if callError != nil {
			return nil, classify(fmt.Sprintf("list protected branches of project %d", projectID), response, callError)
		}
		for _, protectedBranch := range page {
			branchNames = append(branchNames, protectedBranch.Name)
		}
		if response.NextPage == 0 {
			break
		}
		options.Page = response.NextPage
	}
	return branchNames, nil
}

func convertGroup(remoteGroup *gogitlab.Group) Group {
	return Group{
		ID:     remoteGroup.ID,
		Name:   remoteGroup.Name,
		Path:   remoteGroup.Path,
		WebURL: remoteGroup.WebURL,
	}
}

func convertProject(remoteProject *gogitlab.Project) Project {
	return Project{
		ID:            remoteProject.ID,
		Name:          remoteProject.Name,
		Path:          remoteProject.Path,
		SSHURL:        remoteProject.SSHURLToRepo,
		HTTPURL:       remoteProject.HTTPURLToRepo,
		DefaultBranch: remoteProject.DefaultBranch,
	}
}

// classify maps an API failure to a package sentinel error based on the HTTP
// status of the response, defaulting to ErrList.
func classify(operation string, response *gogitlab.Response, callError error) error {
	statusCode := 0
	if response != nil && response.Response != nil {
		statusCode = response.StatusCode
	}
	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w: %v", operation, ErrAuthentication, callError)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w: %v", operation, ErrForbidden, callError)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w: %v", operation, ErrNotFound, callError)
	}
	return fmt.Errorf("%s: %w: %v", operation, ErrList, callError)
}
