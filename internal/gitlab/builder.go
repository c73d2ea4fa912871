package gitlab

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/glabtree/glabtree/internal/tree"
)

const tokenURLMarker = "://"

// Builder discovers the remote hierarchy and produces the in-memory tree.
// Discovery is sequential and depth-first; only the sync phase is
// concurrent.
type Builder struct {
	client    Client
	serverURL string
	options   BuilderOptions
	logger    *zap.Logger
}

// NewBuilder returns a Builder reading from the given client. The serverURL
// is recorded on the synthetic root node.
func NewBuilder(client Client, serverURL string, options BuilderOptions, logger *zap.Logger) *Builder {
	return &Builder{client: client, serverURL: serverURL, options: options, logger: logger}
}

// BuildTree discovers every top-level group recursively. A failure while
// listing one group's subgroups or projects skips that branch and never
// aborts sibling processing; only the top-level listing itself is fatal.
func (builder *Builder) BuildTree() (*tree.Node, error) {
	builder.logger.Debug("starting group discovery",
		zap.String("server", builder.serverURL),
		zap.String("search", builder.options.GroupSearch))

	root := tree.NewRoot(builder.serverURL)
	groups, listError := builder.client.ListTopLevelGroups(builder.options.Archived, builder.options.GroupSearch)
	if listError != nil {
		return nil, fmt.Errorf("load gitlab tree: %w", listError)
	}
	for _, group := range groups {
		groupNode := root.AddChild(tree.ChildSpec{
			Kind: tree.KindGroup,
			Name: builder.groupName(group),
			URL:  group.WebURL,
		})
		builder.logger.Debug("added group", zap.String("path", groupNode.RootPath))
		builder.addSubgroups(group.ID, groupNode)
		builder.addProjects(group.ID, groupNode)
	}
	builder.logger.Debug("finished group discovery", zap.Int("projects", len(root.Leaves())))
	return root, nil
}

// BuildUserTree discovers the authenticated user's personal projects under a
// single synthetic group node.
func (builder *Builder) BuildUserTree() (*tree.Node, error) {
	user, userError := builder.client.CurrentUser()
	if userError != nil {
		return nil, fmt.Errorf("load user projects: %w", userError)
	}
	projects, listError := builder.client.ListUserProjects(user.ID, builder.options.Archived)
	if listError != nil {
		return nil, fmt.Errorf("load user projects: %w", listError)
	}
	root := tree.NewRoot(builder.serverURL)
	userGroup := root.AddChild(tree.ChildSpec{
		Kind: tree.KindGroup,
		Name: fmt.Sprintf("%s-personal-projects", user.Username),
		URL:  fmt.Sprintf("%s/users/%s/projects", builder.serverURL, user.Username),
	})
	builder.attachProjects(userGroup, projects)
	return root, nil
}

// addSubgroups lists and recurses into the subgroups of a group. Permission
// failures on a single subgroup skip only that subgroup.
func (builder *Builder) addSubgroups(groupID int, parent *tree.Node) {
	subgroups, listError := builder.client.ListSubgroups(groupID)
	if listError != nil {
		builder.logSkippedBranch("subgroups", parent, listError)
		return
	}
	for _, subgroupReference := range subgroups {
		subgroup, getError := builder.client.GetGroup(subgroupReference.ID)
		if getError != nil {
			if errors.Is(getError, ErrNotFound) || errors.Is(getError, ErrForbidden) {
				builder.logger.Error("skipping inaccessible subgroup, check your permissions",
					zap.String("name", subgroupReference.Name),
					zap.Int("id", subgroupReference.ID),
					zap.Error(getError))
				continue
			}
			builder.logger.Error("error getting subgroup",
				zap.String("name", subgroupReference.Name),
				zap.Error(getError))
			continue
		}
		subgroupNode := parent.AddChild(tree.ChildSpec{
			Kind: tree.KindSubgroup,
			Name: builder.groupName(subgroup),
			URL:  subgroup.WebURL,
		})
		builder.logger.Debug("added subgroup", zap.String("path", subgroupNode.RootPath))
		builder.addSubgroups(subgroup.ID, subgroupNode)
		builder.addProjects(subgroup.ID, subgroupNode)
	}
}

// addProjects lists the projects owned by a group and, when shared-project
// inclusion is enabled, the projects shared into it. A listing failure
// leaves the branch empty.
func (builder *Builder) addProjects(groupID int, parent *tree.Node) {
	projects, listError := builder.client.ListProjects(groupID, builder.options.Archived)
	if listError != nil {
		builder.logSkippedBranch("projects", parent, listError)
		return
	}
	builder.attachProjects(parent, projects)

	if builder.options.IncludeShared {
		sharedProjects, sharedError := builder.client.ListSharedProjects(groupID)
		if sharedError != nil {
			builder.logSkippedBranch("shared projects", parent, sharedError)
			return
		}
		builder.attachProjects(parent, sharedProjects)
	}
}

// attachProjects converts the remote projects into project nodes under the
// parent. A failure while resolving one project skips that project only.
func (builder *Builder) attachProjects(parent *tree.Node, projects []Project) {
	for _, project := range projects {
		specification := tree.ChildSpec{
			Kind: tree.KindProject,
			Name: builder.projectName(project),
			URL:  builder.projectURL(project),
		}
		if builder.options.namingStrategy() == NamingBranch {
			specification.DefaultBranch = project.DefaultBranch
		}
		if builder.options.ProtectedBranches {
			protectedBranches, protectedError := builder.client.ListProtectedBranches(project.ID)
			if protectedError != nil {
				if !errors.Is(protectedError, ErrForbidden) {
					builder.logger.Error("failed to add project",
						zap.String("name", project.Name),
						zap.Error(protectedError))
					continue
				}
				// Missing permission on protected branches means "none",
				// not a dropped project.
				builder.logger.Error("cannot read protected branches",
					zap.String("name", project.Name),
					zap.Error(protectedError))
			}
			specification.ProtectedBranches = protectedBranches
		}
		projectNode := parent.AddChild(specification)
		builder.logger.Debug("added project", zap.String("path", projectNode.RootPath))
	}
}

func (builder *Builder) groupName(group Group) string {
	if builder.options.namingStrategy() == NamingName {
		return group.Name
	}
	return group.Path
}

func (builder *Builder) projectName(project Project) string {
	if builder.options.namingStrategy() == NamingName {
		return project.Name
	}
	return project.Path
}

// projectURL returns the clone URL per the configured method, embedding the
// access token into http URLs unless suppression was requested.
func (builder *Builder) projectURL(project Project) string {
	if builder.options.cloneMethod() == CloneSSH {
		return project.SSHURL
	}
	if builder.options.Token == "" || builder.options.HideToken {
		return project.HTTPURL
	}
	credential := fmt.Sprintf("://gitlab-token:%s@", builder.options.Token)
	return strings.Replace(project.HTTPURL, tokenURLMarker, credential, 1)
}

func (builder *Builder) logSkippedBranch(listing string, parent *tree.Node, listError error) {
	builder.logger.Error("error listing "+listing+", leaving branch empty",
		zap.String("path", parent.RootPath),
		zap.Error(listError))
}
