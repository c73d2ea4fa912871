// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glabtree/glabtree/internal/config"
	"github.com/glabtree/glabtree/internal/gitlab"
	"github.com/glabtree/glabtree/internal/gitsync"
	"github.com/glabtree/glabtree/internal/tree"
	"github.com/glabtree/glabtree/internal/utils"
)

const (
	rootUse              = "glabtree [flags] [destination]"
	rootShortDescription = "clone or pull a GitLab group hierarchy into a local directory tree"
	rootLongDescription  = `glabtree discovers the group/subgroup/project hierarchy of a GitLab
server, filters it with glob patterns matched against the slash-joined group
path, and either prints the resulting tree or mirrors it under a destination
directory with concurrent clone/pull operations.`
	rootUsageExample = `  # Print the filtered tree
  glabtree -i "team/**" -p

  # Mirror two groups with four workers
  glabtree -i "team/**" -i "infra/**" -c 4 ~/gitlab

  # Load the tree from a previous YAML export and sync it
  glabtree -f tree.yaml ~/gitlab`

	includeFlagName           = "include"
	excludeFlagName           = "exclude"
	tokenFlagName             = "token"
	urlFlagName               = "url"
	fileFlagName              = "file"
	configFlagName            = "config"
	printFlagName             = "print"
	printFormatFlagName       = "print-format"
	namingFlagName            = "naming"
	methodFlagName            = "method"
	concurrencyFlagName       = "concurrency"
	recursiveFlagName         = "recursive"
	useFetchFlagName          = "use-fetch"
	hideTokenFlagName         = "hide-token"
	userProjectsFlagName      = "user-projects"
	groupSearchFlagName       = "group-search"
	gitOptionsFlagName        = "git-options"
	protectedBranchesFlagName = "protected-branches"
	archivedFlagName          = "archived"
	includeSharedFlagName     = "include-shared"
	noProgressFlagName        = "no-progress"
	verboseFlagName           = "verbose"
	versionFlagName           = "version"

	includeFlagDescription           = "glob pattern a node path must match to be kept (repeatable)"
	excludeFlagDescription           = "glob pattern that removes matching node paths (repeatable)"
	tokenFlagDescription             = "GitLab personal access token (or gitlab.token, or GITLAB_TOKEN)"
	urlFlagDescription               = "GitLab server URL (or gitlab.url, or GITLAB_URL)"
	fileFlagDescription              = "load the tree from a YAML export instead of the server"
	configFlagDescription            = "explicit configuration file path"
	printFlagDescription             = "print the tree instead of syncing"
	printFormatFlagDescription       = "print format: tree, yaml, or json"
	namingFlagDescription            = "folder naming strategy: path, name, or branch"
	methodFlagDescription            = "clone method: ssh or http"
	concurrencyFlagDescription       = "number of concurrent clone/pull operations"
	recursiveFlagDescription         = "clone and update submodules recursively"
	useFetchFlagDescription          = "fetch instead of pull on updates (clones use --mirror)"
	hideTokenFlagDescription         = "do not embed the token into http clone URLs"
	userProjectsFlagDescription      = "sync the authenticated user's personal projects only"
	groupSearchFlagDescription       = "narrow the top-level group listing by a search term"
	gitOptionsFlagDescription        = "comma-separated raw git options appended to clone invocations"
	protectedBranchesFlagDescription = "mirror protected branches into sibling worktrees"
	archivedFlagDescription          = "archived project handling: fetch, exclude, or only"
	includeSharedFlagDescription     = "include projects shared into each group"
	noProgressFlagDescription        = "disable progress reporting"
	verboseFlagDescription           = "enable debug logging"
	versionFlagDescription           = "display application version"

	versionTemplate = "glabtree version: %s\n"

	printFormatTree = "tree"
	printFormatYAML = "yaml"
	printFormatJSON = "json"

	archivedFetch   = "fetch"
	archivedExclude = "exclude"
	archivedOnly    = "only"

	errorDestinationRequired = "a destination directory is required unless --print is set"
	errorServerURLRequired   = "a gitlab server url is required: set --url, gitlab.url in " + config.ConfigFileName + ", or " + config.ServerURLEnvironmentVariable
	errorTokenRequired       = "a gitlab access token is required: set --token, gitlab.token in " + config.ConfigFileName + ", or " + config.TokenEnvironmentVariable
	errorEmptyTree           = "the tree is empty: no projects matched the requested filters"
)

// rootOptions collects every flag of the root command.
type rootOptions struct {
	includePatterns   []string
	excludePatterns   []string
	token             string
	serverURL         string
	treeFilePath      string
	configFilePath    string
	printTree         bool
	printFormat       string
	naming            string
	method            string
	concurrency       int
	recursive         bool
	useFetch          bool
	hideToken         bool
	userProjects      bool
	groupSearch       string
	gitOptions        string
	protectedBranches bool
	archived          string
	includeShared     bool
	noProgress        bool
	verbose           bool
}

// Execute runs the glabtree application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(logger)
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(logger *zap.Logger) *cobra.Command {
	var options rootOptions
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return run(command, arguments, options, logger)
		},
	}

	flags := rootCommand.Flags()
	flags.StringArrayVarP(&options.includePatterns, includeFlagName, "i", nil, includeFlagDescription)
	flags.StringArrayVarP(&options.excludePatterns, excludeFlagName, "x", nil, excludeFlagDescription)
	flags.StringVarP(&options.token, tokenFlagName, "t", "", tokenFlagDescription)
	flags.StringVarP(&options.serverURL, urlFlagName, "u", "", urlFlagDescription)
	flags.StringVarP(&options.treeFilePath, fileFlagName, "f", "", fileFlagDescription)
	flags.StringVar(&options.configFilePath, configFlagName, "", configFlagDescription)
	flags.BoolVarP(&options.printTree, printFlagName, "p", false, printFlagDescription)
	flags.StringVar(&options.printFormat, printFormatFlagName, printFormatTree, printFormatFlagDescription)
	flags.StringVarP(&options.naming, namingFlagName, "n", "", namingFlagDescription)
	flags.StringVarP(&options.method, methodFlagName, "m", "", methodFlagDescription)
	flags.IntVarP(&options.concurrency, concurrencyFlagName, "c", 1, concurrencyFlagDescription)
	flags.BoolVarP(&options.recursive, recursiveFlagName, "r", false, recursiveFlagDescription)
	flags.BoolVarP(&options.useFetch, useFetchFlagName, "F", false, useFetchFlagDescription)
	flags.BoolVar(&options.hideToken, hideTokenFlagName, false, hideTokenFlagDescription)
	flags.BoolVarP(&options.userProjects, userProjectsFlagName, "U", false, userProjectsFlagDescription)
	flags.StringVarP(&options.groupSearch, groupSearchFlagName, "s", "", groupSearchFlagDescription)
	flags.StringVarP(&options.gitOptions, gitOptionsFlagName, "g", "", gitOptionsFlagDescription)
	flags.BoolVar(&options.protectedBranches, protectedBranchesFlagName, false, protectedBranchesFlagDescription)
	flags.StringVarP(&options.archived, archivedFlagName, "a", archivedFetch, archivedFlagDescription)
	flags.BoolVar(&options.includeShared, includeSharedFlagName, true, includeSharedFlagDescription)
	flags.BoolVar(&options.noProgress, noProgressFlagName, false, noProgressFlagDescription)
	flags.BoolVar(&options.verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)

	return rootCommand
}

// run loads the tree from the requested source, filters it, and either
// prints it or syncs it into the destination directory.
func run(command *cobra.Command, arguments []string, options rootOptions, logger *zap.Logger) error {
	configuration, configurationError := config.LoadConfiguration(config.LoadOptions{ExplicitFilePath: options.configFilePath})
	if configurationError != nil {
		return configurationError
	}
	applyConfigurationDefaults(command, &options, configuration)

	root, loadError := loadTree(options, configuration, logger)
	if loadError != nil {
		return loadError
	}

	if filterError := tree.Filter(root, options.includePatterns, options.excludePatterns); filterError != nil {
		return filterError
	}
	if root.IsLeaf() {
		return fmt.Errorf(errorEmptyTree)
	}

	if options.printTree {
		return printTree(root, options.printFormat)
	}

	if len(arguments) == 0 {
		return fmt.Errorf(errorDestinationRequired)
	}
	return syncTree(root, arguments[0], options, logger)
}

// applyConfigurationDefaults fills flags the user did not set from the
// configuration file defaults.
func applyConfigurationDefaults(command *cobra.Command, options *rootOptions, configuration config.Configuration) {
	if options.naming == "" && configuration.Defaults.Naming != "" {
		options.naming = configuration.Defaults.Naming
	}
	if options.method == "" && configuration.Defaults.Method != "" {
		options.method = configuration.Defaults.Method
	}
	if !command.Flags().Changed(concurrencyFlagName) && configuration.Defaults.Concurrency != nil {
		options.concurrency = *configuration.Defaults.Concurrency
	}
	if !command.Flags().Changed(includeSharedFlagName) && configuration.Defaults.IncludeShared != nil {
		options.includeShared = *configuration.Defaults.IncludeShared
	}
}

// loadTree builds the tree from the configured source: a YAML file, the
// user's personal projects, or the full group hierarchy.
func loadTree(options rootOptions, configuration config.Configuration, logger *zap.Logger) (*tree.Node, error) {
	if options.treeFilePath != "" {
		logger.Debug("loading tree from file", zap.String("file", options.treeFilePath))
		return tree.ImportYAMLFile(options.treeFilePath)
	}

	serverURL := configuration.ResolveServerURL(options.serverURL)
	if serverURL == "" {
		return nil, fmt.Errorf(errorServerURLRequired)
	}
	token := configuration.ResolveToken(options.token)
	if token == "" {
		return nil, fmt.Errorf(errorTokenRequired)
	}

	builderOptions, optionsError := buildBuilderOptions(options, token)
	if optionsError != nil {
		return nil, optionsError
	}

	client, clientError := gitlab.NewRESTClient(serverURL, token)
	if clientError != nil {
		return nil, clientError
	}
	builder := gitlab.NewBuilder(client, serverURL, builderOptions, logger)

	if options.userProjects {
		logger.Debug("loading user personal projects", zap.String("server", serverURL))
		return builder.BuildUserTree()
	}
	logger.Debug("loading projects tree", zap.String("server", serverURL))
	return builder.BuildTree()
}

func buildBuilderOptions(options rootOptions, token string) (gitlab.BuilderOptions, error) {
	builderOptions := gitlab.BuilderOptions{
		Token:             token,
		HideToken:         options.hideToken,
		IncludeShared:     options.includeShared,
		ProtectedBranches: options.protectedBranches,
		GroupSearch:       options.groupSearch,
	}
	if options.naming != "" {
		namingStrategy, namingError := gitlab.ParseNamingStrategy(options.naming)
		if namingError != nil {
			return gitlab.BuilderOptions{}, namingError
		}
		builderOptions.Naming = namingStrategy
	}
	if options.method != "" {
		cloneMethod, methodError := gitlab.ParseCloneMethod(options.method)
		if methodError != nil {
			return gitlab.BuilderOptions{}, methodError
		}
		builderOptions.Method = cloneMethod
	}
	archivedSelector, archivedError := parseArchivedSelector(options.archived)
	if archivedError != nil {
		return gitlab.BuilderOptions{}, archivedError
	}
	builderOptions.Archived = archivedSelector
	return builderOptions, nil
}

// parseArchivedSelector maps the archived handling mode to the optional
// project-listing filter: fetch everything, exclude archived, or archived
// only.
func parseArchivedSelector(value string) (*bool, error) {
	switch value {
	case archivedFetch, "":
		return nil, nil
	case archivedExclude:
		excluded := false
		return &excluded, nil
	case archivedOnly:
		only := true
		return &only, nil
	default:
		return nil, fmt.Errorf("invalid archived mode %q (expected fetch, exclude, or only)", value)
	}
}

func printTree(root *tree.Node, format string) error {
	switch format {
	case printFormatTree:
		return tree.RenderNative(os.Stdout, root)
	case printFormatYAML:
		return tree.WriteYAML(os.Stdout, root)
	case printFormatJSON:
		return tree.WriteJSON(os.Stdout, root)
	default:
		return fmt.Errorf("invalid print format %q (expected tree, yaml, or json)", format)
	}
}

// syncTree mirrors the tree under the destination directory, aborting on a
// user interrupt.
func syncTree(root *tree.Node, destination string, options rootOptions, logger *zap.Logger) error {
	interruptCtx, stopSignalHandling := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignalHandling()

	var progress gitsync.Sink
	if !options.noProgress {
		progress = gitsync.NewLogSink(logger)
	}
	engine := gitsync.NewEngine(gitsync.NewCommandVCS(), logger)
	return engine.Sync(interruptCtx, root, gitsync.Options{
		Destination: destination,
		Concurrency: options.concurrency,
		Recursive:   options.recursive,
		UseFetch:    options.useFetch,
		GitOptions:  options.gitOptions,
		Progress:    progress,
	})
}
