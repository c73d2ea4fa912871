package cli

import (
	"testing"

	"github.com/glabtree/glabtree/internal/gitlab"
)

// TestParseArchivedSelector verifies the archived handling modes map to the
// optional listing filter.
func TestParseArchivedSelector(testingHandle *testing.T) {
	if selector, parseError := parseArchivedSelector(archivedFetch); parseError != nil || selector != nil {
		testingHandle.Fatalf("fetch mode must disable the filter: %v %v", selector, parseError)
	}
	if selector, parseError := parseArchivedSelector(archivedExclude); parseError != nil || selector == nil || *selector {
		testingHandle.Fatalf("exclude mode must filter to active projects: %v %v", selector, parseError)
	}
	if selector, parseError := parseArchivedSelector(archivedOnly); parseError != nil || selector == nil || !*selector {
		testingHandle.Fatalf("only mode must filter to archived projects: %v %v", selector, parseError)
	}
	if _, parseError := parseArchivedSelector("sometimes"); parseError == nil {
		testingHandle.Fatalf("expected an error for an unknown archived mode")
	}
}

// TestBuildBuilderOptions verifies flag values translate into builder
// options and that invalid enumerations are rejected.
func TestBuildBuilderOptions(testingHandle *testing.T) {
	options := rootOptions{
		naming:            "branch",
		method:            "http",
		hideToken:         true,
		includeShared:     true,
		protectedBranches: true,
		groupSearch:       "team",
		archived:          archivedExclude,
	}

	builderOptions, buildError := buildBuilderOptions(options, "secret")
	if buildError != nil {
		testingHandle.Fatalf("buildBuilderOptions failed: %v", buildError)
	}
	if builderOptions.Naming != gitlab.NamingBranch || builderOptions.Method != gitlab.CloneHTTP {
		testingHandle.Fatalf("enumerations not applied: %+v", builderOptions)
	}
	if builderOptions.Token != "secret" || !builderOptions.HideToken {
		testingHandle.Fatalf("token settings not applied: %+v", builderOptions)
	}
	if !builderOptions.IncludeShared || !builderOptions.ProtectedBranches || builderOptions.GroupSearch != "team" {
		testingHandle.Fatalf("listing settings not applied: %+v", builderOptions)
	}
	if builderOptions.Archived == nil || *builderOptions.Archived {
		testingHandle.Fatalf("archived selector not applied: %v", builderOptions.Archived)
	}

	if _, invalidError := buildBuilderOptions(rootOptions{naming: "uuid"}, ""); invalidError == nil {
		testingHandle.Fatalf("expected an error for an invalid naming strategy")
	}
	if _, invalidError := buildBuilderOptions(rootOptions{method: "ftp"}, ""); invalidError == nil {
		testingHandle.Fatalf("expected an error for an invalid clone method")
	}
}
