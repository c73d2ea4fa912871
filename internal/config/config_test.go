package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigurationFile(testingHandle *testing.T, directory string, contents string) string {
	testingHandle.Helper()
	path := filepath.Join(directory, ConfigFileName)
	if writeError := os.WriteFile(path, []byte(contents), 0o600); writeError != nil {
		testingHandle.Fatalf("cannot write configuration file: %v", writeError)
	}
	return path
}

// TestLoadConfigurationMergesGlobalAndLocal verifies that a local file
// overrides the global one field by field instead of replacing it wholesale.
func TestLoadConfigurationMergesGlobalAndLocal(testingHandle *testing.T) {
	homeDirectory := testingHandle.TempDir()
	workingDirectory := testingHandle.TempDir()
	testingHandle.Setenv("HOME", homeDirectory)

	writeConfigurationFile(testingHandle, homeDirectory, `
gitlab:
  url: https://gitlab.example.com
  token: global-token
defaults:
  naming: name
  concurrency: 4
`)
	writeConfigurationFile(testingHandle, workingDirectory, `
gitlab:
  token: local-token
defaults:
  method: http
  include_shared: false
`)

	configuration, loadError := LoadConfiguration(LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testingHandle.Fatalf("LoadConfiguration failed: %v", loadError)
	}

	if configuration.GitLab.URL != "https://gitlab.example.com" {
		testingHandle.Fatalf("global url lost in merge: %q", configuration.GitLab.URL)
	}
	if configuration.GitLab.Token != "local-token" {
		testingHandle.Fatalf("local token did not override: %q", configuration.GitLab.Token)
	}
	if configuration.Defaults.Naming != "name" || configuration.Defaults.Method != "http" {
		testingHandle.Fatalf("defaults merged incorrectly: %+v", configuration.Defaults)
	}
	if configuration.Defaults.Concurrency == nil || *configuration.Defaults.Concurrency != 4 {
		testingHandle.Fatalf("global concurrency lost in merge: %v", configuration.Defaults.Concurrency)
	}
	if configuration.Defaults.IncludeShared == nil || *configuration.Defaults.IncludeShared {
		testingHandle.Fatalf("local include_shared not applied: %v", configuration.Defaults.IncludeShared)
	}
}

// TestLoadConfigurationMissingFilesIsNotAnError verifies startup succeeds
// with no configuration files anywhere.
func TestLoadConfigurationMissingFilesIsNotAnError(testingHandle *testing.T) {
	testingHandle.Setenv("HOME", testingHandle.TempDir())

	configuration, loadError := LoadConfiguration(LoadOptions{WorkingDirectory: testingHandle.TempDir()})
	if loadError != nil {
		testingHandle.Fatalf("missing configuration files must not fail: %v", loadError)
	}
	if configuration.GitLab.URL != "" || configuration.GitLab.Token != "" {
		testingHandle.Fatalf("expected an empty configuration, got %+v", configuration)
	}
}

// TestLoadConfigurationExplicitFile verifies an explicit path replaces the
// working-directory lookup, resolved relative to the working directory when
// not absolute.
func TestLoadConfigurationExplicitFile(testingHandle *testing.T) {
	testingHandle.Setenv("HOME", testingHandle.TempDir())
	workingDirectory := testingHandle.TempDir()

	explicitPath := filepath.Join(workingDirectory, "custom.yaml")
	if writeError := os.WriteFile(explicitPath, []byte("gitlab:\n  url: https://custom.example.com\n"), 0o600); writeError != nil {
		testingHandle.Fatalf("cannot write configuration file: %v", writeError)
	}

	configuration, loadError := LoadConfiguration(LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: "custom.yaml",
	})
	if loadError != nil {
		testingHandle.Fatalf("LoadConfiguration failed: %v", loadError)
	}
	if configuration.GitLab.URL != "https://custom.example.com" {
		testingHandle.Fatalf("explicit file not loaded: %+v", configuration)
	}
}

// TestLoadConfigurationRejectsMalformedFile verifies a syntactically broken
// file surfaces as an error instead of an empty configuration.
func TestLoadConfigurationRejectsMalformedFile(testingHandle *testing.T) {
	testingHandle.Setenv("HOME", testingHandle.TempDir())
	workingDirectory := testingHandle.TempDir()
	writeConfigurationFile(testingHandle, workingDirectory, "gitlab: [unclosed")

	if _, loadError := LoadConfiguration(LoadOptions{WorkingDirectory: workingDirectory}); loadError == nil {
		testingHandle.Fatalf("expected an error for a malformed configuration file")
	}
}

// TestResolvePrecedence verifies flag over file over environment for the
// server URL and the token.
func TestResolvePrecedence(testingHandle *testing.T) {
	testingHandle.Setenv(ServerURLEnvironmentVariable, "https://env.example.com")
	testingHandle.Setenv(TokenEnvironmentVariable, "env-token")

	configuration := Configuration{GitLab: GitLabConfiguration{
		URL:   "https://file.example.com",
		Token: "file-token",
	}}

	if resolved := configuration.ResolveServerURL("https://flag.example.com"); resolved != "https://flag.example.com" {
		testingHandle.Fatalf("flag must win: %q", resolved)
	}
	if resolved := configuration.ResolveServerURL(""); resolved != "https://file.example.com" {
		testingHandle.Fatalf("file must beat environment: %q", resolved)
	}
	if resolved := (Configuration{}).ResolveServerURL(""); resolved != "https://env.example.com" {
		testingHandle.Fatalf("environment fallback missing: %q", resolved)
	}
	if resolved := (Configuration{}).ResolveToken(""); resolved != "env-token" {
		testingHandle.Fatalf("token environment fallback missing: %q", resolved)
	}
}
