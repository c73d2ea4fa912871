// Package config loads glabtree configuration from YAML files and the
// environment. A global file in the user's home directory is merged with a
// local file in the working directory; command-line flags override both.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFileName is the name of both the global and the local configuration
// file.
const ConfigFileName = ".glabtree.yaml"

// Environment variables consulted when neither flags nor files provide a
// value.
const (
	ServerURLEnvironmentVariable = "GITLAB_URL"
	TokenEnvironmentVariable     = "GITLAB_TOKEN"
)

// LoadOptions controls how configuration files are discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// Configuration holds file-provided settings.
type Configuration struct {
	GitLab   GitLabConfiguration   `mapstructure:"gitlab"`
	Defaults DefaultsConfiguration `mapstructure:"defaults"`
}

// GitLabConfiguration identifies the server and credentials.
type GitLabConfiguration struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// DefaultsConfiguration provides fallbacks for command-line flags.
type DefaultsConfiguration struct {
	Naming        string `mapstructure:"naming"`
	Method        string `mapstructure:"method"`
	Concurrency   *int   `mapstructure:"concurrency"`
	IncludeShared *bool  `mapstructure:"include_shared"`
}

// LoadConfiguration loads and merges the global and local configuration
// files. Missing files are not an error.
func LoadConfiguration(options LoadOptions) (Configuration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return Configuration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged Configuration
	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalConfiguration, loadError := loadConfigurationFromPath(filepath.Join(homeDirectory, ConfigFileName))
		if loadError != nil {
			return Configuration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath := filepath.Join(workingDirectory, ConfigFileName)
	if options.ExplicitFilePath != "" {
		localPath = options.ExplicitFilePath
		if !filepath.IsAbs(localPath) {
			localPath = filepath.Join(workingDirectory, localPath)
		}
	}
	localConfiguration, loadError := loadConfigurationFromPath(localPath)
	if loadError != nil {
		return Configuration{}, loadError
	}
	return merged.Merge(localConfiguration), nil
}

func loadConfigurationFromPath(path string) (Configuration, error) {
	fileInformation, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return Configuration{}, nil
		}
		return Configuration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if fileInformation.IsDir() {
		return Configuration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readError := reader.ReadInConfig(); readError != nil {
		return Configuration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var configuration Configuration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return Configuration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined
// configuration.
func (configuration Configuration) Merge(override Configuration) Configuration {
	result := configuration
	if override.GitLab.URL != "" {
		result.GitLab.URL = override.GitLab.URL
	}
	if override.GitLab.Token != "" {
		result.GitLab.Token = override.GitLab.Token
	}
	if override.Defaults.Naming != "" {
		result.Defaults.Naming = override.Defaults.Naming
	}
	if override.Defaults.Method != "" {
		result.Defaults.Method = override.Defaults.Method
	}
	if override.Defaults.Concurrency != nil {
		result.Defaults.Concurrency = cloneInt(override.Defaults.Concurrency)
	}
	if override.Defaults.IncludeShared != nil {
		result.Defaults.IncludeShared = cloneBool(override.Defaults.IncludeShared)
	}
	return result
}

// ResolveServerURL returns the first non-empty of flag value, file value,
// and the GITLAB_URL environment variable.
func (configuration Configuration) ResolveServerURL(flagValue string) string {
	return firstNonEmpty(flagValue, configuration.GitLab.URL, os.Getenv(ServerURLEnvironmentVariable))
}

// ResolveToken returns the first non-empty of flag value, file value, and
// the GITLAB_TOKEN environment variable.
func (configuration Configuration) ResolveToken(flagValue string) string {
	return firstNonEmpty(flagValue, configuration.GitLab.Token, os.Getenv(TokenEnvironmentVariable))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
