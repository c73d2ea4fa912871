package utils

import "runtime/debug"

const unknownVersion = "unknown"

// GetApplicationVersion returns the application version recorded in the
// build information, or "unknown" for development builds.
func GetApplicationVersion() string {
	buildInformation, buildInformationAvailable := debug.ReadBuildInfo()
	if buildInformationAvailable && buildInformation.Main.Version != "" && buildInformation.Main.Version != "(devel)" {
		return buildInformation.Main.Version
	}
	return unknownVersion
}
