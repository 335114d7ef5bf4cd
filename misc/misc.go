// Package misc keeps program identification values, set at link time.
package misc

const appName = "wtpl"

var (
	version = "dev"
	gitHash = "unknown"
)

// GetAppName returns short program name used for logs, reports and temporary files.
func GetAppName() string {
	return appName
}

// GetVersion returns program version, normally injected with -ldflags "-X wtpl/misc.version=...".
func GetVersion() string {
	return version
}

// GetGitHash returns source revision program was built from.
func GetGitHash() string {
	return gitHash
}
