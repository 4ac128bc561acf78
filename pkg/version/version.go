// Package version holds the build version of addonsync.
package version

// EmptyValue is what Version reads when the binary wasn't built by the
// release process, such as in unit tests.
const EmptyValue = "unreleased"

// Version is set at build time with
// `-ldflags "-X github.com/sidkik/addonsync/pkg/version.Version=<tag>"`.
var Version = EmptyValue

// IsRelease returns whether the binary was built with a release version.
func IsRelease() bool {
	return Version != EmptyValue
}
