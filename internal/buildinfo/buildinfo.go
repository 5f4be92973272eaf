package buildinfo

import "fmt"

// Release components of this build
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// betaMinor marks pre-releases of the next major version, with the
// patch number counting betas from zero
const betaMinor = 99

// Version returns the semantic version of this build
func Version() string {
	return format(Major, Minor, Patch)
}

func format(major, minor, patch int) string {
	if minor != betaMinor {
		return fmt.Sprintf("%d.%d.%d", major, minor, patch)
	}
	return fmt.Sprintf("%d.0.0-beta.%d", major+1, patch+1)
}
