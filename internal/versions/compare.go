package versions

import "github.com/Masterminds/semver/v3"

// AtLeast reports whether the server version reaches minimum. Pre-release and
// build suffixes are ignored, so 8.19.0-SNAPSHOT counts as 8.19.0. A version
// that does not parse is never at least minimum.
func AtLeast(version, minimum string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	m, err := semver.NewVersion(minimum)
	if err != nil {
		return false
	}

	release := semver.New(v.Major(), v.Minor(), v.Patch(), "", "")
	return !release.LessThan(m)
}
