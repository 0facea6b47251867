package server

import (
	"github.com/Masterminds/semver/v3"
)

// Version is the proxy's release version.
const Version = "0.1.0"

// ApiVersion is the version of the /api contract.
const ApiVersion = "1.0.0"

// apiConstraint accepts clients built for the same major API version.
var apiConstraint *semver.Constraints

func init() {
	var err error
	apiConstraint, err = semver.NewConstraint("^" + ApiVersion)
	if err != nil {
		panic(err)
	}
}

// IsApiVersionCompatible reports whether a client speaking version can use
// this server. Invalid version strings are never compatible.
func IsApiVersionCompatible(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return apiConstraint.Check(v)
}
