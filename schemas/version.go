package schema

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is the current schema version.
// Deployment descriptions declare their version to indicate compatibility.
const SchemaVersion = "1.2.0"

// IsCompatible checks if a description's version is compatible with SchemaVersion.
// Uses caret constraint (^) for semantic version compatibility: any 1.x release
// at or above SchemaVersion is accepted, pre-releases are not.
//
// Returns false (with no error) if versions are incompatible.
// Returns an error if either version string is invalid.
func IsCompatible(userVersion string) (bool, error) {
	constraint, err := semver.NewConstraint("^" + SchemaVersion)
	if err != nil {
		return false, fmt.Errorf("invalid schema version: %w", err)
	}

	v, err := semver.NewVersion(userVersion)
	if err != nil {
		return false, fmt.Errorf("invalid description version %q: %w", userVersion, err)
	}

	return constraint.Check(v), nil
}
