package domain

import (
	"sort"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/zerr"
)

// SelectVersion picks the highest version from versions that satisfies every
// constraint in constraints, using semantic-version ordering. An empty
// constraint list accepts any version. When pinned is non-empty only that
// exact version is ever considered, regardless of anything else advertised.
//
// It returns ErrUnsatisfiableVersion carrying the constraint chain when the
// intersection is empty.
func SelectVersion(versions []string, constraints []string, pinned string) (string, error) {
	if pinned != "" {
		for _, v := range versions {
			if v == pinned {
				return checkPinned(v, constraints)
			}
		}
		return "", zerr.With(zerr.Wrap(ErrUnsatisfiableVersion, "pinned version not advertised"), "pinned", pinned)
	}

	parsed, err := parseConstraints(constraints)
	if err != nil {
		return "", err
	}

	candidates := make([]*semver.Version, 0, len(versions))
	for _, raw := range versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue // Non-semver versions are never selectable.
		}
		candidates = append(candidates, v)
	}
	sort.Sort(sort.Reverse(semver.Collection(candidates)))

	for _, v := range candidates {
		if satisfiesAll(v, parsed) {
			return v.Original(), nil
		}
	}

	return "", zerr.With(ErrUnsatisfiableVersion, "constraints", constraintChain(constraints))
}

func checkPinned(version string, constraints []string) (string, error) {
	parsed, err := parseConstraints(constraints)
	if err != nil {
		return "", err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "pinned version is not semver"), "version", version)
	}
	if !satisfiesAll(v, parsed) {
		err := zerr.With(ErrUnsatisfiableVersion, "constraints", constraintChain(constraints))
		return "", zerr.With(err, "pinned", version)
	}
	return version, nil
}

func parseConstraints(constraints []string) ([]*semver.Constraints, error) {
	parsed := make([]*semver.Constraints, 0, len(constraints))
	for _, raw := range constraints {
		if raw == "" {
			continue
		}
		c, err := semver.NewConstraint(raw)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "malformed version constraint"), "constraint", raw)
		}
		parsed = append(parsed, c)
	}
	return parsed, nil
}

func satisfiesAll(v *semver.Version, constraints []*semver.Constraints) bool {
	for _, c := range constraints {
		if !c.Check(v) {
			return false
		}
	}
	return true
}

func constraintChain(constraints []string) string {
	chain := ""
	for _, c := range constraints {
		if c == "" {
			continue
		}
		if chain != "" {
			chain += " && "
		}
		chain += c
	}
	if chain == "" {
		chain = "*"
	}
	return chain
}
