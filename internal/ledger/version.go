// Package ledger persists published bundle versions in a relational
// store and mirrors the table to a portable SQL dump after every
// commit. It also owns the version-increment state machine used by the
// publish workflow.
package ledger

import (
	"fmt"
	"regexp"
	"strconv"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
)

// Version is a semantic version with each part bounded to three
// decimal digits.
type Version struct {
	Major int
	Minor int
	Patch int
}

// String renders the canonical major.minor.patch form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// versionRe accepts one to three dotted parts of 1-3 digits each.
var versionRe = regexp.MustCompile(`^(\d{1,3})(\.\d{1,3})?(\.\d{1,3})?$`)

// ParseVersion parses an explicit version string. Missing trailing
// parts default to zero, so "1" normalizes to 1.0.0.
func ParseVersion(s string) (Version, error) {
	groups := versionRe.FindStringSubmatch(s)
	if groups == nil {
		return Version{}, bunderr.Validation(
			"invalid version %q; use the format major.minor.patch (e.g. 3.5.0)", s)
	}
	part := func(g string) int {
		if g == "" {
			return 0
		}
		n, _ := strconv.Atoi(g[1:]) // strip the leading dot
		return n
	}
	major, _ := strconv.Atoi(groups[1])
	return Version{Major: major, Minor: part(groups[2]), Patch: part(groups[3])}, nil
}

// Selection carries the version-increment request from the CLI.
// Exactly one field may be set; zero set falls back to prompting.
type Selection struct {
	Explicit string
	Major    bool
	Minor    bool
	Patch    bool
}

// count returns how many selection modes are active.
func (s Selection) count() int {
	n := 0
	if s.Explicit != "" {
		n++
	}
	for _, b := range []bool{s.Major, s.Minor, s.Patch} {
		if b {
			n++
		}
	}
	return n
}

// Resolve runs the version state machine: given the previous latest
// version, a bump mode yields the next version, an explicit string is
// parsed and normalized, and no selection at all defers to prompt
// (shown the previous version). More than one active mode is a
// validation error.
func (s Selection) Resolve(previous Version, prompt func(previous Version) (string, error)) (Version, error) {
	switch n := s.count(); {
	case n > 1:
		return Version{}, bunderr.Validation(
			"specify only one of --version, --major, --minor or --patch")
	case n == 0:
		if prompt == nil {
			return Version{}, bunderr.Validation(
				"no version selected and no interactive prompt available")
		}
		explicit, err := prompt(previous)
		if err != nil {
			return Version{}, err
		}
		return ParseVersion(explicit)
	}

	switch {
	case s.Major:
		return Version{Major: previous.Major + 1}, nil
	case s.Minor:
		return Version{Major: previous.Major, Minor: previous.Minor + 1}, nil
	case s.Patch:
		return Version{Major: previous.Major, Minor: previous.Minor, Patch: previous.Patch + 1}, nil
	default:
		return ParseVersion(s.Explicit)
	}
}
