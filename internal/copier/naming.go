// Package copier copies selected series into a destination tree, one folder per series.
package copier

import (
	"fmt"
	"strings"
)

// UnnamedFolder replaces folder names that are empty once sanitized.
const UnnamedFolder = "Unnamed"

// Policy selects how a series folder is named.
type Policy int

const (
	// PolicyOriginal uses the series description.
	PolicyOriginal Policy = iota
	// PolicyCustom uses one caller-supplied name for every selected series.
	PolicyCustom
	// PolicyPrefixed puts a caller-supplied prefix directly before the description.
	PolicyPrefixed
)

// String returns the policy name as accepted by ParsePolicy.
func (p Policy) String() string {
	switch p {
	case PolicyCustom:
		return "custom"
	case PolicyPrefixed:
		return "prefixed"
	default:
		return "original"
	}
}

// ParsePolicy parses a policy name. "prefix" is accepted for "prefixed"; "" means original.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "original":
		return PolicyOriginal, nil
	case "custom":
		return PolicyCustom, nil
	case "prefixed", "prefix":
		return PolicyPrefixed, nil
	default:
		return PolicyOriginal, fmt.Errorf("invalid naming policy: %s (valid: original, custom, prefixed)", s)
	}
}

// FolderName returns the unsanitized folder name for a series with the given description.
func (p Policy) FolderName(description, prefix, customName string) string {
	switch p {
	case PolicyCustom:
		return customName
	case PolicyPrefixed:
		return prefix + description
	default:
		return description
	}
}

// Sanitize makes name usable as a single path segment: surrounding whitespace is trimmed,
// the characters <>:"/\|?* and control characters become '_'. When nothing but such
// characters remains, or the name would be "." or "..", the result is UnnamedFolder.
func Sanitize(name string) string {
	name = strings.TrimSpace(name)
	kept := false
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		kept = true
		return r
	}, name)
	if !kept || name == "." || name == ".." {
		return UnnamedFolder
	}
	return name
}
