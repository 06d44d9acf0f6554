// Package platform defines the build platforms easbuild knows about and the
// selector accepted by the --platform flag.
package platform

import (
	"fmt"
	"strings"
)

// Platform is a single build target.
type Platform string

const (
	Android Platform = "android"
	IOS     Platform = "ios"
)

// String returns the platform identifier.
func (p Platform) String() string {
	return string(p)
}

// DisplayName returns the human-readable platform name.
func (p Platform) DisplayName() string {
	switch p {
	case Android:
		return "Android"
	case IOS:
		return "iOS"
	default:
		return string(p)
	}
}

// Selector chooses which platforms a command acts on.
type Selector string

const (
	SelectAndroid Selector = "android"
	SelectIOS     Selector = "ios"
	SelectAll     Selector = "all"
)

// Selectors lists valid selector values in the order they are presented to users.
func Selectors() []Selector {
	return []Selector{SelectAndroid, SelectIOS, SelectAll}
}

// InvalidSelectorError is returned by ParseSelector for unknown values.
type InvalidSelectorError struct {
	Value string
}

func (e *InvalidSelectorError) Error() string {
	return fmt.Sprintf("-p/--platform needs a valid platform: %s (got %q)", strings.Join(SelectorNames(), ", "), e.Value)
}

// SelectorNames returns the valid selector values as strings.
func SelectorNames() []string {
	sels := Selectors()
	names := make([]string, len(sels))
	for i, s := range sels {
		names[i] = string(s)
	}
	return names
}

// ParseSelector validates a --platform value. The empty string selects all platforms.
// Matching is exact; "Android" is rejected.
func ParseSelector(value string) (Selector, error) {
	if value == "" {
		return SelectAll, nil
	}
	for _, s := range Selectors() {
		if string(s) == value {
			return s, nil
		}
	}
	return "", &InvalidSelectorError{Value: value}
}

// Platforms expands the selector into concrete platforms. Android always precedes iOS.
func (s Selector) Platforms() []Platform {
	switch s {
	case SelectAndroid:
		return []Platform{Android}
	case SelectIOS:
		return []Platform{IOS}
	case SelectAll:
		return []Platform{Android, IOS}
	default:
		return nil
	}
}

// Includes reports whether p is selected.
func (s Selector) Includes(p Platform) bool {
	for _, sp := range s.Platforms() {
		if sp == p {
			return true
		}
	}
	return false
}

// String returns the selector value.
func (s Selector) String() string {
	return string(s)
}
