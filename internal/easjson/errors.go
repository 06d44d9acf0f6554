package easjson

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ariel-frischer/easbuild/internal/platform"
)

// ErrNotFound is returned when eas.json does not exist in the project directory.
var ErrNotFound = errors.New(FileName + " not found")

// ProfileNotFoundError reports a build profile missing for a required platform.
type ProfileNotFoundError struct {
	Platform  platform.Platform
	Profile   string
	Available []string
}

func (e *ProfileNotFoundError) Error() string {
	msg := fmt.Sprintf("there is no profile named %q for platform %s", e.Profile, e.Platform)
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (available: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

// MalformedConfigError reports an eas.json that cannot be parsed or fails
// structural validation.
type MalformedConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedConfigError) Error() string {
	return fmt.Sprintf("%s is malformed: %s", e.Path, e.Reason)
}

func (e *MalformedConfigError) Unwrap() error {
	return e.Err
}
