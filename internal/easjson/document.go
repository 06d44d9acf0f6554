// Package easjson reads and writes eas.json, the project-level build configuration.
// The document maps platform -> profile name -> profile body:
//
//	{
//	  "builds": {
//	    "android": { "release": { "workflow": "generic" } },
//	    "ios":     { "release": { "workflow": "generic" } }
//	  }
//	}
//
// Only the presence of "workflow" is checked here. Everything else in a profile is
// carried through untouched for the platform builders.
package easjson

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ariel-frischer/easbuild/internal/platform"
)

// FileName is the canonical configuration file name at the project root.
const FileName = "eas.json"

// Path returns the canonical eas.json location for projectDir.
func Path(projectDir string) string {
	return filepath.Join(projectDir, FileName)
}

// Workflow is the opaque workflow kind of a build profile.
type Workflow string

const (
	WorkflowGeneric Workflow = "generic"
	WorkflowManaged Workflow = "managed"
)

// DefaultWorkflow is used for profiles synthesized by EnsureMinimal.
const DefaultWorkflow = WorkflowGeneric

// Document is the parsed content of eas.json.
type Document struct {
	Builds Builds `koanf:"builds" json:"builds"`
}

// Builds holds the per-platform profile maps.
type Builds struct {
	Android map[string]Profile `koanf:"android" json:"android,omitempty" validate:"dive"`
	IOS     map[string]Profile `koanf:"ios" json:"ios,omitempty" validate:"dive"`
}

// Profile is a single named build profile.
type Profile struct {
	Workflow Workflow `koanf:"workflow" json:"workflow" validate:"required"`
	// Extra keeps every other key of the profile body.
	Extra map[string]any `koanf:",remain" json:"-"`
}

// MarshalJSON flattens Extra next to workflow so keys come out sorted.
func (p Profile) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+1)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["workflow"] = p.Workflow
	return json.Marshal(out)
}

// profiles returns the profile map for a platform.
func (d *Document) profiles(p platform.Platform) map[string]Profile {
	switch p {
	case platform.Android:
		return d.Builds.Android
	case platform.IOS:
		return d.Builds.IOS
	default:
		return nil
	}
}

// ProfileNames lists the profile names defined for a platform, sorted.
func (d *Document) ProfileNames(p platform.Platform) []string {
	m := d.profiles(p)
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultDocument builds the minimal document written by EnsureMinimal: one profile
// per platform, both named profileName and both using the same workflow.
func DefaultDocument(profileName string, workflow Workflow) *Document {
	if workflow == "" {
		workflow = DefaultWorkflow
	}
	return &Document{
		Builds: Builds{
			Android: map[string]Profile{profileName: {Workflow: workflow}},
			IOS:     map[string]Profile{profileName: {Workflow: workflow}},
		},
	}
}

// Config is a build profile resolved for every platform of a selector.
// Profiles for platforms outside the selector are nil.
type Config struct {
	ProfileName string
	Android     *Profile
	IOS         *Profile
}

// Profile returns the resolved profile for p, or nil when p was not selected.
func (c *Config) Profile(p platform.Platform) *Profile {
	switch p {
	case platform.Android:
		return c.Android
	case platform.IOS:
		return c.IOS
	default:
		return nil
	}
}

// Resolve picks profileName for every platform in sel. It fails with a
// *ProfileNotFoundError on the first selected platform lacking the profile.
func Resolve(doc *Document, sel platform.Selector, profileName string) (*Config, error) {
	cfg := &Config{ProfileName: profileName}
	for _, p := range sel.Platforms() {
		prof, ok := doc.profiles(p)[profileName]
		if !ok {
			return nil, &ProfileNotFoundError{
				Platform:  p,
				Profile:   profileName,
				Available: doc.ProfileNames(p),
			}
		}
		switch p {
		case platform.Android:
			cfg.Android = &prof
		case platform.IOS:
			cfg.IOS = &prof
		}
	}
	return cfg, nil
}

// String renders the profile for log output.
func (p Profile) String() string {
	return fmt.Sprintf("workflow=%s", p.Workflow)
}
