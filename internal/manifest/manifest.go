// Package manifest reads the fields of a project's app.json that the build
// initialization uses. The manifest may be wrapped in an "expo" key or be a bare
// object.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// FileName is the manifest file at the project root.
const FileName = "app.json"

// Manifest holds the consumed manifest fields.
type Manifest struct {
	Name    string      `json:"name"`
	Slug    string      `json:"slug" validate:"required"`
	Owner   string      `json:"owner,omitempty"`
	Version string      `json:"version,omitempty"`
	IOS     IOSInfo     `json:"ios,omitempty"`
	Android AndroidInfo `json:"android,omitempty"`
}

// IOSInfo holds iOS-specific manifest fields.
type IOSInfo struct {
	BundleIdentifier string `json:"bundleIdentifier,omitempty"`
}

// AndroidInfo holds Android-specific manifest fields.
type AndroidInfo struct {
	Package string `json:"package,omitempty"`
}

// NotFoundError reports a missing manifest.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project manifest not found at %s", e.Path)
}

// InvalidError reports a manifest that cannot be used.
type InvalidError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("project manifest %s is invalid: %s", e.Path, e.Reason)
}

func (e *InvalidError) Unwrap() error {
	return e.Err
}

// Reader loads a project manifest.
type Reader interface {
	Read(projectDir string) (*Manifest, error)
}

// FileReader reads app.json from disk.
type FileReader struct{}

var validate = validator.New()

// Read implements Reader.
func (FileReader) Read(projectDir string) (*Manifest, error) {
	path := filepath.Join(projectDir, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return Parse(data, path)
}

// Parse decodes manifest JSON. path is only used in error messages.
func Parse(data []byte, path string) (*Manifest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &InvalidError{Path: path, Reason: "invalid JSON", Err: err}
	}

	body := data
	if expo, ok := raw["expo"]; ok {
		body = expo
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, &InvalidError{Path: path, Reason: "unexpected structure", Err: err}
	}

	if err := validate.Struct(&m); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Field() == "Slug" {
			return nil, &InvalidError{Path: path, Reason: `"slug" is required`, Err: err}
		}
		return nil, &InvalidError{Path: path, Reason: err.Error(), Err: err}
	}

	return &m, nil
}
