package easjson

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ariel-frischer/easbuild/internal/platform"
)

// keyDelim separates koanf key paths. Profile names may contain dots.
const keyDelim = "\x1f"

// Reader loads build profiles from a project's eas.json.
type Reader struct {
	projectDir string
	selector   platform.Selector
}

// NewReader creates a Reader scoped to the platforms of sel.
func NewReader(projectDir string, sel platform.Selector) *Reader {
	return &Reader{projectDir: projectDir, selector: sel}
}

// Read loads eas.json and resolves profileName for each selected platform.
// It returns ErrNotFound (wrapped) when the file is absent, a *MalformedConfigError
// when the document is invalid and a *ProfileNotFoundError when the profile is
// missing for a required platform. Read never modifies the file.
func (r *Reader) Read(profileName string) (*Config, error) {
	doc, err := r.ReadDocument()
	if err != nil {
		return nil, err
	}
	return Resolve(doc, r.selector, profileName)
}

// ReadDocument loads and validates the whole document.
func (r *Reader) ReadDocument() (*Document, error) {
	path := Path(r.projectDir)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, &MalformedConfigError{Path: path, Reason: "is a directory"}
	}

	k := koanf.New(keyDelim)
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return nil, &MalformedConfigError{Path: path, Reason: "invalid JSON", Err: err}
	}

	var doc Document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, &MalformedConfigError{Path: path, Reason: "unexpected structure", Err: err}
	}

	if err := validateDocument(&doc); err != nil {
		return nil, &MalformedConfigError{Path: path, Reason: err.Error(), Err: err}
	}

	return &doc, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateDocument checks the structural rules of eas.json.
func validateDocument(doc *Document) error {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fieldErr := validationErrors[0]
		return fmt.Errorf("%s %s", fieldPath(fieldErr.Namespace()), formatValidationError(fieldErr))
	}
	return err
}

// fieldPath turns "Document.builds.android[release].workflow" into
// "builds.android.release.workflow".
func fieldPath(namespace string) string {
	namespace = strings.TrimPrefix(namespace, "Document.")
	namespace = strings.ReplaceAll(namespace, "[", ".")
	return strings.ReplaceAll(namespace, "]", "")
}

func formatValidationError(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	default:
		return fmt.Sprintf("failed validation: %s", fieldErr.Tag())
	}
}
