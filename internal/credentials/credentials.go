// Package credentials checks that signing credentials are available before a
// build is configured. Local credentials live in credentials.json at the project
// root; without that file the build service's stored credentials are used.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/ariel-frischer/easbuild/internal/log"
)

// FileName is the local credentials file at the project root.
const FileName = "credentials.json"

// Request identifies the project whose credentials are needed.
type Request struct {
	ProjectDir     string
	AccountName    string
	ProjectName    string
	BundleID       string
	NonInteractive bool
}

// Source ensures iOS signing credentials exist for a project.
type Source interface {
	EnsureIOS(ctx context.Context, req Request) error
}

// InvalidError reports an unusable credentials.json.
type InvalidError struct {
	Path   string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

type localFile struct {
	IOS *iosCredentials `json:"ios" validate:"required"`
}

type iosCredentials struct {
	ProvisioningProfilePath string      `json:"provisioningProfilePath" validate:"required"`
	DistributionCertificate certificate `json:"distributionCertificate"`
}

type certificate struct {
	Path     string `json:"path" validate:"required"`
	Password string `json:"password"`
}

// LocalSource validates credentials.json when present and otherwise defers to
// remotely stored credentials.
type LocalSource struct{}

var validate = validator.New()

// EnsureIOS implements Source.
func (LocalSource) EnsureIOS(ctx context.Context, req Request) error {
	logger := log.FromContext(ctx)
	path := filepath.Join(req.ProjectDir, FileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("using remote iOS credentials", "project", fmt.Sprintf("@%s/%s", req.AccountName, req.ProjectName))
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var creds localFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return &InvalidError{Path: path, Reason: "invalid JSON"}
	}
	if err := validate.Struct(&creds); err != nil {
		return &InvalidError{Path: path, Reason: "ios.provisioningProfilePath and ios.distributionCertificate.path are required"}
	}

	for _, rel := range []string{creds.IOS.ProvisioningProfilePath, creds.IOS.DistributionCertificate.Path} {
		p := rel
		if !filepath.IsAbs(p) {
			p = filepath.Join(req.ProjectDir, p)
		}
		if _, err := os.Stat(p); err != nil {
			return &InvalidError{Path: path, Reason: fmt.Sprintf("%s does not exist", rel)}
		}
	}

	logger.Info("using local iOS credentials", "path", path)
	return nil
}
