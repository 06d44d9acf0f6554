package builder

import (
	"errors"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ariel-frischer/easbuild/internal/buildctx"
	"github.com/ariel-frischer/easbuild/internal/easjson"
	"github.com/ariel-frischer/easbuild/internal/git"
	"github.com/ariel-frischer/easbuild/internal/platform"
)

// Job describes one build for the remote build service.
type Job struct {
	ID       string            `json:"id"`
	Platform platform.Platform `json:"platform"`
	Workflow easjson.Workflow  `json:"workflow"`
	Profile  string            `json:"profile"`
	// ArchiveURL points at the uploaded project tarball.
	ArchiveURL string `json:"archiveUrl"`
	// ProjectRootDirectory is the project path relative to the repository root.
	ProjectRootDirectory string         `json:"projectRootDirectory"`
	AccountName          string         `json:"accountName"`
	ProjectName          string         `json:"projectName"`
	Config               map[string]any `json:"config,omitempty"`
}

// ErrMissingArchiveURL is returned by PrepareJob without an archive location.
var ErrMissingArchiveURL = errors.New("archive URL is required")

func newJob(bctx *buildctx.Context, p platform.Platform, archiveURL string) (*Job, error) {
	if archiveURL == "" {
		return nil, ErrMissingArchiveURL
	}
	prof, ok := bctx.Profile(p)
	if !ok {
		return nil, &StepError{Platform: p, Phase: PhaseConfigure, Err: errors.New("platform not selected")}
	}
	return &Job{
		ID:                   uuid.NewString(),
		Platform:             p,
		Workflow:             prof.Workflow,
		Profile:              bctx.ProfileName(),
		ArchiveURL:           archiveURL,
		ProjectRootDirectory: projectRootDirectory(bctx.ProjectDir()),
		AccountName:          bctx.AccountName(),
		ProjectName:          bctx.ProjectName(),
		Config:               prof.Extra,
	}, nil
}

// projectRootDirectory returns projectDir relative to its repository root, or
// "." when that cannot be determined.
func projectRootDirectory(projectDir string) string {
	root, err := git.RepositoryRoot(projectDir)
	if err != nil {
		return "."
	}
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return "."
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "."
	}
	return filepath.ToSlash(rel)
}
