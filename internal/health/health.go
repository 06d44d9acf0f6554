// Package health checks that a project is ready for `easbuild build init` and
// produces the report shown by `easbuild doctor`.
package health

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariel-frischer/easbuild/internal/credentials"
	"github.com/ariel-frischer/easbuild/internal/easjson"
	"github.com/ariel-frischer/easbuild/internal/git"
	"github.com/ariel-frischer/easbuild/internal/identity"
	"github.com/ariel-frischer/easbuild/internal/log"
	"github.com/ariel-frischer/easbuild/internal/manifest"
	"github.com/ariel-frischer/easbuild/internal/platform"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
	// Warning marks a failed check that does not block build init.
	Warning bool
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

func (r *HealthReport) add(c CheckResult) {
	r.Checks = append(r.Checks, c)
	if !c.Passed && !c.Warning {
		r.Passed = false
	}
}

// Options selects what RunHealthChecks inspects.
type Options struct {
	ProjectDir string
	Identity   identity.Provider
}

// RunHealthChecks runs all health checks and returns a report. Checks never
// prompt and never modify the project.
func RunHealthChecks(ctx context.Context, opts Options) *HealthReport {
	report := &HealthReport{Passed: true}

	report.add(CheckRepository(opts.ProjectDir))
	report.add(CheckManifest(opts.ProjectDir))
	report.add(CheckBuildConfig(opts.ProjectDir))
	if opts.Identity != nil {
		report.add(CheckSession(ctx, opts.Identity))
	}
	report.add(CheckCredentials(ctx, opts.ProjectDir))

	return report
}

// CheckRepository checks that the project is tracked by git. A dirty tree is
// only a warning: build init offers to commit it.
func CheckRepository(dir string) CheckResult {
	const name = "Git repository"

	state, changes, err := git.Status(dir)
	if err != nil {
		if errors.Is(err, git.ErrNotRepository) {
			return CheckResult{Name: name, Message: "project is not inside a git repository"}
		}
		return CheckResult{Name: name, Message: err.Error()}
	}
	if state == git.Dirty {
		return CheckResult{
			Name:    name,
			Warning: true,
			Message: fmt.Sprintf("%d uncommitted change(s)", len(changes)),
		}
	}
	return CheckResult{Name: name, Passed: true, Message: "working tree clean"}
}

// CheckManifest checks that app.json exists and defines a slug.
func CheckManifest(dir string) CheckResult {
	const name = "App manifest"

	m, err := manifest.FileReader{}.Read(dir)
	if err != nil {
		return CheckResult{Name: name, Message: err.Error()}
	}
	return CheckResult{Name: name, Passed: true, Message: fmt.Sprintf("slug %q", m.Slug)}
}

// CheckBuildConfig checks that eas.json, when present, is valid. A missing file
// is a warning since build init creates it.
func CheckBuildConfig(dir string) CheckResult {
	const name = "Build config"

	doc, err := easjson.NewReader(dir, platform.SelectAll).ReadDocument()
	if err != nil {
		if errors.Is(err, easjson.ErrNotFound) {
			return CheckResult{Name: name, Warning: true, Message: "eas.json not found; build init will create it"}
		}
		return CheckResult{Name: name, Message: err.Error()}
	}

	var parts []string
	for _, p := range platform.SelectAll.Platforms() {
		names := doc.ProfileNames(p)
		if len(names) == 0 {
			names = []string{"none"}
		}
		parts = append(parts, fmt.Sprintf("%s profiles: %s", p.DisplayName(), strings.Join(names, ", ")))
	}
	return CheckResult{Name: name, Passed: true, Message: strings.Join(parts, "; ")}
}

// CheckSession checks for a session without prompting.
func CheckSession(ctx context.Context, p identity.Provider) CheckResult {
	const name = "Session"

	id, err := p.EnsureLoggedIn(ctx, true)
	if err != nil {
		return CheckResult{Name: name, Message: err.Error()}
	}
	return CheckResult{Name: name, Passed: true, Message: "logged in as " + id.Username}
}

// CheckCredentials validates a local credentials.json. A missing file passes.
func CheckCredentials(ctx context.Context, dir string) CheckResult {
	const name = "iOS credentials"

	ctx = log.IntoContext(ctx, log.Discard())
	err := credentials.LocalSource{}.EnsureIOS(ctx, credentials.Request{ProjectDir: dir, NonInteractive: true})
	if err != nil {
		return CheckResult{Name: name, Message: err.Error()}
	}
	return CheckResult{Name: name, Passed: true, Message: "ok"}
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var sb strings.Builder
	for _, check := range report.Checks {
		mark := "✓"
		switch {
		case check.Passed:
		case check.Warning:
			mark = "!"
		default:
			mark = "✗"
		}
		fmt.Fprintf(&sb, "%s %s: %s\n", mark, check.Name, check.Message)
	}
	return sb.String()
}
