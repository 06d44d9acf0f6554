package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/easbuild/internal/buildctx"
	"github.com/ariel-frischer/easbuild/internal/easjson"
	"github.com/ariel-frischer/easbuild/internal/log"
	"github.com/ariel-frischer/easbuild/internal/platform"
)

const (
	easBuildGradle = "eas-build.gradle"
	applyEASBuild  = `apply from: "./eas-build.gradle"`
)

const easBuildGradleContent = `// Build integration with easbuild. Signing values come from credentials.json
// when it exists and are otherwise injected by the build service.

def credentialsJson = rootProject.file("../credentials.json")

android {
  signingConfigs {
    release {
      if (credentialsJson.exists()) {
        def credentials = new groovy.json.JsonSlurper().parse(credentialsJson)
        storeFile rootProject.file("../" + credentials.android.keystore.keystorePath)
        storePassword credentials.android.keystore.keystorePassword
        keyAlias credentials.android.keystore.keyAlias
        keyPassword credentials.android.keystore.keyPassword
      }
    }
  }

  buildTypes {
    release {
      signingConfig signingConfigs.release
    }
  }
}
`

// AndroidStep configures Android projects. It has no credentials phase.
type AndroidStep struct{}

// Platform implements Step.
func (AndroidStep) Platform() platform.Platform { return platform.Android }

// ConfigureProject implements Step. Managed projects need no changes. Generic
// projects get eas-build.gradle next to app/build.gradle, applied from it.
func (AndroidStep) ConfigureProject(ctx context.Context, bctx *buildctx.Context) error {
	prof, ok := bctx.Profile(platform.Android)
	if !ok || prof.Workflow != easjson.WorkflowGeneric {
		return nil
	}

	appDir := filepath.Join(bctx.ProjectDir(), "android", "app")
	buildGradle := filepath.Join(appDir, "build.gradle")

	content, err := os.ReadFile(buildGradle)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s not found; the generic workflow needs a native Android project", filepath.Join("android", "app", "build.gradle"))
		}
		return fmt.Errorf("reading %s: %w", buildGradle, err)
	}

	logger := log.FromContext(ctx)

	gradlePath := filepath.Join(appDir, easBuildGradle)
	if _, err := os.Stat(gradlePath); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(gradlePath, []byte(easBuildGradleContent), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", gradlePath, err)
		}
		logger.Info("created android/app/eas-build.gradle")
	}

	if strings.Contains(string(content), applyEASBuild) {
		return nil
	}

	updated := string(content)
	if !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}
	updated += "\n" + applyEASBuild + "\n"
	if err := os.WriteFile(buildGradle, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", buildGradle, err)
	}
	logger.Info("applied eas-build.gradle in android/app/build.gradle")
	return nil
}

// PrepareJob implements Step.
func (AndroidStep) PrepareJob(_ context.Context, bctx *buildctx.Context, archiveURL string) (*Job, error) {
	return newJob(bctx, platform.Android, archiveURL)
}
