package builder

import (
	"context"
	"fmt"

	"github.com/ariel-frischer/easbuild/internal/buildctx"
	"github.com/ariel-frischer/easbuild/internal/log"
	"github.com/ariel-frischer/easbuild/internal/platform"
)

// StepError reports the platform and phase that failed.
type StepError struct {
	Platform platform.Platform
	Phase    Phase
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Platform.DisplayName(), e.Phase, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one platform step.
type Result struct {
	Platform platform.Platform
	State    State
	Skipped  []Phase
}

// Report lists the results of a dispatch in execution order.
type Report struct {
	Results []Result
}

// Dispatcher runs the registered platform steps selected by a Context.
type Dispatcher struct {
	steps map[platform.Platform]Step
}

// NewDispatcher registers steps by platform. A later step replaces an earlier
// one for the same platform.
func NewDispatcher(steps ...Step) *Dispatcher {
	d := &Dispatcher{steps: make(map[platform.Platform]Step, len(steps))}
	for _, s := range steps {
		d.steps[s.Platform()] = s
	}
	return d
}

// Dispatch runs each selected platform in selector order, Android before iOS.
// Within a platform, credentials (when the step supports them) run before project
// configuration. The first failure stops the dispatch; platforms already done are
// left as they are. The returned report covers every platform that was started.
func (d *Dispatcher) Dispatch(ctx context.Context, bctx *buildctx.Context) (*Report, error) {
	report := &Report{}
	flags := bctx.Flags()

	for _, p := range bctx.Selector().Platforms() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		step, ok := d.steps[p]
		if !ok {
			return report, fmt.Errorf("no builder registered for %s", p.DisplayName())
		}

		logger := log.FromContext(ctx).With("platform", p.String())
		res := Result{Platform: p, State: NotStarted}

		if ensurer, ok := step.(CredentialsEnsurer); ok {
			if flags.SkipCredentialsCheck {
				res.Skipped = append(res.Skipped, PhaseCredentials)
				logger.Debug("skipping credentials check")
			} else {
				logger.Debug("ensuring credentials")
				if err := ensurer.EnsureCredentials(ctx, bctx); err != nil {
					report.Results = append(report.Results, res)
					return report, &StepError{Platform: p, Phase: PhaseCredentials, Err: err}
				}
				res.State = CredentialsReady
			}
		}

		if flags.SkipProjectConfiguration {
			res.Skipped = append(res.Skipped, PhaseConfigure)
			logger.Debug("skipping project configuration")
		} else {
			logger.Debug("configuring project")
			if err := step.ConfigureProject(ctx, bctx); err != nil {
				report.Results = append(report.Results, res)
				return report, &StepError{Platform: p, Phase: PhaseConfigure, Err: err}
			}
			res.State = Configured
		}

		res.State = Done
		report.Results = append(report.Results, res)
		logger.Debug("platform step done")
	}

	return report, nil
}
