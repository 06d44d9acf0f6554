package buildinit

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/easbuild/internal/builder"
	"github.com/ariel-frischer/easbuild/internal/buildctx"
	"github.com/ariel-frischer/easbuild/internal/easjson"
	clierrors "github.com/ariel-frischer/easbuild/internal/errors"
	"github.com/ariel-frischer/easbuild/internal/git"
	"github.com/ariel-frischer/easbuild/internal/identity"
	"github.com/ariel-frischer/easbuild/internal/manifest"
	"github.com/ariel-frischer/easbuild/internal/platform"
	"github.com/ariel-frischer/easbuild/internal/testutil"
)

type fakePrompter struct {
	answer bool
	calls  int
}

func (f *fakePrompter) Confirm(string) (bool, error) {
	f.calls++
	return f.answer, nil
}

func (f *fakePrompter) Input(string) (string, error)  { return "", nil }
func (f *fakePrompter) Secret(string) (string, error) { return "", nil }

type fakeIdentity struct {
	username string
	err      error
	calls    int
}

func (f *fakeIdentity) EnsureLoggedIn(context.Context, bool) (*identity.Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &identity.Identity{Username: f.username}, nil
}

// recorder collects the phases run by the fake steps, in order.
type recorder struct {
	calls []string
}

type fakeStep struct {
	platform platform.Platform
	rec      *recorder
}

func (s fakeStep) Platform() platform.Platform { return s.platform }

func (s fakeStep) ConfigureProject(context.Context, *buildctx.Context) error {
	s.rec.calls = append(s.rec.calls, s.platform.String()+":configure")
	return nil
}

func (s fakeStep) PrepareJob(context.Context, *buildctx.Context, string) (*builder.Job, error) {
	return nil, nil
}

type fakeCredentialStep struct {
	fakeStep
}

func (s fakeCredentialStep) EnsureCredentials(context.Context, *buildctx.Context) error {
	s.rec.calls = append(s.rec.calls, s.platform.String()+":credentials")
	return nil
}

type fakeProgress struct {
	lines []string
}

func (p *fakeProgress) Start(message string)   { p.lines = append(p.lines, "start "+message) }
func (p *fakeProgress) Succeed(message string) { p.lines = append(p.lines, "ok "+message) }
func (p *fakeProgress) Fail(message string)    { p.lines = append(p.lines, "fail "+message) }

// recordingGuard fails the test when used; it proves no git I/O happened.
type recordingGuard struct {
	t *testing.T
}

func (g recordingGuard) CheckClean(context.Context) error {
	g.t.Fatal("CheckClean must not be called")
	return nil
}

func (g recordingGuard) CheckCleanOrRemediate(context.Context, string, git.RemediateOptions) error {
	g.t.Fatal("CheckCleanOrRemediate must not be called")
	return nil
}

type harness struct {
	dir      string
	repo     *gogit.Repository
	prompter *fakePrompter
	identity *fakeIdentity
	rec      *recorder
	progress *fakeProgress
	out      *bytes.Buffer
}

const appJSON = `{"expo":{"name":"Demo","slug":"demo","ios":{"bundleIdentifier":"com.example.demo"}}}`

// newHarness creates a repository with app.json committed, plus any extra
// committed files.
func newHarness(t *testing.T, committed map[string]string) *harness {
	t.Helper()

	files := map[string]string{manifest.FileName: appJSON}
	for name, content := range committed {
		files[name] = content
	}
	dir, repo := testutil.InitRepo(t, files)

	return &harness{
		dir:      dir,
		repo:     repo,
		prompter: &fakePrompter{},
		identity: &fakeIdentity{username: "jdoe"},
		rec:      &recorder{},
		progress: &fakeProgress{},
		out:      &bytes.Buffer{},
	}
}

func (h *harness) deps() Deps {
	return Deps{
		Contexts: &buildctx.Factory{Identity: h.identity, Manifests: manifest.FileReader{}},
		Guard:    git.NewGuard(h.dir, h.prompter, h.out),
		Dispatcher: builder.NewDispatcher(
			fakeStep{platform: platform.Android, rec: h.rec},
			fakeCredentialStep{fakeStep{platform: platform.IOS, rec: h.rec}},
		),
		Progress: h.progress,
	}
}

func (h *harness) opts(sel string) Options {
	return Options{ProjectDir: h.dir, Platform: sel, Profile: "release"}
}

func (h *harness) commits(t *testing.T) []*object.Commit {
	t.Helper()
	return testutil.Commits(t, h.repo)
}

func (h *harness) write(t *testing.T, name, content string) {
	t.Helper()
	testutil.WriteFile(t, h.dir, name, content)
}

const releaseBoth = `{"builds":{"android":{"release":{"workflow":"generic"}},"ios":{"release":{"workflow":"managed"}}}}`

func TestRun_InvalidPlatformRejectedBeforeIO(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"unknown":     "windows",
		"wrong case":  "Android",
		"padded":      " ios",
		"plural":      "alls",
		"punctuation": "ios,android",
	}

	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			progress := &fakeProgress{}
			ident := &fakeIdentity{username: "jdoe"}
			deps := Deps{
				Contexts:   &buildctx.Factory{Identity: ident, Manifests: manifest.FileReader{}},
				Guard:      recordingGuard{t: t},
				Dispatcher: builder.NewDispatcher(),
				Progress:   progress,
			}

			_, err := Run(context.Background(), Options{ProjectDir: dir, Platform: value, Profile: "release"}, deps)
			require.Error(t, err)

			cliErr := clierrors.AsCLIError(err)
			require.NotNil(t, cliErr)
			assert.Equal(t, clierrors.Argument, cliErr.Category)
			assert.Contains(t, cliErr.Message, "-p/--platform needs a valid platform")

			assert.Zero(t, ident.calls)
			assert.Empty(t, progress.lines)
			assert.NoFileExists(t, easjson.Path(dir))
		})
	}
}

func TestRun_MissingProfile(t *testing.T) {
	t.Parallel()

	deps := Deps{Guard: recordingGuard{t: t}, Progress: &fakeProgress{}}
	_, err := Run(context.Background(), Options{ProjectDir: t.TempDir()}, deps)

	cliErr := clierrors.AsCLIError(err)
	require.NotNil(t, cliErr)
	assert.Equal(t, "--profile is required", cliErr.Message)
}

func TestRun_CleanTreeNeverRemediates(t *testing.T) {
	t.Parallel()

	h := newHarness(t, map[string]string{easjson.FileName: releaseBoth})
	before := len(h.commits(t))

	res, err := Run(context.Background(), h.opts("all"), h.deps())
	require.NoError(t, err)

	assert.False(t, res.CreatedConfig)
	assert.False(t, res.Committed)
	assert.Zero(t, h.prompter.calls)
	assert.Len(t, h.commits(t), before)
	assert.Equal(t, []string{"start Creating minimal eas.json file", "ok "}, h.progress.lines)
	assert.Equal(t, []string{"android:configure", "ios:credentials", "ios:configure"}, h.rec.calls)
}

func TestRun_FreshProjectCommitsOnAcceptance(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.prompter.answer = true
	before := len(h.commits(t))

	res, err := Run(context.Background(), h.opts("all"), h.deps())
	require.NoError(t, err)

	assert.True(t, res.CreatedConfig)
	assert.True(t, res.Committed)
	assert.Equal(t, 1, h.prompter.calls)

	commits := h.commits(t)
	require.Len(t, commits, before+1)
	assert.Equal(t, "Create minimal eas.json", strings.TrimSpace(commits[0].Message))

	state, _, err := git.Status(h.dir)
	require.NoError(t, err)
	assert.Equal(t, git.Clean, state)

	data, err := os.ReadFile(easjson.Path(h.dir))
	require.NoError(t, err)
	want, err := easjson.Marshal(easjson.DefaultDocument("release", easjson.DefaultWorkflow))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(data))

	require.Len(t, h.progress.lines, 3)
	assert.Equal(t, "start Creating minimal eas.json file", h.progress.lines[0])
	assert.Equal(t, "ok We created a minimal eas.json file", h.progress.lines[1])
	assert.True(t, strings.HasPrefix(h.progress.lines[2], "ok Successfully committed"))
	assert.Contains(t, h.out.String(), "eas.json")

	prof, ok := res.Context.Profile(platform.IOS)
	require.True(t, ok)
	assert.Equal(t, easjson.DefaultWorkflow, prof.Workflow)
}

func TestRun_CustomCommitMessageAndWorkflow(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.prompter.answer = true

	opts := h.opts("android")
	opts.Workflow = easjson.WorkflowManaged
	opts.CommitMessage = "chore: add eas.json"

	res, err := Run(context.Background(), opts, h.deps())
	require.NoError(t, err)

	assert.Equal(t, "chore: add eas.json", strings.TrimSpace(h.commits(t)[0].Message))
	prof, ok := res.Context.Profile(platform.Android)
	require.True(t, ok)
	assert.Equal(t, easjson.WorkflowManaged, prof.Workflow)
}

func TestRun_DeclinedCommitAborts(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.prompter.answer = false
	before := len(h.commits(t))

	_, err := Run(context.Background(), h.opts("all"), h.deps())
	require.Error(t, err)

	cliErr := clierrors.AsCLIError(err)
	require.NotNil(t, cliErr)
	assert.Equal(t, "Aborting, run the command again once you're ready. Make sure to commit any changes you've made.", cliErr.Message)
	assert.ErrorIs(t, err, git.ErrDeclined)

	assert.Len(t, h.commits(t), before)
	assert.Empty(t, h.rec.calls, "no platform step runs after an aborted commit")
}

func TestRun_DirtyTreeNonInteractive(t *testing.T) {
	t.Parallel()

	h := newHarness(t, map[string]string{easjson.FileName: releaseBoth})
	h.write(t, "notes.txt", "wip")
	before := len(h.commits(t))

	opts := h.opts("all")
	opts.NonInteractive = true

	_, err := Run(context.Background(), opts, h.deps())
	require.Error(t, err)

	var dirty *git.DirtyTreeError
	require.ErrorAs(t, err, &dirty)
	assert.Equal(t, []string{"notes.txt"}, dirty.Paths())
	assert.NotNil(t, clierrors.AsCLIError(err))

	assert.Zero(t, h.prompter.calls)
	assert.Len(t, h.commits(t), before)

	data, err := os.ReadFile(easjson.Path(h.dir))
	require.NoError(t, err)
	assert.Equal(t, releaseBoth, string(data), "existing eas.json is left untouched")
	assert.Empty(t, h.rec.calls)
}

func TestRun_FreshProjectNonInteractiveLeavesConfigUncommitted(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	before := len(h.commits(t))

	opts := h.opts("all")
	opts.NonInteractive = true

	_, err := Run(context.Background(), opts, h.deps())
	require.Error(t, err)

	var dirty *git.DirtyTreeError
	require.ErrorAs(t, err, &dirty)
	assert.Equal(t, []string{easjson.FileName}, dirty.Paths())

	// eas.json is written before the tree is checked again, so it stays on
	// disk uncommitted for the user to review.
	assert.FileExists(t, easjson.Path(h.dir))
	assert.Zero(t, h.prompter.calls)
	assert.Len(t, h.commits(t), before)
	assert.Empty(t, h.rec.calls)
}

func TestRun_ExistingConfigNeverModified(t *testing.T) {
	t.Parallel()

	custom := "{\n  \"builds\": {\"android\": {\"release\": {\"workflow\": \"managed\", \"gradleCommand\": \":app:bundleRelease\"}}},\n  \"cli\": {}\n}"
	h := newHarness(t, map[string]string{easjson.FileName: custom})

	res, err := Run(context.Background(), h.opts("android"), h.deps())
	require.NoError(t, err)
	assert.False(t, res.CreatedConfig)

	data, err := os.ReadFile(easjson.Path(h.dir))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
	assert.Equal(t, []string{"android:configure"}, h.rec.calls)
}

func TestRun_ProfileMissingForOnePlatform(t *testing.T) {
	t.Parallel()

	androidOnly := `{"builds":{"android":{"release":{"workflow":"generic"}}}}`
	h := newHarness(t, map[string]string{easjson.FileName: androidOnly})

	_, err := Run(context.Background(), h.opts("all"), h.deps())
	require.Error(t, err)

	var notFound *easjson.ProfileNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, platform.IOS, notFound.Platform)

	assert.Zero(t, h.identity.calls)
	assert.Empty(t, h.progress.lines)
	assert.Empty(t, h.rec.calls)
}

func TestRun_SelectorLimitsPlatformSteps(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		selector string
		want     []string
	}{
		"android only": {selector: "android", want: []string{"android:configure"}},
		"ios only":     {selector: "ios", want: []string{"ios:credentials", "ios:configure"}},
		"all":          {selector: "all", want: []string{"android:configure", "ios:credentials", "ios:configure"}},
		"empty is all": {selector: "", want: []string{"android:configure", "ios:credentials", "ios:configure"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, map[string]string{easjson.FileName: releaseBoth})
			res, err := Run(context.Background(), h.opts(tt.selector), h.deps())
			require.NoError(t, err)

			assert.Equal(t, tt.want, h.rec.calls)
			for _, r := range res.Report.Results {
				assert.Equal(t, builder.Done, r.State)
			}
		})
	}
}

func TestRun_SkipCredentialsCheck(t *testing.T) {
	t.Parallel()

	h := newHarness(t, map[string]string{easjson.FileName: releaseBoth})
	opts := h.opts("ios")
	opts.SkipCredentialsCheck = true

	res, err := Run(context.Background(), opts, h.deps())
	require.NoError(t, err)

	assert.Equal(t, []string{"ios:configure"}, h.rec.calls)
	require.Len(t, res.Report.Results, 1)
	assert.Equal(t, []builder.Phase{builder.PhaseCredentials}, res.Report.Results[0].Skipped)
}

func TestRun_AuthenticationFailureWritesNothing(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.identity.err = &identity.AuthenticationRequiredError{Reason: "not logged in"}

	_, err := Run(context.Background(), h.opts("all"), h.deps())

	var authErr *identity.AuthenticationRequiredError
	require.ErrorAs(t, err, &authErr)
	assert.NoFileExists(t, easjson.Path(h.dir))
	assert.Empty(t, h.progress.lines)
}

func TestRun_NotARepository(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.FileName), []byte(appJSON), 0o644))

	deps := Deps{
		Contexts:   &buildctx.Factory{Identity: &fakeIdentity{username: "jdoe"}, Manifests: manifest.FileReader{}},
		Guard:      git.NewGuard(dir, &fakePrompter{}, &bytes.Buffer{}),
		Dispatcher: builder.NewDispatcher(),
		Progress:   &fakeProgress{},
	}

	_, err := Run(context.Background(), Options{ProjectDir: dir, Profile: "release"}, deps)
	assert.True(t, errors.Is(err, git.ErrNotRepository))
	assert.NoFileExists(t, easjson.Path(dir))
}

func TestRun_PreflightDirtyTreeIsOnlyAWarning(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.write(t, "notes.txt", "wip")
	h.prompter.answer = true

	res, err := Run(context.Background(), h.opts("android"), h.deps())
	require.NoError(t, err)
	assert.True(t, res.Committed)

	latest, err := h.commits(t)[0].Files()
	require.NoError(t, err)
	var names []string
	require.NoError(t, latest.ForEach(func(f *object.File) error {
		names = append(names, f.Name)
		return nil
	}))
	assert.ElementsMatch(t, []string{manifest.FileName, easjson.FileName, "notes.txt"}, names)
}
