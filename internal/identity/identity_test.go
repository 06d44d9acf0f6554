package identity

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/easbuild/internal/prompt"
)

func newProvider(t *testing.T, env map[string]string, input string) (*SessionProvider, *SessionStore) {
	t.Helper()

	store := NewSessionStore(filepath.Join(t.TempDir(), "easbuild", "session.json"))
	var p prompt.Prompter
	if input != "" {
		p = prompt.New(strings.NewReader(input), &bytes.Buffer{})
	}
	return NewSessionProvider(store, p).WithLookuper(envconfig.MapLookuper(env)), store
}

func TestEnsureLoggedIn_FromEnvironment(t *testing.T) {
	t.Parallel()

	sp, _ := newProvider(t, map[string]string{"EASBUILD_USERNAME": "ci-bot", "EASBUILD_TOKEN": "t"}, "")

	id, err := sp.EnsureLoggedIn(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "ci-bot", id.Username)
}

func TestEnsureLoggedIn_TokenWithoutUsername(t *testing.T) {
	t.Parallel()

	sp, _ := newProvider(t, map[string]string{"EASBUILD_TOKEN": "t"}, "")

	_, err := sp.EnsureLoggedIn(context.Background(), true)
	var authErr *AuthenticationRequiredError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Error(), "EASBUILD_USERNAME")
}

func TestEnsureLoggedIn_FromStoredSession(t *testing.T) {
	t.Parallel()

	sp, store := newProvider(t, nil, "")
	require.NoError(t, store.Save(&Session{Username: "jane", Token: "abc"}))

	id, err := sp.EnsureLoggedIn(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "jane", id.Username)
}

func TestEnsureLoggedIn_NonInteractiveWithoutSession(t *testing.T) {
	t.Parallel()

	sp, _ := newProvider(t, nil, "jane\ntoken\n")

	id, err := sp.EnsureLoggedIn(context.Background(), true)
	var authErr *AuthenticationRequiredError
	require.ErrorAs(t, err, &authErr)
	assert.Nil(t, id)
}

func TestEnsureLoggedIn_InteractiveLoginPersists(t *testing.T) {
	t.Parallel()

	sp, store := newProvider(t, nil, "jane\ns3cret\n")

	id, err := sp.EnsureLoggedIn(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "jane", id.Username)

	sess, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "jane", sess.Username)
	assert.Equal(t, "s3cret", sess.Token)
	assert.False(t, sess.CreatedAt.IsZero())
}

func TestLogin_RejectsEmptyUsername(t *testing.T) {
	t.Parallel()

	sp, _ := newProvider(t, nil, "\n")

	_, err := sp.Login(context.Background())
	var authErr *AuthenticationRequiredError
	require.ErrorAs(t, err, &authErr)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	sp, store := newProvider(t, nil, "")
	require.NoError(t, store.Save(&Session{Username: "jane", Token: "abc"}))

	removed, err := sp.Logout()
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = sp.Logout()
	require.NoError(t, err)
	assert.False(t, removed)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}
