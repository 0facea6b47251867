package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

// chdir moves into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestResolveCredentials(t *testing.T) {
	chdir(t, t.TempDir())

	t.Run("flags win", func(t *testing.T) {
		t.Setenv(EnvUsername, "env-user")
		t.Setenv(EnvPassword, "env-pass")
		u, p, err := resolveCredentials("alice", "secret")
		require.NoError(t, err)
		assert.Equal(t, "alice", u)
		assert.Equal(t, "secret", p)
	})

	t.Run("environment fills gaps", func(t *testing.T) {
		t.Setenv(EnvUsername, "env-user")
		t.Setenv(EnvPassword, "env-pass")
		u, p, err := resolveCredentials("alice", "")
		require.NoError(t, err)
		assert.Equal(t, "alice", u)
		assert.Equal(t, "env-pass", p)
	})

	t.Run("missing password", func(t *testing.T) {
		unsetenv(t, EnvUsername)
		unsetenv(t, EnvPassword)
		_, _, err := resolveCredentials("alice", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvPassword)
	})

	t.Run("missing username", func(t *testing.T) {
		unsetenv(t, EnvUsername)
		unsetenv(t, EnvPassword)
		_, _, err := resolveCredentials("", "secret")
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvUsername)
	})
}

func TestResolveCredentialsFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte(EnvUsername+"=dot-user\n"+EnvPassword+"=dot-pass\n"+EnvCookie+"=\"ylogin=1; phpdisk_info=abc\"\n"), 0600))
	chdir(t, dir)
	unsetenv(t, EnvUsername)
	unsetenv(t, EnvPassword)
	unsetenv(t, EnvCookie)

	u, p, err := resolveCredentials("", "")
	require.NoError(t, err)
	assert.Equal(t, "dot-user", u)
	assert.Equal(t, "dot-pass", p)

	c, err := resolveCookie("")
	require.NoError(t, err)
	assert.Equal(t, "ylogin=1; phpdisk_info=abc", c)

	c, err = resolveCookie("a=b")
	require.NoError(t, err)
	assert.Equal(t, "a=b", c)
}
