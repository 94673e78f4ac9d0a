package shell

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		sysEnv   []string
		cmdEnv   map[string]string
		expected []string
	}{
		{
			name:     "System Only (Allowed)",
			sysEnv:   []string{"USER=test", "PATH=/bin", "HOME=/home/test"},
			expected: []string{"USER=test", "PATH=/bin", "HOME=/home/test"},
		},
		{
			name:     "System Only (Filtered)",
			sysEnv:   []string{"USER=test", "SSH_AUTH_SOCK=/tmp/ssh", "PATCHWORK_API_KEY=secret"},
			expected: []string{"USER=test"},
		},
		{
			name:     "Command Overrides",
			sysEnv:   []string{"USER=test", "PATH=/bin", "TERM=xterm"},
			cmdEnv:   map[string]string{"TERM": "dumb", "GIT_PAGER": "cat"},
			expected: []string{"USER=test", "PATH=/bin", "TERM=dumb", "GIT_PAGER=cat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveEnvironment(tt.sysEnv, tt.cmdEnv)

			sort.Strings(got)
			sort.Strings(tt.expected)

			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLookPath_EmptyPATH(t *testing.T) {
	_, err := lookPath("echo", []string{"USER=test"})
	assert.Error(t, err)
}

func TestLookPath_ExecutableNotFound(t *testing.T) {
	_, err := lookPath("nonexistent-command", []string{"PATH=/nonexistent/dir"})
	assert.Error(t, err)
}

func TestLookPath_FindsExecutable(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "my-tool")
	//nolint:gosec // Test requires executable file
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\necho ok\n"), 0o700))

	got, err := lookPath("my-tool", []string{"PATH=" + dir})
	require.NoError(t, err)
	assert.Equal(t, tool, got)
}

func TestFindExecutable_NonExecutable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	assert.ErrorIs(t, findExecutable(file), os.ErrPermission)
}

func TestFindExecutable_NonExistent(t *testing.T) {
	assert.Error(t, findExecutable("/nonexistent/file"))
}
