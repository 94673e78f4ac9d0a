package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/patchwork/internal/adapters/config"
	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newMapLoader(t *testing.T, files fstest.MapFS) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return config.NewLoaderWithFS(mockLogger, config.NewMapFSAdapter("/", files))
}

func TestLoader_LoadSettings_Defaults(t *testing.T) {
	loader := newMapLoader(t, fstest.MapFS{})

	settings, err := loader.LoadSettings("/repo/sub")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestLoader_LoadSettings_WalksUpAndMerges(t *testing.T) {
	loader := newMapLoader(t, fstest.MapFS{
		"repo/patchwork.yaml": &fstest.MapFile{Data: []byte(`
version: "1"
generator:
  model: local-model
  timeoutSeconds: 30
session:
  retries: 5
git:
  authorName: bot
context:
  ignore: [third_party]
`)},
		"repo/sub/main.go": &fstest.MapFile{Data: []byte("package main")},
	})

	settings, err := loader.LoadSettings("/repo/sub")
	require.NoError(t, err)

	defaults := domain.DefaultSettings()
	assert.Equal(t, "local-model", settings.Generator.Model)
	assert.Equal(t, defaults.Generator.BaseURL, settings.Generator.BaseURL)
	assert.Equal(t, 30*time.Second, settings.Generator.Timeout)
	assert.Equal(t, 5, settings.Session.Retries)
	assert.Equal(t, defaults.Session.Requeries, settings.Session.Requeries)
	assert.Equal(t, "bot", settings.Git.AuthorName)
	assert.Equal(t, defaults.Git.AuthorEmail, settings.Git.AuthorEmail)
	assert.Equal(t, []string{"third_party"}, settings.Context.Ignore)
}

func TestLoader_LoadSettings_ExplicitZeroOverridesDefault(t *testing.T) {
	loader := newMapLoader(t, fstest.MapFS{
		"patchwork.yaml": &fstest.MapFile{Data: []byte("session:\n  retries: 0\n")},
	})

	settings, err := loader.LoadSettings("/")
	require.NoError(t, err)
	assert.Equal(t, 0, settings.Session.Retries)
}

func TestLoader_LoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"unknown field", "session:\n  retrys: 2\n", domain.ErrConfigParseFailed},
		{"malformed yaml", "session: [", domain.ErrConfigParseFailed},
		{"negative retries", "session:\n  retries: -1\n", domain.ErrInvalidSetting},
		{"empty branch prefix", "git:\n  branchPrefix: \"\"\n", domain.ErrInvalidSetting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newMapLoader(t, fstest.MapFS{
				"patchwork.yaml": &fstest.MapFile{Data: []byte(tt.content)},
			})
			_, err := loader.LoadSettings("/")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoader_LoadSettings_WarnsOnUnknownVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).Times(1)
	loader := config.NewLoaderWithFS(mockLogger, config.NewMapFSAdapter("/", fstest.MapFS{
		"patchwork.yaml": &fstest.MapFile{Data: []byte(`version: "2"`)},
	}))

	_, err := loader.LoadSettings("/")
	require.NoError(t, err)
}

const planYAML = `
tasks:
  - id: C
    title: Third
    dependencies: [B]
    pseudocode: |
      wire it
  - id: A
    title: First
    description: Look around
    completionCriteria: notes written
  - id: B
    title: Second
    dependencies: [A]
    pseudocode: add the thing
    files: [pkg/thing.go]
`

func TestLoader_LoadPlan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(planYAML), 0o600))

	plan, err := config.NewLoader(nil).LoadPlan(path)
	require.NoError(t, err)

	ids := make([]string, 0, plan.Len())
	for task := range plan.All() {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"C", "A", "B"}, ids)

	b, ok := plan.GetTask("B")
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, b.Dependencies)
	assert.Equal(t, []string{"pkg/thing.go"}, b.Files)
	assert.True(t, b.RequiresMutation())

	a, _ := plan.GetTask("A")
	assert.False(t, a.RequiresMutation())
	assert.Equal(t, "notes written", a.CompletionCriteria)

	assert.Equal(t, config.Digest([]byte(planYAML)), plan.Digest())
	assert.Len(t, plan.Digest(), 16)
}

func TestLoader_LoadPlan_DanglingDependencyIsNotALoadError(t *testing.T) {
	loader := newMapLoader(t, fstest.MapFS{
		"plan.yaml": &fstest.MapFile{Data: []byte("tasks:\n  - id: A\n    dependencies: [ghost]\n")},
	})

	plan, err := loader.LoadPlan("/plan.yaml")
	require.NoError(t, err)
	assert.ErrorIs(t, plan.Validate(), domain.ErrMissingDependency)
}

func TestLoader_LoadPlan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"duplicate id", "tasks:\n  - id: A\n  - id: A\n", domain.ErrDuplicateTaskID},
		{"empty id", "tasks:\n  - title: nameless\n", domain.ErrEmptyTaskID},
		{"unknown field", "tasks:\n  - id: A\n    dependsOn: [B]\n", domain.ErrPlanParseFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newMapLoader(t, fstest.MapFS{
				"plan.yaml": &fstest.MapFile{Data: []byte(tt.content)},
			})
			_, err := loader.LoadPlan("/plan.yaml")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := newMapLoader(t, fstest.MapFS{}).LoadPlan("/nope.yaml")
		assert.ErrorIs(t, err, domain.ErrPlanReadFailed)
	})
}

func TestLoader_LoadPlan_EmptyFile(t *testing.T) {
	loader := newMapLoader(t, fstest.MapFS{"plan.yaml": &fstest.MapFile{Data: nil}})

	plan, err := loader.LoadPlan("/plan.yaml")
	require.NoError(t, err)
	assert.Equal(t, 0, plan.Len())
}
